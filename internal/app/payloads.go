package app

import (
	"time"

	"hitched/api/internal/store"
)

func sessionJSON(session Session) map[string]any {
	return map[string]any{
		"accessToken":  session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.UserID,
		"userName":     session.UserName,
		"userEmail":    session.UserEmail,
		"expiresAt":    session.ExpiresAt.Unix(),
	}
}

func projectJSON(view ProjectView) map[string]any {
	return map[string]any{
		"id":                view.ID,
		"title":             view.Title,
		"role":              string(view.Role),
		"collaboratorCount": view.CollaboratorCount,
		"createdAt":         formatTime(view.CreatedAt),
		"updatedAt":         formatTime(view.UpdatedAt),
	}
}

func overviewJSON(overview ProjectOverview) map[string]any {
	payload := map[string]any{
		"project": map[string]any{
			"id":    overview.Project.ID,
			"title": overview.Project.Title,
		},
		"role": string(overview.Role),
		"tasks": map[string]any{
			"total":     overview.TaskStats.Total,
			"completed": overview.TaskStats.Completed,
		},
		"budget": map[string]any{
			"estimated": overview.BudgetTotals.Estimated,
			"actual":    overview.BudgetTotals.Actual,
			"paid":      overview.BudgetTotals.Paid,
		},
		"teamSize":  overview.TeamSize,
		"nextEvent": nil,
	}
	if overview.NextEvent != nil {
		payload["nextEvent"] = eventJSON(*overview.NextEvent)
	}
	return payload
}

func collaboratorJSON(c store.Collaborator) map[string]any {
	return map[string]any{
		"userId":    c.UserID,
		"role":      c.Role,
		"name":      c.UserName,
		"email":     c.UserEmail,
		"avatarUrl": c.UserAvatarURL,
		"joinedAt":  formatTime(c.CreatedAt),
	}
}

func phasesJSON(phases []store.Phase) []map[string]any {
	out := make([]map[string]any, 0, len(phases))
	for _, phase := range phases {
		tasks := make([]map[string]any, 0, len(phase.Tasks))
		for _, task := range phase.Tasks {
			tasks = append(tasks, taskJSON(task))
		}
		out = append(out, map[string]any{
			"id":    phase.ID,
			"title": phase.Title,
			"tasks": tasks,
		})
	}
	return out
}

func taskJSON(task store.Task) map[string]any {
	payload := map[string]any{
		"id":            task.ID,
		"title":         task.Title,
		"isCompleted":   task.IsCompleted,
		"estimatedCost": task.EstimatedCost,
		"actualCost":    task.ActualCost,
		"deadline":      nil,
		"assignedTo":    nil,
	}
	if task.Deadline != nil {
		payload["deadline"] = formatTime(*task.Deadline)
	}
	if task.AssignedToID != nil {
		assignee := map[string]any{"userId": *task.AssignedToID}
		if task.AssignedToName != nil {
			assignee["name"] = *task.AssignedToName
		}
		payload["assignedTo"] = assignee
	}
	return payload
}

func eventJSON(event store.Event) map[string]any {
	return map[string]any{
		"id":          event.ID,
		"title":       event.Title,
		"timeOfDay":   event.TimeOfDay,
		"date":        formatTime(event.Date),
		"location":    event.Location,
		"description": event.Description,
		"sortOrder":   event.SortOrder,
	}
}

func giftJSON(gift store.Gift) map[string]any {
	payload := map[string]any{
		"id":       gift.ID,
		"name":     gift.Name,
		"price":    gift.Price,
		"imageUrl": gift.ImageURL,
		"url":      gift.URL,
		"takenBy":  nil,
		"message":  nil,
	}
	if gift.TakenBy != nil {
		payload["takenBy"] = *gift.TakenBy
	}
	if gift.Message != nil {
		payload["message"] = *gift.Message
	}
	return payload
}

func budgetItemJSON(item store.BudgetItem) map[string]any {
	return map[string]any{
		"id":        item.ID,
		"category":  item.Category,
		"name":      item.Name,
		"estimated": item.Estimated,
		"actual":    item.Actual,
		"paid":      item.Paid,
	}
}

func guestJSON(guest store.Guest) map[string]any {
	return map[string]any{
		"id":        guest.ID,
		"name":      guest.Name,
		"email":     guest.Email,
		"attending": guest.Attending,
		"dietary":   guest.Dietary,
		"plusOne":   guest.PlusOne,
		"createdAt": formatTime(guest.CreatedAt),
	}
}

func weddingDetailsJSON(details store.WeddingDetails) map[string]any {
	payload := map[string]any{
		"partner1Name":  details.Partner1Name,
		"partner2Name":  details.Partner2Name,
		"location":      details.Location,
		"coverImageUrl": details.CoverImageURL,
		"date":          nil,
	}
	if details.Date != nil {
		payload["date"] = formatTime(*details.Date)
	}
	gallery := make([]map[string]any, 0, len(details.Gallery))
	for _, img := range details.Gallery {
		gallery = append(gallery, map[string]any{"id": img.ID, "url": img.URL})
	}
	payload["gallery"] = gallery
	return payload
}

func publicWeddingJSON(wedding PublicWedding) map[string]any {
	events := make([]map[string]any, 0, len(wedding.Events))
	for _, e := range wedding.Events {
		events = append(events, eventJSON(e))
	}
	gifts := make([]map[string]any, 0, len(wedding.Gifts))
	for _, g := range wedding.Gifts {
		// Guests see availability, never who claimed what.
		payload := giftJSON(g)
		payload["isTaken"] = g.TakenBy != nil
		delete(payload, "takenBy")
		delete(payload, "message")
		gifts = append(gifts, payload)
	}
	return map[string]any{
		"project": map[string]any{
			"id":    wedding.Project.ID,
			"title": wedding.Project.Title,
		},
		"details": weddingDetailsJSON(wedding.Details),
		"events":  events,
		"gifts":   gifts,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
