package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hitched/api/internal/auth"
	"hitched/api/internal/export"
	"hitched/api/internal/roadmap"
	"hitched/api/internal/search"
	"hitched/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	metrics    *Metrics
}

func NewHTTPServer(service *Service, corsOrigin string, metrics *Metrics) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, metrics: metrics}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{"status": "error", "error": err.Error()}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Auth routes (no session required)
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup" {
		s.handleSignUp(w, r)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signin" {
		s.handleSignIn(w, r)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/refresh" {
		s.handleRefresh(w, r)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"userId":        session.UserID,
			"userName":      session.UserName,
			"userEmail":     session.UserEmail,
		})
		return
	}

	parts := splitPath(r.URL.Path)

	// Public wedding surface (no session, by design)
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "public" {
		s.handlePublic(w, r, parts[2:])
		return
	}

	if len(parts) >= 2 && parts[0] == "api" && parts[1] == "auth" &&
		len(parts) == 3 && parts[2] == "change-password" && r.Method == http.MethodPost {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		var body struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.ChangePassword(r.Context(), session, body.CurrentPassword, body.NewPassword); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if len(parts) >= 2 && parts[0] == "api" && parts[1] == "projects" {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		s.handleProjects(w, r, session, parts[2:])
		return
	}

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "tasks" {
		session, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		s.handleTasks(w, r, session, parts[2:])
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleProjects routes everything under /api/projects.
func (s *HTTPServer) handleProjects(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	// /api/projects
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			views, err := s.service.ListProjects(r.Context(), session)
			if err != nil {
				writeMapped(w, err)
				return
			}
			items := make([]map[string]any, 0, len(views))
			for _, v := range views {
				items = append(items, projectJSON(v))
			}
			writeJSON(w, http.StatusOK, map[string]any{"projects": items})
		case http.MethodPost:
			var body struct {
				Title string `json:"title"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			view, err := s.service.CreateProject(r.Context(), session, body.Title)
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"project": projectJSON(view)})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}

	projectID := parts[0]

	// /api/projects/{id}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			view, err := s.service.GetProject(r.Context(), session, projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"project": projectJSON(view)})
		case http.MethodDelete:
			if err := s.service.DeleteProject(r.Context(), session, projectID); err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}

	switch parts[1] {
	case "overview":
		if r.Method != http.MethodGet || len(parts) != 2 {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		overview, err := s.service.GetProjectOverview(r.Context(), session, projectID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, overviewJSON(overview))
	case "team":
		s.handleTeam(w, r, session, projectID, parts[2:])
	case "roadmap":
		s.handleRoadmap(w, r, session, projectID, parts[2:])
	case "assistant":
		if r.Method != http.MethodPost || len(parts) != 2 {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		var body struct {
			Message string `json:"message"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		answer, err := s.service.AskAssistant(r.Context(), session, projectID, body.Message)
		if err != nil {
			writeMapped(w, err)
			return
		}
		payload := map[string]any{"textResponse": answer.TextResponse}
		if answer.UpdatedRoadmap != nil {
			payload["updatedRoadmap"] = answer.UpdatedRoadmap
		}
		writeJSON(w, http.StatusOK, payload)
	case "events":
		s.handleEvents(w, r, session, projectID, parts[2:])
	case "gifts":
		s.handleGifts(w, r, session, projectID, parts[2:])
	case "products":
		if r.Method != http.MethodGet || len(parts) != 2 {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		items, err := s.service.SearchProducts(r.Context(), session, projectID, r.URL.Query().Get("q"))
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": items})
	case "budget":
		s.handleBudget(w, r, session, projectID, parts[2:])
	case "guests":
		if r.Method != http.MethodGet || len(parts) != 2 {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		guests, err := s.service.ListGuests(r.Context(), session, projectID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		items := make([]map[string]any, 0, len(guests))
		for _, g := range guests {
			items = append(items, guestJSON(g))
		}
		writeJSON(w, http.StatusOK, map[string]any{"guests": items})
	case "wedding":
		s.handleWedding(w, r, session, projectID, parts[2:])
	case "gallery":
		s.handleGallery(w, r, session, projectID, parts[2:])
	case "uploads":
		s.handleUpload(w, r, session, projectID, parts[2:])
	case "search":
		if r.Method != http.MethodGet || len(parts) != 2 {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		s.handleSearch(w, r, session, projectID)
	case "export":
		if r.Method != http.MethodGet || len(parts) != 3 {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		s.handleExport(w, r, session, projectID, parts[2])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleTeam(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			collaborators, err := s.service.ListCollaborators(r.Context(), session, projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			items := make([]map[string]any, 0, len(collaborators))
			for _, c := range collaborators {
				items = append(items, collaboratorJSON(c))
			}
			writeJSON(w, http.StatusOK, map[string]any{"collaborators": items})
		case http.MethodPost:
			var body struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			collaborator, err := s.service.InviteCollaborator(r.Context(), session, projectID, body.Email, body.Role)
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"collaborator": collaboratorJSON(collaborator)})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}
	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := s.service.RemoveCollaborator(r.Context(), session, projectID, rest[0]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleRoadmap(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			phases, err := s.service.GetRoadmap(r.Context(), session, projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"phases": phasesJSON(phases)})
		case http.MethodPut:
			var body struct {
				Phases       []roadmap.PhaseInput `json:"phases"`
				ConfirmClear bool                 `json:"confirmClear"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			phases, err := s.service.SaveRoadmap(r.Context(), session, projectID, SaveRoadmapRequest{
				Phases:       body.Phases,
				ConfirmClear: body.ConfirmClear,
			})
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"phases": phasesJSON(phases)})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}

	if rest[0] == "history" && r.Method == http.MethodGet {
		if len(rest) == 1 {
			limit := 50
			if raw := r.URL.Query().Get("limit"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil {
					writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer", nil)
					return
				}
				limit = parsed
			}
			commits, err := s.service.RoadmapHistory(r.Context(), session, projectID, limit)
			if err != nil {
				writeMapped(w, err)
				return
			}
			items := make([]map[string]any, 0, len(commits))
			for _, c := range commits {
				items = append(items, map[string]any{
					"hash":      c.Hash,
					"message":   c.Message,
					"author":    c.Author,
					"createdAt": c.CreatedAt.Format(time.RFC3339),
				})
			}
			writeJSON(w, http.StatusOK, map[string]any{"commits": items})
			return
		}
		if len(rest) == 2 {
			phases, err := s.service.RoadmapSnapshot(r.Context(), session, projectID, rest[1])
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"phases": phases})
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleTasks(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	taskID := parts[0]

	switch parts[1] {
	case "toggle":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		var body struct {
			IsCompleted bool `json:"isCompleted"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.ToggleTask(r.Context(), session, taskID, body.IsCompleted); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case "assign":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		var body struct {
			UserID *string `json:"userId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.AssignTask(r.Context(), session, taskID, body.UserID); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case "details":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		var body struct {
			Deadline      *time.Time `json:"deadline"`
			EstimatedCost float64    `json:"estimatedCost"`
			ActualCost    float64    `json:"actualCost"`
			IsCompleted   bool       `json:"isCompleted"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.UpdateTaskDetails(r.Context(), session, taskID, body.Deadline, body.EstimatedCost, body.ActualCost, body.IsCompleted); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleEvents(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			events, err := s.service.ListEvents(r.Context(), session, projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			items := make([]map[string]any, 0, len(events))
			for _, e := range events {
				items = append(items, eventJSON(e))
			}
			writeJSON(w, http.StatusOK, map[string]any{"events": items})
		case http.MethodPost:
			var body struct {
				ID          string    `json:"id"`
				Title       string    `json:"title"`
				TimeOfDay   string    `json:"timeOfDay"`
				Date        time.Time `json:"date"`
				Location    string    `json:"location"`
				Description string    `json:"description"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			event, err := s.service.SaveEvent(r.Context(), session, projectID, EventInput{
				ID:          body.ID,
				Title:       body.Title,
				TimeOfDay:   body.TimeOfDay,
				Date:        body.Date,
				Location:    body.Location,
				Description: body.Description,
			})
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"event": eventJSON(event)})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}
	if rest[0] == "reorder" && len(rest) == 1 && r.Method == http.MethodPut {
		var body struct {
			Items []struct {
				ID        string `json:"id"`
				SortOrder int    `json:"sortOrder"`
			} `json:"items"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		orders := make([]store.EventOrder, 0, len(body.Items))
		for _, item := range body.Items {
			orders = append(orders, store.EventOrder{ID: item.ID, SortOrder: item.SortOrder})
		}
		if err := s.service.ReorderEvents(r.Context(), session, projectID, orders); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := s.service.DeleteEvent(r.Context(), session, projectID, rest[0]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleGifts(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			gifts, err := s.service.ListGifts(r.Context(), session, projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			items := make([]map[string]any, 0, len(gifts))
			for _, g := range gifts {
				items = append(items, giftJSON(g))
			}
			writeJSON(w, http.StatusOK, map[string]any{"gifts": items})
		case http.MethodPost:
			var body struct {
				ID       string  `json:"id"`
				Name     string  `json:"name"`
				Price    float64 `json:"price"`
				ImageURL string  `json:"imageUrl"`
				URL      string  `json:"url"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			gift, err := s.service.SaveGift(r.Context(), session, projectID, GiftInput{
				ID:       body.ID,
				Name:     body.Name,
				Price:    body.Price,
				ImageURL: body.ImageURL,
				URL:      body.URL,
			})
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"gift": giftJSON(gift)})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}
	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := s.service.DeleteGift(r.Context(), session, projectID, rest[0]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	if len(rest) == 2 && rest[1] == "claimant" && r.Method == http.MethodPut {
		var body struct {
			TakenBy *string `json:"takenBy"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.service.SetGiftClaimant(r.Context(), session, projectID, rest[0], body.TakenBy); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleBudget(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListBudgetItems(r.Context(), session, projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			out := make([]map[string]any, 0, len(items))
			for _, item := range items {
				out = append(out, budgetItemJSON(item))
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": out})
		case http.MethodPost:
			var body struct {
				ID        string  `json:"id"`
				Category  string  `json:"category"`
				Name      string  `json:"name"`
				Estimated float64 `json:"estimated"`
				Actual    float64 `json:"actual"`
				Paid      float64 `json:"paid"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			item, err := s.service.SaveBudgetItem(r.Context(), session, projectID, BudgetItemInput{
				ID:        body.ID,
				Category:  body.Category,
				Name:      body.Name,
				Estimated: body.Estimated,
				Actual:    body.Actual,
				Paid:      body.Paid,
			})
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"item": budgetItemJSON(item)})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}
	if rest[0] == "phases" && len(rest) == 1 && r.Method == http.MethodGet {
		phases, err := s.service.ListCostedPhases(r.Context(), session, projectID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"phases": phasesJSON(phases)})
		return
	}
	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := s.service.DeleteBudgetItem(r.Context(), session, projectID, rest[0]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleWedding(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) != 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		details, err := s.service.GetWeddingDetails(r.Context(), session, projectID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"details": weddingDetailsJSON(details)})
	case http.MethodPut:
		var body struct {
			Partner1Name  string     `json:"partner1Name"`
			Partner2Name  string     `json:"partner2Name"`
			Location      string     `json:"location"`
			Date          *time.Time `json:"date"`
			CoverImageURL string     `json:"coverImageUrl"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		details, err := s.service.SaveWeddingDetails(r.Context(), session, projectID, WeddingDetailsInput{
			Partner1Name:  body.Partner1Name,
			Partner2Name:  body.Partner2Name,
			Location:      body.Location,
			Date:          body.Date,
			CoverImageURL: body.CoverImageURL,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"details": weddingDetailsJSON(details)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	}
}

func (s *HTTPServer) handleGallery(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) == 0 && r.Method == http.MethodPost {
		var body struct {
			URL string `json:"url"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		image, err := s.service.AddGalleryImage(r.Context(), session, projectID, body.URL)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"image": map[string]any{"id": image.ID, "url": image.URL}})
		return
	}
	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := s.service.DeleteGalleryImage(r.Context(), session, projectID, rest[0]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleUpload accepts a multipart image and returns its hosted URL.
func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request, session Session, projectID string, rest []string) {
	if len(rest) != 0 || r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := s.service.UploadImage(r.Context(), session, projectID, contentType, file, header.Size)
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"url": url})
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request, session Session, projectID string) {
	query := search.Query{
		Text:       r.URL.Query().Get("q"),
		FilterType: search.ResultType(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer", nil)
			return
		}
		query.Limit = parsed
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "offset must be an integer", nil)
			return
		}
		query.Offset = parsed
	}
	response, err := s.service.Search(r.Context(), session, projectID, query)
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, session Session, projectID, kind string) {
	var exportKind export.Kind
	switch kind {
	case "itinerary":
		exportKind = export.KindItinerary
	case "roadmap":
		exportKind = export.KindRoadmap
	default:
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "kind must be 'itinerary' or 'roadmap'", nil)
		return
	}
	result, err := s.service.Export(r.Context(), session, projectID, exportKind)
	if err != nil {
		writeMapped(w, err)
		return
	}
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// handlePublic routes /api/public: the unauthenticated guest surface.
func (s *HTTPServer) handlePublic(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) >= 2 && parts[0] == "weddings" {
		projectID := parts[1]
		if len(parts) == 2 && r.Method == http.MethodGet {
			wedding, err := s.service.GetPublicWedding(r.Context(), projectID)
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusOK, publicWeddingJSON(wedding))
			return
		}
		if len(parts) == 3 && parts[2] == "rsvp" && r.Method == http.MethodPost {
			var body struct {
				Name      string `json:"name"`
				Email     string `json:"email"`
				Attending bool   `json:"attending"`
				Dietary   string `json:"dietary"`
				PlusOne   bool   `json:"plusOne"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			guest, err := s.service.SubmitRSVP(r.Context(), projectID, RSVPInput{
				Name:      body.Name,
				Email:     body.Email,
				Attending: body.Attending,
				Dietary:   body.Dietary,
				PlusOne:   body.PlusOne,
			})
			if err != nil {
				writeMapped(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"guest": guestJSON(guest)})
			return
		}
	}
	if len(parts) == 3 && parts[0] == "gifts" && parts[2] == "claim" && r.Method == http.MethodPost {
		var body struct {
			GuestName string `json:"guestName"`
			Message   string `json:"message"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		gift, err := s.service.ClaimGiftPublic(r.Context(), parts[1], body.GuestName, body.Message)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"gift": giftJSON(gift)})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.SignUp(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionJSON(session))
}

func (s *HTTPServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionJSON(session))
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionJSON(session))
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return Session{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Session lookup failed", nil)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		elapsed := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, routeLabel(r.URL.Path), writer.status, elapsed)
		}
		slog.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMapped(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// routeLabel collapses path parameters so metric cardinality stays flat.
func routeLabel(path string) string {
	parts := splitPath(path)
	if len(parts) < 2 || parts[0] != "api" {
		return path
	}
	switch parts[1] {
	case "projects":
		switch len(parts) {
		case 2:
			return "/api/projects"
		case 3:
			return "/api/projects/:id"
		case 4:
			return "/api/projects/:id/" + parts[3]
		default:
			return "/api/projects/:id/" + parts[3] + "/:sub"
		}
	case "tasks":
		if len(parts) >= 4 {
			return "/api/tasks/:id/" + parts[3]
		}
		return "/api/tasks/:id"
	case "public":
		if len(parts) >= 3 {
			label := "/api/public/" + parts[2] + "/:id"
			if len(parts) >= 4 {
				label += "/" + parts[3]
			}
			return label
		}
	}
	return "/" + strings.Join(parts, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
