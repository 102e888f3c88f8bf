package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hitched/api/internal/rbac"
	"hitched/api/internal/search"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// EventInput is the save payload for an itinerary event. An empty ID
// creates, a present ID updates.
type EventInput struct {
	ID          string
	Title       string
	TimeOfDay   string
	Date        time.Time
	Location    string
	Description string
}

func (s *Service) ListEvents(ctx context.Context, session Session, projectID string) ([]store.Event, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, projectID)
}

func (s *Service) SaveEvent(ctx context.Context, session Session, projectID string, in EventInput) (store.Event, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return store.Event{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return store.Event{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Event title is required", nil)
	}
	if in.Date.IsZero() {
		return store.Event{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Event date is required", nil)
	}

	event := store.Event{
		ID:          in.ID,
		ProjectID:   projectID,
		Title:       strings.TrimSpace(in.Title),
		TimeOfDay:   in.TimeOfDay,
		Date:        in.Date,
		Location:    in.Location,
		Description: in.Description,
	}
	if event.ID == "" {
		event.ID = util.NewID("evt")
		if err := s.store.CreateEvent(ctx, event); err != nil {
			return store.Event{}, err
		}
	} else {
		if err := s.store.UpdateEvent(ctx, event); err != nil {
			return store.Event{}, err
		}
	}
	if s.search != nil {
		s.search.IndexEvent(search.EventRecord{
			ID:          event.ID,
			Title:       event.Title,
			Location:    event.Location,
			Description: event.Description,
			ProjectID:   projectID,
		})
	}
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, session Session, projectID, eventID string) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, eventID, projectID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteEvent(eventID)
	}
	return nil
}

// ReorderEvents applies a full ordering for the project's events.
func (s *Service) ReorderEvents(ctx context.Context, session Session, projectID string, items []store.EventOrder) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	if len(items) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Reorder payload is empty", nil)
	}
	return s.store.ReorderEvents(ctx, projectID, items)
}
