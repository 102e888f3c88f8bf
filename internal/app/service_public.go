package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"hitched/api/internal/rbac"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// PublicWedding is the unauthenticated wedding-page payload: what a
// guest with the share link may see.
type PublicWedding struct {
	Project store.Project
	Details store.WeddingDetails
	Events  []store.Event
	Gifts   []store.Gift
}

// RSVPInput is a guest's unauthenticated RSVP submission.
type RSVPInput struct {
	Name      string
	Email     string
	Attending bool
	Dietary   string
	PlusOne   bool
}

// GetPublicWedding serves the share-link page. No session; an unknown
// project id is simply not found.
func (s *Service) GetPublicWedding(ctx context.Context, projectID string) (PublicWedding, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PublicWedding{}, domainError(http.StatusNotFound, "NOT_FOUND", "Wedding not found", nil)
		}
		return PublicWedding{}, err
	}
	details, err := s.store.GetWeddingDetails(ctx, projectID)
	if err != nil {
		return PublicWedding{}, err
	}
	events, err := s.store.ListEvents(ctx, projectID)
	if err != nil {
		return PublicWedding{}, err
	}
	gifts, err := s.store.ListGifts(ctx, projectID)
	if err != nil {
		return PublicWedding{}, err
	}
	return PublicWedding{Project: project, Details: details, Events: events, Gifts: gifts}, nil
}

// SubmitRSVP records a guest response and notifies the owner by email,
// best effort, after the insert.
func (s *Service) SubmitRSVP(ctx context.Context, projectID string, in RSVPInput) (store.Guest, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return store.Guest{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Guest name is required", nil)
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Guest{}, domainError(http.StatusNotFound, "NOT_FOUND", "Wedding not found", nil)
		}
		return store.Guest{}, err
	}

	guest := store.Guest{
		ID:        util.NewID("gst"),
		ProjectID: projectID,
		Name:      in.Name,
		Email:     strings.TrimSpace(in.Email),
		Attending: in.Attending,
		Dietary:   in.Dietary,
		PlusOne:   in.PlusOne,
	}
	if err := s.store.CreateGuest(ctx, guest); err != nil {
		return store.Guest{}, err
	}

	if s.email != nil && s.email.IsConfigured() {
		s.notifyOwnerOfRSVP(ctx, project, guest)
	}
	return guest, nil
}

// ClaimGiftPublic lets a guest mark a gift as taken. First past the
// post wins; losers get a conflict so the page can refresh.
func (s *Service) ClaimGiftPublic(ctx context.Context, giftID, guestName, message string) (store.Gift, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return store.Gift{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Your name is required to claim a gift", nil)
	}
	if _, err := s.giftProjectOr404(ctx, giftID); err != nil {
		return store.Gift{}, err
	}
	if err := s.store.ClaimGift(ctx, giftID, guestName, message); err != nil {
		if errors.Is(err, store.ErrGiftClaimed) {
			return store.Gift{}, domainError(http.StatusConflict, "CONFLICT", "This gift has already been claimed", nil)
		}
		return store.Gift{}, err
	}
	return s.store.GetGift(ctx, giftID)
}

func (s *Service) notifyOwnerOfRSVP(ctx context.Context, project store.Project, guest store.Guest) {
	collaborators, err := s.store.ListCollaborators(ctx, project.ID)
	if err != nil {
		slog.Warn("rsvp notification lookup failed", "project_id", project.ID, "error", err)
		return
	}
	for _, c := range collaborators {
		if rbac.Role(c.Role) != rbac.RoleOwner {
			continue
		}
		to, name := c.UserEmail, c.UserName
		go func() {
			if err := s.email.SendRSVPNotification(to, name, guest.Name, project.Title, guest.Attending); err != nil {
				slog.Warn("rsvp email failed", "project_id", project.ID, "error", err)
			}
		}()
		return
	}
}
