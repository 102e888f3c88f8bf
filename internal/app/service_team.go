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
)

func (s *Service) ListCollaborators(ctx context.Context, session Session, projectID string) ([]store.Collaborator, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListCollaborators(ctx, projectID)
}

// InviteCollaborator adds an existing user to the team by email. Only
// the owner manages the team, and ownership itself is never granted.
func (s *Service) InviteCollaborator(ctx context.Context, session Session, projectID, email, role string) (store.Collaborator, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapManageTeam); err != nil {
		return store.Collaborator{}, err
	}
	if !rbac.Invitable(role) {
		return store.Collaborator{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Role must be EDITOR or VIEWER", nil)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Collaborator{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "No account exists for that email", nil)
		}
		return store.Collaborator{}, err
	}
	if _, err := s.store.GetCollaborator(ctx, user.ID, projectID); err == nil {
		return store.Collaborator{}, domainError(http.StatusConflict, "CONFLICT", "User is already a collaborator on this project", nil)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.Collaborator{}, err
	}

	collaborator := store.Collaborator{
		UserID:    user.ID,
		ProjectID: projectID,
		Role:      role,
	}
	if err := s.store.AddCollaborator(ctx, collaborator); err != nil {
		return store.Collaborator{}, err
	}
	collaborator.UserName = user.Name
	collaborator.UserEmail = user.Email
	collaborator.UserAvatarURL = user.AvatarURL

	// Notification is best effort and strictly after the insert.
	if s.email != nil && s.email.IsConfigured() {
		project, perr := s.store.GetProject(ctx, projectID)
		if perr == nil {
			go func() {
				if err := s.email.SendCollaboratorInvite(user.Email, user.Name, session.UserName, project.Title, role); err != nil {
					slog.Warn("invite email failed", "project_id", projectID, "error", err)
				}
			}()
		}
	}
	return collaborator, nil
}

// RemoveCollaborator drops a member. The owner can remove anyone but
// themselves; everyone else can only remove themselves.
func (s *Service) RemoveCollaborator(ctx context.Context, session Session, projectID, userID string) error {
	callerRole, err := s.viewerRole(ctx, session.UserID, projectID)
	if err != nil {
		return err
	}
	if callerRole == "" {
		return domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}

	target, err := s.store.GetCollaborator(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domainError(http.StatusNotFound, "NOT_FOUND", "Collaborator not found", nil)
		}
		return err
	}
	if rbac.Role(target.Role) == rbac.RoleOwner {
		return domainError(http.StatusForbidden, "FORBIDDEN", "The project owner cannot be removed", nil)
	}
	if userID != session.UserID && !rbac.Can(callerRole, rbac.CapManageTeam) {
		return domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}
	return s.store.RemoveCollaborator(ctx, userID, projectID)
}
