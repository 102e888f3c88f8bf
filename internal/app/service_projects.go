package app

import (
	"context"
	"net/http"
	"strings"

	"hitched/api/internal/rbac"
	"hitched/api/internal/roadmap"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// ProjectView is a project plus the caller's role on it.
type ProjectView struct {
	store.Project
	Role              rbac.Role
	CollaboratorCount int
}

// ProjectOverview is the dashboard rollup for one project.
type ProjectOverview struct {
	Project      store.Project
	Role         rbac.Role
	TaskStats    store.TaskStats
	BudgetTotals store.BudgetTotals
	TeamSize     int
	NextEvent    *store.Event
}

// CreateProject makes the caller the sole owner and seeds the default
// planning roadmap in the same breath.
func (s *Service) CreateProject(ctx context.Context, session Session, title string) (ProjectView, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ProjectView{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Project title is required", nil)
	}

	project := store.Project{
		ID:    util.NewID("prj"),
		Title: title,
	}
	if err := s.store.CreateProject(ctx, project, session.UserID); err != nil {
		return ProjectView{}, err
	}
	if err := s.store.ReconcileRoadmap(ctx, project.ID, roadmap.DefaultTemplate(), util.NewID); err != nil {
		return ProjectView{}, err
	}
	s.indexRoadmap(ctx, project.ID)

	return ProjectView{
		Project:           project,
		Role:              rbac.RoleOwner,
		CollaboratorCount: 1,
	}, nil
}

// ListProjects returns every project the caller belongs to.
func (s *Service) ListProjects(ctx context.Context, session Session) ([]ProjectView, error) {
	memberships, err := s.store.ListProjectsForUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	views := make([]ProjectView, 0, len(memberships))
	for _, m := range memberships {
		views = append(views, ProjectView{
			Project:           m.Project,
			Role:              rbac.Role(m.Role),
			CollaboratorCount: m.CollaboratorCount,
		})
	}
	return views, nil
}

func (s *Service) GetProject(ctx context.Context, session Session, projectID string) (ProjectView, error) {
	role, err := s.requireCapability(ctx, session, projectID, rbac.CapView)
	if err != nil {
		return ProjectView{}, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	count, err := s.store.CollaboratorCount(ctx, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	return ProjectView{Project: project, Role: role, CollaboratorCount: count}, nil
}

// GetProjectOverview assembles the dashboard stats in one call.
func (s *Service) GetProjectOverview(ctx context.Context, session Session, projectID string) (ProjectOverview, error) {
	role, err := s.requireCapability(ctx, session, projectID, rbac.CapView)
	if err != nil {
		return ProjectOverview{}, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return ProjectOverview{}, err
	}
	stats, err := s.store.ProjectTaskStats(ctx, projectID)
	if err != nil {
		return ProjectOverview{}, err
	}
	totals, err := s.store.ProjectBudgetTotals(ctx, projectID)
	if err != nil {
		return ProjectOverview{}, err
	}
	teamSize, err := s.store.CollaboratorCount(ctx, projectID)
	if err != nil {
		return ProjectOverview{}, err
	}
	next, err := s.store.NextEvent(ctx, projectID)
	if err != nil {
		return ProjectOverview{}, err
	}
	return ProjectOverview{
		Project:      project,
		Role:         role,
		TaskStats:    stats,
		BudgetTotals: totals,
		TeamSize:     teamSize,
		NextEvent:    next,
	}, nil
}

// DeleteProject removes the project and everything under it. Owner only.
func (s *Service) DeleteProject(ctx context.Context, session Session, projectID string) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapDeleteProject); err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, projectID)
}
