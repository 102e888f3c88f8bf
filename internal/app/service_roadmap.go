package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hitched/api/internal/assistant"
	"hitched/api/internal/history"
	"hitched/api/internal/rbac"
	"hitched/api/internal/roadmap"
	"hitched/api/internal/search"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// SaveRoadmapRequest is the desired-state structure plus the clear guard.
// Submitting zero phases against a non-empty roadmap wipes it, so that
// path demands an explicit confirmation flag.
type SaveRoadmapRequest struct {
	Phases       []roadmap.PhaseInput
	ConfirmClear bool
}

func (s *Service) GetRoadmap(ctx context.Context, session Session, projectID string) ([]store.Phase, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListPhases(ctx, projectID)
}

// SaveRoadmap reconciles the persisted tree onto the submitted structure
// in one transaction, then records a snapshot and refreshes the search
// index. Snapshot and index failures never undo a committed save.
func (s *Service) SaveRoadmap(ctx context.Context, session Session, projectID string, req SaveRoadmapRequest) ([]store.Phase, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return nil, err
	}
	if err := roadmap.Validate(req.Phases); err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	}
	if len(req.Phases) == 0 && !req.ConfirmClear {
		existing, err := s.store.ListPhases(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"Saving an empty roadmap deletes every phase and task; set confirmClear to proceed", nil)
		}
	}

	if err := s.store.ReconcileRoadmap(ctx, projectID, req.Phases, util.NewID); err != nil {
		return nil, err
	}
	_ = s.store.TouchProject(ctx, projectID)

	phases, err := s.store.ListPhases(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.snapshotRoadmap(projectID, phases, session, "Save roadmap")
	s.indexRoadmap(ctx, projectID)
	return phases, nil
}

func (s *Service) ToggleTask(ctx context.Context, session Session, taskID string, isCompleted bool) error {
	projectID, err := s.taskProject(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	return s.store.ToggleTask(ctx, taskID, isCompleted)
}

// AssignTask sets or clears a task's assignee. Assignees must belong to
// the task's project.
func (s *Service) AssignTask(ctx context.Context, session Session, taskID string, userID *string) error {
	projectID, err := s.taskProject(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	if userID != nil {
		if _, err := s.store.GetCollaborator(ctx, *userID, projectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Assignee is not a collaborator on this project", nil)
			}
			return err
		}
	}
	return s.store.AssignTask(ctx, taskID, userID)
}

func (s *Service) UpdateTaskDetails(ctx context.Context, session Session, taskID string, deadline *time.Time, estimatedCost, actualCost float64, isCompleted bool) error {
	projectID, err := s.taskProject(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	return s.store.UpdateTaskDetails(ctx, taskID, deadline, estimatedCost, actualCost, isCompleted)
}

// RoadmapHistory lists snapshot commits, newest first.
func (s *Service) RoadmapHistory(ctx context.Context, session Session, projectID string, limit int) ([]history.CommitInfo, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return []history.CommitInfo{}, nil
	}
	return s.snapshots.History(projectID, limit)
}

// RoadmapSnapshot returns the structure recorded at one commit.
func (s *Service) RoadmapSnapshot(ctx context.Context, session Session, projectID, hash string) ([]history.SnapshotPhase, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Snapshot not found", nil)
	}
	phases, err := s.snapshots.GetSnapshot(projectID, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Snapshot not found", nil)
	}
	return phases, nil
}

func (s *Service) taskProject(ctx context.Context, taskID string) (string, error) {
	projectID, err := s.store.GetTaskProject(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domainError(http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		}
		return "", err
	}
	return projectID, nil
}

func (s *Service) snapshotRoadmap(projectID string, phases []store.Phase, session Session, message string) {
	if s.snapshots == nil {
		return
	}
	snap := make([]history.SnapshotPhase, 0, len(phases))
	for _, phase := range phases {
		sp := history.SnapshotPhase{ID: phase.ID, Title: phase.Title}
		for _, task := range phase.Tasks {
			sp.Tasks = append(sp.Tasks, history.SnapshotTask{
				ID:          task.ID,
				Title:       task.Title,
				IsCompleted: task.IsCompleted,
			})
		}
		snap = append(snap, sp)
	}
	if _, err := s.snapshots.Snapshot(projectID, snap, session.UserName, message); err != nil {
		slog.Warn("roadmap snapshot failed", "project_id", projectID, "error", err)
	}
}

// indexRoadmap pushes the project's current tasks into the search index.
// Best effort; the index converges on the next save.
func (s *Service) indexRoadmap(ctx context.Context, projectID string) {
	if s.search == nil {
		return
	}
	phases, err := s.store.ListPhases(ctx, projectID)
	if err != nil {
		slog.Warn("search reindex load failed", "project_id", projectID, "error", err)
		return
	}
	for _, phase := range phases {
		for _, task := range phase.Tasks {
			s.search.IndexTask(search.TaskRecord{
				ID:        task.ID,
				Title:     task.Title,
				PhaseID:   phase.ID,
				ProjectID: projectID,
			})
		}
	}
}

// AskAssistant sends the current roadmap and one user message to the
// model. When the reply carries an updated structure it is validated but
// NOT applied; the client confirms and calls SaveRoadmap.
func (s *Service) AskAssistant(ctx context.Context, session Session, projectID, message string) (assistantAnswer, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return assistantAnswer{}, err
	}
	if s.assistant == nil || !s.assistant.IsConfigured() {
		return assistantAnswer{}, domainError(http.StatusServiceUnavailable, "SERVER_ERROR", "Assistant is not configured", nil)
	}
	phases, err := s.store.ListPhases(ctx, projectID)
	if err != nil {
		return assistantAnswer{}, err
	}
	current := roadmapToInput(phases)

	reply, err := s.assistant.Ask(ctx, message, assistant.RoadmapContext{Phases: current})
	if err != nil {
		slog.Warn("assistant call failed", "project_id", projectID, "error", err)
		return assistantAnswer{
			TextResponse: "Sorry, I could not reach the planning assistant just now. Please try again.",
		}, nil
	}
	if reply.UpdatedRoadmap != nil {
		if err := roadmap.Validate(reply.UpdatedRoadmap); err != nil {
			return assistantAnswer{TextResponse: reply.TextResponse}, nil
		}
	}
	return assistantAnswer{
		TextResponse:   reply.TextResponse,
		UpdatedRoadmap: reply.UpdatedRoadmap,
	}, nil
}

type assistantAnswer struct {
	TextResponse   string
	UpdatedRoadmap []roadmap.PhaseInput
}

func roadmapToInput(phases []store.Phase) []roadmap.PhaseInput {
	out := make([]roadmap.PhaseInput, 0, len(phases))
	for _, phase := range phases {
		phaseID := phase.ID
		in := roadmap.PhaseInput{ID: &phaseID, Title: phase.Title}
		for _, task := range phase.Tasks {
			taskID := task.ID
			in.Tasks = append(in.Tasks, roadmap.TaskInput{ID: &taskID, Title: task.Title})
		}
		out = append(out, in)
	}
	return out
}
