package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hitched/api/internal/export"
	"hitched/api/internal/rbac"
	"hitched/api/internal/search"
	"hitched/api/internal/store"
)

// Search runs a project-scoped full text search across tasks, gifts and
// events. Access is resolved before the index is touched.
func (s *Service) Search(ctx context.Context, session Session, projectID string, q search.Query) (search.Response, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return search.Response{}, err
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}, nil
	}
	q.ProjectID = projectID
	return s.search.Search(q), nil
}

// Export renders the project's itinerary or roadmap as a PDF.
func (s *Service) Export(ctx context.Context, session Session, projectID string, kind export.Kind) (*export.Result, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "SERVER_ERROR", "PDF export is not available", nil)
	}
	result, err := s.exporter.Export(ctx, export.Request{ProjectID: projectID, Kind: kind})
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			return nil, domainError(http.StatusServiceUnavailable, "SERVER_ERROR", "PDF export is not available on this server", nil)
		}
		return nil, err
	}
	return result, nil
}

// ExportStore adapts the persistence layer to what the PDF exporter
// needs to render.
type ExportStore struct {
	store dataStore
}

// NewExportStore wraps the postgres store for export rendering.
func NewExportStore(s *store.PostgresStore) *ExportStore {
	return &ExportStore{store: s}
}

func (e *ExportStore) GetExportProject(ctx context.Context, projectID string) (export.ProjectInfo, error) {
	project, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return export.ProjectInfo{}, err
	}
	details, err := e.store.GetWeddingDetails(ctx, projectID)
	if err != nil {
		return export.ProjectInfo{}, err
	}
	return export.ProjectInfo{
		Title:        project.Title,
		Partner1Name: details.Partner1Name,
		Partner2Name: details.Partner2Name,
		Location:     details.Location,
		Date:         details.Date,
	}, nil
}

func (e *ExportStore) ListExportEvents(ctx context.Context, projectID string) ([]export.EventInfo, error) {
	events, err := e.store.ListEvents(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]export.EventInfo, 0, len(events))
	for _, ev := range events {
		out = append(out, export.EventInfo{
			Title:       ev.Title,
			TimeOfDay:   ev.TimeOfDay,
			Date:        ev.Date,
			Location:    ev.Location,
			Description: ev.Description,
		})
	}
	return out, nil
}

func (e *ExportStore) ListExportPhases(ctx context.Context, projectID string) ([]export.PhaseInfo, error) {
	phases, err := e.store.ListPhases(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]export.PhaseInfo, 0, len(phases))
	for _, phase := range phases {
		info := export.PhaseInfo{Title: phase.Title}
		for _, task := range phase.Tasks {
			assignee := ""
			if task.AssignedToName != nil {
				assignee = strings.TrimSpace(*task.AssignedToName)
			}
			info.Tasks = append(info.Tasks, export.TaskInfo{
				Title:       task.Title,
				IsCompleted: task.IsCompleted,
				Deadline:    task.Deadline,
				AssignedTo:  assignee,
			})
		}
		out = append(out, info)
	}
	return out, nil
}
