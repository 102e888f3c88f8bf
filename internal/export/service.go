package export

import (
	"context"
	"fmt"
	"time"
)

// DataStore defines the data access the exporter needs.
type DataStore interface {
	GetExportProject(ctx context.Context, projectID string) (ProjectInfo, error)
	ListExportEvents(ctx context.Context, projectID string) ([]EventInfo, error)
	ListExportPhases(ctx context.Context, projectID string) ([]PhaseInfo, error)
}

// Service provides PDF export of itineraries and roadmaps.
type Service struct {
	store DataStore
}

// NewService creates a new export service.
func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// Export generates a PDF for the requested document kind.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	project, err := s.store.GetExportProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	switch req.Kind {
	case KindItinerary:
		events, err := s.store.ListExportEvents(ctx, req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		html, err := RenderItineraryHTML(ItineraryData{
			Project: project,
			Days:    groupByDay(events),
		})
		if err != nil {
			return nil, fmt.Errorf("render itinerary: %w", err)
		}
		return exportPDF(html, project.Title+" itinerary")
	case KindRoadmap:
		phases, err := s.store.ListExportPhases(ctx, req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("list phases: %w", err)
		}
		html, err := RenderRoadmapHTML(RoadmapData{
			Project: project,
			Phases:  phases,
		})
		if err != nil {
			return nil, fmt.Errorf("render roadmap: %w", err)
		}
		return exportPDF(html, project.Title+" roadmap")
	default:
		return nil, fmt.Errorf("unsupported export kind: %s", req.Kind)
	}
}

// groupByDay buckets events into calendar days, preserving input order
// within a day. Events are expected to arrive sorted by date then sort
// order.
func groupByDay(events []EventInfo) []ItineraryDay {
	var days []ItineraryDay
	byDay := map[string]int{}
	for _, ev := range events {
		key := ev.Date.Format("2006-01-02")
		idx, ok := byDay[key]
		if !ok {
			days = append(days, ItineraryDay{
				Date: time.Date(ev.Date.Year(), ev.Date.Month(), ev.Date.Day(), 0, 0, 0, 0, ev.Date.Location()),
			})
			idx = len(days) - 1
			byDay[key] = idx
		}
		days[idx].Events = append(days[idx].Events, ev)
	}
	return days
}
