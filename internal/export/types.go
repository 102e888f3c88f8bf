// Package export renders wedding itineraries and roadmaps as PDF documents.
package export

import (
	"errors"
	"time"
)

// Kind selects which document to export.
type Kind string

const (
	KindItinerary Kind = "itinerary"
	KindRoadmap   Kind = "roadmap"
)

// Request contains parameters for an export operation.
type Request struct {
	ProjectID string
	Kind      Kind
}

// EventInfo holds itinerary event data for rendering.
type EventInfo struct {
	Title       string
	TimeOfDay   string
	Date        time.Time
	Location    string
	Description string
}

// PhaseInfo holds roadmap phase data for rendering.
type PhaseInfo struct {
	Title string
	Tasks []TaskInfo
}

// TaskInfo holds roadmap task data for rendering.
type TaskInfo struct {
	Title       string
	IsCompleted bool
	Deadline    *time.Time
	AssignedTo  string
}

// ProjectInfo holds project metadata for the document header.
type ProjectInfo struct {
	Title        string
	Partner1Name string
	Partner2Name string
	Location     string
	Date         *time.Time
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
