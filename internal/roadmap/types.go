// Package roadmap computes reconciliation plans that converge a project's
// persisted phase/task tree onto a submitted desired-state structure.
package roadmap

import (
	"fmt"
	"strings"
)

// TaskInput is one task descriptor in a submitted structure. A nil ID means
// the task does not exist yet and must be created.
type TaskInput struct {
	ID    *string `json:"id,omitempty"`
	Title string  `json:"title"`
}

// PhaseInput is one phase descriptor in a submitted structure. Array position
// is the ordering truth for both phases and their tasks.
type PhaseInput struct {
	ID    *string     `json:"id,omitempty"`
	Title string      `json:"title"`
	Tasks []TaskInput `json:"tasks"`
}

// Validate rejects structures with blank titles before anything touches the
// store. A malformed item fails the whole submission rather than being
// silently skipped.
func Validate(phases []PhaseInput) error {
	for i, phase := range phases {
		if strings.TrimSpace(phase.Title) == "" {
			return fmt.Errorf("phase %d: title is required", i)
		}
		for j, task := range phase.Tasks {
			if strings.TrimSpace(task.Title) == "" {
				return fmt.Errorf("phase %d task %d: title is required", i, j)
			}
		}
	}
	return nil
}
