package store

import (
	"context"
	"fmt"
	"time"
)

// GetTaskProject resolves the project a task belongs to, for authorizing the
// narrow single-task operations.
func (s *PostgresStore) GetTaskProject(ctx context.Context, taskID string) (string, error) {
	var projectID string
	err := s.db.QueryRowContext(ctx, `
		SELECT ph.project_id
		FROM tasks t
		JOIN phases ph ON ph.id = t.phase_id
		WHERE t.id = $1
	`, taskID).Scan(&projectID)
	if err != nil {
		return "", err
	}
	return projectID, nil
}

func (s *PostgresStore) ToggleTask(ctx context.Context, taskID string, isCompleted bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET is_completed = $2 WHERE id = $1
	`, taskID, isCompleted)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return nil
}

// AssignTask sets or clears (nil) a task's assignee.
func (s *PostgresStore) AssignTask(ctx context.Context, taskID string, userID *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET assigned_to_id = $2 WHERE id = $1
	`, taskID, userID)
	if err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

// UpdateTaskDetails is the one code path allowed to touch the fields the
// structural reconciliation preserves.
func (s *PostgresStore) UpdateTaskDetails(ctx context.Context, taskID string, deadline *time.Time, estimatedCost, actualCost float64, isCompleted bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET deadline = $2, estimated_cost = $3, actual_cost = $4, is_completed = $5
		WHERE id = $1
	`, taskID, deadline, estimatedCost, actualCost, isCompleted)
	if err != nil {
		return fmt.Errorf("update task details: %w", err)
	}
	return nil
}
