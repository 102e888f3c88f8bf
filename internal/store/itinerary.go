package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) ListEvents(ctx context.Context, projectID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, time_of_day, date, location, description, sort_order
		FROM events
		WHERE project_id = $1
		ORDER BY date ASC, sort_order ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.ProjectID, &event.Title, &event.TimeOfDay, &event.Date,
			&event.Location, &event.Description, &event.SortOrder); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

// CreateEvent appends the event at the end of the project's ordering.
func (s *PostgresStore) CreateEvent(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, project_id, title, time_of_day, date, location, description, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM events WHERE project_id = $2))
	`, event.ID, event.ProjectID, event.Title, event.TimeOfDay, event.Date, event.Location, event.Description)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateEvent(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title = $2, time_of_day = $3, date = $4, location = $5, description = $6
		WHERE id = $1 AND project_id = $7
	`, event.ID, event.Title, event.TimeOfDay, event.Date, event.Location, event.Description, event.ProjectID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, eventID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND project_id = $2`, eventID, projectID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// EventOrder is one entry in a bulk reorder request.
type EventOrder struct {
	ID        string
	SortOrder int
}

// ReorderEvents applies a bulk ordering in one transaction.
func (s *PostgresStore) ReorderEvents(ctx context.Context, projectID string, items []EventOrder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			UPDATE events SET sort_order = $2 WHERE id = $1 AND project_id = $3
		`, item.ID, item.SortOrder, projectID); err != nil {
			return fmt.Errorf("reorder event %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}
