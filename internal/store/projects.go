package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateProject inserts the project and its OWNER collaborator atomically.
// A project can never exist without exactly one owner.
func (s *PostgresStore) CreateProject(ctx context.Context, project Project, ownerUserID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create project tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, title) VALUES ($1, $2)
	`, project.ID, project.Title); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO collaborators (user_id, project_id, role) VALUES ($1, $2, 'OWNER')
	`, ownerUserID, project.ID); err != nil {
		return fmt.Errorf("insert owner collaborator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	var project Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at FROM projects WHERE id = $1
	`, projectID).Scan(&project.ID, &project.Title, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *PostgresStore) ListProjectsForUser(ctx context.Context, userID string) ([]ProjectMembership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.created_at, p.updated_at, c.role,
			(SELECT COUNT(*) FROM collaborators pc WHERE pc.project_id = p.id) AS collaborator_count
		FROM collaborators c
		JOIN projects p ON p.id = c.project_id
		WHERE c.user_id = $1
		ORDER BY p.updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]ProjectMembership, 0)
	for rows.Next() {
		var item ProjectMembership
		if err := rows.Scan(&item.ID, &item.Title, &item.CreatedAt, &item.UpdatedAt, &item.Role, &item.CollaboratorCount); err != nil {
			return nil, fmt.Errorf("scan project membership: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project memberships: %w", err)
	}
	return items, nil
}

// DeleteProject removes the tenancy root; every sub-entity goes with it via
// FK cascade.
func (s *PostgresStore) DeleteProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *PostgresStore) TouchProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE projects SET updated_at = NOW() WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("touch project: %w", err)
	}
	return nil
}

func (s *PostgresStore) ProjectTaskStats(ctx context.Context, projectID string) (TaskStats, error) {
	var stats TaskStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE t.is_completed)
		FROM tasks t
		JOIN phases ph ON ph.id = t.phase_id
		WHERE ph.project_id = $1
	`, projectID).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return TaskStats{}, fmt.Errorf("project task stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) ProjectBudgetTotals(ctx context.Context, projectID string) (BudgetTotals, error) {
	var totals BudgetTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(estimated), 0), COALESCE(SUM(actual), 0), COALESCE(SUM(paid), 0)
		FROM budget_items
		WHERE project_id = $1
	`, projectID).Scan(&totals.Estimated, &totals.Actual, &totals.Paid)
	if err != nil {
		return BudgetTotals{}, fmt.Errorf("project budget totals: %w", err)
	}
	return totals, nil
}

func (s *PostgresStore) CollaboratorCount(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collaborators WHERE project_id = $1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("collaborator count: %w", err)
	}
	return count, nil
}

// NextEvent returns the project's earliest upcoming itinerary entry, or nil
// when the itinerary is empty.
func (s *PostgresStore) NextEvent(ctx context.Context, projectID string) (*Event, error) {
	var event Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, time_of_day, date, location, description, sort_order
		FROM events
		WHERE project_id = $1
		ORDER BY date ASC, sort_order ASC
		LIMIT 1
	`, projectID).Scan(&event.ID, &event.ProjectID, &event.Title, &event.TimeOfDay, &event.Date, &event.Location, &event.Description, &event.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next event: %w", err)
	}
	return &event, nil
}
