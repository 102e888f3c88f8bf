package store

import (
	"context"
	"fmt"
)

// GetCollaborator is the access-control read: one row keyed by
// (user, project). sql.ErrNoRows means the caller has no membership.
func (s *PostgresStore) GetCollaborator(ctx context.Context, userID, projectID string) (Collaborator, error) {
	var c Collaborator
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, project_id, role, created_at
		FROM collaborators
		WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&c.UserID, &c.ProjectID, &c.Role, &c.CreatedAt)
	if err != nil {
		return Collaborator{}, err
	}
	return c, nil
}

func (s *PostgresStore) ListCollaborators(ctx context.Context, projectID string) ([]Collaborator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.user_id, c.project_id, c.role, c.created_at, u.name, u.email, u.avatar_url
		FROM collaborators c
		JOIN users u ON u.id = c.user_id
		WHERE c.project_id = $1
		ORDER BY c.created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	items := make([]Collaborator, 0)
	for rows.Next() {
		var c Collaborator
		if err := rows.Scan(&c.UserID, &c.ProjectID, &c.Role, &c.CreatedAt, &c.UserName, &c.UserEmail, &c.UserAvatarURL); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collaborators: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) AddCollaborator(ctx context.Context, c Collaborator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collaborators (user_id, project_id, role) VALUES ($1, $2, $3)
	`, c.UserID, c.ProjectID, c.Role)
	if err != nil {
		return fmt.Errorf("insert collaborator: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveCollaborator(ctx context.Context, userID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM collaborators WHERE user_id = $1 AND project_id = $2
	`, userID, projectID)
	if err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	return nil
}
