package store

import (
	"context"
	"fmt"
)

// CreateGuest is append-only: guests arrive through the public RSVP form and
// planners never edit them.
func (s *PostgresStore) CreateGuest(ctx context.Context, guest Guest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guests (id, project_id, name, email, attending, dietary, plus_one)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, guest.ID, guest.ProjectID, guest.Name, guest.Email, guest.Attending, guest.Dietary, guest.PlusOne)
	if err != nil {
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListGuests(ctx context.Context, projectID string) ([]Guest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, email, attending, dietary, plus_one, created_at
		FROM guests
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	items := make([]Guest, 0)
	for rows.Next() {
		var guest Guest
		if err := rows.Scan(&guest.ID, &guest.ProjectID, &guest.Name, &guest.Email, &guest.Attending,
			&guest.Dietary, &guest.PlusOne, &guest.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		items = append(items, guest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guests: %w", err)
	}
	return items, nil
}
