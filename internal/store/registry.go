package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) ListGifts(ctx context.Context, projectID string) ([]Gift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, price, image_url, url, taken_by, message
		FROM gifts
		WHERE project_id = $1
		ORDER BY name ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	defer rows.Close()

	items := make([]Gift, 0)
	for rows.Next() {
		var gift Gift
		if err := rows.Scan(&gift.ID, &gift.ProjectID, &gift.Name, &gift.Price, &gift.ImageURL,
			&gift.URL, &gift.TakenBy, &gift.Message); err != nil {
			return nil, fmt.Errorf("scan gift: %w", err)
		}
		items = append(items, gift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gifts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetGift(ctx context.Context, giftID string) (Gift, error) {
	var gift Gift
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, price, image_url, url, taken_by, message
		FROM gifts
		WHERE id = $1
	`, giftID).Scan(&gift.ID, &gift.ProjectID, &gift.Name, &gift.Price, &gift.ImageURL,
		&gift.URL, &gift.TakenBy, &gift.Message)
	if err != nil {
		return Gift{}, err
	}
	return gift, nil
}

func (s *PostgresStore) CreateGift(ctx context.Context, gift Gift) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gifts (id, project_id, name, price, image_url, url, taken_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)
	`, gift.ID, gift.ProjectID, gift.Name, gift.Price, gift.ImageURL, gift.URL)
	if err != nil {
		return fmt.Errorf("insert gift: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateGift(ctx context.Context, gift Gift) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE gifts SET name = $2, price = $3, image_url = $4, url = $5
		WHERE id = $1 AND project_id = $6
	`, gift.ID, gift.Name, gift.Price, gift.ImageURL, gift.URL, gift.ProjectID)
	if err != nil {
		return fmt.Errorf("update gift: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteGift(ctx context.Context, giftID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM gifts WHERE id = $1 AND project_id = $2`, giftID, projectID)
	if err != nil {
		return fmt.Errorf("delete gift: %w", err)
	}
	return nil
}

// SetGiftClaimant is the planner-side tracking write: it can set or clear a
// claimant unconditionally.
func (s *PostgresStore) SetGiftClaimant(ctx context.Context, giftID, projectID string, takenBy *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE gifts SET taken_by = $2, message = NULL WHERE id = $1 AND project_id = $3
	`, giftID, takenBy, projectID)
	if err != nil {
		return fmt.Errorf("set gift claimant: %w", err)
	}
	return nil
}

// ClaimGift is the public-surface claim: first come, first served. Returns
// ErrGiftClaimed when somebody else got there first.
func (s *PostgresStore) ClaimGift(ctx context.Context, giftID, guestName, message string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE gifts SET taken_by = $2, message = $3 WHERE id = $1 AND taken_by IS NULL
	`, giftID, guestName, message)
	if err != nil {
		return fmt.Errorf("claim gift: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim gift: %w", err)
	}
	if affected == 0 {
		return ErrGiftClaimed
	}
	return nil
}
