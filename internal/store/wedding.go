package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetWeddingDetails returns the public-page metadata with gallery images
// attached. A project without saved details yields a zero-value record
// rather than an error.
func (s *PostgresStore) GetWeddingDetails(ctx context.Context, projectID string) (WeddingDetails, error) {
	var details WeddingDetails
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, partner1_name, partner2_name, location, date, cover_image_url
		FROM wedding_details
		WHERE project_id = $1
	`, projectID).Scan(&details.ProjectID, &details.Partner1Name, &details.Partner2Name,
		&details.Location, &details.Date, &details.CoverImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		details = WeddingDetails{ProjectID: projectID}
	} else if err != nil {
		return WeddingDetails{}, fmt.Errorf("get wedding details: %w", err)
	}

	gallery, err := s.ListGalleryImages(ctx, projectID)
	if err != nil {
		return WeddingDetails{}, err
	}
	details.Gallery = gallery
	return details, nil
}

func (s *PostgresStore) UpsertWeddingDetails(ctx context.Context, details WeddingDetails) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wedding_details (project_id, partner1_name, partner2_name, location, date, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id) DO UPDATE SET
			partner1_name = EXCLUDED.partner1_name,
			partner2_name = EXCLUDED.partner2_name,
			location = EXCLUDED.location,
			date = EXCLUDED.date,
			cover_image_url = CASE WHEN EXCLUDED.cover_image_url <> '' THEN EXCLUDED.cover_image_url ELSE wedding_details.cover_image_url END
	`, details.ProjectID, details.Partner1Name, details.Partner2Name, details.Location, details.Date, details.CoverImageURL)
	if err != nil {
		return fmt.Errorf("upsert wedding details: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddGalleryImage(ctx context.Context, image GalleryImage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gallery_images (id, project_id, url) VALUES ($1, $2, $3)
	`, image.ID, image.ProjectID, image.URL)
	if err != nil {
		return fmt.Errorf("insert gallery image: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteGalleryImage(ctx context.Context, imageID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1 AND project_id = $2`, imageID, projectID)
	if err != nil {
		return fmt.Errorf("delete gallery image: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListGalleryImages(ctx context.Context, projectID string) ([]GalleryImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, url FROM gallery_images WHERE project_id = $1 ORDER BY id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list gallery images: %w", err)
	}
	defer rows.Close()

	items := make([]GalleryImage, 0)
	for rows.Next() {
		var image GalleryImage
		if err := rows.Scan(&image.ID, &image.ProjectID, &image.URL); err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		items = append(items, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery images: %w", err)
	}
	return items, nil
}
