package app

import (
	"context"
	"io"
	"net/http"
	"time"

	"hitched/api/internal/rbac"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// WeddingDetailsInput is the upsert payload for the public-facing
// wedding page data.
type WeddingDetailsInput struct {
	Partner1Name  string
	Partner2Name  string
	Location      string
	Date          *time.Time
	CoverImageURL string
}

func (s *Service) GetWeddingDetails(ctx context.Context, session Session, projectID string) (store.WeddingDetails, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return store.WeddingDetails{}, err
	}
	return s.store.GetWeddingDetails(ctx, projectID)
}

func (s *Service) SaveWeddingDetails(ctx context.Context, session Session, projectID string, in WeddingDetailsInput) (store.WeddingDetails, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return store.WeddingDetails{}, err
	}
	details := store.WeddingDetails{
		ProjectID:     projectID,
		Partner1Name:  in.Partner1Name,
		Partner2Name:  in.Partner2Name,
		Location:      in.Location,
		Date:          in.Date,
		CoverImageURL: in.CoverImageURL,
	}
	if err := s.store.UpsertWeddingDetails(ctx, details); err != nil {
		return store.WeddingDetails{}, err
	}
	return s.store.GetWeddingDetails(ctx, projectID)
}

// UploadImage stores an image blob and returns its public URL. The
// caller decides where the URL goes (cover, gallery, gift).
func (s *Service) UploadImage(ctx context.Context, session Session, projectID, contentType string, r io.Reader, size int64) (string, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return "", err
	}
	if s.media == nil {
		return "", domainError(http.StatusServiceUnavailable, "SERVER_ERROR", "Image hosting is not configured", nil)
	}
	url, err := s.media.Upload(ctx, projectID, contentType, r, size)
	if err != nil {
		return "", domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Image upload failed: "+err.Error(), nil)
	}
	return url, nil
}

func (s *Service) AddGalleryImage(ctx context.Context, session Session, projectID, url string) (store.GalleryImage, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return store.GalleryImage{}, err
	}
	if url == "" {
		return store.GalleryImage{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Image URL is required", nil)
	}
	image := store.GalleryImage{
		ID:        util.NewID("img"),
		ProjectID: projectID,
		URL:       url,
	}
	if err := s.store.AddGalleryImage(ctx, image); err != nil {
		return store.GalleryImage{}, err
	}
	return image, nil
}

// DeleteGalleryImage removes the row and then the hosted object. A
// failed object delete leaves an orphan blob, not a broken page.
func (s *Service) DeleteGalleryImage(ctx context.Context, session Session, projectID, imageID string) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	images, err := s.store.ListGalleryImages(ctx, projectID)
	if err != nil {
		return err
	}
	var url string
	for _, img := range images {
		if img.ID == imageID {
			url = img.URL
			break
		}
	}
	if err := s.store.DeleteGalleryImage(ctx, imageID, projectID); err != nil {
		return err
	}
	if s.media != nil && url != "" {
		_ = s.media.Delete(ctx, url)
	}
	return nil
}
