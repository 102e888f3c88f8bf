package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"hitched/api/internal/products"
	"hitched/api/internal/rbac"
	"hitched/api/internal/search"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// GiftInput is the save payload for a registry gift. An empty ID
// creates, a present ID updates.
type GiftInput struct {
	ID       string
	Name     string
	Price    float64
	ImageURL string
	URL      string
}

func (s *Service) ListGifts(ctx context.Context, session Session, projectID string) ([]store.Gift, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListGifts(ctx, projectID)
}

func (s *Service) SaveGift(ctx context.Context, session Session, projectID string, in GiftInput) (store.Gift, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return store.Gift{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.Gift{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Gift name is required", nil)
	}
	if in.Price < 0 {
		return store.Gift{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Gift price cannot be negative", nil)
	}

	gift := store.Gift{
		ID:        in.ID,
		ProjectID: projectID,
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		ImageURL:  in.ImageURL,
		URL:       in.URL,
	}
	if gift.ID == "" {
		gift.ID = util.NewID("gft")
		if err := s.store.CreateGift(ctx, gift); err != nil {
			return store.Gift{}, err
		}
	} else {
		if err := s.store.UpdateGift(ctx, gift); err != nil {
			return store.Gift{}, err
		}
	}
	if s.search != nil {
		s.search.IndexGift(search.GiftRecord{ID: gift.ID, Name: gift.Name, ProjectID: projectID})
	}
	return gift, nil
}

func (s *Service) DeleteGift(ctx context.Context, session Session, projectID, giftID string) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	if err := s.store.DeleteGift(ctx, giftID, projectID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteGift(giftID)
	}
	return nil
}

// SetGiftClaimant overrides a gift's claim from the planner side. A nil
// name clears the claim so guests can take it again.
func (s *Service) SetGiftClaimant(ctx context.Context, session Session, projectID, giftID string, takenBy *string) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	if takenBy != nil && strings.TrimSpace(*takenBy) == "" {
		takenBy = nil
	}
	return s.store.SetGiftClaimant(ctx, giftID, projectID, takenBy)
}

// SearchProducts queries the external product catalog for registry
// suggestions. Unconfigured or failing upstream degrades to an error the
// client can show, never a crash.
func (s *Service) SearchProducts(ctx context.Context, session Session, projectID, query string) ([]products.Product, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return nil, err
	}
	if s.products == nil || !s.products.IsConfigured() {
		return nil, domainError(http.StatusServiceUnavailable, "SERVER_ERROR", "Product search is not configured", nil)
	}
	if strings.TrimSpace(query) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Search query is required", nil)
	}
	items, err := s.products.Search(ctx, query)
	if err != nil {
		return nil, domainError(http.StatusBadGateway, "SERVER_ERROR", "Product search is temporarily unavailable", nil)
	}
	return items, nil
}

func (s *Service) giftProjectOr404(ctx context.Context, giftID string) (store.Gift, error) {
	gift, err := s.store.GetGift(ctx, giftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Gift{}, domainError(http.StatusNotFound, "NOT_FOUND", "Gift not found", nil)
		}
		return store.Gift{}, err
	}
	return gift, nil
}
