package app

import (
	"context"
	"net/http"
	"strings"

	"hitched/api/internal/rbac"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

// BudgetItemInput is the save payload for a budget line. An empty ID
// creates, a present ID updates.
type BudgetItemInput struct {
	ID        string
	Category  string
	Name      string
	Estimated float64
	Actual    float64
	Paid      float64
}

func (s *Service) ListBudgetItems(ctx context.Context, session Session, projectID string) ([]store.BudgetItem, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListBudgetItems(ctx, projectID)
}

func (s *Service) SaveBudgetItem(ctx context.Context, session Session, projectID string, in BudgetItemInput) (store.BudgetItem, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return store.BudgetItem{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.BudgetItem{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Budget item name is required", nil)
	}
	if in.Estimated < 0 || in.Actual < 0 || in.Paid < 0 {
		return store.BudgetItem{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Budget amounts cannot be negative", nil)
	}

	item := store.BudgetItem{
		ID:        in.ID,
		ProjectID: projectID,
		Category:  strings.TrimSpace(in.Category),
		Name:      strings.TrimSpace(in.Name),
		Estimated: in.Estimated,
		Actual:    in.Actual,
		Paid:      in.Paid,
	}
	if item.Category == "" {
		item.Category = "General"
	}
	if item.ID == "" {
		item.ID = util.NewID("bdg")
		if err := s.store.CreateBudgetItem(ctx, item); err != nil {
			return store.BudgetItem{}, err
		}
	} else {
		if err := s.store.UpdateBudgetItem(ctx, item); err != nil {
			return store.BudgetItem{}, err
		}
	}
	return item, nil
}

func (s *Service) DeleteBudgetItem(ctx context.Context, session Session, projectID, itemID string) error {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapEditContent); err != nil {
		return err
	}
	return s.store.DeleteBudgetItem(ctx, itemID, projectID)
}

// ListCostedPhases returns the roadmap with per-task costs, for the
// budget screen's per-phase rollup.
func (s *Service) ListCostedPhases(ctx context.Context, session Session, projectID string) ([]store.Phase, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListCostedPhases(ctx, projectID)
}

func (s *Service) ListGuests(ctx context.Context, session Session, projectID string) ([]store.Guest, error) {
	if _, err := s.requireCapability(ctx, session, projectID, rbac.CapView); err != nil {
		return nil, err
	}
	return s.store.ListGuests(ctx, projectID)
}
