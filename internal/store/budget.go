package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) ListBudgetItems(ctx context.Context, projectID string) ([]BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, category, name, estimated, actual, paid
		FROM budget_items
		WHERE project_id = $1
		ORDER BY category ASC, name ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	defer rows.Close()

	items := make([]BudgetItem, 0)
	for rows.Next() {
		var item BudgetItem
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Category, &item.Name, &item.Estimated, &item.Actual, &item.Paid); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateBudgetItem(ctx context.Context, item BudgetItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_items (id, project_id, category, name, estimated, actual, paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.ProjectID, item.Category, item.Name, item.Estimated, item.Actual, item.Paid)
	if err != nil {
		return fmt.Errorf("insert budget item: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateBudgetItem(ctx context.Context, item BudgetItem) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE budget_items SET category = $2, name = $3, estimated = $4, actual = $5, paid = $6
		WHERE id = $1 AND project_id = $7
	`, item.ID, item.Category, item.Name, item.Estimated, item.Actual, item.Paid, item.ProjectID)
	if err != nil {
		return fmt.Errorf("update budget item: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBudgetItem(ctx context.Context, itemID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM budget_items WHERE id = $1 AND project_id = $2`, itemID, projectID)
	if err != nil {
		return fmt.Errorf("delete budget item: %w", err)
	}
	return nil
}

// ListCostedPhases returns phases whose tasks carry estimated or actual
// costs, tasks ordered by deadline for the spending curve.
func (s *PostgresStore) ListCostedPhases(ctx context.Context, projectID string) ([]Phase, error) {
	phases, err := s.ListPhases(ctx, projectID)
	if err != nil {
		return nil, err
	}

	costed := make([]Phase, 0)
	for _, phase := range phases {
		var tasks []Task
		for _, task := range phase.Tasks {
			if task.EstimatedCost > 0 || task.ActualCost > 0 {
				tasks = append(tasks, task)
			}
		}
		if len(tasks) == 0 {
			continue
		}
		phase.Tasks = tasks
		costed = append(costed, phase)
	}
	return costed, nil
}
