package store

import (
	"context"
	"database/sql"
	"fmt"

	"hitched/api/internal/roadmap"
)

// ListPhases returns the full roadmap tree for a project: phases in order,
// each with its tasks in order and assignee names joined in.
func (s *PostgresStore) ListPhases(ctx context.Context, projectID string) ([]Phase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, sort_order
		FROM phases
		WHERE project_id = $1
		ORDER BY sort_order ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	phases := make([]Phase, 0)
	index := make(map[string]int)
	for rows.Next() {
		var phase Phase
		if err := rows.Scan(&phase.ID, &phase.ProjectID, &phase.Title, &phase.SortOrder); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		phase.Tasks = make([]Task, 0)
		index[phase.ID] = len(phases)
		phases = append(phases, phase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phases: %w", err)
	}

	taskRows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.phase_id, t.title, t.sort_order, t.is_completed, t.deadline,
			t.estimated_cost, t.actual_cost, t.assigned_to_id, u.name
		FROM tasks t
		JOIN phases ph ON ph.id = t.phase_id
		LEFT JOIN users u ON u.id = t.assigned_to_id
		WHERE ph.project_id = $1
		ORDER BY t.sort_order ASC, t.id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var task Task
		if err := taskRows.Scan(&task.ID, &task.PhaseID, &task.Title, &task.SortOrder, &task.IsCompleted,
			&task.Deadline, &task.EstimatedCost, &task.ActualCost, &task.AssignedToID, &task.AssignedToName); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if i, ok := index[task.PhaseID]; ok {
			phases[i].Tasks = append(phases[i].Tasks, task)
		}
	}
	if err := taskRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return phases, nil
}

// ReconcileRoadmap converges the persisted phase/task rows onto the incoming
// structure inside one transaction. The current skeleton is read and diffed
// within the same transaction, so the whole call is all-or-nothing; two
// concurrent calls race at commit and the last one wins wholesale.
func (s *PostgresStore) ReconcileRoadmap(ctx context.Context, projectID string, incoming []roadmap.PhaseInput, newID func(prefix string) string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reconcile tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := roadmapSkeleton(ctx, tx, projectID)
	if err != nil {
		return err
	}

	plan := roadmap.BuildPlan(existing, incoming, newID)

	for _, phaseID := range plan.DeletePhaseIDs {
		// tasks go with the phase via FK cascade
		if _, err := tx.ExecContext(ctx, `DELETE FROM phases WHERE id = $1 AND project_id = $2`, phaseID, projectID); err != nil {
			return fmt.Errorf("delete phase %s: %w", phaseID, err)
		}
	}
	for _, taskID := range plan.DeleteTaskIDs {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM tasks
			WHERE id = $1
				AND EXISTS (SELECT 1 FROM phases ph WHERE ph.id = tasks.phase_id AND ph.project_id = $2)
		`, taskID, projectID); err != nil {
			return fmt.Errorf("delete task %s: %w", taskID, err)
		}
	}

	for _, phase := range plan.Phases {
		if phase.Create {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO phases (id, project_id, title, sort_order) VALUES ($1, $2, $3, $4)
			`, phase.ID, projectID, phase.Title, phase.Order); err != nil {
				return fmt.Errorf("insert phase: %w", err)
			}
			continue
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE phases SET title = $2, sort_order = $3 WHERE id = $1 AND project_id = $4
		`, phase.ID, phase.Title, phase.Order, projectID)
		if err != nil {
			return fmt.Errorf("update phase %s: %w", phase.ID, err)
		}
		if affected, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("update phase %s: %w", phase.ID, err)
		} else if affected == 0 {
			return fmt.Errorf("update phase %s: unknown phase id", phase.ID)
		}
	}

	for _, task := range plan.Tasks {
		if task.Create {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (id, phase_id, title, sort_order, is_completed) VALUES ($1, $2, $3, $4, FALSE)
			`, task.ID, task.PhaseID, task.Title, task.Order); err != nil {
				return fmt.Errorf("insert task: %w", err)
			}
			continue
		}
		// Structural save touches title, order and phase binding only; the
		// detail columns (deadline, costs, assignment, completion) are left
		// exactly as they are.
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET title = $2, sort_order = $3, phase_id = $4
			WHERE id = $1
				AND EXISTS (SELECT 1 FROM phases ph WHERE ph.id = tasks.phase_id AND ph.project_id = $5)
		`, task.ID, task.Title, task.Order, task.PhaseID, projectID)
		if err != nil {
			return fmt.Errorf("update task %s: %w", task.ID, err)
		}
		if affected, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("update task %s: %w", task.ID, err)
		} else if affected == 0 {
			return fmt.Errorf("update task %s: unknown task id", task.ID)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = NOW() WHERE id = $1`, projectID); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reconcile: %w", err)
	}
	return nil
}

// roadmapSkeleton loads just the identity tree (phase ids and their task
// ids) inside the reconciliation transaction.
func roadmapSkeleton(ctx context.Context, tx *sql.Tx, projectID string) ([]roadmap.ExistingPhase, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT ph.id, t.id
		FROM phases ph
		LEFT JOIN tasks t ON t.phase_id = ph.id
		WHERE ph.project_id = $1
		ORDER BY ph.sort_order ASC, ph.id ASC, t.sort_order ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap skeleton: %w", err)
	}
	defer rows.Close()

	var phases []roadmap.ExistingPhase
	index := make(map[string]int)
	for rows.Next() {
		var phaseID string
		var taskID *string
		if err := rows.Scan(&phaseID, &taskID); err != nil {
			return nil, fmt.Errorf("scan roadmap skeleton: %w", err)
		}
		i, ok := index[phaseID]
		if !ok {
			i = len(phases)
			index[phaseID] = i
			phases = append(phases, roadmap.ExistingPhase{ID: phaseID})
		}
		if taskID != nil {
			phases[i].TaskIDs = append(phases[i].TaskIDs, *taskID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roadmap skeleton: %w", err)
	}
	return phases, nil
}
