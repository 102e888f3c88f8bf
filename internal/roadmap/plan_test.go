package roadmap

import (
	"fmt"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

// sequentialIDs returns a deterministic id minter for tests.
func sequentialIDs() func(prefix string) string {
	counter := 0
	return func(prefix string) string {
		counter++
		return fmt.Sprintf("%s_new%d", prefix, counter)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		phases  []PhaseInput
		wantErr string
	}{
		{
			name:   "valid structure",
			phases: []PhaseInput{{Title: "Venue", Tasks: []TaskInput{{Title: "Book it"}}}},
		},
		{
			name:    "blank phase title",
			phases:  []PhaseInput{{Title: "  "}},
			wantErr: "phase 0: title is required",
		},
		{
			name: "blank task title",
			phases: []PhaseInput{
				{Title: "Venue", Tasks: []TaskInput{{Title: "Book it"}, {Title: ""}}},
			},
			wantErr: "phase 0 task 1: title is required",
		},
		{
			name:   "empty structure is valid shape",
			phases: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.phases)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBuildPlanDeletesOmittedPhases(t *testing.T) {
	existing := []ExistingPhase{
		{ID: "phase_a", TaskIDs: []string{"task_1", "task_2"}},
		{ID: "phase_b", TaskIDs: []string{"task_3"}},
	}
	incoming := []PhaseInput{
		{ID: strPtr("phase_b"), Title: "Keep me", Tasks: []TaskInput{{ID: strPtr("task_3"), Title: "Still here"}}},
	}

	plan := BuildPlan(existing, incoming, sequentialIDs())

	if len(plan.DeletePhaseIDs) != 1 || plan.DeletePhaseIDs[0] != "phase_a" {
		t.Fatalf("expected phase_a deleted, got %v", plan.DeletePhaseIDs)
	}
	// phase_a's tasks go via cascade, not via explicit task deletes
	if len(plan.DeleteTaskIDs) != 0 {
		t.Fatalf("expected no task deletes, got %v", plan.DeleteTaskIDs)
	}
}

func TestBuildPlanDeletesOmittedTasksInSurvivingPhase(t *testing.T) {
	existing := []ExistingPhase{
		{ID: "phase_a", TaskIDs: []string{"task_1", "task_2", "task_3"}},
	}
	incoming := []PhaseInput{
		{ID: strPtr("phase_a"), Title: "Venue", Tasks: []TaskInput{
			{ID: strPtr("task_2"), Title: "Survivor"},
		}},
	}

	plan := BuildPlan(existing, incoming, sequentialIDs())

	if len(plan.DeleteTaskIDs) != 2 {
		t.Fatalf("expected 2 task deletes, got %v", plan.DeleteTaskIDs)
	}
	deleted := map[string]bool{plan.DeleteTaskIDs[0]: true, plan.DeleteTaskIDs[1]: true}
	if !deleted["task_1"] || !deleted["task_3"] {
		t.Fatalf("expected task_1 and task_3 deleted, got %v", plan.DeleteTaskIDs)
	}
}

func TestBuildPlanOrderFollowsArrayPosition(t *testing.T) {
	existing := []ExistingPhase{
		{ID: "phase_a", TaskIDs: []string{"task_1", "task_2"}},
		{ID: "phase_b", TaskIDs: nil},
	}
	// phases swapped, tasks within phase_a reversed
	incoming := []PhaseInput{
		{ID: strPtr("phase_b"), Title: "Second first"},
		{ID: strPtr("phase_a"), Title: "First second", Tasks: []TaskInput{
			{ID: strPtr("task_2"), Title: "Was last"},
			{ID: strPtr("task_1"), Title: "Was first"},
		}},
	}

	plan := BuildPlan(existing, incoming, sequentialIDs())

	if plan.Phases[0].ID != "phase_b" || plan.Phases[0].Order != 0 {
		t.Fatalf("expected phase_b at order 0, got %+v", plan.Phases[0])
	}
	if plan.Phases[1].ID != "phase_a" || plan.Phases[1].Order != 1 {
		t.Fatalf("expected phase_a at order 1, got %+v", plan.Phases[1])
	}
	if plan.Tasks[0].ID != "task_2" || plan.Tasks[0].Order != 0 {
		t.Fatalf("expected task_2 at order 0, got %+v", plan.Tasks[0])
	}
	if plan.Tasks[1].ID != "task_1" || plan.Tasks[1].Order != 1 {
		t.Fatalf("expected task_1 at order 1, got %+v", plan.Tasks[1])
	}
}

func TestBuildPlanMintsIDsForNewDescriptors(t *testing.T) {
	incoming := []PhaseInput{
		{Title: "Brand new", Tasks: []TaskInput{{Title: "New task"}}},
	}

	plan := BuildPlan(nil, incoming, sequentialIDs())

	if len(plan.Phases) != 1 || !plan.Phases[0].Create {
		t.Fatalf("expected one phase create, got %+v", plan.Phases)
	}
	if plan.Phases[0].ID != "phase_new1" {
		t.Fatalf("expected minted phase id, got %q", plan.Phases[0].ID)
	}
	if len(plan.Tasks) != 1 || !plan.Tasks[0].Create {
		t.Fatalf("expected one task create, got %+v", plan.Tasks)
	}
	if plan.Tasks[0].PhaseID != "phase_new1" {
		t.Fatalf("new task must attach to the minted phase id, got %q", plan.Tasks[0].PhaseID)
	}
}

func TestBuildPlanIdempotent(t *testing.T) {
	// Second submission echoes the ids the first one produced: no creates,
	// no deletes, identical ordering.
	existing := []ExistingPhase{
		{ID: "phase_a", TaskIDs: []string{"task_1"}},
		{ID: "phase_b", TaskIDs: []string{"task_2", "task_3"}},
	}
	incoming := []PhaseInput{
		{ID: strPtr("phase_a"), Title: "Coordinates", Tasks: []TaskInput{{ID: strPtr("task_1"), Title: "Budget"}}},
		{ID: strPtr("phase_b"), Title: "Scenery", Tasks: []TaskInput{
			{ID: strPtr("task_2"), Title: "Venue"},
			{ID: strPtr("task_3"), Title: "Caterer"},
		}},
	}

	plan := BuildPlan(existing, incoming, sequentialIDs())

	if len(plan.DeletePhaseIDs) != 0 || len(plan.DeleteTaskIDs) != 0 {
		t.Fatalf("idempotent call must not delete anything: %+v", plan)
	}
	for _, phase := range plan.Phases {
		if phase.Create {
			t.Fatalf("idempotent call must not create phases: %+v", phase)
		}
	}
	for _, task := range plan.Tasks {
		if task.Create {
			t.Fatalf("idempotent call must not create tasks: %+v", task)
		}
	}
}

func TestBuildPlanTreatsCrossPhaseTaskAsMove(t *testing.T) {
	existing := []ExistingPhase{
		{ID: "phase_a", TaskIDs: []string{"task_1"}},
		{ID: "phase_b", TaskIDs: nil},
	}
	incoming := []PhaseInput{
		{ID: strPtr("phase_a"), Title: "A"},
		{ID: strPtr("phase_b"), Title: "B", Tasks: []TaskInput{{ID: strPtr("task_1"), Title: "Moved"}}},
	}

	plan := BuildPlan(existing, incoming, sequentialIDs())

	if len(plan.DeleteTaskIDs) != 0 {
		t.Fatalf("moved task must not be deleted: %v", plan.DeleteTaskIDs)
	}
	if len(plan.Tasks) != 1 || plan.Tasks[0].PhaseID != "phase_b" || plan.Tasks[0].Create {
		t.Fatalf("expected task_1 rebound to phase_b as an update, got %+v", plan.Tasks)
	}
}

func TestBuildPlanEmptyInputClearsEverything(t *testing.T) {
	existing := []ExistingPhase{
		{ID: "phase_a", TaskIDs: []string{"task_1"}},
		{ID: "phase_b", TaskIDs: nil},
	}

	plan := BuildPlan(existing, nil, sequentialIDs())

	if len(plan.DeletePhaseIDs) != 2 {
		t.Fatalf("expected both phases deleted, got %v", plan.DeletePhaseIDs)
	}
	if len(plan.Phases) != 0 || len(plan.Tasks) != 0 {
		t.Fatalf("expected no writes, got %+v", plan)
	}
}

func TestDefaultTemplateIsValid(t *testing.T) {
	phases := DefaultTemplate()
	if len(phases) != 6 {
		t.Fatalf("expected 6 phases, got %d", len(phases))
	}
	if err := Validate(phases); err != nil {
		t.Fatalf("template must validate: %v", err)
	}
	for i, phase := range phases {
		if phase.ID != nil {
			t.Fatalf("template phase %d must not carry an id", i)
		}
		if len(phase.Tasks) == 0 {
			t.Fatalf("template phase %q has no tasks", phase.Title)
		}
	}
}
