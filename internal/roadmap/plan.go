package roadmap

// ExistingPhase describes a persisted phase and the ids of its tasks. The
// planner only needs identity, not titles or task details.
type ExistingPhase struct {
	ID      string
	TaskIDs []string
}

// PhaseWrite is a single phase upsert. Create distinguishes INSERT from
// UPDATE; either way Title and Order are the only columns written.
type PhaseWrite struct {
	ID     string
	Title  string
	Order  int
	Create bool
}

// TaskWrite is a single task upsert. Updates write title, order and the
// owning phase, never deadline, costs, assignment or completion, so a
// structural save cannot disturb task details.
type TaskWrite struct {
	ID      string
	PhaseID string
	Title   string
	Order   int
	Create  bool
}

// Plan is the full set of writes that converges the persisted tree onto the
// submitted structure. Deletes run first, then phase writes in submitted
// order, then task writes.
type Plan struct {
	DeletePhaseIDs []string
	DeleteTaskIDs  []string
	Phases         []PhaseWrite
	Tasks          []TaskWrite
}

// Empty reports whether executing the plan would write nothing.
func (p Plan) Empty() bool {
	return len(p.DeletePhaseIDs) == 0 && len(p.DeleteTaskIDs) == 0 &&
		len(p.Phases) == 0 && len(p.Tasks) == 0
}

// BuildPlan diffs the incoming structure against the persisted one.
//
// Anything persisted but absent from the input is deleted: omission is the
// removal mechanism. Deleting a phase takes its tasks with it (FK cascade),
// so DeleteTaskIDs only lists tasks orphaned out of surviving phases. A task
// id submitted under a different phase than it lives in is treated as a
// move, not a delete-and-recreate, so its detail fields survive.
//
// newID mints ids for descriptors that carry none; injected so the planner
// stays deterministic under test.
func BuildPlan(existing []ExistingPhase, incoming []PhaseInput, newID func(prefix string) string) Plan {
	var plan Plan

	keepPhases := make(map[string]bool)
	keepTasks := make(map[string]bool)
	for _, phase := range incoming {
		if phase.ID != nil {
			keepPhases[*phase.ID] = true
		}
		for _, task := range phase.Tasks {
			if task.ID != nil {
				keepTasks[*task.ID] = true
			}
		}
	}

	for _, phase := range existing {
		if !keepPhases[phase.ID] {
			plan.DeletePhaseIDs = append(plan.DeletePhaseIDs, phase.ID)
			continue
		}
		for _, taskID := range phase.TaskIDs {
			if !keepTasks[taskID] {
				plan.DeleteTaskIDs = append(plan.DeleteTaskIDs, taskID)
			}
		}
	}

	for i, phase := range incoming {
		write := PhaseWrite{Title: phase.Title, Order: i}
		if phase.ID != nil {
			write.ID = *phase.ID
		} else {
			write.ID = newID("phase")
			write.Create = true
		}
		plan.Phases = append(plan.Phases, write)

		for j, task := range phase.Tasks {
			taskWrite := TaskWrite{PhaseID: write.ID, Title: task.Title, Order: j}
			if task.ID != nil {
				taskWrite.ID = *task.ID
			} else {
				taskWrite.ID = newID("task")
				taskWrite.Create = true
			}
			plan.Tasks = append(plan.Tasks, taskWrite)
		}
	}

	return plan
}
