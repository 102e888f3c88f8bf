package history

import (
	"fmt"
	"sync"
	"testing"
)

func sampleRoadmap(purposeTag string) []SnapshotPhase {
	return []SnapshotPhase{
		{
			ID:    "phase_1",
			Title: "Setting the Coordinates " + purposeTag,
			Tasks: []SnapshotTask{
				{ID: "task_1", Title: "Book venue", IsCompleted: true},
				{ID: "task_2", Title: "Set budget"},
			},
		},
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	svc := New(t.TempDir())

	commit, err := svc.Snapshot("proj_1", sampleRoadmap("v1"), "Avery", "Roadmap updated")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if commit.Hash == "" {
		t.Fatal("expected commit hash")
	}

	if _, err := svc.Snapshot("proj_1", sampleRoadmap("v2"), "Avery", "Roadmap updated"); err != nil {
		t.Fatalf("second Snapshot() error = %v", err)
	}

	history, err := svc.History("proj_1", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Author != "Avery" {
		t.Errorf("author = %q, want Avery", history[0].Author)
	}

	phases, err := svc.GetSnapshot("proj_1", commit.Hash)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(phases) != 1 || phases[0].Title != "Setting the Coordinates v1" {
		t.Fatalf("unexpected snapshot content: %+v", phases)
	}
	if len(phases[0].Tasks) != 2 || !phases[0].Tasks[0].IsCompleted {
		t.Fatalf("unexpected snapshot tasks: %+v", phases[0].Tasks)
	}
}

func TestHistoryWithoutRepo(t *testing.T) {
	svc := New(t.TempDir())

	history, err := svc.History("proj_missing", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestSnapshotEmptyRoadmap(t *testing.T) {
	svc := New(t.TempDir())

	commit, err := svc.Snapshot("proj_1", nil, "Avery", "Roadmap cleared")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	phases, err := svc.GetSnapshot("proj_1", commit.Hash)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(phases) != 0 {
		t.Fatalf("expected empty roadmap, got %+v", phases)
	}
}

func TestConcurrentSnapshotsSameProject(t *testing.T) {
	svc := New(t.TempDir())

	const writers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := svc.Snapshot("proj_1", sampleRoadmap(fmt.Sprintf("v%02d", idx)), "Avery", fmt.Sprintf("Save %02d", idx)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("Snapshot() concurrent error = %v", err)
		}
	}

	history, err := svc.History("proj_1", 100)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != writers {
		t.Fatalf("expected %d commits, got %d", writers, len(history))
	}
}
