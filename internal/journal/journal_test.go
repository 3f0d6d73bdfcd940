package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/academy/internal/domain"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)

	if err := j.RecordRun(42, &domain.ExecutionResult{Success: false, Message: "Wrong Answer"}, 120*time.Millisecond); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := j.RecordSubmission(42, &domain.SubmissionResult{Success: true, Message: "Correct!"}, 300*time.Millisecond); err != nil {
		t.Fatalf("RecordSubmission() error = %v", err)
	}

	attempts, err := j.Recent(42, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("Recent() returned %d attempts, want 2", len(attempts))
	}
	for _, a := range attempts {
		if a.ExerciseID != 42 {
			t.Errorf("attempt exercise_id = %d, want 42", a.ExerciseID)
		}
		if a.ID == "" {
			t.Error("attempt ID should not be empty")
		}
	}
}

func TestRecentFiltersByExercise(t *testing.T) {
	j := openTestJournal(t)

	j.RecordRun(1, &domain.ExecutionResult{Success: true}, 0)
	j.RecordRun(2, &domain.ExecutionResult{Success: true}, 0)

	attempts, err := j.Recent(1, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("Recent(1) returned %d attempts, want 1", len(attempts))
	}
}

func TestStatsFor(t *testing.T) {
	j := openTestJournal(t)

	j.RecordRun(7, &domain.ExecutionResult{Success: false}, 0)
	j.RecordRun(7, &domain.ExecutionResult{Success: true}, 0)
	j.RecordSubmission(7, &domain.SubmissionResult{Success: true}, 0)

	stats, err := j.StatsFor(7)
	if err != nil {
		t.Fatalf("StatsFor() error = %v", err)
	}
	if stats.Runs != 2 {
		t.Errorf("Runs = %d, want 2", stats.Runs)
	}
	if stats.Submissions != 1 {
		t.Errorf("Submissions = %d, want 1", stats.Submissions)
	}
	if stats.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", stats.Succeeded)
	}
}

func TestStatsForEmptyExercise(t *testing.T) {
	j := openTestJournal(t)

	stats, err := j.StatsFor(99)
	if err != nil {
		t.Fatalf("StatsFor() error = %v", err)
	}
	if stats.Runs != 0 || stats.Submissions != 0 || stats.Succeeded != 0 {
		t.Errorf("stats for unseen exercise = %+v, want zeros", stats)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	j1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	j1.RecordRun(1, &domain.ExecutionResult{Success: true}, 0)
	j1.Close()

	// Reopen over existing schema
	j2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer j2.Close()

	attempts, err := j2.Recent(1, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("attempts after reopen = %d, want 1", len(attempts))
	}
}
