package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, cmd := range []string{"search", "stable", "compare"} {
		err := j.Append(ctx, Run{
			Command:   cmd,
			Args:      "Li,Fe,O",
			Rows:      i + 1,
			Duration:  time.Duration(i+1) * 100 * time.Millisecond,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append(%s): %v", cmd, err)
		}
	}

	runs, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].Command != "compare" || runs[1].Command != "stable" {
		t.Fatalf("order = [%s %s], want [compare stable]", runs[0].Command, runs[1].Command)
	}
	if runs[0].Rows != 3 {
		t.Fatalf("Rows = %d, want 3", runs[0].Rows)
	}
	if runs[0].Duration != 300*time.Millisecond {
		t.Fatalf("Duration = %v, want 300ms", runs[0].Duration)
	}
	if runs[0].ID == "" {
		t.Fatalf("Append should assign an id")
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("StartedAt = %v", runs[0].StartedAt)
	}
}

func TestRecent_EmptyJournal(t *testing.T) {
	j := openTest(t)

	runs, err := j.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}

func TestOpen_EmptyPathFails(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatalf("empty path should fail")
	}
}
