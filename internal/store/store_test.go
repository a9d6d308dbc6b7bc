package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestOpenFile.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestSaveRunAndResults(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	run := &Run{
		Kind:               KindRedemption,
		Source:             "grades.csv",
		Dropped:            2,
		ProportionImproved: 0.25,
		Policy:             `{"weights":{}}`,
	}
	results := []StudentResult{
		{PID: "B2", Total: 0.81, Grade: "B", PostTotal: 0.84, PostGrade: "B"},
		{PID: "A1", Total: math.NaN(), Grade: "I", PostTotal: math.NaN(), PostGrade: "I"},
	}
	if err := repo.SaveRun(ctx, run, results); err != nil {
		t.Fatalf("save: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run ID")
	}
	if run.Students != 2 {
		t.Errorf("students = %d, want 2", run.Students)
	}

	got, err := repo.Results(ctx, run.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got))
	}
	if got[0].PID != "B2" || got[1].PID != "A1" {
		t.Errorf("order = %s,%s, want B2,A1", got[0].PID, got[1].PID)
	}
	if got[0].PostTotal != 0.84 || got[0].PostGrade != "B" {
		t.Errorf("post = %v/%q", got[0].PostTotal, got[0].PostGrade)
	}
	if !math.IsNaN(got[1].Total) || got[1].Grade != "I" {
		t.Errorf("undefined total round-tripped as %v/%q", got[1].Total, got[1].Grade)
	}

	runs, err := repo.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].ProportionImproved != 0.25 || runs[0].Dropped != 2 || runs[0].Kind != KindRedemption {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestGradeRunHasNoPostColumns(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	run := &Run{Kind: KindGrade, Source: "grades.xlsx", ProportionImproved: math.NaN(), Policy: "{}"}
	if err := repo.SaveRun(ctx, run, []StudentResult{{PID: "A1", Total: 0.9, Grade: "A"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Results(ctx, run.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if !math.IsNaN(got[0].PostTotal) || got[0].PostGrade != "" {
		t.Errorf("expected no post values, got %v/%q", got[0].PostTotal, got[0].PostGrade)
	}

	runs, err := repo.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, r := range runs {
		if r.ID == run.ID && !math.IsNaN(r.ProportionImproved) {
			t.Errorf("proportion = %v, want NaN", r.ProportionImproved)
		}
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, src := range []string{"first.csv", "second.csv", "third.csv"} {
		run := &Run{Kind: KindGrade, Source: src, CreatedAt: base.Add(time.Duration(i) * time.Hour), Policy: "{}"}
		if err := repo.SaveRun(ctx, run, nil); err != nil {
			t.Fatalf("save %s: %v", src, err)
		}
	}

	runs, err := repo.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].Source != "third.csv" || runs[1].Source != "second.csv" {
		t.Errorf("order = %s,%s", runs[0].Source, runs[1].Source)
	}
	if !runs[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("created_at = %v", runs[0].CreatedAt)
	}
}

func TestResultsUnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.RunRepo().Results(context.Background(), "no-such-run")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}
