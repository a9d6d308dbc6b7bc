package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind says which command produced a run.
type Kind string

const (
	KindGrade      Kind = "grade"
	KindRedemption Kind = "redemption"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one archived grading run. Undefined numbers are NaN.
type Run struct {
	ID                 string
	Kind               Kind
	Source             string
	CreatedAt          time.Time
	Students           int
	Dropped            int
	ProportionImproved float64
	// Policy is the JSON form of the policy in effect.
	Policy string
}

// StudentResult is one student's outcome in a run. PostTotal and PostGrade
// are set for redemption runs only.
type StudentResult struct {
	PID       string
	Total     float64
	Grade     string
	PostTotal float64
	PostGrade string
}

// RunRepo persists runs and their per-student results.
type RunRepo interface {
	// SaveRun stores run and results in one transaction. An empty run.ID
	// is replaced with a new UUID, and a zero CreatedAt with now.
	SaveRun(ctx context.Context, run *Run, results []StudentResult) error

	// ListRuns returns the most recent runs first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Results returns a run's students in their original order.
	Results(ctx context.Context, runID string) ([]StudentResult, error)
}

type runRepo struct {
	db *sql.DB
}

func (r *runRepo) SaveRun(ctx context.Context, run *Run, results []StudentResult) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Students = len(results)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, source, created_at, students, dropped, proportion_improved, policy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Source, run.CreatedAt.Format(time.RFC3339Nano),
		run.Students, run.Dropped, nullFloat(run.ProportionImproved), run.Policy)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO student_results (run_id, position, pid, total, grade, post_total, post_grade)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, res := range results {
		var (
			postTotal sql.NullFloat64
			postGrade sql.NullString
		)
		// A result without a post grade has no post total either.
		if res.PostGrade != "" {
			postTotal = nullFloat(res.PostTotal)
			postGrade = sql.NullString{String: res.PostGrade, Valid: true}
		}
		_, err := stmt.ExecContext(ctx, run.ID, i, res.PID,
			nullFloat(res.Total), res.Grade, postTotal, postGrade)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.PID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, kind, source, created_at, students, dropped, proportion_improved, policy
	      FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			kind      string
			createdAt string
			prop      sql.NullFloat64
		)
		if err := rows.Scan(&run.ID, &kind, &run.Source, &createdAt,
			&run.Students, &run.Dropped, &prop, &run.Policy); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Kind = Kind(kind)
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", run.ID, err)
		}
		run.ProportionImproved = fromNull(prop)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *runRepo) Results(ctx context.Context, runID string) ([]StudentResult, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT pid, total, grade, post_total, post_grade
		 FROM student_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []StudentResult
	for rows.Next() {
		var (
			res       StudentResult
			total     sql.NullFloat64
			postTotal sql.NullFloat64
			postGrade sql.NullString
		)
		if err := rows.Scan(&res.PID, &total, &res.Grade, &postTotal, &postGrade); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Total = fromNull(total)
		res.PostTotal = fromNull(postTotal)
		res.PostGrade = postGrade.String
		out = append(out, res)
	}
	return out, rows.Err()
}

// SQLite has no NaN, so undefined values are stored as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
