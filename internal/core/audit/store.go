package audit

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/changegate/internal/types"
)

// Run is one recorded validation run.
type Run struct {
	RunID          string `db:"run_id"`
	BaseRev        string `db:"base_rev"`
	HeadRev        string `db:"head_rev"`
	PolicyPath     string `db:"policy_path"`
	FilesProcessed int    `db:"files_processed"`
	FilesMatched   int    `db:"files_matched"`
	Violations     int    `db:"violations"`
	Clean          bool   `db:"clean"`
	CreatedAt      string `db:"created_at"` // RFC 3339 UTC
}

// Violation is one violating change location within a recorded run.
type Violation struct {
	RunID    string `db:"run_id"`
	FilePath string `db:"file_path"`
	Path     string `db:"path"`
	OldValue string `db:"old_value"`
	NewValue string `db:"new_value"`
}

// Store records validation runs. Construction fails when migrations are
// pending, so a schema drift surfaces before the run is lost.
type Store struct {
	db *sqlx.DB
	q  *Queries
}

// NewStore wraps an open database handle after verifying the schema is
// current.
func NewStore(db *sqlx.DB) (*Store, error) {
	if err := CheckMigrated(db); err != nil {
		return nil, err
	}
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, q: q}, nil
}

// RecordRun persists one run and its violations atomically. The run id
// is generated here and returned for log correlation.
func (s *Store) RecordRun(run Run, violations []Violation) (types.RunID, error) {
	id := types.NewRunID()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin audit transaction: %w", err)
	}

	insertRun, err := s.q.dot.Raw("insert-run")
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("query not found: insert-run")
	}
	_, err = tx.Exec(tx.Rebind(insertRun),
		string(id), run.BaseRev, run.HeadRev, run.PolicyPath,
		run.FilesProcessed, run.FilesMatched, run.Violations, run.Clean, createdAt,
	)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}

	insertViolation, err := s.q.dot.Raw("insert-violation")
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("query not found: insert-violation")
	}
	for _, v := range violations {
		_, err = tx.Exec(tx.Rebind(insertViolation),
			string(id), v.FilePath, v.Path, v.OldValue, v.NewValue,
		)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert violation %s: %w", v.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit audit transaction: %w", err)
	}
	return id, nil
}

// GetRun fetches one recorded run by id.
func (s *Store) GetRun(id types.RunID) (*Run, error) {
	var run Run
	if err := s.q.Get("get-run", &run, string(id)); err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns fetches the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	if err := s.q.Select("list-runs", &runs, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ListViolations fetches the violations recorded for a run, in insert order.
func (s *Store) ListViolations(id types.RunID) ([]Violation, error) {
	var violations []Violation
	if err := s.q.Select("list-violations", &violations, string(id)); err != nil {
		return nil, fmt.Errorf("list violations for %s: %w", id, err)
	}
	return violations, nil
}
