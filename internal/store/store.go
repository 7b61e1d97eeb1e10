// Package store provides the in-memory SQLite trial journal for one run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fentz26/szsrun/internal/models"
)

// Store holds the trials of the current run. Nothing is written to disk;
// the journal is gone once the process exits.
type Store struct {
	db *sql.DB
}

// New opens an empty in-memory journal and runs migrations.
func New() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Each new connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trials (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		case_path TEXT NOT NULL,
		expected_tag TEXT,
		timeout_sec INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		inputs_hash TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trials_verdict ON trials(verdict);
	CREATE INDEX IF NOT EXISTS idx_trials_run_seq ON trials(run_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordTrial inserts a journal row. Missing IDs and timestamps are filled in.
func (s *Store) RecordTrial(rec *models.TrialRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO trials (id, run_id, seq, case_path, expected_tag, timeout_sec, exit_code, verdict, elapsed_ms, inputs_hash, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Seq, rec.CasePath, rec.ExpectedTag, rec.TimeoutSeconds,
		rec.ExitCode, string(rec.Verdict), rec.Elapsed.Milliseconds(), rec.InputsHash, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trial: %w", err)
	}
	return nil
}

// ListTrials returns the trials of a run in sequence order.
func (s *Store) ListTrials(runID string) ([]models.TrialRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, seq, case_path, expected_tag, timeout_sec, exit_code, verdict, elapsed_ms, inputs_hash, recorded_at
		 FROM trials WHERE run_id = ? ORDER BY seq ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	var records []models.TrialRecord
	for rows.Next() {
		var rec models.TrialRecord
		var expectedTag sql.NullString
		var verdict string
		var elapsedMs int64
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Seq, &rec.CasePath, &expectedTag, &rec.TimeoutSeconds,
			&rec.ExitCode, &verdict, &elapsedMs, &rec.InputsHash, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		if expectedTag.Valid {
			rec.ExpectedTag = expectedTag.String
		}
		rec.Verdict = models.Verdict(verdict)
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByVerdict returns how many trials of a run ended with each verdict.
func (s *Store) CountByVerdict(runID string) (map[models.Verdict]int, error) {
	rows, err := s.db.Query(
		`SELECT verdict, COUNT(*) FROM trials WHERE run_id = ? GROUP BY verdict`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("count trials: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Verdict]int)
	for rows.Next() {
		var verdict string
		var n int
		if err := rows.Scan(&verdict, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.Verdict(verdict)] = n
	}
	return counts, rows.Err()
}

// TotalElapsed sums the measured prover time of a run.
func (s *Store) TotalElapsed(runID string) (time.Duration, error) {
	var ms sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(elapsed_ms) FROM trials WHERE run_id = ?`, runID).Scan(&ms)
	if err != nil {
		return 0, fmt.Errorf("sum elapsed: %w", err)
	}
	return time.Duration(ms.Int64) * time.Millisecond, nil
}
