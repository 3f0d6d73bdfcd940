// Package journal persists a local history of run and submission outcomes.
// Only outcomes are recorded; editor buffers never touch disk.
package journal

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/academy/internal/domain"
	"github.com/felixgeelhaar/academy/internal/journal/migrations"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// AttemptKind distinguishes practice runs from graded submissions.
type AttemptKind string

const (
	KindRun        AttemptKind = "run"
	KindSubmission AttemptKind = "submission"
)

// Attempt is one recorded run or submission outcome.
type Attempt struct {
	ID         string
	ExerciseID int64
	Kind       AttemptKind
	Success    bool
	Message    string
	ElapsedMS  int64
	CreatedAt  time.Time
}

// Stats summarizes attempts for a single exercise.
type Stats struct {
	ExerciseID  int64
	Runs        int
	Submissions int
	Succeeded   int
}

// Journal is a SQLite-backed attempt log.
type Journal struct {
	db *sql.DB
}

// Open creates a SQLite connection with WAL mode and foreign keys enabled,
// then applies pending migrations.
func Open(path string) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Single-writer SQLite
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordRun logs the outcome of a practice run.
func (j *Journal) RecordRun(exerciseID int64, result *domain.ExecutionResult, elapsed time.Duration) error {
	return j.record(exerciseID, KindRun, result.Success, result.Message, elapsed)
}

// RecordSubmission logs the outcome of a graded submission.
func (j *Journal) RecordSubmission(exerciseID int64, result *domain.SubmissionResult, elapsed time.Duration) error {
	return j.record(exerciseID, KindSubmission, result.Success, result.Message, elapsed)
}

func (j *Journal) record(exerciseID int64, kind AttemptKind, success bool, message string, elapsed time.Duration) error {
	_, err := j.db.Exec(`
		INSERT INTO attempts (id, exercise_id, kind, success, message, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), exerciseID, string(kind), success, message, elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts for an exercise, newest first.
func (j *Journal) Recent(exerciseID int64, limit int) ([]Attempt, error) {
	rows, err := j.db.Query(`
		SELECT id, exercise_id, kind, success, message, elapsed_ms, created_at
		FROM attempts WHERE exercise_id = ?
		ORDER BY created_at DESC LIMIT ?`, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var kind string
		if err := rows.Scan(&a.ID, &a.ExerciseID, &kind, &a.Success, &a.Message, &a.ElapsedMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Kind = AttemptKind(kind)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// StatsFor aggregates run and submission counts for an exercise.
func (j *Journal) StatsFor(exerciseID int64) (*Stats, error) {
	row := j.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN kind = 'run' THEN 1 END),
			COUNT(CASE WHEN kind = 'submission' THEN 1 END),
			COUNT(CASE WHEN success = 1 THEN 1 END)
		FROM attempts WHERE exercise_id = ?`, exerciseID)

	stats := &Stats{ExerciseID: exerciseID}
	if err := row.Scan(&stats.Runs, &stats.Submissions, &stats.Succeeded); err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	return stats, nil
}

// migrate applies all pending SQL migrations from the embedded filesystem.
func (j *Journal) migrate() error {
	_, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var currentVersion int
	row := j.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		version, err := parseVersion(name)
		if err != nil {
			slog.Warn("skipping non-migration file", "name", name, "error", err)
			continue
		}
		if version <= currentVersion {
			continue
		}

		data, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := j.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT OR REPLACE INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}

		slog.Info("applied migration", "name", name, "version", version)
	}

	return nil
}

// parseVersion extracts the version number from a migration filename like "001_initial.sql".
func parseVersion(name string) (int, error) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid migration filename: %s", name)
	}
	var version int
	if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return version, nil
}
