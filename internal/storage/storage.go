// Package storage archives analysis-run summaries in a local SQLite
// database. Only run-level counts are stored — never the messages
// themselves.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// RunSummary is one archived analysis run.
type RunSummary struct {
	ID                   int64
	RanAt                time.Time
	TotalMessages        int
	UniqueUsers          int
	DuplicateGroups      int
	MissingMemberName    int
	MissingText          int
	MissingTimestamp     int
	ShortMessages        int
	ImpossibleTimestamps int
	BurstCases           int
	Underspecified       int
	ClassifierSkipped    bool
}

// Store provides SQLite-backed persistence for analysis runs.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ran_at INTEGER NOT NULL,
	total_messages INTEGER,
	unique_users INTEGER,
	duplicate_groups INTEGER,
	missing_member_name INTEGER,
	missing_text INTEGER,
	missing_timestamp INTEGER,
	short_messages INTEGER,
	impossible_timestamps INTEGER,
	burst_cases INTEGER,
	underspecified INTEGER,
	classifier_skipped INTEGER
);
`

// New opens the database at dbPath, creating the schema if needed.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// WAL keeps readers unblocked while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set WAL mode: %w", err)
	}
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun archives one run summary and returns its assigned id.
func (s *Store) SaveRun(r *RunSummary) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO analysis_runs (
			ran_at, total_messages, unique_users, duplicate_groups,
			missing_member_name, missing_text, missing_timestamp,
			short_messages, impossible_timestamps, burst_cases,
			underspecified, classifier_skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RanAt.Unix(), r.TotalMessages, r.UniqueUsers, r.DuplicateGroups,
		r.MissingMemberName, r.MissingText, r.MissingTimestamp,
		r.ShortMessages, r.ImpossibleTimestamps, r.BurstCases,
		r.Underspecified, boolToInt(r.ClassifierSkipped),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: run id: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, ran_at, total_messages, unique_users, duplicate_groups,
			missing_member_name, missing_text, missing_timestamp,
			short_messages, impossible_timestamps, burst_cases,
			underspecified, classifier_skipped
		 FROM analysis_runs ORDER BY ran_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var ranAt int64
		var skipped int
		if err := rows.Scan(&r.ID, &ranAt, &r.TotalMessages, &r.UniqueUsers,
			&r.DuplicateGroups, &r.MissingMemberName, &r.MissingText,
			&r.MissingTimestamp, &r.ShortMessages, &r.ImpossibleTimestamps,
			&r.BurstCases, &r.Underspecified, &skipped); err != nil {
			return nil, fmt.Errorf("storage: scan run: %w", err)
		}
		r.RanAt = time.Unix(ranAt, 0)
		r.ClassifierSkipped = skipped != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
