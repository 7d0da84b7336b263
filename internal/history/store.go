// Package history persists completed analyses to MySQL as an append-only
// audit trail. It sits outside the analysis hot path: recording failures
// are surfaced as errors for the caller to log, never to abort on.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dbsmedya/blastradius/internal/config"
	"github.com/dbsmedya/blastradius/internal/impact"
)

// Store writes analysis reports to a MySQL table.
type Store struct {
	db    *sql.DB
	table string
}

// Open connects to MySQL using the history configuration.
func Open(cfg config.HistoryConfig) (*Store, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	return NewWithDB(db, cfg.Table), nil
}

// NewWithDB wraps an existing connection. Used by tests with sqlmock.
func NewWithDB(db *sql.DB, table string) *Store {
	if table == "" {
		table = "analysis_history"
	}
	return &Store{db: db, table: table}
}

// EnsureSchema creates the history table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		analysis_id VARCHAR(64) NOT NULL,
		target_path VARCHAR(512) NOT NULL,
		modification VARCHAR(16) NOT NULL,
		affected_count INT NOT NULL,
		direct_dependents INT NOT NULL,
		truncated TINYINT(1) NOT NULL,
		report JSON NOT NULL,
		analyzed_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_analysis (analysis_id),
		KEY idx_target (target_path)
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure history schema: %w", err)
	}
	return nil
}

// Record appends one report to the history table.
func (s *Store) Record(ctx context.Context, report *impact.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(analysis_id, target_path, modification, affected_count, direct_dependents, truncated, report, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	_, err = s.db.ExecContext(ctx, query,
		report.AnalysisID,
		report.Target.Path,
		string(report.Config.Modification),
		report.Statistics.TotalComponents,
		report.Statistics.DirectDependents,
		report.Truncated,
		payload,
		report.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record analysis %s: %w", report.AnalysisID, err)
	}
	return nil
}

// RecentEntry is one row returned by Recent.
type RecentEntry struct {
	AnalysisID    string
	TargetPath    string
	Modification  string
	AffectedCount int
	Truncated     bool
	AnalyzedAt    time.Time
}

// Recent returns the latest analyses for a target path, newest first.
func (s *Store) Recent(ctx context.Context, targetPath string, limit int) ([]RecentEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT analysis_id, target_path, modification, affected_count, truncated, analyzed_at
		FROM %s WHERE target_path = ? ORDER BY analyzed_at DESC LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, query, targetPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []RecentEntry
	for rows.Next() {
		var e RecentEntry
		if err := rows.Scan(&e.AnalysisID, &e.TargetPath, &e.Modification,
			&e.AffectedCount, &e.Truncated, &e.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
