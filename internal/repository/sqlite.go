package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens the catalog database and applies migrations.
func NewSQLiteCatalog(dsn string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	c := &SQLiteCatalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return c, nil
}

func (c *SQLiteCatalog) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS extractions (
			extraction_id TEXT PRIMARY KEY,
			run_name TEXT NOT NULL,
			source_dir TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			total_checkpoints INTEGER NOT NULL,
			agent_count INTEGER NOT NULL,
			warnings TEXT,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_run ON extractions(run_name, started_at)`,
		`CREATE TABLE IF NOT EXISTS extraction_failures (
			extraction_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			error TEXT NOT NULL,
			FOREIGN KEY (extraction_id) REFERENCES extractions(extraction_id)
		)`,
		`CREATE TABLE IF NOT EXISTS extraction_agents (
			extraction_id TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			total_steps INTEGER NOT NULL,
			first_timestamp TEXT NOT NULL,
			last_timestamp TEXT NOT NULL,
			PRIMARY KEY (extraction_id, agent_name),
			FOREIGN KEY (extraction_id) REFERENCES extractions(extraction_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := c.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// CreateExtraction stores an extraction with its failures and agent summaries.
func (c *SQLiteCatalog) CreateExtraction(ctx context.Context, ext *domain.Extraction) error {
	warnings, err := json.Marshal(ext.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO extractions (extraction_id, run_name, source_dir, output_dir, total_checkpoints, agent_count, warnings, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ext.ExtractionID, ext.RunName, ext.SourceDir, ext.OutputDir, ext.TotalCheckpoints, ext.AgentCount,
		string(warnings), ext.StartedAt, ext.FinishedAt)
	if err != nil {
		return err
	}

	for _, f := range ext.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO extraction_failures (extraction_id, file_name, error) VALUES (?, ?, ?)`,
			ext.ExtractionID, f.File, f.Error); err != nil {
			return err
		}
	}
	for name, a := range ext.Agents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO extraction_agents (extraction_id, agent_name, total_steps, first_timestamp, last_timestamp) VALUES (?, ?, ?, ?, ?)`,
			ext.ExtractionID, name, a.TotalSteps, a.FirstTimestamp, a.LastTimestamp); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetExtraction retrieves an extraction by ID. It returns nil when absent.
func (c *SQLiteCatalog) GetExtraction(ctx context.Context, extractionID string) (*domain.Extraction, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT extraction_id, run_name, source_dir, output_dir, total_checkpoints, agent_count, warnings, started_at, finished_at
		FROM extractions WHERE extraction_id = ?`, extractionID)
	ext, err := scanExtraction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := c.loadDetails(ctx, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

// ListExtractions returns the extractions of a run, newest first.
func (c *SQLiteCatalog) ListExtractions(ctx context.Context, runName string, limit int) ([]domain.Extraction, error) {
	query := `SELECT extraction_id, run_name, source_dir, output_dir, total_checkpoints, agent_count, warnings, started_at, finished_at
		FROM extractions WHERE run_name = ? ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := c.db.QueryContext(ctx, query, runName)
	if err != nil {
		return nil, err
	}
	var extractions []domain.Extraction
	for rows.Next() {
		ext, err := scanExtraction(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		extractions = append(extractions, *ext)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Details are loaded after the cursor is closed; the pool holds one connection.
	for i := range extractions {
		if err := c.loadDetails(ctx, &extractions[i]); err != nil {
			return nil, err
		}
	}
	return extractions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(s scanner) (*domain.Extraction, error) {
	var ext domain.Extraction
	var warnings sql.NullString
	if err := s.Scan(&ext.ExtractionID, &ext.RunName, &ext.SourceDir, &ext.OutputDir,
		&ext.TotalCheckpoints, &ext.AgentCount, &warnings, &ext.StartedAt, &ext.FinishedAt); err != nil {
		return nil, err
	}
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &ext.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return &ext, nil
}

func (c *SQLiteCatalog) loadDetails(ctx context.Context, ext *domain.Extraction) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT file_name, error FROM extraction_failures WHERE extraction_id = ? ORDER BY file_name`, ext.ExtractionID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var f domain.ExtractionFailure
		if err := rows.Scan(&f.File, &f.Error); err != nil {
			rows.Close()
			return err
		}
		ext.Failures = append(ext.Failures, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = c.db.QueryContext(ctx,
		`SELECT agent_name, total_steps, first_timestamp, last_timestamp FROM extraction_agents WHERE extraction_id = ?`, ext.ExtractionID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var a domain.AgentSummary
		if err := rows.Scan(&name, &a.TotalSteps, &a.FirstTimestamp, &a.LastTimestamp); err != nil {
			return err
		}
		if ext.Agents == nil {
			ext.Agents = make(map[string]domain.AgentSummary)
		}
		ext.Agents[name] = a
	}
	return rows.Err()
}
