// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists the review's durable state across phases: the
// candidate records and the final (merged) decision per phase, indexed for
// full-text search. The archive is the hand-off between phases; records the
// title/abstract phase included are what the full-text phase screens.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pfortes/prisma-screen/internal/reconcile"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "review.db"
)

// Archive manages the review SQLite database.
type Archive struct {
	db         *sql.DB
	maxResults int
}

// New opens or creates the archive database at archiveDir/index/review.db,
// creating the schema if it does not exist.
func New(cfg types.ArchiveConfig) (*Archive, error) {
	dbDir := filepath.Join(cfg.ArchiveDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	a := &Archive{db: db, maxResults: maxResults}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			keywords TEXT,
			year INTEGER,
			journal TEXT,
			doi TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			record_id TEXT NOT NULL REFERENCES records(id),
			phase TEXT NOT NULL,
			decision TEXT NOT NULL,
			source TEXT,
			reason TEXT,
			PRIMARY KEY (record_id, phase)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_phase ON decisions(phase)`,
	}
	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := a.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(title, abstract, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := a.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// StoreRecords upserts records, preserving insertion order for later
// retrieval.
func (a *Archive) StoreRecords(ctx context.Context, records []types.Record, w io.Writer) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (id, title, authors, abstract, keywords, year, journal, doi)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors,
			abstract=excluded.abstract, keywords=excluded.keywords,
			year=excluded.year, journal=excluded.journal, doi=excluded.doi`)
	if err != nil {
		return 0, fmt.Errorf("preparing record upsert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Title, rec.Authors, rec.Abstract,
			rec.Keywords, rec.Year, rec.Journal, rec.DOI,
		); err != nil {
			return stored, fmt.Errorf("storing record %s: %w", rec.ID, err)
		}
		stored++
	}
	if err := tx.Commit(); err != nil {
		return stored, fmt.Errorf("committing records: %w", err)
	}
	fmt.Fprintf(w, "stored %d record(s)\n", stored)
	return stored, nil
}

// StoreDecisions upserts the final decision table for one phase. Decisions
// for records the archive does not hold are rejected: the identifier is the
// cross-phase key and must resolve.
func (a *Archive) StoreDecisions(ctx context.Context, phase string, finals []reconcile.Final, w io.Writer) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO decisions (record_id, phase, decision, source, reason)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(record_id, phase) DO UPDATE SET
			decision=excluded.decision, source=excluded.source, reason=excluded.reason`)
	if err != nil {
		return 0, fmt.Errorf("preparing decision upsert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, f := range finals {
		if _, err := stmt.ExecContext(ctx, f.ID, phase, string(f.Decision), f.Source, f.Reason); err != nil {
			return stored, fmt.Errorf("storing decision for %s: %w", f.ID, err)
		}
		stored++
	}
	if err := tx.Commit(); err != nil {
		return stored, fmt.Errorf("committing decisions: %w", err)
	}
	fmt.Fprintf(w, "stored %d decision(s) for phase %s\n", stored, phase)
	return stored, nil
}

// Included returns the records a phase's final decision table included, in
// archive insertion order. This is the record set the next phase screens.
func (a *Archive) Included(ctx context.Context, phase string) ([]types.Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.authors, r.abstract, r.keywords, r.year, r.journal, r.doi
		 FROM records r
		 JOIN decisions d ON d.record_id = r.id
		 WHERE d.phase = ? AND d.decision = ?
		 ORDER BY r.rowid`, phase, string(types.DecisionInclude))
	if err != nil {
		return nil, fmt.Errorf("querying included records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// SearchResult is one FTS hit with any decisions recorded for the record.
type SearchResult struct {
	Record    types.Record
	Decisions map[string]types.Decision
}

// Search runs a full-text query over titles and abstracts, best match
// first.
func (a *Archive) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = a.maxResults
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.authors, r.abstract, r.keywords, r.year, r.journal, r.doi
		 FROM records_fts f
		 JOIN records r ON r.rowid = f.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		decisions, err := a.recordDecisions(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SearchResult{Record: rec, Decisions: decisions})
	}
	return out, nil
}

func (a *Archive) recordDecisions(ctx context.Context, id string) (map[string]types.Decision, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT phase, decision FROM decisions WHERE record_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying decisions for %s: %w", id, err)
	}
	defer rows.Close()

	out := make(map[string]types.Decision)
	for rows.Next() {
		var phase, decision string
		if err := rows.Scan(&phase, &decision); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		out[phase] = types.Decision(decision)
	}
	return out, rows.Err()
}

// ExportIncluded writes a phase's included records as a delimited file: the
// record store input for the next phase.
func (a *Archive) ExportIncluded(ctx context.Context, phase, path string) (int, error) {
	records, err := a.Included(ctx, phase)
	if err != nil {
		return 0, err
	}
	if err := table.SaveRecords(records, path); err != nil {
		return 0, err
	}
	return len(records), nil
}

func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	var out []types.Record
	for rows.Next() {
		var rec types.Record
		var year sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Authors, &rec.Abstract,
			&rec.Keywords, &year, &rec.Journal, &rec.DOI); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Year = int(year.Int64)
		out = append(out, rec)
	}
	return out, rows.Err()
}
