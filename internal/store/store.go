// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists harvest results in a SQLite index for querying
// across runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkirov/taxa-harvester/internal/harvest"
	"github.com/mkirov/taxa-harvester/internal/resolve"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

const (
	indexDir          = "index"
	dbFile            = "taxa.db"
	defaultMaxResults = 50
)

// Store manages the taxa index SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the index database at dataDir/index/taxa.db,
// creating the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
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
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS publications (
			id TEXT PRIMARY KEY,
			doi TEXT,
			url TEXT,
			title TEXT,
			method TEXT,
			error TEXT,
			harvested_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS taxa (
			genus TEXT NOT NULL,
			species TEXT NOT NULL,
			publication_id TEXT NOT NULL REFERENCES publications(id),
			UNIQUE(genus, species, publication_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_taxa_genus ON taxa(genus)`,
		`CREATE INDEX IF NOT EXISTS idx_taxa_publication ON taxa(publication_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds the outcome of an ingest run.
type IngestSummary struct {
	Stored int
	Failed int
}

// Total returns the number of results processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Failed
}

// HasFailures reports whether any results failed to store.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest stores harvest results, replacing earlier records for the same
// publications. It continues after individual failures.
func (s *Store) Ingest(ctx context.Context, results []harvest.Result, w io.Writer) IngestSummary {
	var summary IngestSummary
	for _, r := range results {
		if err := s.ingestResult(ctx, r); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", r.Publication.Key(), err)
			summary.Failed++
			continue
		}
		summary.Stored++
	}
	fmt.Fprintf(w, "\nIndex summary: %d stored, %d failed\n", summary.Stored, summary.Failed)
	return summary
}

func (s *Store) ingestResult(ctx context.Context, r harvest.Result) error {
	id := resolve.Slug(r.Publication.Key())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace the publication's taxa wholesale on re-harvest.
	if _, err := tx.ExecContext(ctx, `DELETE FROM taxa WHERE publication_id = ?`, id); err != nil {
		return fmt.Errorf("deleting old taxa: %w", err)
	}

	errText := ""
	if r.Err != nil {
		errText = r.Err.Error()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO publications (id, doi, url, title, method, error, harvested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			doi=excluded.doi, url=excluded.url, title=excluded.title,
			method=excluded.method, error=excluded.error, harvested_at=excluded.harvested_at`,
		id, r.Publication.DOI, r.Publication.URL, r.Publication.Title,
		string(r.Method), errText, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting publication: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO taxa (genus, species, publication_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range r.Taxa {
		if _, err := stmt.ExecContext(ctx, t.Genus, t.Species, id); err != nil {
			return fmt.Errorf("inserting taxon %s: %w", t.String(), err)
		}
	}

	return tx.Commit()
}

// TaxonRecord is one row of a taxa query: a distinct binomial and the
// number of publications it appears in.
type TaxonRecord struct {
	Taxon        types.Taxon
	Publications int
}

// Taxa returns distinct taxa ordered by publication count, then name.
// A non-empty genus restricts the query; limit overrides the configured
// maximum when positive.
func (s *Store) Taxa(ctx context.Context, genus string, limit int) ([]TaxonRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	query := `SELECT genus, species, COUNT(DISTINCT publication_id) AS n
		FROM taxa`
	args := []any{}
	if genus != "" {
		query += ` WHERE genus = ?`
		args = append(args, genus)
	}
	query += ` GROUP BY genus, species ORDER BY n DESC, genus, species LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying taxa: %w", err)
	}
	defer rows.Close()

	var records []TaxonRecord
	for rows.Next() {
		var rec TaxonRecord
		if err := rows.Scan(&rec.Taxon.Genus, &rec.Taxon.Species, &rec.Publications); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PublicationsFor returns the DOIs (or URLs when no DOI is recorded) of
// publications mentioning a taxon.
func (s *Store) PublicationsFor(ctx context.Context, t types.Taxon) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(NULLIF(p.doi, ''), p.url)
		 FROM taxa t JOIN publications p ON p.id = t.publication_id
		 WHERE t.genus = ? AND t.species = ?
		 ORDER BY p.id`,
		t.Genus, t.Species)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats summarizes the index contents.
type Stats struct {
	Publications int
	DistinctTaxa int
	ByMethod     map[string]int
}

// Summary returns index-wide counts.
func (s *Store) Summary(ctx context.Context) (Stats, error) {
	stats := Stats{ByMethod: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM publications`).Scan(&stats.Publications); err != nil {
		return stats, fmt.Errorf("counting publications: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT DISTINCT genus, species FROM taxa)`).Scan(&stats.DistinctTaxa); err != nil {
		return stats, fmt.Errorf("counting taxa: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT method, COUNT(*) FROM publications GROUP BY method`)
	if err != nil {
		return stats, fmt.Errorf("counting methods: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var n int
		if err := rows.Scan(&method, &n); err != nil {
			return stats, fmt.Errorf("scanning row: %w", err)
		}
		stats.ByMethod[method] = n
	}
	return stats, rows.Err()
}
