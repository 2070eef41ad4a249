// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge is the local retrieval index. It keeps one text
// document per candidate and per evaluation in SQLite with an FTS4
// full-text index and answers retrieval queries with a ranked text context.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "talent.db"
)

// Store manages the retrieval index SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	log        *zap.Logger
}

// NewStore opens or creates the index database at dataDir/index/talent.db.
// maxResults <= 0 selects 10.
func NewStore(dataDir string, maxResults int, log *zap.Logger) (*Store, error) {
	dbDir := filepath.Join(dataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if maxResults <= 0 {
		maxResults = 10
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{db: db, dir: dbDir, maxResults: maxResults, log: log}
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
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			weight REAL NOT NULL,
			body TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_candidate ON documents(candidate_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 external-content table kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE documents_fts USING fts4(content="documents", body)`,
		`CREATE TRIGGER documents_bu BEFORE UPDATE ON documents BEGIN
			DELETE FROM documents_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER documents_bd BEFORE DELETE ON documents BEGIN
			DELETE FROM documents_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(docid, body) VALUES (new.rowid, new.body);
		END`,
		`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(docid, body) VALUES (new.rowid, new.body);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Index inserts or replaces one document.
func (s *Store) Index(ctx context.Context, doc types.Document) error {
	return s.indexWith(ctx, s.db, doc)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) indexWith(ctx context.Context, db execer, doc types.Document) error {
	if doc.ID == "" || doc.CandidateID == "" {
		return fmt.Errorf("indexing document: id and candidate_id are required")
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO documents (id, kind, candidate_id, weight, body, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, candidate_id=excluded.candidate_id,
			weight=excluded.weight, body=excluded.body, indexed_at=excluded.indexed_at`,
		doc.ID, string(doc.Kind), doc.CandidateID, doc.Weight, doc.Text,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("indexing document %s: %w", doc.ID, err)
	}
	return nil
}

// Remove deletes every document of a candidate.
func (s *Store) Remove(ctx context.Context, candidateID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE candidate_id = ?`, candidateID); err != nil {
		return fmt.Errorf("removing documents of %s: %w", candidateID, err)
	}
	return nil
}

// RebuildSummary holds counts from an index rebuild.
type RebuildSummary struct {
	Indexed int
	Removed int
}

// Rebuild replaces the whole index with docs in one transaction.
func (s *Store) Rebuild(ctx context.Context, docs []types.Document) (RebuildSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents`)
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("clearing index: %w", err)
	}
	removed, _ := res.RowsAffected()

	for _, doc := range docs {
		if err := s.indexWith(ctx, tx, doc); err != nil {
			return RebuildSummary{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return RebuildSummary{}, fmt.Errorf("committing rebuild: %w", err)
	}
	s.log.Info("index rebuilt", zap.Int("indexed", len(docs)), zap.Int64("removed", removed))
	return RebuildSummary{Indexed: len(docs), Removed: int(removed)}, nil
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}
