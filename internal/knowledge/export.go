// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/talent-engine/pkg/types"
)

// ExportEntry is one indexed document as written by the exporters.
type ExportEntry struct {
	ID          string  `json:"id" yaml:"id"`
	Kind        string  `json:"kind" yaml:"kind"`
	CandidateID string  `json:"candidate_id" yaml:"candidate_id"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Text        string  `json:"text" yaml:"text"`
	IndexedAt   string  `json:"indexed_at" yaml:"indexed_at"`
}

// ExportYAML writes the index to <data>/index/export.yaml and returns the path.
// A non-empty candidateID restricts the export to that candidate.
func (s *Store) ExportYAML(ctx context.Context, candidateID string) (string, error) {
	entries, err := s.exportEntries(ctx, candidateID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the index to <data>/index/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context, candidateID string) (string, error) {
	entries, err := s.exportEntries(ctx, candidateID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// Documents returns indexed documents ordered by id, optionally for one
// candidate only.
func (s *Store) Documents(ctx context.Context, candidateID string) ([]types.Document, error) {
	entries, err := s.exportEntries(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	docs := make([]types.Document, len(entries))
	for i, e := range entries {
		docs[i] = types.Document{
			ID:          e.ID,
			Kind:        types.DocumentKind(e.Kind),
			CandidateID: e.CandidateID,
			Weight:      e.Weight,
			Text:        e.Text,
		}
	}
	return docs, nil
}

func (s *Store) exportEntries(ctx context.Context, candidateID string) ([]ExportEntry, error) {
	query := `SELECT id, kind, candidate_id, weight, body, indexed_at FROM documents`
	var args []any
	if candidateID != "" {
		query += ` WHERE candidate_id = ?`
		args = append(args, candidateID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	entries := []ExportEntry{}
	for rows.Next() {
		var e ExportEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.CandidateID, &e.Weight, &e.Text, &e.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
