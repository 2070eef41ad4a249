// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/talent-engine/pkg/types"
)

// Hit is one retrieved document with its ranking score.
type Hit struct {
	types.Document
	Matched int     `json:"matched" yaml:"matched"`
	Score   float64 `json:"score" yaml:"score"`
}

// Search runs a full-text query and ranks matching documents by the number
// of distinct query terms they contain times their weight, ties broken by
// document id. limit <= 0 uses the store default.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.kind, d.candidate_id, d.weight, d.body
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.docid
		WHERE documents_fts MATCH ?`, matchExpr(terms))
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h    Hit
			kind string
		)
		if err := rows.Scan(&h.ID, &kind, &h.CandidateID, &h.Weight, &h.Text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		h.Kind = types.DocumentKind(kind)
		h.Matched = countTerms(h.Text, terms)
		h.Score = float64(h.Matched) * h.Weight
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Retrieve returns the top documents for query rendered as one text block
// suitable as model context. An empty string means nothing matched.
// Every retrieval mode is served by the same full-text ranking.
func (s *Store) Retrieve(ctx context.Context, query string, opts types.RetrieveOptions) (string, error) {
	hits, err := s.Search(ctx, query, opts.TopK)
	if err != nil {
		return "", err
	}
	return FormatContext(hits), nil
}

// FormatContext renders hits as labelled text blocks.
func FormatContext(hits []Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s %s | candidate %s | weight %.1f]\n%s", h.Kind, h.ID, h.CandidateID, h.Weight, strings.TrimSpace(h.Text))
	}
	return b.String()
}

// Terms splits text into distinct lowercase letter/digit tokens of two or
// more characters, in first-seen order. It mirrors the FTS simple
// tokenizer closely enough for ASCII text.
func Terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len([]rune(f)) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// matchExpr quotes each term and joins them with OR.
func matchExpr(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

func countTerms(text string, terms []string) int {
	present := make(map[string]bool)
	for _, t := range Terms(text) {
		present[t] = true
	}
	n := 0
	for _, t := range terms {
		if present[t] {
			n++
		}
	}
	return n
}
