package knowledge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/talent-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	store, err := NewStore(tmpDir, 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, tmpDir
}

func sampleCandidate(id, name string, technical ...string) *types.Candidate {
	return &types.Candidate{
		ID:           id,
		PersonalInfo: types.PersonalInfo{Name: name, Email: strings.ToLower(name) + "@example.com", Location: "Hanoi"},
		Summary:      "Backend engineer",
		Skills:       types.Skills{Technical: technical, Soft: []string{"communication"}},
		Experience: []types.Experience{
			{Company: "Acme", Role: "Senior Engineer", Duration: "2020-2024"},
		},
		Education: []types.Education{
			{Institution: "HUST", Degree: "BSc", Field: "Computer Science"},
		},
		ExtractedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		DataSource:  types.DataSourceCV,
		Weight:      1.0,
	}
}

func sampleEvaluation(candidateID, id string) *types.Evaluation {
	return &types.Evaluation{
		ID:                    id,
		CandidateID:           candidateID,
		Weight:                2.5,
		Interviewer:           types.Interviewer{Name: "Minh", Role: "Staff Engineer"},
		TechnicalAssessment:   types.TechnicalAssessment{Score: types.Score(8), Strengths: []string{"golang", "kubernetes"}},
		SoftSkillsAssessment:  types.SoftSkillsAssessment{Scores: map[string]float64{"teamwork": 7, "communication": 9}},
		OverallRecommendation: types.Hire,
		KeyConcerns:           []string{"limited frontend"},
	}
}

func indexAll(t *testing.T, store *Store, docs ...types.Document) {
	t.Helper()
	for _, d := range docs {
		if err := store.Index(context.Background(), d); err != nil {
			t.Fatalf("Index(%s): %v", d.ID, err)
		}
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	for _, table := range []string{"documents", "documents_fts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(tmpDir, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	dbPath := filepath.Join(tmpDir, indexDir, dbFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
	if store.maxResults != 10 {
		t.Errorf("maxResults = %d, want default 10", store.maxResults)
	}
}

func TestNewStoreReopens(t *testing.T) {
	tmpDir := t.TempDir()
	first, err := NewStore(tmpDir, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	indexAll(t, first, CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")))
	first.Close()

	second, err := NewStore(tmpDir, 5, nil)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer second.Close()

	n, err := second.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

// --- index tests ---

func TestIndexUpsert(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	c := sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")
	indexAll(t, store, CandidateDocument(c))

	c.Skills.Technical = []string{"rust"}
	indexAll(t, store, CandidateDocument(c))

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1 after upsert", n)
	}

	hits, err := store.Search(ctx, "golang", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale text still indexed: %+v", hits)
	}
	hits, err = store.Search(ctx, "rust", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("Search(rust) = %d hits, want 1", len(hits))
	}
}

func TestIndexRequiresIDs(t *testing.T) {
	store, _ := testSetup(t)
	err := store.Index(context.Background(), types.Document{Text: "orphan"})
	if err == nil {
		t.Fatal("expected error for document without ids")
	}
}

func TestRemove(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	c := sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")
	other := sampleCandidate("bbbbbbbbbbbb", "Huy", "golang")
	indexAll(t, store,
		CandidateDocument(c),
		EvaluationDocument(sampleEvaluation(c.ID, "111111111111")),
		CandidateDocument(other),
	)

	if err := store.Remove(ctx, c.ID); err != nil {
		t.Fatal(err)
	}

	hits, err := store.Search(ctx, "golang", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].CandidateID != other.ID {
		t.Errorf("hits after Remove = %+v, want only %s", hits, other.ID)
	}
}

// --- search tests ---

func TestSearchRanking(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	a := sampleCandidate("aaaaaaaaaaaa", "Lan", "golang", "kubernetes")
	b := sampleCandidate("bbbbbbbbbbbb", "Huy", "golang")
	c := sampleCandidate("cccccccccccc", "Mai", "python")
	indexAll(t, store,
		CandidateDocument(c),
		CandidateDocument(b),
		CandidateDocument(a),
		EvaluationDocument(sampleEvaluation(b.ID, "111111111111")),
	)

	hits, err := store.Search(ctx, "golang kubernetes engineer", 0)
	if err != nil {
		t.Fatal(err)
	}

	// The evaluation carries weight 2.5 and mentions both golang and
	// kubernetes, so it outranks every CV document.
	wantOrder := []string{"bbbbbbbbbbbb_111111111111", "aaaaaaaaaaaa", "bbbbbbbbbbbb", "cccccccccccc"}
	if len(hits) != len(wantOrder) {
		t.Fatalf("got %d hits, want %d: %+v", len(hits), len(wantOrder), hits)
	}
	for i, id := range wantOrder {
		if hits[i].ID != id {
			t.Errorf("hits[%d] = %s (score %.1f), want %s", i, hits[i].ID, hits[i].Score, id)
		}
	}
	if hits[0].Kind != types.DocumentEvaluation {
		t.Errorf("hits[0].Kind = %s", hits[0].Kind)
	}
}

func TestSearchTiesBreakByID(t *testing.T) {
	store, _ := testSetup(t)
	indexAll(t, store,
		CandidateDocument(sampleCandidate("cccccccccccc", "Mai", "golang")),
		CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")),
	)

	hits, err := store.Search(context.Background(), "golang", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || hits[0].ID != "aaaaaaaaaaaa" {
		t.Errorf("tie order = %+v", hits)
	}
}

func TestSearchLimit(t *testing.T) {
	store, _ := testSetup(t)
	indexAll(t, store,
		CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")),
		CandidateDocument(sampleCandidate("bbbbbbbbbbbb", "Huy", "golang")),
		CandidateDocument(sampleCandidate("cccccccccccc", "Mai", "golang")),
	)

	hits, err := store.Search(context.Background(), "golang", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

func TestSearchNoTerms(t *testing.T) {
	store, _ := testSetup(t)
	indexAll(t, store, CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")))

	for _, q := range []string{"", "  ", "a ! ?", `"" OR`} {
		hits, err := store.Search(context.Background(), q, 0)
		if err != nil {
			t.Errorf("Search(%q): %v", q, err)
		}
		if q != `"" OR` && len(hits) != 0 {
			t.Errorf("Search(%q) = %d hits, want 0", q, len(hits))
		}
	}
}

func TestSearchQuotesOperators(t *testing.T) {
	store, _ := testSetup(t)
	indexAll(t, store, CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")))

	// FTS operators and stray quotes in user text must not break the query.
	if _, err := store.Search(context.Background(), `golang AND "NEAR" -python (c++`, 0); err != nil {
		t.Errorf("Search with operator text: %v", err)
	}
}

func TestRetrieve(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()
	indexAll(t, store,
		CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")),
		CandidateDocument(sampleCandidate("bbbbbbbbbbbb", "Huy", "golang")),
	)

	out, err := store.Retrieve(ctx, "golang developer", types.RetrieveOptions{Mode: "mix", TopK: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "[candidate aaaaaaaaaaaa | candidate aaaaaaaaaaaa | weight 1.0]\nCandidate: Lan") {
		t.Errorf("unexpected context:\n%s", out)
	}
	if strings.Contains(out, "Huy") {
		t.Error("TopK=1 context contains second candidate")
	}

	out, err = store.Retrieve(ctx, "haskell", types.RetrieveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("Retrieve with no hits = %q, want empty", out)
	}
}

func TestTerms(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Senior Golang developer, golang!", []string{"senior", "golang", "developer"}},
		{"c# .net", []string{"net"}},
		{"Kỹ sư phần mềm", []string{"kỹ", "sư", "phần", "mềm"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Terms(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("Terms(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// --- rebuild tests ---

func TestRebuild(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()
	indexAll(t, store, CandidateDocument(sampleCandidate("zzzzzzzzzzzz", "Gone", "cobol")))

	c := sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")
	docs := Collect(c, []types.Evaluation{*sampleEvaluation(c.ID, "111111111111")})

	summary, err := store.Rebuild(ctx, docs)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Indexed != 2 || summary.Removed != 1 {
		t.Errorf("summary = %+v, want indexed 2 removed 1", summary)
	}

	hits, err := store.Search(ctx, "cobol", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale document survived rebuild: %+v", hits)
	}
}

func TestRebuildRollsBackOnError(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()
	indexAll(t, store, CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")))

	_, err := store.Rebuild(ctx, []types.Document{{ID: "bad"}})
	if err == nil {
		t.Fatal("expected error")
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d after failed rebuild, want 1", n)
	}
}

// --- document tests ---

func TestCandidateDocument(t *testing.T) {
	c := sampleCandidate("aaaaaaaaaaaa", "Lan", "golang", "postgresql")
	c.Certifications = []types.Certification{{Name: "CKA", Issuer: "CNCF"}}
	c.Projects = []types.Project{{Name: "Billing", Technologies: []string{"golang", "kafka"}}}

	doc := CandidateDocument(c)
	if doc.ID != c.ID || doc.CandidateID != c.ID || doc.Kind != types.DocumentCandidate {
		t.Errorf("identity = %+v", doc)
	}
	if doc.Weight != 1.0 {
		t.Errorf("Weight = %v, want 1.0", doc.Weight)
	}
	for _, want := range []string{
		"Candidate: Lan",
		"Email: lan@example.com",
		"Location: Hanoi",
		"Technical Skills: golang, postgresql",
		"Soft Skills: communication",
		"Experience at Acme: Senior Engineer (2020-2024)",
		"Education: BSc in Computer Science from HUST",
		"Certification: CKA by CNCF",
		"Project: Billing (golang, kafka)",
	} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("document missing %q:\n%s", want, doc.Text)
		}
	}

	if got := CandidateDocument(&types.Candidate{ID: "x"}).Text; got != "Candidate: Unknown" {
		t.Errorf("empty candidate text = %q", got)
	}
}

func TestEvaluationDocument(t *testing.T) {
	doc := EvaluationDocument(sampleEvaluation("aaaaaaaaaaaa", "111111111111"))
	if doc.ID != "aaaaaaaaaaaa_111111111111" || doc.Kind != types.DocumentEvaluation {
		t.Errorf("identity = %+v", doc)
	}
	if doc.Weight != 2.5 {
		t.Errorf("Weight = %v, want 2.5", doc.Weight)
	}
	for _, want := range []string{
		"Interview Evaluation for Candidate aaaaaaaaaaaa",
		"Overall Recommendation: hire",
		"Technical Score: 8/10",
		"Technical Strengths: golang, kubernetes",
		"Soft Skills: communication 9, teamwork 7",
		"Key Concerns: limited frontend",
	} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("document missing %q:\n%s", want, doc.Text)
		}
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ctx := context.Background()
	indexAll(t, store,
		CandidateDocument(sampleCandidate("bbbbbbbbbbbb", "Huy", "rust")),
		CandidateDocument(sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")),
	)

	path, err := store.ExportYAML(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(tmpDir, indexDir, "export.yaml") {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != "aaaaaaaaaaaa" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].IndexedAt == "" {
		t.Error("IndexedAt not exported")
	}
}

func TestExportJSONFiltersByCandidate(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()
	c := sampleCandidate("aaaaaaaaaaaa", "Lan", "golang")
	indexAll(t, store,
		CandidateDocument(c),
		EvaluationDocument(sampleEvaluation(c.ID, "111111111111")),
		CandidateDocument(sampleCandidate("bbbbbbbbbbbb", "Huy", "rust")),
	)

	path, err := store.ExportJSON(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.CandidateID != c.ID {
			t.Errorf("entry %s belongs to %s", e.ID, e.CandidateID)
		}
	}
}

func TestDocumentsEmpty(t *testing.T) {
	store, _ := testSetup(t)
	docs, err := store.Documents(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("Documents = %#v, want empty non-nil slice", docs)
	}
}
