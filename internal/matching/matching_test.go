// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package matching

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/talent-engine/internal/extract"
	"github.com/pdiddy/talent-engine/pkg/types"
)

var jobText = strings.Repeat("Senior backend engineer building payment services. ", 2)

// --- fakes ---

type fakeRecords struct {
	candidates  []types.Candidate
	evaluations map[string][]types.Evaluation
	err         error
}

func (f *fakeRecords) Candidates(_ context.Context) ([]types.Candidate, error) {
	return f.candidates, f.err
}

func (f *fakeRecords) Evaluations(_ context.Context, id string) ([]types.Evaluation, error) {
	return f.evaluations[id], nil
}

type fakeAnalyzer struct {
	job *types.JobRequirement
	err error
}

func (f *fakeAnalyzer) AnalyzeJob(_ context.Context, _ string) (*types.JobRequirement, error) {
	if f.err != nil {
		return nil, f.err
	}
	j := *f.job
	return &j, nil
}

type judgeFunc func(ctx context.Context, in extract.MatchInput) (*extract.Judgment, error)

func (f judgeFunc) JudgeMatch(ctx context.Context, in extract.MatchInput) (*extract.Judgment, error) {
	return f(ctx, in)
}

type fakeRetriever struct {
	out   string
	err   error
	query string
	opts  types.RetrieveOptions
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, opts types.RetrieveOptions) (string, error) {
	f.query, f.opts = query, opts
	return f.out, f.err
}

func backendJob() *types.JobRequirement {
	return &types.JobRequirement{
		JobTitle: "Backend Engineer",
		Level:    "senior",
		RequiredSkills: types.RequiredSkills{
			MustHave:   []string{"Golang", "K8s"},
			NiceToHave: []string{"react"},
		},
	}
}

func candidate(id, name string, technical []string, recs ...types.Recommendation) types.Candidate {
	c := types.Candidate{
		ID:           id,
		PersonalInfo: types.PersonalInfo{Name: name},
		Skills:       types.Skills{Technical: technical},
	}
	for i, r := range recs {
		c.Evaluations = append(c.Evaluations, types.EvaluationSummary{
			EvaluationID:          strings.Repeat(string(rune('1'+i)), 12),
			OverallRecommendation: r,
			WeightedScore:         80,
		})
	}
	return c
}

func roster() *fakeRecords {
	return &fakeRecords{
		candidates: []types.Candidate{
			candidate("aaaaaaaaaaaa", "Lan", []string{"go", "kubernetes"}),
			candidate("bbbbbbbbbbbb", "Huy", []string{"go", "react"}, types.Hire),
			candidate("cccccccccccc", "Mai", []string{"python"}, types.NoHire),
			candidate("000000000000", "Phong", []string{"go", "kubernetes"}),
		},
		evaluations: map[string][]types.Evaluation{
			"cccccccccccc": {{ID: "111111111111", CandidateID: "cccccccccccc", KeyConcerns: []string{"no go experience"}}},
		},
	}
}

func newEngine(records Records, judge Judge, retriever Retriever, opts Options) *Engine {
	return New(records, &fakeAnalyzer{job: backendJob()}, judge, retriever, opts, nil)
}

// --- Match ---

func TestMatchValidation(t *testing.T) {
	e := newEngine(roster(), nil, nil, Options{})
	tests := []struct {
		name string
		desc string
		topK int
	}{
		{"short description", "too short", 5},
		{"whitespace padded", "   " + strings.Repeat("x", 49) + "   ", 5},
		{"zero topK", jobText, 0},
		{"topK above max", jobText, 51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Match(context.Background(), tt.desc, tt.topK)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestMatchAnalyzerFailureAborts(t *testing.T) {
	cause := &types.CollaboratorError{Collaborator: "extraction", Op: "job_analysis", Err: errors.New("quota")}
	e := New(roster(), &fakeAnalyzer{err: cause}, nil, nil, Options{}, nil)

	_, err := e.Match(context.Background(), jobText, 5)
	require.Error(t, err)
	var collab *types.CollaboratorError
	assert.ErrorAs(t, err, &collab)
}

func TestMatchEmptyStore(t *testing.T) {
	e := newEngine(&fakeRecords{}, nil, nil, Options{})

	got, err := e.Match(context.Background(), jobText, 10)
	require.NoError(t, err)
	assert.NotNil(t, got.RankedCandidates)
	assert.Empty(t, got.RankedCandidates)
	assert.Equal(t, 0, got.TotalCandidates)
}

func TestMatchDeterministicRanking(t *testing.T) {
	e := newEngine(roster(), nil, nil, Options{})

	got, err := e.Match(context.Background(), jobText, 3)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", got.JobTitle)
	assert.Equal(t, "senior", got.JobLevel)
	assert.Equal(t, []string{"go", "kubernetes"}, got.RequiredSkills.MustHave)
	assert.Equal(t, 4, got.TotalCandidates)
	require.Len(t, got.RankedCandidates, 3)

	ids := []string{}
	for _, r := range got.RankedCandidates {
		ids = append(ids, r.CandidateID)
	}
	assert.Equal(t, []string{"000000000000", "aaaaaaaaaaaa", "bbbbbbbbbbbb"}, ids)

	top := got.RankedCandidates[0]
	assert.Equal(t, 80.0, top.MatchScore)
	assert.Equal(t, types.GoodMatch, top.Recommendation)
	assert.Equal(t, types.ConfidenceLow, top.Confidence)
	assert.Contains(t, top.Risks, "No interview evaluation on record")

	boosted := got.RankedCandidates[2]
	assert.Equal(t, 60.0, boosted.BaseScore)
	assert.Equal(t, 15.0, boosted.TrustBoost)
	assert.Equal(t, 75.0, boosted.MatchScore)
	assert.Equal(t, types.ConfidenceHigh, boosted.Confidence)
	assert.True(t, boosted.HasEvaluation)
	assert.Equal(t, []string{"go"}, boosted.SkillMatch.MatchedMustHave)
	assert.Equal(t, []string{"kubernetes"}, boosted.SkillMatch.MissingMustHave)
	assert.Equal(t, []string{"react"}, boosted.SkillMatch.MatchedNiceToHave)
}

func TestMatchNegativeEvaluationAddsConcerns(t *testing.T) {
	e := newEngine(roster(), nil, nil, Options{})

	got, err := e.Match(context.Background(), jobText, 50)
	require.NoError(t, err)
	last := got.RankedCandidates[len(got.RankedCandidates)-1]

	assert.Equal(t, "cccccccccccc", last.CandidateID)
	assert.Equal(t, 0.0, last.MatchScore)
	assert.Equal(t, 0.0, last.TrustBoost)
	assert.Equal(t, types.WeakMatch, last.Recommendation)
	assert.Equal(t, types.ConfidenceMedium, last.Confidence)
	assert.Contains(t, last.Risks, "no go experience")
}

func TestMatchRetrieval(t *testing.T) {
	ret := &fakeRetriever{out: "Lan has shipped Kubernetes operators."}
	e := newEngine(roster(), nil, ret, Options{})

	got, err := e.Match(context.Background(), jobText, 5)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer go kubernetes react", ret.query)
	assert.Equal(t, types.RetrieveOptions{Mode: "mix", TopK: 5}, ret.opts)
	for _, r := range got.RankedCandidates {
		assert.Equal(t, r.CandidateID == "aaaaaaaaaaaa", r.RetrievalHit, r.CandidateID)
	}
}

func TestMatchRetrievalFailureIsSwallowed(t *testing.T) {
	e := newEngine(roster(), nil, &fakeRetriever{err: errors.New("connection refused")}, Options{})

	got, err := e.Match(context.Background(), jobText, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalCandidates)
}

func TestMatchLLMJudgment(t *testing.T) {
	ret := &fakeRetriever{out: "retrieved context"}
	var mu sync.Mutex
	seen := map[string]extract.MatchInput{}
	judge := judgeFunc(func(_ context.Context, in extract.MatchInput) (*extract.Judgment, error) {
		mu.Lock()
		seen[in.Candidate.ID] = in
		mu.Unlock()
		switch in.Candidate.ID {
		case "bbbbbbbbbbbb":
			return nil, errors.New("model returned garbage")
		case "aaaaaaaaaaaa":
			return &extract.Judgment{MatchScore: 90, HiringConfidence: types.ConfidenceHigh, Strengths: []string{"operator work"}}, nil
		default:
			return &extract.Judgment{MatchScore: 40, HiringConfidence: types.ConfidenceLow}, nil
		}
	})
	e := newEngine(roster(), judge, ret, Options{LLMJudgment: true})

	got, err := e.Match(context.Background(), jobText, 10)
	require.NoError(t, err)
	require.Len(t, got.RankedCandidates, 4)

	first := got.RankedCandidates[0]
	assert.Equal(t, "aaaaaaaaaaaa", first.CandidateID)
	assert.Equal(t, 90.0, first.MatchScore)
	assert.Equal(t, types.StrongMatch, first.Recommendation)
	assert.Equal(t, []string{"operator work"}, first.Strengths)

	// The failed judgment ranks last with zero and no boost despite a hire verdict.
	last := got.RankedCandidates[3]
	assert.Equal(t, "bbbbbbbbbbbb", last.CandidateID)
	assert.True(t, last.Unscored)
	assert.Equal(t, 0.0, last.MatchScore)
	assert.Equal(t, 0.0, last.TrustBoost)
	assert.Equal(t, types.WeakMatch, last.Recommendation)

	assert.Equal(t, "retrieved context", seen["aaaaaaaaaaaa"].Context)
	assert.Len(t, seen["cccccccccccc"].Evaluations, 1)
}

func TestMatchJudgmentTimeout(t *testing.T) {
	judge := judgeFunc(func(ctx context.Context, _ extract.MatchInput) (*extract.Judgment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	e := newEngine(roster(), judge, nil, Options{LLMJudgment: true, CandidateTimeout: 5 * time.Millisecond})

	got, err := e.Match(context.Background(), jobText, 10)
	require.NoError(t, err)
	for _, r := range got.RankedCandidates {
		assert.True(t, r.Unscored, r.CandidateID)
	}
	assert.Equal(t, "000000000000", got.RankedCandidates[0].CandidateID)
}

func TestMatchBoundedParallelism(t *testing.T) {
	records := &fakeRecords{}
	for i := 0; i < 8; i++ {
		records.candidates = append(records.candidates,
			candidate(strings.Repeat(string(rune('a'+i)), 12), "C", []string{"go"}))
	}
	var running, peak int32
	judge := judgeFunc(func(_ context.Context, _ extract.MatchInput) (*extract.Judgment, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return &extract.Judgment{MatchScore: 50}, nil
	})
	e := newEngine(records, judge, nil, Options{LLMJudgment: true, Parallelism: 2})

	got, err := e.Match(context.Background(), jobText, 50)
	require.NoError(t, err)
	assert.Len(t, got.RankedCandidates, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestMatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newEngine(roster(), nil, nil, Options{})

	_, err := e.Match(ctx, jobText, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchStoreError(t *testing.T) {
	e := newEngine(&fakeRecords{err: errors.New("disk gone")}, nil, nil, Options{})
	_, err := e.Match(context.Background(), jobText, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing candidates")
}

// --- SearchBySkill ---

func TestSearchBySkill(t *testing.T) {
	records := roster()
	records.candidates[0].Evaluations = []types.EvaluationSummary{{OverallRecommendation: types.StrongHire, WeightedScore: 90}}
	e := newEngine(records, nil, nil, Options{})

	got, err := e.SearchBySkill(context.Background(), "K8s", 10)
	require.NoError(t, err)

	assert.Equal(t, "kubernetes", got.Skill)
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "aaaaaaaaaaaa", got.Candidates[0].CandidateID)
	assert.Equal(t, 97.0, got.Candidates[0].MatchScore)
	assert.Equal(t, types.ConfidenceHigh, got.Candidates[0].Confidence)
	assert.Equal(t, "000000000000", got.Candidates[1].CandidateID)
	assert.Equal(t, 70.0, got.Candidates[1].MatchScore)
	assert.Equal(t, []string{"kubernetes"}, got.Candidates[1].SkillMatch.MatchedMustHave)
}

func TestSearchBySkillTruncates(t *testing.T) {
	e := newEngine(roster(), nil, nil, Options{})

	got, err := e.SearchBySkill(context.Background(), "go", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Candidates, 1)
	// Huy's hire evaluation (best score 80) lifts him to 94.
	assert.Equal(t, "bbbbbbbbbbbb", got.Candidates[0].CandidateID)
	assert.Equal(t, 94.0, got.Candidates[0].MatchScore)
}

func TestSearchBySkillValidation(t *testing.T) {
	e := newEngine(roster(), nil, nil, Options{})

	_, err := e.SearchBySkill(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = e.SearchBySkill(context.Background(), "go", 0)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSearchBySkillNoHits(t *testing.T) {
	e := newEngine(roster(), nil, nil, Options{})

	got, err := e.SearchBySkill(context.Background(), "haskell", 5)
	require.NoError(t, err)
	assert.NotNil(t, got.Candidates)
	assert.Equal(t, 0, got.Total)
}

// --- Coverage ---

func TestCoverage(t *testing.T) {
	tests := []struct {
		name string
		req  types.RequiredSkills
		have []string
		want float64
	}{
		{"both lists empty", types.RequiredSkills{}, []string{"go"}, 0},
		{"full must, no nice", types.RequiredSkills{MustHave: []string{"go"}}, []string{"go"}, 100},
		{"only nice list", types.RequiredSkills{NiceToHave: []string{"go", "rust"}}, []string{"go"}, 50},
		{"mixed", types.RequiredSkills{MustHave: []string{"go", "sql"}, NiceToHave: []string{"rust"}}, []string{"go", "rust"}, 60},
		{"one third rounds", types.RequiredSkills{MustHave: []string{"a1", "b1", "c1"}}, []string{"a1"}, 33.3},
		{"skill prefix of requirement", types.RequiredSkills{MustHave: []string{"react native"}}, []string{"react"}, 100},
		{"requirement prefix of skill", types.RequiredSkills{MustHave: []string{"dotnet"}}, []string{"dotnet core"}, 100},
		{"no partial word prefix", types.RequiredSkills{MustHave: []string{"java"}}, []string{"javascript"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Coverage(tt.req, tt.have)
			assert.Equal(t, tt.want, got)
		})
	}
}
