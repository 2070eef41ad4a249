// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package matching ranks candidates against a job description and
// searches candidates by skill. It only reads records; all mutation goes
// through the HR service.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/talent-engine/internal/extract"
	"github.com/pdiddy/talent-engine/internal/logger"
	"github.com/pdiddy/talent-engine/internal/normalize"
	"github.com/pdiddy/talent-engine/internal/scoring"
	"github.com/pdiddy/talent-engine/pkg/types"
)

const (
	// MinDescriptionLength is the shortest job description accepted.
	MinDescriptionLength = 50

	// MaxTopK bounds the number of ranked results a caller may request.
	MaxTopK = 50

	// skillSearchBase is the score of every candidate holding the skill
	// before evaluation evidence is added.
	skillSearchBase = 70.0
)

// Records is the read side of the record store.
type Records interface {
	Candidates(ctx context.Context) ([]types.Candidate, error)
	Evaluations(ctx context.Context, candidateID string) ([]types.Evaluation, error)
}

// Analyzer turns a job description into structured requirements.
type Analyzer interface {
	AnalyzeJob(ctx context.Context, description string) (*types.JobRequirement, error)
}

// Judge scores one candidate against a job with a language model.
type Judge interface {
	JudgeMatch(ctx context.Context, in extract.MatchInput) (*extract.Judgment, error)
}

// Retriever returns text context relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts types.RetrieveOptions) (string, error)
}

// Options tunes an Engine.
type Options struct {
	// LLMJudgment replaces the skill coverage score with a per-candidate
	// model judgment.
	LLMJudgment bool

	// Parallelism bounds concurrent judgments (default 4).
	Parallelism int

	// CandidateTimeout bounds one judgment (default 60s).
	CandidateTimeout time.Duration

	// RetrievalTimeout bounds the retrieval query (default 30s).
	RetrievalTimeout time.Duration

	// RetrievalMode is passed to the retriever (default "mix").
	RetrievalMode string
}

// Engine ranks candidates.
type Engine struct {
	records   Records
	analyzer  Analyzer
	judge     Judge
	retriever Retriever
	opts      Options
	log       *zap.Logger
}

// New creates an Engine. judge may be nil when LLM judgment is disabled and
// retriever may be nil when no retrieval backend is configured.
func New(records Records, analyzer Analyzer, judge Judge, retriever Retriever, opts Options, log *zap.Logger) *Engine {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	if opts.CandidateTimeout <= 0 {
		opts.CandidateTimeout = 60 * time.Second
	}
	if opts.RetrievalTimeout <= 0 {
		opts.RetrievalTimeout = 30 * time.Second
	}
	if opts.RetrievalMode == "" {
		opts.RetrievalMode = "mix"
	}
	return &Engine{
		records:   records,
		analyzer:  analyzer,
		judge:     judge,
		retriever: retriever,
		opts:      opts,
		log:       logger.OrNop(log),
	}
}

// Match ranks every stored candidate against description and returns the
// best topK.
func (e *Engine) Match(ctx context.Context, description string, topK int) (*types.JobMatch, error) {
	description = strings.TrimSpace(description)
	if n := len([]rune(description)); n < MinDescriptionLength {
		return nil, types.Validationf("job description must be at least %d characters, got %d", MinDescriptionLength, n)
	}
	if err := checkTopK(topK); err != nil {
		return nil, err
	}

	job, err := e.analyzer.AnalyzeJob(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("analyzing job: %w", err)
	}
	normalize.Job(job)

	retrieved := e.retrieve(ctx, retrievalQuery(job), topK)

	candidates, err := e.records.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	results := make([]types.MatchResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := &candidates[i]
			evals, err := e.records.Evaluations(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("loading evaluations of %s: %w", c.ID, err)
			}
			results[i] = e.score(gctx, c, evals, job, retrieved)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rank(results)
	e.log.Info("match complete",
		zap.String("job_title", job.JobTitle),
		zap.Int("candidates", len(results)),
		zap.Bool("llm_judgment", e.opts.LLMJudgment),
	)

	return &types.JobMatch{
		JobTitle:         job.JobTitle,
		JobLevel:         job.Level,
		RequiredSkills:   job.RequiredSkills,
		RankedCandidates: truncate(results, topK),
		TotalCandidates:  len(results),
	}, nil
}

// score computes one candidate's result. Judgment failures never escape:
// the candidate is marked unscored instead.
func (e *Engine) score(ctx context.Context, c *types.Candidate, evals []types.Evaluation, job *types.JobRequirement, retrieved string) types.MatchResult {
	sm, base := Coverage(job.RequiredSkills, c.AllSkills())
	r := types.MatchResult{
		CandidateID:   c.ID,
		Name:          displayName(c),
		SkillMatch:    sm,
		HasEvaluation: len(c.Evaluations) > 0,
		Confidence:    evidenceConfidence(c.Evaluations),
		RetrievalHit:  mentions(retrieved, c),
	}
	r.Strengths, r.Risks = evidence(sm, c.Evaluations, evals)

	if e.opts.LLMJudgment && e.judge != nil {
		jctx, cancel := context.WithTimeout(ctx, e.opts.CandidateTimeout)
		j, err := e.judge.JudgeMatch(jctx, extract.MatchInput{
			Candidate:   c,
			Job:         job,
			Evaluations: evals,
			Context:     retrieved,
		})
		cancel()
		if err != nil {
			e.log.Warn("candidate judgment failed, leaving unscored",
				zap.String("candidate_id", c.ID),
				zap.Error(err),
			)
			r.Unscored = true
			r.Confidence = types.ConfidenceLow
			r.Recommendation = scoring.Category(0)
			return r
		}
		base = j.MatchScore
		r.Confidence = j.HiringConfidence
		if len(j.Strengths) > 0 {
			r.Strengths = j.Strengths
		}
		if len(j.Risks) > 0 {
			r.Risks = j.Risks
		}
	}

	r.BaseScore = scoring.Round1(base)
	r.MatchScore, r.TrustBoost = scoring.Boost(r.BaseScore, c.Evaluations)
	r.MatchScore = scoring.Round1(r.MatchScore)
	r.Recommendation = scoring.Category(r.MatchScore)
	return r
}

// SearchBySkill lists candidates whose technical or soft skills contain
// skill. Every hit scores 70 plus 0.3 times its best evaluation score.
func (e *Engine) SearchBySkill(ctx context.Context, skill string, topK int) (*types.SkillSearch, error) {
	raw := strings.ToLower(strings.TrimSpace(skill))
	if raw == "" {
		return nil, types.Validationf("skill must not be empty")
	}
	if err := checkTopK(topK); err != nil {
		return nil, err
	}
	norm := normalize.Skill(raw)

	retrieved := e.retrieve(ctx,
		fmt.Sprintf("Find candidates with %s skill. List their names, experience level, and related skills.", norm), topK)

	candidates, err := e.records.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	results := []types.MatchResult{}
	for i := range candidates {
		c := &candidates[i]
		var matched []string
		for _, s := range append(append([]string{}, c.Skills.Technical...), c.Skills.Soft...) {
			ls := strings.ToLower(s)
			if strings.Contains(ls, norm) || strings.Contains(ls, raw) {
				matched = append(matched, s)
			}
		}
		if len(matched) == 0 {
			continue
		}

		score := scoring.Round1(scoring.Clamp(skillSearchBase + 0.3*scoring.BestScore(c.Evaluations)))
		results = append(results, types.MatchResult{
			CandidateID:    c.ID,
			Name:           displayName(c),
			MatchScore:     score,
			BaseScore:      skillSearchBase,
			Recommendation: scoring.Category(score),
			Confidence:     evidenceConfidence(c.Evaluations),
			SkillMatch:     types.SkillMatch{MatchedMustHave: matched, MissingMustHave: []string{}, MatchedNiceToHave: []string{}},
			Strengths:      matched,
			Risks:          []string{},
			HasEvaluation:  len(c.Evaluations) > 0,
			RetrievalHit:   mentions(retrieved, c),
		})
	}

	rank(results)
	return &types.SkillSearch{
		Skill:      norm,
		Candidates: truncate(results, topK),
		Total:      len(results),
	}, nil
}

// retrieve runs a best-effort retrieval query. Failures and timeouts yield
// an empty context.
func (e *Engine) retrieve(ctx context.Context, query string, topK int) string {
	if e.retriever == nil || strings.TrimSpace(query) == "" {
		return ""
	}
	rctx, cancel := context.WithTimeout(ctx, e.opts.RetrievalTimeout)
	defer cancel()

	out, err := e.retriever.Retrieve(rctx, query, types.RetrieveOptions{Mode: e.opts.RetrievalMode, TopK: topK})
	if err != nil {
		e.log.Warn("retrieval failed, continuing without context", zap.Error(err))
		return ""
	}
	return out
}

func checkTopK(topK int) error {
	if topK < 1 || topK > MaxTopK {
		return types.Validationf("top_k must be between 1 and %d, got %d", MaxTopK, topK)
	}
	return nil
}

func retrievalQuery(job *types.JobRequirement) string {
	parts := []string{job.JobTitle}
	parts = append(parts, job.RequiredSkills.MustHave...)
	parts = append(parts, job.RequiredSkills.NiceToHave...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// rank orders results by score descending, then candidate id ascending.
func rank(results []types.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].CandidateID < results[j].CandidateID
	})
}

func truncate(results []types.MatchResult, topK int) []types.MatchResult {
	if results == nil {
		return []types.MatchResult{}
	}
	if len(results) > topK {
		return results[:topK]
	}
	return results
}

func displayName(c *types.Candidate) string {
	if c.PersonalInfo.Name == "" {
		return "Unknown"
	}
	return c.PersonalInfo.Name
}

// evidenceConfidence is high with a positive interview verdict, medium
// with any interview, low on CV evidence alone.
func evidenceConfidence(evals []types.EvaluationSummary) types.Confidence {
	conf := types.ConfidenceLow
	for _, e := range evals {
		if e.OverallRecommendation.Positive() {
			return types.ConfidenceHigh
		}
		conf = types.ConfidenceMedium
	}
	return conf
}

// mentions reports whether the retrieval context names the candidate.
func mentions(retrieved string, c *types.Candidate) bool {
	if retrieved == "" {
		return false
	}
	if strings.Contains(retrieved, c.ID) {
		return true
	}
	name := strings.TrimSpace(c.PersonalInfo.Name)
	return name != "" && strings.Contains(strings.ToLower(retrieved), strings.ToLower(name))
}
