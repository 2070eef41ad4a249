// Package extract turns unstructured text (résumés, interview notes, job
// descriptions) into typed records by prompting a Generative AI backend.
//
// The backend only returns text. This package owns the prompt schemas, JSON
// recovery from loosely formatted responses, and tolerant typed decoding.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/normalize"
	"github.com/pdiddy/talent-engine/internal/scoring"
	"github.com/pdiddy/talent-engine/pkg/types"
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Implementations send one prompt and return the raw text response.
type AIBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BackoffBase controls the base duration for exponential backoff between
// failed model calls. Tests override this to avoid real sleeps.
var BackoffBase = time.Second

// callWithRetry calls the AI backend with exponential backoff.
func callWithRetry(ctx context.Context, backend AIBackend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * BackoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Complete(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// Extractor renders prompts, calls the backend, and decodes its answers.
type Extractor struct {
	backend    AIBackend
	maxRetries int
	log        *zap.Logger
}

// New returns an Extractor. maxRetries <= 0 selects 3.
func New(backend AIBackend, maxRetries int, log *zap.Logger) *Extractor {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{backend: backend, maxRetries: maxRetries, log: log}
}

// complete renders tmpl with data, calls the backend, and recovers a JSON
// object from the answer. A backend failure is returned as a
// *types.CollaboratorError.
func (x *Extractor) complete(ctx context.Context, op string, tmpl promptTemplate, data any) (map[string]any, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return nil, fmt.Errorf("rendering %s prompt: %w", op, err)
	}

	start := time.Now()
	raw, err := callWithRetry(ctx, x.backend, prompt, x.maxRetries)
	if err != nil {
		return nil, &types.CollaboratorError{Collaborator: "extraction", Op: op, Err: err}
	}
	x.log.Debug("model response",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("length", len(raw)),
	)

	m := ParseJSON(raw, x.log.With(zap.String("op", op)))
	if len(m) == 0 {
		x.log.Warn("empty extraction", zap.String("op", op), zap.Error(types.ErrExtractionEmpty))
	}
	return m, nil
}

// ExtractCandidate builds a candidate profile from résumé text. Skills are
// normalized. Identity and provenance are left for the caller. An empty
// extraction yields an empty profile, not an error.
func (x *Extractor) ExtractCandidate(ctx context.Context, cvText string) (*types.Candidate, error) {
	m, err := x.complete(ctx, "cv_extraction", cvPrompt, struct{ Content string }{cvText})
	if err != nil {
		return nil, err
	}

	var c types.Candidate
	profile := pick(m, "personal_info", "summary", "skills", "experience", "education", "certifications", "projects")
	decodeFields(profile, &c, "", x.log)
	normalize.Candidate(&c)
	return &c, nil
}

// ExtractEvaluation builds an evaluation from free-form interview notes.
// Sub-scores outside 1-10 are dropped. The weighted score is computed here
// so every persisted evaluation carries it.
func (x *Extractor) ExtractEvaluation(ctx context.Context, notes string) (*types.Evaluation, error) {
	m, err := x.complete(ctx, "interview_evaluation", evaluationPrompt, struct{ Content string }{notes})
	if err != nil {
		return nil, err
	}

	e := types.Evaluation{Weight: scoring.InterviewWeight}

	if v, ok := m["interviewer"].(map[string]any); ok {
		decodeFields(v, &e.Interviewer, "interviewer", x.log)
	}
	if v, ok := m["technical_assessment"].(map[string]any); ok {
		decodeFields(v, &e.TechnicalAssessment, "technical_assessment", x.log)
		e.TechnicalAssessment.Score = subScore(v["score"], "technical_assessment.score", x.log)
	}
	if v, ok := m["soft_skills_assessment"].(map[string]any); ok {
		e.SoftSkillsAssessment = x.softSkills(v)
	}
	if v, ok := m["cultural_fit"].(map[string]any); ok {
		e.CulturalFit.Notes = coerceString(v["notes"])
		e.CulturalFit.Score = subScore(v["score"], "cultural_fit.score", x.log)
	}

	rec := types.Recommendation(strings.ToLower(coerceString(m["overall_recommendation"])))
	switch {
	case rec.Valid():
		e.OverallRecommendation = rec
	case rec != "":
		x.log.Warn("unknown recommendation", zap.String("value", string(rec)))
	}

	decodeFields(pick(m, "recommended_level", "salary_range_suggestion", "key_concerns", "follow_up_actions"), &e, "", x.log)

	e.WeightedScore = scoring.Aggregate(&e)
	return &e, nil
}

// softSkills reads a flat map of named 1-10 sub-scores plus a notes entry.
// Nested {"scores": {...}} input is accepted too.
func (x *Extractor) softSkills(v map[string]any) types.SoftSkillsAssessment {
	var out types.SoftSkillsAssessment
	if nested, ok := v["scores"].(map[string]any); ok {
		v = mergeMaps(v, nested)
	}
	for k, raw := range v {
		switch k {
		case "notes":
			out.Notes = coerceString(raw)
		case "scores":
		default:
			if s := subScore(raw, "soft_skills_assessment."+k, x.log); s != nil {
				if out.Scores == nil {
					out.Scores = make(map[string]float64)
				}
				out.Scores[k] = *s
			}
		}
	}
	return out
}

// AnalyzeJob extracts structured requirements from a job description.
// Required skills are normalized.
func (x *Extractor) AnalyzeJob(ctx context.Context, description string) (*types.JobRequirement, error) {
	m, err := x.complete(ctx, "job_analysis", jobPrompt, struct{ Content string }{description})
	if err != nil {
		return nil, err
	}

	var j types.JobRequirement
	decodeFields(m, &j, "", x.log)
	normalize.Job(&j)
	return &j, nil
}

// MatchInput is everything the model sees when judging one candidate.
type MatchInput struct {
	Candidate   *types.Candidate
	Job         *types.JobRequirement
	Evaluations []types.Evaluation
	Context     string
}

// Judgment is the model's assessment of one candidate against a job.
type Judgment struct {
	MatchScore            float64          `json:"match_score"`
	SkillMatch            types.SkillMatch `json:"skill_match"`
	OverallRecommendation string           `json:"overall_recommendation"`
	HiringConfidence      types.Confidence `json:"hiring_confidence"`
	Strengths             []string         `json:"strengths"`
	Risks                 []string         `json:"risks"`
}

// JudgeMatch asks the model to score one candidate against a job. A
// response without a usable match_score is an error, so the caller can
// treat the candidate as unscored.
func (x *Extractor) JudgeMatch(ctx context.Context, in MatchInput) (*Judgment, error) {
	data := struct {
		Candidate, Job, Interviews, Context string
	}{
		Candidate:  toJSON(in.Candidate),
		Job:        toJSON(in.Job),
		Interviews: "None",
		Context:    strings.TrimSpace(in.Context),
	}
	if len(in.Evaluations) > 0 {
		data.Interviews = toJSON(in.Evaluations)
	}
	if data.Context == "" {
		data.Context = "None"
	}

	m, err := x.complete(ctx, "candidate_matching", matchPrompt, data)
	if err != nil {
		return nil, err
	}

	score, ok := coerceFloat(m["match_score"])
	if !ok {
		return nil, &types.CollaboratorError{Collaborator: "extraction", Op: "candidate_matching", Err: types.ErrExtractionEmpty}
	}

	var j Judgment
	decodeFields(m, &j, "", x.log)
	j.MatchScore = scoring.Clamp(score)
	switch j.HiringConfidence {
	case types.ConfidenceHigh, types.ConfidenceMedium, types.ConfidenceLow:
	default:
		j.HiringConfidence = types.ConfidenceMedium
	}
	return &j, nil
}

func pick(m map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

func mergeMaps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
