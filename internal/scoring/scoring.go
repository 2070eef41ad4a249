// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring turns interview sub-scores into a single 0-100 figure and
// applies the interview-over-CV trust hierarchy to match scores.
package scoring

import (
	"math"

	"github.com/pdiddy/talent-engine/pkg/types"
)

const (
	// CVWeight is the trust weight of facts extracted from a résumé.
	CVWeight = 1.0

	// InterviewWeight is the trust weight of facts from an interview evaluation.
	InterviewWeight = 2.5

	// TrustBoost is the number of points added to a match score when an
	// interviewer recommended hiring. It is the weight difference scaled to
	// the 0-100 range.
	TrustBoost = (InterviewWeight - CVWeight) * 10

	maxScore = 100.0
)

// Aggregate returns the weighted score of an evaluation: the mean of the
// present values among technical score, mean soft-skill score, and
// cultural-fit score, scaled by 10 and rounded to one decimal. It returns
// 0 when no sub-score is present.
func Aggregate(e *types.Evaluation) float64 {
	var parts []float64
	if s := e.TechnicalAssessment.Score; s != nil {
		parts = append(parts, *s)
	}
	if len(e.SoftSkillsAssessment.Scores) > 0 {
		var sum float64
		for _, v := range e.SoftSkillsAssessment.Scores {
			sum += v
		}
		parts = append(parts, sum/float64(len(e.SoftSkillsAssessment.Scores)))
	}
	if s := e.CulturalFit.Score; s != nil {
		parts = append(parts, *s)
	}
	if len(parts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range parts {
		sum += p
	}
	return Round1(sum / float64(len(parts)) * 10)
}

// HasSignal reports whether e carries at least one sub-score.
func HasSignal(e *types.Evaluation) bool {
	return e.TechnicalAssessment.Score != nil ||
		len(e.SoftSkillsAssessment.Scores) > 0 ||
		e.CulturalFit.Score != nil
}

// Boost applies TrustBoost once when any summary recommends hiring. The
// result is capped at 100. It also returns the points actually added.
func Boost(score float64, evals []types.EvaluationSummary) (float64, float64) {
	for _, e := range evals {
		if e.OverallRecommendation.Positive() {
			boosted := math.Min(score+TrustBoost, maxScore)
			return boosted, Round1(boosted - score)
		}
	}
	return score, 0
}

// Category buckets a final match score.
func Category(score float64) types.MatchCategory {
	switch {
	case score >= 85:
		return types.StrongMatch
	case score >= 70:
		return types.GoodMatch
	case score >= 50:
		return types.PartialMatch
	default:
		return types.WeakMatch
	}
}

// Summary builds the candidate-side record of an evaluation.
func Summary(e *types.Evaluation) types.EvaluationSummary {
	return types.EvaluationSummary{
		EvaluationID:          e.ID,
		OverallRecommendation: e.OverallRecommendation,
		WeightedScore:         e.WeightedScore,
		EvaluatedAt:           e.EvaluatedAt,
	}
}

// BestScore returns the highest weighted score among evals, or 0.
func BestScore(evals []types.EvaluationSummary) float64 {
	var best float64
	for _, e := range evals {
		best = math.Max(best, e.WeightedScore)
	}
	return best
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp limits v to the 0-100 range.
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(maxScore, v))
}
