// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Recommendation is an interviewer's hiring verdict.
type Recommendation string

const (
	StrongHire Recommendation = "strong_hire"
	Hire       Recommendation = "hire"
	WeakHire   Recommendation = "weak_hire"
	NoHire     Recommendation = "no_hire"
)

// Valid reports whether r is one of the four known verdicts.
func (r Recommendation) Valid() bool {
	switch r {
	case StrongHire, Hire, WeakHire, NoHire:
		return true
	}
	return false
}

// Positive reports whether r recommends hiring.
func (r Recommendation) Positive() bool {
	return r == StrongHire || r == Hire
}

// Evaluation is a structured interview assessment of one candidate.
// Sub-scores are on a 1-10 scale; a nil score means the interviewer gave none.
type Evaluation struct {
	ID          string    `json:"id" yaml:"id"`
	CandidateID string    `json:"candidate_id" yaml:"candidate_id"`
	EvaluatedAt time.Time `json:"evaluated_at" yaml:"evaluated_at"`

	// Weight is the trust weight of interview-derived facts (2.5).
	Weight float64 `json:"weight" yaml:"weight"`

	Interviewer          Interviewer          `json:"interviewer" yaml:"interviewer"`
	TechnicalAssessment  TechnicalAssessment  `json:"technical_assessment" yaml:"technical_assessment"`
	SoftSkillsAssessment SoftSkillsAssessment `json:"soft_skills_assessment" yaml:"soft_skills_assessment"`
	CulturalFit          CulturalFit          `json:"cultural_fit" yaml:"cultural_fit"`

	OverallRecommendation Recommendation `json:"overall_recommendation" yaml:"overall_recommendation"`
	RecommendedLevel      string         `json:"recommended_level" yaml:"recommended_level"`
	SalaryRangeSuggestion string         `json:"salary_range_suggestion" yaml:"salary_range_suggestion"`
	KeyConcerns           []string       `json:"key_concerns" yaml:"key_concerns"`
	FollowUpActions       []string       `json:"follow_up_actions" yaml:"follow_up_actions"`

	// WeightedScore is the 0-100 aggregate computed when the evaluation is recorded.
	WeightedScore float64 `json:"weighted_score" yaml:"weighted_score"`
}

// Interviewer identifies who conducted the interview.
type Interviewer struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// TechnicalAssessment is the technical part of an evaluation.
type TechnicalAssessment struct {
	Score      *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Strengths  []string `json:"strengths" yaml:"strengths"`
	Weaknesses []string `json:"weaknesses" yaml:"weaknesses"`
	Notes      string   `json:"notes" yaml:"notes"`
}

// SoftSkillsAssessment holds named soft-skill sub-scores such as
// communication or teamwork.
type SoftSkillsAssessment struct {
	Scores map[string]float64 `json:"scores,omitempty" yaml:"scores,omitempty"`
	Notes  string             `json:"notes" yaml:"notes"`
}

// CulturalFit is the culture part of an evaluation.
type CulturalFit struct {
	Score *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Notes string   `json:"notes" yaml:"notes"`
}

// Score returns a pointer to v, for building optional sub-scores.
func Score(v float64) *float64 {
	return &v
}
