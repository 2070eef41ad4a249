// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// JobRequirement is the structured form of a job description. It is built
// for a single match request and never persisted.
type JobRequirement struct {
	JobTitle         string             `json:"job_title" yaml:"job_title"`
	Department       string             `json:"department" yaml:"department"`
	Level            string             `json:"level" yaml:"level"`
	RequiredSkills   RequiredSkills     `json:"required_skills" yaml:"required_skills"`
	Experience       ExperienceRequired `json:"experience" yaml:"experience"`
	Education        EducationRequired  `json:"education" yaml:"education"`
	Certifications   []string           `json:"certifications" yaml:"certifications"`
	Responsibilities []string           `json:"responsibilities" yaml:"responsibilities"`
	Benefits         []string           `json:"benefits" yaml:"benefits"`
	CultureKeywords  []string           `json:"culture_keywords" yaml:"culture_keywords"`
}

// RequiredSkills splits job skills into deal breakers and bonuses.
// Both lists hold normalized skill tokens.
type RequiredSkills struct {
	MustHave   []string `json:"must_have" yaml:"must_have"`
	NiceToHave []string `json:"nice_to_have" yaml:"nice_to_have"`
}

// ExperienceRequired describes the experience the job asks for.
// MaxYears is nil when there is no upper bound.
type ExperienceRequired struct {
	MinYears        *float64 `json:"min_years,omitempty" yaml:"min_years,omitempty"`
	MaxYears        *float64 `json:"max_years,omitempty" yaml:"max_years,omitempty"`
	RequiredDomains []string `json:"required_domains" yaml:"required_domains"`
}

// EducationRequired describes the education the job asks for.
type EducationRequired struct {
	MinLevel        string   `json:"min_level" yaml:"min_level"`
	PreferredFields []string `json:"preferred_fields" yaml:"preferred_fields"`
}

// MatchCategory buckets a final match score.
type MatchCategory string

const (
	StrongMatch  MatchCategory = "strong_match"
	GoodMatch    MatchCategory = "good_match"
	PartialMatch MatchCategory = "partial_match"
	WeakMatch    MatchCategory = "weak_match"
)

// Confidence is how sure the engine is of a match result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SkillMatch lists which required skills a candidate covers.
type SkillMatch struct {
	MatchedMustHave   []string `json:"matched_must_have" yaml:"matched_must_have"`
	MissingMustHave   []string `json:"missing_must_have" yaml:"missing_must_have"`
	MatchedNiceToHave []string `json:"matched_nice_to_have" yaml:"matched_nice_to_have"`
}

// MatchResult is one candidate's fit against a job.
type MatchResult struct {
	CandidateID    string        `json:"candidate_id" yaml:"candidate_id"`
	Name           string        `json:"name" yaml:"name"`
	MatchScore     float64       `json:"match_score" yaml:"match_score"`
	BaseScore      float64       `json:"base_score" yaml:"base_score"`
	TrustBoost     float64       `json:"trust_boost" yaml:"trust_boost"`
	Recommendation MatchCategory `json:"recommendation" yaml:"recommendation"`
	Confidence     Confidence    `json:"confidence" yaml:"confidence"`
	SkillMatch     SkillMatch    `json:"skill_match" yaml:"skill_match"`
	Strengths      []string      `json:"strengths" yaml:"strengths"`
	Risks          []string      `json:"risks" yaml:"risks"`
	HasEvaluation  bool          `json:"has_evaluation" yaml:"has_evaluation"`

	// Unscored is set when per-candidate judgment failed or timed out. The
	// candidate still appears in the ranking with a score of zero.
	Unscored bool `json:"unscored,omitempty" yaml:"unscored,omitempty"`

	// RetrievalHit reports whether the retrieval context mentions the candidate.
	RetrievalHit bool `json:"retrieval_hit" yaml:"retrieval_hit"`
}

// JobMatch is the answer to a match request.
type JobMatch struct {
	JobTitle         string         `json:"job_title" yaml:"job_title"`
	JobLevel         string         `json:"job_level" yaml:"job_level"`
	RequiredSkills   RequiredSkills `json:"required_skills" yaml:"required_skills"`
	RankedCandidates []MatchResult  `json:"ranked_candidates" yaml:"ranked_candidates"`

	// TotalCandidates counts every candidate considered before truncation.
	TotalCandidates int `json:"total_candidates" yaml:"total_candidates"`
}

// SkillSearch is the answer to a skill search request.
type SkillSearch struct {
	Skill      string        `json:"skill" yaml:"skill"`
	Candidates []MatchResult `json:"candidates" yaml:"candidates"`
	Total      int           `json:"total" yaml:"total"`
}
