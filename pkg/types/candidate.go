// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records shared across the talent engine:
// candidates, interview evaluations, job requirements, match results,
// retrieval documents and configuration.
package types

import "time"

// DataSourceCV marks a candidate profile whose facts were extracted from a résumé.
const DataSourceCV = "cv"

// Candidate is the persisted profile of one applicant. Identity, provenance,
// and the evaluation summaries are owned by the store; the remaining
// sections are extracted from the résumé and may be patched later.
type Candidate struct {
	// ID is a 12-character lowercase hex identifier, immutable after creation.
	ID string `json:"id" yaml:"id"`

	PersonalInfo PersonalInfo `json:"personal_info" yaml:"personal_info"`

	// Summary is the professional summary as written in the résumé.
	Summary string `json:"summary" yaml:"summary"`

	Skills Skills `json:"skills" yaml:"skills"`

	Experience     []Experience    `json:"experience" yaml:"experience"`
	Education      []Education     `json:"education" yaml:"education"`
	Certifications []Certification `json:"certifications" yaml:"certifications"`
	Projects       []Project       `json:"projects" yaml:"projects"`

	// SourceFile is the original file name of the résumé.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// ExtractedAt records when the profile was extracted.
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`

	// DataSource is always DataSourceCV for profiles created by ingestion.
	DataSource string `json:"data_source" yaml:"data_source"`

	// Weight is the trust weight of CV-derived facts (1.0).
	Weight float64 `json:"weight" yaml:"weight"`

	// UpdatedAt is set on every successful update.
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`

	// Evaluations is append-only. Each entry summarizes one persisted Evaluation.
	Evaluations []EvaluationSummary `json:"evaluations,omitempty" yaml:"evaluations,omitempty"`
}

// PersonalInfo holds contact details. Every field is optional.
type PersonalInfo struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	LinkedIn string `json:"linkedin" yaml:"linkedin"`
	GitHub   string `json:"github" yaml:"github"`
}

// Skills groups a candidate's skills. Technical and Soft hold normalized
// skill tokens; Languages holds spoken languages and is kept verbatim.
type Skills struct {
	Technical []string `json:"technical" yaml:"technical"`
	Soft      []string `json:"soft" yaml:"soft"`
	Languages []string `json:"languages" yaml:"languages"`
}

// Experience is one position held by the candidate.
type Experience struct {
	Company          string   `json:"company" yaml:"company"`
	Role             string   `json:"role" yaml:"role"`
	Duration         string   `json:"duration" yaml:"duration"`
	Responsibilities []string `json:"responsibilities" yaml:"responsibilities"`
	Achievements     []string `json:"achievements" yaml:"achievements"`
}

// Education is one degree or course of study.
type Education struct {
	Institution    string `json:"institution" yaml:"institution"`
	Degree         string `json:"degree" yaml:"degree"`
	Field          string `json:"field" yaml:"field"`
	GraduationYear string `json:"graduation_year" yaml:"graduation_year"`
}

// Certification is a professional certificate.
type Certification struct {
	Name   string `json:"name" yaml:"name"`
	Issuer string `json:"issuer" yaml:"issuer"`
	Year   string `json:"year" yaml:"year"`
	Expiry string `json:"expiry" yaml:"expiry"`
}

// Project is a project listed on the résumé. Technologies are normalized.
type Project struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// EvaluationSummary is the candidate-side record of one interview evaluation.
type EvaluationSummary struct {
	EvaluationID          string         `json:"evaluation_id" yaml:"evaluation_id"`
	OverallRecommendation Recommendation `json:"overall_recommendation" yaml:"overall_recommendation"`
	WeightedScore         float64        `json:"weighted_score" yaml:"weighted_score"`
	EvaluatedAt           time.Time      `json:"evaluated_at" yaml:"evaluated_at"`
}

// CandidateSummary is the compact listing view of a candidate.
type CandidateSummary struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	Email           string    `json:"email" yaml:"email"`
	SkillsCount     int       `json:"skills_count" yaml:"skills_count"`
	ExperienceCount int       `json:"experience_count" yaml:"experience_count"`
	HasEvaluation   bool      `json:"has_evaluation" yaml:"has_evaluation"`
	ExtractedAt     time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// Summarize returns the listing view of c.
func (c *Candidate) Summarize() CandidateSummary {
	return CandidateSummary{
		ID:              c.ID,
		Name:            c.PersonalInfo.Name,
		Email:           c.PersonalInfo.Email,
		SkillsCount:     len(c.Skills.Technical) + len(c.Skills.Soft),
		ExperienceCount: len(c.Experience),
		HasEvaluation:   len(c.Evaluations) > 0,
		ExtractedAt:     c.ExtractedAt,
	}
}

// CandidateDetail is a candidate together with its full evaluation records.
type CandidateDetail struct {
	Candidate         `yaml:",inline"`
	EvaluationDetails []Evaluation `json:"evaluation_details,omitempty" yaml:"evaluation_details,omitempty"`
}

// AllSkills returns technical and soft skills plus every project technology,
// in that order, without deduplication.
func (c *Candidate) AllSkills() []string {
	out := make([]string, 0, len(c.Skills.Technical)+len(c.Skills.Soft))
	out = append(out, c.Skills.Technical...)
	out = append(out, c.Skills.Soft...)
	for _, p := range c.Projects {
		out = append(out, p.Technologies...)
	}
	return out
}
