// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/talent-engine/internal/scoring"
	"github.com/pdiddy/talent-engine/pkg/types"
)

// CandidateDocument renders the retrievable text of a candidate profile.
func CandidateDocument(c *types.Candidate) types.Document {
	name := c.PersonalInfo.Name
	if name == "" {
		name = "Unknown"
	}
	lines := []string{"Candidate: " + name}
	if c.PersonalInfo.Email != "" {
		lines = append(lines, "Email: "+c.PersonalInfo.Email)
	}
	if c.PersonalInfo.Location != "" {
		lines = append(lines, "Location: "+c.PersonalInfo.Location)
	}
	if c.Summary != "" {
		lines = append(lines, "Summary: "+c.Summary)
	}
	if len(c.Skills.Technical) > 0 {
		lines = append(lines, "Technical Skills: "+strings.Join(c.Skills.Technical, ", "))
	}
	if len(c.Skills.Soft) > 0 {
		lines = append(lines, "Soft Skills: "+strings.Join(c.Skills.Soft, ", "))
	}
	for _, e := range c.Experience {
		company := e.Company
		if company == "" {
			company = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("Experience at %s: %s (%s)", company, e.Role, e.Duration))
	}
	for _, e := range c.Education {
		lines = append(lines, fmt.Sprintf("Education: %s in %s from %s", e.Degree, e.Field, e.Institution))
	}
	for _, cert := range c.Certifications {
		lines = append(lines, fmt.Sprintf("Certification: %s by %s", cert.Name, cert.Issuer))
	}
	for _, p := range c.Projects {
		line := "Project: " + p.Name
		if len(p.Technologies) > 0 {
			line += " (" + strings.Join(p.Technologies, ", ") + ")"
		}
		lines = append(lines, line)
	}

	return types.Document{
		ID:          c.ID,
		Kind:        types.DocumentCandidate,
		CandidateID: c.ID,
		Weight:      scoring.CVWeight,
		Text:        strings.Join(lines, "\n"),
	}
}

// EvaluationDocument renders the retrievable text of an interview evaluation.
func EvaluationDocument(e *types.Evaluation) types.Document {
	rec := string(e.OverallRecommendation)
	if rec == "" {
		rec = "N/A"
	}
	lines := []string{
		"Interview Evaluation for Candidate " + e.CandidateID,
		"Overall Recommendation: " + rec,
	}
	if e.Interviewer.Name != "" {
		lines = append(lines, fmt.Sprintf("Interviewer: %s (%s)", e.Interviewer.Name, e.Interviewer.Role))
	}
	if s := e.TechnicalAssessment.Score; s != nil {
		lines = append(lines, fmt.Sprintf("Technical Score: %g/10", *s))
	}
	if len(e.TechnicalAssessment.Strengths) > 0 {
		lines = append(lines, "Technical Strengths: "+strings.Join(e.TechnicalAssessment.Strengths, ", "))
	}
	if len(e.TechnicalAssessment.Weaknesses) > 0 {
		lines = append(lines, "Technical Weaknesses: "+strings.Join(e.TechnicalAssessment.Weaknesses, ", "))
	}
	if len(e.SoftSkillsAssessment.Scores) > 0 {
		names := make([]string, 0, len(e.SoftSkillsAssessment.Scores))
		for k := range e.SoftSkillsAssessment.Scores {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = fmt.Sprintf("%s %g", k, e.SoftSkillsAssessment.Scores[k])
		}
		lines = append(lines, "Soft Skills: "+strings.Join(parts, ", "))
	}
	if e.SoftSkillsAssessment.Notes != "" {
		lines = append(lines, "Soft Skills Notes: "+e.SoftSkillsAssessment.Notes)
	}
	if e.CulturalFit.Notes != "" {
		lines = append(lines, "Cultural Fit: "+e.CulturalFit.Notes)
	}
	if len(e.KeyConcerns) > 0 {
		lines = append(lines, "Key Concerns: "+strings.Join(e.KeyConcerns, ", "))
	}
	if e.RecommendedLevel != "" {
		lines = append(lines, "Recommended Level: "+e.RecommendedLevel)
	}

	return types.Document{
		ID:          e.CandidateID + "_" + e.ID,
		Kind:        types.DocumentEvaluation,
		CandidateID: e.CandidateID,
		Weight:      scoring.InterviewWeight,
		Text:        strings.Join(lines, "\n"),
	}
}

// Collect builds the documents for a candidate and its evaluations.
func Collect(c *types.Candidate, evals []types.Evaluation) []types.Document {
	docs := []types.Document{CandidateDocument(c)}
	for i := range evals {
		docs = append(docs, EvaluationDocument(&evals[i]))
	}
	return docs
}
