// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package matching

import (
	"strings"

	"github.com/pdiddy/talent-engine/internal/scoring"
	"github.com/pdiddy/talent-engine/pkg/types"
)

const (
	mustHaveShare   = 0.8
	niceToHaveShare = 0.2
)

// Coverage compares required skills with a candidate's normalized skills.
// The score is 100 x (0.8 x must-have coverage + 0.2 x nice-to-have
// coverage). A list that is empty gives its share to the other; with both
// empty the score is 0.
func Coverage(req types.RequiredSkills, have []string) (types.SkillMatch, float64) {
	sm := types.SkillMatch{
		MatchedMustHave:   []string{},
		MissingMustHave:   []string{},
		MatchedNiceToHave: []string{},
	}
	for _, r := range req.MustHave {
		if holds(have, r) {
			sm.MatchedMustHave = append(sm.MatchedMustHave, r)
		} else {
			sm.MissingMustHave = append(sm.MissingMustHave, r)
		}
	}
	for _, r := range req.NiceToHave {
		if holds(have, r) {
			sm.MatchedNiceToHave = append(sm.MatchedNiceToHave, r)
		}
	}

	must, nice := len(req.MustHave), len(req.NiceToHave)
	var score float64
	switch {
	case must > 0 && nice > 0:
		score = mustHaveShare*ratio(len(sm.MatchedMustHave), must) + niceToHaveShare*ratio(len(sm.MatchedNiceToHave), nice)
	case must > 0:
		score = ratio(len(sm.MatchedMustHave), must)
	case nice > 0:
		score = ratio(len(sm.MatchedNiceToHave), nice)
	}
	return sm, scoring.Round1(score * 100)
}

func ratio(n, d int) float64 {
	return float64(n) / float64(d)
}

// holds reports whether any skill satisfies requirement: equal, or one is
// a word prefix of the other ("react" and "react native").
func holds(skills []string, requirement string) bool {
	for _, s := range skills {
		if s == requirement || strings.HasPrefix(s, requirement+" ") || strings.HasPrefix(requirement, s+" ") {
			return true
		}
	}
	return false
}

// evidence builds the deterministic strengths and risks of a result.
func evidence(sm types.SkillMatch, summaries []types.EvaluationSummary, evals []types.Evaluation) ([]string, []string) {
	strengths := []string{}
	risks := []string{}

	if len(sm.MatchedMustHave) > 0 {
		strengths = append(strengths, "Has required skills: "+strings.Join(sm.MatchedMustHave, ", "))
	}
	if len(sm.MatchedNiceToHave) > 0 {
		strengths = append(strengths, "Has preferred skills: "+strings.Join(sm.MatchedNiceToHave, ", "))
	}
	for _, s := range summaries {
		if s.OverallRecommendation.Positive() {
			strengths = append(strengths, "Interview recommendation: "+string(s.OverallRecommendation))
			break
		}
	}

	if len(sm.MissingMustHave) > 0 {
		risks = append(risks, "Missing required skills: "+strings.Join(sm.MissingMustHave, ", "))
	}
	if len(summaries) == 0 {
		risks = append(risks, "No interview evaluation on record")
	}
	seen := make(map[string]bool)
	for _, e := range evals {
		for _, concern := range e.KeyConcerns {
			if concern == "" || seen[concern] {
				continue
			}
			seen[concern] = true
			risks = append(risks, concern)
		}
	}
	return strengths, risks
}
