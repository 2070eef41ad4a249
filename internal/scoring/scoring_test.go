// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/talent-engine/pkg/types"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		eval types.Evaluation
		want float64
	}{
		{
			name: "all three parts",
			eval: types.Evaluation{
				TechnicalAssessment:  types.TechnicalAssessment{Score: types.Score(8)},
				SoftSkillsAssessment: types.SoftSkillsAssessment{Scores: map[string]float64{"communication": 8, "teamwork": 6}},
				CulturalFit:          types.CulturalFit{Score: types.Score(10)},
			},
			want: 83.3,
		},
		{
			name: "technical only",
			eval: types.Evaluation{TechnicalAssessment: types.TechnicalAssessment{Score: types.Score(7)}},
			want: 70,
		},
		{
			name: "soft and cultural",
			eval: types.Evaluation{
				SoftSkillsAssessment: types.SoftSkillsAssessment{Scores: map[string]float64{"leadership": 5}},
				CulturalFit:          types.CulturalFit{Score: types.Score(9)},
			},
			want: 70,
		},
		{
			name: "no sub-scores",
			eval: types.Evaluation{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(&tt.eval))
			assert.Equal(t, tt.want != 0, HasSignal(&tt.eval))
		})
	}
}

func TestBoost(t *testing.T) {
	hire := []types.EvaluationSummary{{OverallRecommendation: types.NoHire}, {OverallRecommendation: types.Hire}}
	noHire := []types.EvaluationSummary{{OverallRecommendation: types.WeakHire}}

	got, added := Boost(60, hire)
	assert.Equal(t, 75.0, got)
	assert.Equal(t, 15.0, added)

	got, added = Boost(92, hire)
	assert.Equal(t, 100.0, got)
	assert.Equal(t, 8.0, added)

	got, added = Boost(60, noHire)
	assert.Equal(t, 60.0, got)
	assert.Zero(t, added)

	got, _ = Boost(60, nil)
	assert.Equal(t, 60.0, got)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, types.StrongMatch, Category(85))
	assert.Equal(t, types.GoodMatch, Category(84.9))
	assert.Equal(t, types.GoodMatch, Category(70))
	assert.Equal(t, types.PartialMatch, Category(50))
	assert.Equal(t, types.WeakMatch, Category(49.9))
	assert.Equal(t, types.WeakMatch, Category(0))
}

func TestBestScore(t *testing.T) {
	assert.Zero(t, BestScore(nil))
	assert.Equal(t, 81.5, BestScore([]types.EvaluationSummary{{WeightedScore: 70}, {WeightedScore: 81.5}}))
}
