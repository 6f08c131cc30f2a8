package screening

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchResult = `{
	"overall_match_score": 78,
	"recommendation": "good_match",
	"skill_alignment": {"score": 90},
	"experience_alignment": {"score": 70},
	"education_alignment": {"score": 50},
	"project_alignment": {"score": 80},
	"cultural_fit_indicators": {"score": 60},
	"growth_potential": {"score": 10},
	"transparency_statement": "Weighted on skills and delivery.",
	"strengths": [{"strength": "Go services", "evidence": "Built ingestion platform", "value_to_role": "Owns backend"}],
	"concerns": [],
	"next_steps": {"recommendation": "interview", "reasoning": "Strong skills"},
	"fairness_check": {"bias_free": true, "merit_based": true, "explanation": "Masked profile"}
}`

func TestBreakDownScore(t *testing.T) {
	b, err := BreakDownScore(json.RawMessage(matchResult))
	require.NoError(t, err)

	// 90*.35 + 70*.25 + 50*.10 + 80*.15 + 60*.10 + 10*.05
	assert.Equal(t, 72.5, b.OverallScore)
	assert.Equal(t, "weighted_average", b.CalculationMethod)
	require.Len(t, b.Components, 6)

	assert.Equal(t, ComponentScore{
		Component:            "Skill Alignment",
		Score:                90,
		Weight:               35,
		WeightedContribution: 31.5,
		Impact:               "Strong Positive Impact",
	}, b.Components[0])
	assert.Equal(t, "Positive Impact", b.Components[4].Impact)
	assert.Equal(t, "Negative Impact", b.Components[5].Impact)

	var sum float64
	for _, c := range b.Components {
		sum += c.Weight
	}
	assert.Equal(t, float64(100), sum)
}

func TestBreakDownScoreMissingComponents(t *testing.T) {
	b, err := BreakDownScore(json.RawMessage(`{"skill_alignment": {"score": 100}}`))
	require.NoError(t, err)
	assert.Equal(t, float64(35), b.OverallScore)
	assert.Equal(t, "Negative Impact", b.Components[1].Impact)
}

func TestBreakDownScoreInvalid(t *testing.T) {
	_, err := BreakDownScore(json.RawMessage(`{"skill_alignment": {"score": "high"}}`))
	assert.ErrorIs(t, err, ErrInvalidMatch)
}

func TestExplainMatch(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	report, err := ExplainMatch(json.RawMessage(matchResult), now)
	require.NoError(t, err)

	assert.Equal(t, "human_readable", report.Format)
	assert.Equal(t, now, report.GeneratedAt)
	for _, want := range []string{
		"Overall Match Score: 78/100",
		"Recommendation: Good Match",
		"Weighted on skills and delivery.",
		"1. Go services\n   Evidence: Built ingestion platform\n   Value: Owns backend",
		"No major concerns identified.",
		"Recommendation: Interview",
		"Bias-Free: Yes",
		"Explanation: Masked profile",
	} {
		assert.Contains(t, report.Narrative, want)
	}
}

func TestExplainMatchDefaults(t *testing.T) {
	report, err := ExplainMatch(json.RawMessage(`{}`), time.Now())
	require.NoError(t, err)
	assert.Contains(t, report.Narrative, "Overall Match Score: N/A/100")
	assert.Contains(t, report.Narrative, "Recommendation: N/A")
	assert.Contains(t, report.Narrative, "Bias-Free: Unknown")

	_, err = ExplainMatch(json.RawMessage(`[1,2]`), time.Now())
	assert.ErrorIs(t, err, ErrInvalidMatch)
}

func TestRankCandidates(t *testing.T) {
	got, err := RankCandidates([]json.RawMessage{
		json.RawMessage(`{"overall_match_score": 60, "recommendation": "potential_match"}`),
		json.RawMessage(`{"overall_match_score": 85, "strengths": [{"strength": "a"}, {"strength": "b"}, {"strength": "c"}, {"strength": "d"}]}`),
		json.RawMessage(`{"overall_match_score": 60, "concerns": [{"concern": "gap"}]}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalCandidates)
	ids := make([]int, 0, len(got.RankedCandidates))
	for _, c := range got.RankedCandidates {
		ids = append(ids, c.CandidateID)
	}
	assert.Equal(t, []int{2, 1, 3}, ids)

	require.NotNil(t, got.TopCandidate)
	assert.Equal(t, float64(85), got.TopCandidate.OverallScore)
	assert.Equal(t, []string{"a", "b", "c"}, got.TopCandidate.KeyStrengths)
	assert.Equal(t, "unknown", got.TopCandidate.Recommendation)
	assert.Equal(t, []string{"gap"}, got.RankedCandidates[2].KeyConcerns)
	assert.Equal(t, "score_based_ranking", got.ComparisonMethod)
}

func TestRankCandidatesEdgeCases(t *testing.T) {
	got, err := RankCandidates(nil)
	require.NoError(t, err)
	assert.Zero(t, got.TotalCandidates)
	assert.Nil(t, got.TopCandidate)

	_, err = RankCandidates([]json.RawMessage{json.RawMessage(`[1]`)})
	assert.ErrorIs(t, err, ErrInvalidMatch)
}
