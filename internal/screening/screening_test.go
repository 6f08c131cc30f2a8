package screening

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

type fakeAnalyzer struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, prompt string) (json.RawMessage, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.answer), nil
}

func newService(t *testing.T, a oracle.Analyzer) *Service {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	log := logger.NewNop()
	s := New(privacy.NewRedactor(cat, log), a, log)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFairEvaluationMasksDemographics(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{"merit_score": 77}`}
	s := newService(t, fake)

	res, err := s.FairEvaluation(context.Background(),
		"Mr. John Smith\nHe is a 45 years old engineer.\nSkills: Go", "Backend engineer")
	require.NoError(t, err)

	assert.JSONEq(t, `{"merit_score": 77}`, string(res.FairEvaluation))
	assert.Contains(t, res.MaskedAttributes, "gender_title")
	assert.Contains(t, res.MaskedAttributes, "gender_pronoun")
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), res.EvaluatedAt)

	require.Len(t, fake.prompts, 1)
	prompt := fake.prompts[0]
	assert.Contains(t, prompt, "JOB DESCRIPTION:\nBackend engineer")
	assert.Contains(t, prompt, "Skills: Go")
	assert.NotContains(t, prompt, "John Smith")
	assert.NotContains(t, prompt, "Mr.")
	assert.NotContains(t, prompt, "45 years old")
}

func TestFairEvaluationTruncatesInputs(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{}`}
	s := newService(t, fake)

	_, err := s.FairEvaluation(context.Background(), strings.Repeat("r", 5000), strings.Repeat("j", 2500))
	require.NoError(t, err)

	prompt := fake.prompts[0]
	assert.Contains(t, prompt, strings.Repeat("j", MaxJobChars)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("j", MaxJobChars+1))
	assert.NotContains(t, prompt, strings.Repeat("r", MaxResumeChars+1))
}

func TestFairEvaluationOracleFailure(t *testing.T) {
	s := newService(t, &fakeAnalyzer{err: oracle.ErrNotConfigured})

	_, err := s.FairEvaluation(context.Background(), "resume", "job")
	assert.ErrorIs(t, err, oracle.ErrNotConfigured)
}

func TestFairEvaluationRejectsEmptyInput(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{}`}
	s := newService(t, fake)

	_, err := s.FairEvaluation(context.Background(), "  ", "job")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, fake.prompts)
}

func TestDetectBias(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{"bias_detected": true}`}
	s := newService(t, fake)

	res, err := s.DetectBias(context.Background(), strings.Repeat("e", 3500), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bias_detected": true}`, string(res.BiasAnalysis))

	prompt := fake.prompts[0]
	assert.Contains(t, prompt, strings.Repeat("e", MaxEvaluationChars))
	assert.NotContains(t, prompt, strings.Repeat("e", MaxEvaluationChars+1))
	assert.NotContains(t, prompt, "RESUME CONTEXT")

	_, err = s.DetectBias(context.Background(), "too young for this role", "Resume body")
	require.NoError(t, err)
	assert.Contains(t, fake.prompts[1], "RESUME CONTEXT:\nResume body")
}

func TestDetectBiasWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	s := newService(t, &fakeAnalyzer{err: boom})

	_, err := s.DetectBias(context.Background(), "evaluation", "")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bias detection")
}

func TestTruncateCountsCharacters(t *testing.T) {
	assert.Equal(t, "ab", truncate("ab", 3))
	assert.Equal(t, "éé", truncate("ééé", 2))
}

func TestCompareEvaluations(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{"bias_impact_detected": false}`}
	s := newService(t, fake)

	res, err := s.CompareEvaluations(context.Background(), strings.Repeat("o", 2500), "anonymized view")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bias_impact_detected": false}`, string(res.Comparison))
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), res.ComparedAt)

	prompt := fake.prompts[0]
	assert.Contains(t, prompt, strings.Repeat("o", MaxCompareChars)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("o", MaxCompareChars+1))
	assert.Contains(t, prompt, "ANONYMIZED EVALUATION:\nanonymized view")

	_, err = s.CompareEvaluations(context.Background(), "original", " ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSkillOperationsMaskContactDetails(t *testing.T) {
	const resume = "Jane Doe\njane.doe@example.com | 555-123-4567\nhttps://github.com/janedoe\nBuilt Kafka pipelines in Go"

	fake := &fakeAnalyzer{answer: `{"total_skills_count": 2}`}
	s := newService(t, fake)
	ctx := context.Background()

	extracted, err := s.ExtractSkills(ctx, resume)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_skills_count": 2}`, string(extracted.Skills))

	verified, err := s.VerifySkillClaims(ctx, resume, []string{"Kafka", " Go ", "Kafka"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kafka"}, verified.ClaimedSkills)

	_, err = s.CrossVerify(ctx, resume, "Go engineer with streaming experience")
	require.NoError(t, err)

	require.Len(t, fake.prompts, 3)
	for _, prompt := range fake.prompts {
		assert.NotContains(t, prompt, "jane.doe@")
		assert.NotContains(t, prompt, "555-123-4567")
		assert.Contains(t, prompt, "Built Kafka pipelines in Go")
	}
	assert.Contains(t, fake.prompts[1], "SKILLS TO VERIFY: Go, Kafka")
	assert.Contains(t, fake.prompts[2], "JOB DESCRIPTION:\nGo engineer with streaming experience")
}

func TestSkillOperationsRejectEmptyInput(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{}`}
	s := newService(t, fake)
	ctx := context.Background()

	_, err := s.ExtractSkills(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = s.VerifySkillClaims(ctx, "resume", []string{" ", ""})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = s.CrossVerify(ctx, "resume", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, fake.prompts)
}

func TestSkillOperationsWrapErrors(t *testing.T) {
	boom := errors.New("boom")
	s := newService(t, &fakeAnalyzer{err: boom})

	_, err := s.VerifySkillClaims(context.Background(), "resume", []string{"Go"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "skill verification")
}

func TestMatchMasksResume(t *testing.T) {
	fake := &fakeAnalyzer{answer: `{"overall_match_score": 81}`}
	s := newService(t, fake)

	res, err := s.Match(context.Background(),
		"Mr. John Smith\nHe is 45 years old.\njohn@example.com\nSkills: Go", "Platform engineer")
	require.NoError(t, err)
	assert.Equal(t, "full", res.TransparencyLevel)
	assert.Contains(t, res.MaskedAttributes, "gender_title")

	prompt := fake.prompts[0]
	assert.NotContains(t, prompt, "John Smith")
	assert.NotContains(t, prompt, "john@")
	assert.NotContains(t, prompt, "45 years old")
	assert.Contains(t, prompt, "Skills: Go")
}
