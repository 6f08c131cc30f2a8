package ats

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

type fakeOracle struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeOracle) Analyze(_ context.Context, prompt string) (json.RawMessage, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.answer), nil
}

func newAnalyzer(t *testing.T, o oracle.Analyzer) *Analyzer {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	log := logger.NewNop()
	return New(privacy.NewRedactor(cat, log), o, log)
}

const shortResume = "Email: jane@example.com\nSkills: Go, Kafka\nExperience at Acme as engineer"

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		ok    bool
	}{
		{"resume.PDF", 100, true},
		{"resume.docx", 100, true},
		{"notes.txt", 100, true},
		{"resume.pages", 30, false},
		{"resume", 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckFormat(tt.name)
			assert.Equal(t, tt.ok, got.IsCompatible)
			assert.Equal(t, tt.score, got.Score)
		})
	}
}

func TestDetectSections(t *testing.T) {
	got := DetectSections(shortResume)

	assert.Equal(t, []string{"Contact", "Experience", "Skills"}, got.Detected)
	assert.Equal(t, []string{"Summary", "Education", "Certifications", "Projects"}, got.Missing)
	assert.Equal(t, 42.9, got.Score)
	assert.Equal(t, "Found 3/7 standard sections", got.Message)
}

func TestMatchKeywords(t *testing.T) {
	got := MatchKeywords("Kafka ENGINEER", "Go engineer with Kafka and Kubernetes")

	assert.Equal(t, []string{"engineer", "kafka"}, got.MatchedKeywords)
	assert.Equal(t, []string{"kubernetes"}, got.MissingKeywords)
	assert.Equal(t, 3, got.TotalJobKeywords)
	assert.Equal(t, 2, got.TotalMatched)
	assert.Equal(t, 66.7, got.MatchPercentage)
	assert.Equal(t, got.MatchPercentage, got.Score)
}

func TestMatchKeywordsEmptyJob(t *testing.T) {
	got := MatchKeywords("Kafka engineer", "the and for")
	assert.Zero(t, got.Score)
	assert.Empty(t, got.MatchedKeywords)
}

func TestCheckFormatting(t *testing.T) {
	t.Run("short table", func(t *testing.T) {
		got := CheckFormatting("Skills | Go | Kafka")
		assert.Equal(t, []string{"Resume seems too short"}, got.Issues)
		assert.Equal(t, []string{
			"May contain tables - consider using simple bullet points",
			"Very few line breaks - formatting may be complex",
		}, got.Warnings)
		assert.Equal(t, float64(60), got.Score)
		assert.Equal(t, "Formatting needs improvement", got.Message)
	})

	t.Run("clean", func(t *testing.T) {
		line := strings.Repeat("built reliable services in Go ", 4)
		text := strings.Repeat(line+"\n", 6)
		got := CheckFormatting(text)
		assert.Empty(t, got.Issues)
		assert.Empty(t, got.Warnings)
		assert.Equal(t, 120, got.WordCount)
		assert.Equal(t, float64(100), got.Score)
		assert.Equal(t, "Good formatting", got.Message)
	})

	t.Run("special characters and images", func(t *testing.T) {
		got := CheckFormatting(strings.Repeat("★", 11) + " see chart")
		assert.Contains(t, got.Issues, "Contains many special characters that may confuse ATS")
		assert.Contains(t, got.Issues, "May contain embedded images - ATS cannot read images")
	})
}

func TestAnalyzeRuleBased(t *testing.T) {
	a := newAnalyzer(t, nil)

	report, err := a.Analyze(context.Background(), shortResume, "Kafka engineer", "resume.pages")
	require.NoError(t, err)

	require.NotNil(t, report.FormatCheck)
	require.NotNil(t, report.KeywordAnalysis)
	assert.Equal(t, float64(100), report.KeywordAnalysis.Score)
	// sections 42.9, formatting 70, format 30, keywords 100
	assert.Equal(t, 60.7, report.ATSScore)
	assert.Equal(t, "Convert resume to PDF or DOCX format for better ATS compatibility", report.Suggestions[0])
	assert.Contains(t, report.Suggestions, "Add missing sections: Summary, Education, Certifications")
	assert.Equal(t, []string{"Resume seems too short"}, report.Issues)
	assert.NotContains(t, report.ResumePreview, "jane@")
	assert.Empty(t, report.AIAnalysis)
}

func TestAnalyzeWithoutOptionalInputs(t *testing.T) {
	a := newAnalyzer(t, nil)

	report, err := a.Analyze(context.Background(), shortResume, "", "")
	require.NoError(t, err)
	assert.Nil(t, report.FormatCheck)
	assert.Nil(t, report.KeywordAnalysis)
	// sections 42.9, formatting 70
	assert.Equal(t, 56.5, report.ATSScore)

	_, err = a.Analyze(context.Background(), " ", "", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestAnalyzeWithOracle(t *testing.T) {
	fake := &fakeOracle{answer: `{"ats_score": 88, "recommendations": ["Quantify impact"], "formatting_issues": []}`}
	a := newAnalyzer(t, fake)

	report, err := a.Analyze(context.Background(), shortResume, "Kafka engineer", "")
	require.NoError(t, err)
	assert.Equal(t, float64(88), report.ATSScore)
	assert.Equal(t, []string{"Quantify impact"}, report.Suggestions)
	assert.Empty(t, report.Issues)
	assert.JSONEq(t, fake.answer, string(report.AIAnalysis))

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "JOB DESCRIPTION:\nKafka engineer")
	assert.NotContains(t, fake.prompts[0], "jane@")
}

func TestAnalyzeOracleDefaultsScore(t *testing.T) {
	a := newAnalyzer(t, &fakeOracle{answer: `{"overall_assessment": "fine"}`})

	report, err := a.Analyze(context.Background(), shortResume, "", "")
	require.NoError(t, err)
	assert.Equal(t, float64(defaultOracleScore), report.ATSScore)
}

func TestAnalyzeFallsBackWhenOracleFails(t *testing.T) {
	a := newAnalyzer(t, &fakeOracle{err: errors.New("upstream down")})

	report, err := a.Analyze(context.Background(), shortResume, "", "")
	require.NoError(t, err)
	assert.Equal(t, "upstream down", report.AIError)
	assert.Equal(t, 56.5, report.ATSScore)
}
