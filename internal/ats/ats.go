// Package ats scores how well applicant tracking systems can read a resume.
// The section, keyword and formatting checks are deterministic; an optional
// text-analysis oracle adds a reasoned assessment on top.
package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

// Prompt input limits, in characters.
const (
	MaxResumeChars = 3000
	MaxJobChars    = 1500
	PreviewChars   = 500
)

// defaultOracleScore is used when the oracle's answer has no ats_score.
const defaultOracleScore = 75

// ErrEmptyInput is returned for a blank resume.
var ErrEmptyInput = errors.New("ats: empty input")

// Report is the complete compatibility analysis of one resume.
type Report struct {
	ATSScore        float64         `json:"ats_score"`
	FormatCheck     *FormatCheck    `json:"format_check,omitempty"`
	SectionCheck    SectionCheck    `json:"section_check"`
	FormattingCheck FormattingCheck `json:"formatting_check"`
	KeywordAnalysis *KeywordCheck   `json:"keyword_analysis"`
	ResumePreview   string          `json:"resume_preview"`
	Suggestions     []string        `json:"suggestions"`
	Issues          []string        `json:"issues"`
	AIAnalysis      json.RawMessage `json:"ai_analysis,omitempty"`
	AIError         string          `json:"ai_error,omitempty"`
}

// Analyzer runs the compatibility checks.
type Analyzer struct {
	redactor *privacy.Redactor
	oracle   oracle.Analyzer
	logger   *logger.Logger
}

// New creates an analyzer. A nil oracle limits it to the deterministic
// checks.
func New(r *privacy.Redactor, o oracle.Analyzer, log *logger.Logger) *Analyzer {
	return &Analyzer{redactor: r, oracle: o, logger: log.WithComponent("ats")}
}

// Analyze checks resumeText. jobDescription enables keyword matching and
// filename enables the format check; both may be empty.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription, filename string) (*Report, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyInput
	}

	// The preview and the oracle prompt never carry contact details.
	masked := a.redactor.Redact(resumeText, catalog.DomainPII, true).RedactedText

	report := &Report{
		SectionCheck:    DetectSections(resumeText),
		FormattingCheck: CheckFormatting(resumeText),
		ResumePreview:   truncate(masked, PreviewChars),
	}
	if filename != "" {
		fc := CheckFormat(filename)
		report.FormatCheck = &fc
	}
	if strings.TrimSpace(jobDescription) != "" {
		kc := MatchKeywords(resumeText, jobDescription)
		report.KeywordAnalysis = &kc
	}

	if a.oracle != nil {
		answer, err := a.oracle.Analyze(ctx, atsPrompt(truncate(masked, MaxResumeChars), truncate(jobDescription, MaxJobChars)))
		if err == nil {
			a.applyOracle(report, answer)
			return report, nil
		}
		a.logger.Warn("ATS oracle analysis failed, using rule-based score", zap.Error(err))
		report.AIError = err.Error()
	}

	report.ATSScore = ruleScore(report)
	report.Suggestions = suggestions(report)
	report.Issues = report.FormattingCheck.Issues
	return report, nil
}

type oracleVerdict struct {
	ATSScore         *float64 `json:"ats_score"`
	Recommendations  []string `json:"recommendations"`
	FormattingIssues []string `json:"formatting_issues"`
}

func (a *Analyzer) applyOracle(report *Report, answer json.RawMessage) {
	var v oracleVerdict
	if err := json.Unmarshal(answer, &v); err != nil {
		a.logger.Debug("ATS oracle answer has unexpected shape", zap.Error(err))
	}
	score := float64(defaultOracleScore)
	if v.ATSScore != nil {
		score = *v.ATSScore
	}
	report.AIAnalysis = answer
	report.ATSScore = round1(score)
	report.Suggestions = orEmpty(v.Recommendations)
	report.Issues = orEmpty(v.FormattingIssues)
}

// ruleScore averages the scores of the checks that ran.
func ruleScore(r *Report) float64 {
	scores := []float64{r.SectionCheck.Score, r.FormattingCheck.Score}
	if r.FormatCheck != nil {
		scores = append(scores, r.FormatCheck.Score)
	}
	if r.KeywordAnalysis != nil {
		scores = append(scores, r.KeywordAnalysis.Score)
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return round1(sum / float64(len(scores)))
}

func suggestions(r *Report) []string {
	var out []string
	if r.FormatCheck != nil && r.FormatCheck.Score < 100 {
		out = append(out, "Convert resume to PDF or DOCX format for better ATS compatibility")
	}
	if missing := r.SectionCheck.Missing; len(missing) > 0 {
		out = append(out, "Add missing sections: "+strings.Join(head(missing, 3), ", "))
	}
	out = append(out, r.FormattingCheck.Issues...)
	if kc := r.KeywordAnalysis; kc != nil && kc.Score < 60 {
		out = append(out, "Incorporate more keywords from the job description")
		if len(kc.MissingKeywords) > 0 {
			out = append(out, "Consider adding keywords: "+strings.Join(head(kc.MissingKeywords, 5), ", "))
		}
	}
	if len(out) == 0 {
		out = append(out, "Your resume looks great! It's ATS-friendly.")
	}
	return out
}

func atsPrompt(resume, jobDescription string) string {
	var b strings.Builder
	if strings.TrimSpace(jobDescription) != "" {
		b.WriteString("Analyze this resume for ATS (Applicant Tracking System) compatibility and job matching:\n\n")
	} else {
		b.WriteString("Analyze this resume for ATS (Applicant Tracking System) compatibility:\n\n")
	}
	fmt.Fprintf(&b, "RESUME:\n%s\n\n", resume)
	if strings.TrimSpace(jobDescription) != "" {
		fmt.Fprintf(&b, "JOB DESCRIPTION:\n%s\n\n", jobDescription)
	}
	b.WriteString(`Provide a detailed analysis in the following JSON format:
{
    "ats_score": <number 0-100>,
    "match_score": <number 0-100, only with a job description>,
    "strengths": [<list of 3-5 strengths with specific examples>],
    "weaknesses": [<list of 3-5 weaknesses with specific examples>],
    "keyword_analysis": {
        "matched_keywords": [<list of important matched keywords>],
        "missing_keywords": [<list of important missing keywords>]
    },
    "formatting_issues": [<list of specific formatting problems>],
    "recommendations": [<list of 5-7 actionable recommendations>],
    "sections_found": [<list of detected resume sections>],
    "sections_missing": [<list of recommended missing sections>],
    "overall_assessment": "<detailed paragraph explaining the analysis>",
    "reasoning": {
        "ats_compatibility": "<why this ATS score>",
        "job_match": "<why this match score>",
        "key_concerns": "<main issues to address>"
    }
}

Be specific and provide actionable insights.`)
	return b.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
