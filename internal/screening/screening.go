// Package screening runs merit-only candidate evaluations and bias checks
// through a text-analysis oracle.
package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

// Prompt input limits, in characters.
const (
	MaxResumeChars     = 4000
	MaxJobChars        = 2000
	MaxEvaluationChars = 3000
	MaxContextChars    = 2000
	MaxCompareChars    = 2000
	MaxMatchJobChars   = 2500
)

// ErrEmptyInput is returned when a required text is blank.
var ErrEmptyInput = errors.New("screening: empty input")

// Evaluation is the outcome of a fair evaluation.
type Evaluation struct {
	FairEvaluation   json.RawMessage `json:"fair_evaluation"`
	MaskedAttributes []string        `json:"masked_attributes"`
	EvaluatedAt      time.Time       `json:"evaluated_at"`
}

// BiasAnalysis is the outcome of a bias check.
type BiasAnalysis struct {
	BiasAnalysis json.RawMessage `json:"bias_analysis"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
}

// Comparison contrasts an evaluation made with personal information against
// one made without it.
type Comparison struct {
	Comparison json.RawMessage `json:"comparison"`
	ComparedAt time.Time       `json:"compared_at"`
}

// Service evaluates candidates on masked text.
type Service struct {
	redactor *privacy.Redactor
	analyzer oracle.Analyzer
	logger   *logger.Logger
	now      func() time.Time
}

// New creates a screening service.
func New(r *privacy.Redactor, a oracle.Analyzer, log *logger.Logger) *Service {
	return &Service{
		redactor: r,
		analyzer: a,
		logger:   log.WithComponent("screening"),
		now:      time.Now,
	}
}

// FairEvaluation masks demographic signals in the resume and asks the oracle
// for a merit-only evaluation against the job description.
func (s *Service) FairEvaluation(ctx context.Context, resumeText, jobDescription string) (*Evaluation, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyInput
	}

	masked := s.redactor.Redact(resumeText, catalog.DomainDemographic, false)
	prompt := fairEvaluationPrompt(truncate(masked.RedactedText, MaxResumeChars), truncate(jobDescription, MaxJobChars))

	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Fair evaluation failed", zap.Error(err))
		return nil, fmt.Errorf("fair evaluation: %w", err)
	}

	s.logger.Info("Fair evaluation completed",
		zap.Strings("masked_attributes", masked.FiredCategories))

	return &Evaluation{
		FairEvaluation:   answer,
		MaskedAttributes: masked.FiredCategories,
		EvaluatedAt:      s.now().UTC(),
	}, nil
}

// DetectBias asks the oracle whether an evaluation relies on non-merit
// signals. resumeText is optional context.
func (s *Service) DetectBias(ctx context.Context, evaluationText, resumeText string) (*BiasAnalysis, error) {
	if strings.TrimSpace(evaluationText) == "" {
		return nil, ErrEmptyInput
	}

	prompt := biasPrompt(truncate(evaluationText, MaxEvaluationChars), truncate(resumeText, MaxContextChars))

	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Bias detection failed", zap.Error(err))
		return nil, fmt.Errorf("bias detection: %w", err)
	}

	return &BiasAnalysis{BiasAnalysis: answer, AnalyzedAt: s.now().UTC()}, nil
}

// CompareEvaluations asks the oracle whether removing personal information
// changed how a candidate was judged.
func (s *Service) CompareEvaluations(ctx context.Context, originalEval, anonymizedEval string) (*Comparison, error) {
	if strings.TrimSpace(originalEval) == "" || strings.TrimSpace(anonymizedEval) == "" {
		return nil, ErrEmptyInput
	}

	prompt := comparisonPrompt(truncate(originalEval, MaxCompareChars), truncate(anonymizedEval, MaxCompareChars))
	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Evaluation comparison failed", zap.Error(err))
		return nil, fmt.Errorf("evaluation comparison: %w", err)
	}

	return &Comparison{Comparison: answer, ComparedAt: s.now().UTC()}, nil
}

// truncate keeps at most n characters of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
