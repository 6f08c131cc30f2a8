package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/credential"
)

// SkillExtraction is the oracle's categorized skill inventory.
type SkillExtraction struct {
	Skills      json.RawMessage `json:"skills"`
	ExtractedAt time.Time       `json:"extracted_at"`
}

// SkillVerification rates the evidence behind claimed skills.
type SkillVerification struct {
	Verification  json.RawMessage `json:"verification"`
	ClaimedSkills []string        `json:"claimed_skills"`
	VerifiedAt    time.Time       `json:"verified_at"`
}

// SkillAlignment compares a resume's skills with a job's requirements.
type SkillAlignment struct {
	Alignment  json.RawMessage `json:"alignment"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}

// maskContact strips contact PII before resume text leaves the process.
// Professional link domains are kept since they are skill evidence.
func (s *Service) maskContact(resumeText string) string {
	return s.redactor.Redact(resumeText, catalog.DomainPII, true).RedactedText
}

// ExtractSkills asks the oracle for the skills evidenced in a resume.
func (s *Service) ExtractSkills(ctx context.Context, resumeText string) (*SkillExtraction, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyInput
	}

	prompt := skillExtractionPrompt(truncate(s.maskContact(resumeText), MaxResumeChars))
	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Skill extraction failed", zap.Error(err))
		return nil, fmt.Errorf("skill extraction: %w", err)
	}

	return &SkillExtraction{Skills: answer, ExtractedAt: s.now().UTC()}, nil
}

// VerifySkillClaims asks the oracle whether each claimed skill is backed by
// projects, experience or certifications in the resume.
func (s *Service) VerifySkillClaims(ctx context.Context, resumeText string, claimed []string) (*SkillVerification, error) {
	skills := credential.NormalizeSkills(claimed)
	if strings.TrimSpace(resumeText) == "" || len(skills) == 0 {
		return nil, ErrEmptyInput
	}

	prompt := skillVerificationPrompt(truncate(s.maskContact(resumeText), MaxResumeChars), skills)
	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Skill verification failed", zap.Error(err))
		return nil, fmt.Errorf("skill verification: %w", err)
	}

	s.logger.Info("Skill claims verified", zap.Int("skill_count", len(skills)))
	return &SkillVerification{Verification: answer, ClaimedSkills: skills, VerifiedAt: s.now().UTC()}, nil
}

// CrossVerify asks the oracle how the resume's skills line up with a job.
func (s *Service) CrossVerify(ctx context.Context, resumeText, jobDescription string) (*SkillAlignment, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyInput
	}

	prompt := skillAlignmentPrompt(truncate(s.maskContact(resumeText), MaxResumeChars), truncate(jobDescription, MaxJobChars))
	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Skill cross verification failed", zap.Error(err))
		return nil, fmt.Errorf("skill cross verification: %w", err)
	}

	return &SkillAlignment{Alignment: answer, AnalyzedAt: s.now().UTC()}, nil
}
