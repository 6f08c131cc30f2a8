package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/catalog"
)

// ErrInvalidMatch is returned when a match result cannot be read.
var ErrInvalidMatch = errors.New("screening: invalid match result")

// TransparentMatch is an explained candidate to job match.
type TransparentMatch struct {
	Match             json.RawMessage `json:"transparent_match"`
	MatchedAt         time.Time       `json:"matched_at"`
	TransparencyLevel string          `json:"transparency_level"`
	MaskedAttributes  []string        `json:"masked_attributes"`
}

// Match asks the oracle for a fully explained match. Contact details and
// demographic signals are masked first.
func (s *Service) Match(ctx context.Context, resumeText, jobDescription string) (*TransparentMatch, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyInput
	}

	masked := s.redactor.Redact(s.maskContact(resumeText), catalog.DomainDemographic, false)
	prompt := matchPrompt(truncate(masked.RedactedText, MaxResumeChars), truncate(jobDescription, MaxMatchJobChars))

	answer, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.logger.Warn("Transparent match failed", zap.Error(err))
		return nil, fmt.Errorf("transparent match: %w", err)
	}

	return &TransparentMatch{
		Match:             answer,
		MatchedAt:         s.now().UTC(),
		TransparencyLevel: "full",
		MaskedAttributes:  masked.FiredCategories,
	}, nil
}

// ComponentScore is one weighted part of a match score.
type ComponentScore struct {
	Component            string  `json:"component"`
	Score                float64 `json:"score"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
	Impact               string  `json:"impact"`
}

// ScoreBreakdown explains how a match's overall score is composed.
type ScoreBreakdown struct {
	OverallScore      float64          `json:"overall_score"`
	Components        []ComponentScore `json:"components"`
	CalculationMethod string           `json:"calculation_method"`
}

type scored struct {
	Score float64 `json:"score"`
}

type matchScores struct {
	SkillAlignment      scored `json:"skill_alignment"`
	ExperienceAlignment scored `json:"experience_alignment"`
	EducationAlignment  scored `json:"education_alignment"`
	ProjectAlignment    scored `json:"project_alignment"`
	CulturalFit         scored `json:"cultural_fit_indicators"`
	GrowthPotential     scored `json:"growth_potential"`
}

// BreakDownScore recomputes a match's score as a weighted average of its
// component scores. Missing components count as zero.
func BreakDownScore(match json.RawMessage) (*ScoreBreakdown, error) {
	var m matchScores
	if err := json.Unmarshal(match, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMatch, err)
	}

	// weights are percentages and sum to 100
	parts := []struct {
		name   string
		score  float64
		weight float64
	}{
		{"Skill Alignment", m.SkillAlignment.Score, 35},
		{"Experience Alignment", m.ExperienceAlignment.Score, 25},
		{"Education Alignment", m.EducationAlignment.Score, 10},
		{"Project Alignment", m.ProjectAlignment.Score, 15},
		{"Cultural Fit", m.CulturalFit.Score, 10},
		{"Growth Potential", m.GrowthPotential.Score, 5},
	}

	out := &ScoreBreakdown{
		Components:        make([]ComponentScore, 0, len(parts)),
		CalculationMethod: "weighted_average",
	}
	var total float64
	for _, p := range parts {
		contribution := p.score * p.weight / 100
		total += contribution
		out.Components = append(out.Components, ComponentScore{
			Component:            p.name,
			Score:                p.score,
			Weight:               p.weight,
			WeightedContribution: contribution,
			Impact:               impactLevel(p.score),
		})
	}
	out.OverallScore = round2(total)
	return out, nil
}

func impactLevel(score float64) string {
	switch {
	case score >= 80:
		return "Strong Positive Impact"
	case score >= 60:
		return "Positive Impact"
	case score >= 40:
		return "Moderate Impact"
	case score >= 20:
		return "Low Impact"
	default:
		return "Negative Impact"
	}
}

// ExplanationReport is a human readable account of a match.
type ExplanationReport struct {
	Narrative   string    `json:"narrative"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generated_at"`
}

type matchNarrative struct {
	OverallMatchScore     *float64 `json:"overall_match_score"`
	Recommendation        string   `json:"recommendation"`
	TransparencyStatement string   `json:"transparency_statement"`
	Strengths             []struct {
		Strength    string `json:"strength"`
		Evidence    string `json:"evidence"`
		ValueToRole string `json:"value_to_role"`
	} `json:"strengths"`
	Concerns []struct {
		Concern    string `json:"concern"`
		Severity   string `json:"severity"`
		Mitigation string `json:"mitigation"`
	} `json:"concerns"`
	NextSteps struct {
		Recommendation string `json:"recommendation"`
		Reasoning      string `json:"reasoning"`
	} `json:"next_steps"`
	FairnessCheck struct {
		BiasFree    *bool  `json:"bias_free"`
		MeritBased  *bool  `json:"merit_based"`
		Explanation string `json:"explanation"`
	} `json:"fairness_check"`
}

// maxNarrativeItems caps the strengths and concerns listed in a report.
const maxNarrativeItems = 5

// ExplainMatch renders a match result as a plain text report.
func ExplainMatch(match json.RawMessage, now time.Time) (*ExplanationReport, error) {
	var m matchNarrative
	if err := json.Unmarshal(match, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMatch, err)
	}

	var b strings.Builder
	b.WriteString("CANDIDATE MATCHING REPORT\n")
	b.WriteString("========================\n\n")

	score := "N/A"
	if m.OverallMatchScore != nil {
		score = strconv.FormatFloat(*m.OverallMatchScore, 'f', -1, 64)
	}
	fmt.Fprintf(&b, "Overall Match Score: %s/100\n", score)
	fmt.Fprintf(&b, "Recommendation: %s\n\n", titleLabel(m.Recommendation))
	fmt.Fprintf(&b, "TRANSPARENCY STATEMENT:\n%s\n\n", orDefault(m.TransparencyStatement, "No statement provided"))

	b.WriteString("KEY STRENGTHS:\n")
	for i, s := range m.Strengths {
		if i == maxNarrativeItems {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s\n   Evidence: %s\n   Value: %s\n",
			i+1, orDefault(s.Strength, "N/A"), orDefault(s.Evidence, "N/A"), orDefault(s.ValueToRole, "N/A"))
	}

	b.WriteString("\nAREAS OF CONCERN:")
	if len(m.Concerns) == 0 {
		b.WriteString("\nNo major concerns identified.")
	}
	for i, c := range m.Concerns {
		if i == maxNarrativeItems {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s\n   Severity: %s\n   Mitigation: %s\n",
			i+1, orDefault(c.Concern, "N/A"), orDefault(c.Severity, "N/A"), orDefault(c.Mitigation, "N/A"))
	}

	b.WriteString("\n\nNEXT STEPS:")
	fmt.Fprintf(&b, "\nRecommendation: %s", titleLabel(m.NextSteps.Recommendation))
	fmt.Fprintf(&b, "\nReasoning: %s", orDefault(m.NextSteps.Reasoning, "N/A"))

	b.WriteString("\n\nFAIRNESS VERIFICATION:")
	fmt.Fprintf(&b, "\nBias-Free: %s", boolLabel(m.FairnessCheck.BiasFree))
	fmt.Fprintf(&b, "\nMerit-Based: %s", boolLabel(m.FairnessCheck.MeritBased))
	fmt.Fprintf(&b, "\nExplanation: %s", orDefault(m.FairnessCheck.Explanation, "N/A"))

	return &ExplanationReport{
		Narrative:   b.String(),
		Format:      "human_readable",
		GeneratedAt: now.UTC(),
	}, nil
}

// RankedCandidate is one entry of a CandidateRanking. CandidateID is the
// 1-based position of the match in the input.
type RankedCandidate struct {
	CandidateID    int      `json:"candidate_id"`
	OverallScore   float64  `json:"overall_score"`
	Recommendation string   `json:"recommendation"`
	KeyStrengths   []string `json:"key_strengths"`
	KeyConcerns    []string `json:"key_concerns"`
}

// CandidateRanking orders several matches for the same job by score.
type CandidateRanking struct {
	TotalCandidates  int               `json:"total_candidates"`
	RankedCandidates []RankedCandidate `json:"ranked_candidates"`
	TopCandidate     *RankedCandidate  `json:"top_candidate"`
	ComparisonMethod string            `json:"comparison_method"`
	TransparencyNote string            `json:"transparency_note"`
}

// maxRankingItems caps the strengths and concerns kept per candidate.
const maxRankingItems = 3

// RankCandidates sorts match results by overall score, highest first.
// Equal scores keep their input order.
func RankCandidates(matches []json.RawMessage) (*CandidateRanking, error) {
	ranked := make([]RankedCandidate, 0, len(matches))
	for i, raw := range matches {
		var m matchNarrative
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: candidate %d: %v", ErrInvalidMatch, i+1, err)
		}
		c := RankedCandidate{
			CandidateID:    i + 1,
			Recommendation: orDefault(m.Recommendation, "unknown"),
			KeyStrengths:   []string{},
			KeyConcerns:    []string{},
		}
		if m.OverallMatchScore != nil {
			c.OverallScore = *m.OverallMatchScore
		}
		for j, st := range m.Strengths {
			if j == maxRankingItems {
				break
			}
			c.KeyStrengths = append(c.KeyStrengths, st.Strength)
		}
		for j, cn := range m.Concerns {
			if j == maxRankingItems {
				break
			}
			c.KeyConcerns = append(c.KeyConcerns, cn.Concern)
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].OverallScore > ranked[j].OverallScore })

	out := &CandidateRanking{
		TotalCandidates:  len(ranked),
		RankedCandidates: ranked,
		ComparisonMethod: "score_based_ranking",
		TransparencyNote: "All candidates evaluated with same criteria",
	}
	if len(ranked) > 0 {
		top := ranked[0]
		out.TopCandidate = &top
	}
	return out, nil
}

// titleLabel turns "strong_match" into "Strong Match".
func titleLabel(s string) string {
	if s == "" {
		return "N/A"
	}
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func boolLabel(b *bool) string {
	if b == nil {
		return "Unknown"
	}
	if *b {
		return "Yes"
	}
	return "No"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
