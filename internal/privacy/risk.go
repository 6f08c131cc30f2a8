package privacy

import (
	"github.com/VivekRai-gif/matchly/internal/catalog"
)

const (
	mediumRiskThreshold = 5
	highRiskThreshold   = 10
)

var (
	highRiskRecommendations = []string{
		"High amount of PII detected - consider anonymization before sharing",
		"Use privacy-preserving mode for all evaluations",
	}
	universalRecommendations = []string{
		"Store only hashed credentials, never raw PII",
		"Use anonymous candidate IDs for all internal processing",
	}
)

// ClassifyRisk maps a PII instance count to a risk level.
func ClassifyRisk(instances int) RiskLevel {
	switch {
	case instances > highRiskThreshold:
		return RiskHigh
	case instances > mediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Assessor grades texts by the PII they contain.
type Assessor struct {
	redactor *Redactor
}

// NewAssessor creates an assessor running the redactor's PII pass.
func NewAssessor(r *Redactor) *Assessor {
	return &Assessor{redactor: r}
}

// Assess runs the PII pass in keep-professional mode and reports on it.
func (a *Assessor) Assess(text string) Report {
	return a.Summarize(a.redactor.Redact(text, catalog.DomainPII, true))
}

// Summarize builds a report from an existing PII redaction result.
func (a *Assessor) Summarize(res RedactionResult) Report {
	total := res.InstanceCount()
	report := Report{
		PIIDetected:       len(res.FiredCategories) > 0,
		PIITypesFound:     append([]string{}, res.FiredCategories...),
		TotalPIIInstances: total,
		RiskLevel:         ClassifyRisk(total),
	}
	report.Recommendations = a.recommendations(res, report.RiskLevel)
	return report
}

func (a *Assessor) recommendations(res RedactionResult, level RiskLevel) []string {
	rules := a.redactor.Catalog().Rules(catalog.DomainPII)
	var recs []string

	for _, rule := range rules {
		if rule.Critical && rule.Recommendation != "" && res.Fired(rule.Category) {
			recs = append(recs, rule.Recommendation)
		}
	}
	if level == RiskHigh {
		recs = append(recs, highRiskRecommendations...)
	}
	for _, rule := range rules {
		if !rule.Critical && rule.Recommendation != "" && res.Fired(rule.Category) {
			recs = append(recs, rule.Recommendation)
		}
	}
	return append(recs, universalRecommendations...)
}
