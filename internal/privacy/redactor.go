// Package privacy masks PII and demographic signals in free text and grades
// how much PII a text carries.
package privacy

import (
	"strings"
	"unicode/utf8"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"go.uber.org/zap"
)

// Redactor applies a domain's rules to text, one after another.
type Redactor struct {
	catalog *catalog.Catalog
	names   NameMatcher
	logger  *logger.Logger
}

// Option customizes a Redactor.
type Option func(*Redactor)

// WithNameMatcher replaces the candidate name heuristic.
func WithNameMatcher(m NameMatcher) Option {
	return func(r *Redactor) { r.names = m }
}

// NewRedactor creates a redactor over a compiled catalog.
func NewRedactor(cat *catalog.Catalog, log *logger.Logger, opts ...Option) *Redactor {
	r := &Redactor{
		catalog: cat,
		logger:  log.WithComponent("redactor"),
	}
	if rule, ok := cat.Heuristic(catalog.DomainDemographic, catalog.HeuristicName); ok {
		r.names = NameMatcherFromRule(rule)
	}
	for _, opt := range opts {
		opt(r)
	}

	log.Info("Redactor initialized",
		zap.Int("pii_rules", len(cat.Rules(catalog.DomainPII))),
		zap.Int("demographic_rules", len(cat.Rules(catalog.DomainDemographic))),
	)
	return r
}

// Catalog returns the catalog the redactor runs.
func (r *Redactor) Catalog() *catalog.Catalog {
	return r.catalog
}

// Redact folds the domain's rules over text. Each rule sees the output of
// the previous one. Matched literal values are captured for the PII domain
// only. keepProfessional selects a rule's professional replacement when it
// has one.
func (r *Redactor) Redact(text string, domain catalog.Domain, keepProfessional bool) RedactionResult {
	result := RedactionResult{
		OriginalText:    text,
		FiredCategories: []string{},
		OriginalLength:  utf8.RuneCountInString(text),
	}
	if domain == catalog.DomainPII {
		result.MatchedValues = make(map[string][]string)
	}

	current := text
	for _, rule := range r.catalog.Rules(domain) {
		next, values, fired := r.applyRule(rule, current, keepProfessional)
		if !fired {
			continue
		}
		result.FiredCategories = append(result.FiredCategories, rule.Category)
		if result.MatchedValues != nil {
			result.MatchedValues[rule.Category] = values
		}
		current = next

		r.logger.Debug("Rule fired",
			zap.String("domain", string(domain)),
			zap.String("category", rule.Category),
			zap.Int("matches", len(values)),
		)
	}

	result.RedactedText = current
	result.RedactedLength = utf8.RuneCountInString(current)
	return result
}

func (r *Redactor) applyRule(rule *catalog.Rule, text string, keepProfessional bool) (string, []string, bool) {
	if rule.Heuristic == catalog.HeuristicName {
		return r.applyName(rule, text)
	}

	values, err := rule.FindAll(text)
	if err != nil {
		r.logRuleError(rule, err)
		return text, nil, false
	}
	if len(values) == 0 {
		return text, nil, false
	}

	out, err := rule.Apply(text, keepProfessional)
	if err != nil {
		r.logRuleError(rule, err)
		return text, nil, false
	}
	return out, values, true
}

func (r *Redactor) applyName(rule *catalog.Rule, text string) (string, []string, bool) {
	if r.names == nil {
		return text, nil, false
	}
	name, ok, err := r.names.FindName(text)
	if err != nil {
		r.logRuleError(rule, err)
		return text, nil, false
	}
	if !ok || name == "" {
		return text, nil, false
	}
	return strings.Replace(text, name, rule.Replacement, 1), []string{name}, true
}

func (r *Redactor) logRuleError(rule *catalog.Rule, err error) {
	r.logger.Error("Rule skipped",
		zap.String("domain", string(rule.Domain)),
		zap.String("category", rule.Category),
		zap.Error(err),
	)
}
