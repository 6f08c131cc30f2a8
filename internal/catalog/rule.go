package catalog

import (
	"time"

	"github.com/dlclark/regexp2"
)

// Rule is a compiled redaction rule. Rules are immutable once the catalog
// is built and safe for concurrent use.
type Rule struct {
	Category                string
	Domain                  Domain
	Pattern                 string
	Replacement             string
	ProfessionalReplacement string
	CaseSensitive           bool
	FirstOnly               bool
	Critical                bool
	Heuristic               string
	Recommendation          string

	re *regexp2.Regexp
}

func compileRule(rc RuleConfig, domain Domain, timeout time.Duration) (*Rule, error) {
	var opts regexp2.RegexOptions
	if !rc.CaseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(rc.Pattern, opts)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &Rule{
		Category:                rc.Category,
		Domain:                  domain,
		Pattern:                 rc.Pattern,
		Replacement:             rc.Replacement,
		ProfessionalReplacement: rc.ProfessionalReplacement,
		CaseSensitive:           rc.CaseSensitive,
		FirstOnly:               rc.FirstOnly,
		Critical:                rc.Critical,
		Heuristic:               rc.Heuristic,
		Recommendation:          rc.Recommendation,
		re:                      re,
	}, nil
}

// ReplacementFor returns the token substituted for a match. The
// professional variant is used only when the rule declares one.
func (r *Rule) ReplacementFor(keepProfessional bool) string {
	if keepProfessional && r.ProfessionalReplacement != "" {
		return r.ProfessionalReplacement
	}
	return r.Replacement
}

// MatchString reports whether the rule matches anywhere in text.
func (r *Rule) MatchString(text string) (bool, error) {
	return r.re.MatchString(text)
}

// FindAll returns the literal matched values in order of occurrence,
// honoring FirstOnly.
func (r *Rule) FindAll(text string) ([]string, error) {
	var values []string
	m, err := r.re.FindStringMatch(text)
	for m != nil {
		values = append(values, m.String())
		if r.FirstOnly {
			break
		}
		m, err = r.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}

// FindGroup returns the first capture group of the first match, or the
// whole match when the pattern has no groups.
func (r *Rule) FindGroup(text string) (string, bool, error) {
	m, err := r.re.FindStringMatch(text)
	if err != nil || m == nil {
		return "", false, err
	}
	if g := m.GroupByNumber(1); g != nil && len(g.Captures) > 0 {
		return g.String(), true, nil
	}
	return m.String(), true, nil
}

// Apply substitutes every match (or only the first for FirstOnly rules).
func (r *Rule) Apply(text string, keepProfessional bool) (string, error) {
	count := -1
	if r.FirstOnly {
		count = 1
	}
	return r.re.Replace(text, r.ReplacementFor(keepProfessional), -1, count)
}
