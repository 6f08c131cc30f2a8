package privacy

import (
	"github.com/VivekRai-gif/matchly/internal/catalog"
)

// NameMatcher locates the candidate name at the top of a resume. Only the
// first occurrence at the start of the text is ever replaced.
type NameMatcher interface {
	// FindName returns the literal span to replace.
	FindName(text string) (string, bool, error)
}

// ruleNameMatcher uses the catalog rule tagged as the name heuristic; its
// first capture group is the replaced span.
type ruleNameMatcher struct {
	rule *catalog.Rule
}

func (m ruleNameMatcher) FindName(text string) (string, bool, error) {
	return m.rule.FindGroup(text)
}

// NameMatcherFromRule adapts a catalog rule to NameMatcher.
func NameMatcherFromRule(rule *catalog.Rule) NameMatcher {
	return ruleNameMatcher{rule: rule}
}
