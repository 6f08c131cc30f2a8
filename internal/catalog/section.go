package catalog

import (
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// Section is a resume section the field extractor knows how to find.
type Section struct {
	Name     string
	Headers  []string
	MaxChars int

	header *regexp2.Regexp
}

// headerPattern matches a line starting with one of the synonyms followed
// by ':', a spaced '-' or the end of the line. A hyphen glued to the word
// ("Education-focused") is prose, not a header. Longer synonyms are tried
// first so "technical skills" wins over "skills".
func headerPattern(headers []string) string {
	alts := make([]string, 0, len(headers))
	for _, h := range headers {
		words := strings.Fields(strings.ToLower(h))
		for i, w := range words {
			words[i] = regexp2.Escape(w)
		}
		if len(words) > 0 {
			alts = append(alts, strings.Join(words, `[ \t]+`))
		}
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return `^[ \t]*(?:` + strings.Join(alts, "|") + `)(?:[ \t]*:[ \t]*|[ \t]+-[ \t]*|[ \t]*(?=\r?$))`
}

func compileSection(sc SectionConfig) (*Section, error) {
	re, err := regexp2.Compile(headerPattern(sc.Headers), regexp2.IgnoreCase|regexp2.Multiline)
	if err != nil {
		return nil, err
	}
	return &Section{
		Name:     strings.ToLower(sc.Name),
		Headers:  sc.Headers,
		MaxChars: sc.MaxChars,
		header:   re,
	}, nil
}

// FindBody returns the text following the first header line of the
// section, starting right after the header's separator.
func (s *Section) FindBody(text string) (string, bool) {
	m, err := s.header.FindStringMatch(text)
	if err != nil || m == nil {
		return "", false
	}
	// regexp2 reports rune offsets.
	runes := []rune(text)
	return string(runes[m.Index+m.Length:]), true
}

// IsHeaderLine reports whether line opens this section.
func (s *Section) IsHeaderLine(line string) bool {
	ok, err := s.header.MatchString(line)
	return err == nil && ok
}
