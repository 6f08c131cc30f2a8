// Package extract pulls caller-selected resume sections out of free text.
package extract

import (
	"strings"
	"unicode"

	"github.com/VivekRai-gif/matchly/internal/catalog"
)

// MinimalExtraction holds only the sections a caller asked for.
type MinimalExtraction struct {
	Fields          map[string]string `json:"minimal_data"`
	FieldsExtracted []string          `json:"fields_extracted"`
}

// Extractor finds section bodies by their headers.
type Extractor struct {
	catalog *catalog.Catalog
}

// New creates an extractor over the catalog's section definitions.
func New(cat *catalog.Catalog) *Extractor {
	return &Extractor{catalog: cat}
}

// Extract returns the requested sections found in text. Unknown names are
// ignored and duplicates collapse; absent sections are simply left out.
func (e *Extractor) Extract(text string, fields []string) MinimalExtraction {
	out := MinimalExtraction{
		Fields:          make(map[string]string),
		FieldsExtracted: []string{},
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f))
		if seen[name] {
			continue
		}
		seen[name] = true

		section, ok := e.catalog.Section(name)
		if !ok {
			continue
		}
		body, ok := e.sectionBody(text, section)
		if !ok {
			continue
		}
		out.Fields[section.Name] = body
		out.FieldsExtracted = append(out.FieldsExtracted, section.Name)
	}
	return out
}

// sectionBody runs from the header to the next section header, a
// capitalized line after a blank line, or the end of text.
func (e *Extractor) sectionBody(text string, section *catalog.Section) (string, bool) {
	rest, ok := section.FindBody(text)
	if !ok {
		return "", false
	}

	lines := strings.Split(rest, "\n")
	kept := make([]string, 0, len(lines))
	prevBlank, hasContent := false, false
	for i, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if i > 0 {
			if e.isHeaderLine(line) || (hasContent && prevBlank && startsCapitalized(line)) {
				break
			}
			prevBlank = blank
		}
		kept = append(kept, line)
		hasContent = hasContent || !blank
	}

	body := strings.TrimSpace(strings.Join(kept, "\n"))
	if body == "" {
		return "", false
	}
	return truncate(body, section.MaxChars), true
}

func (e *Extractor) isHeaderLine(line string) bool {
	for _, s := range e.catalog.Sections() {
		if s.IsHeaderLine(line) {
			return true
		}
	}
	return false
}

func startsCapitalized(line string) bool {
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		return unicode.IsUpper(r)
	}
	return false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRightFunc(string(runes[:limit]), unicode.IsSpace)
}
