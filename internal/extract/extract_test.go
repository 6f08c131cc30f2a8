package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VivekRai-gif/matchly/internal/catalog"
)

const resume = `Jane Doe
jane@example.com

Summary: Backend engineer focused on data pipelines.

Technical Skills:
Go, Python, PostgreSQL
Kubernetes

Experience
Acme Corp - Senior Engineer (2019-2024)
Built the ingestion platform.

Education
BSc Computer Science, State University
`

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return New(cat)
}

func TestExtract(t *testing.T) {
	e := newExtractor(t)

	got := e.Extract(resume, []string{"Skills", "experience", "education", "skills", "hobbies", "projects"})

	assert.Equal(t, []string{"skills", "experience", "education"}, got.FieldsExtracted)
	assert.Equal(t, "Go, Python, PostgreSQL\nKubernetes", got.Fields["skills"])
	assert.Equal(t, "Acme Corp - Senior Engineer (2019-2024)\nBuilt the ingestion platform.", got.Fields["experience"])
	assert.Equal(t, "BSc Computer Science, State University", got.Fields["education"])
	assert.NotContains(t, got.Fields, "projects")
}

func TestExtractSameLineHeader(t *testing.T) {
	e := newExtractor(t)

	got := e.Extract(resume, []string{"summary"})
	assert.Equal(t, "Backend engineer focused on data pipelines.", got.Fields["summary"])
}

func TestExtractStopsAtCapitalizedParagraph(t *testing.T) {
	e := newExtractor(t)

	text := "Projects:\nmatchly - resume redaction\n\nReferences available on request"
	got := e.Extract(text, []string{"projects"})
	assert.Equal(t, "matchly - resume redaction", got.Fields["projects"])
}

func TestExtractEmptyBodyIsAbsent(t *testing.T) {
	e := newExtractor(t)

	got := e.Extract("Skills:\n\nEducation\nBSc", []string{"skills"})
	assert.Empty(t, got.FieldsExtracted)
	assert.Empty(t, got.Fields)
}

func TestExtractExperienceBudget(t *testing.T) {
	e := newExtractor(t)

	text := "Experience:\n" + strings.Repeat("shipped services ", 100)
	got := e.Extract(text, []string{"experience"})
	assert.LessOrEqual(t, utf8.RuneCountInString(got.Fields["experience"]), 500)
	assert.True(t, strings.HasPrefix(got.Fields["experience"], "shipped services"))
}

func TestExtractNoFields(t *testing.T) {
	e := newExtractor(t)

	got := e.Extract(resume, nil)
	assert.Empty(t, got.FieldsExtracted)
	assert.NotNil(t, got.Fields)
}

func TestExtractIgnoresHyphenatedProse(t *testing.T) {
	e := newExtractor(t)

	text := "Experience:\nAcme Corp, platform lead\nEducation-focused startup advisor since 2020\n"
	got := e.Extract(text, []string{"experience", "education"})

	assert.Equal(t, []string{"experience"}, got.FieldsExtracted)
	assert.Equal(t, "Acme Corp, platform lead\nEducation-focused startup advisor since 2020", got.Fields["experience"])
	assert.NotContains(t, got.Fields, "education")
}
