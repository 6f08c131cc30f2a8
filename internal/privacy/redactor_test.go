package privacy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
)

const sampleResume = "Jane Doe\n" +
	"Ms. Jane Doe, female, 29 years old, born 1994\n" +
	"Email: jane.doe@example.com | Phone: (555) 123-4567\n" +
	"SSN: 123-45-6789\n" +
	"123 Main St, Springfield, IL 62704\n" +
	"https://linkedin.com/in/janedoe https://github.com/janedoe/repo https://janedoe.dev/about\n" +
	"She led a team; her photo is attached."

func newTestRedactor(t *testing.T, opts ...Option) *Redactor {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return NewRedactor(cat, logger.NewNop(), opts...)
}

func TestRedactPII(t *testing.T) {
	r := newTestRedactor(t)

	tests := []struct {
		name         string
		text         string
		professional bool
		want         string
		fired        []string
	}{
		{
			name:         "professional email keeps domain",
			text:         "Contact jane.doe@example.com or 555-123-4567",
			professional: true,
			want:         "Contact [EMAIL]@example.com or [PHONE_REDACTED]",
			fired:        []string{"email", "phone"},
		},
		{
			name:  "strict email",
			text:  "jane.doe@example.com",
			want:  "[EMAIL_REDACTED]",
			fired: []string{"email"},
		},
		{
			name:  "ssn is not a phone number",
			text:  "SSN 123-45-6789",
			want:  "SSN [SSN_REDACTED]",
			fired: []string{"ssn"},
		},
		{
			name:         "profile links",
			text:         "https://www.linkedin.com/in/jane-doe/ and github.com/janedoe",
			professional: true,
			want:         "linkedin.com/in/[PROFILE] and github.com/[PROFILE]",
			fired:        []string{"linkedin", "github"},
		},
		{
			name:  "postal address",
			text:  "Lives at 42 Elm Road, Portland, OR 97201.",
			want:  "Lives at [ADDRESS_REDACTED].",
			fired: []string{"address"},
		},
		{
			name:  "no pii",
			text:  "Go, Kubernetes, PostgreSQL",
			want:  "Go, Kubernetes, PostgreSQL",
			fired: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Redact(tt.text, catalog.DomainPII, tt.professional)
			assert.Equal(t, tt.want, res.RedactedText)
			assert.Equal(t, tt.fired, res.FiredCategories)
			assert.Equal(t, tt.text, res.OriginalText)
		})
	}
}

func TestRedactCleanupStreetAddress(t *testing.T) {
	r := newTestRedactor(t)

	tests := []struct {
		text  string
		want  string
		fired []string
	}{
		{"Lives at 42 elm road", "Lives at [ADDRESS]", []string{"street_address"}},
		{"12 FRONT STREET, Leeds", "[ADDRESS], Leeds", []string{"street_address"}},
		{"123 Main St", "[ADDRESS]", []string{"street_address"}},
		{"5 years at best companies", "5 years at best companies", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := r.Redact(tt.text, catalog.DomainCleanup, false)
			assert.Equal(t, tt.want, res.RedactedText)
			assert.Equal(t, tt.fired, res.FiredCategories)
		})
	}
}

func TestRedactCapturesMatchedValues(t *testing.T) {
	r := newTestRedactor(t)

	res := r.Redact("a@one.io, b@two.io and (555) 123-4567", catalog.DomainPII, false)
	assert.Equal(t, []string{"a@one.io", "b@two.io"}, res.MatchedValues["email"])
	assert.Equal(t, []string{"(555) 123-4567"}, res.MatchedValues["phone"])
	assert.Equal(t, 3, res.InstanceCount())

	demo := r.Redact("She is 30 years old", catalog.DomainDemographic, false)
	assert.Nil(t, demo.MatchedValues)
}

func TestRedactIsIdempotent(t *testing.T) {
	r := newTestRedactor(t)

	for _, domain := range []catalog.Domain{catalog.DomainPII, catalog.DomainDemographic} {
		for _, professional := range []bool{false, true} {
			first := r.Redact(sampleResume, domain, professional)
			second := r.Redact(first.RedactedText, domain, professional)
			assert.Equal(t, first.RedactedText, second.RedactedText, "domain %s professional %v", domain, professional)
			assert.Empty(t, second.FiredCategories)
		}
	}
}

func TestRedactSampleResume(t *testing.T) {
	r := newTestRedactor(t)

	res := r.Redact(sampleResume, catalog.DomainPII, false)
	assert.Equal(t, []string{"email", "phone", "ssn", "address", "linkedin", "github", "url"}, res.FiredCategories)
	assert.NotContains(t, res.RedactedText, "jane.doe@example.com")
	assert.NotContains(t, res.RedactedText, "123-45-6789")
	assert.NotContains(t, res.RedactedText, "janedoe")

	demo := r.Redact(sampleResume, catalog.DomainDemographic, false)
	assert.Equal(t, []string{
		"gender_title", "gender_pronoun", "gender_explicit", "age", "age_years", "candidate_name", "photo_reference",
	}, demo.FiredCategories)
	assert.Contains(t, demo.RedactedText, "[CANDIDATE_NAME]\n[TITLE] Jane Doe, [GENDER], [AGE], [AGE_INFO]")
	assert.Contains(t, demo.RedactedText, "[PRONOUN] led a team; [PRONOUN] [PHOTO_REF] is attached.")
}

func TestRedactDemographicTitleAndName(t *testing.T) {
	r := newTestRedactor(t)

	res := r.Redact("Mr. John Smith", catalog.DomainDemographic, false)
	assert.Equal(t, "[TITLE] [CANDIDATE_NAME]", res.RedactedText)
	assert.Equal(t, []string{"gender_title", "candidate_name"}, res.FiredCategories)

	res = r.Redact("1990, born in Lyon", catalog.DomainDemographic, false)
	assert.Equal(t, "[BIRTH_YEAR], born in Lyon", res.RedactedText)
}

type stubNames struct {
	name string
	err  error
}

func (s stubNames) FindName(string) (string, bool, error) {
	return s.name, s.name != "", s.err
}

func TestWithNameMatcher(t *testing.T) {
	r := newTestRedactor(t, WithNameMatcher(stubNames{name: "DOE, JANE"}))
	res := r.Redact("DOE, JANE\nEngineer", catalog.DomainDemographic, false)
	assert.Equal(t, "[CANDIDATE_NAME]\nEngineer", res.RedactedText)
	assert.Equal(t, []string{"candidate_name"}, res.FiredCategories)

	r = newTestRedactor(t, WithNameMatcher(stubNames{err: errors.New("timeout")}))
	res = r.Redact("Jane Doe", catalog.DomainDemographic, false)
	assert.Equal(t, "Jane Doe", res.RedactedText)
	assert.Empty(t, res.FiredCategories)
}

func TestRedactLengthsCountRunes(t *testing.T) {
	r := newTestRedactor(t)
	res := r.Redact("Zoë: zoe@example.com", catalog.DomainPII, false)
	assert.Equal(t, 20, res.OriginalLength)
	assert.Equal(t, len([]rune(res.RedactedText)), res.RedactedLength)
}
