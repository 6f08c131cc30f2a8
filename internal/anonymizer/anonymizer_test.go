package anonymizer

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

const resume = "Jane Doe\n" +
	"Ms. Jane Doe, 29 years old\n" +
	"Email: jane.doe@example.com | Phone: 555-123-4567\n" +
	"Lives at 42 Elm Road in Portland, OR\n" +
	"https://github.com/janedoe\n" +
	"[photo]\n" +
	"Skills: Go, Kafka, PostgreSQL"

func newAnonymizer(t *testing.T) *Anonymizer {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	log := logger.NewNop()
	return New(privacy.NewRedactor(cat, log), log)
}

func TestAnonymize(t *testing.T) {
	a := newAnonymizer(t)
	p := a.Anonymize(resume)

	assert.Equal(t, PrivacyMaximum, p.PrivacyLevel)
	assert.False(t, p.Reversible)
	assert.Regexp(t, regexp.MustCompile(`^CANDIDATE_[0-9A-F]{12}$`), p.CandidateID)

	assert.True(t, strings.HasPrefix(p.ProfileData, NameToken+"\n"))
	for _, leaked := range []string{"jane.doe@example.com", "555-123-4567", "janedoe", "Ms.", "29 years old", "42 Elm Road", "Portland, OR", "photo", "Jane Doe"} {
		assert.NotContains(t, p.ProfileData, leaked)
	}
	assert.Contains(t, p.ProfileData, "Skills: Go, Kafka, PostgreSQL")
	assert.Contains(t, p.ProfileData, "[EMAIL_REDACTED]")
	assert.Contains(t, p.ProfileData, "[AGE]")
	assert.Contains(t, p.ProfileData, "[LOCATION]")
}

func TestAnonymizeIsDeterministic(t *testing.T) {
	a := newAnonymizer(t)
	assert.Equal(t, a.Anonymize(resume), a.Anonymize(resume))
	assert.NotEqual(t, a.Anonymize(resume).CandidateID, a.Anonymize(resume+" ").CandidateID)
}

func TestCandidateIDDoesNotLeakText(t *testing.T) {
	id := CandidateID("jane.doe@example.com")
	assert.Len(t, id, len("CANDIDATE_")+12)
	assert.NotContains(t, strings.ToLower(id), "jane")
}

func TestAnonymizeEmptyText(t *testing.T) {
	a := newAnonymizer(t)
	p := a.Anonymize("")
	assert.Equal(t, NameToken, p.ProfileData)
	assert.Equal(t, CandidateID(""), p.CandidateID)
}

func TestAnonymizeDetailedExposesPIIPass(t *testing.T) {
	a := newAnonymizer(t)
	res := a.AnonymizeDetailed(resume)
	assert.Equal(t, []string{"email", "phone", "github"}, res.PII.FiredCategories)
	assert.Equal(t, res.Profile, a.Anonymize(resume))
}

func TestSkillOnly(t *testing.T) {
	a := newAnonymizer(t)
	assert.Equal(t, a.Anonymize(resume).ProfileData, a.SkillOnly(resume))
}

func TestPrivacyLevelFor(t *testing.T) {
	assert.Equal(t, PrivacyMedium, PrivacyLevelFor(true))
	assert.Equal(t, PrivacyMaximum, PrivacyLevelFor(false))
}

func TestAnonymizeRemovesRepeatedName(t *testing.T) {
	a := newAnonymizer(t)

	p := a.Anonymize("Jane Doe\nJane Doe - Senior Go Engineer\nSkills: Go")
	assert.Equal(t, NameToken+"\n"+NameToken+" - Senior Go Engineer\nSkills: Go", p.ProfileData)
}
