// Package anonymizer turns a resume into a skill-only profile keyed by an
// irreversible candidate id.
package anonymizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/privacy"
	"go.uber.org/zap"
)

const (
	// NameToken replaces the first line of an anonymized resume.
	NameToken = "[CANDIDATE_NAME]"

	candidateIDPrefix = "CANDIDATE_"
	candidateIDLength = 12
)

// PrivacyLevel describes how much identifying information was removed.
type PrivacyLevel string

const (
	PrivacyMedium  PrivacyLevel = "medium"
	PrivacyMaximum PrivacyLevel = "maximum"
)

// PrivacyLevelFor reports the level reached by a PII pass.
func PrivacyLevelFor(keepProfessional bool) PrivacyLevel {
	if keepProfessional {
		return PrivacyMedium
	}
	return PrivacyMaximum
}

// Profile is an anonymized resume.
type Profile struct {
	CandidateID  string       `json:"candidate_id"`
	ProfileData  string       `json:"profile_data"`
	PrivacyLevel PrivacyLevel `json:"privacy_level"`
	Reversible   bool         `json:"reversible"`
}

// Result bundles a profile with the PII pass it was built from, so callers
// can report on it without redacting twice.
type Result struct {
	Profile Profile
	PII     privacy.RedactionResult
}

// Anonymizer chains redaction passes into a profile.
type Anonymizer struct {
	redactor *privacy.Redactor
	logger   *logger.Logger
}

// New creates an anonymizer.
func New(r *privacy.Redactor, log *logger.Logger) *Anonymizer {
	return &Anonymizer{redactor: r, logger: log.WithComponent("anonymizer")}
}

// CandidateID derives the anonymous id from the original text. The same
// text always yields the same id.
func CandidateID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return candidateIDPrefix + strings.ToUpper(hex.EncodeToString(sum[:])[:candidateIDLength])
}

// Anonymize builds the profile for text.
func (a *Anonymizer) Anonymize(text string) Profile {
	return a.AnonymizeDetailed(text).Profile
}

// AnonymizeDetailed is Anonymize plus the underlying PII pass.
func (a *Anonymizer) AnonymizeDetailed(text string) Result {
	data, pii := a.skillOnly(text)
	profile := Profile{
		CandidateID:  CandidateID(text),
		ProfileData:  data,
		PrivacyLevel: PrivacyMaximum,
		Reversible:   false,
	}

	a.logger.Debug("Profile anonymized",
		zap.String("candidate_id", profile.CandidateID),
		zap.Strings("pii_categories", pii.FiredCategories),
	)
	return Result{Profile: profile, PII: pii}
}

// SkillOnly returns the anonymized text without deriving an id.
func (a *Anonymizer) SkillOnly(text string) string {
	data, _ := a.skillOnly(text)
	return data
}

func (a *Anonymizer) skillOnly(text string) (string, privacy.RedactionResult) {
	pii := a.redactor.Redact(text, catalog.DomainPII, false)
	cleaned := a.redactor.Redact(pii.RedactedText, catalog.DomainCleanup, false)
	out := replaceNameLine(cleaned.RedactedText, NameToken)
	return a.sweep(out, pii), pii
}

// replaceNameLine swaps the first line, taken to be the candidate's name,
// for token and removes later repeats of it. Lines holding placeholders
// are not treated as a name.
func replaceNameLine(text, token string) string {
	i := strings.IndexByte(text, '\n')
	if i < 0 {
		return token
	}
	rest := text[i:]
	if name := strings.TrimSpace(text[:i]); name != "" && !strings.Contains(name, "[") {
		rest = strings.ReplaceAll(rest, name, token)
	}
	return token + rest
}

// sweep removes any literal PII value that survived the later passes.
func (a *Anonymizer) sweep(text string, pii privacy.RedactionResult) string {
	cat := a.redactor.Catalog()
	for _, category := range pii.FiredCategories {
		rule, ok := cat.Rule(catalog.DomainPII, category)
		if !ok {
			continue
		}
		for _, value := range pii.MatchedValues[category] {
			if value != "" {
				text = strings.ReplaceAll(text, value, rule.Replacement)
			}
		}
	}
	return text
}
