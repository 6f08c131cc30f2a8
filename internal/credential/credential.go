// Package credential issues tamper-evident skill credentials.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// IDLength is the number of hash characters used as the credential id.
const IDLength = 16

// DefaultIssuer labels credentials when no issuer is configured.
const DefaultIssuer = "Matchly"

// Credential attests that a candidate holds a set of skills.
type Credential struct {
	Candidate        string    `json:"candidate"`
	Skills           []string  `json:"skills"`
	IssuedAt         time.Time `json:"issued_at"`
	Issuer           string    `json:"issuer"`
	CredentialID     string    `json:"credential_id"`
	VerificationHash string    `json:"verification_hash"`
}

// canonicalClaim fixes the serialized key order; fields are declared in
// sorted key order.
type canonicalClaim struct {
	Candidate  string   `json:"candidate"`
	Issuer     string   `json:"issuer"`
	Skills     []string `json:"skills"`
	VerifiedAt string   `json:"verified_at"`
}

// Canonical returns the byte-stable serialization the hash is computed over.
func Canonical(c Credential) string {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	data, err := json.Marshal(canonicalClaim{
		Candidate:  c.Candidate,
		Issuer:     c.Issuer,
		Skills:     skills,
		VerifiedAt: c.IssuedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		// Strings and string slices always marshal.
		panic(err)
	}
	return string(data)
}

// Hash returns the hex SHA-256 of payload.
func Hash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether payload hashes to exactly expectedHash, which
// must be the lower-case hex form Hash produces.
func Verify(payload, expectedHash string) bool {
	got := Hash(payload)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expectedHash)) == 1
}

// NormalizeSkills trims, drops empties, deduplicates and sorts.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Issuer creates credentials.
type Issuer struct {
	label string
	now   func() time.Time
}

// IssuerOption customizes an Issuer.
type IssuerOption func(*Issuer)

// WithClock sets the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an issuer that signs credentials with label.
func NewIssuer(label string, opts ...IssuerOption) *Issuer {
	if label == "" {
		label = DefaultIssuer
	}
	i := &Issuer{label: label, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Label returns the issuer name stamped on credentials.
func (i *Issuer) Label() string { return i.label }

// Issue creates a credential for candidate. Skill order and duplicates do
// not affect the result.
func (i *Issuer) Issue(candidate string, skills []string) Credential {
	c := Credential{
		Candidate: candidate,
		Skills:    NormalizeSkills(skills),
		IssuedAt:  i.now().UTC().Round(0),
		Issuer:    i.label,
	}
	c.VerificationHash = Hash(Canonical(c))
	c.CredentialID = c.VerificationHash[:IDLength]
	return c
}
