package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Domain groups the rules applied by one redaction pass.
type Domain string

const (
	DomainPII         Domain = "pii"
	DomainDemographic Domain = "demographic"
	// DomainCleanup is the anonymizer's secondary pass. It is not exposed
	// through the public redaction endpoints.
	DomainCleanup Domain = "cleanup"
)

var knownDomains = []Domain{DomainPII, DomainDemographic, DomainCleanup}

// ParseDomain validates a domain name.
func ParseDomain(s string) (Domain, error) {
	for _, d := range knownDomains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// HeuristicName marks the rule used by the candidate name matcher.
const HeuristicName = "name"

// File is the top-level YAML structure of a catalog file.
type File struct {
	Rules    []RuleConfig    `yaml:"rules"`
	Sections []SectionConfig `yaml:"sections"`
}

// RuleConfig is one redaction rule as written in YAML.
type RuleConfig struct {
	Domain                  string `yaml:"domain"`
	Category                string `yaml:"category"`
	Pattern                 string `yaml:"pattern"`
	Replacement             string `yaml:"replacement"`
	ProfessionalReplacement string `yaml:"professional_replacement,omitempty"`
	CaseSensitive           bool   `yaml:"case_sensitive,omitempty"`
	FirstOnly               bool   `yaml:"first_only,omitempty"`
	Critical                bool   `yaml:"critical,omitempty"`
	Heuristic               string `yaml:"heuristic,omitempty"`
	Recommendation          string `yaml:"recommendation,omitempty"`
	Enabled                 *bool  `yaml:"enabled,omitempty"`
}

func (r *RuleConfig) isEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// SectionConfig declares a resume section the field extractor can return.
type SectionConfig struct {
	Name     string   `yaml:"name"`
	Headers  []string `yaml:"headers"`
	MaxChars int      `yaml:"max_chars"`
}

// ParseFile parses catalog YAML bytes.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("parsing catalog YAML: %w", err)}
	}
	return &f, nil
}
