// Package catalog holds the ordered redaction rules and resume section
// definitions. The defaults are embedded YAML; an override file can
// replace or extend them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Catalog is the compiled, read-only set of rules and sections.
type Catalog struct {
	rules    map[Domain][]*Rule
	sections []*Section
}

type options struct {
	overridePath string
	namePattern  string
	matchTimeout time.Duration
}

// Option customizes catalog construction.
type Option func(*options)

// WithOverrideFile layers the catalog file at path over the embedded
// defaults. Rules with the same domain and category replace the default in
// place; new ones are appended.
func WithOverrideFile(path string) Option {
	return func(o *options) { o.overridePath = path }
}

// WithNamePattern replaces the pattern of the candidate name heuristic.
func WithNamePattern(pattern string) Option {
	return func(o *options) { o.namePattern = pattern }
}

// WithMatchTimeout bounds the time a single rule may spend on one input.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *options) { o.matchTimeout = d }
}

// Load builds the catalog from the embedded defaults plus any options.
func Load(opts ...Option) (*Catalog, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	base, err := ParseFile(DefaultYAML())
	if err != nil {
		return nil, err
	}
	layers := []*File{base}

	if o.overridePath != "" {
		data, err := os.ReadFile(o.overridePath)
		if err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("reading catalog file %s: %w", o.overridePath, err)}
		}
		override, err := ParseFile(data)
		if err != nil {
			return nil, err
		}
		layers = append(layers, override)
	}

	merged := Merge(layers...)
	if o.namePattern != "" {
		for i := range merged.Rules {
			if merged.Rules[i].Heuristic == HeuristicName {
				merged.Rules[i].Pattern = o.namePattern
			}
		}
	}
	return Compile(merged, o.matchTimeout)
}

// MustLoad is Load for the embedded defaults; it panics if they are broken.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("loading embedded catalog: %v", err))
	}
	return c
}

// Merge layers catalog files. Later rules override earlier ones with the
// same (domain, category); sections override by name.
func Merge(layers ...*File) *File {
	out := &File{}
	ruleIdx := make(map[string]int)
	sectionIdx := make(map[string]int)

	for _, layer := range layers {
		if layer == nil {
			continue
		}
		for _, rc := range layer.Rules {
			key := rc.Domain + "/" + rc.Category
			if i, ok := ruleIdx[key]; ok {
				out.Rules[i] = rc
				continue
			}
			ruleIdx[key] = len(out.Rules)
			out.Rules = append(out.Rules, rc)
		}
		for _, sc := range layer.Sections {
			if i, ok := sectionIdx[sc.Name]; ok {
				out.Sections[i] = sc
				continue
			}
			sectionIdx[sc.Name] = len(out.Sections)
			out.Sections = append(out.Sections, sc)
		}
	}
	return out
}

// Compile validates and compiles a catalog file.
func Compile(f *File, matchTimeout time.Duration) (*Catalog, error) {
	c := &Catalog{rules: make(map[Domain][]*Rule)}
	seen := make(map[string]bool)

	for _, rc := range f.Rules {
		domain, err := ParseDomain(rc.Domain)
		if err != nil {
			return nil, &ConfigurationError{Category: rc.Category, Err: err}
		}
		if rc.Category == "" {
			return nil, &ConfigurationError{Domain: domain, Err: errors.New("rule without category")}
		}
		key := rc.Domain + "/" + rc.Category
		if seen[key] {
			return nil, &ConfigurationError{Domain: domain, Category: rc.Category, Err: errors.New("duplicate category")}
		}
		seen[key] = true
		if !rc.isEnabled() {
			continue
		}
		if rc.Pattern == "" {
			return nil, &ConfigurationError{Domain: domain, Category: rc.Category, Err: errors.New("empty pattern")}
		}
		rule, err := compileRule(rc, domain, matchTimeout)
		if err != nil {
			return nil, &ConfigurationError{Domain: domain, Category: rc.Category, Err: fmt.Errorf("compiling pattern: %w", err)}
		}
		c.rules[domain] = append(c.rules[domain], rule)
	}

	for _, sc := range f.Sections {
		if sc.Name == "" || len(sc.Headers) == 0 {
			return nil, &ConfigurationError{Err: fmt.Errorf("section %q needs a name and at least one header", sc.Name)}
		}
		if sc.MaxChars <= 0 {
			return nil, &ConfigurationError{Err: fmt.Errorf("section %q: max_chars must be positive", sc.Name)}
		}
		s, err := compileSection(sc)
		if err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("section %q: %w", sc.Name, err)}
		}
		c.sections = append(c.sections, s)
	}

	return c, nil
}

// Rules returns the ordered rules of a domain.
func (c *Catalog) Rules(domain Domain) []*Rule {
	rules := c.rules[domain]
	out := make([]*Rule, len(rules))
	copy(out, rules)
	return out
}

// Rule looks up a rule by domain and category.
func (c *Catalog) Rule(domain Domain, category string) (*Rule, bool) {
	for _, r := range c.rules[domain] {
		if r.Category == category {
			return r, true
		}
	}
	return nil, false
}

// Heuristic returns the rule tagged with the given heuristic, if any.
func (c *Catalog) Heuristic(domain Domain, name string) (*Rule, bool) {
	for _, r := range c.rules[domain] {
		if r.Heuristic == name {
			return r, true
		}
	}
	return nil, false
}

// Categories lists the category labels of a domain in rule order.
func (c *Catalog) Categories(domain Domain) []string {
	rules := c.rules[domain]
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Category)
	}
	return out
}

// Sections returns the declared resume sections.
func (c *Catalog) Sections() []*Section {
	out := make([]*Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Section looks up a section by lower-case name.
func (c *Catalog) Section(name string) (*Section, bool) {
	for _, s := range c.sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
