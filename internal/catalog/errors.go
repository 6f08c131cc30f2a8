package catalog

import "fmt"

// ConfigurationError reports a catalog that cannot be used: malformed YAML,
// an unknown domain, a duplicate category or a pattern that does not compile.
type ConfigurationError struct {
	Domain   Domain
	Category string
	Err      error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Category != "":
		return fmt.Sprintf("catalog: rule %s/%s: %v", e.Domain, e.Category, e.Err)
	case e.Domain != "":
		return fmt.Sprintf("catalog: domain %s: %v", e.Domain, e.Err)
	default:
		return fmt.Sprintf("catalog: %v", e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
