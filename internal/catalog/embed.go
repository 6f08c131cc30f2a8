package catalog

import _ "embed"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DefaultYAML returns the embedded default catalog definition.
func DefaultYAML() []byte { return defaultCatalogYAML }
