package privacy

// RedactionResult is the outcome of one redaction pass.
type RedactionResult struct {
	OriginalText    string              `json:"-"` // Never serialize original text
	RedactedText    string              `json:"redacted_text"`
	FiredCategories []string            `json:"fired_categories"`
	MatchedValues   map[string][]string `json:"matched_values,omitempty"`
	OriginalLength  int                 `json:"original_length"`
	RedactedLength  int                 `json:"redacted_length"`
}

// InstanceCount is the total number of matched values across categories.
func (r RedactionResult) InstanceCount() int {
	n := 0
	for _, values := range r.MatchedValues {
		n += len(values)
	}
	return n
}

// Fired reports whether the category matched.
func (r RedactionResult) Fired(category string) bool {
	for _, c := range r.FiredCategories {
		if c == category {
			return true
		}
	}
	return false
}

// RiskLevel grades how much PII a text carries.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Report summarizes the PII found in a text.
type Report struct {
	PIIDetected       bool      `json:"pii_detected"`
	PIITypesFound     []string  `json:"pii_types_found"`
	TotalPIIInstances int       `json:"total_pii_instances"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Recommendations   []string  `json:"recommendations"`
}
