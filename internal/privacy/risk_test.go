package privacy

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func emails(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("user%d@example.com", i)
	}
	return strings.Join(parts, " ")
}

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		instances int
		want      RiskLevel
	}{
		{0, RiskLow},
		{5, RiskLow},
		{6, RiskMedium},
		{10, RiskMedium},
		{11, RiskHigh},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.instances), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.instances))
		})
	}
}

func TestAssessTiers(t *testing.T) {
	a := NewAssessor(newTestRedactor(t))

	assert.Equal(t, RiskLow, a.Assess(emails(5)).RiskLevel)
	assert.Equal(t, RiskMedium, a.Assess(emails(6)).RiskLevel)

	high := a.Assess(emails(11))
	assert.Equal(t, RiskHigh, high.RiskLevel)
	assert.Equal(t, 11, high.TotalPIIInstances)
	assert.Equal(t, []string{"email"}, high.PIITypesFound)
	assert.Equal(t, []string{
		"High amount of PII detected - consider anonymization before sharing",
		"Use privacy-preserving mode for all evaluations",
		"Mask email addresses except domain for professional context",
		"Store only hashed credentials, never raw PII",
		"Use anonymous candidate IDs for all internal processing",
	}, high.Recommendations)
}

func TestAssessSSNComesFirst(t *testing.T) {
	a := NewAssessor(newTestRedactor(t))

	low := a.Assess("SSN 123-45-6789, mail jane@example.com")
	assert.Equal(t, RiskLow, low.RiskLevel)
	assert.Equal(t, "CRITICAL: SSN detected - remove immediately", low.Recommendations[0])
	assert.Equal(t, []string{"email", "ssn"}, low.PIITypesFound)

	high := a.Assess("SSN 123-45-6789 " + emails(11))
	assert.Equal(t, "CRITICAL: SSN detected - remove immediately", high.Recommendations[0])
	assert.Equal(t, "High amount of PII detected - consider anonymization before sharing", high.Recommendations[1])
}

func TestAssessNoPII(t *testing.T) {
	a := NewAssessor(newTestRedactor(t))
	report := a.Assess("Go developer with ten years of experience")

	assert.False(t, report.PIIDetected)
	assert.Empty(t, report.PIITypesFound)
	assert.Equal(t, RiskLow, report.RiskLevel)
	assert.Equal(t, []string{
		"Store only hashed credentials, never raw PII",
		"Use anonymous candidate IDs for all internal processing",
	}, report.Recommendations)
}
