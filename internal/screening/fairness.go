package screening

import (
	"math"
	"time"
)

// BiasOutcome is the part of a bias analysis the fairness report needs.
type BiasOutcome struct {
	BiasDetected    bool    `json:"bias_detected"`
	MeritBasedScore float64 `json:"merit_based_score"`
}

// FairnessReport aggregates bias outcomes over many evaluations.
type FairnessReport struct {
	TotalEvaluations   int       `json:"total_evaluations"`
	BiasDetectedCount  int       `json:"bias_detected_count"`
	BiasFreePercentage float64   `json:"bias_free_percentage"`
	AverageMeritScore  float64   `json:"average_merit_score"`
	FairnessGrade      string    `json:"fairness_grade"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// Fairness grades by bias rate.
const (
	GradeNone      = "N/A"
	GradeExcellent = "A+ Excellent"
	GradeGood      = "A Good"
	GradeFair      = "B Fair"
	GradeImprove   = "C Needs Improvement"
	GradePoor      = "D Poor"
)

// BuildFairnessReport summarizes outcomes. An empty input yields zero
// percentages and grade N/A.
func BuildFairnessReport(outcomes []BiasOutcome, now time.Time) FairnessReport {
	report := FairnessReport{
		TotalEvaluations: len(outcomes),
		FairnessGrade:    GradeNone,
		GeneratedAt:      now.UTC(),
	}
	if len(outcomes) == 0 {
		return report
	}

	var meritSum float64
	for _, o := range outcomes {
		if o.BiasDetected {
			report.BiasDetectedCount++
		}
		meritSum += o.MeritBasedScore
	}

	total := float64(report.TotalEvaluations)
	report.BiasFreePercentage = round2(float64(report.TotalEvaluations-report.BiasDetectedCount) / total * 100)
	report.AverageMeritScore = round2(meritSum / total)
	report.FairnessGrade = FairnessGrade(report.BiasDetectedCount, report.TotalEvaluations)
	return report
}

// FairnessGrade grades a bias rate of biased out of total evaluations.
func FairnessGrade(biased, total int) string {
	if total == 0 {
		return GradeNone
	}
	rate := float64(biased) / float64(total) * 100
	switch {
	case rate < 5:
		return GradeExcellent
	case rate < 10:
		return GradeGood
	case rate < 20:
		return GradeFair
	case rate < 30:
		return GradeImprove
	default:
		return GradePoor
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
