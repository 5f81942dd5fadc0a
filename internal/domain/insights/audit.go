package insights

import (
	"math"
	"strconv"
)

// Status is the qualitative reading of an audit ratio.
type Status string

// Audit ratio statuses.
const (
	StatusExcellent        Status = "excellent"
	StatusPerfect          Status = "perfect"
	StatusGood             Status = "good"
	StatusNeedsImprovement Status = "needs improvement"
)

// Status thresholds.
const (
	excellentAbove = 1.2
	perfectFrom    = 1.0
	goodFrom       = 0.8
	maxPercentage  = 100
)

// AuditEvaluation is everything the audit card shows.
type AuditEvaluation struct {
	Done               float64
	Received           float64
	Ratio              float64
	DisplayRatio       string
	Status             Status
	DonePercentage     float64
	ReceivedPercentage float64
}

// Ratio returns done/received, or 0 when nothing was received.
func Ratio(done, received float64) float64 {
	if received > 0 {
		return done / received
	}
	return 0
}

// StatusFor classifies ratio. Thresholds are checked top-down.
func StatusFor(ratio float64) Status {
	switch {
	case ratio > excellentAbove:
		return StatusExcellent
	case ratio >= perfectFrom:
		return StatusPerfect
	case ratio >= goodFrom:
		return StatusGood
	default:
		return StatusNeedsImprovement
	}
}

// DisplayRatio renders ratio with one decimal place.
func DisplayRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', 1, 64)
}

// Percentages scales done and received against the larger of the two for the
// progress bars. Both are 0 when done and received are 0.
func Percentages(done, received float64) (donePct, receivedPct float64) {
	if done == 0 && received == 0 {
		return 0, 0
	}
	base := math.Max(math.Max(done, received), 1)
	return percentOf(done, base), percentOf(received, base)
}

func percentOf(v, base float64) float64 {
	return math.Min(v/base*maxPercentage, maxPercentage)
}

// EvaluateAudit computes ratio, status and bar percentages.
func EvaluateAudit(done, received float64) AuditEvaluation {
	ratio := Ratio(done, received)
	donePct, receivedPct := Percentages(done, received)
	return AuditEvaluation{
		Done:               done,
		Received:           received,
		Ratio:              ratio,
		DisplayRatio:       DisplayRatio(ratio),
		Status:             StatusFor(ratio),
		DonePercentage:     donePct,
		ReceivedPercentage: receivedPct,
	}
}
