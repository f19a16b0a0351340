// Package sira defines the SIRA risk taxonomy and the signal tables that
// drive classification: layer and metric vocabularies, ordered severity and
// sector rules, and the pattern sets detecting each of them in event text.
// Tables are data, not behavior; the matching engine lives in classify.
package sira

// Layer codes in taxonomy order, L1 (physical substrate) to L7 (human).
var LayerCodes = []string{"L1", "L2", "L3", "L4", "L5", "L6", "L7"}

// LayerNames maps a layer code to its display name.
var LayerNames = map[string]string{
	"L1": "Energy & Compute",
	"L2": "Infrastructure",
	"L3": "Architecture",
	"L4": "Models",
	"L5": "Application",
	"L6": "Integration",
	"L7": "Human: Cognitive & Emotional",
}

// MetricNames maps a metric code to its description.
var MetricNames = map[string]string{
	"MY":  "Medha Yield (risk-adjusted value per AI spend)",
	"CRR": "Cognitive Reserve Ratio (% output achievable without AI)",
	"BAI": "AI Dependency Beta (productivity sensitivity to AI availability)",
	"HR":  "Hallucination Rate (% unverified AI output carried as completed)",
	"HHI": "Vendor HHI (concentration index for AI tool stack)",
	"MG":  "Medha Grade (composite AAA to CCC)",
}

const (
	// FallbackLayer is assigned when no layer pattern matches. Model-level
	// failure is the most common reading of an otherwise unclassifiable
	// AI incident report.
	FallbackLayer = "L4"

	// FallbackMetric is assigned when no metric pattern matches.
	FallbackMetric = "MG"

	// SectorUnspecified is the sector for events no sector rule claims.
	SectorUnspecified = "Unspecified"
)

// Severity is the ordered risk level of an event.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Severities lists all levels, most severe first. This is also the
// evaluation order of the severity rules: the first level whose patterns
// match wins, so ambiguous signals overestimate rather than underestimate.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank returns the sort rank of a severity. Higher is more severe.
// Unknown values rank below Low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
