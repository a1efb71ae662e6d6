// Package evaluator defines the envelope every assessment embeds: a
// confidence score, human-readable reasoning, and the ordered list of data
// sources consulted. Assessments are value types returned fresh per call.
package evaluator

// Report is the common assessment envelope.
type Report struct {
	Confidence float64  `json:"confidence"` // 0..1
	Reasoning  string   `json:"reasoning"`
	Sources    []string `json:"data_sources"`
}

// ClampConfidence bounds a confidence score to [0, 1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
