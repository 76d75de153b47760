package models

import "time"

// GateCheck is one entry of the promotion checklist. Champion/Challenger
// carry the compared values; Threshold is nil for checks without a fixed
// numeric bound.
type GateCheck struct {
	Name       string   `json:"gate"`
	Passed     bool     `json:"passed"`
	Champion   *float64 `json:"champion,omitempty"`
	Challenger *float64 `json:"challenger,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// GateVerdict is the full audit record of one promotion request: the
// ordered checks and their conjunction.
type GateVerdict struct {
	Passed      bool        `json:"passed"`
	Checks      []GateCheck `json:"checks"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
}

// FailedChecks returns the names of checks that did not pass
func (v *GateVerdict) FailedChecks() []string {
	var failed []string
	for _, c := range v.Checks {
		if !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}
