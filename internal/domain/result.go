package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusClear   Status = "clear"
	StatusFlagged Status = "flagged"
)

type Match struct {
	RuleID string
	Action Action
	Reason string
}

type Detail struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

type EvaluationResult struct {
	TransactionID string
	Matches       []Match
}

func (r EvaluationResult) Status() Status {
	if len(r.Matches) > 0 {
		return StatusFlagged
	}
	return StatusClear
}

// Details never returns nil so that a clear result encodes as [].
func (r EvaluationResult) Details() []Detail {
	details := make([]Detail, 0, len(r.Matches))
	for _, m := range r.Matches {
		details = append(details, Detail{Action: m.Action, Reason: m.Reason})
	}
	return details
}

func (r EvaluationResult) HasAction(a Action) bool {
	for _, m := range r.Matches {
		if m.Action == a {
			return true
		}
	}
	return false
}

// Decision is the most severe action among the matches, reject over review.
// It is empty for a clear result.
func (r EvaluationResult) Decision() Action {
	var decision Action
	for _, m := range r.Matches {
		if m.Action.severity() > decision.severity() {
			decision = m.Action
		}
	}
	return decision
}

func (r EvaluationResult) Summary() string {
	if len(r.Matches) == 0 {
		return "None"
	}
	parts := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		parts[i] = fmt.Sprintf("%s (%s)", m.Action, m.Reason)
	}
	return strings.Join(parts, ", ")
}
