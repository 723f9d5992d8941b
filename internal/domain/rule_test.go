package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func always(Transaction, time.Time) bool { return true }

func TestNewRuleSet_Validation(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		err   error
	}{
		{
			name:  "empty id",
			rules: []Rule{{Action: ActionReview, Predicate: always}},
			err:   ErrEmptyRuleID,
		},
		{
			name:  "unknown action",
			rules: []Rule{{ID: "A", Action: "block", Predicate: always}},
			err:   ErrInvalidAction,
		},
		{
			name:  "nil predicate",
			rules: []Rule{{ID: "A", Action: ActionReject}},
			err:   ErrNilPredicate,
		},
		{
			name: "duplicate id",
			rules: []Rule{
				{ID: "A", Action: ActionReview, Predicate: always},
				{ID: "A", Action: ActionReject, Predicate: always},
			},
			err: ErrDuplicateRuleID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleSet(tt.rules...)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}

func TestRuleSet_OrderAndImmutability(t *testing.T) {
	input := []Rule{
		{ID: "A", Action: ActionReview, Predicate: always},
		{ID: "B", Action: ActionReject, Predicate: always},
		{ID: "C", Action: ActionReview, Predicate: always},
	}
	rs, err := NewRuleSet(input...)
	require.NoError(t, err)

	input[0].ID = "changed"
	rules := rs.Rules()
	rules[1].ID = "changed"

	assert.Equal(t, []string{"A", "B", "C"}, rs.IDs())
	assert.Equal(t, 3, rs.Len())
	assert.True(t, rs.Contains("B"))
	assert.False(t, rs.Contains("changed"))

	var visited []string
	rs.Each(func(r Rule) { visited = append(visited, r.ID) })
	assert.Equal(t, []string{"A", "B", "C"}, visited)
}

func TestRuleSet_Without(t *testing.T) {
	rs := MustRuleSet(
		Rule{ID: "A", Action: ActionReview, Predicate: always},
		Rule{ID: "B", Action: ActionReject, Predicate: always},
		Rule{ID: "C", Action: ActionReview, Predicate: always},
	)

	assert.Equal(t, []string{"A", "C"}, rs.Without("B", "missing").IDs())
	assert.Equal(t, []string{"A", "B", "C"}, rs.Without().IDs())
	assert.Equal(t, []string{"A", "B", "C"}, rs.IDs())
}

func TestMustRuleSet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustRuleSet(Rule{ID: "A", Action: ActionReview})
	})
}

func TestEvaluationResult(t *testing.T) {
	cleared := EvaluationResult{TransactionID: "t0"}
	assert.Equal(t, StatusClear, cleared.Status())
	assert.Equal(t, []Detail{}, cleared.Details())
	assert.Equal(t, Action(""), cleared.Decision())
	assert.Equal(t, "None", cleared.Summary())
	assert.False(t, cleared.HasAction(ActionReview))

	flagged := EvaluationResult{
		TransactionID: "t1",
		Matches: []Match{
			{RuleID: "R1", Action: ActionReview, Reason: "High transaction amount"},
			{RuleID: "R2", Action: ActionReject, Reason: "Web channel transaction"},
			{RuleID: "R3", Action: ActionReview, Reason: "Transaction from iOS device"},
		},
	}
	assert.Equal(t, StatusFlagged, flagged.Status())
	assert.Equal(t, ActionReject, flagged.Decision())
	assert.True(t, flagged.HasAction(ActionReview))
	assert.True(t, flagged.HasAction(ActionReject))
	assert.Equal(t,
		"review (High transaction amount), reject (Web channel transaction), review (Transaction from iOS device)",
		flagged.Summary())
	assert.Equal(t, Detail{Action: ActionReject, Reason: "Web channel transaction"}, flagged.Details()[1])

	reviewOnly := EvaluationResult{Matches: []Match{{RuleID: "R3", Action: ActionReview, Reason: "x"}}}
	assert.Equal(t, ActionReview, reviewOnly.Decision())
}
