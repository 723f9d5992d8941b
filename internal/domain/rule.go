package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type Action string

const (
	ActionReview Action = "review"
	ActionReject Action = "reject"
)

func (a Action) Valid() bool {
	return a == ActionReview || a == ActionReject
}

func (a Action) severity() int {
	switch a {
	case ActionReject:
		return 2
	case ActionReview:
		return 1
	default:
		return 0
	}
}

type Predicate func(tx Transaction, now time.Time) bool

type Rule struct {
	ID          string
	Description string
	Action      Action
	Predicate   Predicate
}

var (
	ErrEmptyRuleID     = errors.New("rule id is empty")
	ErrDuplicateRuleID = errors.New("duplicate rule id")
	ErrInvalidAction   = errors.New("invalid rule action")
	ErrNilPredicate    = errors.New("rule predicate is nil")
)

// The zero RuleSet is empty.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) (RuleSet, error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		switch {
		case r.ID == "":
			return RuleSet{}, ErrEmptyRuleID
		case !r.Action.Valid():
			return RuleSet{}, fmt.Errorf("%w: rule %s: %q", ErrInvalidAction, r.ID, r.Action)
		case r.Predicate == nil:
			return RuleSet{}, fmt.Errorf("%w: rule %s", ErrNilPredicate, r.ID)
		}
		if _, ok := seen[r.ID]; ok {
			return RuleSet{}, fmt.Errorf("%w: %s", ErrDuplicateRuleID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return RuleSet{rules: slices.Clone(rules)}, nil
}

func MustRuleSet(rules ...Rule) RuleSet {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

func (rs RuleSet) Len() int {
	return len(rs.rules)
}

// Rules returns a copy of the rules in evaluation order.
func (rs RuleSet) Rules() []Rule {
	return slices.Clone(rs.rules)
}

func (rs RuleSet) IDs() []string {
	ids := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		ids[i] = r.ID
	}
	return ids
}

func (rs RuleSet) Contains(id string) bool {
	return slices.ContainsFunc(rs.rules, func(r Rule) bool { return r.ID == id })
}

// Without ignores unknown IDs.
func (rs RuleSet) Without(ids ...string) RuleSet {
	if len(ids) == 0 {
		return rs
	}
	kept := make([]Rule, 0, len(rs.rules))
	for _, r := range rs.rules {
		if !slices.Contains(ids, r.ID) {
			kept = append(kept, r)
		}
	}
	return RuleSet{rules: kept}
}

func (rs RuleSet) Each(fn func(Rule)) {
	for _, r := range rs.rules {
		fn(r)
	}
}
