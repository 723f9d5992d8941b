package processor

import (
	"errors"
	"fmt"
	"fraud_screener/internal/domain"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RuleHighAmount        = "R1"
	RuleWebChannel        = "R2"
	RuleIOSDevice         = "R3"
	RuleLateNight         = "R4"
	RuleHighRiskLocation  = "R5"
	RuleFrequentHighValue = "R6"
	RuleNewAccount        = "R7"
	RuleUnverified        = "R8"
	RuleWeekend           = "R9"
)

var ErrUnknownRule = errors.New("unknown rule id")

var (
	highAmountThreshold = decimal.NewFromInt(500_000)

	lateNightStart = 23 * time.Hour
	lateNightEnd   = 5 * time.Hour
)

const (
	webChannel            = "web"
	iosDevice             = "iOS"
	highRiskLocation      = "Lagos, Nigeria"
	frequentHighValueOver = 5
	newAccountMaxDays     = 30
)

var defaultRules = domain.MustRuleSet(
	domain.Rule{
		ID:          RuleHighAmount,
		Description: "High transaction amount",
		Action:      domain.ActionReview,
		Predicate:   isHighAmount,
	},
	domain.Rule{
		ID:          RuleWebChannel,
		Description: "Web channel transaction",
		Action:      domain.ActionReject,
		Predicate:   isWebChannel,
	},
	domain.Rule{
		ID:          RuleIOSDevice,
		Description: "Transaction from iOS device",
		Action:      domain.ActionReview,
		Predicate:   isIOSDevice,
	},
	domain.Rule{
		ID:          RuleLateNight,
		Description: "Late-night transaction",
		Action:      domain.ActionReview,
		Predicate:   isLateNight,
	},
	domain.Rule{
		ID:          RuleHighRiskLocation,
		Description: "Transaction from a designated high-risk location",
		Action:      domain.ActionReject,
		Predicate:   isHighRiskLocation,
	},
	domain.Rule{
		ID:          RuleFrequentHighValue,
		Description: "Frequent high-value transactions",
		Action:      domain.ActionReview,
		Predicate:   isFrequentHighValue,
	},
	domain.Rule{
		ID:          RuleNewAccount,
		Description: "Account created recently",
		Action:      domain.ActionReview,
		Predicate:   isNewAccount,
	},
	domain.Rule{
		ID:          RuleUnverified,
		Description: "Unverified account",
		Action:      domain.ActionReject,
		Predicate:   isUnverified,
	},
	domain.Rule{
		ID:          RuleWeekend,
		Description: "Weekend / restricted-period transaction",
		Action:      domain.ActionReject,
		Predicate:   isWeekend,
	},
)

func DefaultRuleSet() domain.RuleSet {
	return defaultRules
}

func ConfiguredRuleSet(disabled []string) (domain.RuleSet, error) {
	for _, id := range disabled {
		if !defaultRules.Contains(id) {
			return domain.RuleSet{}, fmt.Errorf("%w: %q", ErrUnknownRule, id)
		}
	}
	return defaultRules.Without(disabled...), nil
}

func isHighAmount(tx domain.Transaction, _ time.Time) bool {
	return tx.Amount.GreaterThan(highAmountThreshold)
}

func isWebChannel(tx domain.Transaction, _ time.Time) bool {
	return tx.PaymentChannel == webChannel
}

func isIOSDevice(tx domain.Transaction, _ time.Time) bool {
	return tx.DeviceType == iosDevice
}

// Both bounds are inclusive.
func isLateNight(tx domain.Transaction, _ time.Time) bool {
	tod := timeOfDay(tx.TransactionTime)
	return tod >= lateNightStart || tod <= lateNightEnd
}

func isHighRiskLocation(tx domain.Transaction, _ time.Time) bool {
	return tx.Location == highRiskLocation
}

func isFrequentHighValue(tx domain.Transaction, _ time.Time) bool {
	return tx.HighValueTxCount > frequentHighValueOver
}

func isNewAccount(tx domain.Transaction, now time.Time) bool {
	return elapsedDays(tx.AccountCreationDate, now) <= newAccountMaxDays
}

func isUnverified(tx domain.Transaction, _ time.Time) bool {
	return !tx.IsVerified
}

func isWeekend(tx domain.Transaction, _ time.Time) bool {
	switch tx.TransactionTime.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// elapsedDays floors, so a future date is negative.
func elapsedDays(since, now time.Time) int {
	d := now.Sub(since)
	days := d / (24 * time.Hour)
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return int(days)
}
