package processor

import (
	"context"
	"fraud_screener/internal/domain"
	"log/slog"
	"time"
)

type MetricsRecorder interface {
	RecordEvaluation(result domain.EvaluationResult, duration time.Duration)
	RecordBatch(size int)
}

// Evaluate applies every rule in order; it never short-circuits.
func Evaluate(tx domain.Transaction, rules domain.RuleSet, now time.Time) domain.EvaluationResult {
	result := domain.EvaluationResult{TransactionID: tx.ID}
	rules.Each(func(rule domain.Rule) {
		if rule.Predicate(tx, now) {
			result.Matches = append(result.Matches, domain.Match{
				RuleID: rule.ID,
				Action: rule.Action,
				Reason: rule.Description,
			})
		}
	})
	return result
}

type Evaluator struct {
	rules   domain.RuleSet
	clock   func() time.Time
	metrics MetricsRecorder
	logger  *slog.Logger
}

type EvaluatorOption func(*Evaluator)

func WithClock(clock func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func WithMetrics(m MetricsRecorder) EvaluatorOption {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEvaluator(rules domain.RuleSet, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		rules:  rules,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Rules() domain.RuleSet {
	return e.rules
}

func (e *Evaluator) Now() time.Time {
	return e.clock()
}

func (e *Evaluator) Evaluate(ctx context.Context, tx domain.Transaction) domain.EvaluationResult {
	return e.evaluateAt(ctx, tx, e.clock())
}

func (e *Evaluator) evaluateAt(ctx context.Context, tx domain.Transaction, now time.Time) domain.EvaluationResult {
	start := time.Now()
	result := Evaluate(tx, e.rules, now)

	if e.metrics != nil {
		e.metrics.RecordEvaluation(result, time.Since(start))
	}

	if result.Status() == domain.StatusFlagged {
		e.logger.DebugContext(ctx, "Transaction flagged",
			slog.String("transaction_id", tx.ID),
			slog.Int("matches", len(result.Matches)),
			slog.String("decision", string(result.Decision())))
	}

	return result
}
