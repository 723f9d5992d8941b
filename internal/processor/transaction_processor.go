package processor

import (
	"context"
	"fmt"
	"fraud_screener/internal/domain"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type BatchResult struct {
	Result   domain.EvaluationResult
	Weekday  string
	Location string
}

type BatchProcessor struct {
	evaluator *Evaluator
	workers   int
	logger    *slog.Logger
}

func NewBatchProcessor(evaluator *Evaluator, maxWorkers int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &BatchProcessor{
		evaluator: evaluator,
		workers:   maxWorkers,
		logger:    logger,
	}
}

// EvaluateAll evaluates every transaction with one reference time captured at
// the start of the batch. Results are returned in input order.
func (p *BatchProcessor) EvaluateAll(ctx context.Context, txs []domain.Transaction) ([]BatchResult, error) {
	ctx, span := otel.Tracer("fraud_screener/processor").Start(ctx, "EvaluateAll")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(txs)))

	startTime := time.Now()
	now := p.evaluator.Now()
	results := make([]BatchResult, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range txs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tx := txs[i]
			results[i] = BatchResult{
				Result:   p.evaluator.evaluateAt(gctx, tx, now),
				Weekday:  tx.Weekday(),
				Location: tx.Location,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate batch: %w", err)
	}

	if p.evaluator.metrics != nil {
		p.evaluator.metrics.RecordBatch(len(txs))
	}

	p.logger.InfoContext(ctx, "Batch evaluated",
		slog.Int("transactions", len(txs)),
		slog.Int("workers", p.workers),
		slog.Duration("duration", time.Since(startTime)))

	return results, nil
}
