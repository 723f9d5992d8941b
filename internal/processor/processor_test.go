package processor

import (
	"context"
	"errors"
	"fmt"
	"fraud_screener/internal/domain"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu          sync.Mutex
	evaluations int
	flagged     int
	batches     []int
}

func (m *recordingMetrics) RecordEvaluation(result domain.EvaluationResult, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations++
	if result.Status() == domain.StatusFlagged {
		m.flagged++
	}
}

func (m *recordingMetrics) RecordBatch(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, size)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEvaluate_ScenarioWebLagosLateNight(t *testing.T) {
	now := time.Date(2024, time.November, 13, 10, 0, 0, 0, time.UTC)
	tx := domain.Transaction{
		ID:                  "tx-a",
		Amount:              decimal.NewFromInt(600000),
		PaymentChannel:      "web",
		DeviceType:          "Android",
		TransactionTime:     time.Date(2024, time.November, 12, 23, 30, 0, 0, time.UTC),
		Location:            "Lagos, Nigeria",
		HighValueTxCount:    1,
		AccountCreationDate: now.AddDate(0, 0, -40),
		IsVerified:          true,
	}

	result := Evaluate(tx, DefaultRuleSet(), now)

	assert.Equal(t, domain.StatusFlagged, result.Status())
	assert.Equal(t, "tx-a", result.TransactionID)
	assert.Equal(t, []domain.Detail{
		{Action: domain.ActionReview, Reason: "High transaction amount"},
		{Action: domain.ActionReject, Reason: "Web channel transaction"},
		{Action: domain.ActionReview, Reason: "Late-night transaction"},
		{Action: domain.ActionReject, Reason: "Transaction from a designated high-risk location"},
	}, result.Details())
	assert.Equal(t, domain.ActionReject, result.Decision())
}

func TestEvaluate_ScenarioBenign(t *testing.T) {
	result := Evaluate(benignTx(), DefaultRuleSet(), testNow)

	assert.Equal(t, domain.StatusClear, result.Status())
	assert.Empty(t, result.Matches)
	assert.NotNil(t, result.Details())
	assert.Empty(t, result.Details())
}

func TestEvaluate_UnverifiedAlone(t *testing.T) {
	tx := benignTx()
	tx.IsVerified = false

	result := Evaluate(tx, DefaultRuleSet(), testNow)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, RuleUnverified, result.Matches[0].RuleID)
	assert.Equal(t, domain.ActionReject, result.Matches[0].Action)
}

func TestEvaluate_AllRulesInOrder(t *testing.T) {
	tx := domain.Transaction{
		ID:                  "tx-all",
		Amount:              decimal.NewFromInt(900000),
		PaymentChannel:      "web",
		DeviceType:          "iOS",
		TransactionTime:     time.Date(2024, time.April, 13, 23, 15, 0, 0, time.UTC),
		Location:            "Lagos, Nigeria",
		HighValueTxCount:    9,
		AccountCreationDate: testNow.AddDate(0, 0, -1),
		IsVerified:          false,
	}

	result := Evaluate(tx, DefaultRuleSet(), testNow)

	assert.Equal(t, DefaultRuleSet().IDs(), matchedIDs(result))
}

func TestEvaluate_Deterministic(t *testing.T) {
	tx := benignTx()
	tx.PaymentChannel = "web"
	tx.DeviceType = "iOS"

	first := Evaluate(tx, DefaultRuleSet(), testNow)
	for i := 0; i < 10; i++ {
		assert.True(t, reflect.DeepEqual(first, Evaluate(tx, DefaultRuleSet(), testNow)))
	}
}

func TestEvaluate_EmptyRuleSet(t *testing.T) {
	tx := benignTx()
	tx.IsVerified = false

	result := Evaluate(tx, domain.RuleSet{}, testNow)

	assert.Equal(t, domain.StatusClear, result.Status())
}

func TestEvaluator_UsesClockAndMetrics(t *testing.T) {
	m := &recordingMetrics{}
	tx := benignTx()
	tx.AccountCreationDate = testNow.AddDate(0, 0, -10)

	recent := NewEvaluator(DefaultRuleSet(), WithClock(fixedClock(testNow)), WithMetrics(m))
	later := NewEvaluator(DefaultRuleSet(), WithClock(fixedClock(testNow.AddDate(0, 1, 0))))

	assert.Equal(t, []string{RuleNewAccount}, matchedIDs(recent.Evaluate(context.Background(), tx)))
	assert.Empty(t, later.Evaluate(context.Background(), tx).Matches)
	assert.Equal(t, 1, m.evaluations)
	assert.Equal(t, 1, m.flagged)
}

func TestBatchProcessor_PreservesInputOrder(t *testing.T) {
	txs := make([]domain.Transaction, 200)
	for i := range txs {
		tx := benignTx()
		tx.ID = fmt.Sprintf("tx-%03d", i)
		tx.Location = fmt.Sprintf("City %d", i%7)
		if i%3 == 0 {
			tx.IsVerified = false
		}
		txs[i] = tx
	}

	for _, workers := range []int{0, 1, 4, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			m := &recordingMetrics{}
			ev := NewEvaluator(DefaultRuleSet(), WithClock(fixedClock(testNow)), WithMetrics(m))
			proc := NewBatchProcessor(ev, workers, nil)

			results, err := proc.EvaluateAll(context.Background(), txs)

			require.NoError(t, err)
			require.Len(t, results, len(txs))
			for i, br := range results {
				assert.Equal(t, txs[i].ID, br.Result.TransactionID)
				assert.Equal(t, txs[i].Location, br.Location)
				assert.Equal(t, "Wednesday", br.Weekday)
				assert.Equal(t, Evaluate(txs[i], DefaultRuleSet(), testNow), br.Result)
			}
			assert.Equal(t, len(txs), m.evaluations)
			assert.Equal(t, []int{len(txs)}, m.batches)
		})
	}
}

func TestBatchProcessor_SingleReferenceTime(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return testNow.AddDate(0, 0, calls*10)
	}

	tx := benignTx()
	tx.AccountCreationDate = testNow
	txs := []domain.Transaction{tx, tx, tx, tx}

	results, err := NewBatchProcessor(NewEvaluator(DefaultRuleSet(), WithClock(clock)), 2, nil).
		EvaluateAll(context.Background(), txs)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	for _, br := range results {
		assert.Equal(t, []string{RuleNewAccount}, matchedIDs(br.Result))
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	results, err := NewBatchProcessor(NewEvaluator(DefaultRuleSet()), 4, nil).
		EvaluateAll(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchProcessor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	txs := []domain.Transaction{benignTx(), benignTx()}
	results, err := NewBatchProcessor(NewEvaluator(DefaultRuleSet()), 2, nil).EvaluateAll(ctx, txs)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)
}
