// Package dashboard summarizes batch evaluation results into the counts and
// groupings the fraud dashboard displays.
package dashboard

import (
	"cmp"
	"fraud_screener/internal/domain"
	"fraud_screener/internal/processor"
	"slices"
	"time"
)

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type WeekdayStatusCount struct {
	Weekday string        `json:"weekday"`
	Status  domain.Status `json:"status"`
	Count   int           `json:"count"`
}

type TableRow struct {
	TransactionID string        `json:"transaction_id"`
	Status        domain.Status `json:"status"`
	Details       string        `json:"details"`
}

type Summary struct {
	TotalTransactions  int                  `json:"total_transactions"`
	TotalFlagged       int                  `json:"total_flagged"`
	TotalCleared       int                  `json:"total_cleared"`
	TotalReviews       int                  `json:"total_reviews"`
	TotalRejections    int                  `json:"total_rejections"`
	ReasonCounts       []Count              `json:"reason_counts"`
	RejectReasonCounts []Count              `json:"reject_reason_counts"`
	FlaggedByLocation  []Count              `json:"flagged_by_location"`
	RejectedByLocation []Count              `json:"rejected_by_location"`
	StatusByWeekday    []WeekdayStatusCount `json:"status_by_weekday"`
	Table              []TableRow           `json:"table"`
}

// Summarize folds batch results into dashboard aggregates. Every list is
// sorted deterministically.
func Summarize(results []processor.BatchResult) Summary {
	var (
		s               = Summary{TotalTransactions: len(results), Table: make([]TableRow, 0, len(results))}
		reasons         = tally{}
		rejectReasons   = tally{}
		flaggedByLoc    = tally{}
		rejectedByLoc   = tally{}
		byWeekdayStatus = map[WeekdayStatusCount]int{}
	)

	for _, br := range results {
		res := br.Result
		status := res.Status()

		if status == domain.StatusFlagged {
			s.TotalFlagged++
			flaggedByLoc.add(br.Location)
		} else {
			s.TotalCleared++
		}

		for _, m := range res.Matches {
			reasons.add(m.Reason)
			switch m.Action {
			case domain.ActionReview:
				s.TotalReviews++
			case domain.ActionReject:
				s.TotalRejections++
				rejectReasons.add(m.Reason)
			}
		}

		if res.HasAction(domain.ActionReject) {
			rejectedByLoc.add(br.Location)
		}

		byWeekdayStatus[WeekdayStatusCount{Weekday: br.Weekday, Status: status}]++

		s.Table = append(s.Table, TableRow{
			TransactionID: res.TransactionID,
			Status:        status,
			Details:       res.Summary(),
		})
	}

	s.ReasonCounts = reasons.sorted()
	s.RejectReasonCounts = rejectReasons.sorted()
	s.FlaggedByLocation = flaggedByLoc.sorted()
	s.RejectedByLocation = rejectedByLoc.sorted()

	s.StatusByWeekday = make([]WeekdayStatusCount, 0, len(byWeekdayStatus))
	for k, n := range byWeekdayStatus {
		k.Count = n
		s.StatusByWeekday = append(s.StatusByWeekday, k)
	}
	slices.SortFunc(s.StatusByWeekday, func(a, b WeekdayStatusCount) int {
		return cmp.Or(
			cmp.Compare(weekdayIndex(a.Weekday), weekdayIndex(b.Weekday)),
			cmp.Compare(a.Weekday, b.Weekday),
			cmp.Compare(statusIndex(a.Status), statusIndex(b.Status)),
		)
	})

	return s
}

type tally map[string]int

func (t tally) add(key string) {
	t[key]++
}

// sorted orders by count descending, then key ascending.
func (t tally) sorted() []Count {
	out := make([]Count, 0, len(t))
	for k, n := range t {
		out = append(out, Count{Key: k, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Key, b.Key))
	})
	return out
}

// weekdayIndex puts Monday first; unknown names sort last.
func weekdayIndex(name string) int {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return (int(d) + 6) % 7
		}
	}
	return 7
}

func statusIndex(s domain.Status) int {
	if s == domain.StatusClear {
		return 0
	}
	return 1
}
