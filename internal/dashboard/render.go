package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText prints the summary as aligned plain-text sections.
func WriteText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Summary")
	fmt.Fprintf(tw, "Total Transactions\t%d\n", s.TotalTransactions)
	fmt.Fprintf(tw, "Total Flagged\t%d\n", s.TotalFlagged)
	fmt.Fprintf(tw, "Total Cleared\t%d\n", s.TotalCleared)
	fmt.Fprintf(tw, "Total Reviews\t%d\n", s.TotalReviews)
	fmt.Fprintf(tw, "Total Rejections\t%d\n", s.TotalRejections)

	writeCounts(tw, "Reasons for Flagged Transactions", "REASON", s.ReasonCounts)
	writeCounts(tw, "Reasons for Rejected Transactions", "REASON", s.RejectReasonCounts)
	writeCounts(tw, "Flagged Transactions by Location", "LOCATION", s.FlaggedByLocation)
	writeCounts(tw, "Rejected Transactions by Location", "LOCATION", s.RejectedByLocation)

	fmt.Fprintln(tw, "\nTransaction Status by Weekday")
	fmt.Fprintln(tw, "WEEKDAY\tSTATUS\tCOUNT")
	for _, c := range s.StatusByWeekday {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Weekday, c.Status, c.Count)
	}

	fmt.Fprintln(tw, "\nFraud Evaluation Table")
	fmt.Fprintln(tw, "TRANSACTION ID\tSTATUS\tEVALUATION DETAILS")
	for _, row := range s.Table {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.TransactionID, row.Status, row.Details)
	}

	return tw.Flush()
}

func writeCounts(w io.Writer, title, keyHeader string, counts []Count) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintf(w, "%s\tCOUNT\n", keyHeader)
	if len(counts) == 0 {
		fmt.Fprintln(w, "(none)\t0")
	}
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Key, c.Count)
	}
}

func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
