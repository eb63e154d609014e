/*
Package notify renders announcements into emails, delivers them over SMTP and
prints the end-of-run console report.
*/
package notify

import (
	"fmt"
	"io"

	"github.com/shanehull/oslonotify/internal/types"
)

// ReportRun prints a human readable summary of a run to w.
func ReportRun(w io.Writer, summary *types.RunSummary, storeLocation string) {
	if summary.Matched == 0 {
		fmt.Fprintln(w, "\n-------------------------------------------")
		fmt.Fprintf(w, "No new announcements for any subscriber (%d announcements, %d subscribers, %d already notified).\n",
			summary.Announcements, summary.Subscribers, summary.AlreadyNotified)
		fmt.Fprintln(w, "-------------------------------------------")
		return
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "✅ %d SENT, %d FAILED\n", summary.Sent, summary.Failed)
	fmt.Fprintln(w, "===========================================")

	for i, d := range summary.Deliveries {
		status := "sent"
		if d.Err != nil {
			status = fmt.Sprintf("FAILED: %v", d.Err)
		}

		fmt.Fprintf(w, "\n--- DELIVERY #%d ---\n", i+1)
		fmt.Fprintf(w, "To:      %s\n", d.Address)
		fmt.Fprintf(w, "Ticker:  %s\n", d.Ticker)
		fmt.Fprintf(w, "Message: %d\n", d.Key.AnnouncementID)
		if d.Subject != "" {
			fmt.Fprintf(w, "Subject: %s\n", d.Subject)
		}
		fmt.Fprintf(w, "Status:  %s\n", status)
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "Run %s complete. Notifications recorded in %s.\n", summary.RunID, storeLocation)
	fmt.Fprintln(w, "===========================================")
}
