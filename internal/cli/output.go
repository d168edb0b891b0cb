package cli

import (
	"fmt"
	"strings"

	"github.com/mirchez/transaction-reconciler-sub001/internal/application/reconcile"
)

// PrintHeader prints the application header
func PrintHeader(accountKey, providerName string) {
	fmt.Printf("reconcile: account=%s provider=%s\n", accountKey, providerName)
}

// PrintSummary prints the reconciliation run summary
func PrintSummary(summary *reconcile.Summary, verbose bool) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: New=%d Rule=%d External=%d Matched=%d/%d ledger, %d/%d bank\n",
		summary.NewMatches,
		summary.RuleMatches,
		summary.ExternalMatches,
		summary.TotalMatched, summary.TotalLedger,
		summary.TotalMatched, summary.TotalBank)

	if summary.SkippedLowScore > 0 {
		fmt.Printf("Skipped %d candidate(s) below the accept threshold\n", summary.SkippedLowScore)
	}
	if summary.UnmatchedLedger > 0 || summary.UnmatchedBank > 0 {
		fmt.Printf("Unmatched: %d ledger entries, %d bank transactions\n",
			summary.UnmatchedLedger, summary.UnmatchedBank)
	}

	if verbose && len(summary.Matches) > 0 {
		fmt.Println("\nMatches:")
		for _, m := range summary.Matches {
			fmt.Printf("  - %s <-> %s score=%d source=%s (%s)\n",
				m.LedgerID, m.BankID, m.MatchScore, m.Source, m.Reasoning)
		}
	}

	if summary.NewMatches == 0 {
		fmt.Println("\nNo new matches. Records are already reconciled or nothing lines up.")
	} else {
		fmt.Println("\nReconciliation completed successfully.")
	}
}
