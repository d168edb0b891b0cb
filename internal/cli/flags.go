package cli

import (
	"flag"
)

// ReconcileFlags are the flags for the reconcile command.
type ReconcileFlags struct {
	Account   string
	DBPath    string
	Provider  string
	Threshold int
	Verbose   bool
}

// ParseReconcileFlags parses command line flags for the reconcile command.
func ParseReconcileFlags() ReconcileFlags {
	var flags ReconcileFlags
	flag.StringVar(&flags.Account, "account", "", "Account key to reconcile (required)")
	flag.StringVar(&flags.DBPath, "db", "", "Database path (overrides config)")
	flag.StringVar(&flags.Provider, "provider", "", "Scoring provider: heuristic, openai or none (overrides config)")
	flag.IntVar(&flags.Threshold, "threshold", 0, "Accept threshold 0-100 for external scores (overrides config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
