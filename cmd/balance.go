package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/finlog/ledger"
	"github.com/finlog/ledger/renderer"
)

type balanceCmd struct {
	fast bool
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show cash balances and open positions" }
func (*balanceCmd) Usage() string {
	return `jld balance [-fast]

  Replays the journal and prints every cash balance and open position at the
  frontier.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fast, "fast", false, "Skip consistency checks; the result is flagged unreliable.")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	results, err := replayAll(ctx, ledger.Options{Mode: ledger.FromScratch, Fast: c.fast})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// Merge the per-group snapshots into one report. The frontier shown is
	// the earliest one, the only point every group is consistent at.
	merged := &ledger.BalanceReport{Complete: true}
	status := subcommands.ExitSuccess
	for _, res := range results {
		report := ledger.NewBalanceReport(res.Ledger)
		merged.Cash = append(merged.Cash, report.Cash...)
		merged.Holdings = append(merged.Holdings, report.Holdings...)
		if merged.Frontier.IsZero() || report.Frontier.Less(merged.Frontier) {
			merged.Frontier = report.Frontier
		}
		if !report.Complete {
			merged.Complete = false
			status = subcommands.ExitFailure
		}
		for _, e := range res.Entries {
			if e.Severity == ledger.Blocking {
				fmt.Fprintln(os.Stderr, e)
			}
		}
	}
	printMarkdown(renderer.RenderBalance(renderer.NewBalanceData(merged)))
	return status
}
