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

type dealsCmd struct {
	account string
	from    string
	to      string
}

func (*dealsCmd) Name() string     { return "deals" }
func (*dealsCmd) Synopsis() string { return "list realized deals" }
func (*dealsCmd) Usage() string {
	return `jld deals [-a <account>] [-from <date>] [-to <date>]

  Replays the journal and lists realized deals with their P/L, oldest first.
`
}

func (c *dealsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Restrict to one account.")
	f.StringVar(&c.from, "from", "", "Start of the period.")
	f.StringVar(&c.to, "to", "", "End of the period.")
}

func (c *dealsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from, to ledger.Timestamp
	var err error
	if c.from != "" {
		if from, err = ledger.ParseTimestamp(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.to != "" {
		if to, err = ledger.ParseTimestamp(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	results, err := replayAll(ctx, ledger.Options{Mode: ledger.FromScratch})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var reports []*ledger.DealsReport
	for _, res := range results {
		reports = append(reports, ledger.NewDealsReport(res.Ledger, c.account, from, to))
	}
	printMarkdown(renderer.DealsMarkdown(ledger.MergeDealsReports(reports...)))
	return subcommands.ExitSuccess
}
