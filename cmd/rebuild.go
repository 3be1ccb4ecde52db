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

type rebuildCmd struct {
	scratch bool
	since   string
	fast    bool
	strict  bool
}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "replay the journal into derived state" }
func (*rebuildCmd) Usage() string {
	return `jld rebuild [-scratch] [-since <date>] [-fast]

  Replays the journal into cash balances, lots and deals. Independent account
  groups replay concurrently. On a blocking error the pass stops at the
  offending record and reports it; everything before stays valid.
`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.scratch, "scratch", false, "Discard derived state and replay the full journal.")
	f.StringVar(&c.since, "since", "", "Discard derived state from this instant onward and replay from there.")
	f.BoolVar(&c.fast, "fast", false, "Skip consistency checks; the result is flagged unreliable.")
	f.BoolVar(&c.strict, "strict-categories", false, "Treat unresolved categories as blocking.")
}

func (c *rebuildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	opts := ledger.Options{Fast: c.fast, StrictCategories: c.strict}
	switch {
	case c.scratch:
		opts.Mode = ledger.FromScratch
	case c.since != "":
		since, err := ledger.ParseTimestamp(c.since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -since: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts.Mode = ledger.SinceTime
		opts.Since = since
	}

	results, err := replayAll(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	var entries []ledger.Entry
	for _, res := range results {
		entries = append(entries, res.Entries...)
		if res.State == ledger.PassFailed {
			status = subcommands.ExitFailure
		}
	}
	printMarkdown(renderer.LogMarkdown(entries))
	return status
}

// replayAll loads the journal and the reference store, replays every account
// group, and persists the resulting frontiers.
func replayAll(ctx context.Context, opts ledger.Options) ([]ledger.GroupResult, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	journal, err := DecodeJournal(cfg)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	results, err := ledger.RebuildAll(ctx, journal, store, opts, nil)
	if err != nil {
		return results, err
	}
	for _, res := range results {
		if err := store.SaveFrontier(res.Accounts[0], res.Frontier); err != nil {
			return results, err
		}
	}
	return results, nil
}
