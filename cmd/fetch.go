package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/finlog/ledger/quotefeed"
)

type fetchCmd struct {
	date string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch quotes and exchange rates into the reference store" }
func (*fetchCmd) Usage() string {
	return `jld fetch [-d <date>]

  Fetches every quote and rate source configured in jld.toml and stores the
  values stamped at the given date, defaulting to now.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Instant to stamp the fetched values with, defaults to now.")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(cfg.Quotes) == 0 && len(cfg.Rates) == 0 {
		fmt.Fprintln(os.Stderr, "No quote or rate sources configured.")
		return subcommands.ExitSuccess
	}
	when, err := parseWhen(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	store, err := OpenStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	feed := quotefeed.New(store, Logger())
	if err := feed.FetchAll(ctx, cfg.Quotes, cfg.Rates, when); err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Fetched %d quotes and %d rates at %s\n", len(cfg.Quotes), len(cfg.Rates), when)
	return subcommands.ExitSuccess
}
