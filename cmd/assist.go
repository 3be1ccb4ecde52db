package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/finlog/ledger"
	"github.com/finlog/ledger/agent"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask the AI assistant about the last rebuild" }
func (*assistCmd) Usage() string {
	return `jld assist [<question>]

  Runs a rebuild pass and, when it fails, asks the assistant to explain the
  blocking error and suggest remediation steps. With arguments, forwards
  them as a free-form question instead.

  Requires GEMINI_API_KEY in the environment.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := agent.New(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing assistant:", err)
		return subcommands.ExitFailure
	}

	if f.NArg() > 0 {
		answer, err := a.Ask(ctx, strings.Join(f.Args(), " "))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Assistant failed:", err)
			return subcommands.ExitFailure
		}
		printMarkdown(answer)
		return subcommands.ExitSuccess
	}

	results, err := replayAll(ctx, ledger.Options{Mode: ledger.FromScratch})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var entries []ledger.Entry
	var replayErr *ledger.ReplayError
	for _, res := range results {
		entries = append(entries, res.Entries...)
		if res.Err != nil && replayErr == nil {
			replayErr = res.Err
		}
	}
	if replayErr == nil {
		fmt.Println("The last rebuild pass completed, nothing to explain.")
		return subcommands.ExitSuccess
	}

	answer, err := a.Explain(ctx, entries, replayErr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(answer)
	return subcommands.ExitSuccess
}
