package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/finlog/ledger/cmd"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		commander.Register(c, "")
		sub[c.Name()] = &complete.Command{Args: predict.Something}
	}
	// No-op unless invoked by the shell completion hook (COMP_LINE set).
	(&complete.Command{Sub: sub}).Complete("jld")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
