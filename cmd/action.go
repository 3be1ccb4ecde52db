package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/finlog/ledger"
)

type actionCmd struct {
	date     string
	account  string
	subtype  string
	asset    string
	before   string
	after    string
	newAsset string
	share    string
	note     string
}

func (*actionCmd) Name() string     { return "action" }
func (*actionCmd) Synopsis() string { return "record a corporate action" }
func (*actionCmd) Usage() string {
	return `jld action -a <account> -t split|symbol-change|spin-off|merger -s <asset> -before <qty> -after <qty> [-new <asset>] [-share <fraction>] [-d <date>] [-note <note>]

  Records a corporate action on an open position. The before quantity must
  cover the open position exactly. Spin-offs move -share of the cost basis
  to the new asset.
`
}

func (c *actionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the action, defaults to now.")
	f.StringVar(&c.account, "a", "", "Account id.")
	f.StringVar(&c.subtype, "t", "", "Action type: split, symbol-change, spin-off or merger.")
	f.StringVar(&c.asset, "s", "", "Asset before the action.")
	f.StringVar(&c.before, "before", "", "Quantity before the action.")
	f.StringVar(&c.after, "after", "", "Quantity after the action.")
	f.StringVar(&c.newAsset, "new", "", "Asset after the action (symbol change, spin-off, merger).")
	f.StringVar(&c.share, "share", "0", "Fraction of cost basis moved, spin-off only.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *actionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	when, err := parseWhen(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	before, err := decimal.NewFromString(c.before)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing before quantity %q: %v\n", c.before, err)
		return subcommands.ExitUsageError
	}
	after, err := decimal.NewFromString(c.after)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing after quantity %q: %v\n", c.after, err)
		return subcommands.ExitUsageError
	}

	var op ledger.CorporateAction
	switch ledger.ActionType(c.subtype) {
	case ledger.Split:
		op = ledger.NewSplit(when, c.account, c.note, c.asset, ledger.Q(before), ledger.Q(after))
	case ledger.SymbolChange:
		op = ledger.NewSymbolChange(when, c.account, c.note, c.asset, c.newAsset, ledger.Q(before))
	case ledger.SpinOff:
		share, err := decimal.NewFromString(c.share)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing basis share %q: %v\n", c.share, err)
			return subcommands.ExitUsageError
		}
		op = ledger.NewSpinOff(when, c.account, c.note, c.asset, c.newAsset, ledger.Q(before), ledger.Q(after), share)
	case ledger.Merger:
		op = ledger.NewMerger(when, c.account, c.note, c.asset, c.newAsset, ledger.Q(before), ledger.Q(after))
	default:
		fmt.Fprintf(os.Stderr, "Unknown action type %q\n", c.subtype)
		return subcommands.ExitUsageError
	}
	op.ID = newID()
	return appendOperation(cfg, op)
}
