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

type incomeCmd struct {
	date     string
	account  string
	amount   string
	currency string
	category string
	peer     string
	note     string
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "record an income or spending" }
func (*incomeCmd) Usage() string {
	return `jld income -a <account> -m <amount> [-c <currency>] [-d <date>] [-cat <category>] [-peer <peer>] [-note <note>]

  Records a plain cash movement. Positive amounts are income, negative are
  spending.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the record, defaults to now.")
	f.StringVar(&c.account, "a", "", "Account id.")
	f.StringVar(&c.amount, "m", "", "Amount, signed.")
	f.StringVar(&c.currency, "c", "", "Currency, defaults to the configured reporting currency.")
	f.StringVar(&c.category, "cat", "", "Income/spending category id.")
	f.StringVar(&c.peer, "peer", "", "Counterparty.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *incomeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	currency := c.currency
	if currency == "" {
		currency = cfg.Currency
	}

	op := ledger.NewIncomeSpending(when, c.account, c.note, ledger.M(amount, currency), c.category, c.peer)
	op.ID = newID()
	return appendOperation(cfg, op)
}
