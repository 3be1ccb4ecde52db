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

type transferCmd struct {
	date       string
	from       string
	to         string
	amount     string
	currency   string
	fee        string
	feeAccount string
	note       string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "record a cash transfer between accounts" }
func (*transferCmd) Usage() string {
	return `jld transfer -from <account> -to <account> -m <amount> [-c <currency>] [-fee <fee>] [-fee-account <account>] [-d <date>] [-note <note>]

  Records a cash transfer. Leave -from or -to empty for an external side
  (a deposit or a withdrawal).
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the transfer, defaults to now.")
	f.StringVar(&c.from, "from", "", "Source account id, empty for external.")
	f.StringVar(&c.to, "to", "", "Destination account id, empty for external.")
	f.StringVar(&c.amount, "m", "", "Amount, positive.")
	f.StringVar(&c.currency, "c", "", "Currency, defaults to the configured reporting currency.")
	f.StringVar(&c.fee, "fee", "0", "Transfer fee.")
	f.StringVar(&c.feeAccount, "fee-account", "", "Account charged with the fee, defaults to the source.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fee, err := decimal.NewFromString(c.fee)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing fee %q: %v\n", c.fee, err)
		return subcommands.ExitUsageError
	}
	currency := c.currency
	if currency == "" {
		currency = cfg.Currency
	}

	op := ledger.NewTransfer(when, c.note, c.from, c.to,
		ledger.M(amount, currency), ledger.M(fee, currency), c.feeAccount)
	op.ID = newID()
	return appendOperation(cfg, op)
}
