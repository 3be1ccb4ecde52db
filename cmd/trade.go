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

type tradeCmd struct {
	date        string
	account     string
	asset       string
	quantity    string
	price       string
	fee         string
	feeCurrency string
	settlement  string
	note        string
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "record a buy or sell" }
func (*tradeCmd) Usage() string {
	return `jld trade -a <account> -s <asset> -q <quantity> -p <price> [-fee <fee>] [-fee-currency <cur>] [-d <date>] [-settle <date>] [-note <note>]

  Records a trade. A positive quantity buys, a negative one sells. The price
  is per unit in the account currency.
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the trade, defaults to now.")
	f.StringVar(&c.account, "a", "", "Investment account id.")
	f.StringVar(&c.asset, "s", "", "Asset id or symbol.")
	f.StringVar(&c.quantity, "q", "", "Signed quantity.")
	f.StringVar(&c.price, "p", "", "Price per unit, in the account currency.")
	f.StringVar(&c.fee, "fee", "0", "Trade fee.")
	f.StringVar(&c.feeCurrency, "fee-currency", "", "Fee currency, defaults to the account currency.")
	f.StringVar(&c.settlement, "settle", "", "Settlement date.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *tradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	qty, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity %q: %v\n", c.quantity, err)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price %q: %v\n", c.price, err)
		return subcommands.ExitUsageError
	}
	fee, err := decimal.NewFromString(c.fee)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing fee %q: %v\n", c.fee, err)
		return subcommands.ExitUsageError
	}

	op := ledger.NewTrade(when, c.account, c.note, c.asset,
		ledger.Q(qty), ledger.M(price, ""), ledger.M(fee, c.feeCurrency))
	op.ID = newID()
	if c.settlement != "" {
		settle, err := ledger.ParseTimestamp(c.settlement)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing settlement date: %v\n", err)
			return subcommands.ExitUsageError
		}
		op.Settlement = settle
	}
	return appendOperation(cfg, op)
}
