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

type dividendCmd struct {
	date     string
	account  string
	asset    string
	subtype  string
	gross    string
	tax      string
	currency string
	shares   string
	note     string
}

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a dividend or interest payment" }
func (*dividendCmd) Usage() string {
	return `jld dividend -a <account> -s <asset> [-t cash|interest|stock] [-m <gross>] [-tax <tax>] [-shares <n>] [-c <currency>] [-d <date>] [-note <note>]

  Records a dividend. Cash dividends and bond interest credit gross minus
  tax; stock dividends pay in shares (-shares) valued at the asset's quote.
`
}

func (c *dividendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the payment, defaults to now.")
	f.StringVar(&c.account, "a", "", "Account id.")
	f.StringVar(&c.asset, "s", "", "Asset id or symbol.")
	f.StringVar(&c.subtype, "t", "cash", "Dividend type: cash, interest or stock.")
	f.StringVar(&c.gross, "m", "0", "Gross amount.")
	f.StringVar(&c.tax, "tax", "0", "Tax withheld at source.")
	f.StringVar(&c.currency, "c", "", "Currency, defaults to the configured reporting currency.")
	f.StringVar(&c.shares, "shares", "0", "Share count, stock dividends only.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *dividendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	gross, err := decimal.NewFromString(c.gross)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing gross amount %q: %v\n", c.gross, err)
		return subcommands.ExitUsageError
	}
	tax, err := decimal.NewFromString(c.tax)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing tax %q: %v\n", c.tax, err)
		return subcommands.ExitUsageError
	}
	currency := c.currency
	if currency == "" {
		currency = cfg.Currency
	}

	var op ledger.Dividend
	switch ledger.DividendType(c.subtype) {
	case ledger.CashDividend, ledger.BondInterest:
		op = ledger.NewDividend(when, c.account, c.note, c.asset,
			ledger.DividendType(c.subtype), ledger.M(gross, currency), ledger.M(tax, currency))
	case ledger.StockDividend:
		shares, err := decimal.NewFromString(c.shares)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing shares %q: %v\n", c.shares, err)
			return subcommands.ExitUsageError
		}
		op = ledger.NewStockDividend(when, c.account, c.note, c.asset,
			ledger.Q(shares), ledger.M(tax, currency))
	default:
		fmt.Fprintf(os.Stderr, "Unknown dividend type %q\n", c.subtype)
		return subcommands.ExitUsageError
	}
	op.ID = newID()
	return appendOperation(cfg, op)
}
