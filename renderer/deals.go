package renderer

import (
	"fmt"
	"strings"

	"github.com/finlog/ledger"
)

// DealsMarkdown renders a deals report as a markdown table with per-currency
// totals.
func DealsMarkdown(r *ledger.DealsReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Deals%s\n\n", dealsScope(r))
	if len(r.Deals) == 0 {
		fmt.Fprintln(&b, "No realized deals in this period.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Asset | Open | Close | Qty | Open Price | Close Price | Fee | P/L | P/L % |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, d := range r.Deals {
		asset := d.Asset
		if d.Flag != ledger.DealRegular {
			asset = fmt.Sprintf("%s (%s)", d.Asset, d.Flag)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %.2f%% |\n",
			asset,
			d.Open.Time, d.Close.Time,
			d.Quantity,
			d.OpenPrice, d.ClosePrice,
			d.Fee,
			d.Profit.SignedString(),
			d.ProfitPct,
		)
	}

	fmt.Fprint(&b, "\n## Totals\n\n")
	for i, total := range r.Totals {
		fmt.Fprintf(&b, "- Realized P/L: **%s** (fees %s)\n", total.SignedString(), r.Fees[i])
	}
	return b.String()
}

// LogMarkdown renders the entries of a rebuild pass, one line each.
func LogMarkdown(entries []ledger.Entry) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Rebuild log\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	return b.String()
}

func dealsScope(r *ledger.DealsReport) string {
	var parts []string
	if r.Account != "" {
		parts = append(parts, "for "+r.Account)
	}
	if !r.From.IsZero() {
		parts = append(parts, "from "+r.From.String())
	}
	if !r.To.IsZero() {
		parts = append(parts, "to "+r.To.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
