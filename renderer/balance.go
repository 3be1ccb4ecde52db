package renderer

import "github.com/finlog/ledger"

// BalanceData is the template-friendly view of a balance report.
type BalanceData struct {
	Frontier string
	Complete bool
	Cash     []CashLine
	Holdings []HoldingLine
}

// CashLine is one cash balance row, preformatted.
type CashLine struct {
	Account  string
	Currency string
	Balance  string
}

// HoldingLine is one open position row, preformatted.
type HoldingLine struct {
	Account   string
	Asset     string
	Quantity  string
	CostBasis string
	AvgCost   string
}

// NewBalanceData flattens a balance report into strings the templates can
// print directly.
func NewBalanceData(r *ledger.BalanceReport) *BalanceData {
	d := &BalanceData{
		Frontier: r.Frontier.String(),
		Complete: r.Complete,
	}
	if r.Frontier.IsZero() {
		d.Frontier = "empty"
	}
	for _, row := range r.Cash {
		d.Cash = append(d.Cash, CashLine{
			Account:  row.Account,
			Currency: row.Currency,
			Balance:  row.Balance.String(),
		})
	}
	for _, row := range r.Holdings {
		d.Holdings = append(d.Holdings, HoldingLine{
			Account:   row.Account,
			Asset:     row.Asset,
			Quantity:  row.Quantity.String(),
			CostBasis: row.CostBasis.String(),
			AvgCost:   row.AvgCost.String(),
		})
	}
	return d
}
