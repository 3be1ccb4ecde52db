package ledger

import "slices"

// DealsReport lists the realized deals of a period, newest last, with per
// currency totals.
type DealsReport struct {
	Account string // empty means all accounts
	From    Timestamp
	To      Timestamp
	Deals   []Deal
	Totals  []Money // realized profit, one entry per currency
	Fees    []Money // closing fees, one entry per currency
}

// NewDealsReport collects realized deals closed within [from, to] from the
// ledger. A zero from or to leaves that side unbounded.
func NewDealsReport(l *Ledger, account string, from, to Timestamp) *DealsReport {
	r := &DealsReport{Account: account, From: from, To: to}
	for deal := range l.AllDeals(account) {
		if !from.IsZero() && deal.Close.Time.Before(from) {
			continue
		}
		if !to.IsZero() && deal.Close.Time.After(to) {
			continue
		}
		r.Deals = append(r.Deals, deal)
		r.Totals = sumByCurrency(r.Totals, deal.Profit)
		r.Fees = sumByCurrency(r.Fees, deal.Fee)
	}
	return r
}

// MergeDealsReports combines per-group reports into one, re-sorting deals by
// close key.
func MergeDealsReports(reports ...*DealsReport) *DealsReport {
	merged := &DealsReport{}
	for _, r := range reports {
		if r == nil {
			continue
		}
		merged.Account = r.Account
		merged.From = r.From
		merged.To = r.To
		merged.Deals = append(merged.Deals, r.Deals...)
		for _, t := range r.Totals {
			merged.Totals = sumByCurrency(merged.Totals, t)
		}
		for _, f := range r.Fees {
			merged.Fees = sumByCurrency(merged.Fees, f)
		}
	}
	slices.SortFunc(merged.Deals, func(a, b Deal) int {
		return a.Close.Compare(b.Close)
	})
	return merged
}

// BalanceReport is the full state snapshot at the ledger's frontier: every
// cash balance and every open position.
type BalanceReport struct {
	Frontier Key
	Complete bool
	Cash     []CashRow
	Holdings []HoldingRow
}

// NewBalanceReport snapshots the ledger's derived state.
func NewBalanceReport(l *Ledger) *BalanceReport {
	return &BalanceReport{
		Frontier: l.Frontier(),
		Complete: l.IsComplete(),
		Cash:     l.CashBalances(),
		Holdings: l.Holdings(),
	}
}

// sumByCurrency accumulates an amount into its currency's bucket, keeping
// buckets sorted by currency code.
func sumByCurrency(totals []Money, amount Money) []Money {
	for i := range totals {
		if totals[i].Currency() == amount.Currency() {
			totals[i] = totals[i].Add(amount)
			return totals
		}
	}
	totals = append(totals, amount)
	slices.SortFunc(totals, func(a, b Money) int {
		return cmpString(a.Currency(), b.Currency())
	})
	return totals
}
