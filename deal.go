package ledger

// DealFlag marks deals produced by corporate actions rather than trades.
// Such deals realize no profit but keep the reporting history continuous.
type DealFlag int

const (
	DealRegular DealFlag = iota
	DealSplit
	DealSymbolChange
	DealSpinOff
	DealMerger
)

func (f DealFlag) String() string {
	switch f {
	case DealRegular:
		return "regular"
	case DealSplit:
		return "split"
	case DealSymbolChange:
		return "symbol-change"
	case DealSpinOff:
		return "spin-off"
	case DealMerger:
		return "merger"
	default:
		return "unknown"
	}
}

// Deal is one realized open-close pairing: a slice of an open lot matched
// against a closing operation. Deals are entirely derived state, destroyed
// and recreated by every rebuild pass crossing their close instant.
type Deal struct {
	Account    string
	Asset      string
	Open       Key
	Close      Key
	OpenPrice  Money // unit cost basis of the matched lot slice
	ClosePrice Money
	Quantity   Quantity // positive for long round-trips, negative for short
	Fee        Money    // closing fee allocated to this pairing
	Profit     Money
	ProfitPct  float64
	Flag       DealFlag
}

// realizedProfit computes the profit of a (lot, close) pairing. The sign of
// qty distinguishes long deals from short ones: closing a long earns
// (close - open), closing a short earns (open - close).
func realizedProfit(openPrice, closePrice Money, qty Quantity, fee Money) Money {
	gross := closePrice.Sub(openPrice).Mul(qty)
	return gross.Sub(fee)
}

// profitPercent reports the realized return against the matched cost basis.
func profitPercent(profit, openPrice Money, qty Quantity) float64 {
	basis := openPrice.Mul(qty.Abs())
	if basis.IsZero() {
		return 0
	}
	return 100 * profit.AsFloat() / basis.AsFloat()
}
