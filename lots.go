package ledger

import "fmt"

// Lot is a discrete open quantity of an asset with its own cost basis and
// open instant. Lots for one (account, asset) form a queue consumed oldest
// first. All lots in a queue share the sign of the position.
type Lot struct {
	ID       string // deterministic: "op<seq>.<n>" of the opening record
	Account  string
	Asset    string
	Open     Key
	Quantity Quantity // signed, decreasing toward zero on closes
	UnitCost Money    // cost basis per unit
}

type lots []Lot

// lotID builds the deterministic identity of the n-th lot opened by the
// record with the given sequence id. Two rebuilds of the same journal assign
// identical ids, which keeps derived state byte-identical.
func lotID(seq int64, n int) string {
	return fmt.Sprintf("op%d.%d", seq, n)
}

// net returns the signed sum of open quantities, the position.
func (l lots) net() Quantity {
	var total Quantity
	for _, lot := range l {
		total = total.Add(lot.Quantity)
	}
	return total
}

// costBasis returns the total remaining cost basis of the queue.
func (l lots) costBasis() Money {
	var total Money
	for _, lot := range l {
		total = total.Add(lot.UnitCost.Mul(lot.Quantity.Abs()))
	}
	return total
}

// lotMatch is one (lot, close) pairing produced by FIFO matching.
type lotMatch struct {
	lot     Lot      // the lot as it was before this match
	matched Quantity // magnitude matched, always positive
}

// consume matches a closing magnitude against the queue, oldest lot first,
// splitting the last lot when the close is smaller than its remainder. It
// returns the matches, the surviving queue, and whatever magnitude could not
// be matched because the queue ran out.
func (l lots) consume(magnitude Quantity) (matches []lotMatch, remaining lots, leftover Quantity) {
	leftover = magnitude
	for i, lot := range l {
		if leftover.IsZero() {
			remaining = append(remaining, l[i:]...)
			break
		}
		size := lot.Quantity.Abs()
		if size.GreaterThan(leftover) {
			// Partial close of this lot.
			matches = append(matches, lotMatch{lot: lot, matched: leftover})
			sign := Q(int64(lot.Quantity.Sign()))
			lot.Quantity = lot.Quantity.Sub(leftover.Mul(sign))
			remaining = append(remaining, lot)
			leftover = Q(0)
		} else {
			// Full close of this lot.
			matches = append(matches, lotMatch{lot: lot, matched: size})
			leftover = leftover.Sub(size)
		}
	}
	return matches, remaining, leftover
}

// rescale multiplies every open quantity by after/before, used by splits.
// Cost basis per lot is preserved: the unit cost shrinks by the same ratio.
func (l lots) rescale(before, after Quantity) lots {
	out := make(lots, 0, len(l))
	for _, lot := range l {
		total := lot.UnitCost.Mul(lot.Quantity.Abs())
		lot.Quantity = lot.Quantity.Mul(after).Div(before)
		if !lot.Quantity.IsZero() {
			lot.UnitCost = total.Div(lot.Quantity.Abs())
		}
		out = append(out, lot)
	}
	return out
}
