package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// roundingTolerance is the acceptable per-lot drift, one cent, when a
// spin-off redistributes cost basis across rounded per-lot slices.
var roundingTolerance = decimal.New(1, -2)

// applyAction dispatches a corporate action to its subtype handler. All
// subtypes share the same preconditions: the position must be long and the
// declared quantity must cover it exactly. Partial coverage is ambiguous
// (which lots does the action touch?) and blocks the pass.
func (p *pass) applyAction(t CorporateAction) ([]posting, *ReplayError) {
	at := t.OrderKey()
	if _, rerr := p.account(t.Account, at); rerr != nil {
		return nil, rerr
	}
	asset, rerr := p.asset(t.Asset, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}

	queue := p.st.lots[posKey{t.Account, asset.ID}]
	net := queue.net()
	if net.IsNegative() {
		return nil, fail(ErrUnsupportedAction, at, t.Account, asset.ID,
			fmt.Sprintf("%s closes short trade", t.Subtype))
	}
	if !net.Equal(t.QtyBefore) {
		return nil, fail(ErrPartialCoverage, at, t.Account, asset.ID,
			fmt.Sprintf("position %s, action covers %s", net, t.QtyBefore))
	}

	switch t.Subtype {
	case Split:
		return p.applySplit(t, asset, queue)
	case SymbolChange:
		return p.applySymbolChange(t, asset, queue)
	case SpinOff:
		return p.applySpinOff(t, asset, queue)
	case Merger:
		return p.applyMerger(t, asset, queue)
	default:
		return nil, fail(ErrUnsupportedAction, at, t.Account, asset.ID, string(t.Subtype))
	}
}

// applySplit rescales every open lot by after/before. Each lot keeps its
// open instant and its total cost basis; only quantity and unit cost change.
func (p *pass) applySplit(t CorporateAction, asset Asset, queue lots) ([]posting, *ReplayError) {
	at := t.OrderKey()
	rescaled := queue.rescale(t.QtyBefore, t.QtyAfter)

	var ps []posting
	for i, old := range queue {
		ps = append(ps,
			lotClose{on: at, account: t.Account, asset: asset.ID, id: old.ID, quantity: old.Quantity.Abs()},
			lotOpen{
				on:       at,
				openedAt: old.Open,
				account:  t.Account,
				asset:    asset.ID,
				id:       lotID(at.Seq, i),
				quantity: rescaled[i].Quantity,
				unitCost: rescaled[i].UnitCost,
			},
		)
	}
	ps = append(ps, dealClose{on: at, deal: p.auditDeal(t, asset.ID, queue, DealSplit)})
	return ps, nil
}

// applySymbolChange moves every open lot to the new asset identity. Open
// instants and unit costs survive so FIFO order and basis are untouched.
func (p *pass) applySymbolChange(t CorporateAction, asset Asset, queue lots) ([]posting, *ReplayError) {
	at := t.OrderKey()
	newAsset, rerr := p.asset(t.NewAsset, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}

	var ps []posting
	for i, old := range queue {
		ps = append(ps,
			lotClose{on: at, account: t.Account, asset: asset.ID, id: old.ID, quantity: old.Quantity.Abs()},
			lotOpen{
				on:       at,
				openedAt: old.Open,
				account:  t.Account,
				asset:    newAsset.ID,
				id:       lotID(at.Seq, i),
				quantity: old.Quantity,
				unitCost: old.UnitCost,
			},
		)
	}
	ps = append(ps, dealClose{on: at, deal: p.auditDeal(t, asset.ID, queue, DealSymbolChange)})
	return ps, nil
}

// applySpinOff carves basisShare of the position's cost basis into a new
// asset. The original lots keep their quantities but give up part of their
// basis; the new position opens as a single lot at the action's instant.
//
// Basis moves per lot with cent rounding. The sum of the rounded slices must
// stay within tolerance of the exact total, otherwise value silently leaks
// between positions and the pass blocks. Fast mode skips the check.
func (p *pass) applySpinOff(t CorporateAction, asset Asset, queue lots) ([]posting, *ReplayError) {
	at := t.OrderKey()
	newAsset, rerr := p.asset(t.NewAsset, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}
	if !t.QtyAfter.IsPositive() {
		return nil, fail(ErrUnsupportedAction, at, t.Account, newAsset.ID, "spin-off quantity must be positive")
	}

	exact := queue.costBasis().Mul(Q(t.BasisShare))
	var ps []posting
	moved := M(0, exact.Currency())
	for i, old := range queue {
		slice := old.UnitCost.Mul(old.Quantity.Abs()).Mul(Q(t.BasisShare)).Round(2)
		kept := old.UnitCost.Mul(old.Quantity.Abs()).Sub(slice)
		ps = append(ps,
			lotClose{on: at, account: t.Account, asset: asset.ID, id: old.ID, quantity: old.Quantity.Abs()},
			lotOpen{
				on:       at,
				openedAt: old.Open,
				account:  t.Account,
				asset:    asset.ID,
				id:       lotID(at.Seq, i),
				quantity: old.Quantity,
				unitCost: kept.Div(old.Quantity.Abs()),
			},
		)
		moved = moved.Add(slice)
	}
	if !p.opts.Fast {
		drift := moved.Sub(exact).Abs()
		limit := roundingTolerance.Mul(decimal.NewFromInt(int64(len(queue))))
		if drift.value.GreaterThan(limit) {
			return nil, fail(ErrRoundingDrift, at, t.Account, asset.ID,
				fmt.Sprintf("moved %s of %s", moved, exact))
		}
	}
	ps = append(ps, lotOpen{
		on:       at,
		openedAt: at,
		account:  t.Account,
		asset:    newAsset.ID,
		id:       lotID(at.Seq, len(queue)),
		quantity: t.QtyAfter,
		unitCost: moved.Div(t.QtyAfter),
	})
	ps = append(ps, dealClose{on: at, deal: p.auditDeal(t, asset.ID, queue, DealSpinOff)})
	return ps, nil
}

// applyMerger exchanges the whole position for the new asset at the declared
// ratio. The full cost basis carries over into a single lot opened at the
// action's instant.
func (p *pass) applyMerger(t CorporateAction, asset Asset, queue lots) ([]posting, *ReplayError) {
	at := t.OrderKey()
	newAsset, rerr := p.asset(t.NewAsset, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}
	if !t.QtyAfter.IsPositive() {
		return nil, fail(ErrUnsupportedAction, at, t.Account, newAsset.ID, "merger quantity must be positive")
	}

	basis := queue.costBasis()
	var ps []posting
	for _, old := range queue {
		ps = append(ps, lotClose{on: at, account: t.Account, asset: asset.ID, id: old.ID, quantity: old.Quantity.Abs()})
	}
	ps = append(ps, lotOpen{
		on:       at,
		openedAt: at,
		account:  t.Account,
		asset:    newAsset.ID,
		id:       lotID(at.Seq, 0),
		quantity: t.QtyAfter,
		unitCost: basis.Div(t.QtyAfter),
	})
	ps = append(ps, dealClose{on: at, deal: p.auditDeal(t, asset.ID, queue, DealMerger)})
	return ps, nil
}

// auditDeal records a zero-profit deal for a corporate action so reporting
// history stays continuous across the event.
func (p *pass) auditDeal(t CorporateAction, asset string, queue lots, flag DealFlag) Deal {
	at := t.OrderKey()
	open := at
	if len(queue) > 0 {
		open = queue[0].Open
	}
	basis := queue.costBasis()
	avg := M(0, basis.Currency())
	if !t.QtyBefore.IsZero() {
		avg = basis.Div(t.QtyBefore)
	}
	p.deals++
	return Deal{
		Account:    t.Account,
		Asset:      asset,
		Open:       open,
		Close:      at,
		OpenPrice:  avg,
		ClosePrice: avg,
		Quantity:   t.QtyBefore,
		Fee:        M(0, basis.Currency()),
		Profit:     M(0, basis.Currency()),
		Flag:       flag,
	}
}
