package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplit_RoundTrip(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(50), M(20, "EUR"), Money{}),
		NewSplit(on(2), "broker", "2:1", "alpha", Q(50), Q(100)),
		NewSplit(on(3), "broker", "1:2", "alpha", Q(100), Q(50)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassComplete {
		t.Fatalf("State = %s, want complete (err: %v)", res.State, res.Err)
	}

	// Two splits cancel out exactly.
	lots := res.Ledger.OpenLots("broker", "alpha")
	if len(lots) != 1 {
		t.Fatalf("got %d open lots, want 1", len(lots))
	}
	if !lots[0].Quantity.Equal(Q(50)) || !lots[0].UnitCost.Equal(M(20, "EUR")) {
		t.Errorf("lot = %s @ %s, want 50 @ 20", lots[0].Quantity, lots[0].UnitCost)
	}
	// The open instant survives both splits, FIFO order is untouched.
	if lots[0].Open != K(on(1), 1) {
		t.Errorf("lot open = %s, want the original buy", lots[0].Open)
	}

	// Each split leaves a zero-profit audit deal.
	deals := res.Ledger.Deals()
	if len(deals) != 2 {
		t.Fatalf("got %d deals, want 2", len(deals))
	}
	for _, d := range deals {
		if d.Flag != DealSplit {
			t.Errorf("deal flag = %s, want split", d.Flag)
		}
		if !d.Profit.IsZero() {
			t.Errorf("audit deal profit = %s, want 0", d.Profit)
		}
	}
}

func TestSplit_MidwayBasis(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(50), M(20, "EUR"), Money{}),
		NewSplit(on(2), "broker", "", "alpha", Q(50), Q(100)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassComplete {
		t.Fatalf("State = %s, want complete (err: %v)", res.State, res.Err)
	}
	lots := res.Ledger.OpenLots("broker", "alpha")
	if len(lots) != 1 || !lots[0].Quantity.Equal(Q(100)) || !lots[0].UnitCost.Equal(M(10, "EUR")) {
		t.Fatalf("lots = %v, want one lot 100 @ 10", lots)
	}
}

func TestAction_PartialCoverage(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(50), M(20, "EUR"), Money{}),
		NewSplit(on(2), "broker", "undercount", "alpha", Q(40), Q(80)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassFailed || res.Err.Code != ErrPartialCoverage {
		t.Fatalf("got %s / %v, want failed / ErrPartialCoverage", res.State, res.Err)
	}
	// The position is untouched.
	if pos := res.Ledger.Position("broker", "alpha"); !pos.Equal(Q(50)) {
		t.Errorf("Position = %s, want 50", pos)
	}
}

func TestAction_ShortPosition(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "short", "alpha", Q(-10), M(10, "EUR"), Money{}),
		NewSplit(on(2), "broker", "", "alpha", Q(-10), Q(-20)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassFailed || res.Err.Code != ErrUnsupportedAction {
		t.Fatalf("got %s / %v, want failed / ErrUnsupportedAction", res.State, res.Err)
	}
}

func TestSymbolChange(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(30), M(15, "EUR"), Money{}),
		NewSymbolChange(on(2), "broker", "rename", "alpha", "beta", Q(30)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassComplete {
		t.Fatalf("State = %s, want complete (err: %v)", res.State, res.Err)
	}
	if pos := res.Ledger.Position("broker", "alpha"); !pos.IsZero() {
		t.Errorf("old position = %s, want 0", pos)
	}
	lots := res.Ledger.OpenLots("broker", "beta")
	if len(lots) != 1 {
		t.Fatalf("got %d lots under the new symbol, want 1", len(lots))
	}
	// Identity changes, cost basis and open instant do not.
	if !lots[0].Quantity.Equal(Q(30)) || !lots[0].UnitCost.Equal(M(15, "EUR")) {
		t.Errorf("lot = %s @ %s, want 30 @ 15", lots[0].Quantity, lots[0].UnitCost)
	}
	if lots[0].Open != K(on(1), 1) {
		t.Errorf("lot open = %s, want the original buy", lots[0].Open)
	}

	deals := res.Ledger.Deals()
	if len(deals) != 1 || deals[0].Flag != DealSymbolChange {
		t.Fatalf("deals = %v, want one symbol-change audit deal", deals)
	}
}

func TestSpinOff(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(100), M(10, "EUR"), Money{}),
		NewSpinOff(on(2), "broker", "carve out", "alpha", "beta", Q(100), Q(10), decimal.NewFromFloat(0.2)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassComplete {
		t.Fatalf("State = %s, want complete (err: %v)", res.State, res.Err)
	}

	// 20% of the 1000 basis moves: kept 100 @ 8, new 10 @ 20.
	kept := res.Ledger.OpenLots("broker", "alpha")
	if len(kept) != 1 || !kept[0].Quantity.Equal(Q(100)) || !kept[0].UnitCost.Equal(M(8, "EUR")) {
		t.Fatalf("kept lots = %v, want one lot 100 @ 8", kept)
	}
	if kept[0].Open != K(on(1), 1) {
		t.Errorf("kept lot open = %s, want the original buy", kept[0].Open)
	}
	carved := res.Ledger.OpenLots("broker", "beta")
	if len(carved) != 1 || !carved[0].Quantity.Equal(Q(10)) || !carved[0].UnitCost.Equal(M(20, "EUR")) {
		t.Fatalf("carved lots = %v, want one lot 10 @ 20", carved)
	}
	// The new position opens at the action's instant.
	if carved[0].Open != K(on(2), 2) {
		t.Errorf("carved lot open = %s, want the action", carved[0].Open)
	}

	deals := res.Ledger.Deals()
	if len(deals) != 1 || deals[0].Flag != DealSpinOff || !deals[0].Profit.IsZero() {
		t.Fatalf("deals = %v, want one zero-profit spin-off audit deal", deals)
	}
}

func TestMerger(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(10), M(10, "EUR"), Money{}),
		NewTrade(on(2), "broker", "", "alpha", Q(10), M(20, "EUR"), Money{}),
		NewMerger(on(3), "broker", "exchange", "alpha", "beta", Q(20), Q(5)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassComplete {
		t.Fatalf("State = %s, want complete (err: %v)", res.State, res.Err)
	}
	if pos := res.Ledger.Position("broker", "alpha"); !pos.IsZero() {
		t.Errorf("old position = %s, want 0", pos)
	}
	// The whole 300 basis lands on 5 new units.
	lots := res.Ledger.OpenLots("broker", "beta")
	if len(lots) != 1 || !lots[0].Quantity.Equal(Q(5)) || !lots[0].UnitCost.Equal(M(60, "EUR")) {
		t.Fatalf("lots = %v, want one lot 5 @ 60", lots)
	}

	deals := res.Ledger.Deals()
	if len(deals) != 1 || deals[0].Flag != DealMerger {
		t.Fatalf("deals = %v, want one merger audit deal", deals)
	}
	if !deals[0].Quantity.Equal(Q(20)) {
		t.Errorf("audit deal quantity = %s, want 20", deals[0].Quantity)
	}
}

func TestAction_UnknownNewAsset(t *testing.T) {
	store := newTestStore()
	j := NewJournal()
	j.Append(
		NewTrade(on(1), "broker", "", "alpha", Q(10), M(10, "EUR"), Money{}),
		NewMerger(on(2), "broker", "", "alpha", "missing", Q(10), Q(5)),
	)

	res := rebuildScratch(t, j, store, Options{})
	if res.State != PassFailed || res.Err.Code != ErrAssetNotFound {
		t.Fatalf("got %s / %v, want failed / ErrAssetNotFound", res.State, res.Err)
	}
}
