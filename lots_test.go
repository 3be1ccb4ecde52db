package ledger

import "testing"

func testQueue() lots {
	return lots{
		{ID: "op1.0", Account: "broker", Asset: "alpha", Open: K(on(1), 1), Quantity: Q(10), UnitCost: M(10, "EUR")},
		{ID: "op2.0", Account: "broker", Asset: "alpha", Open: K(on(2), 2), Quantity: Q(10), UnitCost: M(20, "EUR")},
	}
}

func TestLots_Consume(t *testing.T) {
	t.Run("across lots", func(t *testing.T) {
		matches, remaining, leftover := testQueue().consume(Q(15))
		if !leftover.IsZero() {
			t.Errorf("leftover = %s, want 0", leftover)
		}
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2", len(matches))
		}
		if matches[0].lot.ID != "op1.0" || !matches[0].matched.Equal(Q(10)) {
			t.Errorf("first match = %s of %s, want all of op1.0", matches[0].matched, matches[0].lot.ID)
		}
		if matches[1].lot.ID != "op2.0" || !matches[1].matched.Equal(Q(5)) {
			t.Errorf("second match = %s of %s, want 5 of op2.0", matches[1].matched, matches[1].lot.ID)
		}
		if len(remaining) != 1 || !remaining[0].Quantity.Equal(Q(5)) {
			t.Fatalf("remaining = %v, want 5 left in the newer lot", remaining)
		}
		// The partially closed lot keeps its identity and cost basis.
		if remaining[0].ID != "op2.0" || !remaining[0].UnitCost.Equal(M(20, "EUR")) {
			t.Errorf("remaining lot = %s @ %s, want op2.0 @ 20", remaining[0].ID, remaining[0].UnitCost)
		}
	})

	t.Run("queue runs out", func(t *testing.T) {
		matches, remaining, leftover := testQueue().consume(Q(25))
		if !leftover.Equal(Q(5)) {
			t.Errorf("leftover = %s, want 5", leftover)
		}
		if len(matches) != 2 || len(remaining) != 0 {
			t.Errorf("matches %d remaining %d, want 2 and 0", len(matches), len(remaining))
		}
	})

	t.Run("short queue", func(t *testing.T) {
		short := lots{{ID: "op1.0", Quantity: Q(-10), UnitCost: M(10, "EUR")}}
		matches, remaining, leftover := short.consume(Q(4))
		if !leftover.IsZero() || len(matches) != 1 {
			t.Fatalf("matches %d leftover %s, want 1 and 0", len(matches), leftover)
		}
		if !matches[0].matched.Equal(Q(4)) {
			t.Errorf("matched = %s, want 4", matches[0].matched)
		}
		// A short lot shrinks toward zero from below.
		if len(remaining) != 1 || !remaining[0].Quantity.Equal(Q(-6)) {
			t.Fatalf("remaining = %v, want -6", remaining)
		}
	})
}

func TestLots_Rescale(t *testing.T) {
	queue := testQueue()
	out := queue.rescale(Q(20), Q(40))
	if len(out) != 2 {
		t.Fatalf("got %d lots, want 2", len(out))
	}
	if !out[0].Quantity.Equal(Q(20)) || !out[0].UnitCost.Equal(M(5, "EUR")) {
		t.Errorf("first lot = %s @ %s, want 20 @ 5", out[0].Quantity, out[0].UnitCost)
	}
	if !out[1].Quantity.Equal(Q(20)) || !out[1].UnitCost.Equal(M(10, "EUR")) {
		t.Errorf("second lot = %s @ %s, want 20 @ 10", out[1].Quantity, out[1].UnitCost)
	}
	// Total basis is invariant under rescale.
	if !out.costBasis().Equal(queue.costBasis()) {
		t.Errorf("basis changed: %s to %s", queue.costBasis(), out.costBasis())
	}
}

func TestLots_NetAndBasis(t *testing.T) {
	queue := testQueue()
	if !queue.net().Equal(Q(20)) {
		t.Errorf("net = %s, want 20", queue.net())
	}
	if !queue.costBasis().Equal(M(300, "EUR")) {
		t.Errorf("basis = %s, want 300", queue.costBasis())
	}

	mixed := lots{
		{Quantity: Q(10), UnitCost: M(10, "EUR")},
		{Quantity: Q(-4), UnitCost: M(12, "EUR")},
	}
	if !mixed.net().Equal(Q(6)) {
		t.Errorf("mixed net = %s, want 6", mixed.net())
	}
}
