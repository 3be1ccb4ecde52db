package ledger

import (
	"slices"
	"testing"
)

func TestJournal_AppendAssignsSeq(t *testing.T) {
	j := NewJournal()
	j.Append(
		NewIncomeSpending(on(2), "bank", "second", M(1, "EUR"), "", ""),
		NewIncomeSpending(on(1), "bank", "first", M(1, "EUR"), "", ""),
	)

	// Records sort by time even when appended out of order.
	var notes []string
	for _, op := range j.Operations() {
		notes = append(notes, op.(IncomeSpending).Note)
	}
	if !slices.Equal(notes, []string{"first", "second"}) {
		t.Errorf("order = %v, want [first second]", notes)
	}

	// Insertion sequence ids keep counting across calls.
	earliest := j.Append(NewIncomeSpending(on(3), "bank", "third", M(1, "EUR"), "", ""))
	if earliest.Seq != 3 {
		t.Errorf("third record seq = %d, want 3", earliest.Seq)
	}
}

func TestJournal_AppendReturnsEarliest(t *testing.T) {
	j := NewJournal()
	j.Append(NewIncomeSpending(on(5), "bank", "", M(1, "EUR"), "", ""))

	earliest := j.Append(
		NewIncomeSpending(on(7), "bank", "", M(1, "EUR"), "", ""),
		NewIncomeSpending(on(2), "bank", "", M(1, "EUR"), "", ""),
	)
	// The caller compares this to its frontier to detect invalidation.
	if !earliest.Time.Equal(on(2)) {
		t.Errorf("earliest = %s, want the backdated record", earliest)
	}
}

func TestJournal_SameInstantKeepsInsertionOrder(t *testing.T) {
	j := NewJournal()
	j.Append(
		NewIncomeSpending(on(1), "bank", "a", M(1, "EUR"), "", ""),
		NewIncomeSpending(on(1), "bank", "b", M(1, "EUR"), "", ""),
	)
	var notes []string
	for _, op := range j.Operations() {
		notes = append(notes, op.(IncomeSpending).Note)
	}
	if !slices.Equal(notes, []string{"a", "b"}) {
		t.Errorf("order = %v, want insertion order on ties", notes)
	}
}

func TestJournal_Since(t *testing.T) {
	j := NewJournal()
	j.Append(
		NewIncomeSpending(on(1), "bank", "a", M(1, "EUR"), "", ""),
		NewIncomeSpending(on(2), "bank", "b", M(1, "EUR"), "", ""),
		NewIncomeSpending(on(3), "bank", "c", M(1, "EUR"), "", ""),
	)

	var notes []string
	for op := range j.Since(K(on(2), 2)) {
		notes = append(notes, op.(IncomeSpending).Note)
	}
	if !slices.Equal(notes, []string{"c"}) {
		t.Errorf("since = %v, want records strictly after the frontier", notes)
	}

	notes = nil
	for op := range j.Since(Key{}) {
		notes = append(notes, op.(IncomeSpending).Note)
	}
	if len(notes) != 3 {
		t.Errorf("since zero key yields %d records, want all 3", len(notes))
	}
}

func TestJournal_Filters(t *testing.T) {
	j := NewJournal()
	j.Append(
		NewIncomeSpending(on(1), "bank", "", M(1, "EUR"), "", ""),
		NewTrade(on(2), "broker", "", "alpha", Q(1), M(1, "EUR"), Money{}),
		NewTrade(on(3), "broker", "", "beta", Q(1), M(1, "EUR"), Money{}),
	)

	count := 0
	for _, op := range j.Operations(ByAccount("broker")) {
		if op.AccountID() != "broker" {
			t.Errorf("filter leaked %s", op.AccountID())
		}
		count++
	}
	if count != 2 {
		t.Errorf("ByAccount matched %d, want 2", count)
	}

	count = 0
	for range j.Operations(ByAsset("alpha")) {
		count++
	}
	if count != 1 {
		t.Errorf("ByAsset matched %d, want 1", count)
	}

	count = 0
	for range j.Operations(ByKind(KindTrade)) {
		count++
	}
	if count != 2 {
		t.Errorf("ByKind matched %d, want 2", count)
	}
}

func TestJournal_AccountGroups(t *testing.T) {
	j := NewJournal()
	j.Append(
		NewIncomeSpending(on(1), "bank", "", M(100, "EUR"), "", ""),
		NewTransfer(on(2), "", "bank", "broker", M(50, "EUR"), Money{}, ""),
		NewTrade(on(3), "broker", "", "alpha", Q(1), M(10, "EUR"), Money{}),
		NewIncomeSpending(on(4), "usd", "", M(100, "USD"), "", ""),
	)

	groups := j.AccountGroups()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %v", len(groups), groups)
	}
	// The transfer links bank and broker into one group; usd stands alone.
	want := [][]string{{"bank", "broker"}, {"usd"}}
	for i := range want {
		if !slices.Equal(groups[i], want[i]) {
			t.Errorf("group %d = %v, want %v", i, groups[i], want[i])
		}
	}
}
