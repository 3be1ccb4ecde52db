package ledger

import (
	"iter"
	"maps"
	"slices"
	"sort"
)

// Journal holds the canonical set of operation records, always sorted by the
// (timestamp, sequence) key. Records are appended by import adapters or the
// UI and never deleted by the engine.
type Journal struct {
	ops     []Operation
	nextSeq int64 // next insertion sequence id
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{nextSeq: 1}
}

// Len returns the number of records in the journal.
func (j *Journal) Len() int { return len(j.ops) }

// Append inserts records into the journal, assigning a fresh sequence id to
// any record that has none, and restores the chronological order. It returns
// the smallest order key among the appended records: callers compare it to
// their frontier to detect invalidation.
func (j *Journal) Append(ops ...Operation) Key {
	var earliest Key
	for i, op := range ops {
		if op.OrderKey().Seq == 0 {
			op = op.withSeq(j.nextSeq)
			j.nextSeq++
		} else if op.OrderKey().Seq >= j.nextSeq {
			j.nextSeq = op.OrderKey().Seq + 1
		}
		if i == 0 || op.OrderKey().Less(earliest) {
			earliest = op.OrderKey()
		}
		j.ops = append(j.ops, op)
	}
	j.stableSort()
	return earliest
}

// stableSort sorts the journal by order key. The sort is stable so records
// carrying equal keys keep their relative order.
func (j *Journal) stableSort() {
	sort.SliceStable(j.ops, func(a, b int) bool {
		return j.ops[a].OrderKey().Less(j.ops[b].OrderKey())
	})
}

// Operations returns an iterator over all records in chronological order,
// optionally restricted by filters. With several filters a record is yielded
// when any of them accepts it.
func (j *Journal) Operations(filters ...func(Operation) bool) iter.Seq2[int, Operation] {
	return func(yield func(int, Operation) bool) {
		for i, op := range j.ops {
			if len(filters) > 0 {
				accept := false
				for _, filter := range filters {
					if filter(op) {
						accept = true
						break
					}
				}
				if !accept {
					continue
				}
			}
			if !yield(i, op) {
				return
			}
		}
	}
}

// Since returns an iterator over records strictly after the given key.
// The journal is sorted, so iteration starts at the first match.
func (j *Journal) Since(frontier Key) iter.Seq[Operation] {
	start := sort.Search(len(j.ops), func(i int) bool {
		return j.ops[i].OrderKey().After(frontier)
	})
	return func(yield func(Operation) bool) {
		for _, op := range j.ops[start:] {
			if !yield(op) {
				return
			}
		}
	}
}

// OldestKey returns the order key of the earliest record, or the zero key
// for an empty journal.
func (j *Journal) OldestKey() Key {
	if len(j.ops) == 0 {
		return Key{}
	}
	return j.ops[0].OrderKey()
}

// NewestKey returns the order key of the latest record, or the zero key for
// an empty journal.
func (j *Journal) NewestKey() Key {
	if len(j.ops) == 0 {
		return Key{}
	}
	return j.ops[len(j.ops)-1].OrderKey()
}

// Accounts returns an iterator over all account ids referenced by records,
// in a stable order. Transfers contribute both sides.
func (j *Journal) Accounts() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, op := range j.ops {
			for _, id := range touchedAccounts(op) {
				if id == "" {
					continue
				}
				seen[id] = struct{}{}
			}
		}
		ids := slices.Collect(maps.Keys(seen))
		slices.Sort(ids)
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// touchedAccounts lists every account a record reads or writes.
func touchedAccounts(op Operation) []string {
	switch v := op.(type) {
	case Transfer:
		ids := []string{v.From, v.To}
		if v.FeeAccount != "" {
			ids = append(ids, v.FeeAccount)
		}
		return ids
	default:
		return []string{op.AccountID()}
	}
}

// ByAccount returns a predicate accepting records touching the given account.
func ByAccount(id string) func(Operation) bool {
	return func(op Operation) bool {
		return slices.Contains(touchedAccounts(op), id)
	}
}

// ByAsset returns a predicate accepting records about the given asset.
func ByAsset(id string) func(Operation) bool {
	return func(op Operation) bool {
		switch v := op.(type) {
		case Trade:
			return v.Asset == id
		case Dividend:
			return v.Asset == id
		case CorporateAction:
			return v.Asset == id || v.NewAsset == id
		default:
			return false
		}
	}
}

// ByKind returns a predicate accepting records of the given kind.
func ByKind(kind Kind) func(Operation) bool {
	return func(op Operation) bool { return op.What() == kind }
}
