package ledger

import (
	"iter"
	"maps"
	"slices"
	"sort"
)

// posting is a single atomic derived fact: a cash delta, a lot opening or
// closing, or a realized deal. All ledger state is a fold of postings.
type posting interface {
	key() Key
}

// cashDelta adjusts the balance of one (account, currency) pair.
type cashDelta struct {
	on      Key
	account string
	amount  Money
}

func (p cashDelta) key() Key { return p.on }

// lotOpen creates a new cost-basis lot. openedAt may precede on: a symbol
// change relabels lots without resetting their FIFO position.
type lotOpen struct {
	on       Key
	openedAt Key
	account  string
	asset    string
	id       string
	quantity Quantity // signed
	unitCost Money
}

func (p lotOpen) key() Key { return p.on }

// lotClose reduces the magnitude of an existing lot.
type lotClose struct {
	on       Key
	account  string
	asset    string
	id       string
	quantity Quantity // positive magnitude removed
}

func (p lotClose) key() Key { return p.on }

// dealClose records one realized open-close pairing.
type dealClose struct {
	on   Key
	deal Deal
}

func (p dealClose) key() Key { return p.on }

// Ledger is the derived state of the whole system: an ordered, append-only
// list of postings plus the frontier up to which that state is known
// consistent. A Ledger is a value: rebuild passes work on a copy and the
// caller commits the result at the pass boundary, so external readers only
// ever observe a pre-pass or post-pass snapshot.
type Ledger struct {
	postings []posting
	frontier Key
	complete bool
}

// NewLedger creates an empty, complete ledger.
func NewLedger() *Ledger {
	return &Ledger{complete: true}
}

// Frontier returns the boundary up to which derived state is known valid.
func (l *Ledger) Frontier() Key { return l.frontier }

// IsComplete reports whether the last pass ended without a blocking error.
func (l *Ledger) IsComplete() bool { return l.complete }

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{
		postings: slices.Clone(l.postings),
		frontier: l.frontier,
		complete: l.complete,
	}
}

// Invalidate moves the frontier back to just before the given key, dropping
// every posting at or beyond it. Called when a record is inserted or edited
// below the current frontier.
func (l *Ledger) Invalidate(at Key) {
	if !at.Less(l.frontier) && !l.frontier.IsZero() {
		return
	}
	cut := sort.Search(len(l.postings), func(i int) bool {
		return !l.postings[i].key().Less(at)
	})
	l.postings = l.postings[:cut]
	if cut == 0 {
		l.frontier = Key{}
	} else {
		l.frontier = l.postings[cut-1].key()
	}
	l.complete = false
}

// truncateTo drops postings strictly after the key and parks the frontier
// there. Used by passes restarting from an explicit instant.
func (l *Ledger) truncateTo(at Key) {
	cut := sort.Search(len(l.postings), func(i int) bool {
		return l.postings[i].key().After(at)
	})
	l.postings = l.postings[:cut]
	l.frontier = at
}

// append adds postings produced by one applied record. Postings arrive in
// key order because the pass walks the journal in key order.
func (l *Ledger) append(ps ...posting) {
	l.postings = append(l.postings, ps...)
}

// --- folds ---

type cashKey struct {
	account  string
	currency string
}

type posKey struct {
	account string
	asset   string
}

// state is the working mutable view of a ledger used during a pass and by
// snapshot accessors. It is always rebuilt by folding postings.
type state struct {
	cash map[cashKey]Money
	lots map[posKey]lots
}

func newState() *state {
	return &state{cash: make(map[cashKey]Money), lots: make(map[posKey]lots)}
}

// fold replays every posting of the ledger into a fresh working state.
func (l *Ledger) fold() *state {
	s := newState()
	for _, p := range l.postings {
		s.apply(p)
	}
	return s
}

func (s *state) apply(p posting) {
	switch v := p.(type) {
	case cashDelta:
		k := cashKey{v.account, v.amount.Currency()}
		s.cash[k] = s.cash[k].Add(v.amount)
	case lotOpen:
		k := posKey{v.account, v.asset}
		s.lots[k] = append(s.lots[k], Lot{
			ID:       v.id,
			Account:  v.account,
			Asset:    v.asset,
			Open:     v.openedAt,
			Quantity: v.quantity,
			UnitCost: v.unitCost,
		})
	case lotClose:
		k := posKey{v.account, v.asset}
		queue := s.lots[k]
		for i := range queue {
			if queue[i].ID != v.id {
				continue
			}
			sign := Q(int64(queue[i].Quantity.Sign()))
			queue[i].Quantity = queue[i].Quantity.Sub(v.quantity.Mul(sign))
			break
		}
		// Zero lots leave the queue.
		kept := queue[:0]
		for _, lot := range queue {
			if !lot.Quantity.IsZero() {
				kept = append(kept, lot)
			}
		}
		s.lots[k] = kept
	case dealClose:
		// Deals do not contribute to balances or positions.
	}
}

// --- snapshot accessors ---

// CashBalance returns the running balance of one (account, currency) pair.
func (l *Ledger) CashBalance(account, currency string) Money {
	balance := M(0, currency)
	for _, p := range l.postings {
		if v, ok := p.(cashDelta); ok && v.account == account && v.amount.Currency() == currency {
			balance = balance.Add(v.amount)
		}
	}
	return balance
}

// Position returns the net open quantity of one (account, asset) pair.
func (l *Ledger) Position(account, asset string) Quantity {
	return l.fold().lots[posKey{account, asset}].net()
}

// OpenLots returns the open lot queue of one (account, asset) pair, oldest
// first.
func (l *Ledger) OpenLots(account, asset string) []Lot {
	return slices.Clone(l.fold().lots[posKey{account, asset}])
}

// Deals returns every realized deal in close order.
func (l *Ledger) Deals() []Deal {
	var deals []Deal
	for _, p := range l.postings {
		if v, ok := p.(dealClose); ok {
			deals = append(deals, v.deal)
		}
	}
	return deals
}

// CashRow is one line of the cash ledger snapshot.
type CashRow struct {
	Account  string
	Currency string
	Balance  Money
}

// CashBalances returns the full cash ledger snapshot in stable order.
func (l *Ledger) CashBalances() []CashRow {
	s := l.fold()
	keys := slices.SortedFunc(maps.Keys(s.cash), func(a, b cashKey) int {
		if a.account != b.account {
			return cmpString(a.account, b.account)
		}
		return cmpString(a.currency, b.currency)
	})
	rows := make([]CashRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, CashRow{Account: k.account, Currency: k.currency, Balance: s.cash[k]})
	}
	return rows
}

// HoldingRow is one line of the position ledger snapshot.
type HoldingRow struct {
	Account   string
	Asset     string
	Quantity  Quantity
	CostBasis Money
	AvgCost   Money
}

// Holdings returns the full position ledger snapshot in stable order,
// skipping flat positions.
func (l *Ledger) Holdings() []HoldingRow {
	s := l.fold()
	keys := slices.SortedFunc(maps.Keys(s.lots), func(a, b posKey) int {
		if a.account != b.account {
			return cmpString(a.account, b.account)
		}
		return cmpString(a.asset, b.asset)
	})
	rows := make([]HoldingRow, 0, len(keys))
	for _, k := range keys {
		queue := s.lots[k]
		net := queue.net()
		if net.IsZero() {
			continue
		}
		basis := queue.costBasis()
		rows = append(rows, HoldingRow{
			Account:   k.account,
			Asset:     k.asset,
			Quantity:  net,
			CostBasis: basis,
			AvgCost:   basis.Div(net.Abs()),
		})
	}
	return rows
}

// Postings exposes the count of derived postings, mostly for diagnostics.
func (l *Ledger) Postings() int { return len(l.postings) }

// AllDeals iterates deals, optionally filtered by account.
func (l *Ledger) AllDeals(account string) iter.Seq[Deal] {
	return func(yield func(Deal) bool) {
		for _, p := range l.postings {
			v, ok := p.(dealClose)
			if !ok {
				continue
			}
			if account != "" && v.deal.Account != account {
				continue
			}
			if !yield(v.deal) {
				return
			}
		}
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
