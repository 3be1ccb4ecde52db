package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Mode selects where a rebuild pass starts reading the journal.
type Mode int

const (
	// SinceFrontier resumes from the ledger's frontier, the cheapest mode
	// and the default.
	SinceFrontier Mode = iota
	// FromScratch discards all derived state and replays the full journal.
	FromScratch
	// SinceTime discards derived state from an explicit instant onward and
	// replays from there.
	SinceTime
)

// Options tunes a rebuild pass.
type Options struct {
	Mode  Mode
	Since Timestamp // start instant, SinceTime only

	// Fast skips the expensive numeric consistency checks (zero exchange
	// rates, spin-off rounding drift). The resulting ledger is marked
	// unreliable. Never the default; callers must opt in.
	Fast bool

	// StrictCategories turns unresolved income/spending categories into
	// blocking errors instead of warnings.
	StrictCategories bool
}

// PassState is the lifecycle phase of a rebuild pass.
type PassState int

const (
	PassIdle PassState = iota
	PassScanning
	PassApplying
	PassComplete
	PassFailed
	PassCanceled
)

func (s PassState) String() string {
	switch s {
	case PassIdle:
		return "idle"
	case PassScanning:
		return "scanning"
	case PassApplying:
		return "applying"
	case PassComplete:
		return "complete"
	case PassFailed:
		return "failed"
	case PassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is the outcome of one rebuild pass. The returned Ledger is a new
// value: the caller commits it (or not) at the pass boundary, so concurrent
// readers only ever see a pre-pass or post-pass snapshot.
type Result struct {
	State    PassState
	Ledger   *Ledger
	Frontier Key
	Entries  []Entry
	Err      *ReplayError // set when State is PassFailed

	Applied int // records applied in this pass
	Trades  int
	Deals   int
}

// Rebuilder replays journal records into derived ledger state. It holds no
// mutable state of its own and is safe to reuse across passes.
type Rebuilder struct {
	journal *Journal
	store   ReferenceStore
	opts    Options
}

// NewRebuilder creates a rebuilder over a journal and its reference data.
func NewRebuilder(journal *Journal, store ReferenceStore, opts Options) *Rebuilder {
	return &Rebuilder{journal: journal, store: store, opts: opts}
}

// Rebuild runs one pass over the journal, starting where the options say,
// and returns the new ledger value. prior is never mutated. On a blocking
// error the pass stops at the offending record: everything applied before it
// stays valid and the frontier points at the last good record. The context
// is honored between records; cancellation leaves a consistent, resumable
// ledger behind.
func (r *Rebuilder) Rebuild(ctx context.Context, prior *Ledger) Result {
	work := prior.Clone()
	switch r.opts.Mode {
	case FromScratch:
		work = NewLedger()
	case SinceTime:
		work.Invalidate(K(r.opts.Since, 0))
	}
	start := work.Frontier()

	res := Result{State: PassScanning, Ledger: work}
	res.log(Info, Key{}, "rebuilding ledger since %s", startLabel(start))

	p := &pass{store: r.store, opts: r.opts, st: work.fold()}
	res.State = PassApplying
	lastGood := start
	for op := range r.journal.Since(start) {
		if err := ctx.Err(); err != nil {
			res.State = PassCanceled
			break
		}
		ps, rerr := p.applyOp(op)
		if rerr != nil {
			res.State = PassFailed
			res.Err = rerr
			res.log(Blocking, rerr.Op, "%s", rerr.Error())
			break
		}
		work.append(ps...)
		for _, posting := range ps {
			p.st.apply(posting)
		}
		lastGood = op.OrderKey()
		res.Applied++
	}
	if res.State == PassApplying {
		res.State = PassComplete
	}

	work.frontier = lastGood
	work.complete = res.State == PassComplete
	res.Frontier = lastGood
	res.Entries = append(res.Entries, p.entries...)
	res.Trades = p.trades
	res.Deals = p.deals
	res.log(Info, Key{}, "applied %d records, %d trades, %d deals", res.Applied, res.Trades, res.Deals)
	switch res.State {
	case PassComplete:
		if r.opts.Fast {
			res.log(Warning, Key{}, "fast mode: consistency checks skipped, balances are unreliable")
		} else {
			res.log(Info, Key{}, "ledger is complete")
		}
	case PassCanceled:
		res.log(Warning, Key{}, "pass canceled, ledger is resumable from %s", lastGood)
	case PassFailed:
		res.log(Warning, Key{}, "ledger is incomplete, frontier parked at %s", startLabel(lastGood))
	}
	return res
}

func (r *Result) log(sev Severity, op Key, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{Severity: sev, Message: fmt.Sprintf(format, args...), Op: op})
}

func startLabel(k Key) string {
	if k.IsZero() {
		return "the beginning"
	}
	return k.String()
}

// pass is the working context of one rebuild pass: the mutable fold, the
// reference data, and the accumulated log.
type pass struct {
	store   ReferenceStore
	opts    Options
	st      *state
	entries []Entry
	trades  int
	deals   int
}

func (p *pass) log(sev Severity, op Key, format string, args ...any) {
	p.entries = append(p.entries, Entry{Severity: sev, Message: fmt.Sprintf(format, args...), Op: op})
}

func fail(code ErrorCode, op Key, account, asset, detail string) *ReplayError {
	return &ReplayError{Code: code, Op: op, Account: account, Asset: asset, Detail: detail}
}

// applyOp dispatches one record to its kind handler. It returns the postings
// the record produces, or the blocking error that prevents applying it. A
// record either applies in full or not at all: postings are only handed back
// once every check has passed.
func (p *pass) applyOp(op Operation) ([]posting, *ReplayError) {
	switch v := op.(type) {
	case IncomeSpending:
		return p.applyIncomeSpending(v)
	case Trade:
		return p.applyTrade(v)
	case Transfer:
		return p.applyTransfer(v)
	case Dividend:
		return p.applyDividend(v)
	case CorporateAction:
		return p.applyAction(v)
	default:
		return nil, fail(ErrUnsupportedAction, op.OrderKey(), op.AccountID(), "", fmt.Sprintf("unknown record kind %q", op.What()))
	}
}

// account resolves an account id, mapping store errors to the blocking
// taxonomy.
func (p *pass) account(id string, at Key) (Account, *ReplayError) {
	acct, err := p.store.Account(id)
	if err != nil {
		return Account{}, fail(ErrAccountNotFound, at, id, "", "")
	}
	return acct, nil
}

// asset resolves an asset by id, falling back to a symbol lookup. A symbol
// matching several assets is ambiguous and blocks.
func (p *pass) asset(id string, at Key, account string) (Asset, *ReplayError) {
	asset, err := p.store.Asset(id)
	if err == nil {
		return asset, nil
	}
	asset, err = p.store.AssetBySymbol(id)
	switch {
	case err == nil:
		return asset, nil
	case errors.Is(err, ErrAmbiguous):
		return Asset{}, fail(ErrAmbiguousAsset, at, account, id, "")
	default:
		return Asset{}, fail(ErrAssetNotFound, at, account, id, "")
	}
}

// convert turns an amount into the target currency using the stored rate at
// the record's instant. A missing rate blocks. A zero rate blocks too unless
// the pass runs in fast mode, where the check is skipped and the conversion
// silently yields zero.
func (p *pass) convert(amount Money, currency string, at Key, account string) (Money, *ReplayError) {
	if amount.Currency() == "" || amount.Currency() == currency {
		return M(amount.value, currency), nil
	}
	rate, err := p.store.Rate(amount.Currency(), currency, at.Time)
	if err != nil {
		return Money{}, fail(ErrRateMissing, at, account, "", fmt.Sprintf("%s to %s", amount.Currency(), currency))
	}
	if rate.IsZero() && !p.opts.Fast {
		return Money{}, fail(ErrZeroRate, at, account, "", fmt.Sprintf("%s to %s", amount.Currency(), currency))
	}
	return amount.Convert(rate, currency), nil
}

func (p *pass) applyIncomeSpending(t IncomeSpending) ([]posting, *ReplayError) {
	at := t.OrderKey()
	if _, rerr := p.account(t.Account, at); rerr != nil {
		return nil, rerr
	}
	if t.Category != "" {
		if _, err := p.store.Category(t.Category); err != nil {
			if p.opts.StrictCategories {
				return nil, fail(ErrCategoryUnknown, at, t.Account, "", fmt.Sprintf("unknown category %q", t.Category))
			}
			p.log(Warning, at, "unknown category %q", t.Category)
		}
	}
	return []posting{cashDelta{on: at, account: t.Account, amount: t.Amount}}, nil
}

func (p *pass) applyTrade(t Trade) ([]posting, *ReplayError) {
	at := t.OrderKey()
	acct, rerr := p.account(t.Account, at)
	if rerr != nil {
		return nil, rerr
	}
	if acct.Broker == "" {
		return nil, fail(ErrNoBrokerForTrade, at, t.Account, t.Asset, "")
	}
	asset, rerr := p.asset(t.Asset, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}

	price := M(t.Price.value, acct.Currency)
	fee, rerr := p.convert(t.Fee, acct.Currency, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}

	// Cash leg: buys debit, sells credit, the whole fee is paid now.
	ps := []posting{cashDelta{
		on:      at,
		account: t.Account,
		amount:  price.Mul(t.Quantity).Neg().Sub(fee),
	}}

	queue := p.st.lots[posKey{t.Account, asset.ID}]
	net := queue.net()
	if net.IsZero() || net.Sign() == t.Quantity.Sign() {
		// Extends the position (or starts one). The opening fee stays on
		// the cash leg; the cost basis is the bare price.
		ps = append(ps, lotOpen{
			on:       at,
			openedAt: at,
			account:  t.Account,
			asset:    asset.ID,
			id:       lotID(at.Seq, 0),
			quantity: t.Quantity,
			unitCost: price,
		})
		p.trades++
		return ps, nil
	}

	// Opposite sign: close against the queue, oldest first.
	before := net.Abs()
	matches, _, leftover := queue.consume(t.Quantity.Abs())
	if !leftover.IsZero() && !shortable(asset.Type) {
		return nil, fail(ErrOverClose, at, t.Account, asset.ID,
			fmt.Sprintf("position %s, closing %s", net, t.Quantity.Abs()))
	}
	for _, m := range matches {
		// The closing fee spreads over the whole position standing before
		// this close; each pairing carries its matched share.
		feeAlloc := fee.Mul(m.matched).Div(before)
		qty := m.matched.Mul(Q(int64(m.lot.Quantity.Sign())))
		profit := realizedProfit(m.lot.UnitCost, price, qty, feeAlloc)
		deal := Deal{
			Account:    t.Account,
			Asset:      asset.ID,
			Open:       m.lot.Open,
			Close:      at,
			OpenPrice:  m.lot.UnitCost,
			ClosePrice: price,
			Quantity:   qty,
			Fee:        feeAlloc,
			Profit:     profit,
			ProfitPct:  profitPercent(profit, m.lot.UnitCost, qty),
			Flag:       DealRegular,
		}
		ps = append(ps,
			lotClose{on: at, account: t.Account, asset: asset.ID, id: m.lot.ID, quantity: m.matched},
			dealClose{on: at, deal: deal},
		)
		p.deals++
	}
	if !leftover.IsZero() {
		// The close went through zero: the remainder opens on the other side.
		ps = append(ps, lotOpen{
			on:       at,
			openedAt: at,
			account:  t.Account,
			asset:    asset.ID,
			id:       lotID(at.Seq, 0),
			quantity: leftover.Mul(Q(int64(t.Quantity.Sign()))),
			unitCost: price,
		})
	}
	p.trades++
	return ps, nil
}

// shortable reports whether going through zero into a short position is a
// legitimate outcome for an asset class. Bonds and funds cannot be shorted
// here, so over-closing them is a data error.
func shortable(t AssetType) bool {
	switch t {
	case Equity, Derivative, CurrencyAsset:
		return true
	default:
		return false
	}
}

func (p *pass) applyTransfer(t Transfer) ([]posting, *ReplayError) {
	at := t.OrderKey()
	if t.Subtype != CashTransfer {
		return nil, fail(ErrUnsupportedTransfer, at, t.Account, "", string(t.Subtype))
	}
	if t.From == "" && t.To == "" {
		return nil, fail(ErrUnmatchedTransferAccount, at, "", "", "")
	}

	// Both legs resolve and convert before any posting is handed back, so a
	// transfer moves in full or not at all.
	var ps []posting
	if t.From != "" {
		if _, rerr := p.account(t.From, at); rerr != nil {
			return nil, rerr
		}
		ps = append(ps, cashDelta{on: at, account: t.From, amount: t.Amount.Neg()})
	}
	if t.To != "" {
		to, rerr := p.account(t.To, at)
		if rerr != nil {
			return nil, rerr
		}
		credited, rerr := p.convert(t.Amount, to.Currency, at, t.To)
		if rerr != nil {
			return nil, rerr
		}
		ps = append(ps, cashDelta{on: at, account: t.To, amount: credited})
	}
	if !t.Fee.IsZero() {
		feeAccount := t.FeeAccount
		if feeAccount == "" {
			feeAccount = t.Account
		}
		if _, rerr := p.account(feeAccount, at); rerr != nil {
			return nil, rerr
		}
		ps = append(ps, cashDelta{on: at, account: feeAccount, amount: t.Fee.Neg()})
	}
	return ps, nil
}

func (p *pass) applyDividend(t Dividend) ([]posting, *ReplayError) {
	at := t.OrderKey()
	acct, rerr := p.account(t.Account, at)
	if rerr != nil {
		return nil, rerr
	}
	if acct.Broker == "" {
		return nil, fail(ErrNoBrokerForDividend, at, t.Account, t.Asset, "")
	}
	asset, rerr := p.asset(t.Asset, at, t.Account)
	if rerr != nil {
		return nil, rerr
	}

	switch t.Subtype {
	case CashDividend, BondInterest:
		return []posting{cashDelta{on: at, account: t.Account, amount: t.Gross.Sub(t.Tax)}}, nil

	case StockDividend:
		net := p.st.lots[posKey{t.Account, asset.ID}].net()
		if net.IsNegative() || t.Shares.IsNegative() {
			return nil, fail(ErrStockDividendShort, at, t.Account, asset.ID, "")
		}
		quote, err := p.store.Quote(asset.ID, at.Time)
		if err != nil {
			return nil, fail(ErrQuoteMissing, at, t.Account, asset.ID, "stock dividend needs a quote")
		}
		ps := []posting{lotOpen{
			on:       at,
			openedAt: at,
			account:  t.Account,
			asset:    asset.ID,
			id:       lotID(at.Seq, 0),
			quantity: t.Shares,
			unitCost: M(quote.value, acct.Currency),
		}}
		if !t.Tax.IsZero() {
			ps = append(ps, cashDelta{on: at, account: t.Account, amount: t.Tax.Neg()})
		}
		return ps, nil

	case DividendNA:
		return nil, fail(ErrDividendTypeNA, at, t.Account, asset.ID, "")

	default:
		return nil, fail(ErrUnsupportedDividend, at, t.Account, asset.ID, string(t.Subtype))
	}
}
