package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is a typed string identifying the kind of an operation record.
type Kind string

// Operation kinds.
const (
	KindIncomeSpending  Kind = "income-spending"
	KindTrade           Kind = "trade"
	KindTransfer        Kind = "transfer"
	KindDividend        Kind = "dividend"
	KindCorporateAction Kind = "corporate-action"
)

// Operation is the closed tagged union over all record kinds the replay
// engine understands. The unexported withSeq method keeps the union closed:
// only types in this package can implement it.
type Operation interface {
	What() Kind        // What returns the kind tag of the record.
	When() Timestamp   // When returns the instant the record occurred.
	OrderKey() Key     // OrderKey returns the total ordering key (When, Seq).
	AccountID() string // AccountID returns the primary account of the record.
	Equal(Operation) bool
	Validate() error // structural completeness only, see import adapter contract

	withSeq(seq int64) Operation
}

type baseOp struct {
	Kind    Kind      `json:"kind"`
	ID      string    `json:"id,omitempty"` // external identity for edits, not part of the ordering
	Account string    `json:"account"`
	Time    Timestamp `json:"time"`
	Seq     int64     `json:"seq,omitempty"` // assigned on journal insertion
	Note    string    `json:"note,omitempty"`
}

func (o baseOp) What() Kind        { return o.Kind }
func (o baseOp) When() Timestamp   { return o.Time }
func (o baseOp) OrderKey() Key     { return Key{Time: o.Time, Seq: o.Seq} }
func (o baseOp) AccountID() string { return o.Account }

// equalBase ignores Seq: two records are the same record wherever they sit in
// the insertion order.
func (o baseOp) equalBase(p baseOp) bool {
	return o.Kind == p.Kind && o.ID == p.ID && o.Account == p.Account &&
		o.Time.Equal(p.Time) && o.Note == p.Note
}

func (o baseOp) validate() error {
	if o.Account == "" {
		return errors.New("account is missing")
	}
	if o.Time.IsZero() {
		return errors.New("timestamp is missing")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for baseOp.
func (o baseOp) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", o.Kind)
	w.Optional("id", o.ID)
	w.Append("account", o.Account)
	w.Append("time", o.Time)
	w.Optional("seq", o.Seq)
	w.Optional("note", o.Note)
	return w.MarshalJSON()
}

// --- IncomeSpending ---

// IncomeSpending is a plain cash movement on one account: positive amounts
// are income, negative are spending.
type IncomeSpending struct {
	baseOp
	Amount   Money  `json:"amount"`
	Category string `json:"category,omitempty"`
	Peer     string `json:"peer,omitempty"`
}

// NewIncomeSpending creates a new income/spending record.
func NewIncomeSpending(on Timestamp, account, note string, amount Money, category, peer string) IncomeSpending {
	return IncomeSpending{
		baseOp:   baseOp{Kind: KindIncomeSpending, Account: account, Time: on, Note: note},
		Amount:   amount,
		Category: category,
		Peer:     peer,
	}
}

func (t IncomeSpending) Equal(other Operation) bool {
	o, ok := other.(IncomeSpending)
	return ok && t.equalBase(o.baseOp) && t.Amount.Equal(o.Amount) &&
		t.Category == o.Category && t.Peer == o.Peer
}

func (t IncomeSpending) Validate() error {
	if err := t.baseOp.validate(); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return errors.New("income/spending amount cannot be zero")
	}
	return ValidateCurrency(t.Amount.Currency())
}

func (t IncomeSpending) withSeq(seq int64) Operation { t.Seq = seq; return t }

// MarshalJSON implements the json.Marshaler interface for IncomeSpending.
func (t IncomeSpending) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseOp)
	w.Append("amount", t.Amount)
	w.Optional("category", t.Category)
	w.Optional("peer", t.Peer)
	return w.MarshalJSON()
}

// --- Trade ---

// Trade buys or sells an asset on an investment account. A positive quantity
// opens or extends a long position (or closes a short); a negative quantity
// sells.
type Trade struct {
	baseOp
	Asset      string    `json:"asset"`
	Quantity   Quantity  `json:"quantity"` // signed
	Price      Money     `json:"price"`    // per unit, in the account currency
	Fee        Money     `json:"fee"`      // may be in a different currency
	Settlement Timestamp `json:"settlement,omitempty"`
}

// NewTrade creates a new trade record.
func NewTrade(on Timestamp, account, note, asset string, qty Quantity, price, fee Money) Trade {
	return Trade{
		baseOp:   baseOp{Kind: KindTrade, Account: account, Time: on, Note: note},
		Asset:    asset,
		Quantity: qty,
		Price:    price,
		Fee:      fee,
	}
}

func (t Trade) Equal(other Operation) bool {
	o, ok := other.(Trade)
	return ok && t.equalBase(o.baseOp) && t.Asset == o.Asset &&
		t.Quantity.Equal(o.Quantity) && t.Price.Equal(o.Price) &&
		t.Fee.Equal(o.Fee) && t.Settlement.Equal(o.Settlement)
}

func (t Trade) Validate() error {
	if err := t.baseOp.validate(); err != nil {
		return err
	}
	if t.Asset == "" {
		return errors.New("trade asset is missing")
	}
	if t.Quantity.IsZero() {
		return errors.New("trade quantity cannot be zero")
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("trade price cannot be negative, got %s", t.Price)
	}
	return nil
}

func (t Trade) withSeq(seq int64) Operation { t.Seq = seq; return t }

// MarshalJSON implements the json.Marshaler interface for Trade.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseOp)
	w.Append("asset", t.Asset)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	w.Append("fee", t.Fee)
	if !t.Settlement.IsZero() {
		w.Append("settlement", t.Settlement)
	}
	return w.MarshalJSON()
}

// --- Transfer ---

// TransferType is the subtype of a transfer record.
type TransferType string

const (
	CashTransfer  TransferType = "cash"
	AssetTransfer TransferType = "asset" // recorded but not replayable
)

// Transfer moves cash between two accounts, one of which may be external
// (empty id). A fee, when present, is charged to the designated fee account.
type Transfer struct {
	baseOp
	Subtype    TransferType `json:"subtype"`
	From       string       `json:"from,omitempty"` // empty means external source
	To         string       `json:"to,omitempty"`   // empty means external destination
	Amount     Money        `json:"amount"`
	Fee        Money        `json:"fee,omitempty"`
	FeeAccount string       `json:"feeAccount,omitempty"`
}

// NewTransfer creates a new cash transfer record. The primary account is the
// source, or the destination when the source is external.
func NewTransfer(on Timestamp, note, from, to string, amount, fee Money, feeAccount string) Transfer {
	primary := from
	if primary == "" {
		primary = to
	}
	return Transfer{
		baseOp:     baseOp{Kind: KindTransfer, Account: primary, Time: on, Note: note},
		Subtype:    CashTransfer,
		From:       from,
		To:         to,
		Amount:     amount,
		Fee:        fee,
		FeeAccount: feeAccount,
	}
}

func (t Transfer) Equal(other Operation) bool {
	o, ok := other.(Transfer)
	return ok && t.equalBase(o.baseOp) && t.Subtype == o.Subtype &&
		t.From == o.From && t.To == o.To && t.Amount.Equal(o.Amount) &&
		t.Fee.Equal(o.Fee) && t.FeeAccount == o.FeeAccount
}

func (t Transfer) Validate() error {
	if err := t.baseOp.validate(); err != nil {
		return err
	}
	if t.From == "" && t.To == "" {
		return errors.New("transfer needs at least one known account")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transfer amount must be positive, got %s", t.Amount)
	}
	return nil
}

func (t Transfer) withSeq(seq int64) Operation { t.Seq = seq; return t }

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (t Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseOp)
	w.Append("subtype", t.Subtype)
	w.Optional("from", t.From)
	w.Optional("to", t.To)
	w.Append("amount", t.Amount)
	if !t.Fee.IsZero() {
		w.Append("fee", t.Fee)
		w.Optional("feeAccount", t.FeeAccount)
	}
	return w.MarshalJSON()
}

// --- Dividend ---

// DividendType is the subtype of a dividend record.
type DividendType string

const (
	CashDividend  DividendType = "cash"
	BondInterest  DividendType = "interest"
	StockDividend DividendType = "stock"
	DividendNA    DividendType = "n/a"
)

// Dividend credits a payment received for a held asset. Stock dividends pay
// in shares instead of cash and need a quote at the record's instant.
type Dividend struct {
	baseOp
	Asset   string       `json:"asset"`
	Subtype DividendType `json:"subtype"`
	Gross   Money        `json:"gross"`
	Tax     Money        `json:"tax,omitempty"`
	Shares  Quantity     `json:"shares,omitempty"` // stock dividends only
}

// NewDividend creates a new dividend record.
func NewDividend(on Timestamp, account, note, asset string, subtype DividendType, gross, tax Money) Dividend {
	return Dividend{
		baseOp:  baseOp{Kind: KindDividend, Account: account, Time: on, Note: note},
		Asset:   asset,
		Subtype: subtype,
		Gross:   gross,
		Tax:     tax,
	}
}

// NewStockDividend creates a stock dividend paying the given number of shares.
func NewStockDividend(on Timestamp, account, note, asset string, shares Quantity, tax Money) Dividend {
	return Dividend{
		baseOp:  baseOp{Kind: KindDividend, Account: account, Time: on, Note: note},
		Asset:   asset,
		Subtype: StockDividend,
		Tax:     tax,
		Shares:  shares,
	}
}

func (t Dividend) Equal(other Operation) bool {
	o, ok := other.(Dividend)
	return ok && t.equalBase(o.baseOp) && t.Asset == o.Asset && t.Subtype == o.Subtype &&
		t.Gross.Equal(o.Gross) && t.Tax.Equal(o.Tax) && t.Shares.Equal(o.Shares)
}

func (t Dividend) Validate() error {
	if err := t.baseOp.validate(); err != nil {
		return err
	}
	if t.Asset == "" {
		return errors.New("dividend asset is missing")
	}
	switch t.Subtype {
	case CashDividend, BondInterest:
		if !t.Gross.IsPositive() {
			return fmt.Errorf("dividend gross amount must be positive, got %s", t.Gross)
		}
	case StockDividend:
		if t.Shares.IsZero() {
			return errors.New("stock dividend share count cannot be zero")
		}
	case DividendNA:
		// structurally acceptable, rejected by the engine per policy
	default:
		return fmt.Errorf("unknown dividend subtype %q", t.Subtype)
	}
	return nil
}

func (t Dividend) withSeq(seq int64) Operation { t.Seq = seq; return t }

// MarshalJSON implements the json.Marshaler interface for Dividend.
func (t Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseOp)
	w.Append("asset", t.Asset)
	w.Append("subtype", t.Subtype)
	if !t.Gross.IsZero() {
		w.Append("gross", t.Gross)
	}
	if !t.Tax.IsZero() {
		w.Append("tax", t.Tax)
	}
	if !t.Shares.IsZero() {
		w.Append("shares", t.Shares)
	}
	return w.MarshalJSON()
}

// --- CorporateAction ---

// ActionType is the subtype of a corporate action record.
type ActionType string

const (
	Split        ActionType = "split"
	SymbolChange ActionType = "symbol-change"
	SpinOff      ActionType = "spin-off"
	Merger       ActionType = "merger"
)

// CorporateAction adjusts open positions without moving cash: splits,
// symbol changes, spin-offs and mergers.
type CorporateAction struct {
	baseOp
	Subtype    ActionType      `json:"subtype"`
	Asset      string          `json:"asset"` // the asset before the action
	QtyBefore  Quantity        `json:"qtyBefore"`
	QtyAfter   Quantity        `json:"qtyAfter"`
	NewAsset   string          `json:"newAsset,omitempty"`   // spin-off, merger, symbol change
	BasisShare decimal.Decimal `json:"basisShare,omitempty"` // spin-off: fraction of cost basis moved, in [0,1]
}

// NewSplit creates a split (or reverse split) action: before units become
// after units.
func NewSplit(on Timestamp, account, note, asset string, before, after Quantity) CorporateAction {
	return CorporateAction{
		baseOp:    baseOp{Kind: KindCorporateAction, Account: account, Time: on, Note: note},
		Subtype:   Split,
		Asset:     asset,
		QtyBefore: before,
		QtyAfter:  after,
	}
}

// NewSymbolChange relabels an open position from one asset identity to another.
func NewSymbolChange(on Timestamp, account, note, oldAsset, newAsset string, qty Quantity) CorporateAction {
	return CorporateAction{
		baseOp:    baseOp{Kind: KindCorporateAction, Account: account, Time: on, Note: note},
		Subtype:   SymbolChange,
		Asset:     oldAsset,
		QtyBefore: qty,
		QtyAfter:  qty,
		NewAsset:  newAsset,
	}
}

// NewSpinOff carves a new position out of an existing one, moving basisShare
// of the original cost basis to the new asset.
func NewSpinOff(on Timestamp, account, note, asset, newAsset string, before, after Quantity, basisShare decimal.Decimal) CorporateAction {
	return CorporateAction{
		baseOp:     baseOp{Kind: KindCorporateAction, Account: account, Time: on, Note: note},
		Subtype:    SpinOff,
		Asset:      asset,
		QtyBefore:  before,
		QtyAfter:   after,
		NewAsset:   newAsset,
		BasisShare: basisShare,
	}
}

// NewMerger exchanges the full open position of one asset into another at the
// supplied ratio.
func NewMerger(on Timestamp, account, note, oldAsset, newAsset string, before, after Quantity) CorporateAction {
	return CorporateAction{
		baseOp:    baseOp{Kind: KindCorporateAction, Account: account, Time: on, Note: note},
		Subtype:   Merger,
		Asset:     oldAsset,
		QtyBefore: before,
		QtyAfter:  after,
		NewAsset:  newAsset,
	}
}

func (t CorporateAction) Equal(other Operation) bool {
	o, ok := other.(CorporateAction)
	return ok && t.equalBase(o.baseOp) && t.Subtype == o.Subtype && t.Asset == o.Asset &&
		t.QtyBefore.Equal(o.QtyBefore) && t.QtyAfter.Equal(o.QtyAfter) &&
		t.NewAsset == o.NewAsset && t.BasisShare.Equal(o.BasisShare)
}

func (t CorporateAction) Validate() error {
	if err := t.baseOp.validate(); err != nil {
		return err
	}
	if t.Asset == "" {
		return errors.New("corporate action asset is missing")
	}
	switch t.Subtype {
	case Split:
		if !t.QtyBefore.IsPositive() || !t.QtyAfter.IsPositive() {
			return errors.New("split quantities must be positive")
		}
	case SymbolChange, Merger:
		if t.NewAsset == "" {
			return fmt.Errorf("%s action needs a new asset", t.Subtype)
		}
	case SpinOff:
		if t.NewAsset == "" {
			return errors.New("spin-off action needs a new asset")
		}
		if t.BasisShare.IsNegative() || t.BasisShare.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("spin-off basis share must be within [0,1], got %s", t.BasisShare)
		}
	default:
		return fmt.Errorf("unknown corporate action subtype %q", t.Subtype)
	}
	return nil
}

func (t CorporateAction) withSeq(seq int64) Operation { t.Seq = seq; return t }

// MarshalJSON implements the json.Marshaler interface for CorporateAction.
func (t CorporateAction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseOp)
	w.Append("subtype", t.Subtype)
	w.Append("asset", t.Asset)
	w.Append("qtyBefore", t.QtyBefore)
	w.Append("qtyAfter", t.QtyAfter)
	w.Optional("newAsset", t.NewAsset)
	if !t.BasisShare.IsZero() {
		w.Append("basisShare", t.BasisShare)
	}
	return w.MarshalJSON()
}
