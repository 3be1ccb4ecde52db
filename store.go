package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Sentinel errors returned by ReferenceStore implementations. The engine
// classifies them into its blocking error taxonomy.
var (
	// ErrNotFound reports that an account, asset or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous reports that a lookup matched more than one entry.
	ErrAmbiguous = errors.New("multiple match")
	// ErrNoQuote reports that no quote exists for an asset at an instant.
	ErrNoQuote = errors.New("no quote")
	// ErrNoRate reports that no exchange rate exists for a pair at an instant.
	ErrNoRate = errors.New("no rate")
)

// ReferenceStore is the engine's read-only view of durable reference data:
// accounts, assets, categories, quotes and exchange rates. Implementations
// live in the refstore package; anything satisfying this interface works.
//
// Lookups are semantic: import adapters guarantee syntactically valid ids,
// but an id may still resolve to nothing, which the engine surfaces as a
// blocking error rather than a crash.
type ReferenceStore interface {
	// Account resolves an account by id.
	Account(id string) (Account, error)
	// Asset resolves an asset by id.
	Asset(id string) (Asset, error)
	// AssetBySymbol resolves an asset by ticker symbol. More than one match
	// returns ErrAmbiguous.
	AssetBySymbol(symbol string) (Asset, error)
	// Category resolves an income/spending category id to its display name.
	Category(id string) (string, error)
	// Quote returns the last known price of an asset at or before an instant.
	Quote(assetID string, at Timestamp) (Money, error)
	// Rate returns the multiplier converting one unit of from-currency into
	// to-currency at or before an instant.
	Rate(from, to string, at Timestamp) (decimal.Decimal, error)
}

// Convert applies an exchange rate to a monetary amount.
func (m Money) Convert(rate decimal.Decimal, currency string) Money {
	return Money{value: m.value.Mul(rate), cur: currency}
}
