package refstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlog/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "refstore.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Accounts(t *testing.T) {
	db := openTestDB(t)

	account := ledger.Account{
		ID:       "broker",
		Name:     "Brokerage",
		Currency: "EUR",
		Type:     ledger.InvestmentAccount,
		Broker:   "IBKR",
		Active:   true,
	}
	require.NoError(t, db.PutAccount(account))

	got, err := db.Account("broker")
	require.NoError(t, err)
	assert.Equal(t, account, got)

	_, err = db.Account("missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// Put is an upsert.
	account.Broker = "Schwab"
	require.NoError(t, db.PutAccount(account))
	got, err = db.Account("broker")
	require.NoError(t, err)
	assert.Equal(t, "Schwab", got.Broker)
}

func TestDB_Assets(t *testing.T) {
	db := openTestDB(t)

	asset := ledger.Asset{ID: "alpha", Symbol: "ALPH", ISIN: "US0378331005", Type: ledger.Equity, Country: "US"}
	require.NoError(t, db.PutAsset(asset))

	got, err := db.Asset("alpha")
	require.NoError(t, err)
	assert.Equal(t, asset.Symbol, got.Symbol)
	assert.Equal(t, asset.Type, got.Type)

	bySymbol, err := db.AssetBySymbol("ALPH")
	require.NoError(t, err)
	assert.Equal(t, "alpha", bySymbol.ID)

	_, err = db.AssetBySymbol("NONE")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, db.PutAsset(ledger.Asset{ID: "alpha2", Symbol: "ALPH", Type: ledger.Equity}))
	_, err = db.AssetBySymbol("ALPH")
	assert.ErrorIs(t, err, ledger.ErrAmbiguous)
}

func TestDB_Quotes(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.PutQuote("alpha", day(1), ledger.M(10.55, "EUR")))
	require.NoError(t, db.PutQuote("alpha", day(5), ledger.M(12.10, "EUR")))

	got, err := db.Quote("alpha", day(3))
	require.NoError(t, err)
	assert.True(t, got.Equal(ledger.M(10.55, "EUR")), "got %s", got)

	got, err = db.Quote("alpha", day(9))
	require.NoError(t, err)
	assert.True(t, got.Equal(ledger.M(12.10, "EUR")), "got %s", got)

	_, err = db.Quote("alpha", ledger.T(day(1).Time().Add(-time.Hour)))
	assert.ErrorIs(t, err, ledger.ErrNoQuote)

	// Re-putting the same instant replaces the value.
	require.NoError(t, db.PutQuote("alpha", day(5), ledger.M(12.20, "EUR")))
	got, err = db.Quote("alpha", day(5))
	require.NoError(t, err)
	assert.True(t, got.Equal(ledger.M(12.20, "EUR")), "got %s", got)
}

func TestDB_Rates(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.PutRate("EUR", "USD", day(1), decimal.NewFromFloat(1.0834)))

	got, err := db.Rate("EUR", "USD", day(4))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(1.0834)), "got %s", got)

	// The pair is directional.
	_, err = db.Rate("USD", "EUR", day(4))
	assert.ErrorIs(t, err, ledger.ErrNoRate)
}

func TestDB_Categories(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.PutCategory("groceries", "Groceries"))
	name, err := db.Category("groceries")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", name)

	_, err = db.Category("missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDB_Frontier(t *testing.T) {
	db := openTestDB(t)

	// Never saved: zero key, no error.
	got, err := db.Frontier("bank")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	key := ledger.K(day(7), 42)
	require.NoError(t, db.SaveFrontier("bank", key))
	got, err = db.Frontier("bank")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	// Scopes are independent.
	got, err = db.Frontier("broker")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

var _ ledger.ReferenceStore = (*DB)(nil)
