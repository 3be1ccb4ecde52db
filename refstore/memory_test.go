package refstore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlog/ledger"
)

func day(d int) ledger.Timestamp {
	return ledger.At(2025, time.March, d, 12, 0, 0)
}

func TestMemory_Accounts(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutAccount(ledger.Account{ID: "bank", Name: "Checking", Currency: "EUR", Type: ledger.CashAccount, Active: true}))

	got, err := m.Account("bank")
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Name)
	assert.Equal(t, "EUR", got.Currency)

	_, err = m.Account("missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemory_AssetBySymbol(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutAsset(ledger.Asset{ID: "alpha", Symbol: "ALPH", Type: ledger.Equity}))
	require.NoError(t, m.PutAsset(ledger.Asset{ID: "beta", Symbol: "BETA", Type: ledger.Equity}))

	got, err := m.AssetBySymbol("ALPH")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.ID)

	_, err = m.AssetBySymbol("NONE")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// A second asset under the same symbol makes the lookup ambiguous.
	require.NoError(t, m.PutAsset(ledger.Asset{ID: "alpha2", Symbol: "ALPH", Type: ledger.Equity}))
	_, err = m.AssetBySymbol("ALPH")
	assert.ErrorIs(t, err, ledger.ErrAmbiguous)
}

func TestMemory_Quotes(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutQuote("alpha", day(1), ledger.M(10, "EUR")))
	require.NoError(t, m.PutQuote("alpha", day(5), ledger.M(12, "EUR")))

	// At-or-before semantics.
	got, err := m.Quote("alpha", day(3))
	require.NoError(t, err)
	assert.True(t, got.Equal(ledger.M(10, "EUR")), "got %s", got)

	got, err = m.Quote("alpha", day(5))
	require.NoError(t, err)
	assert.True(t, got.Equal(ledger.M(12, "EUR")), "got %s", got)

	// Nothing at or before the instant.
	_, err = m.Quote("alpha", ledger.T(day(1).Time().Add(-time.Hour)))
	assert.Error(t, err)

	_, err = m.Quote("unknown", day(3))
	assert.ErrorIs(t, err, ledger.ErrNoQuote)
}

func TestMemory_Rates(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutRate("EUR", "USD", day(1), decimal.NewFromFloat(1.10)))

	got, err := m.Rate("EUR", "USD", day(2))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(1.10)))

	// Identity pairs need no stored rate.
	got, err = m.Rate("EUR", "EUR", day(2))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1)))

	_, err = m.Rate("USD", "EUR", day(2))
	assert.ErrorIs(t, err, ledger.ErrNoRate)
}

func TestMemory_Categories(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutCategory("groceries", "Groceries"))

	name, err := m.Category("groceries")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", name)

	_, err = m.Category("missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// Memory must satisfy the engine's store contract.
var _ ledger.ReferenceStore = (*Memory)(nil)
