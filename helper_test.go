package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// testStore is an in-memory ReferenceStore fixture. Tests mutate its maps
// directly to stage reference data.
type testStore struct {
	accounts   map[string]Account
	assets     map[string]Asset
	categories map[string]string
	quotes     map[string][]testQuote
	rates      map[string][]testRate
}

type testQuote struct {
	at    Timestamp
	price Money
}

type testRate struct {
	at   Timestamp
	rate decimal.Decimal
}

// newTestStore seeds the reference data most scenarios need: a cash account,
// an investment account with a broker, a USD cash account, a handful of
// assets and a category.
func newTestStore() *testStore {
	return &testStore{
		accounts: map[string]Account{
			"bank":   {ID: "bank", Name: "Checking", Currency: "EUR", Type: CashAccount, Active: true},
			"broker": {ID: "broker", Name: "Brokerage", Currency: "EUR", Type: InvestmentAccount, Broker: "IBKR", Active: true},
			"usd":    {ID: "usd", Name: "USD Cash", Currency: "USD", Type: CashAccount, Active: true},
		},
		assets: map[string]Asset{
			"alpha": {ID: "alpha", Symbol: "ALPH", Type: Equity},
			"beta":  {ID: "beta", Symbol: "BETA", Type: Equity},
			"bond1": {ID: "bond1", Symbol: "BND1", Type: Bond},
		},
		categories: map[string]string{"groceries": "Groceries"},
		quotes:     map[string][]testQuote{},
		rates:      map[string][]testRate{},
	}
}

func (s *testStore) putQuote(assetID string, at Timestamp, price Money) {
	s.quotes[assetID] = append(s.quotes[assetID], testQuote{at: at, price: price})
}

func (s *testStore) putRate(from, to string, at Timestamp, rate decimal.Decimal) {
	key := from + "/" + to
	s.rates[key] = append(s.rates[key], testRate{at: at, rate: rate})
}

func (s *testStore) Account(id string) (Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (s *testStore) Asset(id string) (Asset, error) {
	a, ok := s.assets[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	return a, nil
}

func (s *testStore) AssetBySymbol(symbol string) (Asset, error) {
	var found []Asset
	for _, a := range s.assets {
		if a.Symbol == symbol {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return Asset{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return Asset{}, ErrAmbiguous
	}
}

func (s *testStore) Category(id string) (string, error) {
	name, ok := s.categories[id]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func (s *testStore) Quote(assetID string, at Timestamp) (Money, error) {
	var best Money
	ok := false
	for _, q := range s.quotes[assetID] {
		if !q.at.After(at) {
			best, ok = q.price, true
		}
	}
	if !ok {
		return Money{}, ErrNoQuote
	}
	return best, nil
}

func (s *testStore) Rate(from, to string, at Timestamp) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	var best decimal.Decimal
	ok := false
	for _, r := range s.rates[from+"/"+to] {
		if !r.at.After(at) {
			best, ok = r.rate, true
		}
	}
	if !ok {
		return decimal.Decimal{}, ErrNoRate
	}
	return best, nil
}

// on builds a timestamp on a given day of January 2025, keeping scenario
// records short and unambiguous.
func on(day int) Timestamp {
	return At(2025, time.January, day, 10, 0, 0)
}
