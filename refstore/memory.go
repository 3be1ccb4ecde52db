package refstore

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/finlog/ledger"
)

// Memory is a map-backed reference store. It is safe for concurrent use and
// is the store of choice for tests and for callers that load reference data
// from files at startup.
type Memory struct {
	mu         sync.RWMutex
	accounts   map[string]ledger.Account
	assets     map[string]ledger.Asset
	categories map[string]string
	quotes     map[string][]quotePoint
	rates      map[ratePair][]ratePoint
}

type quotePoint struct {
	at    ledger.Timestamp
	price ledger.Money
}

type ratePair struct {
	from, to string
}

type ratePoint struct {
	at   ledger.Timestamp
	rate decimal.Decimal
}

// NewMemory creates an empty in-memory reference store.
func NewMemory() *Memory {
	return &Memory{
		accounts:   make(map[string]ledger.Account),
		assets:     make(map[string]ledger.Asset),
		categories: make(map[string]string),
		quotes:     make(map[string][]quotePoint),
		rates:      make(map[ratePair][]ratePoint),
	}
}

// PutAccount adds or replaces an account.
func (m *Memory) PutAccount(a ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	return nil
}

// PutAsset adds or replaces an asset.
func (m *Memory) PutAsset(a ledger.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
	return nil
}

// PutCategory adds or replaces a category.
func (m *Memory) PutCategory(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[id] = name
	return nil
}

// PutQuote records the price of an asset at an instant.
func (m *Memory) PutQuote(assetID string, at ledger.Timestamp, price ledger.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	points := append(m.quotes[assetID], quotePoint{at: at, price: price})
	sort.Slice(points, func(a, b int) bool { return points[a].at.Before(points[b].at) })
	m.quotes[assetID] = points
	return nil
}

// PutRate records the exchange rate from one currency to another at an
// instant.
func (m *Memory) PutRate(from, to string, at ledger.Timestamp, rate decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair := ratePair{from, to}
	points := append(m.rates[pair], ratePoint{at: at, rate: rate})
	sort.Slice(points, func(a, b int) bool { return points[a].at.Before(points[b].at) })
	m.rates[pair] = points
	return nil
}

// Account implements ledger.ReferenceStore.
func (m *Memory) Account(id string) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return ledger.Account{}, ledger.ErrNotFound
	}
	return a, nil
}

// Asset implements ledger.ReferenceStore.
func (m *Memory) Asset(id string) (ledger.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[id]
	if !ok {
		return ledger.Asset{}, ledger.ErrNotFound
	}
	return a, nil
}

// AssetBySymbol implements ledger.ReferenceStore.
func (m *Memory) AssetBySymbol(symbol string) (ledger.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found []ledger.Asset
	for _, a := range m.assets {
		if a.Symbol == symbol {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return ledger.Asset{}, ledger.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return ledger.Asset{}, ledger.ErrAmbiguous
	}
}

// Category implements ledger.ReferenceStore.
func (m *Memory) Category(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.categories[id]
	if !ok {
		return "", ledger.ErrNotFound
	}
	return name, nil
}

// Quote implements ledger.ReferenceStore: the last known price at or before
// the instant.
func (m *Memory) Quote(assetID string, at ledger.Timestamp) (ledger.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	points := m.quotes[assetID]
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].at.After(at) {
			return points[i].price, nil
		}
	}
	return ledger.Money{}, ledger.ErrNoQuote
}

// Rate implements ledger.ReferenceStore: the last known rate at or before
// the instant. The rate from a currency to itself is always 1.
func (m *Memory) Rate(from, to string, at ledger.Timestamp) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	points := m.rates[ratePair{from, to}]
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].at.After(at) {
			return points[i].rate, nil
		}
	}
	return decimal.Decimal{}, ledger.ErrNoRate
}
