// Package refstore provides implementations of the ledger.ReferenceStore
// interface: an in-memory store for tests and embedding, and a SQLite-backed
// store for durable reference data (accounts, assets, categories, quotes,
// exchange rates) plus the persisted rebuild frontier.
package refstore
