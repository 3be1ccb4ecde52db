package refstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/finlog/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	currency TEXT NOT NULL,
	type     TEXT NOT NULL,
	broker   TEXT NOT NULL DEFAULT '',
	active   INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS assets (
	id      TEXT PRIMARY KEY,
	symbol  TEXT NOT NULL,
	isin    TEXT NOT NULL DEFAULT '',
	type    TEXT NOT NULL,
	country TEXT NOT NULL DEFAULT '',
	expiry  INTEGER
);
CREATE INDEX IF NOT EXISTS assets_symbol ON assets(symbol);
CREATE TABLE IF NOT EXISTS categories (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS quotes (
	asset    TEXT NOT NULL,
	at       INTEGER NOT NULL,
	currency TEXT NOT NULL,
	amount   TEXT NOT NULL,
	PRIMARY KEY (asset, at)
);
CREATE TABLE IF NOT EXISTS rates (
	from_cur TEXT NOT NULL,
	to_cur   TEXT NOT NULL,
	at       INTEGER NOT NULL,
	rate     TEXT NOT NULL,
	PRIMARY KEY (from_cur, to_cur, at)
);
CREATE TABLE IF NOT EXISTS frontier (
	scope TEXT PRIMARY KEY,
	at    INTEGER NOT NULL,
	seq   INTEGER NOT NULL
);
`

// DB is the SQLite-backed reference store. One file holds reference data,
// market data and the persisted rebuild frontier; the operations journal
// lives outside in its JSONL file.
type DB struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// Open opens (or creates) the reference database at path. WAL mode keeps
// readers unblocked while the quote feed writes.
func Open(path string, log zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	log = log.With().Str("store", "sqlite").Logger()
	log.Debug().Str("path", path).Msg("reference database open")
	return &DB{conn: conn, path: path, log: log}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// PutAccount adds or replaces an account.
func (db *DB) PutAccount(a ledger.Account) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO accounts (id, name, currency, type, broker, active) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Currency, a.Type.String(), a.Broker, a.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to store account %q: %w", a.ID, err)
	}
	return nil
}

// PutAsset adds or replaces an asset.
func (db *DB) PutAsset(a ledger.Asset) error {
	var expiry any
	if !a.Expiry.IsZero() {
		expiry = a.Expiry.Unix()
	}
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO assets (id, symbol, isin, type, country, expiry) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, a.ISIN, a.Type.String(), a.Country, expiry,
	)
	if err != nil {
		return fmt.Errorf("failed to store asset %q: %w", a.ID, err)
	}
	return nil
}

// PutCategory adds or replaces a category.
func (db *DB) PutCategory(id, name string) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO categories (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return fmt.Errorf("failed to store category %q: %w", id, err)
	}
	return nil
}

// PutQuote records the price of an asset at an instant.
func (db *DB) PutQuote(assetID string, at ledger.Timestamp, price ledger.Money) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO quotes (asset, at, currency, amount) VALUES (?, ?, ?, ?)`,
		assetID, at.Unix(), price.Currency(), price.Decimal().String(),
	)
	if err != nil {
		return fmt.Errorf("failed to store quote for %q: %w", assetID, err)
	}
	return nil
}

// PutRate records an exchange rate at an instant.
func (db *DB) PutRate(from, to string, at ledger.Timestamp, rate decimal.Decimal) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO rates (from_cur, to_cur, at, rate) VALUES (?, ?, ?, ?)`,
		from, to, at.Unix(), rate.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to store rate %s/%s: %w", from, to, err)
	}
	return nil
}

// Account implements ledger.ReferenceStore.
func (db *DB) Account(id string) (ledger.Account, error) {
	row := db.conn.QueryRow(`SELECT id, name, currency, type, broker, active FROM accounts WHERE id = ?`, id)
	var a ledger.Account
	var kind string
	err := row.Scan(&a.ID, &a.Name, &a.Currency, &kind, &a.Broker, &a.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("failed to query account %q: %w", id, err)
	}
	if a.Type, err = ledger.ParseAccountType(kind); err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// Asset implements ledger.ReferenceStore.
func (db *DB) Asset(id string) (ledger.Asset, error) {
	return db.scanAsset(db.conn.QueryRow(
		`SELECT id, symbol, isin, type, country, expiry FROM assets WHERE id = ?`, id))
}

// AssetBySymbol implements ledger.ReferenceStore.
func (db *DB) AssetBySymbol(symbol string) (ledger.Asset, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM assets WHERE symbol = ?`, symbol).Scan(&n); err != nil {
		return ledger.Asset{}, fmt.Errorf("failed to count assets for symbol %q: %w", symbol, err)
	}
	if n > 1 {
		return ledger.Asset{}, ledger.ErrAmbiguous
	}
	return db.scanAsset(db.conn.QueryRow(
		`SELECT id, symbol, isin, type, country, expiry FROM assets WHERE symbol = ?`, symbol))
}

func (db *DB) scanAsset(row *sql.Row) (ledger.Asset, error) {
	var a ledger.Asset
	var kind string
	var expiry sql.NullInt64
	err := row.Scan(&a.ID, &a.Symbol, &a.ISIN, &kind, &a.Country, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Asset{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Asset{}, fmt.Errorf("failed to query asset: %w", err)
	}
	if a.Type, err = ledger.ParseAssetType(kind); err != nil {
		return ledger.Asset{}, err
	}
	if expiry.Valid {
		a.Expiry = ledger.T(time.Unix(expiry.Int64, 0))
	}
	return a, nil
}

// Category implements ledger.ReferenceStore.
func (db *DB) Category(id string) (string, error) {
	var name string
	err := db.conn.QueryRow(`SELECT name FROM categories WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ledger.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query category %q: %w", id, err)
	}
	return name, nil
}

// Quote implements ledger.ReferenceStore: the last known price at or before
// the instant.
func (db *DB) Quote(assetID string, at ledger.Timestamp) (ledger.Money, error) {
	row := db.conn.QueryRow(
		`SELECT currency, amount FROM quotes WHERE asset = ? AND at <= ? ORDER BY at DESC LIMIT 1`,
		assetID, at.Unix())
	var currency, amount string
	err := row.Scan(&currency, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Money{}, ledger.ErrNoQuote
	}
	if err != nil {
		return ledger.Money{}, fmt.Errorf("failed to query quote for %q: %w", assetID, err)
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return ledger.Money{}, fmt.Errorf("corrupt quote amount %q for %q: %w", amount, assetID, err)
	}
	return ledger.M(value, currency), nil
}

// Rate implements ledger.ReferenceStore: the last known rate at or before
// the instant. The rate from a currency to itself is always 1.
func (db *DB) Rate(from, to string, at ledger.Timestamp) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	row := db.conn.QueryRow(
		`SELECT rate FROM rates WHERE from_cur = ? AND to_cur = ? AND at <= ? ORDER BY at DESC LIMIT 1`,
		from, to, at.Unix())
	var raw string
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, ledger.ErrNoRate
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to query rate %s/%s: %w", from, to, err)
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("corrupt rate %q for %s/%s: %w", raw, from, to, err)
	}
	return rate, nil
}

// SaveFrontier persists the rebuild frontier of a ledger scope, typically an
// account group, so the next pass can resume incrementally.
func (db *DB) SaveFrontier(scope string, at ledger.Key) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO frontier (scope, at, seq) VALUES (?, ?, ?)`,
		scope, at.Time.Unix(), at.Seq)
	if err != nil {
		return fmt.Errorf("failed to store frontier for %q: %w", scope, err)
	}
	db.log.Debug().Str("scope", scope).Stringer("at", at).Msg("frontier saved")
	return nil
}

// Frontier loads the persisted rebuild frontier of a scope. A scope that was
// never saved returns the zero key: the next pass replays from the beginning.
func (db *DB) Frontier(scope string) (ledger.Key, error) {
	var at, seq int64
	err := db.conn.QueryRow(`SELECT at, seq FROM frontier WHERE scope = ?`, scope).Scan(&at, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Key{}, nil
	}
	if err != nil {
		return ledger.Key{}, fmt.Errorf("failed to query frontier for %q: %w", scope, err)
	}
	return ledger.K(ledger.T(time.Unix(at, 0)), seq), nil
}
