// Package quotefeed loads asset quotes and exchange rates from JSON HTTP
// endpoints into a reference store. Endpoints are described by a URL and a
// jsonpath expression, so any provider exposing JSON works without code.
// Responses are disk-cached with daily expiry.
package quotefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/finlog/ledger"
)

// Store is the writable side of a reference store the feed fills in.
// Both refstore implementations satisfy it.
type Store interface {
	PutQuote(assetID string, at ledger.Timestamp, price ledger.Money) error
	PutRate(from, to string, at ledger.Timestamp, rate decimal.Decimal) error
}

// Source describes one quote endpoint: where to GET and how to navigate the
// returned JSON down to the price.
type Source struct {
	Asset    string `toml:"asset"`
	URL      string `toml:"url"`
	Path     string `toml:"path"` // jsonpath to the price value
	Currency string `toml:"currency"`
}

// RateSource describes one exchange rate endpoint.
type RateSource struct {
	From string `toml:"from"`
	To   string `toml:"to"`
	URL  string `toml:"url"`
	Path string `toml:"path"`
}

// Feed fetches quotes and rates and writes them into a store.
type Feed struct {
	client *http.Client
	store  Store
	log    zerolog.Logger
}

// New creates a feed writing into the given store. Responses are cached on
// disk and expire daily.
func New(store Store, log zerolog.Logger) *Feed {
	log = log.With().Str("component", "quotefeed").Logger()
	return &Feed{client: cachedClient(log), store: store, log: log}
}

// FetchQuote loads one source and stores the price stamped at the given
// instant.
func (f *Feed) FetchQuote(ctx context.Context, src Source, at ledger.Timestamp) error {
	value, err := f.extract(ctx, src.URL, src.Path)
	if err != nil {
		return fmt.Errorf("quote for %q: %w", src.Asset, err)
	}
	price := ledger.M(value, src.Currency)
	if err := f.store.PutQuote(src.Asset, at, price); err != nil {
		return err
	}
	f.log.Info().Str("asset", src.Asset).Stringer("price", price).Msg("quote loaded")
	return nil
}

// FetchRate loads one rate source and stores the rate stamped at the given
// instant.
func (f *Feed) FetchRate(ctx context.Context, src RateSource, at ledger.Timestamp) error {
	value, err := f.extract(ctx, src.URL, src.Path)
	if err != nil {
		return fmt.Errorf("rate %s/%s: %w", src.From, src.To, err)
	}
	if err := f.store.PutRate(src.From, src.To, at, decimal.NewFromFloat(value)); err != nil {
		return err
	}
	f.log.Info().Str("pair", src.From+"/"+src.To).Float64("rate", value).Msg("rate loaded")
	return nil
}

// FetchAll loads every source concurrently. It reports the first failure but
// lets the other sources finish through the group's shared context.
func (f *Feed) FetchAll(ctx context.Context, quotes []Source, rates []RateSource, at ledger.Timestamp) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, src := range quotes {
		g.Go(func() error { return f.FetchQuote(ctx, src, at) })
	}
	for _, src := range rates {
		g.Go(func() error { return f.FetchRate(ctx, src, at) })
	}
	return g.Wait()
}

// extract GETs a JSON document and navigates the jsonpath down to a number.
func (f *Feed) extract(ctx context.Context, url, path string) (float64, error) {
	var jobj any
	if err := f.jwget(ctx, url, &jobj); err != nil {
		return 0, fmt.Errorf("error in wget %q: %w", url, err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: not a number: %v", path, jval)
	}
	return val, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func (f *Feed) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
