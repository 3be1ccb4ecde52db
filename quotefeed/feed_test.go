package quotefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlog/ledger"
	"github.com/finlog/ledger/refstore"
)

// testFeed builds a feed talking straight to the test server, bypassing the
// disk cache so every request hits the handler.
func testFeed(store Store) *Feed {
	return &Feed{client: http.DefaultClient, store: store, log: zerolog.Nop()}
}

func testInstant() ledger.Timestamp {
	return ledger.At(2025, time.April, 1, 18, 0, 0)
}

func TestFeed_FetchQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":187.42}}]}}`))
	}))
	defer server.Close()

	store := refstore.NewMemory()
	feed := testFeed(store)

	src := Source{
		Asset:    "alpha",
		URL:      server.URL,
		Path:     "$.chart.result[0].meta.regularMarketPrice",
		Currency: "USD",
	}
	require.NoError(t, feed.FetchQuote(context.Background(), src, testInstant()))

	got, err := store.Quote("alpha", testInstant())
	require.NoError(t, err)
	assert.True(t, got.Equal(ledger.M(187.42, "USD")), "got %s", got)
}

func TestFeed_FetchRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"USD":1.0834}}`))
	}))
	defer server.Close()

	store := refstore.NewMemory()
	feed := testFeed(store)

	src := RateSource{From: "EUR", To: "USD", URL: server.URL, Path: "$.rates.USD"}
	require.NoError(t, feed.FetchRate(context.Background(), src, testInstant()))

	got, err := store.Rate("EUR", "USD", testInstant())
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(1.0834)), "got %s", got)
}

func TestFeed_ExtractErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/string":
			w.Write([]byte(`{"price":"not a number"}`))
		case "/notfound":
			http.NotFound(w, r)
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	feed := testFeed(refstore.NewMemory())
	ctx := context.Background()

	_, err := feed.extract(ctx, server.URL+"/string", "$.price")
	assert.ErrorContains(t, err, "not a number")

	_, err = feed.extract(ctx, server.URL+"/notfound", "$.price")
	assert.ErrorContains(t, err, "404")

	_, err = feed.extract(ctx, server.URL+"/empty", "$.missing")
	assert.Error(t, err)
}

func TestFeed_FetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			w.Write([]byte(`{"price":42.5}`))
		case "/rate":
			w.Write([]byte(`{"rate":0.92}`))
		}
	}))
	defer server.Close()

	store := refstore.NewMemory()
	feed := testFeed(store)

	quotes := []Source{{Asset: "alpha", URL: server.URL + "/quote", Path: "$.price", Currency: "EUR"}}
	rates := []RateSource{{From: "USD", To: "EUR", URL: server.URL + "/rate", Path: "$.rate"}}
	require.NoError(t, feed.FetchAll(context.Background(), quotes, rates, testInstant()))

	quote, err := store.Quote("alpha", testInstant())
	require.NoError(t, err)
	assert.True(t, quote.Equal(ledger.M(42.5, "EUR")), "got %s", quote)

	rate, err := store.Rate("USD", "EUR", testInstant())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.92)), "got %s", rate)
}
