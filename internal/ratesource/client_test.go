package ratesource_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curtools/cur/internal/cache"
	"github.com/curtools/cur/internal/currency"
	"github.com/curtools/cur/internal/metrics"
	"github.com/curtools/cur/internal/ratesource"
)

// fakeSource is an httptest server that serves canned responses per path and
// counts requests.
type fakeSource struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	calls     map[string]int
	responses map[string]response
}

type response struct {
	status int
	body   string
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()

	f := &fakeSource{
		t:         t,
		calls:     make(map[string]int),
		responses: make(map[string]response),
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		resp, ok := f.responses[r.URL.Path]
		f.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = fmt.Fprint(w, resp.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSource) serve(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = response{status: status, body: body}
}

func (f *fakeSource) serveJSON(path string, payload any) {
	data, err := json.Marshal(payload)
	require.NoError(f.t, err)
	f.serve(path, http.StatusOK, string(data))
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func snapshotBody(base string, rates map[string]float64) map[string]any {
	now := time.Now().Unix()
	return map[string]any{
		"result":                "success",
		"time_last_update_unix": now - 3600,
		"time_next_update_unix": now + 82800,
		"base_code":             base,
		"rates":                 rates,
	}
}

func newClient(t *testing.T, src *fakeSource, c ratesource.SnapshotCache, opts ...ratesource.Option) *ratesource.Client {
	t.Helper()
	return ratesource.NewClient(ratesource.Config{BaseURL: src.server.URL}, c, opts...)
}

func TestClient_FetchesOnMissThenServesFromCache(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", snapshotBody("USD", map[string]float64{
		"USD": 1.0, "EUR": 0.9, "KRW": 1300.0, "AUD": 1.5,
	}))

	m := metrics.New()
	client := newClient(t, src, cache.NewRateCache(cache.NewMemoryStore()), ratesource.WithMetrics(m))
	ctx := context.Background()

	rate, err := client.GetRate(ctx, currency.USD, currency.KRW)
	require.NoError(t, err)
	assert.InDelta(t, 1300.0, rate, 0)
	assert.Equal(t, 1, src.callCount())

	// A different target on the same base reuses the cached snapshot.
	rate, err = client.GetRate(ctx, currency.USD, currency.AUD)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, rate, 0)
	assert.Equal(t, 1, src.callCount())

	assert.InDelta(t, 1, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("USD", metrics.OutcomeSuccess)), 0)
}

func TestClient_CachesSnapshotUntilNextUpdate(t *testing.T) {
	src := newFakeSource(t)
	body := snapshotBody("USD", map[string]float64{"USD": 1.0, "KRW": 1300.0})
	src.serveJSON("/latest/USD", body)

	rates := cache.NewRateCache(cache.NewMemoryStore())
	client := newClient(t, src, rates)

	_, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
	require.NoError(t, err)

	var cached ratesource.Snapshot
	require.NoError(t, rates.Load("USD", &cached))
	assert.Equal(t, "USD", cached.BaseCode)
	assert.InDelta(t, 1300.0, cached.ConversionRates["KRW"], 0)
	assert.Equal(t, body["time_next_update_unix"], cached.TimeNextUpdateUnix)

	entries, err := rates.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, time.Unix(cached.TimeNextUpdateUnix, 0).Unix(), entries[0].ExpiresAt.Unix())
}

func TestClient_UnknownTargetCurrency(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", map[string]any{
		"result":                "success",
		"documentation":         "https://www.exchangerate-api.com/docs",
		"terms_of_use":          "https://www.exchangerate-api.com/terms",
		"time_last_update_unix": time.Now().Unix() - 3600,
		"time_last_update_utc":  "Thu, 01 Jan 2024 00:00:00 +0000",
		"time_next_update_unix": time.Now().Unix() + 82800,
		"time_next_update_utc":  "Fri, 02 Jan 2024 00:00:00 +0000",
		"base_code":             "USD",
		"rates":                 map[string]float64{"USD": 1.0, "AUD": 1.5},
	})

	client := newClient(t, src, cache.NewRateCache(cache.NewMemoryStore()))

	_, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
	require.Error(t, err)
	assert.ErrorIs(t, err, ratesource.ErrUnknownTargetCurrency)
	assert.Contains(t, err.Error(), "not found in rates")

	var unknown *ratesource.UnknownTargetCurrencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "KRW", unknown.Code)
}

func TestClient_StaleEntryIsRefetched(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", snapshotBody("USD", map[string]float64{"KRW": 1350.0}))

	rates := cache.NewRateCache(cache.NewMemoryStore())
	stale, err := json.Marshal(ratesource.Snapshot{
		Result:             ratesource.ResultSuccess,
		BaseCode:           "USD",
		TimeNextUpdateUnix: time.Now().Unix() - 60,
		ConversionRates:    map[string]float64{"KRW": 1000.0},
	})
	require.NoError(t, err)
	require.NoError(t, rates.Set("USD", stale, time.Now().Unix()-60))

	client := newClient(t, src, rates)

	rate, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
	require.NoError(t, err)
	assert.InDelta(t, 1350.0, rate, 0)
	assert.Equal(t, 1, src.callCount())
}

func TestClient_BasesAreCachedIndependently(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", snapshotBody("USD", map[string]float64{"USD": 1.0, "KRW": 1300.0, "AUD": 1.5}))
	src.serveJSON("/latest/AUD", snapshotBody("AUD", map[string]float64{"USD": 0.67, "AUD": 1.0, "KRW": 870.0}))

	store, err := cache.NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	rates := cache.NewRateCache(store)
	client := newClient(t, src, rates)
	ctx := context.Background()

	usdRate, err := client.GetRate(ctx, currency.USD, currency.KRW)
	require.NoError(t, err)
	audRate, err := client.GetRate(ctx, currency.AUD, currency.USD)
	require.NoError(t, err)

	assert.InDelta(t, 1300.0, usdRate, 0)
	assert.InDelta(t, 0.67, audRate, 0)
	assert.Equal(t, 2, src.callCount())

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"USD", "AUD"}, keys)

	require.NoError(t, rates.Clear())
	keys, err = store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = client.GetRate(ctx, currency.USD, currency.KRW)
	require.NoError(t, err)
	assert.Equal(t, 3, src.callCount())
}

func TestClient_Failures(t *testing.T) {
	validNext := time.Now().Unix() + 3600

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		outcome string
		wantMsg string
	}{
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{}`,
			wantErr: ratesource.ErrTransport,
			outcome: metrics.OutcomeTransportError,
			wantMsg: "status 500",
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `not here`,
			wantErr: ratesource.ErrTransport,
			outcome: metrics.OutcomeTransportError,
			wantMsg: "status 404",
		},
		{
			name:    "source reports error",
			status:  http.StatusOK,
			body:    `{"result":"error","error-type":"invalid-key"}`,
			wantErr: ratesource.ErrTransport,
			outcome: metrics.OutcomeTransportError,
			wantMsg: "invalid-key",
		},
		{
			name:    "not JSON",
			status:  http.StatusOK,
			body:    `<html></html>`,
			wantErr: ratesource.ErrDecode,
			outcome: metrics.OutcomeDecodeError,
		},
		{
			name:    "missing rates",
			status:  http.StatusOK,
			body:    fmt.Sprintf(`{"result":"success","base_code":"USD","time_next_update_unix":%d}`, validNext),
			wantErr: ratesource.ErrDecode,
			outcome: metrics.OutcomeDecodeError,
			wantMsg: "conversion_rates",
		},
		{
			name:    "missing result",
			status:  http.StatusOK,
			body:    fmt.Sprintf(`{"base_code":"USD","time_next_update_unix":%d,"conversion_rates":{"KRW":1300}}`, validNext),
			wantErr: ratesource.ErrDecode,
			outcome: metrics.OutcomeDecodeError,
			wantMsg: "missing result",
		},
		{
			name:    "missing next update",
			status:  http.StatusOK,
			body:    `{"result":"success","base_code":"USD","rates":{"KRW":1300}}`,
			wantErr: ratesource.ErrDecode,
			outcome: metrics.OutcomeDecodeError,
			wantMsg: "time_next_update_unix",
		},
		{
			name:    "missing base code",
			status:  http.StatusOK,
			body:    fmt.Sprintf(`{"result":"success","time_next_update_unix":%d,"rates":{"KRW":1300}}`, validNext),
			wantErr: ratesource.ErrDecode,
			outcome: metrics.OutcomeDecodeError,
			wantMsg: "base_code",
		},
		{
			name:    "wrong base code",
			status:  http.StatusOK,
			body:    fmt.Sprintf(`{"result":"success","base_code":"EUR","time_next_update_unix":%d,"rates":{"KRW":1300}}`, validNext),
			wantErr: ratesource.ErrDecode,
			outcome: metrics.OutcomeDecodeError,
			wantMsg: "got base_code EUR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(t)
			src.serve("/latest/USD", tt.status, tt.body)

			store := cache.NewMemoryStore()
			m := metrics.New()
			client := newClient(t, src, cache.NewRateCache(store), ratesource.WithMetrics(m))

			_, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Equal(t, 1, src.callCount())
			assert.InDelta(t, 1, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("USD", tt.outcome)), 0)

			// Failures are never cached.
			keys, keysErr := store.Keys()
			require.NoError(t, keysErr)
			assert.Empty(t, keys)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	src := newFakeSource(t)
	baseURL := src.server.URL
	src.server.Close()

	client := ratesource.NewClient(ratesource.Config{BaseURL: baseURL, APIKey: "secret-key"}, cache.NewRateCache(cache.NewMemoryStore()))

	_, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
	require.Error(t, err)
	assert.ErrorIs(t, err, ratesource.ErrTransport)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestClient_ContextCanceled(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", snapshotBody("USD", map[string]float64{"KRW": 1300.0}))
	client := newClient(t, src, cache.NewRateCache(cache.NewMemoryStore()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetRate(ctx, currency.USD, currency.KRW)
	require.Error(t, err)
	assert.ErrorIs(t, err, ratesource.ErrTransport)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_RedactedErrorKeepsCause(t *testing.T) {
	src := newFakeSource(t)
	client := ratesource.NewClient(
		ratesource.Config{BaseURL: src.server.URL, APIKey: "secret-key"},
		cache.NewRateCache(cache.NewMemoryStore()),
		ratesource.WithHTTPClient(src.server.Client()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetRate(ctx, currency.USD, currency.KRW)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
	assert.Contains(t, err.Error(), "<redacted>")
	assert.ErrorIs(t, err, ratesource.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)

	var urlErr *url.Error
	assert.ErrorAs(t, err, &urlErr)
}

func TestClient_APIKeyInPath(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/my-key/latest/USD", map[string]any{
		"result":                "success",
		"base_code":             "USD",
		"time_next_update_unix": time.Now().Unix() + 3600,
		"conversion_rates":      map[string]float64{"KRW": 1385.0},
	})

	client := ratesource.NewClient(
		ratesource.Config{BaseURL: src.server.URL + "/", APIKey: "my-key"},
		cache.NewRateCache(cache.NewMemoryStore()),
		ratesource.WithHTTPClient(src.server.Client()),
	)

	rate, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
	require.NoError(t, err)
	assert.InDelta(t, 1385.0, rate, 0)
}

func TestClient_CachedSnapshotWithWrongBaseIsRefetched(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", snapshotBody("USD", map[string]float64{"KRW": 1300.0}))

	rates := cache.NewRateCache(cache.NewMemoryStore())
	wrong, err := json.Marshal(ratesource.Snapshot{
		Result:             ratesource.ResultSuccess,
		BaseCode:           "AUD",
		TimeNextUpdateUnix: time.Now().Unix() + 3600,
		ConversionRates:    map[string]float64{"KRW": 870.0},
	})
	require.NoError(t, err)
	require.NoError(t, rates.Set("USD", wrong, time.Now().Unix()+3600))

	client := newClient(t, src, rates)

	rate, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
	require.NoError(t, err)
	assert.InDelta(t, 1300.0, rate, 0)
	assert.Equal(t, 1, src.callCount())
}

// failingCache simulates a cache whose writes always fail.
type failingCache struct {
	ratesource.SnapshotCache
}

func (failingCache) Set(string, json.RawMessage, int64) error {
	return errors.New("disk full")
}

func TestClient_CacheWriteFailureStillAnswers(t *testing.T) {
	src := newFakeSource(t)
	src.serveJSON("/latest/USD", snapshotBody("USD", map[string]float64{"KRW": 1300.0}))

	client := newClient(t, src, failingCache{cache.NewRateCache(cache.NewMemoryStore())})

	for range 2 {
		rate, err := client.GetRate(context.Background(), currency.USD, currency.KRW)
		require.NoError(t, err)
		assert.InDelta(t, 1300.0, rate, 0)
	}
	assert.Equal(t, 2, src.callCount())
}
