package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/bestseller-scraper/internal/browser/browsertest"
	"github.com/maltedev/bestseller-scraper/internal/fetch"
	"github.com/maltedev/bestseller-scraper/internal/metrics"
	"github.com/maltedev/bestseller-scraper/internal/provider/all"
	"github.com/maltedev/bestseller-scraper/internal/render"
	"github.com/maltedev/bestseller-scraper/internal/scraper"
)

const amazonList = `<html><body>
<div data-asin="B001"><a href="/dp/B001"><img src="https://m.media-amazon.com/1.jpg"></a>
  <div class="p13n-sc-truncate">Fourth Wing</div><span class="a-size-small">Rebecca Yarros</span></div>
<div data-asin="B002"><a href="/dp/B002"><img src="https://m.media-amazon.com/2.jpg"></a>
  <div class="p13n-sc-truncate">Iron Flame</div><span class="a-size-small">Rebecca Yarros</span></div>
</body></html>`

const amazonDetail = `<html><body>
<div id="bookDescription_feature_div"><div class="a-expander-content"><span>An epic fantasy about a war college for dragon riders and the deadly trials within.</span></div></div>
</body></html>`

type fetchFunc func(ctx context.Context, url string) (string, error)

func (f fetchFunc) Fetch(ctx context.Context, url string) (string, error) { return f(ctx, url) }

func newTestServer(t *testing.T, launcher *browsertest.Launcher, fetcher scraper.Fetcher) (*httptest.Server, *prometheus.Registry) {
	t.Helper()

	registry, err := all.Registry()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := render.NewRunner(logger).WithSleep(func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	})

	reg := prometheus.NewRegistry()
	svc := scraper.NewService(registry, launcher, fetcher, logger,
		scraper.WithRunner(runner),
		scraper.WithMetrics(metrics.NewCollector("test", reg)),
	)

	srv := httptest.NewServer(NewRouter(NewHandlers(svc, logger), RouterOptions{
		RequestTimeout: 5 * time.Second,
		Gatherer:       reg,
	}))
	t.Cleanup(srv.Close)
	return srv, reg
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func noFetch(t *testing.T) scraper.Fetcher {
	return fetchFunc(func(context.Context, string) (string, error) {
		t.Error("unexpected static fetch")
		return "", errors.New("unexpected")
	})
}

func TestListBooksEndpoint(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonList)
	srv, _ := newTestServer(t, launcher, noFetch(t))

	resp, body := get(t, srv, "/us-books")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out struct {
		Books []map[string]string `json:"books"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Books, 2)
	assert.Equal(t, "Fourth Wing", out.Books[0]["title"])
	assert.Equal(t, "https://www.amazon.com/dp/B001", out.Books[0]["link"])
	assert.Equal(t, 1, launcher.Session.Closes())
}

func TestListBooksEndpointEmptyPage(t *testing.T) {
	srv, _ := newTestServer(t, browsertest.NewLauncher("<html><body></body></html>"), noFetch(t))

	resp, body := get(t, srv, "/us-books")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"books":[]}`, string(body))
}

func TestListBooksEndpointUpstreamFailure(t *testing.T) {
	fetcher := fetchFunc(func(_ context.Context, u string) (string, error) {
		return "", &fetch.StatusError{URL: u, StatusCode: 503}
	})
	srv, _ := newTestServer(t, browsertest.NewLauncher(""), fetcher)

	resp, body := get(t, srv, "/kr-books")

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "failed to scrape bestsellers", out.Error)
	assert.Contains(t, out.Message, "503")
}

func TestBookDetailEndpoint(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonDetail)
	srv, _ := newTestServer(t, launcher, noFetch(t))

	resp, body := get(t, srv, "/us-book-detail?url="+url.QueryEscape("https://www.amazon.com/dp/B001"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out["description"], "war college")
	assert.Contains(t, out, "plot")
	assert.Contains(t, out, "authorInfo")

	require.Len(t, launcher.Options(), 1)
	assert.True(t, launcher.Options()[0].Stealth)
	assert.Equal(t, "goto https://www.amazon.com/dp/B001 networkidle 40s", launcher.Session.FakePage.Calls()[0])
}

func TestBookDetailEndpointValidation(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"missing", "", "url is required"},
		{"empty", "?url=", "url is required"},
		{"not absolute", "?url=" + url.QueryEscape("dp/B001"), "url must be an absolute URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher := browsertest.NewLauncher(amazonDetail)
			srv, _ := newTestServer(t, launcher, noFetch(t))

			resp, body := get(t, srv, "/es-book-detail"+tt.query)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var out map[string]string
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.message, out["error"])
			assert.NotContains(t, out, "message")

			assert.Equal(t, 0, launcher.Opens())
			assert.Empty(t, launcher.Session.FakePage.Calls())
		})
	}
}

func TestBookDetailEndpointNavigationTimeout(t *testing.T) {
	launcher := browsertest.NewLauncher("")
	launcher.Session.FakePage.GotoErr = errors.New("Timeout 60000ms exceeded")
	srv, _ := newTestServer(t, launcher, noFetch(t))

	resp, body := get(t, srv, "/es-book-detail?url="+url.QueryEscape("https://www.elcorteingles.es/libros/A1/"))

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "failed to scrape book detail", out.Error)
	assert.Contains(t, out.Message, "Timeout 60000ms exceeded")

	assert.Equal(t, 1, launcher.Opens())
	assert.Equal(t, 1, launcher.Session.Closes())
}

func TestUnknownProviderRoute(t *testing.T) {
	srv, _ := newTestServer(t, browsertest.NewLauncher(""), noFetch(t))

	resp, _ := get(t, srv, "/fr-books")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonList)
	srv, _ := newTestServer(t, launcher, noFetch(t))

	resp, body := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","providers":["es","jp","kr","us"]}`, string(body))

	get(t, srv, "/us-books")

	resp, body = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `test_scrapes_total{kind="list",provider="us",status="ok"} 1`)
	assert.Contains(t, string(body), `test_books_extracted_total{provider="us"} 2`)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, browsertest.NewLauncher(""), noFetch(t))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/us-books", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
