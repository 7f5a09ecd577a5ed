package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/bestseller-scraper/internal/browser/browsertest"
	"github.com/maltedev/bestseller-scraper/internal/events"
	"github.com/maltedev/bestseller-scraper/internal/fetch"
	"github.com/maltedev/bestseller-scraper/internal/metrics"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/provider/all"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

const aladinList = `<html><body>
<div class="ss_book_box">
  <img src="//image.aladin.co.kr/product/1/cover.jpg">
  <div class="ss_book_list"><ul>
    <li><a class="bo3" href="/shop/wproduct.aspx?ItemId=1">소년이 온다</a></li>
    <li>한강 (지은이) | 창비 | 2014년 5월</li>
  </ul></div>
</div>
<div class="ss_book_box">
  <img src="//image.aladin.co.kr/product/2/cover.jpg">
  <div class="ss_book_list"><ul>
    <li><a class="bo3" href="/shop/wproduct.aspx?ItemId=2">작별하지 않는다</a></li>
    <li>한강 (지은이) | 문학동네 | 2021년 9월</li>
  </ul></div>
</div>
</body></html>`

const amazonList = `<html><body>
<div data-asin="B001"><a href="/dp/B001"><img src="https://m.media-amazon.com/1.jpg"></a>
  <div class="p13n-sc-truncate">Fourth Wing</div><span class="a-size-small">Rebecca Yarros</span></div>
</body></html>`

const amazonDetail = `<html><body>
<div id="bookDescription_feature_div"><div class="a-expander-content"><span>An epic fantasy about a war college for dragon riders and the deadly trials within.</span></div></div>
</body></html>`

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func newTestService(t *testing.T, launcher *browsertest.Launcher, fetcher Fetcher, opts ...Option) *Service {
	t.Helper()

	registry, err := all.Registry()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := render.NewRunner(logger).WithSleep(func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	})

	opts = append([]Option{WithRunner(runner)}, opts...)
	return NewService(registry, launcher, fetcher, logger, opts...)
}

func TestListBooksStatic(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://www.aladin.co.kr/shop/common/wbest.aspx?BranchType=1&BestType=Bestseller").
		Return(aladinList, nil)
	launcher := browsertest.NewLauncher("")

	svc := newTestService(t, launcher, fetcher)
	books, err := svc.ListBooks(context.Background(), provider.KR)

	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "소년이 온다", books[0].Title)
	assert.Equal(t, "https://www.aladin.co.kr/shop/wproduct.aspx?ItemId=1", books[0].Link)
	assert.Equal(t, 0, launcher.Opens())
	fetcher.AssertExpectations(t)
}

func TestListBooksUpstreamError(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything).
		Return("", &fetch.StatusError{URL: "https://www.aladin.co.kr", StatusCode: 503})

	svc := newTestService(t, browsertest.NewLauncher(""), fetcher)
	_, err := svc.ListBooks(context.Background(), provider.KR)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, StageFetch, StageOf(err))

	var se *fetch.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 503, se.StatusCode)
}

func TestListBooksDynamic(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonList)

	svc := newTestService(t, launcher, new(MockFetcher))
	books, err := svc.ListBooks(context.Background(), provider.US)

	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Fourth Wing", books[0].Title)
	assert.Equal(t, "Rebecca Yarros", books[0].Author)

	assert.Equal(t, 1, launcher.Session.Closes())
	require.Len(t, launcher.Options(), 1)
	assert.False(t, launcher.Options()[0].Stealth)

	calls := launcher.Session.FakePage.Calls()
	assert.Equal(t, "goto https://www.amazon.com/best-sellers-books-Amazon/zgbs/books networkidle 30s", calls[0])
	assert.Equal(t, "content", calls[len(calls)-1])
}

func TestListBooksEmptyPageIsNotAnError(t *testing.T) {
	launcher := browsertest.NewLauncher("<html><body>Service unavailable</body></html>")

	svc := newTestService(t, launcher, new(MockFetcher))
	books, err := svc.ListBooks(context.Background(), provider.JP)

	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestBookDetail(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonDetail)

	svc := newTestService(t, launcher, new(MockFetcher))
	d, err := svc.BookDetail(context.Background(), provider.US, "https://www.amazon.com/dp/B001")

	require.NoError(t, err)
	assert.Contains(t, d.Description, "war college for dragon riders")
	assert.Empty(t, d.Publisher)
	assert.Equal(t, 1, launcher.Session.Closes())
	assert.True(t, launcher.Options()[0].Stealth)
}

func TestBookDetailMissingURL(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonDetail)
	fetcher := new(MockFetcher)

	svc := newTestService(t, launcher, fetcher)
	_, err := svc.BookDetail(context.Background(), provider.US, "   ")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, launcher.Opens())
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestBookDetailNavigationTimeoutClosesSessionOnce(t *testing.T) {
	launcher := browsertest.NewLauncher("")
	launcher.Session.FakePage.GotoErr = errors.New("Timeout 40000ms exceeded")

	svc := newTestService(t, launcher, new(MockFetcher))
	_, err := svc.BookDetail(context.Background(), provider.ES, "https://www.elcorteingles.es/libros/A1/")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Equal(t, StageRender, StageOf(err))
	assert.Contains(t, err.Error(), "Timeout 40000ms exceeded")
	assert.Equal(t, 1, launcher.Session.Closes())
}

func TestBookDetailContentFailureClosesSession(t *testing.T) {
	launcher := browsertest.NewLauncher("")
	launcher.Session.FakePage.ContentErr = errors.New("target closed")

	svc := newTestService(t, launcher, new(MockFetcher))
	_, err := svc.BookDetail(context.Background(), provider.KR, "https://www.aladin.co.kr/shop/wproduct.aspx?ItemId=1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Equal(t, StageContent, StageOf(err))
	assert.Equal(t, 1, launcher.Session.Closes())
}

func TestBookDetailLaunchFailure(t *testing.T) {
	launcher := browsertest.NewLauncher("")
	launcher.OpenErr = errors.New("chromium not installed")

	svc := newTestService(t, launcher, new(MockFetcher))
	_, err := svc.BookDetail(context.Background(), provider.JP, "https://www.kinokuniya.co.jp/f/dsg-01-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Equal(t, StageLaunch, StageOf(err))
	assert.Equal(t, 0, launcher.Session.Closes())
}

func TestUnknownProvider(t *testing.T) {
	svc := newTestService(t, browsertest.NewLauncher(""), new(MockFetcher))

	_, err := svc.ListBooks(context.Background(), provider.ID("fr"))
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = svc.BookDetail(context.Background(), provider.ID("fr"), "https://example.com")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestScrapeEventsAndMetrics(t *testing.T) {
	launcher := browsertest.NewLauncher(amazonList)
	pub := &recordingPublisher{}
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("test", reg)

	svc := newTestService(t, launcher, new(MockFetcher), WithPublisher(pub), WithMetrics(collector))

	_, err := svc.ListBooks(context.Background(), provider.US)
	require.NoError(t, err)

	launcher.Session.FakePage.GotoErr = errors.New("net::ERR_CONNECTION_RESET")
	_, err = svc.BookDetail(context.Background(), provider.US, "https://www.amazon.com/dp/B001")
	require.Error(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.EventTypeListScraped, pub.events[0].Type)
	assert.Equal(t, 1, pub.events[0].Books)
	assert.Equal(t, events.EventTypeScrapeFailed, pub.events[1].Type)
	assert.Contains(t, pub.events[1].Error, "ERR_CONNECTION_RESET")

	series, err := testutil.GatherAndCount(reg, "test_scrapes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", status(nil))
	assert.Equal(t, "validation_error", status(stageError(provider.KR, StageValidate, ErrValidation, errors.New("x"))))
	assert.Equal(t, "navigation_error", status(stageError(provider.KR, StageRender, ErrNavigation, errors.New("x"))))
	assert.Equal(t, "upstream_error", status(stageError(provider.KR, StageFetch, ErrUpstream, errors.New("x"))))
	assert.Equal(t, "upstream_status", status(stageError(provider.KR, StageFetch, ErrUpstream,
		&fetch.StatusError{URL: "https://www.aladin.co.kr", StatusCode: 503})))
	assert.Equal(t, "error", status(errors.New("x")))
}
