package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/events"
	"github.com/maltedev/bestseller-scraper/internal/metrics"
	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/normalize"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

// Fetcher retrieves server-rendered HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Service routes scrape requests to providers and owns the session lifecycle.
type Service struct {
	registry  *provider.Registry
	launcher  browser.Launcher
	fetcher   Fetcher
	runner    *render.Runner
	publisher events.Publisher
	metrics   *metrics.Collector
	logger    *slog.Logger
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

func WithRunner(r *render.Runner) Option {
	return func(s *Service) { s.runner = r }
}

func NewService(registry *provider.Registry, launcher browser.Launcher, fetcher Fetcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		launcher:  launcher,
		fetcher:   fetcher,
		runner:    render.NewRunner(logger),
		publisher: events.NopPublisher{},
		logger:    logger.With("component", "scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers lists the registered provider identifiers.
func (s *Service) Providers() []provider.ID {
	return s.registry.IDs()
}

// ListBooks returns at most models.MaxListSize unique bestsellers for id.
func (s *Service) ListBooks(ctx context.Context, id provider.ID) ([]models.BookSummary, error) {
	start := time.Now()

	p, ok := s.registry.Get(id)
	if !ok {
		return nil, stageError(id, StageValidate, ErrUnknownProvider, fmt.Errorf("no provider %q", id))
	}

	logger := s.logger.With("provider", id, "kind", "list")
	logger.Info("scraping bestseller list", "url", p.ListURL, "mode", p.List.Mode)

	doc, err := s.load(ctx, p, p.List, p.ListURL, logger)
	if err != nil {
		s.finish(ctx, logger, p, "list", p.ListURL, start, 0, err)
		return nil, err
	}

	books := p.ListExtractor.ExtractList(doc)
	books = normalize.Limit(normalize.DedupeByTitle(books), models.MaxListSize)
	if books == nil {
		books = []models.BookSummary{}
	}

	s.metrics.RecordBooks(string(id), len(books))
	s.finish(ctx, logger, p, "list", p.ListURL, start, len(books), nil)

	return books, nil
}

// BookDetail scrapes the product page at url. An empty url fails with
// ErrValidation before any session is opened.
func (s *Service) BookDetail(ctx context.Context, id provider.ID, url string) (*models.BookDetail, error) {
	start := time.Now()

	url = strings.TrimSpace(url)
	if url == "" {
		return nil, stageError(id, StageValidate, ErrValidation, fmt.Errorf("url is required"))
	}

	p, ok := s.registry.Get(id)
	if !ok {
		return nil, stageError(id, StageValidate, ErrUnknownProvider, fmt.Errorf("no provider %q", id))
	}

	logger := s.logger.With("provider", id, "kind", "detail")
	logger.Info("scraping book detail", "url", url)

	doc, err := s.load(ctx, p, p.Detail, url, logger)
	if err != nil {
		s.finish(ctx, logger, p, "detail", url, start, 0, err)
		return nil, err
	}

	detail := p.DetailExtractor.ExtractDetail(doc)
	s.finish(ctx, logger, p, "detail", url, start, 0, nil)

	return &detail, nil
}

// load retrieves url according to the endpoint mode and parses it.
func (s *Service) load(ctx context.Context, p *provider.Provider, ep provider.Endpoint, url string, logger *slog.Logger) (*goquery.Document, error) {
	var (
		html string
		err  error
	)

	if ep.Mode == provider.Static {
		html, err = s.fetcher.Fetch(ctx, url)
		if err != nil {
			err = stageError(p.ID, StageFetch, ErrUpstream, err)
		}
	} else {
		html, err = s.render(ctx, p, ep, url, logger)
	}
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, stageError(p.ID, StageParse, ErrUpstream, fmt.Errorf("failed to parse HTML: %w", err))
	}
	return doc, nil
}

// render opens a session, runs the wait plan and returns the page HTML. The
// session is closed on every path.
func (s *Service) render(ctx context.Context, p *provider.Provider, ep provider.Endpoint, url string, logger *slog.Logger) (string, error) {
	session, err := s.launcher.Open(ctx, browser.SessionOptions{Stealth: ep.Stealth})
	if err != nil {
		return "", stageError(p.ID, StageLaunch, ErrNavigation, err)
	}
	s.metrics.SessionOpened()

	logger = logger.With("session_id", session.ID())
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", "error", err)
		}
		s.metrics.SessionClosed()
	}()

	page := session.Page()
	if err := s.runner.WithLogger(logger).Run(ctx, page, url, ep.Wait); err != nil {
		return "", stageError(p.ID, StageRender, ErrNavigation, err)
	}

	html, err := page.Content()
	if err != nil {
		return "", stageError(p.ID, StageContent, ErrNavigation, fmt.Errorf("failed to read page content: %w", err))
	}

	return html, nil
}

func (s *Service) finish(ctx context.Context, logger *slog.Logger, p *provider.Provider, kind, url string, start time.Time, books int, err error) {
	elapsed := time.Since(start)
	s.metrics.RecordScrape(string(p.ID), kind, status(err), elapsed)

	event := &events.Event{
		Provider: string(p.ID),
		URL:      url,
		Books:    books,
		Duration: elapsed,
	}

	if err != nil {
		logger.Error("scrape failed", "stage", StageOf(err), "url", url, "duration", elapsed, "error", err)
		event.Type = events.EventTypeScrapeFailed
		event.Error = err.Error()
	} else {
		logger.Info("scrape completed", "books", books, "duration", elapsed)
		event.Type = events.EventTypeListScraped
		if kind == "detail" {
			event.Type = events.EventTypeDetailScraped
		}
	}

	// Events are best effort; a dead stream must not fail the request
	if pubErr := s.publisher.Publish(context.WithoutCancel(ctx), event); pubErr != nil {
		logger.Warn("failed to publish scrape event", "error", pubErr)
	}
}
