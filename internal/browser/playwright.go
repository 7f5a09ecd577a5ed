package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/semaphore"
)

// PlaywrightLauncher starts one Chromium process per session on top of a
// shared playwright driver.
type PlaywrightLauncher struct {
	pw     *playwright.Playwright
	opts   *Options
	sem    *semaphore.Weighted
	logger *slog.Logger
}

func NewLauncher(opts *Options, logger *slog.Logger) (*PlaywrightLauncher, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 1
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &PlaywrightLauncher{
		pw:     pw,
		opts:   opts,
		sem:    semaphore.NewWeighted(opts.MaxSessions),
		logger: logger.With("component", "browser"),
	}, nil
}

func (l *PlaywrightLauncher) Open(ctx context.Context, so SessionOptions) (Session, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire browser slot: %w", err)
	}

	s := &playwrightSession{
		id:      uuid.NewString(),
		release: func() { l.sem.Release(1) },
	}

	if err := l.launch(s, so); err != nil {
		if closeErr := s.Close(); closeErr != nil {
			l.logger.Warn("failed to clean up partial session", "session_id", s.id, "error", closeErr)
		}
		return nil, err
	}

	l.logger.Debug("session opened", "session_id", s.id, "stealth", so.Stealth)
	return s, nil
}

func (l *PlaywrightLauncher) launch(s *playwrightSession, so SessionOptions) error {
	browser, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		Args:     l.opts.LaunchArgs(so),
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	s.browser = browser

	userAgent := l.opts.UserAgent(so)
	headers := map[string]string{"Accept-Language": l.opts.AcceptLanguage}
	for k, v := range l.opts.ExtraHeaders {
		headers[k] = v
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(userAgent),
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            playwright.String(l.opts.Locale),
		TimezoneId:        playwright.String(l.opts.TimezoneID),
		Viewport: &playwright.Size{
			Width:  l.opts.ViewportWidth,
			Height: l.opts.ViewportHeight,
		},
		ExtraHttpHeaders: headers,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser context: %w", err)
	}
	s.context = bctx

	if so.Stealth {
		if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(webdriverSpoof)}); err != nil {
			return fmt.Errorf("failed to install init script: %w", err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultTimeout(float64(l.opts.Timeout.Milliseconds()))
	s.page = &playwrightPage{page: page}

	return nil
}

// Close stops the playwright driver. Sessions must be closed first.
func (l *PlaywrightLauncher) Close() error {
	if err := l.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type playwrightSession struct {
	id      string
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage

	once    sync.Once
	closed  error
	release func()
}

func (s *playwrightSession) ID() string { return s.id }

func (s *playwrightSession) Page() Page { return s.page }

func (s *playwrightSession) Close() error {
	s.once.Do(func() {
		var errs []error

		if s.context != nil {
			if err := s.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}

		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}

		s.release()
		s.closed = errors.Join(errs...)
	})
	return s.closed
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string, waitUntil WaitUntil, timeout time.Duration) error {
	state := playwright.WaitUntilStateNetworkidle
	switch waitUntil {
	case WaitDOMContentLoaded:
		state = playwright.WaitUntilStateDomcontentloaded
	case WaitLoad:
		state = playwright.WaitUntilStateLoad
	}

	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: state,
		Timeout:   ms(timeout),
	}); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: ms(timeout),
	})
	return err
}

func (p *playwrightPage) Click(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: ms(timeout),
	})
}

func (p *playwrightPage) Evaluate(expression string, args ...any) (any, error) {
	return p.page.Evaluate(expression, args...)
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
