// Package fetch retrieves server-rendered pages without a browser.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// StaticFetcher builds a fresh colly collector for every request.
type StaticFetcher struct {
	config StaticConfig
	logger *slog.Logger
}

func NewStatic(cfg StaticConfig, logger *slog.Logger) *StaticFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &StaticFetcher{
		config: cfg,
		logger: logger.With("component", "static_fetch"),
	}
}

// Fetch returns the body of url. Any status outside 2xx yields a *StatusError.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(f.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range f.config.Headers {
			r.Headers.Set(k, v)
		}
	})

	var (
		body     string
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			fetchErr = &StatusError{URL: url, StatusCode: r.StatusCode}
			return
		}
		body = string(r.Body)
		f.logger.Debug("static fetch response received", "url", url, "status", r.StatusCode, "body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = &StatusError{URL: url, StatusCode: r.StatusCode}
			return
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		return "", fmt.Errorf("failed to visit %s: %w", url, err)
	}

	if fetchErr != nil {
		return "", fetchErr
	}

	return body, nil
}

// IsStatus reports whether err carries an upstream status error.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
