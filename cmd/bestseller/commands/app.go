package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/events"
	"github.com/maltedev/bestseller-scraper/internal/fetch"
	"github.com/maltedev/bestseller-scraper/internal/metrics"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/provider/all"
	"github.com/maltedev/bestseller-scraper/internal/scraper"
)

const metricsNamespace = "bestseller"

// app holds the wired dependencies of one CLI invocation.
type app struct {
	registry *provider.Registry
	launcher *lazyLauncher
	service  *scraper.Service
	metrics  *prometheus.Registry
	closers  []func() error
}

func browserOptions() *browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.UserAgents = cfg.Scraper.UserAgents
	opts.ViewportWidth = cfg.Browser.ViewportWidth
	opts.ViewportHeight = cfg.Browser.ViewportHeight
	opts.AcceptLanguage = cfg.Browser.AcceptLanguage
	opts.TimezoneID = cfg.Browser.TimezoneID
	opts.Locale = cfg.Browser.Locale
	opts.MaxSessions = int64(cfg.Scraper.ConcurrentLimit)
	return opts
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{metrics: prometheus.NewRegistry()}
	a.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry, err := all.Registry()
	if err != nil {
		return nil, err
	}
	a.registry = registry

	a.launcher = newLazyLauncher(func() (closingLauncher, error) {
		launcher, err := browser.NewLauncher(browserOptions(), log)
		if err != nil {
			return nil, err
		}
		return launcher, nil
	})
	a.closers = append(a.closers, a.launcher.Close)

	publisher, err := a.publisher(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	fetcher := fetch.NewStatic(fetch.StaticConfig{
		UserAgent: cfg.Scraper.UserAgents[0],
		Timeout:   cfg.Scraper.StaticTimeout,
		Headers:   map[string]string{"Accept-Language": cfg.Browser.AcceptLanguage},
	}, log)

	a.service = scraper.NewService(registry, a.launcher, fetcher, log,
		scraper.WithPublisher(publisher),
		scraper.WithMetrics(metrics.NewCollector(metricsNamespace, a.metrics)),
	)
	return a, nil
}

// publisher streams scrape events to Redis when an address is configured.
func (a *app) publisher(ctx context.Context) (events.Publisher, error) {
	if cfg.Redis.Addr == "" {
		return events.NopPublisher{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	log.Info("publishing scrape events", "addr", cfg.Redis.Addr, "stream", cfg.Redis.Stream)
	return events.NewStreamPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen, log), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func parseProvider(arg string) (provider.ID, error) {
	registry, err := all.Registry()
	if err != nil {
		return "", err
	}
	id := provider.ID(arg)
	if _, ok := registry.Get(id); !ok {
		return "", fmt.Errorf("%w: %q (want one of %v)", scraper.ErrUnknownProvider, arg, registry.IDs())
	}
	return id, nil
}
