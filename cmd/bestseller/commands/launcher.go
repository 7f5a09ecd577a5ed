package commands

import (
	"context"
	"sync"

	"github.com/maltedev/bestseller-scraper/internal/browser"
)

type closingLauncher interface {
	browser.Launcher
	Close() error
}

// lazyLauncher starts the browser driver on the first Open, so commands that
// only touch static providers run without playwright installed. A failed
// start is retried on the next Open.
type lazyLauncher struct {
	start func() (closingLauncher, error)

	mu       sync.Mutex
	launcher closingLauncher
}

func newLazyLauncher(start func() (closingLauncher, error)) *lazyLauncher {
	return &lazyLauncher{start: start}
}

func (l *lazyLauncher) get() (closingLauncher, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.launcher == nil {
		launcher, err := l.start()
		if err != nil {
			return nil, err
		}
		l.launcher = launcher
	}
	return l.launcher, nil
}

func (l *lazyLauncher) Open(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	launcher, err := l.get()
	if err != nil {
		return nil, err
	}
	return launcher.Open(ctx, opts)
}

// Close stops the driver if it was ever started.
func (l *lazyLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.launcher == nil {
		return nil
	}
	err := l.launcher.Close()
	l.launcher = nil
	return err
}
