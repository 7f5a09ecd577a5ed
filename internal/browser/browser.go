package browser

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"
)

type WaitUntil string

const (
	WaitNetworkIdle      WaitUntil = "networkidle"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitLoad             WaitUntil = "load"
)

// Page is the subset of a rendered page the scraper drives.
type Page interface {
	Goto(url string, waitUntil WaitUntil, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	Evaluate(expression string, args ...any) (any, error)
	Content() (string, error)
	Screenshot(path string) error
}

// Session is one isolated browser instance serving a single request.
// Close must be safe to call more than once.
type Session interface {
	ID() string
	Page() Page
	Close() error
}

// Launcher opens sessions. Open blocks while the concurrency limit is reached.
type Launcher interface {
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}

// SessionOptions tune a single session.
type SessionOptions struct {
	// Stealth suppresses automation fingerprints: the AutomationControlled
	// blink feature and navigator.webdriver.
	Stealth   bool
	UserAgent string
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgents     []string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ExtraHeaders   map[string]string
	MaxSessions    int64
}

func DefaultOptions() *Options {
	return &Options{
		Headless: true,
		Timeout:  30 * time.Second,
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-US,en;q=0.9,ko;q=0.8,ja;q=0.7,es;q=0.6",
		TimezoneID:     "Asia/Seoul",
		Locale:         "en-US",
		ExtraHeaders: map[string]string{
			"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"DNT":    "1",
		},
		MaxSessions: 4,
	}
}

// UserAgent returns so.UserAgent when set, otherwise a random entry of the pool.
func (o *Options) UserAgent(so SessionOptions) string {
	if so.UserAgent != "" {
		return so.UserAgent
	}
	if len(o.UserAgents) == 0 {
		return DefaultOptions().UserAgents[0]
	}
	return o.UserAgents[rand.IntN(len(o.UserAgents))]
}

// LaunchArgs returns the Chromium flags for a session.
func (o *Options) LaunchArgs(so SessionOptions) []string {
	args := []string{
		"--no-sandbox",
		"--disable-setuid-sandbox",
		"--disable-dev-shm-usage",
		"--window-size=" + strconv.Itoa(o.ViewportWidth) + "," + strconv.Itoa(o.ViewportHeight),
	}
	if so.Stealth {
		args = append(args, "--disable-blink-features=AutomationControlled")
	}
	return args
}

// webdriverSpoof hides the automation flag checked by bot detectors.
const webdriverSpoof = `Object.defineProperty(navigator, 'webdriver', { get: () => false });`
