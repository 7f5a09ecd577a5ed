// Package browsertest provides in-memory browser sessions for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
)

// ScrollHeightExpr is answered with Page.ScrollHeight by the fake page.
const ScrollHeightExpr = "document.body.scrollHeight"

// Page records every call and serves canned HTML.
type Page struct {
	mu sync.Mutex

	HTML         string
	ScrollHeight float64
	// Selectors lists the selectors that exist on the page.
	Selectors map[string]bool

	GotoErr    error
	ContentErr error
	EvalErr    error

	// GotoDelay and EvalDelay stall Goto and Evaluate to simulate a hung page.
	GotoDelay time.Duration
	EvalDelay time.Duration

	calls []string
}

func (p *Page) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls in order.
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *Page) Goto(url string, waitUntil browser.WaitUntil, timeout time.Duration) error {
	p.record("goto %s %s %s", url, waitUntil, timeout)
	time.Sleep(p.GotoDelay)
	return p.GotoErr
}

func (p *Page) WaitForSelector(selector string, timeout time.Duration) error {
	p.record("wait %s %s", selector, timeout)
	if !p.Selectors[selector] {
		return fmt.Errorf("timeout %s waiting for %s", timeout, selector)
	}
	return nil
}

func (p *Page) Click(selector string, timeout time.Duration) error {
	p.record("click %s", selector)
	if !p.Selectors[selector] {
		return fmt.Errorf("no element %s", selector)
	}
	return nil
}

func (p *Page) Evaluate(expression string, args ...any) (any, error) {
	expression = strings.TrimSpace(expression)
	p.record("eval %s", expression)
	time.Sleep(p.EvalDelay)
	if p.EvalErr != nil {
		return nil, p.EvalErr
	}
	if expression == ScrollHeightExpr {
		return p.ScrollHeight, nil
	}
	return nil, nil
}

func (p *Page) Content() (string, error) {
	p.record("content")
	return p.HTML, p.ContentErr
}

func (p *Page) Screenshot(path string) error {
	p.record("screenshot %s", path)
	return nil
}

// Session wraps a Page and counts Close calls.
type Session struct {
	FakePage *Page
	CloseErr error

	mu     sync.Mutex
	closes int
}

func (s *Session) ID() string { return "test-session" }

func (s *Session) Page() browser.Page { return s.FakePage }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return s.CloseErr
}

// Closes reports how many times Close was called.
func (s *Session) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Launcher hands out Session, or fails with OpenErr.
type Launcher struct {
	Session *Session
	OpenErr error

	mu      sync.Mutex
	opens   int
	options []browser.SessionOptions
}

// NewLauncher returns a launcher serving a single page with html.
func NewLauncher(html string) *Launcher {
	return &Launcher{Session: &Session{FakePage: &Page{HTML: html, ScrollHeight: 2000}}}
}

func (l *Launcher) Open(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	l.mu.Lock()
	l.opens++
	l.options = append(l.options, opts)
	l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}
	return l.Session, nil
}

// Opens reports how many sessions were requested.
func (l *Launcher) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// Options returns the session options of every Open call.
func (l *Launcher) Options() []browser.SessionOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]browser.SessionOptions(nil), l.options...)
}
