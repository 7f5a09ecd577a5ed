package render

import (
	"context"
	"fmt"
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
)

// EvaluateTimeout bounds a single in-page script run by ScrollTo and Expand.
const EvaluateTimeout = 10 * time.Second

// stepGrace keeps a step deadline from racing the bound of its own page call
// or settle delay.
const stepGrace = time.Second

const (
	scrollHeightExpr = "document.body.scrollHeight"
	expandExpr       = `sel => {
	const els = document.querySelectorAll(sel);
	els.forEach(el => el.click());
	return els.length;
}`
)

// Navigate loads the target and waits for the given load state.
func Navigate(waitUntil browser.WaitUntil, timeout time.Duration) Step {
	return Step{
		Name:     "navigate",
		Timeout:  timeout + stepGrace,
		Required: true,
		run: func(ctx context.Context, e *env) error {
			return awaitErr(ctx, func() error {
				return e.page.Goto(e.target, waitUntil, timeout)
			})
		},
	}
}

// Settle waits a fixed delay for late scripts.
func Settle(d time.Duration) Step {
	return Step{
		Name:    "settle",
		Timeout: d + stepGrace,
		run: func(ctx context.Context, e *env) error {
			return e.sleep(ctx, d)
		},
	}
}

// DismissConsent clicks the consent button when it shows up within timeout.
// A missing overlay is not an error.
func DismissConsent(selector string, timeout, settle time.Duration) Step {
	return Step{
		Name:    "dismiss_consent",
		Timeout: 2*timeout + settle + stepGrace,
		run: func(ctx context.Context, e *env) error {
			err := awaitErr(ctx, func() error {
				return e.page.WaitForSelector(selector, timeout)
			})
			if err != nil {
				e.logger.Debug("no consent overlay", "selector", selector)
				return nil
			}
			err = awaitErr(ctx, func() error {
				return e.page.Click(selector, timeout)
			})
			if err != nil {
				return fmt.Errorf("failed to click %s: %w", selector, err)
			}
			return e.sleep(ctx, settle)
		},
	}
}

// WaitForSelector blocks until selector is attached or timeout passes.
func WaitForSelector(selector string, timeout time.Duration) Step {
	return Step{
		Name:    "wait_for_selector",
		Timeout: timeout + stepGrace,
		run: func(ctx context.Context, e *env) error {
			return awaitErr(ctx, func() error {
				return e.page.WaitForSelector(selector, timeout)
			})
		},
	}
}

// ScrollTo jumps to fraction of the document height and settles.
func ScrollTo(fraction float64, settle time.Duration) Step {
	return Step{
		Name:    fmt.Sprintf("scroll_to_%g", fraction),
		Timeout: EvaluateTimeout + settle + stepGrace,
		run: func(ctx context.Context, e *env) error {
			expr := fmt.Sprintf("window.scrollTo(0, %s * %g)", scrollHeightExpr, fraction)
			if _, err := evaluate(ctx, e.page, expr); err != nil {
				return err
			}
			return e.sleep(ctx, settle)
		},
	}
}

// IncrementalScroll scrolls stepPx every interval until fraction of the
// document height is covered, re-reading the height on every tick so lazily
// appended content is followed. The loop is bounded by timeout and the final
// settle runs outside that budget.
func IncrementalScroll(fraction float64, stepPx int, interval, settle, timeout time.Duration) Step {
	return Step{
		Name:    "incremental_scroll",
		Timeout: timeout + settle + stepGrace,
		run: func(ctx context.Context, e *env) error {
			if err := scrollLoop(ctx, e, fraction, stepPx, interval, timeout); err != nil {
				return err
			}
			return e.sleep(ctx, settle)
		},
	}
}

func scrollLoop(ctx context.Context, e *env, fraction float64, stepPx int, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	scrolled := 0.0
	for {
		v, err := evaluate(ctx, e.page, scrollHeightExpr)
		if err != nil {
			return err
		}
		height, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("unexpected scroll height %v", v)
		}
		if scrolled >= height*fraction {
			return nil
		}

		if _, err := evaluate(ctx, e.page, fmt.Sprintf("window.scrollBy(0, %d)", stepPx)); err != nil {
			return err
		}
		scrolled += float64(stepPx)

		if err := e.sleep(ctx, interval); err != nil {
			return fmt.Errorf("scroll stopped at %.0fpx: %w", scrolled, err)
		}
	}
}

// Expand clicks every control matching selector, such as "read more" toggles.
func Expand(selector string, settle time.Duration) Step {
	return Step{
		Name:    "expand",
		Timeout: EvaluateTimeout + settle + stepGrace,
		run: func(ctx context.Context, e *env) error {
			n, err := evaluate(ctx, e.page, expandExpr, selector)
			if err != nil {
				return fmt.Errorf("failed to expand %s: %w", selector, err)
			}
			e.logger.Debug("expanded sections", "selector", selector, "count", n)
			return e.sleep(ctx, settle)
		},
	}
}

func evaluate(ctx context.Context, page browser.Page, expr string, args ...any) (any, error) {
	return await(ctx, func() (any, error) {
		return page.Evaluate(expr, args...)
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
