// Package render drives a page to a fully rendered state before its HTML is
// read: navigation, settle delays, cookie overlays, lazy-load scrolling and
// content expanders. A Plan is an ordered list of Steps run by a Runner.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Step is one named stage of a Plan. Only Required steps abort the plan
// when they fail. Timeout bounds the whole step including its settle delay;
// zero leaves it unbounded.
type Step struct {
	Name     string
	Timeout  time.Duration
	Required bool

	run func(ctx context.Context, e *env) error
}

type Plan []Step

type env struct {
	page   browser.Page
	target string
	sleep  SleepFunc
	logger *slog.Logger
}

type Runner struct {
	logger *slog.Logger
	sleep  SleepFunc
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		logger: logger.With("component", "render"),
		sleep:  Sleep,
	}
}

// WithSleep returns a copy of the runner using fn for every delay.
func (r *Runner) WithSleep(fn SleepFunc) *Runner {
	c := *r
	c.sleep = fn
	return &c
}

// WithLogger returns a copy of the runner logging through logger.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	c := *r
	c.logger = logger
	return &c
}

// Run executes plan against page for target. It returns the error of the
// first failed required step; other failures are logged and skipped.
func (r *Runner) Run(ctx context.Context, page browser.Page, target string, plan Plan) error {
	e := &env{page: page, target: target, sleep: r.sleep, logger: r.logger}

	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("render aborted before %s: %w", step.Name, err)
		}

		start := time.Now()
		if err := r.runStep(ctx, e, step); err != nil {
			if step.Required {
				return fmt.Errorf("%s failed: %w", step.Name, err)
			}
			r.logger.Warn("render step failed, continuing",
				"step", step.Name,
				"url", target,
				"error", err)
			continue
		}

		r.logger.Debug("render step done", "step", step.Name, "duration", time.Since(start))
	}

	return nil
}

// runStep runs step under its own deadline. A step still running when the
// deadline passes fails with context.DeadlineExceeded.
func (r *Runner) runStep(ctx context.Context, e *env, step Step) error {
	if step.Timeout <= 0 {
		return step.run(ctx, e)
	}

	stepCtx, cancel := context.WithTimeout(ctx, step.Timeout)
	defer cancel()

	err := step.run(stepCtx, e)
	if ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s: %w", step.Timeout, context.DeadlineExceeded)
	}
	return err
}

// await runs a blocking page call and stops waiting for it once ctx is done.
// An abandoned call finishes in the background and is torn down with the
// session.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func awaitErr(ctx context.Context, fn func() error) error {
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
