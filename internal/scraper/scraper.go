package scraper

import (
	"errors"
	"fmt"

	"github.com/maltedev/bestseller-scraper/internal/fetch"
	"github.com/maltedev/bestseller-scraper/internal/provider"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNavigation      = errors.New("navigation failed")
	ErrUpstream        = errors.New("upstream fetch failed")
)

const (
	StageValidate = "validate"
	StageLaunch   = "launch"
	StageRender   = "render"
	StageContent  = "content"
	StageFetch    = "fetch"
	StageParse    = "parse"
)

// StageError records where a scrape failed. errors.Is matches both the kind
// sentinel and the underlying cause.
type StageError struct {
	Provider provider.ID
	Stage    string
	Kind     error
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Provider, e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stageError(id provider.ID, stage string, kind, err error) error {
	return &StageError{Provider: id, Stage: stage, Kind: kind, Err: err}
}

// status maps an error to the label used in metrics. Upstream failures with
// an HTTP status are told apart from transport and parse failures.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNavigation):
		return "navigation_error"
	case fetch.IsStatus(err):
		return "upstream_status"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}

// StageOf returns the failing stage recorded in err, or "".
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
