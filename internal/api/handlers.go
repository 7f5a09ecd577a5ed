package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/scraper"
)

// Scraper is the part of scraper.Service the handlers call.
type Scraper interface {
	ListBooks(ctx context.Context, id provider.ID) ([]models.BookSummary, error)
	BookDetail(ctx context.Context, id provider.ID, url string) (*models.BookDetail, error)
	Providers() []provider.ID
}

// Handlers serves the scrape endpoints on top of a Scraper.
type Handlers struct {
	scraper  Scraper
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandlers creates handlers validating detail queries with validator.
func NewHandlers(s Scraper, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper:  s,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "api"),
	}
}

// DetailQuery holds the query parameters of a detail request.
type DetailQuery struct {
	URL string `validate:"required,url"`
}

// ErrorResponse is the failure envelope. Message is omitted for
// validation failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string        `json:"status"`
	Providers []provider.ID `json:"providers"`
}

// ListBooks returns the handler for GET /{id}-books.
func (h *Handlers) ListBooks(id provider.ID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := h.scraper.ListBooks(r.Context(), id)
		if err != nil {
			h.respondFailure(w, id, "failed to scrape bestsellers", err)
			return
		}

		h.respondJSON(w, http.StatusOK, models.ListResponse{Books: books})
	}
}

// BookDetail returns the handler for GET /{id}-book-detail?url=.
func (h *Handlers) BookDetail(id provider.ID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := DetailQuery{URL: r.URL.Query().Get("url")}
		if err := h.validate.Struct(q); err != nil {
			h.respondError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		detail, err := h.scraper.BookDetail(r.Context(), id, q.URL)
		if err != nil {
			h.respondFailure(w, id, "failed to scrape book detail", err)
			return
		}

		h.respondJSON(w, http.StatusOK, detail)
	}
}

// Health reports liveness and the served providers.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Providers: h.scraper.Providers(),
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "url" {
		return "url must be an absolute URL"
	}
	return "url is required"
}

// respondFailure maps scrape errors onto the response envelope.
func (h *Handlers) respondFailure(w http.ResponseWriter, id provider.ID, summary string, err error) {
	switch {
	case errors.Is(err, scraper.ErrValidation):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scraper.ErrUnknownProvider):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Debug("responding with failure", "provider", id, "stage", scraper.StageOf(err))
		h.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: summary, Message: err.Error()})
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}
