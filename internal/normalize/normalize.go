// Package normalize turns raw extracted values into the shape returned to
// clients: absolute URLs, placeholders for missing text and de-duplicated
// lists.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/maltedev/bestseller-scraper/internal/models"
)

var (
	whitespaceRegex = regexp.MustCompile(`[\s\p{Zs}]+`)
	// Amazon pads detail bullets with bidi marks around the colon
	invisibleReplacer = strings.NewReplacer("\u200e", "", "\u200f", "", "\u200b", "", "\ufeff", "")
)

// ToAbsoluteURL resolves href against origin. Protocol-relative values get an
// https scheme, absolute values pass through untouched and an empty href
// stays empty. Applying it twice yields the same result.
func ToAbsoluteURL(href, origin string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}

	base, err := url.Parse(origin)
	if err != nil || !base.IsAbs() {
		return href
	}

	return base.ResolveReference(u).String()
}

// WithPlaceholder returns the trimmed value, or placeholder when nothing is left.
func WithPlaceholder(value, placeholder string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return placeholder
}

// CleanText collapses runs of whitespace and strips invisible marks.
func CleanText(s string) string {
	s = invisibleReplacer.Replace(s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// TitleSet tracks titles already emitted for a single request.
type TitleSet map[string]struct{}

// Add reports whether title was new.
func (s TitleSet) Add(title string) bool {
	if _, ok := s[title]; ok {
		return false
	}
	s[title] = struct{}{}
	return true
}

// DedupeByTitle keeps the first occurrence of each exact title and preserves order.
func DedupeByTitle(books []models.BookSummary) []models.BookSummary {
	seen := make(TitleSet, len(books))
	out := make([]models.BookSummary, 0, len(books))
	for _, b := range books {
		if seen.Add(b.Title) {
			out = append(out, b)
		}
	}
	return out
}

// Limit truncates books to at most n entries.
func Limit(books []models.BookSummary, n int) []models.BookSummary {
	if len(books) > n {
		return books[:n]
	}
	return books
}
