// Package provider describes the bestseller sites the service scrapes. Each
// site lives in its own subpackage and plugs its extractors into a Provider.
package provider

import (
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

// ID is the short route prefix of a provider, such as "kr" in /kr-books.
type ID string

const (
	KR ID = "kr"
	US ID = "us"
	JP ID = "jp"
	ES ID = "es"
)

// Mode selects how a page is retrieved.
type Mode int

const (
	// Static pages are fetched over plain HTTP.
	Static Mode = iota
	// Dynamic pages are rendered in a browser session.
	Dynamic
)

func (m Mode) String() string {
	if m == Static {
		return "static"
	}
	return "dynamic"
}

// Endpoint describes how one kind of page is retrieved.
type Endpoint struct {
	Mode    Mode
	Stealth bool
	Wait    render.Plan
}

// ListExtractor turns a bestseller page into summaries. Missing fields are
// soft misses, never errors.
type ListExtractor interface {
	ExtractList(doc *goquery.Document) []models.BookSummary
}

// DetailExtractor turns a product page into a best-effort detail record.
type DetailExtractor interface {
	ExtractDetail(doc *goquery.Document) models.BookDetail
}

// ListFunc adapts a function to ListExtractor.
type ListFunc func(doc *goquery.Document) []models.BookSummary

func (f ListFunc) ExtractList(doc *goquery.Document) []models.BookSummary { return f(doc) }

// DetailFunc adapts a function to DetailExtractor.
type DetailFunc func(doc *goquery.Document) models.BookDetail

func (f DetailFunc) ExtractDetail(doc *goquery.Document) models.BookDetail { return f(doc) }

// Provider bundles a site's endpoints, wait plans and extractors.
type Provider struct {
	ID      ID
	Name    string
	Origin  string
	ListURL string

	List   Endpoint
	Detail Endpoint

	ListExtractor   ListExtractor
	DetailExtractor DetailExtractor
}

// Registry looks providers up by ID.
type Registry struct {
	providers map[ID]*Provider
}

// NewRegistry rejects duplicate IDs and providers without extractors.
func NewRegistry(providers ...*Provider) (*Registry, error) {
	r := &Registry{providers: make(map[ID]*Provider, len(providers))}
	for _, p := range providers {
		if p.ListExtractor == nil || p.DetailExtractor == nil {
			return nil, fmt.Errorf("provider %s is missing an extractor", p.ID)
		}
		if _, dup := r.providers[p.ID]; dup {
			return nil, fmt.Errorf("provider %s registered twice", p.ID)
		}
		r.providers[p.ID] = p
	}
	return r, nil
}

// Get returns the provider registered under id.
func (r *Registry) Get(id ID) (*Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
