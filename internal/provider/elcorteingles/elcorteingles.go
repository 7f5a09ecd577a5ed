// Package elcorteingles scrapes the El Corte Inglés (ES) book bestseller
// grid and product pages.
package elcorteingles

import (
	"regexp"
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

const (
	Origin  = "https://www.elcorteingles.es"
	ListURL = Origin + "/mas-vendidos/libros/skus.department::0065/"

	placeholderAuthor = "Autor desconocido"

	// Brand slots sometimes hold the full title when the title slot is empty
	swapAuthorMinLen = 20

	consentButton = "#onetrust-accept-btn-handler"
	productCard   = ".product_preview"
)

var (
	dimensionsRegex = regexp.MustCompile(`(?i)Dimensiones[:\s]+([^\n]+)`)
	pagesRegex      = regexp.MustCompile(`(?i)N[º°]\s*de\s*páginas[:\s]+(\d+)`)
	isbnRegex       = regexp.MustCompile(`(?i)ISBN[:\s]+([0-9]+)`)
	publisherRegex  = regexp.MustCompile(`(?i)Editorial[:\s]+([^\n]+)`)
)

// New returns the El Corte Inglés provider.
func New() *provider.Provider {
	return &provider.Provider{
		ID:      provider.ES,
		Name:    "El Corte Inglés",
		Origin:  Origin,
		ListURL: ListURL,
		List: provider.Endpoint{
			Mode:    provider.Dynamic,
			Stealth: true,
			Wait: render.Plan{
				render.Navigate(browser.WaitDOMContentLoaded, 60*time.Second),
				render.DismissConsent(consentButton, 5*time.Second, time.Second),
				render.WaitForSelector(productCard, 10*time.Second),
				render.IncrementalScroll(0.5, 100, 100*time.Millisecond, 2*time.Second, 30*time.Second),
			},
		},
		Detail: provider.Endpoint{
			Mode:    provider.Dynamic,
			Stealth: true,
			Wait: render.Plan{
				render.Navigate(browser.WaitNetworkIdle, 40*time.Second),
				render.Settle(3 * time.Second),
				render.ScrollTo(0.5, 2*time.Second),
				render.ScrollTo(1, 2*time.Second),
			},
		},
		ListExtractor:   provider.ListFunc(ExtractList),
		DetailExtractor: provider.DetailFunc(ExtractDetail),
	}
}
