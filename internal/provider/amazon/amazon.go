// Package amazon scrapes the Amazon.com book bestseller chart and product
// pages. Both are rendered client side.
package amazon

import (
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

const (
	Origin  = "https://www.amazon.com"
	ListURL = Origin + "/best-sellers-books-Amazon/zgbs/books"

	placeholderAuthor = "Unknown Author"

	descriptionExpander = `[data-a-expander-name="book_description_expander"]`
)

var (
	titleSelectors = []string{
		"._cDEzb_p13n-sc-css-line-clamp-1_1Fn1y",
		".p13n-sc-truncate",
		"div._cDEzb_p13n-sc-css-line-clamp-3_g3dy1",
	}
	authorSelectors = []string{
		"._cDEzb_p13n-sc-css-line-clamp-1_EWgCb",
		".a-size-small.a-link-child",
		"a.a-size-small",
		"span.a-size-small",
	}
)

// New returns the Amazon provider.
func New() *provider.Provider {
	return &provider.Provider{
		ID:      provider.US,
		Name:    "Amazon",
		Origin:  Origin,
		ListURL: ListURL,
		List: provider.Endpoint{
			Mode: provider.Dynamic,
			Wait: render.Plan{
				render.Navigate(browser.WaitNetworkIdle, 30*time.Second),
				render.Settle(3 * time.Second),
			},
		},
		Detail: provider.Endpoint{
			Mode:    provider.Dynamic,
			Stealth: true,
			Wait: render.Plan{
				render.Navigate(browser.WaitNetworkIdle, 40*time.Second),
				render.ScrollTo(0.5, 2*time.Second),
				render.ScrollTo(1, 3*time.Second),
				render.Expand(descriptionExpander, 500*time.Millisecond),
			},
		},
		ListExtractor:   provider.ListFunc(ExtractList),
		DetailExtractor: provider.DetailFunc(ExtractDetail),
	}
}
