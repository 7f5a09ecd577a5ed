// Package kinokuniya scrapes the Kinokuniya (JP) weekly ranking and product
// pages.
package kinokuniya

import (
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

const (
	Origin  = "https://www.kinokuniya.co.jp"
	ListURL = Origin + "/disp/CKnRankingPageCList.jsp?dispNo=107002001001&vTp=w"

	placeholderAuthor = "著者不明"
)

var (
	titleSelectors = []string{
		".booksname",
		`[class*="title"]`,
		"h3",
		"h4",
		"strong",
		`span[class*="name"]`,
	}

	// Ranking badges and store banners share the item markup
	imageDenylist  = []string{"ranking", "number", "icon", "logo", "banner", "service", "event", "business", "store-event", "inc/"}
	imageAllowlist = []string{"product", "goods", "item"}

	authorSectionStart = []string{"저자", "著者", "作者", "저자 등 소개", "著者紹介"}
	authorSectionStop  = []string{"내용 설명", "内容説明", "목차", "目次"}
)

// New returns the Kinokuniya provider.
func New() *provider.Provider {
	return &provider.Provider{
		ID:      provider.JP,
		Name:    "Kinokuniya",
		Origin:  Origin,
		ListURL: ListURL,
		List: provider.Endpoint{
			Mode: provider.Dynamic,
			Wait: render.Plan{
				render.Navigate(browser.WaitNetworkIdle, 30*time.Second),
				render.Settle(5 * time.Second),
			},
		},
		Detail: provider.Endpoint{
			Mode:    provider.Dynamic,
			Stealth: true,
			Wait: render.Plan{
				render.Navigate(browser.WaitNetworkIdle, 30*time.Second),
				render.Settle(3 * time.Second),
				render.ScrollTo(0.5, 2*time.Second),
			},
		},
		ListExtractor:   provider.ListFunc(ExtractList),
		DetailExtractor: provider.DetailFunc(ExtractDetail),
	}
}
