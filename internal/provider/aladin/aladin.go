// Package aladin scrapes the Aladin (KR) weekly bestseller list and product
// pages. The list is server rendered; product pages need a browser.
package aladin

import (
	"time"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

const (
	Origin  = "https://www.aladin.co.kr"
	ListURL = Origin + "/shop/common/wbest.aspx?BranchType=1&BestType=Bestseller"

	imagePrefix = "https://image.aladin.co.kr/product"

	placeholderTitle     = "제목 없음"
	placeholderAuthor    = "저자 미상"
	placeholderPublisher = "출판사 미상"
)

var authorRoles = []string{"지은이", "옮긴이", "엮은이", "글", "그림"}

// New returns the Aladin provider.
func New() *provider.Provider {
	return &provider.Provider{
		ID:      provider.KR,
		Name:    "Aladin",
		Origin:  Origin,
		ListURL: ListURL,
		List: provider.Endpoint{
			Mode: provider.Static,
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
