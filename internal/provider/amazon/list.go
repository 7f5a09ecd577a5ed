package amazon

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/normalize"
)

// ExtractList reads the ranked div[data-asin] cards. Cards without a title
// are layout wrappers and get dropped.
func ExtractList(doc *goquery.Document) []models.BookSummary {
	var (
		books []models.BookSummary
		seen  = make(normalize.TitleSet)
	)

	doc.Find("div[data-asin]").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if strings.TrimSpace(card.AttrOr("data-asin", "")) == "" {
			return true
		}

		img := card.Find("img").First()

		title := extract.FirstText(card, titleSelectors...)
		if title == "" {
			title = normalize.CleanText(img.AttrOr("alt", ""))
		}
		if title == "" || !seen.Add(title) {
			return true
		}

		books = append(books, models.BookSummary{
			Title:  title,
			Author: normalize.WithPlaceholder(extract.FirstText(card, authorSelectors...), placeholderAuthor),
			Image:  normalize.ToAbsoluteURL(img.AttrOr("src", ""), Origin),
			Link:   normalize.ToAbsoluteURL(card.Find("a[href]").First().AttrOr("href", ""), Origin),
		})

		return len(books) < models.MaxListSize
	})

	return books
}
