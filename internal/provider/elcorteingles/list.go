package elcorteingles

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/normalize"
)

// ExtractList reads the product_preview cards. Cards need both a title and a
// real cover image.
func ExtractList(doc *goquery.Document) []models.BookSummary {
	var (
		books []models.BookSummary
		seen  = make(normalize.TitleSet)
	)

	doc.Find(productCard).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		author := extract.Text(card.Find(".product_preview-brand"))
		title := extract.Text(card.Find(".product_preview-title"))

		if title == "" && len([]rune(author)) > swapAuthorMinLen {
			title, author = author, ""
		}
		if title == "" {
			title = normalize.CleanText(card.Find("img").First().AttrOr("alt", ""))
		}

		image := cardImage(card)
		if title == "" || image == "" {
			return true
		}
		if !seen.Add(title) {
			return true
		}

		link := card.Find("a.js-product-click").First().AttrOr("href", "")
		if link == "" {
			link = card.Find("a").First().AttrOr("href", "")
		}

		books = append(books, models.BookSummary{
			Title:  title,
			Author: normalize.WithPlaceholder(author, placeholderAuthor),
			Image:  image,
			Link:   normalize.ToAbsoluteURL(link, Origin),
		})

		return len(books) < models.MaxListSize
	})

	return books
}

// cardImage falls back to data-src when src holds a lazy-load placeholder.
func cardImage(card *goquery.Selection) string {
	img := card.Find("img").First()
	for _, attr := range []string{"src", "data-src"} {
		src := strings.TrimSpace(img.AttrOr(attr, ""))
		if usableImage(src) {
			return normalize.ToAbsoluteURL(src, Origin)
		}
	}
	return ""
}

func usableImage(src string) bool {
	return src != "" && !strings.Contains(src, "data:image") && !strings.Contains(src, "blank")
}
