package kinokuniya

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/normalize"
)

// ExtractList reads the ranking items. Untitled items keep a "Book N"
// placeholder instead of being dropped.
func ExtractList(doc *goquery.Document) []models.BookSummary {
	var (
		books []models.BookSummary
		seen  = make(normalize.TitleSet)
	)

	doc.Find(".list_area_wrap > div").EachWithBreak(func(i int, item *goquery.Selection) bool {
		title := itemTitle(item)
		if title == "" {
			title = fmt.Sprintf("Book %d", i+1)
		}
		if !seen.Add(title) {
			return true
		}

		books = append(books, models.BookSummary{
			Title:  title,
			Author: normalize.WithPlaceholder(itemAuthor(item), placeholderAuthor),
			Image:  itemImage(item),
			Link:   normalize.ToAbsoluteURL(item.Find("a[href]").First().AttrOr("href", ""), Origin),
		})

		return len(books) < models.MaxListSize
	})

	return books
}

func itemTitle(item *goquery.Selection) string {
	if title := extract.FirstText(item, `a[href*="dsg"]`, `a[href*="product"]`); title != "" {
		return title
	}
	if title := extract.FirstText(item, titleSelectors...); title != "" {
		return title
	}

	return normalize.CleanText(extract.FirstAttr(item, "img", "alt", "title"))
}

// itemAuthor prefers the author row; otherwise the innermost element whose
// text carries the 著 marker.
func itemAuthor(item *goquery.Selection) string {
	if author := extract.Text(item.Find(".clearfix.ml10")); author != "" {
		return author
	}

	var best string
	item.Find("*").Each(func(_ int, s *goquery.Selection) {
		text := normalize.CleanText(s.Text())
		if !strings.Contains(text, "著") {
			return
		}
		if best == "" || len(text) < len(best) {
			best = text
		}
	})
	return best
}

func itemImage(item *goquery.Selection) string {
	var found string
	item.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if src == "" || extract.ContainsAny(src, imageDenylist...) || !extract.ContainsAny(src, imageAllowlist...) {
			return true
		}
		found = normalize.ToAbsoluteURL(src, Origin)
		return false
	})
	return found
}
