package aladin

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
	"github.com/maltedev/bestseller-scraper/internal/normalize"
)

// ExtractList reads the div.ss_book_box items of the weekly bestseller page.
// Items without a product cover image are skipped.
func ExtractList(doc *goquery.Document) []models.BookSummary {
	var (
		books []models.BookSummary
		seen  = make(normalize.TitleSet)
	)

	doc.Find("div.ss_book_box").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		image := normalize.ToAbsoluteURL(item.Find("img").First().AttrOr("src", ""), Origin)
		if !strings.HasPrefix(image, imagePrefix) {
			return true
		}

		title := extract.FirstText(item, "a.bo3", ".ss_book_list a")
		if title == "" {
			title = strings.TrimSpace(item.Find("img").First().AttrOr("alt", ""))
		}
		title = normalize.WithPlaceholder(title, placeholderTitle)

		if !seen.Add(title) {
			return true
		}

		author, publisher := authorLine(item)
		if publisher == "" {
			publisher = extract.Segment(item.Find(".ss_book_list").Text(), "|", 1)
		}

		link := item.Find("a.bo3").First().AttrOr("href", "")
		if link == "" {
			link = item.Find(".ss_book_list a").First().AttrOr("href", "")
		}

		books = append(books, models.BookSummary{
			Title:     title,
			Author:    normalize.WithPlaceholder(author, placeholderAuthor),
			Publisher: normalize.WithPlaceholder(publisher, placeholderPublisher),
			Image:     image,
			Link:      normalize.ToAbsoluteURL(link, Origin),
		})

		return len(books) < models.MaxListSize
	})

	return books
}

// authorLine finds the "author (role) | publisher | date" list entry.
func authorLine(item *goquery.Selection) (author, publisher string) {
	item.Find(".ss_book_list ul li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		line := li.Text()
		name, ok := extract.DelimitedField(line, "|", 0, authorRoles...)
		if !ok {
			return true
		}
		author = name
		publisher = extract.Segment(line, "|", 1)
		return false
	})
	return author, publisher
}
