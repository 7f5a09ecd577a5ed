package elcorteingles

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
)

var storyWords = regexp.MustCompile(`(?i)libro|memorias|historia`)

// ExtractDetail reads the description and the characteristics list, from
// which publisher, dimensions, pages and isbn are captured.
func ExtractDetail(doc *goquery.Document) models.BookDetail {
	var d models.BookDetail

	detail := doc.Find("div.product_detail")

	detail.Find("dl.block__container").EachWithBreak(func(_ int, dl *goquery.Selection) bool {
		text := extract.InnerText(dl)
		if len([]rune(text)) > 200 && !extract.ContainsAny(text, "ISBN", "Dimensiones", "páginas") {
			d.Description = text
		}
		return d.Description == ""
	})

	if d.Description == "" {
		doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			text := extract.InnerText(p)
			if len([]rune(text)) > 100 && storyWords.MatchString(text) {
				d.Description = text
			}
			return d.Description == ""
		})
	}

	if d.Description == "" {
		doc.Find("dl.block__container").EachWithBreak(func(_ int, dl *goquery.Selection) bool {
			text := extract.InnerText(dl)
			if len([]rune(text)) > 150 && !extract.ContainsAny(text, "ISBN", "Dimensiones") {
				d.Description = text
			}
			return d.Description == ""
		})
	}

	var specs string
	detail.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Find("div.product_detail-title").Text(), "Características") {
			specs = extract.InnerText(s)
			return false
		}
		return true
	})
	d.Set("characteristics", specs)

	if specs == "" {
		specs = extract.InnerText(detail)
	}
	d.Set("dimensions", extract.Capture(dimensionsRegex, specs))
	d.Set("pages", extract.Capture(pagesRegex, specs))
	d.Set("isbn", extract.Capture(isbnRegex, specs))
	d.Publisher = extract.Capture(publisherRegex, specs)

	return d
}
