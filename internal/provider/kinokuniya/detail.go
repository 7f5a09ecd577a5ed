package kinokuniya

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
)

// ExtractDetail reads the description, the first plot paragraphs, the author
// career section and the detail tables.
func ExtractDetail(doc *goquery.Document) models.BookDetail {
	var d models.BookDetail

	d.Description = extract.InnerText(doc.Find(`p[itemprop="description"]`))

	career := doc.Find(".career_box")

	var plot []string
	career.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if _, ok := p.Attr("itemprop"); ok {
			return true
		}
		if text := extract.InnerText(p); text != "" {
			plot = append(plot, text)
		}
		return len(plot) < 3
	})
	d.Plot = strings.Join(plot, "\n\n")

	d.AuthorInfo = extract.Section(extract.Lines(career), authorSectionStart, authorSectionStop)

	rows := extract.TableRows(doc.Selection, "table tr")
	d.Publisher = extract.RowValue(rows, "出版社", "출판사")
	d.PublishDate = extract.RowValue(rows, "発行年月", "発売日", "발행일")
	d.Set("isbn", extract.RowValue(rows, "ISBN"))

	return d
}
