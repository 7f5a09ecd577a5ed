package aladin

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
)

// ExtractDetail reads the 책소개 box, falling back to og:description, and the
// product info table.
func ExtractDetail(doc *goquery.Document) models.BookDetail {
	var d models.BookDetail

	doc.Find(".Ere_prod_mconts_box").EachWithBreak(func(_ int, box *goquery.Selection) bool {
		if strings.Contains(box.Find(".Ere_prod_mconts_LL").Text(), "책소개") {
			d.Description = extract.InnerText(box.Find(".Ere_prod_mconts_R"))
		}
		return d.Description == ""
	})
	if d.Description == "" {
		d.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	// The full story is collapsed until the reader expands it
	if all := doc.Find("#div_Story_All"); all.Length() > 0 && !extract.IsHidden(all.Nodes[0]) {
		d.Plot = extract.InnerText(all)
	}
	if d.Plot == "" {
		d.Plot = extract.InnerText(doc.Find("#div_Story_Short"))
	}

	d.AuthorInfo = extract.InnerText(doc.Find(".introduction"))
	if d.AuthorInfo == "" {
		d.AuthorInfo = extract.InnerText(doc.Find(".author_box"))
	}

	rows := extract.TableRows(doc.Selection, "table.Ere_prod_info_table tr")
	d.Publisher = extract.RowValue(rows, "출판사")
	d.PublishDate = extract.RowValue(rows, "출간일", "발행일")
	d.Set("isbn", extract.RowValue(rows, "ISBN"))
	d.Set("pages", extract.RowValue(rows, "쪽수"))

	return d
}
