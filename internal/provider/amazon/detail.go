package amazon

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/extract"
	"github.com/maltedev/bestseller-scraper/internal/models"
)

const bulletSelector = "#detailBullets_feature_div li, #detailBulletsWrapper_feature_div li, .detail-bullet-list li"

// ExtractDetail reads the book description, editorial reviews and the
// detail bullets.
func ExtractDetail(doc *goquery.Document) models.BookDetail {
	var d models.BookDetail

	desc := doc.Find("#bookDescription_feature_div")
	d.Description = extract.FirstLonger(desc, ".a-expander-content", 50)
	if d.Description == "" {
		d.Description = extract.FirstLonger(desc, "span", 50)
	}

	reviews := doc.Find("#editorialReviews_feature_div")
	d.AuthorInfo = extract.FirstLonger(reviews, ".a-section.a-spacing-small.a-padding-small", 100)
	if d.AuthorInfo == "" {
		if text := extract.InnerText(reviews); len([]rune(text)) > 100 {
			d.AuthorInfo = text
		}
	}

	doc.Find(bulletSelector).Each(func(_ int, li *goquery.Selection) {
		line := li.Text()

		if v, ok := extract.LabeledValue(line, "Publisher", "출판"); ok && d.Publisher == "" {
			d.Publisher = v
		}
		if v, ok := extract.LabeledValue(line, "Publication date", "발행일"); ok && d.PublishDate == "" {
			d.PublishDate = v
		}
		if v, ok := extract.LabeledValue(line, "ISBN-13"); ok && d.Get("isbn") == "" {
			d.Set("isbn", v)
		}
		if v, ok := extract.LabeledValue(line, "Print length"); ok && d.Get("pages") == "" {
			d.Set("pages", v)
		}
	})

	return d
}
