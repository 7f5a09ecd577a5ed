package aladin

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/bestseller-scraper/internal/provider"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func bookBox(title, author, image, href string) string {
	return fmt.Sprintf(`<div class="ss_book_box">
  <img src="%s" alt="%s 표지">
  <div class="ss_book_list">
    <ul>
      <li><a href="%s" class="bo3">%s</a></li>
      <li>%s (지은이) | 창비 | 2014년 5월</li>
    </ul>
  </div>
</div>`, image, title, href, title, author)
}

func TestExtractList(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(bookBox("소년이 온다", "한강", "//image.aladin.co.kr/product/1/cover.jpg", "/shop/wproduct.aspx?ItemId=1"))
	b.WriteString(bookBox("소년이 온다", "한강", "//image.aladin.co.kr/product/1/cover.jpg", "/shop/wproduct.aspx?ItemId=1"))
	b.WriteString(bookBox("광고", "누군가", "https://image.aladin.co.kr/img/banner.jpg", "/ad"))
	for i := 2; i <= 30; i++ {
		b.WriteString(bookBox(fmt.Sprintf("책 %d", i), "작가", fmt.Sprintf("https://image.aladin.co.kr/product/%d/cover.jpg", i), fmt.Sprintf("https://www.aladin.co.kr/shop/wproduct.aspx?ItemId=%d", i)))
	}
	b.WriteString("</body></html>")

	books := ExtractList(parse(t, b.String()))

	require.Len(t, books, 20)

	first := books[0]
	assert.Equal(t, "소년이 온다", first.Title)
	assert.Equal(t, "한강 (지은이)", first.Author)
	assert.Equal(t, "창비", first.Publisher)
	assert.Equal(t, "https://image.aladin.co.kr/product/1/cover.jpg", first.Image)
	assert.Equal(t, "https://www.aladin.co.kr/shop/wproduct.aspx?ItemId=1", first.Link)

	assert.Equal(t, "책 2", books[1].Title)

	titles := map[string]bool{}
	for _, book := range books {
		assert.False(t, titles[book.Title], "duplicate %q", book.Title)
		titles[book.Title] = true
		assert.True(t, strings.HasPrefix(book.Image, "https://"))
		assert.True(t, strings.HasPrefix(book.Link, "https://"))
	}
	assert.False(t, titles["광고"])
}

func TestExtractListFallbacks(t *testing.T) {
	html := `<html><body>
<div class="ss_book_box">
  <img src="https://image.aladin.co.kr/product/9/cover.jpg" alt="대체 제목">
  <div class="ss_book_list"><ul><li>정보 없음</li></ul></div>
</div>
<div class="ss_book_box">
  <img src="https://image.aladin.co.kr/product/10/cover.jpg">
  <div class="ss_book_list"><a href="/shop/wproduct.aspx?ItemId=10">두 번째 링크</a></div>
</div>
</body></html>`

	books := ExtractList(parse(t, html))

	require.Len(t, books, 2)
	assert.Equal(t, "대체 제목", books[0].Title)
	assert.Equal(t, placeholderAuthor, books[0].Author)
	assert.Equal(t, placeholderPublisher, books[0].Publisher)
	assert.Equal(t, "", books[0].Link)

	assert.Equal(t, "두 번째 링크", books[1].Title)
	assert.Equal(t, "https://www.aladin.co.kr/shop/wproduct.aspx?ItemId=10", books[1].Link)
}

func TestExtractListEmptyPage(t *testing.T) {
	assert.Empty(t, ExtractList(parse(t, "<html><body><p>점검 중</p></body></html>")))
}

func TestExtractDetail(t *testing.T) {
	html, err := os.ReadFile("testdata/detail.html")
	require.NoError(t, err)

	d := ExtractDetail(parse(t, string(html)))

	assert.Equal(t, "2024년 노벨문학상 수상작가 한강의 장편소설.\n1980년 5월 광주를 배경으로 한다.", d.Description)
	assert.Equal(t, "짧은 줄거리", d.Plot)
	assert.Equal(t, "작가 한강은 1970년 광주에서 태어났다.", d.AuthorInfo)
	assert.Equal(t, "창비", d.Publisher)
	assert.Equal(t, "2014-05-19", d.PublishDate)
	assert.Equal(t, "9788936434120", d.Get("isbn"))
	assert.Equal(t, "216쪽", d.Get("pages"))
}

func TestExtractDetailSoftMisses(t *testing.T) {
	html := `<html><head><meta property="og:description" content="OG summary"></head>
<body>
<div id="div_Story_All">전체 줄거리</div>
<div class="introduction">소개</div>
</body></html>`

	d := ExtractDetail(parse(t, html))

	assert.Equal(t, "OG summary", d.Description)
	assert.Equal(t, "전체 줄거리", d.Plot)
	assert.Equal(t, "소개", d.AuthorInfo)
	assert.Empty(t, d.Publisher)
	assert.Empty(t, d.PublishDate)
}

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, provider.KR, p.ID)
	assert.Equal(t, provider.Static, p.List.Mode)
	assert.Equal(t, provider.Dynamic, p.Detail.Mode)
	require.NotEmpty(t, p.Detail.Wait)
	assert.True(t, p.Detail.Wait[0].Required)
}
