// Package extract holds the field heuristics shared by the provider
// extractors. Everything here is a pure function over goquery selections or
// strings so it can be tested against fixtures.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/maltedev/bestseller-scraper/internal/normalize"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true,
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// Text returns the whitespace-collapsed text of the first matched node.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return normalize.CleanText(sel.First().Text())
}

// InnerText approximates the browser's innerText for the first node of sel:
// block elements and <br> break lines, scripts and inline-hidden elements are
// skipped, and every line is whitespace-collapsed. Blank lines are dropped.
func InnerText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var b strings.Builder
	walkText(sel.Nodes[0], &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = normalize.CleanText(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Lines splits InnerText output into its non-empty lines.
func Lines(sel *goquery.Selection) []string {
	text := InnerText(sel)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func walkText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.Data] || IsHidden(n) {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && (blockElements[n.Data] || n.Data == "td" || n.Data == "th")
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}
	if block {
		b.WriteByte('\n')
	}
}

// IsHidden reports whether the node carries an inline display:none style.
func IsHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "style" {
			continue
		}
		style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
		if strings.Contains(style, "display:none") {
			return true
		}
	}
	return false
}

// FirstText walks selectors in order and returns the first non-empty text
// among their matches.
func FirstText(root *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		var found string
		root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = normalize.CleanText(s.Text())
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// FirstAttr walks selectors in order and returns the first non-empty
// attribute value among attrs.
func FirstAttr(root *goquery.Selection, selector string, attrs ...string) string {
	var found string
	root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range attrs {
			if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

// FirstLonger returns the InnerText of the first match longer than minLen
// characters.
func FirstLonger(root *goquery.Selection, selector string, minLen int) string {
	var found string
	root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := InnerText(s)
		if len([]rune(text)) > minLen {
			found = text
			return false
		}
		return true
	})
	return found
}

// ContainsAny reports whether s contains any of the needles.
func ContainsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
