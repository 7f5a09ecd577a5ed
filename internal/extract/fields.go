package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/bestseller-scraper/internal/normalize"
)

// DelimitedField splits line on sep when it contains sep and one of the
// keywords, returning the trimmed segment at index. ok is false when the line
// does not qualify or the segment is empty.
//
//	DelimitedField("Jane Doe | Author | Publisher X", "|", 0, "Author") == "Jane Doe"
func DelimitedField(line, sep string, index int, keywords ...string) (string, bool) {
	if !strings.Contains(line, sep) || !ContainsAny(line, keywords...) {
		return "", false
	}
	parts := strings.Split(line, sep)
	if index >= len(parts) {
		return "", false
	}
	value := normalize.CleanText(parts[index])
	return value, value != ""
}

// Segment returns the trimmed sep-delimited segment at index, or "".
func Segment(text, sep string, index int) string {
	parts := strings.Split(text, sep)
	if index >= len(parts) {
		return ""
	}
	return normalize.CleanText(parts[index])
}

// LabeledValue reads "Label : value" lines. When line contains one of the
// labels, the text after the first colon is returned.
func LabeledValue(line string, labels ...string) (string, bool) {
	line = normalize.CleanText(line)
	if !ContainsAny(line, labels...) {
		return "", false
	}
	_, value, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// Capture returns the first submatch of re in text, trimmed.
func Capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Row is a label/value pair read from a table.
type Row struct {
	Label string
	Value string
}

// TableRows collects th/td pairs from every row matched by selector.
func TableRows(root *goquery.Selection, selector string) []Row {
	var rows []Row
	root.Find(selector).Each(func(_ int, tr *goquery.Selection) {
		label := Text(tr.Find("th"))
		value := Text(tr.Find("td"))
		if label != "" && value != "" {
			rows = append(rows, Row{Label: label, Value: value})
		}
	})
	return rows
}

// RowValue returns the value of the last row whose label contains one of the
// given labels, so later tables override earlier ones.
func RowValue(rows []Row, labels ...string) string {
	for i := len(rows) - 1; i >= 0; i-- {
		if ContainsAny(rows[i].Label, labels...) {
			return rows[i].Value
		}
	}
	return ""
}

// Section accumulates the lines after a line containing one of start until a
// line containing one of stop. Lines that repeat a start keyword are skipped.
func Section(lines []string, start, stop []string) string {
	var (
		in  bool
		out []string
	)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ContainsAny(line, start...) {
			in = true
			continue
		}
		if in && ContainsAny(line, stop...) {
			break
		}
		if in {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
