package fetch

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const boilerplate = "nav, footer, header, aside, script, style, noscript, iframe, svg, template, " +
	".ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup"

// Elements that start a new line in extracted text.
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "hr": true, "li": true, "main": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// extract returns the posting title and its main text. The title is the
// first h1, or the document title when there is none.
func extract(html string, r *platformRules) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = squash(doc.Find("h1").First().Text())
	if title == "" {
		title = squash(doc.Find("title").First().Text())
	}

	doc.Find(boilerplate).Remove()
	if noise := r.noiseSelector(); noise != "" {
		doc.Find(noise).Remove()
	}

	body := doc.Find("body")
	for _, sel := range r.content {
		if found := doc.Find(sel); found.Length() > 0 {
			body = found.First()
			break
		}
	}
	return title, blockText(body), nil
}

// blockText flattens sel to text with one line per block element.
func blockText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			name := goquery.NodeName(c)
			if name == "#text" {
				// source line breaks are not text line breaks
				sb.WriteString(strings.Map(spaceOut, c.Text()))
				return
			}
			if blockElements[name] {
				sb.WriteByte('\n')
				defer sb.WriteByte('\n')
			}
			walk(c)
		})
	}
	walk(sel)

	lines := strings.Split(sb.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = squash(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func spaceOut(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// squash collapses runs of whitespace into single spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
