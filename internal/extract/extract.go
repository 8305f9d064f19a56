// Package extract turns raw page markup into best-effort plain text.
package extract

import (
	"net/url"
	"strings"

	"github.com/go-shiori/dom"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Article runs a readability pass over raw markup and returns the main
// article text. ok is false when the extraction failed or produced nothing
// usable, signalling the caller to fall back to StripMarkup.
func Article(raw, sourceURL string) (string, bool) {
	article, err := readability.FromReader(strings.NewReader(raw), mustParseURL(sourceURL))
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", false
	}
	return text, true
}

// StripMarkup drops all tags and returns the concatenated visible text of
// the document, one line per text run. Script, style and template content
// is skipped. Malformed markup is tolerated; the parser never fails on it.
func StripMarkup(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse only errors on reader failure; a string reader cannot.
		return ""
	}
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, collapseSpace(t))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(lines, "\n")
}

// BlockText returns the visible text of a single node and its children
// with whitespace collapsed, e.g. the enclosing block of a search anchor.
func BlockText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return collapseSpace(strings.TrimSpace(dom.InnerText(n)))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
