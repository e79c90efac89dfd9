package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// \s alone misses NBSP and the other Unicode separators, and scraped
// French pages are full of them.
var wsRun = regexp.MustCompile(`[\s\x{85}\x{A0}\p{Z}]+`)

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(s string) string {
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}

// nodeText renders a selection's text the way a browser displays it:
// text nodes joined by single spaces, then normalized.
func nodeText(sel *goquery.Selection) string {
	var buf bytes.Buffer
	for _, n := range sel.Nodes {
		collectText(n, &buf)
	}
	return Normalize(buf.String())
}

func collectText(n *html.Node, buf *bytes.Buffer) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}
