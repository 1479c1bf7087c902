package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	droppedSelector = "script, style, noscript, nav, footer, aside, template"
	blockSelector   = "p, div, section, article, main, header, h1, h2, h3, h4, h5, h6, li, tr, ul, ol, table, dl, dt, dd, blockquote, pre, hr"
	cellSelector    = "td, th"
)

var whitespace = regexp.MustCompile(`\s+`)

// HTMLToText flattens an HTML notice into the line-oriented text the
// extraction rules expect: one block element per line and list items as
// "- " bullets.
func HTMLToText(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find(droppedSelector).Remove()

	// Source line breaks inside a text node are layout, not structure.
	doc.Find("body *").AddSelection(doc.Find("body")).Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			n := s.Get(0)
			n.Data = whitespace.ReplaceAllString(n.Data, " ")
		}
	})

	doc.Find("br").ReplaceWithNodes(textNode("\n"))
	doc.Find("li").PrependNodes(textNode("- "))
	doc.Find(cellSelector).AppendNodes(textNode(" "))
	doc.Find(blockSelector).AppendNodes(textNode("\n"))

	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}

func textNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
