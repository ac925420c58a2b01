package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pable/go-clutch-metrics/internal/model"
)

const (
	// RowSelector matches play-by-play rows. Row classes vary between seasons.
	RowSelector = "[data-cuarto]"
	clockSel    = "span.tiempo"
)

// ParseKeyfacts reads a keyfacts widget snapshot and returns its rows in
// document order.
func ParseKeyfacts(r io.Reader) ([]model.RawEventRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return RowsFromDocument(doc), nil
}

// ParseKeyfactsString is ParseKeyfacts for an in-memory snapshot.
func ParseKeyfactsString(s string) ([]model.RawEventRow, error) {
	return ParseKeyfacts(strings.NewReader(s))
}

// RowsFromDocument extracts rows from an already parsed document.
func RowsFromDocument(doc *goquery.Document) []model.RawEventRow {
	var rows []model.RawEventRow
	doc.Find(RowSelector).Each(func(_ int, s *goquery.Selection) {
		period, _ := s.Attr("data-cuarto")
		clk := ""
		if c := s.Find(clockSel).First(); c.Length() > 0 {
			clk = strippedText(c)
		}
		rows = append(rows, model.RawEventRow{
			Period:    period,
			ClockText: clk,
			Text:      strippedText(s),
		})
	})
	return rows
}

// strippedText joins every non-empty text node under the selection with a
// single space, so adjacent spans do not run together.
func strippedText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
