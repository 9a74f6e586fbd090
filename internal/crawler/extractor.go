package crawler

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/unicode"

	"github.com/nao1215/linkscout/internal/model"
)

// Selectors are compiled once and shared by every Extractor.
var (
	titleSelector  = cascadia.MustCompile("title")
	anchorSelector = cascadia.MustCompile("a[href]")
)

// Extractor turns a response body into a ScrapedPage.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses body and returns the page for url.
//
// It never fails. Invalid UTF-8 is replaced with U+FFFD, malformed markup
// yields a best-effort tree, and a missing <title> yields
// model.TitleNotFound. Links are raw href values in document order with
// duplicates kept.
func (e *Extractor) Extract(url string, body []byte) *model.ScrapedPage {
	page := model.NewScrapedPage(url)
	page.ComputeHash(body)

	doc := goquery.NewDocumentFromNode(parseDocument(decodeLossy(body)))

	if title := doc.FindMatcher(titleSelector).First(); title.Length() > 0 {
		page.Title = directText(title.Nodes[0])
	}

	doc.FindMatcher(anchorSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			href = model.LinkNotAvailable
		}
		page.Links = append(page.Links, href)
	})

	return page
}

// decodeLossy decodes body as UTF-8, replacing invalid sequences.
func decodeLossy(body []byte) []byte {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(body)
	if err != nil {
		return []byte(strings.ToValidUTF8(string(body), "\uFFFD"))
	}
	return decoded
}

// parseDocument builds an HTML tree. html.Parse only fails on reader
// errors, in which case an empty document is returned.
func parseDocument(body []byte) *html.Node {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return &html.Node{Type: html.DocumentNode}
	}
	return root
}

// directText joins the direct text children of n with single spaces.
// Text is not trimmed.
func directText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
		}
	}
	return strings.Join(parts, " ")
}
