package model

import (
	"encoding/hex"
	"slices"
	"time"

	"golang.org/x/crypto/sha3"
)

// Sentinel values substituted when expected page data is absent.
const (
	// TitleNotFound is used when the document has no <title> element.
	TitleNotFound = "Title element not found"

	// LinkNotAvailable is used when an anchor's href value cannot be read.
	// The anchor selector only matches anchors carrying an href, so this
	// should not appear in practice.
	LinkNotAvailable = "N/A"
)

// ScrapedPage is the outcome of one successful fetch-and-extract unit.
// It is created once by the unit that fetched it and never mutated after
// being handed to the aggregator.
type ScrapedPage struct {
	// URL is the original target string, echoed verbatim.
	URL string `json:"url"`

	// Title is the text of the first <title> element, or TitleNotFound.
	Title string `json:"title"`

	// Links contains the raw href values of every anchor, in document order.
	// Relative references are not resolved and duplicates are preserved.
	Links []string `json:"links"`

	// StatusCode is the HTTP status of the successful response.
	StatusCode int `json:"status_code"`

	// ContentType is the Content-Type response header.
	ContentType string `json:"content_type,omitempty"`

	// Hash is the hex SHA3-256 digest of the raw response body.
	Hash string `json:"hash,omitempty"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`

	// Elapsed is the wall time the unit spent on this target.
	Elapsed time.Duration `json:"elapsed"`
}

// NewScrapedPage creates a page for url with the title sentinel and an
// empty, non-nil link list.
func NewScrapedPage(url string) *ScrapedPage {
	return &ScrapedPage{
		URL:   url,
		Title: TitleNotFound,
		Links: make([]string, 0),
	}
}

// ComputeHash sets Hash to the SHA3-256 digest of raw.
// An empty body yields an empty hash.
func (p *ScrapedPage) ComputeHash(raw []byte) {
	if len(raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256(raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// HasTitle reports whether a <title> element was found.
func (p *ScrapedPage) HasTitle() bool {
	return p.Title != TitleNotFound
}

// Equal reports whether two pages carry the same extracted content.
// Timing and transport metadata are ignored so that two runs against a
// deterministic server compare equal.
func (p *ScrapedPage) Equal(other *ScrapedPage) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.URL == other.URL &&
		p.Title == other.Title &&
		p.Hash == other.Hash &&
		slices.Equal(p.Links, other.Links)
}
