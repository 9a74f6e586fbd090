// Package crawler fetches individual web pages and extracts their title and
// outbound links.
//
// # Components
//
//   - Fetcher: issues one HTTP GET per target and classifies the response
//   - Extractor: turns a response body into a model.ScrapedPage
//
// The Fetcher knows nothing about HTML and the Extractor never touches the
// network. The pipeline package composes them per target.
//
// # Error Classification
//
// Fetch failures fall into two classes that callers handle identically but
// log differently:
//   - Transport errors (DNS, refused connections, malformed URLs, timeouts)
//     match ErrTransport, and timeouts additionally match ErrTimeout
//   - Protocol errors (any status outside 2xx) are *StatusError values that
//     match ErrProtocol
//
// Extraction never fails. Invalid byte sequences are replaced with U+FFFD and
// malformed markup still yields a best-effort document tree.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(client, crawler.WithUserAgent("linkscout/1.0"))
//	resp, err := fetcher.Fetch(ctx, "https://example.com")
//	if err != nil {
//	    return err
//	}
//	page := crawler.NewExtractor().Extract(resp.URL, resp.Body)
package crawler
