// Package main provides the entry point for the linkscout CLI.
//
// linkscout fetches a fixed list of web pages concurrently, extracts each
// page's title and links, and reports the aggregated results.
//
// Usage:
//
//	linkscout scrape https://example.com https://example.org
//	linkscout scrape --targets targets.txt
//
// See --help for all available options.
package main

// main is the entry point for linkscout.
func main() {
	Execute()
}
