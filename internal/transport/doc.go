// Package transport builds the HTTP client used to fetch pages.
//
// The client enforces the per-request timeout and a redirect limit, and
// can route every connection through a SOCKS5 proxy (for example a local
// Tor daemon). Per-host cookies and headers from the configuration file are
// injected by a RoundTripper wrapper so that redirects carry them too.
//
// # Usage
//
//	client, err := transport.New(
//	    transport.WithTimeout(10*time.Second),
//	    transport.WithProxy("127.0.0.1:9050"),
//	    transport.WithSites(cfg.SiteConfigs),
//	)
package transport
