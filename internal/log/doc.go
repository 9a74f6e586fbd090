// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Masking of passwords embedded in URLs
//   - Log levels mapped from the --verbose and --quiet flags
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, JWTs, keys)
//   - Session identifiers and authentication tokens
//   - "user:password@" credentials inside URLs
//
// Page data attributes (url, title, links, hash) are exempt from value
// pattern matching. Scraped titles and links are never rewritten at all, so
// the "page title" and "page links" lines show exactly what was fetched.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, log.Level(verbose, quiet))
//
//	logger.Info("page title",
//	    "url", "https://example.com",
//	    "title", "Example Domain",
//	)
//
//	slog.SetDefault(logger)
package log
