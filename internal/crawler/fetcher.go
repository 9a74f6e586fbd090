package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds the entire request, body included.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize is the maximum number of body bytes read (5 MiB).
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "linkscout/1.0 (+https://github.com/nao1215/linkscout)"
)

// Response is the raw outcome of a successful fetch.
type Response struct {
	// URL is the requested target, unchanged.
	URL string

	// StatusCode is always in the 2xx range.
	StatusCode int

	// ContentType is the Content-Type response header.
	ContentType string

	// Body holds at most the configured maximum number of bytes.
	Body []byte
}

// Fetcher issues a single HTTP GET per target.
// It performs no retries and has no side effects beyond the network call.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	// client performs the request. Its Timeout bounds the whole exchange.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger is used for debug output.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher around client.
// A nil client is replaced by one with DefaultTimeout.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs GET on target and returns the response body when the
// status is 2xx.
//
// Errors match ErrTransport (and ErrTimeout for deadlines) when no response
// was obtained, or are a *StatusError matching ErrProtocol otherwise.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if !IsSuccessStatus(resp.StatusCode) {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	f.logger.Debug("fetched",
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return &Response{
		URL:         target,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// classifyTransportError wraps err with ErrTransport, adding ErrTimeout when
// the failure was a deadline.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w: %w", ErrTransport, ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
