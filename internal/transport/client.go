package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/linkscout/internal/config"
)

// maxRedirects is the number of redirects followed before the request
// fails with ErrTooManyRedirects.
const maxRedirects = 10

// options collects the settings for New.
type options struct {
	timeout      time.Duration
	proxyAddress string
	sites        *config.File
	insecureTLS  bool
	maxIdle      int
}

// Option configures the client built by New.
type Option func(*options)

// WithTimeout sets the timeout for a whole request, body included.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithProxy routes all connections through the SOCKS5 proxy at address.
// An empty address means direct connections.
func WithProxy(address string) Option {
	return func(o *options) {
		o.proxyAddress = address
	}
}

// WithSites enables per-host cookie and header injection.
func WithSites(sites *config.File) Option {
	return func(o *options) {
		o.sites = sites
	}
}

// WithInsecureTLS disables certificate verification.
func WithInsecureTLS(insecure bool) Option {
	return func(o *options) {
		o.insecureTLS = insecure
	}
}

// WithMaxIdleConnsPerHost sets the idle connection pool size per host.
func WithMaxIdleConnsPerHost(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIdle = n
		}
	}
}

// New creates an HTTP client for fetching pages.
//
// The client follows at most 10 redirects, keeps cookies set during
// redirects in a jar, and uses the proxy and per-host settings given as
// options. The proxy address is validated but not contacted; use
// CheckProxy for that.
func New(opts ...Option) (*http.Client, error) {
	o := &options{
		timeout: config.DefaultTimeout,
		maxIdle: 2,
	}
	for _, opt := range opts {
		opt(o)
	}

	dialer := &net.Dialer{
		Timeout:   o.timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: o.insecureTLS}, //nolint:gosec // Opt-in via --insecure
		TLSHandshakeTimeout:   o.timeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   o.maxIdle,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	if o.proxyAddress != "" {
		contextDialer, err := socks5Dialer(o.proxyAddress, dialer)
		if err != nil {
			return nil, err
		}
		transport.DialContext = contextDialer.DialContext
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	var roundTripper http.RoundTripper = transport
	if o.sites != nil && o.sites.HasRequestSettings() {
		roundTripper = &siteTransport{base: transport, sites: o.sites}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: roundTripper,
		Timeout:   o.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}, nil
}

// socks5Dialer creates a context-aware SOCKS5 dialer that connects to the
// proxy through forward.
func socks5Dialer(address string, forward *net.Dialer) (proxy.ContextDialer, error) {
	if !IsValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}

	d, err := proxy.SOCKS5("tcp", address, nil, forward)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	contextDialer, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", address)
	}
	return contextDialer, nil
}

// IsValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port between 1 and 65535. IPv6 hosts must be
// bracketed.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// siteTransport injects the configured cookie and headers for the request's
// host into every request.
type siteTransport struct {
	base  http.RoundTripper
	sites *config.File
}

// RoundTrip implements http.RoundTripper.
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	sc := t.sites.GetSiteConfig(siteKey(t.sites, req))
	if sc.Cookie == "" && len(sc.Headers) == 0 {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())

	if sc.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+sc.Cookie)
		} else {
			clone.Header.Set("Cookie", sc.Cookie)
		}
	}
	for key, value := range sc.Headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}

// siteKey picks the sites entry for req: host with port first, then the
// bare host name.
func siteKey(sites *config.File, req *http.Request) string {
	if _, ok := sites.Sites[req.URL.Host]; ok {
		return req.URL.Host
	}
	return req.URL.Hostname()
}

// CheckProxy verifies that a SOCKS5 proxy listens at address and accepts
// clients without authentication.
func CheckProxy(ctx context.Context, address string, timeout time.Duration) error {
	if !IsValidProxyAddress(address) {
		return ErrInvalidProxyAddress
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrProxyTimeout, address)
		}
		return fmt.Errorf("%w: %s: %w", ErrProxyCannotConnect, address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrProxyCannotConnect, address, err)
		}
	}

	// Greeting: version 5, one method, "no authentication".
	if _, err := conn.Write([]byte{0x05, 0x01, 0x00}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProxyCannotConnect, address, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s", ErrProxyTimeout, address)
		}
		return fmt.Errorf("%w: %s", ErrProxyNotSOCKS5, address)
	}
	if resp[0] != 0x05 || resp[1] != 0x00 {
		return fmt.Errorf("%w: %s", ErrProxyNotSOCKS5, address)
	}
	return nil
}
