package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each request, body included.
	DefaultTimeout = 10 * time.Second

	// DefaultThrottle is the interval between two unit launches.
	DefaultThrottle = 1 * time.Second

	// DefaultConcurrency is the maximum number of units in flight.
	DefaultConcurrency = 10

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies linkscout in HTTP requests.
	DefaultUserAgent = "linkscout/1.0 (+https://github.com/nao1215/linkscout)"

	// DefaultTargetFile is read when no URL is given on the command line.
	DefaultTargetFile = "targets.txt"

	// AppName is the application name used for XDG directory paths.
	AppName = "linkscout"
)

// Config holds all configuration options for one linkscout run.
// It is populated from CLI flags, optionally completed from the
// configuration file, and passed down explicitly rather than kept as
// global state.
type Config struct {
	// Targets are URLs given on the command line.
	// When non-empty, TargetFile is ignored.
	Targets []string

	// TargetFile is the newline-delimited URL list to read.
	TargetFile string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Throttle is the interval between unit launches. Zero disables it.
	Throttle time.Duration

	// Concurrency caps the number of units in flight.
	Concurrency int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// InsecureTLS disables certificate verification.
	InsecureTLS bool

	// Verbose enables debug output.
	Verbose bool

	// Quiet limits log output to warnings and errors.
	Quiet bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile's search order applies.
	ConfigFilePath string

	// SiteConfigs holds per-host request settings from the config file.
	SiteConfigs *File

	// JSONReport writes a JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		TargetFile:  DefaultTargetFile,
		Timeout:     DefaultTimeout,
		Throttle:    DefaultThrottle,
		Concurrency: DefaultConcurrency,
		MaxBodySize: DefaultMaxBodySize,
		UserAgent:   DefaultUserAgent,
	}
}

// XDGConfigDir returns the XDG config directory for linkscout.
// On Linux: ~/.config/linkscout
// On macOS: ~/Library/Application Support/linkscout
// On Windows: %APPDATA%\linkscout
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyDefaults copies file defaults into c for every setting the user did
// not set explicitly. explicit reports whether the named flag was given.
// Zero values count as unset, except for a throttle present in the file.
func (c *Config) ApplyDefaults(d Defaults, explicit func(name string) bool) {
	if d.Timeout > 0 && !explicit("timeout") {
		c.Timeout = d.Timeout
	}
	if d.Throttle != nil && !explicit("throttle") {
		c.Throttle = *d.Throttle
	}
	if d.Concurrency > 0 && !explicit("concurrency") {
		c.Concurrency = d.Concurrency
	}
	if d.MaxBodySize > 0 && !explicit("max-body-size") {
		c.MaxBodySize = d.MaxBodySize
	}
	if d.UserAgent != "" && !explicit("user-agent") {
		c.UserAgent = d.UserAgent
	}
}

// EffectiveMaxBodySize returns MaxBodySize, or the default when it is 0.
func (c *Config) EffectiveMaxBodySize() int64 {
	if c.MaxBodySize == 0 {
		return DefaultMaxBodySize
	}
	return c.MaxBodySize
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package's sentinel errors.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 && c.TargetFile == "" {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Throttle < 0 {
		return ErrInvalidThrottle
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Verbose && c.Quiet {
		return ErrConflictingLogLevels
	}
	return nil
}
