package types

import (
	"context"
	"time"
)

// ExtractionResult is the canonical answer for one product URL
type ExtractionResult struct {
	Image     string   `json:"image,omitempty"`
	ImageList []string `json:"imageList"`
}

// Empty returns the "not found" result
func Empty() ExtractionResult {
	return ExtractionResult{ImageList: []string{}}
}

// Config holds the configuration for the extractor
type Config struct {
	Port              string
	LogLevel          string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	APITimeout        time.Duration
	APIRateLimit      float64
	MaxTabs           int
	Headless          bool
	BrowserPath       string
	UserAgent         string
	APIUserAgent      string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Port:              "3000",
		LogLevel:          "info",
		NavigationTimeout: 60 * time.Second,
		SettleDelay:       2 * time.Second,
		APITimeout:        30 * time.Second,
		APIRateLimit:      10,
		MaxTabs:           8,
		Headless:          true,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		APIUserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// WaitStrategy selects the signal a navigation waits for
type WaitStrategy int

const (
	// WaitLoad waits for the document load event
	WaitLoad WaitStrategy = iota
	// WaitNetworkIdle waits until the network is mostly idle
	WaitNetworkIdle
)

func (w WaitStrategy) String() string {
	switch w {
	case WaitNetworkIdle:
		return "networkidle"
	default:
		return "load"
	}
}

// Page is a single rendered browser tab owned by one request
type Page interface {
	// Navigate loads url and waits for the given strategy's signal
	Navigate(ctx context.Context, url string, strategy WaitStrategy, timeout time.Duration) error

	// Evaluate runs a JavaScript expression in the page and decodes its value into res.
	// Promises are awaited.
	Evaluate(ctx context.Context, expression string, res interface{}) error

	// HTML returns the serialized document
	HTML(ctx context.Context) (string, error)

	// URL returns the page location after the last navigation
	URL() string

	// Close releases the tab
	Close() error
}

// Browser hands out pages backed by a shared browser process
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close()
}

// SiteAdapter defines the interface for merchant-specific extraction logic
type SiteAdapter interface {
	// Name returns a human readable merchant name
	Name() string

	// Domains returns the registry keys served by the adapter
	Domains() []string

	// RequiresRendering reports whether Extract needs a Page
	RequiresRendering() bool

	// Extract returns nil, a bare image URL string or an ExtractionResult.
	// page is nil when RequiresRendering is false. Failures are never returned.
	Extract(ctx context.Context, page Page, productURL string) interface{}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
