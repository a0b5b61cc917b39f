package types

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the extractor
type Config struct {
	CategoryURL string
	OutputDir   string

	// Browser session
	Headless     bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string

	// Page interaction timings
	WaitTimeout         time.Duration // bounded wait per selector
	CookieWaitTimeout   time.Duration
	CategorySettleDelay time.Duration
	ProductSettleDelay  time.Duration
	ScrollSteps         int
	ScrollPause         time.Duration
	ActivatePause       time.Duration // after scrolling a control into view
	ThumbnailPause      time.Duration // after scrolling a thumbnail into view
	OpenDelay           time.Duration // after opening the drawer or tab
	SwapDelay           time.Duration // after selecting a variant
	ReopenDelay         time.Duration
	HeaderOffset        int

	// Image fetch
	RequestDelay time.Duration
	MaxRetries   int
	Timeout      time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CategoryURL: "https://www.tacklewarehouse.com/catpage-DAM.html",
		OutputDir:   "damiki_images",

		Headless:     false,
		WindowWidth:  1920,
		WindowHeight: 1080,
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

		WaitTimeout:         3 * time.Second,
		CookieWaitTimeout:   2 * time.Second,
		CategorySettleDelay: 3 * time.Second,
		ProductSettleDelay:  2 * time.Second,
		ScrollSteps:         3,
		ScrollPause:         1 * time.Second,
		ActivatePause:       500 * time.Millisecond,
		ThumbnailPause:      800 * time.Millisecond,
		OpenDelay:           1500 * time.Millisecond,
		SwapDelay:           1500 * time.Millisecond,
		ReopenDelay:         1 * time.Second,
		HeaderOffset:        -150,

		RequestDelay: 200 * time.Millisecond,
		MaxRetries:   0,
		Timeout:      30 * time.Second,
	}
}

// ConfigFromEnv applies environment overrides on top of base.
// Unparseable values are ignored.
func ConfigFromEnv(base *Config) *Config {
	cfg := *base
	if v := strings.TrimSpace(os.Getenv("CATEGORY_URL")); v != "" {
		cfg.CategoryURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = b
		}
	}
	if v := os.Getenv("WAIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.WaitTimeout = d
		}
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return &cfg
}
