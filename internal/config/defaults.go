package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultOutput          = "artworks.json"
	DefaultImagesDir       = "images"
	DefaultRateLimitRPS    = 2.0
	DefaultRateLimitBurst  = 4
	DefaultDownloadWorkers = 4
	DefaultMaxWorkers      = 10
	DefaultHeadless        = true
	DefaultProxyCooldown   = 5 * time.Minute

	DefaultListingTimeout    = 30 * time.Second
	DefaultPaginationTimeout = 40 * time.Second
	DefaultDetailTimeout     = 30 * time.Second
	DefaultSectionTimeout    = 20 * time.Second
	DefaultClickTimeout      = 20 * time.Second
	DefaultClickFallback     = 2 * time.Second
	DefaultPageBackoff       = 5 * time.Second
)

// EnvPrefix prefixes every environment override, e.g. ARTCRAWL_USER_AGENT
const EnvPrefix = "ARTCRAWL"
