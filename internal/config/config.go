package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/law-makers/artcrawl/internal/proxy"
	"github.com/law-makers/artcrawl/internal/retry"
	"github.com/law-makers/artcrawl/internal/utils/headers"
)

// Configuration keys. Nested keys map to ARTCRAWL_<SECTION>_<KEY>.
const (
	keyLogLevel        = "log_level"
	keyJSONLog         = "json_log"
	keyUserAgent       = "user_agent"
	keyProxy           = "proxy"
	keyProxyCooldown   = "proxy_cooldown"
	keyTimeout         = "timeout"
	keyRateLimitRPS    = "rate_limit.rps"
	keyRateLimitBurst  = "rate_limit.burst"
	keyChromePath      = "chrome_path"
	keyHeadless        = "headless"
	keyWorkers         = "workers"
	keyDownloadWorkers = "download_workers"
	keyOutput          = "output"
	keyImagesDir       = "images_dir"
	keyAdapters        = "adapters"
	keyPageBackoff     = "page_backoff"
	keyHeaders         = "headers"

	keyListingTimeout    = "timeouts.listing"
	keyPaginationTimeout = "timeouts.pagination"
	keyDetailTimeout     = "timeouts.detail"
	keySectionTimeout    = "timeouts.section"
	keyClickTimeout      = "timeouts.click"
	keyClickFallback     = "timeouts.click_fallback"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP/Downloads
	HTTPTimeout     time.Duration
	UserAgent       string
	Proxies         []string
	ProxyCooldown   time.Duration
	DownloadWorkers int
	// Headers are sent by browsers and downloads; -H flags extend them
	Headers map[string]string

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Browser
	ChromePath string
	Headless   bool
	// Workers overrides the adapter's worker count when positive
	Workers     int
	Timeouts    retry.Timeouts
	PageBackoff time.Duration

	// Output
	Output    string
	ImagesDir string

	// Adapters lists extra adapter files registered next to the built-ins
	Adapters []string

	// File is the configuration file that was read, if any
	File string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, DefaultLogLevel)
	v.SetDefault(keyJSONLog, DefaultJSONLog)
	v.SetDefault(keyUserAgent, DefaultUserAgent)
	v.SetDefault(keyProxyCooldown, DefaultProxyCooldown)
	v.SetDefault(keyTimeout, DefaultHTTPTimeout)
	v.SetDefault(keyRateLimitRPS, DefaultRateLimitRPS)
	v.SetDefault(keyRateLimitBurst, DefaultRateLimitBurst)
	v.SetDefault(keyHeadless, DefaultHeadless)
	v.SetDefault(keyDownloadWorkers, DefaultDownloadWorkers)
	v.SetDefault(keyOutput, DefaultOutput)
	v.SetDefault(keyImagesDir, DefaultImagesDir)
	v.SetDefault(keyPageBackoff, DefaultPageBackoff)

	v.SetDefault(keyListingTimeout, DefaultListingTimeout)
	v.SetDefault(keyPaginationTimeout, DefaultPaginationTimeout)
	v.SetDefault(keyDetailTimeout, DefaultDetailTimeout)
	v.SetDefault(keySectionTimeout, DefaultSectionTimeout)
	v.SetDefault(keyClickTimeout, DefaultClickTimeout)
	v.SetDefault(keyClickFallback, DefaultClickFallback)
}

// Load builds a Config by combining defaults, an optional config file,
// ARTCRAWL_* environment variables and CLI flags, in increasing order of
// precedence. Caller should pass the executing *cobra.Command so flags can
// be read; nil skips flags.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, flagString(cmd, "config")); err != nil {
		return nil, err
	}
	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		LogLevel:        v.GetString(keyLogLevel),
		JSONLog:         v.GetBool(keyJSONLog),
		HTTPTimeout:     v.GetDuration(keyTimeout),
		UserAgent:       v.GetString(keyUserAgent),
		ProxyCooldown:   v.GetDuration(keyProxyCooldown),
		DownloadWorkers: v.GetInt(keyDownloadWorkers),
		RateLimitRPS:    v.GetFloat64(keyRateLimitRPS),
		RateLimitBurst:  v.GetInt(keyRateLimitBurst),
		ChromePath:      v.GetString(keyChromePath),
		Headless:        v.GetBool(keyHeadless),
		Workers:         v.GetInt(keyWorkers),
		PageBackoff:     v.GetDuration(keyPageBackoff),
		Output:          v.GetString(keyOutput),
		ImagesDir:       v.GetString(keyImagesDir),
		Adapters:        v.GetStringSlice(keyAdapters),
		File:            v.ConfigFileUsed(),
		Timeouts: retry.Timeouts{
			Listing:            v.GetDuration(keyListingTimeout),
			Pagination:         v.GetDuration(keyPaginationTimeout),
			Detail:             v.GetDuration(keyDetailTimeout),
			Section:            v.GetDuration(keySectionTimeout),
			Click:              v.GetDuration(keyClickTimeout),
			ClickFallbackDelay: v.GetDuration(keyClickFallback),
		},
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	proxies, err := proxy.Parse(v.GetStringSlice(keyProxy))
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Proxies = proxies

	// viper lowercases map keys
	var lines []string
	for k, val := range v.GetStringMapString(keyHeaders) {
		lines = append(lines, k+": "+val)
	}
	if cfg.Headers, err = headers.Parse(lines); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case flagBool(cmd, "verbose"):
		cfg.LogLevel = "debug"
	case flagBool(cmd, "quiet"):
		cfg.LogLevel = "error"
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// readConfigFile reads path, or .artcrawl.{yaml,json,toml} from the working
// directory or the home directory when path is empty. Only an explicit path
// is required to exist.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(".artcrawl")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func flagBool(cmd *cobra.Command, name string) bool {
	return flagString(cmd, name) == "true"
}
