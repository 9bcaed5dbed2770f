// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/config"
	"github.com/law-makers/artcrawl/internal/downloader"
	"github.com/law-makers/artcrawl/internal/proxy"
	"github.com/law-makers/artcrawl/internal/ratelimit"
	"github.com/law-makers/artcrawl/internal/retry"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Use Close() to release the
// HTTP connections it keeps.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Registry   *adapter.Registry
	Limiter    *ratelimit.DomainLimiter
	Proxies    *proxy.Pool
	HTTPClient *http.Client
	startTime  time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures the global logger from the config
//   - Registers the built-in adapters and the configured adapter files
//   - Creates the per-domain rate limiter and the proxy pool
//   - Initializes the HTTP client used for image downloads
//
// Log output goes to stderr so stdout stays free for command output.
func New(ctx context.Context, cfg *config.Config, stderr io.Writer) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := setupLogging(cfg, stderr)

	registry := adapter.NewRegistry()
	for _, path := range cfg.Adapters {
		name, err := registry.RegisterFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("adapter", name).Str("file", path).Msg("Adapter registered")
	}

	limiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	proxies := proxy.NewPool(cfg.Proxies, cfg.ProxyCooldown)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxies.Len() > 0 {
		transport.Proxy = func(*http.Request) (*url.URL, error) {
			return url.Parse(proxies.Next())
		}
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout, Transport: transport}

	logger.Debug().
		Int("proxies", proxies.Len()).
		Dur("timeout", cfg.HTTPTimeout).
		Str("config_file", cfg.File).
		Msg("Application initialized")

	return &Application{
		Config:     cfg,
		Logger:     &logger,
		Registry:   registry,
		Limiter:    limiter,
		Proxies:    proxies,
		HTTPClient: httpClient,
		startTime:  time.Now(),
	}, nil
}

// setupLogging configures the global zerolog logger. The console keeps
// info-level run milestones quiet unless -v is given; JSON logs keep them.
func setupLogging(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if level == zerolog.InfoLevel && !cfg.JSONLog {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.JSONLog {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: os.Getenv("NO_COLOR") != ""}).
			With().Timestamp().Logger()
	}
	return log.Logger
}

// Policy returns the wait and retry policy for browser operations
func (a *Application) Policy() *retry.Policy {
	return retry.NewPolicy(a.Config.Timeouts, a.Config.PageBackoff)
}

// Downloader returns an image downloader sharing the application's HTTP
// client and rate limiter.
func (a *Application) Downloader(headers map[string]string) *downloader.Downloader {
	return downloader.New(downloader.Options{
		Timeout:   a.Config.HTTPTimeout,
		UserAgent: a.Config.UserAgent,
		Headers:   headers,
		Limiter:   a.Limiter,
		Client:    a.HTTPClient,
	})
}

// SessionOptions tunes the browsers started by SessionFactory
type SessionOptions struct {
	Headful bool
	Headers map[string]string
}

// SessionFactory returns a factory starting one Chrome process per
// session. Each session takes the next proxy from the pool; a proxy whose
// browser fails to start is cooled down.
func (a *Application) SessionFactory(opts SessionOptions) browser.Factory {
	return func(ctx context.Context) (browser.Session, error) {
		p := a.Proxies.Next()
		s, err := browser.NewChromeSession(browser.Options{
			Headless:          a.Config.Headless && !opts.Headful,
			UserAgent:         a.Config.UserAgent,
			Proxy:             p,
			ChromePath:        a.Config.ChromePath,
			Headers:           opts.Headers,
			NavigationTimeout: a.Config.Timeouts.Detail * 2,
		})
		if err != nil {
			a.Proxies.MarkFailed(p)
			return nil, err
		}
		a.Proxies.MarkHealthy(p)
		return s, nil
	}
}

// Close gracefully shuts down the application and all its resources.
// Browser sessions are owned and closed by the command that started them.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
