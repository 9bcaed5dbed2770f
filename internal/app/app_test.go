package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/config"
	"github.com/law-makers/artcrawl/internal/retry"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:       "info",
		HTTPTimeout:    time.Second,
		UserAgent:      "artcrawl-test",
		RateLimitRPS:   0,
		RateLimitBurst: 1,
		Timeouts:       retry.DefaultTimeouts(),
		PageBackoff:    time.Second,
		Output:         "out.json",
	}
}

func TestNewRegistersAdapterFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.yaml")
	def := `
name: local
start_url: https://museum.test/collection
mode: scroll
listing:
  ready: ".grid"
  item: ".grid img"
detail:
  ready: "h1"
  fields:
    title:
      selector: "h1"
`
	if err := os.WriteFile(path, []byte(def), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Adapters = []string{path}

	a, err := New(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(context.Background())

	if _, err := a.Registry.Get("local"); err != nil {
		t.Errorf("Get(local) error = %v", err)
	}
	if _, err := a.Registry.Get("vangogh"); err != nil {
		t.Errorf("built-in adapter missing: %v", err)
	}
}

func TestNewRejectsBrokenAdapterFile(t *testing.T) {
	cfg := testConfig()
	cfg.Adapters = []string{filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := New(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("New() error = nil")
	}
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Error("New(nil) error = nil")
	}
}

func TestSetupLogging(t *testing.T) {
	defer func(l zerolog.Logger, lvl zerolog.Level) {
		log.Logger = l
		zerolog.SetGlobalLevel(lvl)
	}(log.Logger, zerolog.GlobalLevel())

	tests := []struct {
		level string
		json  bool
		want  zerolog.Level
	}{
		{"info", false, zerolog.WarnLevel},
		{"info", true, zerolog.InfoLevel},
		{"debug", false, zerolog.DebugLevel},
		{"error", false, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.LogLevel, cfg.JSONLog = tt.level, tt.json
		setupLogging(cfg, &bytes.Buffer{})
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("level %q json=%v: global level = %v, want %v", tt.level, tt.json, got, tt.want)
		}
	}

	var buf bytes.Buffer
	cfg := testConfig()
	cfg.JSONLog = true
	setupLogging(cfg, &buf)
	log.Info().Str("site", "nga").Msg("Starting run")
	if !strings.Contains(buf.String(), `"site":"nga"`) {
		t.Errorf("json log = %q", buf.String())
	}
}

func TestPolicyUsesConfiguredTimeouts(t *testing.T) {
	cfg := testConfig()
	cfg.Timeouts.Detail = 7 * time.Second
	a, err := New(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	p := a.Policy()
	if p.Timeouts.Detail != 7*time.Second || p.PageBackoff != time.Second || p.PageAttempts != 3 {
		t.Errorf("policy = %+v", p)
	}
	if a.Downloader(nil) == nil {
		t.Error("Downloader() = nil")
	}
}
