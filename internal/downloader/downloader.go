// internal/downloader/downloader.go
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/ratelimit"
	"github.com/law-makers/artcrawl/internal/retry"
	urlutil "github.com/law-makers/artcrawl/internal/utils/url"
)

// DefaultUserAgent identifies image requests when no user agent is configured
const DefaultUserAgent = "artcrawl/1.0 (+https://github.com/law-makers/artcrawl)"

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
}

// Result is the outcome of one image download
type Result struct {
	ID       int
	URL      string
	FilePath string
	Size     int64
	Err      error
	Duration time.Duration
}

// OK reports whether the image was saved
func (r *Result) OK() bool {
	return r.Err == nil
}

// Options configures a Downloader
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Limiter   ratelimit.Limiter
	Retry     retry.Config
	Client    *http.Client
}

// Downloader saves artwork images as <dir>/<id><ext>
type Downloader struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	limiter   ratelimit.Limiter
	retry     retry.Config
}

// New creates a downloader. Zero options fall back to a 60s timeout, the
// default retry configuration and no rate limiting.
func New(opts Options) *Downloader {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Downloader{
		client:    client,
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		limiter:   opts.Limiter,
		retry:     opts.Retry,
	}
}

// ImageExtension returns the extension of imageURL's path when it is a
// known image type, and ".jpg" otherwise. The case from the URL is kept.
func ImageExtension(imageURL string) string {
	ext := urlutil.PathExtension(imageURL)
	if imageExtensions[strings.ToLower(ext)] {
		return ext
	}
	return ".jpg"
}

// FileName returns the name an image is stored under
func FileName(id int, imageURL string) string {
	return fmt.Sprintf("%d%s", id, ImageExtension(imageURL))
}

// Download fetches imageURL into dir. Failures are reported in the result;
// they never stop the caller.
func (d *Downloader) Download(ctx context.Context, id int, imageURL, dir string) *Result {
	result := &Result{ID: id, URL: imageURL}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if err := urlutil.ValidateURL(imageURL); err != nil {
		result.Err = err
		return result
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		result.Err = fmt.Errorf("failed to create output directory: %w", err)
		return result
	}
	result.FilePath = filepath.Join(dir, FileName(id, imageURL))

	err := retry.WithRetry(ctx, d.retry, func() error {
		if err := d.limiter.Wait(ctx, imageURL); err != nil {
			return retry.Permanent(err)
		}
		n, err := d.fetch(ctx, imageURL, result.FilePath)
		result.Size = n
		return err
	})
	if err != nil {
		result.Err = err
		return result
	}

	log.Debug().
		Int("id", id).
		Str("url", imageURL).
		Str("file", result.FilePath).
		Int64("bytes", result.Size).
		Msg("Image saved")
	return result
}

func (d *Downloader) fetch(ctx context.Context, imageURL, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", d.userAgent)
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, retry.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), imageURL)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, retry.Permanent(fmt.Errorf("failed to create file: %w", err))
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, retry.Permanent(fmt.Errorf("failed to move file: %w", err))
	}
	return n, nil
}
