// internal/cli/run.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/app"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/checkpoint"
	"github.com/law-makers/artcrawl/internal/pipeline"
	"github.com/law-makers/artcrawl/internal/runctx"
	"github.com/law-makers/artcrawl/internal/ui"
	headersutil "github.com/law-makers/artcrawl/internal/utils/headers"
	"github.com/law-makers/artcrawl/pkg/models"
)

type runFlags struct {
	site        string
	adapterFile string
	output      string
	images      string
	noImages    bool
	maxItems    int
	maxPages    int
	workers     int
	headful     bool
	settleDelay time.Duration
	headers     []string
}

func newRunCmd(e *env) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape a museum collection",
		Long: `Opens the collection listing of a site, visits every artwork and extracts its record.

The results file is rewritten after every artwork (or every listing page
when detail pages are visited in parallel), so it is always a valid JSON
array. Interrupting the run with Ctrl+C writes the file one last time and
exits cleanly.

Images are saved as <images>/<id><ext> unless --no-images is given.`,
		Example: `  # Van Gogh Museum, first 20 artworks
  artcrawl run --site vangogh --max-items 20

  # NGA highlights with four browsers and no images
  artcrawl run --site nga-highlights -w 4 --no-images -o nga.json

  # A site described in a local file, with a visible browser
  artcrawl run --adapter-file rijks.yaml --headful`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, e, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.site, "site", "s", "", "Built-in or configured site adapter (see \"artcrawl sites\")")
	fl.StringVar(&f.adapterFile, "adapter-file", "", "Load the site adapter from a YAML file")
	fl.StringVarP(&f.output, "output", "o", "", "Results file (default from config, artworks.json)")
	fl.StringVar(&f.images, "images", "", "Directory for downloaded images (default from config, images)")
	fl.BoolVar(&f.noImages, "no-images", false, "Do not download images")
	fl.IntVarP(&f.maxItems, "max-items", "n", 0, "Stop after this many artworks (0 = adapter default)")
	fl.IntVar(&f.maxPages, "max-pages", 0, "Stop after this many listing pages (0 = adapter default)")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Parallel detail browsers (1 = sequential, 0 = adapter default)")
	fl.BoolVar(&f.headful, "headful", false, "Show the browser window")
	fl.DurationVar(&f.settleDelay, "settle-delay", 0, "Wait after each scroll before measuring the page (0 = adapter default)")
	fl.StringArrayVarP(&f.headers, "header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
	return cmd
}

// resolveAdapter picks the adapter named by the flags and applies the
// command-line overrides.
func resolveAdapter(a *app.Application, f runFlags) (*adapter.Adapter, error) {
	var (
		ad  *adapter.Adapter
		err error
	)
	switch {
	case f.site != "" && f.adapterFile != "":
		return nil, usagef("--site and --adapter-file are mutually exclusive")
	case f.adapterFile != "":
		ad, err = adapter.LoadFile(f.adapterFile)
	case f.site != "":
		ad, err = a.Registry.Get(f.site)
	default:
		return nil, usagef("a site is required: use --site NAME or --adapter-file FILE (available: %v)", a.Registry.Names())
	}
	if err != nil {
		return nil, usagef("%v", err)
	}

	if f.maxPages > 0 {
		ad.MaxPages = f.maxPages
	}
	switch {
	case f.workers > 0:
		ad.Workers = f.workers
	case a.Config.Workers > 0:
		ad.Workers = a.Config.Workers
	}
	if f.settleDelay > 0 {
		ad.Listing.SettleDelay = f.settleDelay
	}
	if err := ad.Validate(); err != nil {
		return nil, usagef("%v", err)
	}
	return ad, nil
}

func runScrape(cmd *cobra.Command, e *env, f runFlags) error {
	a, err := application(cmd)
	if err != nil {
		return err
	}
	cfg := a.Config

	ad, err := resolveAdapter(a, f)
	if err != nil {
		return err
	}
	extra, err := headersutil.Parse(f.headers)
	if err != nil {
		return usagef("%v", err)
	}
	hdrs := headersutil.Merge(cfg.Headers, extra)
	if f.maxItems < 0 {
		return usagef("--max-items must be >= 0")
	}

	outPath := firstNonEmpty(f.output, cfg.Output)
	writer, err := checkpoint.NewWriter(outPath)
	if err != nil {
		return usagef("%v", err)
	}

	ctx := runctx.With(cmd.Context(), ad.Name)
	logger := runctx.Logger(ctx)

	factory := e.newFactory(a, app.SessionOptions{Headful: f.headful, Headers: hdrs})
	listing, err := factory(ctx)
	if err != nil {
		return failed(fmt.Errorf("start browser: %w", err))
	}
	defer listing.Quit()

	opts := pipeline.Options{
		Adapter:         ad,
		Policy:          a.Policy(),
		Listing:         listing,
		Checkpoint:      writer,
		DownloadWorkers: cfg.DownloadWorkers,
		Limiter:         a.Limiter,
		MaxItems:        f.maxItems,
	}
	if !ad.Sequential() {
		pool := browser.NewPool(ad.Workers, factory)
		defer pool.Close()
		opts.Workers = pool
	}
	if !f.noImages {
		opts.Images = a.Downloader(hdrs)
		opts.ImageDir = firstNonEmpty(f.images, cfg.ImagesDir)
	}

	limit := ad.MaxItems
	if f.maxItems > 0 {
		limit = f.maxItems
	}
	bar := newProgress(e.stderr, limit, ad.Name, cfg.JSONLog || zerolog.GlobalLevel() >= zerolog.ErrorLevel)
	opts.OnRecord = func(models.ArtworkRecord) { _ = bar.Add(1) }

	p, err := pipeline.New(opts)
	if err != nil {
		return failed(err)
	}

	logger.Debug().
		Str("output", writer.Path()).
		Str("images", opts.ImageDir).
		Int("workers", ad.Workers).
		Msg("Run configured")

	res, runErr := p.Run(ctx)
	_ = bar.Finish()

	renderSummary(e.stdout, ad, writer.Path(), opts.ImageDir, res)
	if res.Interrupted {
		fmt.Fprintln(e.stderr, ui.Warn(fmt.Sprintf("Interrupted: %d records saved to %s", len(res.Records), writer.Path())))
	}
	if runErr != nil {
		var re *pipeline.RunError
		if errors.As(runErr, &re) {
			log.Debug().Interface("details", re.Details).Msg("Run aborted")
		}
		return failed(runErr)
	}
	return nil
}

// newProgress returns a bar counting saved records, or a spinner when the
// number of items is not known up front.
func newProgress(w io.Writer, limit int, site string, hidden bool) *progressbar.ProgressBar {
	total := -1
	if limit > 0 {
		total = limit
	}
	if hidden {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(site),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("artworks"),
		progressbar.OptionShowIts(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(ui.Enabled),
	)
}

func renderSummary(w io.Writer, ad *adapter.Adapter, outPath, imageDir string, res *pipeline.Result) {
	t := newTable(w)
	t.SetTitle("artcrawl " + ad.Name)
	images := "disabled"
	if imageDir != "" {
		images = fmt.Sprintf("%d saved, %d failed (%s)", res.Images, res.ImageErrors, imageDir)
	}
	t.AppendRows([]table.Row{
		{"State", res.State},
		{"Records", len(res.Records)},
		{"Listing pages", res.Pages},
		{"Skipped items", len(res.Skipped)},
		{"Images", images},
		{"Output", outPath},
		{"Duration", res.Duration.Round(time.Millisecond)},
	})
	t.Render()

	if len(res.Skipped) == 0 {
		return
	}
	s := newTable(w)
	s.SetTitle("Skipped items")
	s.AppendHeader(table.Row{"Page", "Item", "Reason"})
	for _, re := range res.Skipped {
		s.AppendRow(table.Row{re.Details["page"], re.Details["key"], re.Error()})
	}
	s.Render()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
