// Package pipeline runs a site adapter end to end: it pulls batches from the
// pagination driver, visits every item, extracts a record and checkpoints
// the result buffer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/artcrawl/internal/adapter"
	"github.com/law-makers/artcrawl/internal/browser"
	"github.com/law-makers/artcrawl/internal/checkpoint"
	"github.com/law-makers/artcrawl/internal/downloader"
	"github.com/law-makers/artcrawl/internal/extract"
	"github.com/law-makers/artcrawl/internal/pagination"
	"github.com/law-makers/artcrawl/internal/ratelimit"
	"github.com/law-makers/artcrawl/internal/retry"
	"github.com/law-makers/artcrawl/internal/runctx"
	"github.com/law-makers/artcrawl/pkg/models"
)

// Options wires a pipeline
type Options struct {
	Adapter *adapter.Adapter
	Policy  *retry.Policy
	// Listing drives the traversal. Sequential runs also visit items on it.
	Listing browser.Session
	// Workers visits items in parallel runs; nil forces a sequential run
	Workers *browser.Pool
	// Checkpoint receives the full buffer after every item or page
	Checkpoint *checkpoint.Writer
	// Images downloads the image of every record into ImageDir; nil skips
	// downloads.
	Images   *downloader.Downloader
	ImageDir string
	// DownloadWorkers bounds concurrent downloads of one page
	DownloadWorkers int
	// Limiter throttles detail navigations
	Limiter ratelimit.Limiter
	// MaxItems overrides the adapter's item limit when positive
	MaxItems int

	// OnRecord runs after a record has been committed
	OnRecord func(rec models.ArtworkRecord)
	// OnTransition runs on every state change
	OnTransition func(from, to State)
}

// Result summarizes a run
type Result struct {
	Records     []models.ArtworkRecord
	State       State
	Pages       int
	Skipped     []*RunError
	Images      int
	ImageErrors int
	Interrupted bool
	Duration    time.Duration
}

// Pipeline owns the mutable state of one run. It is not reusable.
type Pipeline struct {
	opts      Options
	adapter   *adapter.Adapter
	driver    pagination.Driver
	extractor *extract.Extractor
	seen      *pagination.SeenSet
	log       zerolog.Logger

	state   State
	records []models.ArtworkRecord
	nextID  int
	limit   int
	result  *Result
}

// New validates opts and creates a pipeline
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Adapter == nil:
		return nil, errors.New("pipeline: adapter is required")
	case opts.Listing == nil:
		return nil, errors.New("pipeline: listing session is required")
	case opts.Checkpoint == nil:
		return nil, errors.New("pipeline: checkpoint writer is required")
	}
	if opts.Policy == nil {
		opts.Policy = retry.NewPolicy(retry.DefaultTimeouts(), 5*time.Second)
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}

	limit := opts.Adapter.MaxItems
	if opts.MaxItems > 0 {
		limit = opts.MaxItems
	}

	seen := pagination.NewSeenSet()
	return &Pipeline{
		opts:      opts,
		adapter:   opts.Adapter,
		driver:    pagination.New(opts.Adapter, opts.Listing, opts.Policy, seen),
		extractor: extract.New(),
		seen:      seen,
		state:     StateIdle,
		nextID:    1,
		limit:     limit,
		result:    &Result{},
	}, nil
}

// Sequential reports whether items are visited on the listing session
func (p *Pipeline) Sequential() bool {
	return p.opts.Workers == nil || p.adapter.Sequential()
}

var errInterrupted = errors.New("interrupted")

// Run executes the state machine until the listing is exhausted, the item
// limit is reached, ctx is cancelled or a fatal error occurs. The
// checkpoint is written on every exit path. Cancellation is only observed
// between items; browser waits run to completion.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.log = runctx.Logger(ctx)
	start := time.Now()
	bctx := context.WithoutCancel(ctx)

	p.log.Info().
		Str("start_url", p.adapter.StartURL).
		Str("mode", string(p.adapter.Mode)).
		Bool("sequential", p.Sequential()).
		Int("max_items", p.limit).
		Msg("Starting run")

	runErr := p.loop(ctx, bctx)
	if errors.Is(runErr, errInterrupted) {
		p.result.Interrupted = true
		runErr = nil
	}

	final := StateDone
	if runErr != nil {
		final = StateAborted
	}

	if err := p.persist(); err != nil {
		p.log.Error().Err(err).Msg("Final checkpoint failed")
		if runErr == nil {
			runErr = p.fail(ctx, CodeCheckpoint, "final checkpoint failed", err)
			final = StateAborted
		}
	}
	p.transition(final)

	res := p.result
	res.Records = p.records
	res.State = p.state
	res.Duration = time.Since(start)

	ev := p.log.Info()
	if runErr != nil {
		ev = p.log.Error().Err(runErr)
	}
	ev.Str("state", res.State.String()).
		Int("records", len(res.Records)).
		Int("skipped", len(res.Skipped)).
		Int("pages", res.Pages).
		Bool("interrupted", res.Interrupted).
		Dur("duration", res.Duration).
		Msg("Run finished")

	return res, runErr
}

func (p *Pipeline) loop(ctx, bctx context.Context) error {
	for {
		if p.state != StateFetchingBatch {
			p.transition(StateFetchingBatch)
		}
		if ctx.Err() != nil {
			p.log.Warn().Msg("Interrupted, writing checkpoint")
			return errInterrupted
		}
		if p.limitReached() {
			p.log.Info().Int("max_items", p.limit).Msg("Item limit reached")
			return nil
		}

		batch, err := p.driver.Next(bctx)
		if err != nil {
			return p.fail(ctx, errorCode(err, CodeNavigation), "fetch listing batch", err)
		}
		switch batch.Status {
		case pagination.StatusFinished:
			p.log.Info().Int("page", batch.Page).Msg("Listing exhausted")
			return nil
		case pagination.StatusUnavailable:
			return p.fail(ctx, CodeListing, fmt.Sprintf("listing page %d unavailable", batch.Page), ErrListingGone)
		}
		p.result.Pages++

		if p.Sequential() {
			err = p.runSequential(ctx, bctx, batch)
		} else {
			err = p.runParallel(ctx, bctx, batch)
		}
		if err != nil {
			return err
		}
	}
}

// runSequential visits the items of batch one by one on the listing
// session and restores the listing after every visit.
func (p *Pipeline) runSequential(ctx, bctx context.Context, batch pagination.Batch) error {
	for _, item := range batch.Items {
		if p.limitReached() {
			return nil
		}
		p.seen.Mark(item.Key)
		p.transition(StateVisitingItem)

		if item.DetailURL == "" {
			p.skip(ctx, item, newRunError(CodeExtraction, "item skipped", ErrNoDetailLink))
			continue
		}

		rec, err := p.visit(bctx, p.opts.Listing, item, func() { p.transition(StateExtracting) })
		if err != nil {
			if errors.Is(err, browser.ErrSessionClosed) {
				return p.fail(ctx, CodeSession, "browser session lost", err)
			}
			p.skip(ctx, item, err)
		} else {
			p.transition(StateCheckpointing)
			p.commit(&rec)
			p.download(bctx, []*models.ArtworkRecord{&p.records[len(p.records)-1]})
			if err := p.persist(); err != nil {
				return p.fail(ctx, CodeCheckpoint, "checkpoint failed", err)
			}
			p.notify(p.records[len(p.records)-1])
		}

		if err := p.driver.Rewind(bctx); err != nil {
			return p.fail(ctx, errorCode(err, CodeNavigation), "restore listing", err)
		}
		if ctx.Err() != nil {
			return errInterrupted
		}
	}
	return nil
}

type outcome struct {
	rec models.ArtworkRecord
	err error
}

// runParallel fans the visits of batch out to the worker pool and commits
// the outcomes in listing order.
func (p *Pipeline) runParallel(ctx, bctx context.Context, batch pagination.Batch) error {
	items := batch.Items
	if p.limit > 0 {
		if left := p.limit - len(p.records); len(items) > left {
			items = items[:left]
		}
	}
	for _, item := range items {
		p.seen.Mark(item.Key)
	}
	p.transition(StateVisitingItem)

	outcomes := make([]outcome, len(items))
	done := make(chan struct{})
	pending := len(items)
	for i, item := range items {
		go func(i int, item models.ItemRef) {
			defer func() { done <- struct{}{} }()
			if item.DetailURL == "" {
				outcomes[i].err = newRunError(CodeExtraction, "item skipped", ErrNoDetailLink)
				return
			}
			s, err := p.opts.Workers.Acquire(bctx)
			if err != nil {
				outcomes[i].err = err
				return
			}
			rec, err := p.visit(bctx, s, item, nil)
			p.opts.Workers.Release(s, err)
			outcomes[i] = outcome{rec: rec, err: err}
		}(i, item)
	}
	for ; pending > 0; pending-- {
		<-done
	}

	start := len(p.records)
	for i, o := range outcomes {
		if o.err != nil {
			p.skip(ctx, items[i], o.err)
			continue
		}
		if len(p.records) == start {
			p.transition(StateExtracting)
		}
		rec := o.rec
		p.commit(&rec)
	}
	if len(p.records) == start {
		return nil
	}

	// Pointers are taken once every append is done so none go stale
	committed := make([]*models.ArtworkRecord, 0, len(p.records)-start)
	for i := start; i < len(p.records); i++ {
		committed = append(committed, &p.records[i])
	}

	p.transition(StateCheckpointing)
	p.download(bctx, committed)
	if err := p.persist(); err != nil {
		return p.fail(ctx, CodeCheckpoint, "checkpoint failed", err)
	}
	for _, rec := range p.records[start:] {
		p.notify(rec)
	}
	p.log.Info().Int("page", batch.Page).Int("records", len(committed)).Int("total", len(p.records)).Msg("Page checkpointed")

	if ctx.Err() != nil {
		return errInterrupted
	}
	return nil
}

// commit assigns the next id and appends rec to the buffer
func (p *Pipeline) commit(rec *models.ArtworkRecord) {
	rec.ID = p.nextID
	p.nextID++
	rec.Normalize()
	p.records = append(p.records, *rec)
	p.log.Debug().Int("id", rec.ID).Str("url", rec.SourceURL).Msg("Record committed")
}

// download fetches the images of recs and records where they were saved.
// Failures only leave localImage empty.
func (p *Pipeline) download(ctx context.Context, recs []*models.ArtworkRecord) {
	if p.opts.Images == nil || p.opts.ImageDir == "" {
		return
	}
	var jobs []downloader.Job
	byID := make(map[int]*models.ArtworkRecord)
	for _, r := range recs {
		if r.ImageURL == nil {
			continue
		}
		jobs = append(jobs, downloader.Job{ID: r.ID, URL: *r.ImageURL})
		byID[r.ID] = r
	}
	if len(jobs) == 0 {
		return
	}

	results := downloader.NewWorkerPool(p.opts.Images, p.opts.DownloadWorkers).DownloadBatch(ctx, jobs, p.opts.ImageDir)
	for _, res := range results {
		if !res.OK() {
			p.result.ImageErrors++
			p.log.Warn().Err(res.Err).Int("id", res.ID).Str("url", res.URL).Msg("Image download failed")
			continue
		}
		p.result.Images++
		byID[res.ID].LocalImage = res.FilePath
	}
}

func (p *Pipeline) persist() error {
	return p.opts.Checkpoint.Save(p.records)
}

func (p *Pipeline) notify(rec models.ArtworkRecord) {
	if p.opts.OnRecord != nil {
		p.opts.OnRecord(rec)
	}
}

func (p *Pipeline) skip(ctx context.Context, item models.ItemRef, err error) {
	var re *RunError
	if !errors.As(err, &re) {
		re = newRunError(CodeNavigation, "item skipped", err)
	}
	re.RunID = runctx.From(ctx).ID
	re.WithDetail("key", item.Key).WithDetail("page", item.Page).WithDetail("index", item.Index)
	p.result.Skipped = append(p.result.Skipped, re)

	p.log.Warn().
		Err(err).
		Str("item", item.Key).
		Str("url", item.DetailURL).
		Int("page", item.Page).
		Msg("Item skipped")
}

func (p *Pipeline) fail(ctx context.Context, code ErrorCode, msg string, err error) error {
	re := newRunError(code, msg, err).fatal()
	re.RunID = runctx.From(ctx).ID
	re.WithDetail("state", p.state.String()).WithDetail("records", len(p.records))
	return re
}

func (p *Pipeline) limitReached() bool {
	return p.limit > 0 && len(p.records) >= p.limit
}

func (p *Pipeline) transition(to State) {
	from := p.state
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		p.log.Error().Str("from", from.String()).Str("to", to.String()).Msg("Unexpected state transition")
	}
	p.state = to
	p.log.Debug().Str("from", from.String()).Str("state", to.String()).Msg("State transition")
	if p.opts.OnTransition != nil {
		p.opts.OnTransition(from, to)
	}
}

// errorCode maps session loss to CodeSession
func errorCode(err error, fallback ErrorCode) ErrorCode {
	if errors.Is(err, browser.ErrSessionClosed) {
		return CodeSession
	}
	return fallback
}
