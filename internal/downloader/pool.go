// internal/downloader/pool.go
package downloader

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Job is one image of a page
type Job struct {
	ID  int
	URL string
}

// WorkerPool downloads the images of a page concurrently
type WorkerPool struct {
	downloader  *Downloader
	concurrency int
}

// NewWorkerPool creates a pool of concurrency workers, between 1 and 16
func NewWorkerPool(d *Downloader, concurrency int) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 4
	}
	if concurrency > 16 {
		concurrency = 16
	}
	return &WorkerPool{downloader: d, concurrency: concurrency}
}

// DownloadBatch downloads every job into dir. Results are returned in job
// order; jobs skipped because ctx ended carry ctx's error.
func (wp *WorkerPool) DownloadBatch(ctx context.Context, jobs []Job, dir string) []*Result {
	results := make([]*Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 1; w <= min(wp.concurrency, len(jobs)); w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range indexes {
				log.Debug().Int("worker_id", id).Int("id", jobs[i].ID).Msg("Worker processing download")
				results[i] = wp.downloader.Download(ctx, jobs[i].ID, jobs[i].URL, dir)
			}
		}(w)
	}

feed:
	for i := range jobs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	for i, r := range results {
		if r == nil {
			results[i] = &Result{ID: jobs[i].ID, URL: jobs[i].URL, Err: ctx.Err()}
		}
	}
	return results
}
