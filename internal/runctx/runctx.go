// Package runctx carries the identity of a scrape run through contexts.
package runctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const runKey key = 0

// Run identifies one invocation of the pipeline
type Run struct {
	ID        string
	Site      string
	StartTime time.Time
}

// With returns a context carrying a new run for site
func With(ctx context.Context, site string) context.Context {
	return context.WithValue(ctx, runKey, &Run{
		ID:        generateID(),
		Site:      site,
		StartTime: time.Now(),
	})
}

// From returns the run carried by ctx, or a placeholder run
func From(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey).(*Run); ok {
		return r
	}
	return &Run{ID: "unknown", StartTime: time.Now()}
}

// Logger returns the global logger with the run's fields attached
func Logger(ctx context.Context) zerolog.Logger {
	r := From(ctx)
	return log.With().Str("run_id", r.ID).Str("site", r.Site).Logger()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Error wraps an error with the run it happened in
type Error struct {
	RunID string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with the run carried by ctx
func Wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &Error{RunID: From(ctx).ID, Err: err}
}
