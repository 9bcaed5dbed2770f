// Package cli provides the command-line interface for the artcrawl application.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/law-makers/artcrawl/internal/app"
	"github.com/law-makers/artcrawl/internal/browser"
)

// ctxKey is used for storing app context in cobra commands
type ctxKey string

const appKey ctxKey = "app"

// env carries what commands need besides the application: output streams
// and the browser factory, which tests replace with a fake.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	newFactory func(a *app.Application, opts app.SessionOptions) browser.Factory
}

func defaultFactory(a *app.Application, opts app.SessionOptions) browser.Factory {
	return a.SessionFactory(opts)
}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetAppFromCmd retrieves the Application from the command's context
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey).(*app.Application)
	return a
}
