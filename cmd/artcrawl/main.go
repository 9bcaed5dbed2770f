// cmd/artcrawl/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/artcrawl/internal/cli"
)

func main() {
	// The first signal interrupts the run, which writes its checkpoint and
	// exits. Restoring default handling lets a second signal kill the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			stop()
			log.Warn().Msg("Interrupt received, finishing the current item before exiting")
		case <-done:
		}
	}()

	code := cli.Execute(ctx)
	close(done)
	stop()
	os.Exit(code)
}
