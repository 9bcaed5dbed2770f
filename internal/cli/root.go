// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/artcrawl/internal/app"
	"github.com/law-makers/artcrawl/internal/config"
	"github.com/law-makers/artcrawl/internal/ui"
)

// Version is the artcrawl release, set at build time
var Version = "0.1.0"

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// runError marks a failure that happened while a command was doing its
// work. Anything else returned by cobra is a usage problem.
type runError struct {
	err error
}

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func failed(err error) error {
	if err == nil {
		return nil
	}
	return &runError{err: err}
}

// usageError is a bad invocation detected by a command itself
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// newRootCmd builds the command tree
func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "artcrawl",
		Short: "Scrape museum collections into structured artwork records",
		Long: `Artcrawl drives a real browser through the online collection of a museum,
visits every artwork page and writes one structured record per artwork.

Sites are described by adapters: the built-in ones are listed by
"artcrawl sites", others can be loaded from YAML files. Results are
checkpointed after every artwork, so an interrupted run keeps what it
collected.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	// Register centralized flags
	config.RegisterFlags(root)
	root.Flags().BoolP("help", "h", false, "Help for artcrawl")
	root.Flags().Bool("version", false, "Version for artcrawl")
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(customHelpFunc)
	root.SetUsageFunc(customUsageFunc)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	// Initialize the application lazily so -h/help never touches config files
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, e.stderr)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	// Ensure app is closed after command runs
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := GetAppFromCmd(cmd); a != nil {
			_ = a.Close(context.WithoutCancel(cmd.Context()))
		}
	}

	root.AddCommand(newRunCmd(e), newSitesCmd(e), newExportCmd(e))
	return root
}

// Execute runs the CLI with the process arguments and returns the exit code.
// Cancelling ctx interrupts a running scrape, which still exits cleanly.
func Execute(ctx context.Context) int {
	return execute(ctx, os.Args[1:], &env{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newFactory: defaultFactory,
	})
}

func execute(ctx context.Context, args []string, e *env) int {
	root := newRootCmd(e)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintln(e.stderr, ui.Error("Error: "+err.Error()))
	var re *runError
	if errors.As(err, &re) {
		return ExitFailure
	}
	if cmd == nil {
		cmd = root
	}
	fmt.Fprintf(e.stderr, "Run %q for usage.\n", cmd.CommandPath()+" --help")
	return ExitUsage
}

// application returns the initialized application of cmd
func application(cmd *cobra.Command) (*app.Application, error) {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return nil, failed(errors.New("application not initialized"))
	}
	return a, nil
}
