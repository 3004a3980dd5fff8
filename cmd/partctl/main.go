// Command partctl drives the part library from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/partlib/internal/config"
	"github.com/JonMunkholm/partlib/internal/core"
	"github.com/JonMunkholm/partlib/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	exitFailure = 1
	exitUsage   = 2
	exitBusy    = 3
)

// exitCodeError carries the process exit code for an error.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }

func (e *exitCodeError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitCodeError{code: code, err: err}
}

// exitCode picks the exit code for err.
func exitCode(err error) int {
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return ece.code
	}
	if errors.Is(err, core.ErrOperationInProgress) {
		return exitBusy
	}
	return exitFailure
}

// app holds what every subcommand needs once the root pre-run has loaded
// configuration and opened the library.
type app struct {
	out     io.Writer
	service *core.Service
	cfg     *config.Config
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "partctl",
		Short:         "Manage the BOM part library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})

	root.AddCommand(
		newInitCmd(a),
		newImportCmd(a),
		newQueryCmd(a),
		newSetCmd(a),
		newExportCmd(a),
		newRestoreCmd(a),
		newMappingCmd(a),
		newPreviewCmd(a),
		newStatusCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	// A missing .env is fine; the environment alone may configure partctl.
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	// Logs go to stderr so stdout stays parseable.
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	svc, err := core.NewService(cfg)
	if err != nil {
		return err
	}
	if err := svc.InitializeSchema(ctx); err != nil {
		svc.Close()
		return err
	}

	a.cfg = cfg
	a.service = svc
	return nil
}

func (a *app) close() error {
	if a.service == nil {
		return nil
	}
	err := a.service.Close()
	a.service = nil
	return err
}

// run executes partctl with args and returns the process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	a := &app{out: out}
	defer a.close() //nolint:errcheck

	root := newRootCmd(a)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "partctl:", core.FormatUserError(err))
		fmt.Fprintln(os.Stderr, "  cause:", err)
		return exitCode(err)
	}
	return 0
}

// argsAtLeast is cobra.MinimumNArgs with a usage exit code.
func argsAtLeast(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return withCode(exitUsage, cobra.MinimumNArgs(n)(cmd, args))
	}
}

// argsExactly is cobra.ExactArgs with a usage exit code.
func argsExactly(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return withCode(exitUsage, cobra.ExactArgs(n)(cmd, args))
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}
