package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/backlinkmonitor/internal/batch"
	"github.com/hamed0406/backlinkmonitor/internal/config"
	"github.com/hamed0406/backlinkmonitor/internal/logging"
	"github.com/hamed0406/backlinkmonitor/internal/metrics"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, config.FromEnv(), os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// execute runs the command and returns the process exit code. Every failure
// is printed to out exactly once.
func execute(ctx context.Context, cfg config.Config, args []string, out io.Writer) int {
	cmd := newRootCmd(cfg, out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var rep reportedError
	if !errors.As(err, &rep) {
		// flag and argument errors never reach run
		reportFailure(out, nil, err, nil)
	}
	return 1
}

func newRootCmd(cfg config.Config, out io.Writer) *cobra.Command {
	var noNotify bool

	cmd := &cobra.Command{
		Use:           "backlinks",
		Short:         "Check that backlink pages still link to their reference URLs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, noNotify, out)
		},
	}
	cmd.SetOut(out)

	f := cmd.Flags()
	f.StringVar(&cfg.TargetsFile, "targets", cfg.TargetsFile, "YAML file listing backlink/reference pairs")
	f.StringVar(&cfg.OutputCSV, "out", cfg.OutputCSV, "status table CSV, overwritten every run")
	f.StringVar(&cfg.OutputXLSX, "xlsx", cfg.OutputXLSX, "optional spreadsheet copy of the status table")
	f.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "backlinks checked at once (1 = sequential)")
	f.BoolVar(&noNotify, "no-notify", false, "skip the Slack notification")
	return cmd
}

// reportedError marks a failure run has already printed and logged.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func run(ctx context.Context, cfg config.Config, noNotify bool, out io.Writer) (err error) {
	logger, err := logging.NewLogger(cfg.LogDir, out)
	if err != nil {
		err = fmt.Errorf("init logger: %w", err)
		reportFailure(out, nil, err, debug.Stack())
		return reportedError{err}
	}
	defer logger.Sync()

	var stack []byte
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			stack = debug.Stack()
		}
		if err != nil {
			if stack == nil {
				stack = debug.Stack()
			}
			reportFailure(out, logger, err, stack)
			err = reportedError{err}
		}
	}()

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	d := batch.FromConfig(cfg, logger, m)
	if noNotify {
		d.Notifier = nil
	}

	_, err = d.Run(ctx, targets)

	if cfg.MetricsFile != "" {
		if werr := prometheus.WriteToTextfile(cfg.MetricsFile, reg); werr != nil {
			logger.Warn("metrics_write_failed", zap.String("path", cfg.MetricsFile), zap.Error(werr))
		}
	}
	return err
}

// reportFailure prints the failure with a timestamp (and stack, when there
// is one) to out and logs it once.
func reportFailure(out io.Writer, logger *zap.Logger, err error, stack []byte) {
	fmt.Fprintf(out, "%s %v\n%s", time.Now().Format(time.RFC3339), err, stack)
	if logger != nil {
		logger.Error("run_failed", zap.Error(err), zap.Stack("stack"))
	}
}
