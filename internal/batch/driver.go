package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
	"github.com/hamed0406/backlinkmonitor/internal/notify"
	"github.com/hamed0406/backlinkmonitor/internal/probe"
	"github.com/hamed0406/backlinkmonitor/internal/repo"
)

var ErrNoTargets = errors.New("no targets to check")

type Driver struct {
	Logger      *zap.Logger
	Checker     probe.Checker
	Savers      []repo.ResultSaver
	Notifier    notify.Notifier // nil skips notification
	Concurrency int
	// OnRun, if set, observes the outcome of every Run.
	OnRun func(domain.ResultSet, error)
}

func NewDriver(
	logger *zap.Logger,
	checker probe.Checker,
	notifier notify.Notifier,
	concurrency int,
	savers ...repo.ResultSaver,
) *Driver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Driver{
		Logger:      logger,
		Checker:     checker,
		Savers:      savers,
		Notifier:    notifier,
		Concurrency: concurrency,
	}
}

// Run checks every target, saves the result set, then sends the problem
// report. Any failure outside the per-target checks aborts the run.
func (d *Driver) Run(ctx context.Context, targets []domain.Target) (domain.ResultSet, error) {
	rs, err := d.run(ctx, targets)
	if d.OnRun != nil {
		d.OnRun(rs, err)
	}
	return rs, err
}

func (d *Driver) run(ctx context.Context, targets []domain.Target) (domain.ResultSet, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	d.Logger.Info("run_started",
		zap.Int("targets", len(targets)),
		zap.Int("concurrency", d.Concurrency),
	)

	rs, err := d.Check(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("check targets: %w", err)
	}

	for _, s := range d.Savers {
		if err := s.Save(ctx, rs); err != nil {
			return nil, fmt.Errorf("save results: %w", err)
		}
	}

	problems := len(rs.Problems())
	if d.Notifier == nil {
		d.Logger.Warn("notify_skipped", zap.Int("problems", problems))
	} else {
		title, text := notify.FormatProblems(rs)
		if err := d.Notifier.Send(ctx, title, text); err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
		d.Logger.Info("notified", zap.Int("problems", problems))
	}

	fields := []zap.Field{zap.Int("results", len(rs)), zap.Int("problems", problems)}
	counts := rs.Counts()
	for _, st := range domain.AllStatuses() {
		if n := counts[st]; n > 0 {
			fields = append(fields, zap.Int(st.Key(), n))
		}
	}
	d.Logger.Info("run_finished", fields...)
	return rs, nil
}

// Check classifies every target and returns results in target order.
// With Concurrency > 1 targets are checked by a bounded pool.
func (d *Driver) Check(ctx context.Context, targets []domain.Target) (domain.ResultSet, error) {
	out := make(domain.ResultSet, len(targets))

	if d.Concurrency <= 1 {
		for i, t := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := d.checkOne(ctx, t)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	sem := make(chan struct{}, d.Concurrency)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)

schedule:
	for i, tgt := range targets {
		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, t domain.Target) {
			defer func() { <-sem }()
			defer wg.Done()

			r, err := d.checkOne(ctx, t)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return
			}
			out[i] = r // each goroutine owns its slot
		}(i, tgt)
	}
	wg.Wait()

	if errs != nil {
		return nil, errs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Driver) checkOne(ctx context.Context, t domain.Target) (res domain.CheckResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("check %s: panic: %v\n%s", t.Backlink, p, debug.Stack())
		}
	}()

	res = d.Checker.Check(ctx, t)
	if !res.Status.Valid() {
		return res, fmt.Errorf("check %s: checker returned %v", t.Backlink, res.Status)
	}

	d.Logger.Info("backlink_checked",
		zap.String("backlink", t.Backlink),
		zap.String("reference", t.Reference),
		zap.String("status", res.Status.String()),
		zap.Intp("response_code", res.ResponseCode),
		zap.Float64("latency_ms", res.LatencyMS),
		zap.String("reason", res.Reason),
	)
	return res, nil
}
