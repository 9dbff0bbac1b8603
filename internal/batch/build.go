package batch

import (
	"go.uber.org/zap"

	"github.com/hamed0406/backlinkmonitor/internal/config"
	"github.com/hamed0406/backlinkmonitor/internal/metrics"
	"github.com/hamed0406/backlinkmonitor/internal/notify"
	"github.com/hamed0406/backlinkmonitor/internal/probe"
	"github.com/hamed0406/backlinkmonitor/internal/repo"
	"github.com/hamed0406/backlinkmonitor/internal/report"
)

// FromConfig assembles the production driver. The CSV report is always
// written; extra savers run after it. m may be nil.
func FromConfig(cfg config.Config, logger *zap.Logger, m *metrics.Metrics, extra ...repo.ResultSaver) *Driver {
	bc := probe.NewBacklinkChecker(cfg.HTTPTimeout)
	if cfg.UserAgent != "" {
		bc.UserAgent = cfg.UserAgent
	}
	bc.DiagnoseDNS = cfg.DiagnoseDNS

	var checker probe.Checker = bc
	if m != nil {
		checker = m.Instrument(bc)
	}

	savers := []repo.ResultSaver{report.NewCSVStore(cfg.OutputCSV)}
	if cfg.OutputXLSX != "" {
		savers = append(savers, report.NewXLSXStore(cfg.OutputXLSX))
	}
	savers = append(savers, extra...)

	var n notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		n = s
	}

	d := NewDriver(logger, checker, n, cfg.Concurrency, savers...)
	if m != nil {
		d.OnRun = m.ObserveRun
	}
	return d
}
