package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
	"github.com/hamed0406/backlinkmonitor/internal/probe"
)

func TestInstrument_CountsByStatus(t *testing.T) {
	m := New(prometheus.NewRegistry())
	inner := probe.CheckerFunc(func(_ context.Context, tg domain.Target) domain.CheckResult {
		return domain.CheckResult{Backlink: tg.Backlink, Status: domain.Noindex, ResponseCode: domain.IntPtr(200)}
	})

	chk := m.Instrument(inner)
	res := chk.Check(context.Background(), domain.Target{Backlink: "a"})
	_ = chk.Check(context.Background(), domain.Target{Backlink: "b"})

	require.Equal(t, domain.Noindex, res.Status)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChecksTotal.WithLabelValues("Noindex")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ChecksTotal.WithLabelValues("Link found, dofollow")))
}

func TestObserveRun(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun(domain.ResultSet{
		{Status: domain.LinkFoundDofollow},
		{Status: domain.LinkFoundDofollow},
		{Status: domain.Unreachable},
	}, nil)
	m.ObserveRun(nil, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastRunTotal.WithLabelValues("Link found, dofollow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LastRunTotal.WithLabelValues("Backlink not reachable")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastRunTotal.WithLabelValues("Noindex")))
}
