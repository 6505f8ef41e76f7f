package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, h.Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestObserveSync(t *testing.T) {
	m := New(prometheus.NewRegistry())

	res := domain.NewSyncRunResult()
	res.Scanned, res.Inserted, res.Updated, res.Skipped = 10, 4, 1, 3
	res.AddError("a.txt", errors.New("boom"))

	m.ObserveSync(res, 2*time.Second, nil)
	m.ObserveSync(domain.NewSyncRunResult(), time.Second, errors.New("list failed"))
	m.RejectSync()

	assert.Equal(t, 1.0, counterValue(t, m.SyncRuns.WithLabelValues(RunSucceeded)))
	assert.Equal(t, 1.0, counterValue(t, m.SyncRuns.WithLabelValues(RunFailed)))
	assert.Equal(t, 1.0, counterValue(t, m.SyncRuns.WithLabelValues(RunRejected)))
	assert.Equal(t, 4.0, counterValue(t, m.SyncObjects.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, counterValue(t, m.SyncObjects.WithLabelValues("updated")))
	assert.Equal(t, 3.0, counterValue(t, m.SyncObjects.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, counterValue(t, m.SyncObjects.WithLabelValues("failed")))
	assert.Equal(t, uint64(2), histogramCount(t, m.SyncDuration))

	g := &dto.Metric{}
	require.NoError(t, m.LastSyncTimestamp.Write(g))
	assert.Greater(t, g.GetGauge().GetValue(), 0.0)
}

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET", "/api/wenku/categories", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/api/wenku/categories", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m.HTTPRequests.WithLabelValues("GET", "/api/wenku/categories", "200")))
	assert.Equal(t, 1.0, counterValue(t, m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSync(nil, time.Second, nil)
	m.RejectSync()
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
}
