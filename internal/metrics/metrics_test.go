package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHTTP("GET", "/api/user", 200, 10*time.Millisecond)
	m.RecordsRemoved("timestamp", 3)
	m.RecordsRemoved("timestamp", 0)
	m.StorageDeleteFailed("sweep")
	m.EmailFinished("sent")
	m.TaskFinished("cleanup", nil)
	m.TaskFinished("cleanup", errors.New("boom"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/user", "200")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.sweptRecords.WithLabelValues("timestamp")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.storageErrors.WithLabelValues("sweep")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.emailsSent.WithLabelValues("sent")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.maintenanceRun.WithLabelValues("cleanup", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.maintenanceRun.WithLabelValues("cleanup", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Second)
		m.RecordsRemoved("x", 1)
		m.StorageDeleteFailed("x")
		m.EmailFinished("sent")
		m.TaskFinished("x", nil)
	})
}
