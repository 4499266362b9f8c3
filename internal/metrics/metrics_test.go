package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCompile(nil)
	m.ObserveCompile(nil)
	m.ObserveCompile(errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CompilesTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompilesTotal.WithLabelValues(ResultError)))

	m.ObserveBlock(1024, 2*time.Millisecond)
	m.ObserveBlock(512, time.Millisecond)
	assert.Equal(t, 1536.0, testutil.ToFloat64(m.SamplesRendered))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BlockRenderSeconds))

	m.ObserveRenderError("division_by_zero")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrorsTotal.WithLabelValues("division_by_zero")))

	m.SessionStarted()
	m.SessionStarted()
	m.SessionFinished()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCompile(nil)
		m.ObserveBlock(10, time.Millisecond)
		m.ObserveRenderError("x")
		m.SessionStarted()
		m.SessionFinished()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCompile(nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `patchgrid_compiles_total{result="success"} 1`)
}
