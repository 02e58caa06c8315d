package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

func TestRecordDrawing(t *testing.T) {
	r := NewRegistry()
	r.RecordDrawing("text", "STRUCTURED", 20*time.Millisecond, 3, 2, 1)
	r.RecordDrawing("text", "STRUCTURED", 10*time.Millisecond, 1, 0, 0)

	c, err := r.DrawingsTotal.GetMetricWithLabelValues("text", "STRUCTURED")
	require.NoError(t, err)
	assert.Equal(t, 2.0, counterValue(t, c))

	ngl, err := r.PointsTotal.GetMetricWithLabelValues("NGL")
	require.NoError(t, err)
	assert.Equal(t, 4.0, counterValue(t, ngl))

	design, err := r.PointsTotal.GetMetricWithLabelValues("Design")
	require.NoError(t, err)
	assert.Equal(t, 2.0, counterValue(t, design))
}

func TestRecordUpstreamAndRejected(t *testing.T) {
	r := NewRegistry()
	r.RecordUpstreamError("RATE_LIMITED")
	r.RecordRejected("dwg")
	r.RecordRejected("dwg")

	c, err := r.UpstreamErrors.GetMetricWithLabelValues("RATE_LIMITED")
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(t, c))

	rej, err := r.RejectedTotal.GetMetricWithLabelValues("dwg")
	require.NoError(t, err)
	assert.Equal(t, 2.0, counterValue(t, rej))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordRequest("http", "/v1/drawings/text", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `levels_requests_total{route="/v1/drawings/text",status="200",transport="http"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
