package observability

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_CountersStartAtZero(t *testing.T) {
	m := NewMetricsForTesting()
	m.FetchFallbacks.WithLabelValues("current").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFallbacks.WithLabelValues("current")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FetchFallbacks.WithLabelValues("forecast")))

	// Fresh collectors per call.
	other := NewMetricsForTesting()
	assert.Equal(t, 0.0, testutil.ToFloat64(other.FetchFallbacks.WithLabelValues("current")))
}

func TestNewLogger_RespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", "json")
	l.Info("hidden")
	l.Warn("shown", "city", "Paris")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"city":"Paris"`)
}
