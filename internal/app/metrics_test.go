package app

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/air_monitor/internal/sen5x"
)

func TestMetricsObserveSuccess(t *testing.T) {
	m := NewMetricsCollector()
	m.Observe(okResult())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycleSuccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cyclesTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.pm25Ugm3))
	assert.Equal(t, 21.5, testutil.ToFloat64(m.tempCelsius))
	assert.Equal(t, float64(testStart.Unix()), testutil.ToFloat64(m.lastSuccess))
	assert.Equal(t, float64(sen5x.StatusFanCleaning), testutil.ToFloat64(m.deviceStatus))
	assert.Equal(t, 1, testutil.CollectAndCount(m.deviceFlags))
}

func TestMetricsObserveFailure(t *testing.T) {
	m := NewMetricsCollector()
	m.Observe(okResult())
	m.Observe(failedResult())

	assert.Equal(t, 0.0, testutil.ToFloat64(m.cycleSuccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cyclesTotal.WithLabelValues("data_not_ready_timeout")))
	// The last good values stay exported.
	assert.Equal(t, 2.5, testutil.ToFloat64(m.pm25Ugm3))
}

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsCollector()
	require.NoError(t, reg.Register(m))
	m.Observe(okResult())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	for _, want := range []string{"airmon_pm25_ugm3", "airmon_cycles_total", "airmon_sen5x_device_flag"} {
		assert.Contains(t, names, want, fmt.Sprintf("missing %s", want))
	}
}
