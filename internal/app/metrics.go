package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/air_monitor/internal/acquisition"
)

// MetricsCollector exposes the latest reading and cycle outcomes.
type MetricsCollector struct {
	cycleSuccess  prometheus.Gauge
	lastSuccess   prometheus.Gauge
	cycleDuration prometheus.Histogram
	cyclesTotal   *prometheus.CounterVec
	deviceStatus  prometheus.Gauge
	deviceFlags   *prometheus.GaugeVec
	pm1Ugm3       prometheus.Gauge
	pm25Ugm3      prometheus.Gauge
	pm4Ugm3       prometheus.Gauge
	pm10Ugm3      prometheus.Gauge
	tempCelsius   prometheus.Gauge
	humidityPct   prometheus.Gauge
	vocIndex      prometheus.Gauge
	noxIndex      prometheus.Gauge
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		cycleSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_cycle_success",
			Help: "Last acquisition cycle success (1=ok, 0=error)",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_last_success_timestamp_seconds",
			Help: "Timestamp of the last recorded reading (epoch seconds)",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "airmon_cycle_duration_seconds",
			Help:    "Duration of acquisition cycles",
			Buckets: []float64{1, 2, 3, 4, 5, 7.5, 10, 15, 30},
		}),
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airmon_cycles_total",
			Help: "Acquisition cycles by result (ok or an error kind)",
		}, []string{"result"}),
		deviceStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_sen5x_device_status",
			Help: "Raw SEN5x device status register",
		}),
		deviceFlags: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airmon_sen5x_device_flag",
			Help: "SEN5x device status flags currently raised",
		}, []string{"flag"}),
		pm1Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_pm1_ugm3",
			Help: "PM1.0 concentration (ug/m3)",
		}),
		pm25Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_pm25_ugm3",
			Help: "PM2.5 concentration (ug/m3)",
		}),
		pm4Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_pm4_ugm3",
			Help: "PM4.0 concentration (ug/m3)",
		}),
		pm10Ugm3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_pm10_ugm3",
			Help: "PM10 concentration (ug/m3)",
		}),
		tempCelsius: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_temperature_celsius",
			Help: "Ambient temperature (C)",
		}),
		humidityPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_humidity_percent",
			Help: "Relative humidity (%)",
		}),
		vocIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_voc_index",
			Help: "VOC index",
		}),
		noxIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airmon_nox_index",
			Help: "NOx index",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.cycleSuccess.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.cycleDuration.Describe(ch)
	c.cyclesTotal.Describe(ch)
	c.deviceStatus.Describe(ch)
	c.deviceFlags.Describe(ch)
	c.pm1Ugm3.Describe(ch)
	c.pm25Ugm3.Describe(ch)
	c.pm4Ugm3.Describe(ch)
	c.pm10Ugm3.Describe(ch)
	c.tempCelsius.Describe(ch)
	c.humidityPct.Describe(ch)
	c.vocIndex.Describe(ch)
	c.noxIndex.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	c.cycleSuccess.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.cycleDuration.Collect(ch)
	c.cyclesTotal.Collect(ch)
	c.deviceStatus.Collect(ch)
	c.deviceFlags.Collect(ch)
	c.pm1Ugm3.Collect(ch)
	c.pm25Ugm3.Collect(ch)
	c.pm4Ugm3.Collect(ch)
	c.pm10Ugm3.Collect(ch)
	c.tempCelsius.Collect(ch)
	c.humidityPct.Collect(ch)
	c.vocIndex.Collect(ch)
	c.noxIndex.Collect(ch)
}

// Observe records one cycle result. It is an acquisition.Listener.
func (c *MetricsCollector) Observe(res acquisition.Result) {
	c.cycleDuration.Observe(res.Duration.Seconds())
	if res.Err != nil {
		c.cycleSuccess.Set(0)
		c.cyclesTotal.WithLabelValues(acquisition.ErrorKind(res.Err)).Inc()
		return
	}

	c.cycleSuccess.Set(1)
	c.cyclesTotal.WithLabelValues("ok").Inc()
	c.lastSuccess.Set(res.Reading.Timestamp)

	c.deviceStatus.Set(float64(res.Device))
	c.deviceFlags.Reset()
	for _, flag := range res.Device.Flags() {
		c.deviceFlags.WithLabelValues(flag).Set(1)
	}

	r := res.Reading
	c.pm1Ugm3.Set(r.PM1)
	c.pm25Ugm3.Set(r.PM25)
	c.pm4Ugm3.Set(r.PM4)
	c.pm10Ugm3.Set(r.PM10)
	c.tempCelsius.Set(r.Temperature)
	c.humidityPct.Set(r.Humidity)
	c.vocIndex.Set(r.VOC)
	c.noxIndex.Set(r.NOx)
}

// MetricsHandler serves registry in the Prometheus exposition format.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
