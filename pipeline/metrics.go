package pipeline

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"clfft/device"
)

// Metrics are the prometheus collectors updated by a Session.
type Metrics struct {
	Runs     prometheus.Counter
	Passes   prometheus.Counter
	Duration prometheus.Histogram
	GFLOPS   prometheus.Gauge
	Size     prometheus.Gauge
	Failures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clfft_runs_total",
			Help: "Number of completed FFT runs",
		}),
		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clfft_passes_total",
			Help: "Number of radix-8 passes dispatched",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clfft_pass_loop_seconds",
			Help:    "Wall-clock time from the first dispatch to the post-loop barrier",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		GFLOPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clfft_gflops",
			Help: "Estimated throughput of the last run (5 N log2 N flops)",
		}),
		Size: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clfft_transform_size",
			Help: "Number of complex samples of the last run",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clfft_failures_total",
			Help: "Failed device operations by API call",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Passes, m.Duration, m.GFLOPS, m.Size, m.Failures)
	}
	return m
}

func (m *Metrics) observe(r *Result) {
	if m == nil {
		return
	}
	m.Runs.Inc()
	m.Passes.Add(float64(len(r.Passes)))
	m.Duration.Observe(r.Elapsed.Seconds())
	m.GFLOPS.Set(r.GFLOPS)
	m.Size.Set(float64(len(r.Output)))
}

func (m *Metrics) fail(err error) {
	if m == nil || err == nil {
		return
	}
	op := "other"
	var apiErr *device.APIError
	var buildErr *device.BuildError
	switch {
	case errors.As(err, &apiErr):
		op = apiErr.Op
	case errors.As(err, &buildErr):
		op = "clBuildProgram"
	}
	m.Failures.WithLabelValues(op).Inc()
}
