package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface by recording Prometheus
// metrics in its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RunIterations    prometheus.Histogram
	RunDuration      prometheus.Histogram
	SweepsTotal      *prometheus.CounterVec
	SweepRatesTotal  prometheus.Counter
	SweepDuration    prometheus.Histogram
	SweepBestRate    prometheus.Gauge
	CacheEventsTotal *prometheus.CounterVec
	CacheBytesTotal  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// NewPrometheus registers the forcelayout metrics in reg and returns hooks
// that update them.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forcelayout_runs_total",
				Help: "Total number of layout runs",
			},
			[]string{"result"}, // converged, capped, error
		),
		RunIterations: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forcelayout_run_iterations",
				Help:    "Iterations consumed per layout run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 11),
			},
		),
		RunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forcelayout_run_duration_seconds",
				Help:    "Duration of layout runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		SweepsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forcelayout_sweeps_total",
				Help: "Total number of cooling-rate sweeps",
			},
			[]string{"result"}, // ok, error
		),
		SweepRatesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "forcelayout_sweep_rates_total",
				Help: "Total number of cooling rates evaluated",
			},
		),
		SweepDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forcelayout_sweep_duration_seconds",
				Help:    "Duration of cooling-rate sweeps in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
		),
		SweepBestRate: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "forcelayout_sweep_best_rate",
				Help: "Best cooling rate found by the most recent sweep",
			},
		),
		CacheEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forcelayout_cache_events_total",
				Help: "Cache hits, misses and writes by key type",
			},
			[]string{"event", "key_type"},
		),
		CacheBytesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forcelayout_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type",
			},
			[]string{"key_type"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forcelayout_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forcelayout_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Registry returns the registry the metrics live in.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) OnRunStart(context.Context, int) {}

func (p *Prometheus) OnRunComplete(_ context.Context, iterations int, converged bool, d time.Duration, err error) {
	switch {
	case err != nil:
		p.RunsTotal.WithLabelValues("error").Inc()
		return
	case converged:
		p.RunsTotal.WithLabelValues("converged").Inc()
	default:
		p.RunsTotal.WithLabelValues("capped").Inc()
	}
	p.RunIterations.Observe(float64(iterations))
	p.RunDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnSweepStart(context.Context, int, int) {}

func (p *Prometheus) OnSweepRate(context.Context, float64, float64, int, int) {
	p.SweepRatesTotal.Inc()
}

func (p *Prometheus) OnSweepComplete(_ context.Context, best float64, d time.Duration, err error) {
	if err != nil {
		p.SweepsTotal.WithLabelValues("error").Inc()
		return
	}
	p.SweepsTotal.WithLabelValues("ok").Inc()
	p.SweepDuration.Observe(d.Seconds())
	p.SweepBestRate.Set(best)
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEventsTotal.WithLabelValues("hit", keyType).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEventsTotal.WithLabelValues("miss", keyType).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEventsTotal.WithLabelValues("set", keyType).Inc()
	p.CacheBytesTotal.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
