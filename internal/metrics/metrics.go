// Package metrics exposes pit wall activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives pit wall events.
type Recorder interface {
	RecordPrediction(circuit string)
	RecordSimulation(circuit, kind, verdict string, d time.Duration)
	RecordLoadFailure(circuit string)
	RecordRequest(method string, status int, d time.Duration)
	SetCachedModels(n int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordPrediction(string) {}
func (NopRecorder) RecordSimulation(string, string, string, time.Duration) {}
func (NopRecorder) RecordLoadFailure(string) {}
func (NopRecorder) RecordRequest(string, int, time.Duration) {}
func (NopRecorder) SetCachedModels(int) {}

// PromRecorder records events in Prometheus collectors.
type PromRecorder struct {
	predictions  *prometheus.CounterVec
	simulations  *prometheus.CounterVec
	simDuration  *prometheus.HistogramVec
	loadFailures *prometheus.CounterVec
	requests     *prometheus.CounterVec
	reqDuration  *prometheus.HistogramVec
	cached       prometheus.Gauge
}

// NewPromRecorder registers the collectors on reg, or on the default
// registerer when reg is nil. Collectors that are already registered are
// reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PromRecorder{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_predictions_total",
			Help: "Total number of single-lap predictions",
		}, []string{"circuit"}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_simulations_total",
			Help: "Total number of strategy simulations by verdict",
		}, []string{"circuit", "kind", "verdict"}),
		simDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pitwall_simulation_duration_seconds",
			Help:    "Time spent in a strategy simulation",
			Buckets: []float64{.00001, .0001, .001, .01, .1},
		}, []string{"kind"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_model_load_failures_total",
			Help: "Total number of failed model loads",
		}, []string{"circuit"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitwall_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "code"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pitwall_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		cached: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pitwall_cached_models",
			Help: "Number of circuit models held in memory",
		}),
	}

	var err error
	if r.predictions, err = register(reg, r.predictions); err != nil {
		return nil, err
	}
	if r.simulations, err = register(reg, r.simulations); err != nil {
		return nil, err
	}
	if r.simDuration, err = register(reg, r.simDuration); err != nil {
		return nil, err
	}
	if r.loadFailures, err = register(reg, r.loadFailures); err != nil {
		return nil, err
	}
	if r.requests, err = register(reg, r.requests); err != nil {
		return nil, err
	}
	if r.reqDuration, err = register(reg, r.reqDuration); err != nil {
		return nil, err
	}
	if r.cached, err = register(reg, r.cached); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts a single-lap prediction.
func (r *PromRecorder) RecordPrediction(circuit string) {
	r.predictions.WithLabelValues(circuit).Inc()
}

// RecordSimulation counts a simulation and its duration.
func (r *PromRecorder) RecordSimulation(circuit, kind, verdict string, d time.Duration) {
	r.simulations.WithLabelValues(circuit, kind, verdict).Inc()
	r.simDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordLoadFailure counts a failed model load.
func (r *PromRecorder) RecordLoadFailure(circuit string) {
	r.loadFailures.WithLabelValues(circuit).Inc()
}

// RecordRequest counts an HTTP request.
func (r *PromRecorder) RecordRequest(method string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.reqDuration.WithLabelValues(method).Observe(d.Seconds())
}

// SetCachedModels sets the cached model gauge.
func (r *PromRecorder) SetCachedModels(n int) {
	r.cached.Set(float64(n))
}

// Handler serves the metrics gathered by g, or by the default gatherer
// when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
