// Package iometrics exports sector sync events of the coordinator as
// prometheus metrics.
package iometrics

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gnames/gncat/pkg/coord"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gnfmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gncat"

// Observer implements coord.Observer.
type Observer struct {
	reg      *prometheus.Registry
	running  prometheus.Gauge
	queued   prometheus.Gauge
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ coord.Observer = (*Observer)(nil)

// New creates an Observer with its own registry. Go runtime and process
// collectors are registered as well.
func New() *Observer {
	res := &Observer{
		reg: prometheus.NewRegistry(),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "syncs_running",
			Help:      "Number of sector syncs that are running.",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "syncs_queued",
			Help:      "Number of sector syncs waiting for a worker.",
		}),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_started_total",
			Help:      "Sector syncs started.",
		}, []string{"sector"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_finished_total",
			Help:      "Sector syncs finished, by final state.",
		}, []string{"sector", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sector syncs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"state"}),
	}
	res.reg.MustRegister(
		res.running, res.queued, res.started, res.finished, res.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return res
}

func (o *Observer) SyncStarted(sectorKey int) {
	o.running.Inc()
	o.started.WithLabelValues(strconv.Itoa(sectorKey)).Inc()
}

func (o *Observer) SyncFinished(
	sectorKey int,
	state sector.State,
	d time.Duration,
) {
	o.running.Dec()
	o.finished.WithLabelValues(strconv.Itoa(sectorKey), state.String()).Inc()
	o.duration.WithLabelValues(state.String()).Observe(d.Seconds())
}

func (o *Observer) QueueSize(n int) {
	o.queued.Set(float64(n))
}

// Registry gives access to the collected metrics.
func (o *Observer) Registry() *prometheus.Registry {
	return o.reg
}

// Handler serves the metrics in the prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.reg, promhttp.HandlerOpts{})
}

// StatusHandler serves the result of status as JSON.
func StatusHandler(status func() any) http.Handler {
	enc := gnfmt.GNjson{Pretty: true}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		res, err := enc.Encode(status())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(res)
	})
}

// Serve starts an HTTP server with the /metrics endpoint, and /status
// when status is not nil. The server is returned so the caller can shut
// it down.
func (o *Observer) Serve(addr string, status func() any) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())
	if status != nil {
		mux.Handle("/status", StatusHandler(status))
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "addr", addr, "error", err)
		}
	}()
	return srv
}
