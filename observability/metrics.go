package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// Record stages counted by restaurant_sync_records_total.
const (
	StageFetched   = "fetched"
	StageDropped   = "dropped"
	StageDuplicate = "duplicate"
	StageUpserted  = "upserted"
)

// Metrics holds the sync collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	records  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_sync_runs_total",
				Help: "Data-set sync attempts by outcome",
			},
			[]string{"dataset", "result"},
		),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restaurant_sync_records_total",
				Help: "Records seen per data-set and pipeline stage",
			},
			[]string{"dataset", "stage"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restaurant_sync_duration_seconds",
				Help:    "Wall time of one data-set sync",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"dataset"},
		),
	}
	m.registry.MustRegister(m.runs, m.records, m.duration)
	return m
}

// ObserveDataset records the outcome and duration of one data-set sync.
func (m *Metrics) ObserveDataset(dataset string, phase models.Phase, elapsed time.Duration) {
	m.runs.WithLabelValues(dataset, string(phase)).Inc()
	m.duration.WithLabelValues(dataset).Observe(elapsed.Seconds())
}

// AddRecords adds n to the counter of the given stage.
func (m *Metrics) AddRecords(dataset, stage string, n int) {
	if n <= 0 {
		return
	}
	m.records.WithLabelValues(dataset, stage).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on port until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, port string, logger *utils.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("[metrics] serving /metrics on :%s", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
