// Package metrics exposes Prometheus counters for fetch runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pable/go-clutch-metrics/internal/model"
)

const namespace = "clutchmetrics"

// Game outcome labels.
const (
	StatusStored  = "stored"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Recorder counts run outcomes. A nil *Recorder records nothing.
type Recorder struct {
	games           *prometheus.CounterVec
	fetchAttempts   prometheus.Counter
	rows            *prometheus.CounterVec
	invalidSegments prometheus.Counter
}

// NewRecorder registers the run counters on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	auto := promauto.With(reg)
	return &Recorder{
		games: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_total",
			Help:      "Games processed, by outcome.",
		}, []string{"status"}),
		fetchAttempts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Acquisition attempts, including retries.",
		}),
		rows: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Play-by-play rows needing special handling, by kind.",
		}, []string{"kind"}),
		invalidSegments: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_segments_total",
			Help:      "Clutch lineup segments without exactly five players.",
		}),
	}
}

func (r *Recorder) FetchAttempt() {
	if r == nil {
		return
	}
	r.fetchAttempts.Inc()
}

// GameStored counts a stored game and its parse-quality counters.
func (r *Recorder) GameStored(s model.GameSummary) {
	if r == nil {
		return
	}
	r.games.WithLabelValues(StatusStored).Inc()
	r.rows.WithLabelValues("untimed").Add(float64(s.Parse.Untimed))
	r.rows.WithLabelValues("unattributed").Add(float64(s.Parse.Unattributed))
	r.rows.WithLabelValues("duplicate").Add(float64(s.Parse.Duplicates))
	r.invalidSegments.Add(float64(s.InvalidSegments))
}

func (r *Recorder) GameFailed() {
	if r == nil {
		return
	}
	r.games.WithLabelValues(StatusFailed).Inc()
}

func (r *Recorder) GameSkipped() {
	if r == nil {
		return
	}
	r.games.WithLabelValues(StatusSkipped).Inc()
}

// Router serves /metrics from g and a plain /healthz.
func Router(g prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return router
}

// Serve exposes Router on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(g),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
