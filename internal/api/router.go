package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/honeynil/nft-marketplace/internal/handler"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "action", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "action"},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter, RequestDuration)
}

// Pinger reports database liveness for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SetupRouter mounts the marketplace handler on every path except /metrics and
// /healthz. An empty jwtSecret leaves POST actions unauthenticated.
func SetupRouter(h *handler.Handler, db Pinger, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet)

	var marketplace http.Handler = h
	if jwtSecret != "" {
		marketplace = auth.AuthMiddleware(jwtSecret)(marketplace)
	}
	r.PathPrefix("/").Handler(metricsMiddleware(marketplace))

	return r
}

// metricsMiddleware для метрик по method/action
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		action := actionLabel(r.URL.Query().Get("action"))

		// Записываем ответ для получения статуса
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		status := strconv.Itoa(recorder.statusCode())
		RequestCounter.WithLabelValues(method, action, status).Inc()
		RequestDuration.WithLabelValues(method, action).Observe(time.Since(start).Seconds())
	})
}

// actionLabel keeps label cardinality bounded to the known actions.
func actionLabel(action string) string {
	switch action {
	case handler.ActionNFTs, handler.ActionUser, handler.ActionStats, handler.ActionPurchase, handler.ActionCreateNFT:
		return action
	case "":
		return "none"
	default:
		return "other"
	}
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// statusRecorder для захвата статуса ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
