package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/obsidianstack/ntfy-bridge/pkg/types"
	"github.com/obsidianstack/ntfy-bridge/server/internal/metrics"
	"github.com/obsidianstack/ntfy-bridge/server/internal/ntfy"
)

// maxBodyBytes bounds the size of an inbound webhook body.
const maxBodyBytes = 4 << 20

// Dispatcher delivers one alert event and reports the aggregated result.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev types.AlertEvent) ntfy.Result
}

// Options configures optional parts of the handler.
type Options struct {
	// Auth wraps the webhook route. nil leaves it open.
	Auth func(http.Handler) http.Handler

	// Metrics, when set, counts webhook responses and serves /metrics.
	Metrics *metrics.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Handler is the HTTP handler for the webhook, health and metrics routes.
type Handler struct {
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	mux        *http.ServeMux
}

// New creates a Handler delivering webhook events through d and registers all routes.
func New(d Dispatcher, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		dispatcher: d,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "api"),
		mux:        http.NewServeMux(),
	}

	var webhook http.Handler = http.HandlerFunc(h.webhook)
	if opts.Auth != nil {
		webhook = opts.Auth(webhook)
	}

	h.mux.Handle("/", rootOnly(webhook))
	h.mux.HandleFunc("/healthz", h.health)
	if h.metrics != nil {
		h.mux.Handle("/metrics", h.metrics.Handler())
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// webhook handles POST / — one Alertmanager event, fanned out per alert.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.text(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	logger := h.logger.With("request_id", id)

	var ev types.AlertEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&ev); err != nil {
		logger.Warn("api: invalid webhook payload", "remote", r.RemoteAddr, "err", err)
		h.text(w, http.StatusBadRequest, "invalid payload")
		return
	}

	res := h.dispatcher.Dispatch(ntfy.WithRequestID(r.Context(), id), ev)
	if !res.OK() {
		logger.Warn("api: webhook delivery incomplete",
			"alerts", len(ev.Alerts),
			"failed", failedCount(res.Outcomes),
		)
	}
	h.text(w, res.Code, res.Body)
}

// health returns GET /healthz.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// --- helpers ----------------------------------------------------------------

// rootOnly answers 404 for every path but "/" before next (and any auth
// wrapped around it) runs.
func rootOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// text writes a plain-text webhook response and counts it.
func (h *Handler) text(w http.ResponseWriter, code int, body string) {
	if h.metrics != nil {
		h.metrics.Webhook(code)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func failedCount(outcomes []ntfy.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil || o.StatusCode != http.StatusOK {
			n++
		}
	}
	return n
}
