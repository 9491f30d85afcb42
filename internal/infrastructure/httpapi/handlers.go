package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

// DashboardReader is the read model behind /api/dashboard.
type DashboardReader interface {
	Stats(ctx context.Context) ([]domain.PlatformCount, error)
	Logs(ctx context.Context, limit int, platform domain.Platform) ([]domain.ProcessingRecord, error)
	Analytics(ctx context.Context) ([]domain.DailyCount, error)
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type runStatus struct {
	IsRunning bool   `json:"isRunning"`
	Message   string `json:"message,omitempty"`
}

// RunHandler exposes the run switch.
type RunHandler struct {
	state  ports.RunState
	logger *slog.Logger
}

// NewRunHandler builds the control surface handler.
func NewRunHandler(state ports.RunState, logger *slog.Logger) *RunHandler {
	return &RunHandler{state: state, logger: logger}
}

func (h *RunHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, runStatus{IsRunning: h.state.Running()})
}

func (h *RunHandler) Start(w http.ResponseWriter, _ *http.Request) {
	h.state.SetRunning(true)
	h.logger.Info("auto-reply started")
	writeJSON(w, http.StatusOK, runStatus{IsRunning: true, Message: "Bot started"})
}

func (h *RunHandler) Stop(w http.ResponseWriter, _ *http.Request) {
	h.state.SetRunning(false)
	h.logger.Info("auto-reply stopped")
	writeJSON(w, http.StatusOK, runStatus{IsRunning: false, Message: "Bot stopped"})
}

// DashboardHandler serves ledger statistics.
type DashboardHandler struct {
	reader DashboardReader
	logger *slog.Logger
}

// NewDashboardHandler builds the dashboard handler.
func NewDashboardHandler(reader DashboardReader, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{reader: reader, logger: logger}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.Stats(r.Context())
	if err != nil {
		h.fail(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Logs accepts ?limit=N and ?marketplace=wildberries|ozon.
func (h *DashboardHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	var platform domain.Platform
	if raw := strings.TrimSpace(q.Get("marketplace")); raw != "" {
		p, ok := domain.ParsePlatform(raw)
		if !ok {
			p, ok = domain.ParsePlatform(strings.ToLower(raw))
		}
		if !ok {
			writeError(w, badRequest("unknown marketplace "+strconv.Quote(raw)))
			return
		}
		platform = p
	}

	logs, err := h.reader.Logs(r.Context(), limit, platform)
	if err != nil {
		h.fail(w, r, "logs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	days, err := h.reader.Analytics(r.Context())
	if err != nil {
		h.fail(w, r, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, view string, err error) {
	h.logger.Error("dashboard query failed", "view", view, "request_id", RequestIDFrom(r.Context()), "error", err)
	writeError(w, internalError(""))
}

// HealthHandler reports ledger reachability.
type HealthHandler struct {
	ledger Pinger
}

// NewHealthHandler builds the health handler.
func NewHealthHandler(ledger Pinger) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.ledger.Ping(ctx); err != nil {
		writeError(w, serviceUnavailable("ledger unavailable: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
