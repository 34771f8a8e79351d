package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/service"
)

// MonitorHandler serves the whale monitor's status, its detected trades, and
// the start/stop controls.
type MonitorHandler struct {
	svc    *service.TradeService
	logger *slog.Logger
}

// NewMonitorHandler creates a MonitorHandler.
func NewMonitorHandler(svc *service.TradeService, logger *slog.Logger) *MonitorHandler {
	return &MonitorHandler{
		svc:    svc,
		logger: logger.With("handler", "monitor"),
	}
}

// Get returns either the monitor status plus dashboard stats, or the
// detected whale trades.
// GET /api/monitor?type=status|trades&limit=N
func (h *MonitorHandler) Get(w http.ResponseWriter, r *http.Request) {
	switch t := r.URL.Query().Get("type"); t {
	case "", "status":
		status, uptime := h.svc.MonitorStatus()
		writeData(w, http.StatusOK, map[string]any{
			"status": status,
			"uptime": uptime.Truncate(time.Second).String(),
			"stats":  h.svc.Stats(time.Now()),
		})
	case "trades":
		trades, err := h.svc.WhaleTrades(r.Context(), parseListOpts(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, trades)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", t))
	}
}

// controlRequest is the POST /api/monitor body.
type controlRequest struct {
	Action string `json:"action"` // "start" or "stop"
}

// Control starts or stops whale monitoring.
// POST /api/monitor
func (h *MonitorHandler) Control(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var changed bool
	var message string
	switch req.Action {
	case "start":
		changed = h.svc.StartMonitor(r.Context())
		message = "monitoring started"
	case "stop":
		changed = h.svc.StopMonitor(r.Context())
		message = "monitoring stopped"
	default:
		writeDomainError(w, fmt.Errorf("action must be start or stop, got %q: %w", req.Action, domain.ErrInvalidAction))
		return
	}

	status, _ := h.svc.MonitorStatus()
	if !changed {
		message = fmt.Sprintf("monitor already %s", status)
	}

	h.logger.Info("monitor control", "action", req.Action, "changed", changed, "status", status)
	writeDataMessage(w, http.StatusOK, map[string]any{"status": status}, message)
}
