package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/service"
)

// TradesHandler serves follow trade queries, the manual follow trigger, and
// cancellation.
type TradesHandler struct {
	svc    *service.TradeService
	logger *slog.Logger
}

// NewTradesHandler creates a TradesHandler.
func NewTradesHandler(svc *service.TradeService, logger *slog.Logger) *TradesHandler {
	return &TradesHandler{
		svc:    svc,
		logger: logger.With("handler", "trades"),
	}
}

// List returns follow trades, newest first, with optional status and wallet
// filters.
// GET /api/trades?limit=N&status=S&wallet=W
func (h *TradesHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	if opts.Status != "" && !opts.Status.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", opts.Status))
		return
	}

	trades, err := h.svc.FollowTrades(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, trades)
}

// executeRequest is the POST /api/trades body. Amount, when positive,
// overrides the whale's notional before sizing.
type executeRequest struct {
	WhaleTradeID string  `json:"whaleTradeId"`
	Amount       float64 `json:"amount"`
}

// Execute runs a follow trade for a recorded whale trade. This works whether
// or not auto-execution is enabled.
// POST /api/trades
func (h *TradesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.WhaleTradeID == "" {
		writeDomainError(w, fmt.Errorf("whaleTradeId is required: %w", domain.ErrMissingField))
		return
	}

	trade, err := h.svc.Follow(r.Context(), req.WhaleTradeID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("manual follow", "whale_trade_id", req.WhaleTradeID, "trade_id", trade.ID, "status", trade.Status)
	writeDataMessage(w, http.StatusCreated, trade, "follow trade executed")
}

// Cancel moves a PENDING follow trade to CANCELLED. Terminal trades return
// 409.
// DELETE /api/trades/{id}
func (h *TradesHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	trade, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("follow trade cancelled", "id", id)
	writeDataMessage(w, http.StatusOK, trade, "follow trade cancelled")
}
