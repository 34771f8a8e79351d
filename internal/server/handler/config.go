package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
)

// ConfigHandler serves the runtime settings: follow policy, notification
// settings, and the tracked wallet registry.
type ConfigHandler struct {
	settings *config.Store
	logger   *slog.Logger
}

// NewConfigHandler creates a ConfigHandler over the settings store.
func NewConfigHandler(settings *config.Store, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		settings: settings,
		logger:   logger.With("handler", "config"),
	}
}

// Get returns the requested settings section, or the full runtime config
// when no section is given.
// GET /api/config?section=follow|notify|wallets
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	switch section := r.URL.Query().Get("section"); section {
	case "follow":
		follow, _ := h.settings.Follow()
		writeData(w, http.StatusOK, follow)
	case "notify":
		writeData(w, http.StatusOK, h.settings.Notify())
	case "wallets":
		writeData(w, http.StatusOK, h.settings.Wallets())
	case "":
		follow, version := h.settings.Follow()
		writeData(w, http.StatusOK, map[string]any{
			"follow":  follow,
			"notify":  h.settings.Notify(),
			"wallets": h.settings.Wallets(),
			"version": version,
		})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown section %q", section))
	}
}

// updateRequest is the PUT /api/config body. Data is applied as a partial
// update over the current section snapshot.
type updateRequest struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data"`
}

// Update applies a validated partial update to the follow or notify section.
// PUT /api/config
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Data) == 0 {
		writeDomainError(w, fmt.Errorf("data is required: %w", domain.ErrMissingField))
		return
	}

	switch req.Section {
	case "follow":
		next, _ := h.settings.Follow()
		if err := json.Unmarshal(req.Data, &next); err != nil {
			writeError(w, http.StatusBadRequest, "invalid follow config: "+err.Error())
			return
		}
		version, err := h.settings.UpdateFollow(next)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.logger.Info("follow config updated", "version", version)
		writeDataMessage(w, http.StatusOK, next, "follow config updated")

	case "notify":
		next := h.settings.Notify()
		if err := json.Unmarshal(req.Data, &next); err != nil {
			writeError(w, http.StatusBadRequest, "invalid notify config: "+err.Error())
			return
		}
		version := h.settings.UpdateNotify(next)
		h.logger.Info("notify config updated", "version", version)
		writeDataMessage(w, http.StatusOK, next, "notify config updated")

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown section %q", req.Section))
	}
}

// addWalletRequest is the POST /api/config body.
type addWalletRequest struct {
	Address string   `json:"address"`
	Label   string   `json:"label"`
	Tags    []string `json:"tags"`
}

// AddWallet registers a new tracked wallet.
// POST /api/config
func (h *ConfigHandler) AddWallet(w http.ResponseWriter, r *http.Request) {
	var req addWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	wallet, err := h.settings.AddWallet(req.Address, req.Label, req.Tags)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("wallet added", "id", wallet.ID, "address", wallet.Address, "label", wallet.Label)
	writeDataMessage(w, http.StatusCreated, wallet, "wallet added")
}
