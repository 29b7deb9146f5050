package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
)

// Controller is the part of the recognition loop exposed over HTTP.
type Controller interface {
	Reset()
	IsEnabled() bool
	SetEnabled(enabled bool) error
	GestureConfig() gesture.Config
}

// ControlHandler serves /api/reset, /api/config and /api/enabled.
type ControlHandler struct {
	ctl Controller
}

// NewControlHandler creates a ControlHandler for ctl.
func NewControlHandler(ctl Controller) *ControlHandler {
	return &ControlHandler{ctl: ctl}
}

// ServeHTTP routes on the full request path.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ctl.Reset()
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})

	case "/api/config":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.ctl.GestureConfig())

	case "/api/enabled":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, enabledBody{Enabled: h.ctl.IsEnabled()})
		case http.MethodPut:
			h.setEnabled(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.NotFound(w, r)
	}
}

type enabledBody struct {
	Enabled bool `json:"enabled"`
}

func (h *ControlHandler) setEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	if err := h.ctl.SetEnabled(*req.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, enabledBody{Enabled: h.ctl.IsEnabled()})
}
