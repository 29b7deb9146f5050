package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 1000
)

// EventHandler serves the gesture event journal.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// ServeHTTP routes /api/events, /api/events/stats and /api/events/{id}.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r.URL.Path, "/api/events")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case id == "" && r.Method == http.MethodDelete:
		h.clear(w)
	case id == "stats" && r.Method == http.MethodGet:
		h.stats(w)
	case id != "" && r.Method == http.MethodGet:
		h.get(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type eventResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Value       float64 `json:"value"`
	FingerCount int     `json:"finger_count"`
	TimestampMs int64   `json:"timestamp_ms"`
	CreatedAt   string  `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

func toEventResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Type:        e.Type.String(),
		X:           e.X,
		Y:           e.Y,
		Value:       e.Value,
		FingerCount: e.FingerCount,
		TimestampMs: e.Timestamp.UnixMilli(),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/events?limit=N&type=T&since_ms=MS.
func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.EventFilter{Limit: defaultEventLimit}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxEventLimit)
	}
	if v := q.Get("type"); v != "" {
		t, err := gesture.ParseType(v)
		if err != nil || t == gesture.None {
			writeError(w, http.StatusBadRequest, "unknown gesture type")
			return
		}
		filter.Type = t
	}
	if v := q.Get("since_ms"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since_ms must be a unix time in milliseconds")
			return
		}
		filter.Since = time.UnixMilli(ms)
	}

	events, err := h.store.Events().List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *EventHandler) get(w http.ResponseWriter, id string) {
	e, err := h.store.Events().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

func (h *EventHandler) clear(w http.ResponseWriter) {
	n, err := h.store.Events().Clear()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *EventHandler) stats(w http.ResponseWriter) {
	counts, err := h.store.Events().CountByType()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	out := make(map[string]int, len(counts))
	for t, n := range counts {
		out[t.String()] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": out})
}
