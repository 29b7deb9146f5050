package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func serve(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func seedEvents(t *testing.T, s *store.Store) []*store.Event {
	t.Helper()
	base := time.UnixMilli(1_700_000_000_000)
	evs := []gesture.Event{
		{Type: gesture.Tap, X: 10, Y: 20, Value: 120, FingerCount: 1, Timestamp: base},
		{Type: gesture.SwipeLeft, X: 30, Y: 40, Value: 45, FingerCount: 1, Timestamp: base.Add(time.Second)},
		{Type: gesture.Tap, X: 50, Y: 60, Value: 90, FingerCount: 1, Timestamp: base.Add(2 * time.Second)},
	}

	var out []*store.Event
	for _, ev := range evs {
		rec, err := s.Events().Append(ev)
		if err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestEventHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s)
	handler := NewEventHandler(s)

	rec := serve(handler, http.MethodGet, "/api/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	resp := decode[listEventsResponse](t, rec)
	if len(resp.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(resp.Events))
	}
	if resp.Events[0].X != 50 {
		t.Errorf("expected newest event first, got x=%d", resp.Events[0].X)
	}
	if resp.Events[0].TimestampMs != 1_700_000_002_000 {
		t.Errorf("expected timestamp_ms 1700000002000, got %d", resp.Events[0].TimestampMs)
	}
}

func TestEventHandler_ListFilters(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s)
	handler := NewEventHandler(s)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by type", "?type=Tap", 2},
		{"limit", "?limit=1", 1},
		{"since", "?since_ms=1700000001000", 2},
		{"combined", "?type=Tap&since_ms=1700000001000", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodGet, "/api/events"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if got := len(decode[listEventsResponse](t, rec).Events); got != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, got)
			}
		})
	}
}

func TestEventHandler_ListBadQuery(t *testing.T) {
	handler := NewEventHandler(newTestStore(t))

	for _, q := range []string{"?limit=0", "?limit=abc", "?type=Wave", "?type=None", "?since_ms=soon"} {
		rec := serve(handler, http.MethodGet, "/api/events"+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", q, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestEventHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seeded := seedEvents(t, s)
	handler := NewEventHandler(s)

	rec := serve(handler, http.MethodGet, "/api/events/"+seeded[1].ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	got := decode[eventResponse](t, rec)
	if got.Type != "SwipeLeft" || got.Value != 45 {
		t.Errorf("expected SwipeLeft value 45, got %s value %v", got.Type, got.Value)
	}

	rec = serve(handler, http.MethodGet, "/api/events/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestEventHandler_StatsAndClear(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s)
	handler := NewEventHandler(s)

	rec := serve(handler, http.MethodGet, "/api/events/stats", nil)
	stats := decode[struct {
		Counts map[string]int `json:"counts"`
	}](t, rec)
	if stats.Counts["Tap"] != 2 || stats.Counts["SwipeLeft"] != 1 {
		t.Errorf("unexpected counts: %v", stats.Counts)
	}

	rec = serve(handler, http.MethodDelete, "/api/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if deleted := decode[map[string]int64](t, rec)["deleted"]; deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	rec = serve(handler, http.MethodGet, "/api/events", nil)
	if n := len(decode[listEventsResponse](t, rec).Events); n != 0 {
		t.Errorf("expected empty journal, got %d events", n)
	}

	rec = serve(handler, http.MethodPost, "/api/events", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestActionHandler_CRUD(t *testing.T) {
	handler := NewActionHandler(newTestStore(t), nil)

	rec := serve(handler, http.MethodPost, "/api/actions", map[string]any{
		"gesture_type": "SwipeLeft",
		"plugin_name":  "keyboard",
		"action_name":  "keystroke",
		"config":       map[string]string{"key": "Left"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	created := decode[actionResponse](t, rec)
	if created.ID == "" {
		t.Fatal("expected generated ID")
	}
	if created.GestureType != "SwipeLeft" || !created.Enabled {
		t.Errorf("unexpected created action: %+v", created)
	}

	rec = serve(handler, http.MethodGet, "/api/actions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = serve(handler, http.MethodPut, "/api/actions/"+created.ID, map[string]any{
		"gesture_type": "SwipeRight",
		"enabled":      false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	updated := decode[actionResponse](t, rec)
	if updated.GestureType != "SwipeRight" || updated.Enabled || updated.PluginName != "keyboard" {
		t.Errorf("unexpected updated action: %+v", updated)
	}

	rec = serve(handler, http.MethodGet, "/api/actions", nil)
	if n := len(decode[listActionsResponse](t, rec).Actions); n != 1 {
		t.Errorf("expected 1 action, got %d", n)
	}

	rec = serve(handler, http.MethodDelete, "/api/actions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	rec = serve(handler, http.MethodGet, "/api/actions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestActionHandler_Validation(t *testing.T) {
	handler := NewActionHandler(newTestStore(t), nil)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing gesture", map[string]string{"plugin_name": "p", "action_name": "a"}, http.StatusBadRequest},
		{"missing plugin", map[string]string{"gesture_type": "Tap", "action_name": "a"}, http.StatusBadRequest},
		{"missing action", map[string]string{"gesture_type": "Tap", "plugin_name": "p"}, http.StatusBadRequest},
		{"unknown gesture", map[string]string{"gesture_type": "Wave", "plugin_name": "p", "action_name": "a"}, http.StatusBadRequest},
		{"none gesture", map[string]string{"gesture_type": "None", "plugin_name": "p", "action_name": "a"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodPost, "/api/actions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestActionHandler_Conflict(t *testing.T) {
	handler := NewActionHandler(newTestStore(t), nil)
	body := map[string]string{"gesture_type": "Tap", "plugin_name": "keyboard", "action_name": "keystroke"}

	if rec := serve(handler, http.MethodPost, "/api/actions", body); rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if rec := serve(handler, http.MethodPost, "/api/actions", body); rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	// A second action on the same gesture is allowed.
	body["action_name"] = "shortcut"
	if rec := serve(handler, http.MethodPost, "/api/actions", body); rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
}

type fakePlugins map[string]*plugin.Plugin

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	p, ok := f[name]
	if !ok {
		return nil, plugin.ErrPluginNotFound
	}
	return p, nil
}

func TestActionHandler_PluginLookup(t *testing.T) {
	plugins := fakePlugins{
		"keyboard": {Manifest: plugin.Manifest{Name: "keyboard", Actions: []string{"keystroke"}}},
	}
	handler := NewActionHandler(newTestStore(t), plugins)

	tests := []struct {
		plugin, action string
		want           int
	}{
		{"keyboard", "keystroke", http.StatusCreated},
		{"keyboard", "volume-up", http.StatusBadRequest},
		{"mouse", "click", http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := serve(handler, http.MethodPost, "/api/actions", map[string]string{
			"gesture_type": "DoubleTap",
			"plugin_name":  tt.plugin,
			"action_name":  tt.action,
		})
		if rec.Code != tt.want {
			t.Errorf("%s/%s: expected status %d, got %d", tt.plugin, tt.action, tt.want, rec.Code)
		}
	}
}

type fakeController struct {
	resets  int
	enabled bool
	saveErr error
}

func (c *fakeController) Reset()                        { c.resets++ }
func (c *fakeController) IsEnabled() bool               { return c.enabled }
func (c *fakeController) GestureConfig() gesture.Config { return gesture.DefaultConfig() }
func (c *fakeController) SetEnabled(enabled bool) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.enabled = enabled
	return nil
}

func TestControlHandler(t *testing.T) {
	ctl := &fakeController{enabled: true}
	handler := NewControlHandler(ctl)

	rec := serve(handler, http.MethodPost, "/api/reset", nil)
	if rec.Code != http.StatusOK || ctl.resets != 1 {
		t.Errorf("expected reset to succeed once, got status %d resets %d", rec.Code, ctl.resets)
	}
	if rec := serve(handler, http.MethodGet, "/api/reset", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d for GET reset, got %d", http.StatusMethodNotAllowed, rec.Code)
	}

	rec = serve(handler, http.MethodGet, "/api/config", nil)
	cfg := decode[gesture.Config](t, rec)
	if cfg != gesture.DefaultConfig() {
		t.Errorf("expected default config, got %+v", cfg)
	}

	rec = serve(handler, http.MethodPut, "/api/enabled", map[string]bool{"enabled": false})
	if rec.Code != http.StatusOK || ctl.enabled {
		t.Errorf("expected recognition disabled, got status %d enabled %v", rec.Code, ctl.enabled)
	}
	rec = serve(handler, http.MethodGet, "/api/enabled", nil)
	if decode[enabledBody](t, rec).Enabled {
		t.Error("expected enabled=false")
	}

	if rec := serve(handler, http.MethodPut, "/api/enabled", "{}"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for missing field, got %d", http.StatusBadRequest, rec.Code)
	}

	ctl.saveErr = errors.New("disk full")
	if rec := serve(handler, http.MethodPut, "/api/enabled", map[string]bool{"enabled": true}); rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d on save failure, got %d", http.StatusInternalServerError, rec.Code)
	}
}
