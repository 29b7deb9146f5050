package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func get(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantEnabled any
		wantClients any
	}{
		{"bare server", Config{}, nil, nil},
		{"recognition paused", Config{Control: &stubControl{enabled: false}}, false, nil},
		{"with control and hub", Config{Control: &stubControl{enabled: true}, Hub: NewHub()}, true, float64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(New(tt.config), http.MethodGet, "/api/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}

			var response map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response["status"] != "ok" {
				t.Errorf("expected status 'ok', got %v", response["status"])
			}
			if response["enabled"] != tt.wantEnabled {
				t.Errorf("expected enabled %v, got %v", tt.wantEnabled, response["enabled"])
			}
			if response["clients"] != tt.wantClients {
				t.Errorf("expected clients %v, got %v", tt.wantClients, response["clients"])
			}
		})
	}

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		if rec := get(New(Config{}), method, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func TestServer_Routes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>mudra</h1>"), 0644); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}

	full := New(Config{StaticDir: dir, Control: &stubControl{enabled: true}, HUD: staticFrames{0xFF, 0xD8}})
	bare := New(Config{})

	tests := []struct {
		name   string
		server *Server
		method string
		path   string
		want   int
	}{
		{"dashboard index", full, http.MethodGet, "/", http.StatusOK},
		{"missing static file", full, http.MethodGet, "/missing.js", http.StatusNotFound},
		{"gesture config", full, http.MethodGet, "/api/config", http.StatusOK},
		{"enabled flag", full, http.MethodGet, "/api/enabled", http.StatusOK},
		{"reset needs POST", full, http.MethodGet, "/api/reset", http.StatusMethodNotAllowed},
		{"unknown api path", bare, http.MethodGet, "/api/nonexistent", http.StatusNotFound},
		{"no static dir", bare, http.MethodGet, "/", http.StatusNotFound},
		{"no store, no events", bare, http.MethodGet, "/api/events", http.StatusNotFound},
		{"no store, no actions", bare, http.MethodGet, "/api/actions", http.StatusNotFound},
		{"no control, no reset", bare, http.MethodPost, "/api/reset", http.StatusNotFound},
		{"no hub, no websocket", bare, http.MethodGet, "/api/ws", http.StatusNotFound},
		{"no hud, no stream", bare, http.MethodGet, "/api/hud", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(tt.server, tt.method, tt.path); rec.Code != tt.want {
				t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, rec.Code)
			}
		})
	}
}
