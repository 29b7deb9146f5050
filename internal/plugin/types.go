// Package plugin discovers and runs external action plugins. A plugin is a
// directory holding a plugin.json manifest and an executable that reads one
// JSON Request on stdin and writes one JSON Response on stdout.
package plugin

import (
	"encoding/json"

	"github.com/ayusman/mudra/internal/gesture"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// SupportsAction reports whether the manifest lists action. A manifest with
// no actions accepts any.
func (m Manifest) SupportsAction(action string) bool {
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// EventPayload is the gesture event as seen by a plugin.
type EventPayload struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Value       float64 `json:"value"`
	FingerCount int     `json:"finger_count"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Event   *EventPayload   `json:"event,omitempty"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// NewRequest builds the request for running action in response to ev.
func NewRequest(action string, ev gesture.Event, config json.RawMessage) *Request {
	return &Request{
		Action:  action,
		Gesture: ev.Type.String(),
		Event: &EventPayload{
			X:           ev.X,
			Y:           ev.Y,
			Value:       ev.Value,
			FingerCount: ev.FingerCount,
			TimestampMs: ev.Timestamp.UnixMilli(),
		},
		Config: config,
		Params: json.RawMessage("{}"),
	}
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
