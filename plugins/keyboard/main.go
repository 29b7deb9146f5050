// Package main provides a keyboard plugin for Linux desktops.
// It sends keystrokes and shortcuts through xdotool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeystrokeConfig is the per-binding configuration stored with an action.
type KeystrokeConfig struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // ctrl, alt, shift, super
}

// modifierMap maps user-friendly modifier names to xdotool key names.
var modifierMap = map[string]string{
	"control": "ctrl",
	"ctrl":    "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"super":   "super",
	"cmd":     "super",
	"command": "super",
}

// gestureKeys is used when a binding carries no key of its own.
var gestureKeys = map[string]string{
	"SwipeLeft":  "Left",
	"SwipeRight": "Right",
	"SwipeUp":    "Up",
	"SwipeDown":  "Down",
	"Tap":        "space",
	"DoubleTap":  "Return",
	"LongPress":  "Escape",
	"PinchOut":   "ctrl+plus",
	"PinchIn":    "ctrl+minus",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		chord, err := resolveChord(req)
		if err != nil {
			writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
			return
		}
		if err := runXdotool("key", "--clearmodifiers", chord); err != nil {
			writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
			return
		}
		data, _ := json.Marshal(map[string]string{"chord": chord})
		writeResponse(Response{Success: true, Data: data})
	default:
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
	}
}

// resolveChord turns the binding config, or the gesture default, into an
// xdotool key chord such as "ctrl+shift+t".
func resolveChord(req Request) (string, error) {
	var cfg KeystrokeConfig
	if len(req.Config) > 0 && string(req.Config) != "null" {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cfg.Key == "" {
		key, ok := gestureKeys[req.Gesture]
		if !ok {
			return "", fmt.Errorf("key is required for gesture %q", req.Gesture)
		}
		return key, nil
	}

	return buildChord(cfg.Key, cfg.Modifiers), nil
}

func buildChord(key string, modifiers []string) string {
	parts := make([]string, 0, len(modifiers)+1)
	for _, mod := range modifiers {
		if m, ok := modifierMap[strings.ToLower(mod)]; ok {
			parts = append(parts, m)
		}
	}
	return strings.Join(append(parts, key), "+")
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runXdotool(args ...string) error {
	output, err := exec.Command("xdotool", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
