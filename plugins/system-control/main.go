// Package main provides a system control plugin for Linux desktops.
// It handles volume, brightness and media playback through wpctl,
// brightnessctl and playerctl.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Event   *Event          `json:"event,omitempty"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Event is the gesture that triggered the request.
type Event struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Value       float64 `json:"value"`
	FingerCount int     `json:"finger_count"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const sink = "@DEFAULT_AUDIO_SINK@"

// commands maps fixed action names to the command they run.
var commands = map[string][]string{
	"volume-up":        {"wpctl", "set-volume", "-l", "1.0", sink, "5%+"},
	"volume-down":      {"wpctl", "set-volume", sink, "5%-"},
	"volume-mute":      {"wpctl", "set-mute", sink, "toggle"},
	"brightness-up":    {"brightnessctl", "set", "10%+"},
	"brightness-down":  {"brightnessctl", "set", "10%-"},
	"media-play-pause": {"playerctl", "play-pause"},
	"media-next":       {"playerctl", "next"},
	"media-prev":       {"playerctl", "previous"},
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	args, err := commandFor(req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	if output, err := exec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v: %s", req.Action, err, output)})
		return
	}
	writeResponse(Response{Success: true})
}

// commandFor returns the command line for req. The "volume-rotate" action
// scales the volume change with the rotation angle: one percent per
// three degrees, clockwise raising it.
func commandFor(req Request) ([]string, error) {
	if args, ok := commands[req.Action]; ok {
		return args, nil
	}
	if req.Action != "volume-rotate" {
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}
	if req.Event == nil {
		return nil, fmt.Errorf("action %s needs the gesture event", req.Action)
	}

	step := int(math.Round(math.Abs(req.Event.Value) / 3))
	if step < 1 {
		step = 1
	}
	switch req.Gesture {
	case "RotateCW":
		return []string{"wpctl", "set-volume", "-l", "1.0", sink, fmt.Sprintf("%d%%+", step)}, nil
	case "RotateCCW":
		return []string{"wpctl", "set-volume", sink, fmt.Sprintf("%d%%-", step)}, nil
	}
	return nil, fmt.Errorf("action %s does not apply to %s", req.Action, req.Gesture)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
