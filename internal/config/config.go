// Package config loads the mudra configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/touch"
)

// Touch source names.
const (
	SourceSerial = "serial"
	SourceReplay = "replay"
	SourceNone   = "none"
)

// Config is the top-level application configuration.
type Config struct {
	// TickInterval is the scheduler cadence.
	TickInterval time.Duration `yaml:"tick_interval"`

	Gesture gesture.Config `yaml:"gesture"`
	Touch   Touch          `yaml:"touch"`
	Server  Server         `yaml:"server"`
	Store   Store          `yaml:"store"`
	Audio   Audio          `yaml:"audio"`
	HUD     HUD            `yaml:"hud"`
	Plugins Plugins        `yaml:"plugins"`
}

// Touch selects and configures the touch feed.
type Touch struct {
	Source          string            `yaml:"source"`
	Port            string            `yaml:"port"`
	Serial          touch.PortOptions `yaml:"serial"`
	Mapping         touch.Mapping     `yaml:"mapping"`
	CorruptionLimit int               `yaml:"corruption_limit"`
	// Trace is the JSONL file replayed when Source is "replay".
	Trace string `yaml:"trace"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Store struct {
	Path string `yaml:"path"`
	// Keep bounds the event journal; zero keeps everything.
	Keep int `yaml:"keep"`
}

type Audio struct {
	Enabled bool `yaml:"enabled"`
	// Output receives raw PCM, typically a FIFO read by aplay.
	Output     string        `yaml:"output"`
	SampleRate int           `yaml:"sample_rate"`
	Amplitude  float64       `yaml:"amplitude"`
	Gap        time.Duration `yaml:"gap"`
}

type HUD struct {
	// ClearAfter hides the last gesture after this long.
	ClearAfter time.Duration `yaml:"clear_after"`
	StreamFPS  int           `yaml:"stream_fps"`
}

type Plugins struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TickInterval: 17 * time.Millisecond,
		Gesture:      gesture.DefaultConfig(),
		Touch: Touch{
			Source:          SourceSerial,
			Port:            "/dev/ttyUSB0",
			Serial:          touch.PortOptions{BaudRate: 115200},
			Mapping:         touch.DefaultMapping(),
			CorruptionLimit: touch.DefaultCorruptionLimit,
		},
		Server: Server{Addr: "127.0.0.1:8420"},
		Store:  Store{Path: "mudra.db", Keep: 10000},
		Audio: Audio{
			SampleRate: 22050,
			Amplitude:  0.2,
			Gap:        150 * time.Millisecond,
		},
		HUD: HUD{
			ClearAfter: 3 * time.Second,
			StreamFPS:  15,
		},
		Plugins: Plugins{
			Dir:     "plugins",
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %v", c.TickInterval))
	}
	if err := c.Gesture.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gesture: %w", err))
	}

	switch c.Touch.Source {
	case SourceSerial:
		if c.Touch.Port == "" {
			errs = append(errs, errors.New("touch: port is required for the serial source"))
		}
		if _, err := c.Touch.Serial.Normalize(); err != nil {
			errs = append(errs, fmt.Errorf("touch: %w", err))
		}
	case SourceReplay:
		if c.Touch.Trace == "" {
			errs = append(errs, errors.New("touch: trace is required for the replay source"))
		}
	case SourceNone:
	default:
		errs = append(errs, fmt.Errorf("touch: unknown source %q", c.Touch.Source))
	}
	if err := c.Touch.Mapping.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("touch mapping: %w", err))
	}

	if c.Audio.Enabled {
		if c.Audio.SampleRate <= 0 {
			errs = append(errs, fmt.Errorf("audio: sample_rate must be positive, got %d", c.Audio.SampleRate))
		}
		if c.Audio.Amplitude < 0 || c.Audio.Amplitude > 1 {
			errs = append(errs, fmt.Errorf("audio: amplitude must be in [0,1], got %g", c.Audio.Amplitude))
		}
	}
	if c.Store.Keep < 0 {
		errs = append(errs, fmt.Errorf("store: keep must not be negative, got %d", c.Store.Keep))
	}
	if c.HUD.StreamFPS <= 0 {
		errs = append(errs, fmt.Errorf("hud: stream_fps must be positive, got %d", c.HUD.StreamFPS))
	}
	return errors.Join(errs...)
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
