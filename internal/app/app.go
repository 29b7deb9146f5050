// Package app runs the recognition loop: it polls the touch feed at a fixed
// cadence, steps the recognizer and fans recognized gestures out to the
// journal, plugins and any other subscriber.
package app

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hud"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/timeutil"
	"github.com/ayusman/mudra/internal/touch"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultTickInterval     = 17 * time.Millisecond
	DefaultSubscriberBuffer = 32
	DefaultPluginTimeout    = 5 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Feed         touch.Feed
	Gesture      gesture.Config
	TickInterval time.Duration
	Clock        timeutil.Clock

	// Store enables the event journal, persisted settings and action
	// bindings. It may be nil.
	Store *store.Store
	// JournalKeep bounds the journal; zero keeps every event.
	JournalKeep int

	// Plugins and PluginTimeout enable running bound actions. Plugins may be nil.
	Plugins       *plugin.Manager
	PluginTimeout time.Duration

	// Panel receives per-tick HUD state. A new Panel is created when nil.
	Panel *hud.Panel
}

// App is the recognition loop and its event fan-out.
type App struct {
	config   Config
	clock    timeutil.Clock
	panel    *hud.Panel
	executor *plugin.Executor

	// mu guards the recognizer and loop telemetry.
	mu         sync.Mutex
	recognizer *gesture.Recognizer
	fps        float64
	lastTick   time.Time

	enabled atomic.Bool
	dropped atomic.Uint64

	subMu  sync.RWMutex
	subs   map[int]chan gesture.Event
	nextID int

	running atomic.Bool
	workers sync.WaitGroup
}

// New creates an App. The recognition-enabled flag is restored from the
// store when one is configured.
func New(config Config) (*App, error) {
	if config.Feed == nil {
		return nil, errors.New("app: a touch feed is required")
	}
	if err := config.Gesture.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	if config.PluginTimeout <= 0 {
		config.PluginTimeout = DefaultPluginTimeout
	}
	if config.Panel == nil {
		config.Panel = hud.NewPanel(hud.DefaultClearAfter)
	}

	a := &App{
		config:     config,
		clock:      config.Clock,
		panel:      config.Panel,
		executor:   plugin.NewExecutor(config.PluginTimeout),
		recognizer: gesture.NewRecognizer(config.Gesture),
		subs:       make(map[int]chan gesture.Event),
	}

	enabled := true
	if config.Store != nil {
		v, err := config.Store.Settings().GetBool(store.SettingEnabled, true)
		if err != nil {
			Logf("Ignoring stored %s: %v", store.SettingEnabled, err)
		} else {
			enabled = v
		}
	}
	a.enabled.Store(enabled)
	a.panel.SetEnabled(enabled)

	return a, nil
}

// SetEnabled enables or disables recognition and persists the choice.
// While disabled the feed is still drained but no gestures are produced;
// re-enabling starts from a clean recognizer.
func (a *App) SetEnabled(enabled bool) error {
	if was := a.enabled.Swap(enabled); was == enabled {
		return nil
	}
	a.panel.SetEnabled(enabled)
	if enabled {
		a.Reset()
	}
	Logf("Gesture recognition enabled=%v", enabled)

	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
		return fmt.Errorf("save %s: %w", store.SettingEnabled, err)
	}
	return nil
}

// IsEnabled returns whether gesture recognition is currently enabled.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// Reset clears finger tracking, episodes and tap memory.
func (a *App) Reset() {
	a.mu.Lock()
	a.recognizer.Reset()
	a.mu.Unlock()
	a.panel.Clear()
}

// GestureConfig returns the recognizer thresholds in use.
func (a *App) GestureConfig() gesture.Config {
	return a.recognizer.Config()
}

// Panel returns the HUD state fed by the loop.
func (a *App) Panel() *hud.Panel {
	return a.panel
}

// FPS returns the smoothed tick rate.
func (a *App) FPS() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fps
}

// Dropped returns how many events were not delivered to a full subscriber.
func (a *App) Dropped() uint64 {
	return a.dropped.Load()
}

// Subscribe registers a new event receiver with the given buffer size
// (DefaultSubscriberBuffer when non-positive). Events that do not fit are
// dropped for that subscriber only.
func (a *App) Subscribe(buffer int) (int, <-chan gesture.Event) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan gesture.Event, buffer)

	a.subMu.Lock()
	defer a.subMu.Unlock()
	a.nextID++
	a.subs[a.nextID] = ch
	return a.nextID, ch
}

// Unsubscribe removes a receiver and closes its channel.
func (a *App) Unsubscribe(id int) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	if ch, ok := a.subs[id]; ok {
		delete(a.subs, id)
		close(ch)
	}
}

func (a *App) publish(ev gesture.Event) {
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	for id, ch := range a.subs {
		select {
		case ch <- ev:
		default:
			if n := a.dropped.Add(1); n == 1 || n%100 == 0 {
				Logf("Subscriber %d is full, dropped %s (%d dropped so far)", id, ev.Type, n)
			}
		}
	}
}
