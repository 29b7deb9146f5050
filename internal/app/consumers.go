package app

import (
	"context"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

const (
	journalBuffer = 256
	pruneEvery    = 500
)

// runJournal appends every event to the store. It exits when events closes.
func (a *App) runJournal(events <-chan gesture.Event) {
	defer a.workers.Done()

	appended := 0
	for ev := range events {
		if _, err := a.config.Store.Events().Append(ev); err != nil {
			Logf("Journal: %v", err)
			continue
		}

		appended++
		if a.config.JournalKeep > 0 && appended%pruneEvery == 0 {
			if n, err := a.config.Store.Events().Prune(a.config.JournalKeep); err != nil {
				Logf("Journal prune: %v", err)
			} else if n > 0 {
				Logf("Journal pruned %d old events", n)
			}
		}
	}
}

// runDispatcher starts the bound plugin actions for each event. Actions run
// on their own goroutines so a slow plugin never delays the next event.
func (a *App) runDispatcher(ctx context.Context, events <-chan gesture.Event) {
	defer a.workers.Done()

	for ev := range events {
		actions, err := a.config.Store.Actions().ListByGestureType(ev.Type)
		if err != nil {
			Logf("Looking up actions for %s: %v", ev.Type, err)
			continue
		}

		for _, action := range actions {
			a.workers.Add(1)
			go func(action *store.Action) {
				defer a.workers.Done()
				if err := a.executeAction(ctx, action, ev); err != nil {
					Logf("Action %s/%s for %s failed: %v", action.PluginName, action.ActionName, ev.Type, err)
				}
			}(action)
		}
	}
}

// executeAction runs one bound plugin action for ev.
func (a *App) executeAction(ctx context.Context, action *store.Action, ev gesture.Event) error {
	p, err := a.config.Plugins.Get(action.PluginName)
	if err != nil {
		return err
	}
	if !p.Manifest.SupportsAction(action.ActionName) {
		return fmt.Errorf("plugin %s does not support action %q", p.Manifest.Name, action.ActionName)
	}

	resp, err := a.executor.Execute(ctx, p, plugin.NewRequest(action.ActionName, ev, action.Config))
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error)
	}

	Logf("Action triggered for gesture %s: %s/%s", ev.Type, action.PluginName, action.ActionName)
	return nil
}
