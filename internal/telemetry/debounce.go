package telemetry

import (
	"sync"
	"time"
)

// Debounce returns a trigger that runs fn once wait has passed without
// another trigger, and a stop func that cancels any pending run.
func Debounce(fn func(), wait time.Duration) (trigger func(), stop func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(wait, fn)
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}
	return trigger, stop
}
