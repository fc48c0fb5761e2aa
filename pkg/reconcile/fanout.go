package reconcile

import (
	"sync"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/sourcegraph/conc"
)

// Fanout implements the registry-iteration pattern §4.6/§4.7 describe
// for every global_* operation: visit each compatible application
// concurrently, pin it for the duration of fn, and classify the
// result. Apps run independently rather than one-at-a-time behind a
// lock, so one slow peer never serializes the rest of the fan-out —
// the same tradeoff qtap's process manager makes when it fans a
// started/replaced notification out to every observer with a
// conc.WaitGroup. An out-of-memory error is reported as this
// fan-out's abort status, since it signals the daemon itself is in
// trouble, not just one peer; it cannot un-send commands already
// dispatched to other apps, so "abort" here means the caller treats
// the whole operation as failed, not that later apps are skipped.
// Every other error is a per-app skip collapsed into the fan-out's
// last per-app status, per the decision that global operations report
// one summary status rather than a per-app breakdown. Incompatible
// apps (never passed validate_version, or failed it) are silently
// excluded, per §7 item 3.
func Fanout(registry *app.Registry, fn func(*app.App) error) error {
	var mu sync.Mutex
	var lastErr, aborted error

	var wg conc.WaitGroup
	registry.Iter(func(a *app.App) bool {
		if !a.Compatible {
			return true
		}
		wg.Go(func() {
			unpin := a.Pin()
			err := fn(a)
			unpin()

			if err == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if fatal(err) {
				aborted = err
			} else {
				lastErr = err
			}
		})
		return true
	})
	wg.Wait()

	if aborted != nil {
		return aborted
	}
	return lastErr
}
