package reconcile

import (
	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// CreateEvent implements create_event(channel, app, event) (§4.5): the
// event's composite identity is located or allocated on the
// AppChannel's index, created on the tracer, given its filter
// bytecode if any, and disabled on the tracer immediately if the
// logical event is itself disabled. Finding an event already shadow-
// copied under this composite key fails with already-exists, matching
// AddContext; a tracer rejecting the event as already-existing is
// tolerated instead, since that case reflects the tracer's own state
// rather than a duplicate call against this daemon's index.
func (r *Reconciler) CreateEvent(ch *shadow.AppChannel, logical *session.Event, a *app.App) (*shadow.AppEvent, error) {
	ev, allocated := ch.ShadowEvent(logical)
	if !allocated {
		return ev, wire.ErrAlreadyExists
	}
	if err := r.materializeEvent(ch, ev, a); err != nil {
		return nil, err
	}
	return ev, nil
}

// materializeEvent implements the bulk-update half of §4.6's
// global_update: given an AppEvent that is already shadow-copied,
// whether by CreateEvent's own allocation or by NewAppChannel's eager
// copy of every logical event, send it to the tracer if it has not
// been sent yet. Unlike CreateEvent it never fails on an event already
// present in the shadow index, mirroring the original's
// create_ust_event (used from ust_app_global_update), which is
// distinct from create_ust_app_event's single-event-add existence
// check for exactly this reason.
func (r *Reconciler) materializeEvent(ch *shadow.AppChannel, ev *shadow.AppEvent, a *app.App) error {
	if ev.Handle >= 0 {
		return nil
	}

	handle, err := a.Tracer.CreateEvent(ch.TracerHandle, ev.Attr)
	if err != nil {
		if wire.IsAlreadyExists(err) {
			return nil
		}
		return err
	}
	ev.Handle = handle

	if len(ev.Filter) > 0 {
		if err := wire.ValidateFilterBytecode(ev.Filter); err != nil {
			return err
		}
		if err := a.Tracer.SetFilter(ev.Handle, ev.Filter); err != nil && !skip(err) {
			return err
		}
	}

	if !ev.Enabled {
		if err := a.Tracer.Disable(ev.Handle); err != nil && !skip(err) {
			return err
		}
	}

	return nil
}

// EnableEvent and DisableEvent toggle a previously created event's
// tracer-side enablement, tolerating the idempotent classes (§4.6).
func (r *Reconciler) EnableEvent(ev *shadow.AppEvent, a *app.App) error {
	if ev.Handle < 0 {
		return nil
	}
	if err := a.Tracer.Enable(ev.Handle); err != nil && !skip(err) {
		return err
	}
	ev.Enabled = true
	return nil
}

func (r *Reconciler) DisableEvent(ev *shadow.AppEvent, a *app.App) error {
	if ev.Handle < 0 {
		return nil
	}
	if err := a.Tracer.Disable(ev.Handle); err != nil && !skip(err) {
		return err
	}
	ev.Enabled = false
	return nil
}

// DisableAllEvents implements disable_all_events_global (§ Supplemented
// features): disables every event shadow-copied onto ch, tolerating
// per-event peer death without aborting the sweep over the rest.
func (r *Reconciler) DisableAllEvents(ch *shadow.AppChannel, a *app.App) error {
	for _, ev := range ch.Events {
		if err := r.DisableEvent(ev, a); err != nil {
			if skip(err) {
				continue
			}
			return err
		}
	}
	return nil
}
