package reconcile

import (
	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/session"
)

// GlobalUpdate implements global_update(app) (§4.6): a newly
// registered, compatible application must be brought up to date with
// every logical session already known to the daemon, as if each of
// start_trace's prerequisite create calls had been issued against it
// individually. A logical session already marked Started is started
// on this app too, so a late-joining application picks up an
// in-progress trace rather than waiting for the next explicit
// start_trace_all.
func (r *Reconciler) GlobalUpdate(sessions []*session.Session, a *app.App) error {
	for _, logical := range sessions {
		if err := r.globalUpdateOne(logical, a); err != nil {
			if skip(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (r *Reconciler) globalUpdateOne(logical *session.Session, a *app.App) error {
	as, err := r.CreateAppSession(logical, a)
	if err != nil {
		return err
	}

	for _, lc := range logical.Channels {
		ch, err := r.CreateChannel(as, lc, a)
		if err != nil {
			if skip(err) {
				continue
			}
			return err
		}
		for kind := range lc.Contexts {
			if _, err := r.AddContext(ch, kind, a); err != nil && !skip(err) {
				return err
			}
		}
		for _, le := range lc.Events {
			// NewAppChannel already shadow-copied every logical event
			// onto ch; ShadowEvent locates that entry (or allocates it,
			// for an event added after the channel was first shadow-
			// copied) without CreateEvent's already-exists check, which
			// exists for the single-event-add path, not this bulk one.
			ev, _ := ch.ShadowEvent(le)
			if err := r.materializeEvent(ch, ev, a); err != nil && !skip(err) {
				return err
			}
		}
	}

	if logical.Started && !as.Started {
		if err := r.StartTrace(logical, a); err != nil && !skip(err) {
			return err
		}
	}
	return nil
}
