package sessiond

import (
	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/reconcile"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// CreateChannelGlobal implements §4.7's create_channel_global(session,
// channel): the channel is installed on the logical session first (so
// apps that register afterward pick it up via global_update), then
// fanned out to every currently compatible app. Idempotent per §4.7:
// an app on which the channel already exists is a no-op success.
func (s *Sessiond) CreateChannelGlobal(sessionID session.ID, ch *session.Channel) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if _, exists := logical.Channels[ch.Name]; !exists {
		logical.Channels[ch.Name] = ch
	}

	return reconcile.Fanout(s.registry, func(a *app.App) error {
		as, err := s.reconciler.CreateAppSession(logical, a)
		if err != nil {
			return err
		}
		_, err = s.reconciler.CreateChannel(as, ch, a)
		return err
	})
}

// EnableChannelGlobal and DisableChannelGlobal toggle a channel's
// tracer-side enablement on every compatible app that has shadow-
// copied it, and record the new logical state for apps that register
// later.
func (s *Sessiond) EnableChannelGlobal(sessionID session.ID, channelName string) error {
	return s.setChannelEnabled(sessionID, channelName, true)
}

func (s *Sessiond) DisableChannelGlobal(sessionID session.ID, channelName string) error {
	return s.setChannelEnabled(sessionID, channelName, false)
}

func (s *Sessiond) setChannelEnabled(sessionID session.ID, channelName string, enabled bool) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	lc, ok := logical.Channels[channelName]
	if !ok {
		return wire.ErrNoEntry
	}
	lc.Enabled = enabled

	return reconcile.Fanout(s.registry, func(a *app.App) error {
		as, ok := a.Sessions.Load(sessionID)
		if !ok {
			return nil
		}
		ch, ok := as.Channels[channelName]
		if !ok || ch.TracerHandle < 0 {
			return nil
		}
		ch.Enabled = enabled
		if enabled {
			return a.Tracer.Enable(ch.TracerHandle)
		}
		return a.Tracer.Disable(ch.TracerHandle)
	})
}

// CreateEventGlobal implements create_event_global(session, channel,
// event): install the event on the logical channel, then fan out.
func (s *Sessiond) CreateEventGlobal(sessionID session.ID, channelName string, ev *session.Event) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	lc, ok := logical.Channels[channelName]
	if !ok {
		return wire.ErrNoEntry
	}
	if _, exists := lc.Events[ev.Key]; !exists {
		lc.Events[ev.Key] = ev
	}

	return reconcile.Fanout(s.registry, func(a *app.App) error {
		as, ok := a.Sessions.Load(sessionID)
		if !ok {
			return nil
		}
		ch, ok := as.Channels[channelName]
		if !ok {
			return nil
		}
		_, err := s.reconciler.CreateEvent(ch, ev, a)
		return err
	})
}

// EnableEventGlobal and DisableEventGlobal toggle a previously created
// event on every compatible app carrying it.
func (s *Sessiond) EnableEventGlobal(sessionID session.ID, channelName string, key session.EventKey) error {
	return s.setEventEnabled(sessionID, channelName, key, true)
}

func (s *Sessiond) DisableEventGlobal(sessionID session.ID, channelName string, key session.EventKey) error {
	return s.setEventEnabled(sessionID, channelName, key, false)
}

func (s *Sessiond) setEventEnabled(sessionID session.ID, channelName string, key session.EventKey, enabled bool) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	lc, ok := logical.Channels[channelName]
	if !ok {
		return wire.ErrNoEntry
	}
	le, ok := lc.Events[key]
	if !ok {
		return wire.ErrNoEntry
	}
	le.Enabled = enabled

	return reconcile.Fanout(s.registry, func(a *app.App) error {
		as, ok := a.Sessions.Load(sessionID)
		if !ok {
			return nil
		}
		ch, ok := as.Channels[channelName]
		if !ok {
			return nil
		}
		ev, ok := ch.Events[key]
		if !ok {
			return nil
		}
		if enabled {
			return s.reconciler.EnableEvent(ev, a)
		}
		return s.reconciler.DisableEvent(ev, a)
	})
}

// DisableAllEventsGlobal implements disable_all_events_global(session,
// channel): disable every event shadow-copied onto channelName on
// every compatible app, and mark every logical event disabled so
// later registrants pick up the same state.
func (s *Sessiond) DisableAllEventsGlobal(sessionID session.ID, channelName string) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	lc, ok := logical.Channels[channelName]
	if !ok {
		return wire.ErrNoEntry
	}
	for _, le := range lc.Events {
		le.Enabled = false
	}

	return reconcile.Fanout(s.registry, func(a *app.App) error {
		as, ok := a.Sessions.Load(sessionID)
		if !ok {
			return nil
		}
		ch, ok := as.Channels[channelName]
		if !ok {
			return nil
		}
		return s.reconciler.DisableAllEvents(ch, a)
	})
}

// AddCtxChannelGlobal implements add_ctx_channel_global(session,
// channel, kind). Contexts attach to channels only; there is no
// per-event add-context operation.
func (s *Sessiond) AddCtxChannelGlobal(sessionID session.ID, channelName string, kind wire.ContextKind) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	lc, ok := logical.Channels[channelName]
	if !ok {
		return wire.ErrNoEntry
	}
	if _, exists := lc.Contexts[kind]; !exists {
		lc.Contexts[kind] = &session.Context{Kind: kind}
	}

	return reconcile.Fanout(s.registry, func(a *app.App) error {
		as, ok := a.Sessions.Load(sessionID)
		if !ok {
			return nil
		}
		ch, ok := as.Channels[channelName]
		if !ok {
			return nil
		}
		_, err := s.reconciler.AddContext(ch, kind, a)
		return err
	})
}

// EnableEventPid and DisableEventPid implement §4.7's single-app
// variants: resolve the one app by pid and toggle directly, without
// going through Fanout's multi-app classification.
func (s *Sessiond) EnableEventPid(sessionID session.ID, channelName string, key session.EventKey, pid int32) error {
	return s.setEventEnabledPid(sessionID, channelName, key, pid, true)
}

func (s *Sessiond) DisableEventPid(sessionID session.ID, channelName string, key session.EventKey, pid int32) error {
	return s.setEventEnabledPid(sessionID, channelName, key, pid, false)
}

func (s *Sessiond) setEventEnabledPid(sessionID session.ID, channelName string, key session.EventKey, pid int32, enabled bool) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}
	a, ok := s.registry.FindByPid(pid)
	if !ok || !a.Compatible {
		return wire.ErrNoEntry
	}
	unpin := a.Pin()
	defer unpin()

	as, ok := a.Sessions.Load(logical.ID)
	if !ok {
		return wire.ErrNoEntry
	}
	ch, ok := as.Channels[channelName]
	if !ok {
		return wire.ErrNoEntry
	}
	ev, ok := ch.Events[key]
	if !ok {
		return wire.ErrNoEntry
	}

	if enabled {
		return s.reconciler.EnableEvent(ev, a)
	}
	return s.reconciler.DisableEvent(ev, a)
}
