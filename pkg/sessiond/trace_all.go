package sessiond

import (
	"net"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/reconcile"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// StartTraceAll implements §4.7's start_trace_all(session): fan out
// start_trace to every compatible app that already has an AppSession,
// never short-circuiting on a per-app error, then mark the logical
// session started so global_update starts it immediately on apps that
// register afterward.
func (s *Sessiond) StartTraceAll(sessionID session.ID) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}

	fanErr := reconcile.Fanout(s.registry, func(a *app.App) error {
		if _, ok := a.Sessions.Load(sessionID); !ok {
			return nil
		}
		return s.reconciler.StartTrace(logical, a)
	})
	logical.Started = true
	return fanErr
}

// StopTraceAll implements stop_trace_all(session) symmetrically.
func (s *Sessiond) StopTraceAll(sessionID session.ID) error {
	logical, err := s.session(sessionID)
	if err != nil {
		return err
	}

	fanErr := reconcile.Fanout(s.registry, func(a *app.App) error {
		if _, ok := a.Sessions.Load(sessionID); !ok {
			return nil
		}
		return s.reconciler.StopTrace(logical, a)
	})
	logical.Started = false
	return fanErr
}

// DestroyTraceAll implements destroy_trace_all(session): release every
// app's AppSession, then drop the logical session itself so later
// lookups behave as if it never existed. A session already gone is a
// no-op success, so destroying twice is idempotent.
func (s *Sessiond) DestroyTraceAll(sessionID session.ID) error {
	logical, err := s.session(sessionID)
	if err != nil {
		if wire.IsNoEntry(err) {
			return nil
		}
		return err
	}

	fanErr := reconcile.Fanout(s.registry, func(a *app.App) error {
		return s.reconciler.DestroyTrace(logical, a)
	})
	delete(s.sessions.byID, sessionID)
	return fanErr
}

// GlobalUpdate implements §4.6's global_update(app): bring a single
// newly (re)validated app up to date with every logical session known
// to the daemon. sock resolves the app the way the registration
// handshake left it installed.
func (s *Sessiond) GlobalUpdate(sock net.Conn) error {
	a, ok := s.registry.FindBySock(sock)
	if !ok {
		return nil
	}
	unpin := a.Pin()
	defer unpin()

	return s.reconciler.GlobalUpdate(s.allSessions(), a)
}
