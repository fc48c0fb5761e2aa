package reconcile

import (
	"fmt"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"go.uber.org/zap"
)

// CreateAppSession implements spec.md §4.6's create_app_session:
// locate the AppSession by logical session id, or allocate and
// shadow-copy one; if its tracer handle is still unset, create it on
// the transport.
func (r *Reconciler) CreateAppSession(logical *session.Session, a *app.App) (*shadow.AppSession, error) {
	if as, ok := a.Sessions.Load(logical.ID); ok {
		return as, nil
	}

	as := shadow.NewAppSession(logical, a.Name, int(a.Pid), r.clock)
	as.Handle = -1

	handle, err := a.Tracer.CreateSession()
	if err != nil {
		// On benign peer-death or any other tracer failure the fresh
		// AppSession never existed as far as the rest of the system
		// is concerned; any non-OOM failure is translated to the
		// benign-peer-death code so callers treat it as a per-app
		// skip rather than a distinct failure mode (§4.6).
		if wire.IsOutOfMemory(err) {
			return nil, err
		}
		r.logger.Debug("create_session failed, treating as peer disconnected",
			zap.Int32("pid", a.Pid), zap.Error(err))
		return nil, wire.ErrBrokenPipe
	}

	as.Handle = handle
	a.Sessions.Store(logical.ID, as)
	return as, nil
}

// DestroyTrace implements destroy_trace(session, app): remove the
// AppSession from the app's session index (tolerating its absence),
// release every owned entity, release the session handle on the
// transport, then wait for quiescence.
func (r *Reconciler) DestroyTrace(logical *session.Session, a *app.App) error {
	as, ok := a.Sessions.Load(logical.ID)
	if !ok {
		return nil // already gone: idempotent per §4.7
	}
	a.Sessions.Delete(logical.ID)

	r.releaseAppSession(a, as)

	if as.Handle >= 0 {
		if err := a.Tracer.ReleaseSessionHandle(as.Handle); err != nil && !skip(err) {
			return err
		}
	}
	if err := a.Tracer.WaitQuiescent(); err != nil && !skip(err) {
		return err
	}
	return nil
}

// ReleaseAppSession releases every tracer object an AppSession owns.
// It is the freeSession callback pkg/sessiond's Unregister passes to
// the registry's DeferredDestroy, invoked while an app's socket is
// still open (§5 step 6), so it must tolerate a socket that dies
// mid-release.
func (r *Reconciler) ReleaseAppSession(a *app.App, as *shadow.AppSession) {
	r.releaseAppSession(a, as)
}

func (r *Reconciler) releaseAppSession(a *app.App, as *shadow.AppSession) {
	for _, ch := range as.Channels {
		r.releaseAppChannel(a, ch)
	}
	if as.Metadata != nil {
		r.releaseAppChannel(a, as.Metadata)
	}
}

func (r *Reconciler) releaseAppChannel(a *app.App, ch *shadow.AppChannel) {
	for _, ev := range ch.Events {
		if ev.Handle >= 0 {
			_ = a.Tracer.ReleaseObject(ev.Handle)
		}
	}
	for _, ctx := range ch.Contexts {
		if ctx.Handle >= 0 {
			_ = a.Tracer.ReleaseObject(ctx.Handle)
		}
	}
	if ch.TracerHandle >= 0 {
		_ = a.Tracer.ReleaseObject(ch.TracerHandle)
	}

	if ch.ExpectedStreamCount > 0 || ch.TracerHandle >= 0 {
		r.fdBudget.Release(fdbudget.ChannelFDs(ch.ExpectedStreamCount))
	}
}

// appSessionOrErr looks up the app's existing AppSession for id and
// reports a uniform error when there is none.
func appSessionOrErr(a *app.App, id session.ID) (*shadow.AppSession, error) {
	as, ok := a.Sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("reconcile: no app session for logical session %d", id)
	}
	return as, nil
}
