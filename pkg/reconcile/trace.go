package reconcile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"go.uber.org/zap"
)

// mkdirOwned and chownPath are package-level so tests can swap them
// without touching the real filesystem, matching pkg/precheck's
// DI-able stat/chown vars.
var (
	mkdirOwned = os.MkdirAll
	chownPath  = os.Chown
)

// outputDir resolves the on-disk directory for an AppSession, per
// spec.md §6: trace path + consumer subdir + the per-app output path
// fixed at session-shadow-copy time.
func (r *Reconciler) outputDir(as *shadow.AppSession) string {
	return filepath.Join(r.consumerPaths.TracePath, r.consumerPaths.SubDir, as.OutputPath)
}

// StartTrace implements start_trace(session, app) (§4.6): locate or
// create the app's AppSession, create the session's trace directory
// owned by the session's uid/gid (tolerating its prior existence),
// ensure the metadata channel exists, start the session on the tracer,
// and wait for quiescence. Benign peer death at any step is non-fatal
// to the caller's fan-out: the app is simply skipped.
func (r *Reconciler) StartTrace(logical *session.Session, a *app.App) error {
	as, err := r.CreateAppSession(logical, a)
	if err != nil {
		return err
	}

	dir := r.outputDir(as)
	if err := mkdirOwned(dir, 0770); err != nil {
		return fmt.Errorf("reconcile: creating trace directory %s: %w", dir, err)
	}
	if err := chownPath(dir, int(as.UID), int(as.GID)); err != nil {
		r.logger.Debug("chown trace directory failed", zap.String("dir", dir), zap.Error(err))
	}

	if _, err := r.ensureMetadataChannel(as, a); err != nil && !skip(err) {
		return err
	}

	if err := a.Tracer.StartSession(as.Handle); err != nil {
		if skip(err) {
			return nil
		}
		return err
	}
	if err := a.Tracer.WaitQuiescent(); err != nil && !skip(err) {
		return err
	}

	as.Started = true
	return nil
}

// StopTrace implements stop_trace(session, app) (§4.6): stop the
// session on the tracer, wait for quiescence, then flush every data
// channel's buffer and finally the metadata channel's, so every
// already-written record becomes visible to the consumer before the
// caller considers the session stopped.
func (r *Reconciler) StopTrace(logical *session.Session, a *app.App) error {
	as, err := appSessionOrErr(a, logical.ID)
	if err != nil {
		return err
	}
	if !as.Started {
		return fmt.Errorf("reconcile: stop_trace: session %d never started on app %d", logical.ID, a.Pid)
	}

	if err := a.Tracer.StopSession(as.Handle); err != nil {
		if skip(err) {
			return nil
		}
		return err
	}
	if err := a.Tracer.WaitQuiescent(); err != nil && !skip(err) {
		return err
	}

	for _, ch := range as.Channels {
		if ch.TracerHandle < 0 {
			continue
		}
		if err := a.Tracer.FlushBuffer(ch.TracerHandle); err != nil && !skip(err) {
			return err
		}
	}
	if as.Metadata != nil && as.Metadata.TracerHandle >= 0 {
		if err := a.Tracer.FlushBuffer(as.Metadata.TracerHandle); err != nil && !skip(err) {
			return err
		}
	}

	as.Started = false
	return nil
}
