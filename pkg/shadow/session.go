// Package shadow holds the per-(app, session) replica model: the
// daemon-side intent that the reconciler (C6) keeps in sync with each
// application's own tracer. spec.md §9 calls the shadow "the intent"
// and the tracer handles "the reality."
package shadow

import (
	"fmt"
	"time"

	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/google/uuid"
)

// Clock is injectable so tests can pin the timestamp embedded in an
// AppSession's output path, per spec.md §9's reproducibility note.
type Clock func() time.Time

// AppSession is one application's replica of a logical session.
type AppSession struct {
	LogicalID  session.ID
	UID, GID   uint32
	UUID       string
	OutputPath string

	// Handle is -1 until create_session succeeds on the tracer;
	// spec.md §3's invariant is Started implies Handle >= 0.
	Handle  tracer.Handle
	Started bool

	Metadata *AppChannel
	Channels map[string]*AppChannel

	// NewlyCreated is set by create_app_session when this instance was
	// just allocated, distinguishing "found existing" from "created"
	// for callers that only need to do extra work in the latter case.
	NewlyCreated bool
}

// NewAppSession builds the app-local replica shell for a logical
// session. appName and pid feed the per-app trace subdirectory name
// spec.md §6 fixes as "<app-name>-<pid>-<YYYYmmdd-HHMMSS>/"; clock is
// called once, at construction.
func NewAppSession(logical *session.Session, appName string, pid int, now Clock) *AppSession {
	if now == nil {
		now = time.Now
	}
	ts := now().Format("20060102-150405")
	return &AppSession{
		LogicalID:    logical.ID,
		UID:          logical.UID,
		GID:          logical.GID,
		UUID:         uuid.NewString(),
		OutputPath:   fmt.Sprintf("%s-%d-%s/", appName, pid, ts),
		Handle:       tracer.NoHandle,
		Channels:     make(map[string]*AppChannel),
		NewlyCreated: true,
	}
}
