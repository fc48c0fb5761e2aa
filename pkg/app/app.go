// Package app implements the registered-application registry
// described in spec.md §3-§5 (C4): the App entity, and the two
// concurrent indexes (by pid, by socket) that resolve an application
// for every fan-out and registration operation.
package app

import (
	"context"
	"net"
	"sync"

	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/synq"
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"go.uber.org/zap"
)

// App is one registered application.
type App struct {
	Pid, Ppid  int32
	Uid, Gid   uint32
	Name       string
	Bits       uint32
	ProtoMajor uint32
	ProtoMinor uint32
	Sock       net.Conn

	// Tracer is the transport client (C1) bound to Sock, used by the
	// reconciler for every tracer-side call against this app.
	Tracer *tracer.Client

	// Compatible is set once, at registration, from the bitness and
	// protocol-major checks; it never changes for this App's lifetime.
	Compatible bool

	// Sessions is this app's session index, owned exclusively by this
	// App (§3 Ownership).
	Sessions *synq.Map[session.ID, *shadow.AppSession]

	// teardown holds sessions drained from Sessions on unregister,
	// pending deferred destruction (§4.4, §5).
	teardown *synq.Queue

	// wg is the pin/unpin grace-period primitive: Pin adds, the
	// returned unpin func marks done, and deferred destruction waits
	// for it to drain to zero before closing Sock. This realizes the
	// "reader-writer lock guarding the registry plus a teardown queue
	// drained only after writers observe no active readers" discipline
	// spec.md §9 names as an acceptable grace-period implementation.
	wg sync.WaitGroup
}

func newApp(logger *zap.Logger, msg appIdentity, sock net.Conn) *App {
	return &App{
		Pid:        msg.Pid,
		Ppid:       msg.Ppid,
		Uid:        msg.Uid,
		Gid:        msg.Gid,
		Name:       msg.Name,
		Bits:       msg.Bits,
		ProtoMajor: msg.Major,
		ProtoMinor: msg.Minor,
		Sock:       sock,
		Tracer:     tracer.New(logger, sock, int(msg.Pid)),
		Compatible: false,
		Sessions:   synq.NewMap[session.ID, *shadow.AppSession](),
		teardown:   synq.NewQueue(context.Background()),
	}
}

// appIdentity is the subset of wire.RegisterMsg the registry needs,
// kept separate from the wire type so this package does not import
// pkg/wire purely for a struct shape.
type appIdentity struct {
	Name         string
	Pid, Ppid    int32
	Uid, Gid     uint32
	Bits         uint32
	Major, Minor uint32
}

// Pin marks the start of an operation that resolved this App through
// the registry and is about to suspend on it (a transport call, a
// consumer RPC, a directory creation). The returned func must be
// called exactly once when the operation completes.
func (a *App) Pin() func() {
	a.wg.Add(1)
	return a.wg.Done
}
