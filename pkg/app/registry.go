package app

import (
	"fmt"
	"net"

	"github.com/ardeshir/lttng-tools/pkg/consumerd"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/synq"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"go.uber.org/zap"
)

// Registry is the two-index concurrent registry of registered
// applications (§3, §4.4). The pid index replaces on insert, since
// pids are recycled by the OS; the socket index is insert-unique,
// since socket identity is stable until the daemon closes it.
type Registry struct {
	logger        *zap.Logger
	byPid         *synq.Map[int32, *App]
	bySock        *synq.Map[net.Conn, *App]
	fdBudget      *fdbudget.Budget
	protocolMajor uint32
}

func NewRegistry(logger *zap.Logger, fdBudget *fdbudget.Budget, protocolMajor uint32) *Registry {
	return &Registry{
		logger:        logger,
		byPid:         synq.NewMap[int32, *App](),
		bySock:        synq.NewMap[net.Conn, *App](),
		fdBudget:      fdBudget,
		protocolMajor: protocolMajor,
	}
}

// Register validates and installs a newly-accepted application
// socket, per spec.md §4.4. The caller must have already reserved one
// APPS-class FD for sock before calling Register; on any validation
// failure Register releases that reservation and closes sock itself.
func (r *Registry) Register(msg wire.RegisterMsg, sock net.Conn, consumers *consumerd.Sockets) (*App, error) {
	if _, ok := consumers.ForBitness(msg.Bits); !ok {
		sock.Close()
		r.fdBudget.Release(1)
		return nil, fmt.Errorf("%w: no consumer configured for bitness %d", wire.ErrInvalid, msg.Bits)
	}
	if msg.Major != r.protocolMajor {
		sock.Close()
		r.fdBudget.Release(1)
		return nil, fmt.Errorf("%w: protocol major %d unsupported (daemon supports %d)", wire.ErrInvalid, msg.Major, r.protocolMajor)
	}

	a := newApp(r.logger, appIdentity{
		Name:  msg.NameString(),
		Pid:   msg.Pid,
		Ppid:  msg.Ppid,
		Uid:   msg.Uid,
		Gid:   msg.Gid,
		Bits:  msg.Bits,
		Major: msg.Major,
		Minor: msg.Minor,
	}, sock)

	r.byPid.Store(a.Pid, a) // replace-on-insert: pids recycle
	if _, loaded := r.bySock.LoadOrInsert(sock, a); loaded {
		r.logger.Error("socket already present in registry", zap.Int32("pid", a.Pid))
	}

	r.logger.Info("application registered", zap.Int32("pid", a.Pid), zap.String("name", a.Name), zap.Uint32("bits", a.Bits))
	return a, nil
}

// MarkCompatible records the outcome of validate_version (§4.7):
// compatible apps participate in fan-out, incompatible ones are
// silently skipped (§7 item 3) until they re-register.
func (r *Registry) MarkCompatible(a *App, compatible bool) {
	a.Compatible = compatible
}

// FindByPid resolves the current App for pid, if any.
func (r *Registry) FindByPid(pid int32) (*App, bool) {
	return r.byPid.Load(pid)
}

// FindBySock resolves the App owning sock, if any.
func (r *Registry) FindBySock(sock net.Conn) (*App, bool) {
	return r.bySock.Load(sock)
}

// Iter visits every currently-registered App. f returning false stops
// the iteration early. Per spec.md §4.6, visitation order is
// unspecified and not observable.
func (r *Registry) Iter(f func(*App) bool) {
	r.bySock.Iter(func(_ net.Conn, a *App) bool {
		return f(a)
	})
}

// Unregister performs the first three steps of the teardown ordering
// in spec.md §5: remove from the socket index (must succeed), remove
// from the pid index (tolerating absence, since a later registration
// with the same pid may have already evicted this App), and drain
// this App's sessions into its teardown queue. The caller is
// responsible for invoking DeferredDestroy afterward, per step 4
// ("schedule deferred destroy").
func (r *Registry) Unregister(sock net.Conn) (*App, error) {
	a, ok := r.bySock.Load(sock)
	if !ok {
		return nil, fmt.Errorf("app: unregister: socket not found in registry")
	}
	r.bySock.Delete(sock)

	if cur, ok := r.byPid.Load(a.Pid); ok && cur == a {
		r.byPid.Delete(a.Pid)
	}

	for _, as := range a.Sessions.Copy() {
		_ = a.teardown.Push(as)
	}
	a.Sessions.Reset()

	return a, nil
}

// DeferredDestroy implements spec.md §5 steps 5-8: wait for any
// operation that already pinned this App to finish (the grace
// period), free every session left on the teardown queue using the
// still-open socket, close the socket, then release the one APPS FD
// charged at registration. Closing before the grace period completes
// would let a concurrent reader resolve the socket to a resurrected
// App, which is the correctness property this ordering protects.
func (r *Registry) DeferredDestroy(a *App, freeSession func(*App, *shadow.AppSession)) {
	a.wg.Wait()

	for {
		v := a.teardown.Pop()
		if v == nil {
			break
		}
		as, ok := v.(*shadow.AppSession)
		if !ok {
			continue
		}
		if freeSession != nil {
			freeSession(a, as)
		}
	}

	if err := a.Sock.Close(); err != nil {
		r.logger.Debug("closing app socket", zap.Int32("pid", a.Pid), zap.Error(err))
	}
	r.fdBudget.Release(1)
}
