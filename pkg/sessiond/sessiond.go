// Package sessiond is the public API facade (C7) the command layer
// calls: every operation spec.md §4.7 names bottoms out here, either
// resolving a single app and delegating straight to pkg/reconcile, or
// fanning a logical-session mutation out across every compatible app
// via pkg/reconcile.Fanout.
package sessiond

import (
	"fmt"
	"net"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/config"
	"github.com/ardeshir/lttng-tools/pkg/consumerd"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/reconcile"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const tracepointCacheSize = 256

// Sessiond owns C7: the logical session store, the app registry, and
// the reconciler that drives every logical mutation onto each app's
// tracer and the consumer.
type Sessiond struct {
	logger        *zap.Logger
	registry      *app.Registry
	consumers     *consumerd.Sockets
	fdBudget      *fdbudget.Budget
	reconciler    *reconcile.Reconciler
	protocolMajor uint32

	sessions *synqSessions

	tracepointCache *lru.Cache
	fieldCache      *lru.Cache
}

// synqSessions is the logical session store: sessions are created and
// named by the command layer spec.md places out of scope, but every
// fan-out operation below needs to resolve and enumerate them.
type synqSessions struct {
	byID map[session.ID]*session.Session
}

func newSynqSessions() *synqSessions {
	return &synqSessions{byID: make(map[session.ID]*session.Session)}
}

func New(
	logger *zap.Logger,
	cfg *config.Config,
	registry *app.Registry,
	consumers *consumerd.Sockets,
	fdBudget *fdbudget.Budget,
) (*Sessiond, error) {
	tpCache, err := lru.New(tracepointCacheSize)
	if err != nil {
		return nil, fmt.Errorf("sessiond: tracepoint cache: %w", err)
	}
	fieldCache, err := lru.New(tracepointCacheSize)
	if err != nil {
		return nil, fmt.Errorf("sessiond: field cache: %w", err)
	}

	return &Sessiond{
		logger:          logger,
		registry:        registry,
		consumers:       consumers,
		fdBudget:        fdBudget,
		protocolMajor:   cfg.Protocol.Major,
		sessions:        newSynqSessions(),
		reconciler: reconcile.New(logger, registry, consumers, fdBudget,
			cfg.Channel, cfg.Metadata, cfg.Consumer),
		tracepointCache: tpCache,
		fieldCache:      fieldCache,
	}, nil
}

// AddSession installs a logical session created by the command layer
// so later global_* operations can resolve it by id.
func (s *Sessiond) AddSession(sess *session.Session) {
	s.sessions.byID[sess.ID] = sess
}

func (s *Sessiond) session(id session.ID) (*session.Session, error) {
	sess, ok := s.sessions.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %d", wire.ErrNoEntry, id)
	}
	return sess, nil
}

func (s *Sessiond) allSessions() []*session.Session {
	out := make([]*session.Session, 0, len(s.sessions.byID))
	for _, sess := range s.sessions.byID {
		out = append(out, sess)
	}
	return out
}

// Register validates and installs a newly-accepted application
// socket (§4.7's register(msg, sock)). The caller must have already
// reserved one APPS FD before calling, per pkg/app.Registry.Register's
// contract.
func (s *Sessiond) Register(msg wire.RegisterMsg, sock net.Conn) (*app.App, error) {
	return s.registry.Register(msg, sock, s.consumers)
}

// Unregister implements §4.7's unregister(sock) / §5's teardown
// ordering: remove the app from both indexes, then release every
// tracer-side object it owned once the grace period completes.
func (s *Sessiond) Unregister(sock net.Conn) error {
	a, err := s.registry.Unregister(sock)
	if err != nil {
		return err
	}
	s.registry.DeferredDestroy(a, func(owner *app.App, as *shadow.AppSession) {
		s.reconciler.ReleaseAppSession(owner, as)
	})
	return nil
}

// ValidateVersion implements §4.7's validate_version(sock): negotiate
// the app's protocol version and record whether it is compatible with
// this daemon, independent of the registration event that created it.
func (s *Sessiond) ValidateVersion(a *app.App) (major, minor uint32, compatible bool, err error) {
	unpin := a.Pin()
	defer unpin()

	major, minor, err = a.Tracer.Version()
	if err != nil {
		return 0, 0, false, err
	}
	compatible = major == s.protocolMajor
	s.registry.MarkCompatible(a, compatible)
	return major, minor, compatible, nil
}
