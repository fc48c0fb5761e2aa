// Package session holds the logical, user-facing tracing
// configuration: sessions, channels, events, and contexts as the
// command layer declares them, before any per-app shadow exists.
// spec.md places the command-line front-end and configuration loader
// out of scope; this package is the in-memory shape those external
// collaborators populate and that C5/C6/C7 read.
package session

import "github.com/ardeshir/lttng-tools/pkg/wire"

// ID is a logical session identifier, assigned by the command layer.
type ID uint64

// Session is one logical tracing session: a named set of channels,
// independent of any application.
type Session struct {
	ID   ID
	Name string
	UID  uint32
	GID  uint32

	Channels map[string]*Channel

	// Started reflects whether start_trace_all has been called for
	// this session; global_update (§4.6) consults it to decide
	// whether a newly registering app should be started immediately.
	Started bool
}

func NewSession(id ID, name string, uid, gid uint32) *Session {
	return &Session{
		ID:       id,
		Name:     name,
		UID:      uid,
		GID:      gid,
		Channels: make(map[string]*Channel),
	}
}

// Channel is a logical channel definition: attributes plus the
// events and contexts configured against it. The channel Type
// (per-cpu vs metadata) is deliberately absent here — spec.md §4.5
// assigns it during the shadow copy, not at configuration time.
type Channel struct {
	Name    string
	Attr    wire.ChannelAttr
	Enabled bool

	Events   map[EventKey]*Event
	Contexts map[wire.ContextKind]*Context
}

func NewChannel(name string, attr wire.ChannelAttr) *Channel {
	return &Channel{
		Name:     name,
		Attr:     attr,
		Enabled:  true,
		Events:   make(map[EventKey]*Event),
		Contexts: make(map[wire.ContextKind]*Context),
	}
}

// EventKey is the composite identity spec.md §3 assigns to events:
// name, a loglevel-equivalence class, and the filter bytecode bytes.
// FilterDigest holds the filter bytes converted to a string so the
// whole key stays comparable (and usable as a Go map key) without a
// real hash: equality must be on the exact bytes, and a string copy
// of a byte slice compares by content for free. Build values of this
// type with NewEventKey, which applies the ALL-loglevel equivalence
// rule rather than constructing the struct directly.
type EventKey struct {
	Name               string
	LogLevelEquivClass int32
	FilterDigest       string // empty when no filter is present
}

// NewEventKey builds the composite identity for an event. When
// loglevelType is ALL, the stored loglevel collapses to a single
// equivalence class regardless of whether the caller passed -1 or 0,
// which is exactly the special rule spec.md §3 describes: "stored
// loglevel -1 matches query loglevel 0".
func NewEventKey(name string, loglevel int32, loglevelType wire.LogLevelType, filter []byte) EventKey {
	equiv := loglevel
	if loglevelType == wire.LogLevelTypeAll {
		equiv = -1
	}
	return EventKey{
		Name:               name,
		LogLevelEquivClass: equiv,
		FilterDigest:       string(filter),
	}
}

// Event is a logical event rule.
type Event struct {
	Key          EventKey
	LogLevel     int32
	LogLevelType wire.LogLevelType
	Filter       []byte
	Enabled      bool
}

// Context is a logical context attachment.
type Context struct {
	Kind wire.ContextKind
}
