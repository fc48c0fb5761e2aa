package shadow

import (
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/rs/xid"
)

// AppChannel is one application's replica of a channel.
type AppChannel struct {
	Name string
	Key  xid.ID

	// TracerHandle is returned by create_channel and used for
	// enable/disable/flush on the tracer. Object is the consumer's
	// channel object, populated by get_channel (§4.2) and used only
	// to forward the channel to the app via send_channel_to_app.
	TracerHandle tracer.Handle
	Object       tracer.Handle

	Enabled bool
	IsSent  bool

	Attr wire.ChannelAttr
	Type wire.ChannelType

	ExpectedStreamCount uint32
	// Streams is transient: present between consumer hand-off and app
	// hand-off, emptied as each stream is forwarded (§3 invariant).
	Streams []AppStream

	Contexts map[wire.ContextKind]*AppContext
	Events   map[session.EventKey]*AppEvent
}

// NewAppChannel shadow-copies a logical channel's attributes, omitting
// the channel type (the reconciler decides per-cpu vs metadata, §4.5),
// and shadow-copies every logical event onto it.
func NewAppChannel(logical *session.Channel, key xid.ID) *AppChannel {
	c := &AppChannel{
		Name:         logical.Name,
		Key:          key,
		TracerHandle: tracer.NoHandle,
		Object:       tracer.NoHandle,
		Enabled:      logical.Enabled,
		Attr:         logical.Attr,
		Contexts:     make(map[wire.ContextKind]*AppContext),
		Events:       make(map[session.EventKey]*AppEvent),
	}
	for key, ev := range logical.Events {
		c.Events[key] = newAppEventFromLogical(ev)
	}
	return c
}

// ShadowEvent locates the AppEvent matching logical's composite
// identity, or allocates and installs a new one with a deep copy of
// the filter bytecode. The bool reports whether it was newly
// allocated, per spec.md §4.5's "locate or allocate" shadow-copy step.
func (c *AppChannel) ShadowEvent(logical *session.Event) (*AppEvent, bool) {
	if existing, ok := c.Events[logical.Key]; ok {
		return existing, false
	}
	ev := newAppEventFromLogical(logical)
	c.Events[logical.Key] = ev
	return ev, true
}
