package shadow

import (
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// AppEvent is one application's replica of an event rule, keyed by
// the composite identity in session.EventKey.
type AppEvent struct {
	Key     session.EventKey
	Attr    wire.EventAttr
	Filter  []byte
	Handle  tracer.Handle
	Enabled bool
}

func newAppEventFromLogical(logical *session.Event) *AppEvent {
	var name [256]byte
	copy(name[:], logical.Key.Name)

	var filter []byte
	if len(logical.Filter) > 0 {
		filter = make([]byte, len(logical.Filter))
		copy(filter, logical.Filter)
	}

	return &AppEvent{
		Key: logical.Key,
		Attr: wire.EventAttr{
			Name:         name,
			LogLevel:     logical.LogLevel,
			LogLevelType: logical.LogLevelType,
		},
		Filter:  filter,
		Handle:  tracer.NoHandle,
		Enabled: logical.Enabled,
	}
}
