package tracer

import (
	"io"

	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// Handle is an opaque tracer-side reference returned by creation calls
// and consumed by enable/disable/release/flush calls. -1 denotes "not
// yet created".
type Handle int64

const NoHandle Handle = -1

func writeHandle(h Handle) func(io.Writer) error {
	return func(w io.Writer) error {
		return wire.WriteFixed(w, int64(h))
	}
}

func readHandle(out *Handle) func(io.Reader) error {
	return func(r io.Reader) error {
		var v int64
		if err := wire.ReadFixed(r, &v); err != nil {
			return err
		}
		*out = Handle(v)
		return nil
	}
}

// CreateSession allocates a tracing session on the application's tracer
// and returns its handle.
func (c *Client) CreateSession() (Handle, error) {
	var h Handle
	err := c.call(wire.OpCreateSession, "create_session", nil, readHandle(&h))
	return h, err
}

// ReleaseSessionHandle releases the session's tracer-side handle without
// tearing down anything it owns; callers release owned objects first.
func (c *Client) ReleaseSessionHandle(session Handle) error {
	return c.call(wire.OpReleaseSessionHandle, "release_session_handle", writeHandle(session), nil)
}

// CreateChannel creates a channel under session with the given attributes.
func (c *Client) CreateChannel(session Handle, attr wire.ChannelAttr) (Handle, error) {
	var h Handle
	err := c.call(wire.OpCreateChannel, "create_channel",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(session)); err != nil {
				return err
			}
			return wire.WriteFixed(w, attr)
		},
		readHandle(&h))
	return h, err
}

// Enable enables a previously created channel, event, or context object.
func (c *Client) Enable(obj Handle) error {
	return c.call(wire.OpEnable, "enable", writeHandle(obj), nil)
}

// Disable disables a previously created channel or event object.
func (c *Client) Disable(obj Handle) error {
	return c.call(wire.OpDisable, "disable", writeHandle(obj), nil)
}

// CreateEvent creates an event rule under channel.
func (c *Client) CreateEvent(channel Handle, attr wire.EventAttr) (Handle, error) {
	var h Handle
	err := c.call(wire.OpCreateEvent, "create_event",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(channel)); err != nil {
				return err
			}
			return wire.WriteFixed(w, attr)
		},
		readHandle(&h))
	return h, err
}

// SetFilter installs filter bytecode on an event object.
func (c *Client) SetFilter(obj Handle, bytecode []byte) error {
	return c.call(wire.OpSetFilter, "set_filter",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(obj)); err != nil {
				return err
			}
			return wire.WriteBytes(w, bytecode)
		}, nil)
}

// AddContext attaches a context of the given kind to channel.
func (c *Client) AddContext(channel Handle, kind wire.ContextKind) (Handle, error) {
	var h Handle
	err := c.call(wire.OpAddContext, "add_context",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(channel)); err != nil {
				return err
			}
			return wire.WriteFixed(w, kind)
		},
		readHandle(&h))
	return h, err
}

// ReleaseObject releases a channel, event, context, or stream object.
func (c *Client) ReleaseObject(obj Handle) error {
	return c.call(wire.OpReleaseObject, "release_object", writeHandle(obj), nil)
}

// StartSession starts tracing for the given session handle.
func (c *Client) StartSession(session Handle) error {
	return c.call(wire.OpStartSession, "start_session", writeHandle(session), nil)
}

// StopSession stops tracing for the given session handle.
func (c *Client) StopSession(session Handle) error {
	return c.call(wire.OpStopSession, "stop_session", writeHandle(session), nil)
}

// WaitQuiescent blocks until the application has observed every command
// sent on this socket so far.
func (c *Client) WaitQuiescent() error {
	return c.call(wire.OpWaitQuiescent, "wait_quiescent", nil, nil)
}

// FlushBuffer forces a sub-buffer switch on the given channel or event
// object so buffered records become visible to the consumer.
func (c *Client) FlushBuffer(obj Handle) error {
	return c.call(wire.OpFlushBuffer, "flush_buffer", writeHandle(obj), nil)
}

// Version negotiates and returns the application's protocol version.
func (c *Client) Version() (major, minor uint32, err error) {
	err = c.call(wire.OpVersion, "tracer_version", nil, func(r io.Reader) error {
		if err := wire.ReadFixed(r, &major); err != nil {
			return err
		}
		return wire.ReadFixed(r, &minor)
	})
	return
}

// Calibrate runs the tracer's calibration routine for the given target.
func (c *Client) Calibrate(target wire.CalibrateTarget) error {
	return c.call(wire.OpCalibrate, "calibrate", writeHandle(Handle(target)), nil)
}
