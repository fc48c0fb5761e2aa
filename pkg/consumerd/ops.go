package consumerd

import (
	"io"

	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"go.uber.org/zap"
)

// AskChannel asks the consumer to allocate a channel for sessionUUID
// with the given attributes. The consumer reports how many ring-buffer
// streams it will hand back via GetChannel.
func (e *Endpoint) AskChannel(sessionUUID, channelName string, attr wire.ChannelAttr) (expectedStreamCount uint32, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.call(wire.OpAskChannel, "ask_channel",
		func(w io.Writer) error {
			if err := wire.WriteString(w, sessionUUID); err != nil {
				return err
			}
			if err := wire.WriteString(w, channelName); err != nil {
				return err
			}
			return wire.WriteFixed(w, attr)
		},
		func(r io.Reader) error {
			return wire.ReadFixed(r, &expectedStreamCount)
		})
	return
}

// GetChannel receives the channel object and the stream descriptors the
// consumer allocated for a previously ask_channel'd channel.
func (e *Endpoint) GetChannel(channelName string, expectedStreamCount uint32) (object tracer.Handle, streams []tracer.StreamDescriptor, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.call(wire.OpGetChannel, "get_channel",
		func(w io.Writer) error {
			return wire.WriteString(w, channelName)
		},
		func(r io.Reader) error {
			var h int64
			if err := wire.ReadFixed(r, &h); err != nil {
				return err
			}
			object = tracer.Handle(h)

			var n uint32
			if err := wire.ReadFixed(r, &n); err != nil {
				return err
			}
			streams = make([]tracer.StreamDescriptor, 0, n)
			for i := uint32(0); i < n; i++ {
				var cpu int32
				if err := wire.ReadFixed(r, &cpu); err != nil {
					return err
				}
				streams = append(streams, tracer.StreamDescriptor{CPU: cpu})
			}
			return nil
		})
	return
}

// DestroyChannel is a best-effort teardown issued on the consumer when
// the local channel-creation flow fails after ask_channel succeeded.
// Its error is informational: callers already have a prior error to
// return and should not let this one override it.
func (e *Endpoint) DestroyChannel(channelName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.call(wire.OpDestroyChannel, "destroy_channel",
		func(w io.Writer) error {
			return wire.WriteString(w, channelName)
		}, nil)
}

func (e *Endpoint) call(op wire.Op, opName string, writeBody func(io.Writer) error, readBody func(io.Reader) error) error {
	if err := wire.WriteHeader(e.conn, op); err != nil {
		return e.fail(opName, wire.ErrBrokenPipe)
	}
	if writeBody != nil {
		if err := writeBody(e.conn); err != nil {
			return e.fail(opName, wire.ErrBrokenPipe)
		}
	}

	rc, err := wire.ReadReturnCode(e.conn)
	if err != nil {
		return e.fail(opName, wire.ErrBrokenPipe)
	}
	if rc != wire.OK {
		return e.fail(opName, rc)
	}

	if readBody != nil {
		if err := readBody(e.conn); err != nil {
			return e.fail(opName, wire.ErrBrokenPipe)
		}
	}
	return nil
}

func (e *Endpoint) fail(opName string, rc wire.ReturnCode) error {
	if wire.IsBenignPeerDeath(rc) {
		e.logger.Debug("consumer gone", zap.String("op", opName), zap.Error(rc))
		return rc
	}
	if rc != wire.ErrAlreadyExists && rc != wire.ErrNoEntry {
		e.logger.Error("consumer rpc error", zap.String("op", opName), zap.Error(rc))
	}
	return rc
}
