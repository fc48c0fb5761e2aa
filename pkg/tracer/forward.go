package tracer

import (
	"io"

	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// StreamDescriptor identifies one ring-buffer stream handed off by the
// consumer, forwarded here to the application. The consumer client
// fills only CPU; DataFD and IntrFD stay zero.
type StreamDescriptor struct {
	CPU      int32
	DataFD   int
	IntrFD   int
}

// SendChannelToApp hands a channel object, already populated by the
// consumer, over to the application so it can start writing into it.
func (c *Client) SendChannelToApp(session Handle, channel Handle) error {
	return c.call(wire.OpSendChannelToApp, "send_channel_to_app",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(session)); err != nil {
				return err
			}
			return wire.WriteFixed(w, int64(channel))
		}, nil)
}

// SendStreamToApp hands a single ring-buffer stream over to the
// application. Only the stream's ordinal CPU index is sent; no file
// descriptor is passed, in band or out of band.
func (c *Client) SendStreamToApp(channel Handle, stream StreamDescriptor) error {
	return c.call(wire.OpSendStreamToApp, "send_stream_to_app",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(channel)); err != nil {
				return err
			}
			return wire.WriteFixed(w, stream.CPU)
		}, nil)
}
