package reconcile

import (
	"fmt"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/rs/xid"
)

// CreateChannel implements create_channel(session, app, channel) for an
// ordinary per-cpu channel (§4.5): locate or shadow-copy the
// AppChannel, create it on the tracer, ask the consumer to allocate
// its ring-buffer streams, reserve the FDs they cost, and hand the
// channel and every stream to the application.
func (r *Reconciler) CreateChannel(as *shadow.AppSession, logical *session.Channel, a *app.App) (*shadow.AppChannel, error) {
	ch, existed := as.Channels[logical.Name]
	if !existed {
		ch = shadow.NewAppChannel(logical, xid.New())
		ch.Type = wire.ChannelTypePerCPU
		as.Channels[logical.Name] = ch
	}
	if ch.IsSent {
		return ch, nil
	}
	return r.sendChannel(as, ch, a)
}

// ensureMetadataChannel implements the distinguished metadata channel
// half of §4.5: built from the configured metadata defaults rather
// than from any logical channel, and shadow-copied at most once per
// AppSession.
func (r *Reconciler) ensureMetadataChannel(as *shadow.AppSession, a *app.App) (*shadow.AppChannel, error) {
	if as.Metadata != nil && as.Metadata.IsSent {
		return as.Metadata, nil
	}
	if as.Metadata == nil {
		as.Metadata = &shadow.AppChannel{
			Name:         "metadata",
			Key:          xid.New(),
			TracerHandle: tracer.NoHandle,
			Object:       tracer.NoHandle,
			Enabled:      true,
			Attr:         r.metadataChannelAttr(),
			Type:         wire.ChannelTypeMetadata,
			Contexts:     map[wire.ContextKind]*shadow.AppContext{},
			Events:       map[session.EventKey]*shadow.AppEvent{},
		}
	}
	return r.sendChannel(as, as.Metadata, a)
}

// sendChannel drives one AppChannel, per-cpu or metadata, through
// create_channel / ask_channel / get_channel / send_channel_to_app /
// send_stream_to_app (§4.5, §9 "Ownership of streams"). Any failure
// after the FD reservation releases it and best-effort tears down the
// consumer-side channel before returning.
func (r *Reconciler) sendChannel(as *shadow.AppSession, ch *shadow.AppChannel, a *app.App) (*shadow.AppChannel, error) {
	consumer, ok := r.consumers.ForBitness(a.Bits)
	if !ok {
		return nil, fmt.Errorf("%w: no consumer for bitness %d", wire.ErrInvalid, a.Bits)
	}

	if ch.TracerHandle < 0 {
		handle, err := a.Tracer.CreateChannel(as.Handle, ch.Attr)
		if err != nil {
			return nil, err
		}
		ch.TracerHandle = handle
	}

	expected, err := consumer.AskChannel(as.UUID, ch.Name, ch.Attr)
	if err != nil {
		return nil, err
	}
	ch.ExpectedStreamCount = expected

	if err := r.fdBudget.Reserve(fdbudget.ChannelFDs(expected)); err != nil {
		_ = consumer.DestroyChannel(ch.Name)
		return nil, err
	}

	object, streams, err := consumer.GetChannel(ch.Name, expected)
	if err != nil {
		r.fdBudget.Release(fdbudget.ChannelFDs(expected))
		_ = consumer.DestroyChannel(ch.Name)
		return nil, err
	}
	ch.Object = object
	ch.Streams = make([]shadow.AppStream, len(streams))
	for i, sd := range streams {
		ch.Streams[i] = shadow.AppStream{CPU: sd.CPU, DataFD: sd.DataFD, IntrFD: sd.IntrFD}
	}

	if err := a.Tracer.SendChannelToApp(as.Handle, ch.Object); err != nil {
		r.fdBudget.Release(fdbudget.ChannelFDs(expected))
		_ = consumer.DestroyChannel(ch.Name)
		return nil, err
	}

	for len(ch.Streams) > 0 {
		sd := ch.Streams[0]
		if err := a.Tracer.SendStreamToApp(ch.TracerHandle, sd.ToTracer()); err != nil {
			r.fdBudget.Release(fdbudget.ChannelFDs(expected))
			_ = consumer.DestroyChannel(ch.Name)
			return nil, err
		}
		ch.Streams = ch.Streams[1:]
	}
	ch.IsSent = true

	if !ch.Enabled {
		if err := a.Tracer.Disable(ch.TracerHandle); err != nil && !skip(err) {
			return nil, err
		}
	}

	return ch, nil
}
