package shadow

import "github.com/ardeshir/lttng-tools/pkg/tracer"

// AppStream is a single ring-buffer view handed from the consumer to
// the application. It is born in create_channel and must not outlive
// a successful channel creation (§9 "Ownership of streams").
type AppStream struct {
	CPU    int32
	DataFD int
	IntrFD int
}

// ToTracer converts a consumer-owned stream descriptor into the shape
// send_stream_to_app forwards to the application.
func (s AppStream) ToTracer() tracer.StreamDescriptor {
	return tracer.StreamDescriptor{CPU: s.CPU, DataFD: s.DataFD, IntrFD: s.IntrFD}
}
