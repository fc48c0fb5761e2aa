package reconcile

import (
	"net"
	"testing"
	"time"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/config"
	"github.com/ardeshir/lttng-tools/pkg/consumerd"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"go.uber.org/zap"
)

// fakeAppSocket services every request on conn with an op-specific
// reply, simulating an application tracer well-behaved enough to
// drive every procedure in this package through a full success path.
// It exits as soon as the connection is closed.
func fakeAppSocket(t *testing.T, conn net.Conn) {
	t.Helper()
	go func() {
		var nextHandle int64 = 1
		for {
			op, err := wire.ReadHeader(conn)
			if err != nil {
				return
			}
			switch op {
			case wire.OpCreateSession:
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
			case wire.OpCreateChannel:
				var session int64
				wire.ReadFixed(conn, &session)
				var attr wire.ChannelAttr
				wire.ReadFixed(conn, &attr)
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
			case wire.OpCreateEvent:
				var channel int64
				wire.ReadFixed(conn, &channel)
				var attr wire.EventAttr
				wire.ReadFixed(conn, &attr)
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
			case wire.OpAddContext:
				var channel int64
				wire.ReadFixed(conn, &channel)
				var kind wire.ContextKind
				wire.ReadFixed(conn, &kind)
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
			case wire.OpSetFilter:
				var obj int64
				wire.ReadFixed(conn, &obj)
				wire.ReadBytes(conn)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpEnable, wire.OpDisable:
				var obj int64
				wire.ReadFixed(conn, &obj)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpReleaseObject:
				var obj int64
				wire.ReadFixed(conn, &obj)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpStartSession, wire.OpStopSession, wire.OpReleaseSessionHandle:
				var h int64
				wire.ReadFixed(conn, &h)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpWaitQuiescent:
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpFlushBuffer:
				var obj int64
				wire.ReadFixed(conn, &obj)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpSendChannelToApp:
				var session, channel int64
				wire.ReadFixed(conn, &session)
				wire.ReadFixed(conn, &channel)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpSendStreamToApp:
				var channel int64
				wire.ReadFixed(conn, &channel)
				var cpu int32
				wire.ReadFixed(conn, &cpu)
				wire.WriteReturnCode(conn, wire.OK)
			default:
				wire.WriteReturnCode(conn, wire.ErrUnknown)
			}
		}
	}()
}

// fakeConsumerSocket services ask_channel/get_channel/destroy_channel
// on conn, reporting streamCount streams for every ask_channel call.
func fakeConsumerSocket(t *testing.T, conn net.Conn, streamCount uint32) {
	t.Helper()
	go func() {
		var nextHandle int64 = 100
		for {
			op, err := wire.ReadHeader(conn)
			if err != nil {
				return
			}
			switch op {
			case wire.OpAskChannel:
				wire.ReadString(conn)
				wire.ReadString(conn)
				var attr wire.ChannelAttr
				wire.ReadFixed(conn, &attr)
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, streamCount)
			case wire.OpGetChannel:
				wire.ReadString(conn)
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
				wire.WriteFixed(conn, streamCount)
				for i := uint32(0); i < streamCount; i++ {
					wire.WriteFixed(conn, int32(i))
				}
			case wire.OpDestroyChannel:
				wire.ReadString(conn)
				wire.WriteReturnCode(conn, wire.OK)
			default:
				wire.WriteReturnCode(conn, wire.ErrUnknown)
			}
		}
	}()
}

// testReconciler wires a Reconciler against a registry with one
// registered, compatible app whose tracer socket is driven by
// fakeAppSocket, and one consumer endpoint driven by fakeConsumerSocket.
func testReconciler(t *testing.T, streamCount uint32) (*Reconciler, *app.App, *fdbudget.Budget) {
	t.Helper()
	logger := zap.NewNop()
	budget := fdbudget.New(fdbudget.APPS, 1000)
	registry := app.NewRegistry(logger, budget, 2)

	appClient, appServer := net.Pipe()
	t.Cleanup(func() { appClient.Close(); appServer.Close() })
	fakeAppSocket(t, appServer)

	consumerClient, consumerServer := net.Pipe()
	t.Cleanup(func() { consumerClient.Close(); consumerServer.Close() })
	fakeConsumerSocket(t, consumerServer, streamCount)

	var sockets consumerd.Sockets
	if err := sockets.Set(64, consumerd.NewEndpoint(logger, consumerClient)); err != nil {
		t.Fatal(err)
	}

	if err := budget.Reserve(1); err != nil {
		t.Fatal(err)
	}

	var msg wire.RegisterMsg
	copy(msg.Name[:], "testapp")
	msg.Pid = 7
	msg.Bits = 64
	msg.Major = 2

	a, err := registry.Register(msg, appClient, &sockets)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	registry.MarkCompatible(a, true)

	r := New(logger, registry, &sockets, budget,
		config.ChannelDefaults{SubBufSize: 4096, SubBufCount: 4, Output: config.OutputModeMmap},
		config.MetadataChannelDefaults{SubBufSize: 4096, SubBufCount: 4},
		config.ConsumerEndpoints{TracePath: t.TempDir(), SubDir: "trace"},
	)
	r.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }

	return r, a, budget
}
