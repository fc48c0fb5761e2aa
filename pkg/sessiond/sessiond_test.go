package sessiond

import (
	"net"
	"testing"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/config"
	"github.com/ardeshir/lttng-tools/pkg/consumerd"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAppSocket services every op a full register/validate/global_update/
// trace lifecycle exercises, replying OK and a fresh handle to every
// creation call.
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
			case wire.OpVersion:
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, uint32(2))
				wire.WriteFixed(conn, uint32(0))
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
				var s, c int64
				wire.ReadFixed(conn, &s)
				wire.ReadFixed(conn, &c)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpSendStreamToApp:
				var c int64
				wire.ReadFixed(conn, &c)
				var cpu int32
				wire.ReadFixed(conn, &cpu)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpCalibrate:
				var h int64
				wire.ReadFixed(conn, &h)
				wire.WriteReturnCode(conn, wire.OK)
			case wire.OpTracepointListStart:
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
			case wire.OpTracepointListGet:
				var list int64
				wire.ReadFixed(conn, &list)
				var index uint32
				wire.ReadFixed(conn, &index)
				if index >= 3 {
					wire.WriteReturnCode(conn, wire.ErrNoEntry)
					continue
				}
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteString(conn, "tp")
				wire.WriteFixed(conn, int32(0))
			case wire.OpFieldListStart:
				wire.WriteReturnCode(conn, wire.OK)
				wire.WriteFixed(conn, nextHandle)
				nextHandle++
			case wire.OpFieldListGet:
				var list int64
				wire.ReadFixed(conn, &list)
				var index uint32
				wire.ReadFixed(conn, &index)
				wire.WriteReturnCode(conn, wire.ErrNoEntry)
			default:
				wire.WriteReturnCode(conn, wire.ErrUnknown)
			}
		}
	}()
}

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

// testSessiond wires a Sessiond with one registered, compatible app and
// one consumer endpoint, both backed by net.Pipe and the fakes above.
func testSessiond(t *testing.T) (*Sessiond, *app.App, net.Conn) {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		Channel: config.ChannelDefaults{
			SubBufSize: 4096, SubBufCount: 4, Output: config.OutputModeMmap,
		},
		Metadata: config.MetadataChannelDefaults{SubBufSize: 4096, SubBufCount: 4},
		Consumer: config.ConsumerEndpoints{TracePath: t.TempDir(), SubDir: "trace"},
		Protocol: config.ProtocolSupport{Major: 2},
	}

	budget := fdbudget.New(fdbudget.APPS, 1000)
	registry := app.NewRegistry(logger, budget, 2)

	appClient, appServer := net.Pipe()
	t.Cleanup(func() { appClient.Close(); appServer.Close() })
	fakeAppSocket(t, appServer)

	consumerClient, consumerServer := net.Pipe()
	t.Cleanup(func() { consumerClient.Close(); consumerServer.Close() })
	fakeConsumerSocket(t, consumerServer, 2)

	var sockets consumerd.Sockets
	require.NoError(t, sockets.Set(64, consumerd.NewEndpoint(logger, consumerClient)))

	require.NoError(t, budget.Reserve(1))

	s, err := New(logger, cfg, registry, &sockets, budget)
	require.NoError(t, err)

	var msg wire.RegisterMsg
	copy(msg.Name[:], "testapp")
	msg.Pid = 7
	msg.Bits = 64
	msg.Major = 2

	a, err := s.Register(msg, appClient)
	require.NoError(t, err)
	registry.MarkCompatible(a, true)

	sess := session.NewSession(1, "test-session", 0, 0)
	s.AddSession(sess)

	return s, a, appClient
}
