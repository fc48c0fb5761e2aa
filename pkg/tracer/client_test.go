package tracer

import (
	"net"
	"testing"

	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeApp answers a single request on conn with rc (and, on success,
// the fixed handle value), simulating a minimal in-process application
// tracer.
func fakeApp(t *testing.T, conn net.Conn, rc wire.ReturnCode, handle int64) {
	t.Helper()
	go func() {
		for {
			if _, err := wire.ReadHeader(conn); err != nil {
				return
			}
			// drain nothing: tests only exercise create_session, which has
			// no request body; real ops read their own body before replying.
			if err := wire.WriteReturnCode(conn, rc); err != nil {
				return
			}
			if rc == wire.OK {
				_ = wire.WriteFixed(conn, handle)
			}
			return
		}
	}()
}

func TestClient_CreateSession_Success(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	fakeApp(t, serverConn, wire.OK, 7)

	c := New(zap.NewNop(), clientConn, 42)
	h, err := c.CreateSession()
	require.NoError(t, err)
	assert.EqualValues(t, 7, h)
}

func TestClient_CreateSession_BenignPeerDeath(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	fakeApp(t, serverConn, wire.ErrBrokenPipe, 0)

	c := New(zap.NewNop(), clientConn, 42)
	_, err := c.CreateSession()
	require.Error(t, err)
	assert.True(t, wire.IsBenignPeerDeath(err))
}

func TestClient_CreateSession_NonBenignError(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	fakeApp(t, serverConn, wire.ErrNoMemory, 0)

	c := New(zap.NewNop(), clientConn, 42)
	_, err := c.CreateSession()
	require.Error(t, err)
	assert.False(t, wire.IsBenignPeerDeath(err))
	assert.True(t, wire.IsOutOfMemory(err))
}
