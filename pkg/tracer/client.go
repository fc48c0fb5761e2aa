// Package tracer implements the typed request/response transport spoken
// over each application's private command socket: session, channel,
// event and context lifecycle, enable/disable, filtering, start/stop,
// quiescent wait, version negotiation, and tracepoint enumeration.
package tracer

import (
	"io"
	"net"
	"sync"

	"github.com/ardeshir/lttng-tools/pkg/wire"
	"go.uber.org/zap"
)

// Client is a synchronous request/response client bound to a single
// application's command socket. All calls serialize on the socket: the
// protocol does not support pipelining, matching how a single app-side
// tracer control thread drains its socket.
type Client struct {
	logger *zap.Logger
	conn   net.Conn
	pid    int

	mu sync.Mutex
}

// New wraps conn for the application identified by pid, used purely for
// log correlation.
func New(logger *zap.Logger, conn net.Conn, pid int) *Client {
	return &Client{
		logger: logger,
		conn:   conn,
		pid:    pid,
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// call writes a request (header plus whatever writeBody appends) and
// reads the response header. On success it invokes readBody to decode
// the rest of the response, if any. Every non-OK return code is
// translated into a Go error; benign peer death is logged at debug,
// everything else is logged as an error tagged with pid and op.
func (c *Client) call(op wire.Op, opName string, writeBody func(io.Writer) error, readBody func(io.Reader) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wire.WriteHeader(c.conn, op); err != nil {
		return c.fail(opName, wire.ErrBrokenPipe)
	}
	if writeBody != nil {
		if err := writeBody(c.conn); err != nil {
			return c.fail(opName, wire.ErrBrokenPipe)
		}
	}

	rc, err := wire.ReadReturnCode(c.conn)
	if err != nil {
		return c.fail(opName, wire.ErrBrokenPipe)
	}

	if rc != wire.OK {
		return c.fail(opName, rc)
	}

	if readBody != nil {
		if err := readBody(c.conn); err != nil {
			return c.fail(opName, wire.ErrBrokenPipe)
		}
	}

	return nil
}

func (c *Client) fail(opName string, rc wire.ReturnCode) error {
	if wire.IsBenignPeerDeath(rc) {
		c.logger.Debug("app peer gone", zap.Int("pid", c.pid), zap.String("op", opName), zap.Error(rc))
		return rc
	}
	if rc != wire.ErrAlreadyExists && rc != wire.ErrNoEntry {
		c.logger.Error("tracer transport error", zap.Int("pid", c.pid), zap.String("op", opName), zap.Error(rc))
	}
	return rc
}
