package consumerd

import (
	"net"
	"sync"

	"go.uber.org/zap"
)

// Endpoint is a single consumer socket connection, used for every
// ask/get/destroy-channel call issued against that bitness's consumer.
type Endpoint struct {
	logger *zap.Logger
	conn   net.Conn
	mu     sync.Mutex
}

func NewEndpoint(logger *zap.Logger, conn net.Conn) *Endpoint {
	return &Endpoint{logger: logger, conn: conn}
}

func (e *Endpoint) Close() error {
	return e.conn.Close()
}
