// Package consumerd is the RPC client to the consumer daemon subprocess
// that owns ring-buffer file descriptors. It asks the consumer to
// allocate channels, receives the resulting stream descriptors, and
// best-effort tears down channels the local flow failed to finish.
package consumerd

import (
	"fmt"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// Sockets holds the process-wide consumer endpoints, selected by
// application bitness. Both fields are atomically readable so a
// reconciler goroutine can resolve the right endpoint without
// synchronizing with whatever goroutine dialed or redialed it.
type Sockets struct {
	sock32 atomic.Pointer[Endpoint]
	sock64 atomic.Pointer[Endpoint]
}

// ForBitness returns the consumer endpoint for the given application
// bitness (32 or 64). ok is false if no consumer is registered for that
// bitness, the "not available" sentinel from the design notes.
func (s *Sockets) ForBitness(bits uint32) (*Endpoint, bool) {
	switch bits {
	case 32:
		e := s.sock32.Load()
		return e, e != nil
	case 64:
		e := s.sock64.Load()
		return e, e != nil
	default:
		return nil, false
	}
}

// Set installs the endpoint for the given bitness, replacing any prior
// one. Passing a nil endpoint marks that bitness unavailable.
func (s *Sockets) Set(bits uint32, e *Endpoint) error {
	switch bits {
	case 32:
		s.sock32.Store(e)
	case 64:
		s.sock64.Store(e)
	default:
		return fmt.Errorf("consumerd: unsupported bitness %d", bits)
	}
	return nil
}

// Dial connects to the consumer listening on network/addr and installs
// it as the endpoint for bits.
func (s *Sockets) Dial(logger *zap.Logger, bits uint32, network, addr string) error {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return fmt.Errorf("dialing consumer (bits=%d): %w", bits, err)
	}
	return s.Set(bits, NewEndpoint(logger, conn))
}
