// Package wire defines the typed request/response messages and the
// framing codec shared by the tracer transport and the consumer RPC
// client. Both speak the same small binary protocol: a fixed header
// followed by a fixed-size payload, with length-prefixed byte strings
// for variable-sized fields such as filter bytecode.
package wire

import "fmt"

// ReturnCode is the signed status carried in every response header.
// Negative values are errors; zero is success.
type ReturnCode int32

const (
	OK ReturnCode = 0

	// ErrBrokenPipe and ErrPeerExiting are benign peer-death signals: the
	// remote end of the socket is gone or tearing down. Callers must
	// distinguish these from every other error and treat them as a
	// per-app skip, not a loggable failure.
	ErrBrokenPipe  ReturnCode = -1
	ErrPeerExiting ReturnCode = -2

	ErrPermissionDenied ReturnCode = -3
	ErrAlreadyExists    ReturnCode = -4
	ErrNoEntry          ReturnCode = -5
	ErrNotSupported     ReturnCode = -6
	ErrNoMemory         ReturnCode = -7
	ErrInvalid          ReturnCode = -8
	ErrUnknown          ReturnCode = -9
)

func (c ReturnCode) Error() string {
	switch c {
	case OK:
		return "ok"
	case ErrBrokenPipe:
		return "broken pipe"
	case ErrPeerExiting:
		return "peer exiting"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrAlreadyExists:
		return "already exists"
	case ErrNoEntry:
		return "no entry"
	case ErrNotSupported:
		return "not supported"
	case ErrNoMemory:
		return "out of memory"
	case ErrInvalid:
		return "invalid argument"
	default:
		return fmt.Sprintf("unknown return code %d", int32(c))
	}
}

// IsBenignPeerDeath reports whether err signals that the peer application
// has disconnected or is exiting. Call sites must check this before
// logging a transport failure as an error: benign peer death is logged,
// if at all, at debug level, and causes the caller to abandon the current
// app rather than abort the operation.
func IsBenignPeerDeath(err error) bool {
	var rc ReturnCode
	if !asReturnCode(err, &rc) {
		return false
	}
	return rc == ErrBrokenPipe || rc == ErrPeerExiting
}

// IsOutOfMemory reports whether err is the one error class that must
// abort a fan-out instead of being skipped for the current app.
func IsOutOfMemory(err error) bool {
	var rc ReturnCode
	if !asReturnCode(err, &rc) {
		return false
	}
	return rc == ErrNoMemory
}

// IsAlreadyExists reports whether err is the idempotent "already exists"
// signal used by create operations.
func IsAlreadyExists(err error) bool {
	var rc ReturnCode
	if !asReturnCode(err, &rc) {
		return false
	}
	return rc == ErrAlreadyExists
}

// IsNoEntry reports whether err is the idempotent "not found" signal.
func IsNoEntry(err error) bool {
	var rc ReturnCode
	if !asReturnCode(err, &rc) {
		return false
	}
	return rc == ErrNoEntry
}

func asReturnCode(err error, out *ReturnCode) bool {
	for err != nil {
		if rc, ok := err.(ReturnCode); ok {
			*out = rc
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
