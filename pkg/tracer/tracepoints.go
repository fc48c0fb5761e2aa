package tracer

import (
	"io"

	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// Tracepoint is one entry returned by the application's tracepoint
// enumeration.
type Tracepoint struct {
	Name     string
	LogLevel int32
}

// Field is one entry returned by the application's field enumeration.
type Field struct {
	EventName string
	FieldName string
	Type      uint32
}

// TracepointListStart opens a tracepoint enumeration on the application
// and returns a handle to iterate with TracepointListGet.
func (c *Client) TracepointListStart() (Handle, error) {
	var h Handle
	err := c.call(wire.OpTracepointListStart, "tracepoint_list", nil, readHandle(&h))
	return h, err
}

// TracepointListGet fetches the tracepoint at index from a previously
// opened enumeration. It returns wire.ErrNoEntry itself, as an
// io.EOF-like termination signal, once the list is exhausted; callers
// should stop iterating on that error without treating it as a failure.
func (c *Client) TracepointListGet(list Handle, index uint32) (Tracepoint, error) {
	var tp Tracepoint
	err := c.call(wire.OpTracepointListGet, "tracepoint_list_get",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(list)); err != nil {
				return err
			}
			return wire.WriteFixed(w, index)
		},
		func(r io.Reader) error {
			name, err := wire.ReadString(r)
			if err != nil {
				return err
			}
			tp.Name = name
			return wire.ReadFixed(r, &tp.LogLevel)
		})
	return tp, err
}

// FieldListStart opens a field enumeration on the application.
func (c *Client) FieldListStart() (Handle, error) {
	var h Handle
	err := c.call(wire.OpFieldListStart, "field_list", nil, readHandle(&h))
	return h, err
}

// FieldListGet fetches the field at index from a previously opened
// enumeration, terminating the same way as TracepointListGet.
func (c *Client) FieldListGet(list Handle, index uint32) (Field, error) {
	var f Field
	err := c.call(wire.OpFieldListGet, "field_list_get",
		func(w io.Writer) error {
			if err := wire.WriteFixed(w, int64(list)); err != nil {
				return err
			}
			return wire.WriteFixed(w, index)
		},
		func(r io.Reader) error {
			eventName, err := wire.ReadString(r)
			if err != nil {
				return err
			}
			f.EventName = eventName
			fieldName, err := wire.ReadString(r)
			if err != nil {
				return err
			}
			f.FieldName = fieldName
			return wire.ReadFixed(r, &f.Type)
		})
	return f, err
}
