package session

import (
	"testing"

	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/stretchr/testify/assert"
)

func TestNewEventKey_AllLogLevelEquivalence(t *testing.T) {
	a := NewEventKey("x", -1, wire.LogLevelTypeAll, nil)
	b := NewEventKey("x", 0, wire.LogLevelTypeAll, nil)
	assert.Equal(t, a, b, "ALL-type loglevel -1 and 0 must collapse to the same key")
}

func TestNewEventKey_DistinctFilters(t *testing.T) {
	withoutFilter := NewEventKey("ev", 0, wire.LogLevelTypeAll, nil)
	withFilter := NewEventKey("ev", 0, wire.LogLevelTypeAll, []byte{0x01, 0x02})
	assert.NotEqual(t, withoutFilter, withFilter)
}

func TestNewEventKey_RangeLogLevelNotCollapsed(t *testing.T) {
	a := NewEventKey("ev", 3, wire.LogLevelTypeRange, nil)
	b := NewEventKey("ev", 4, wire.LogLevelTypeRange, nil)
	assert.NotEqual(t, a, b)
}

func TestChannel_EventIndexKeyedByComposite(t *testing.T) {
	ch := NewChannel("chan0", wire.ChannelAttr{SubBufSize: 4096, SubBufCount: 4})
	k1 := NewEventKey("ev", 0, wire.LogLevelTypeAll, nil)
	k2 := NewEventKey("ev", 0, wire.LogLevelTypeAll, []byte{0x01})

	ch.Events[k1] = &Event{Key: k1, LogLevelType: wire.LogLevelTypeAll, Enabled: true}
	ch.Events[k2] = &Event{Key: k2, LogLevelType: wire.LogLevelTypeAll, Filter: []byte{0x01}, Enabled: true}

	assert.Len(t, ch.Events, 2)
}
