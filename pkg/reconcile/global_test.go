package reconcile

import (
	"testing"

	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_GlobalUpdate_BringsNewAppUpToDate(t *testing.T) {
	r, a, _ := testReconciler(t, 1)

	logical := session.NewSession(1, "s1", 1000, 1000)
	ch := session.NewChannel("chan0", r.ChannelDefaultsAttr())
	ch.Contexts[wire.ContextKind(3)] = &session.Context{Kind: wire.ContextKind(3)}
	key := session.NewEventKey("sched_switch", -1, wire.LogLevelTypeAll, nil)
	ch.Events[key] = &session.Event{Key: key, LogLevelType: wire.LogLevelTypeAll, Enabled: true}
	logical.Channels[ch.Name] = ch
	logical.Started = true

	require.NoError(t, r.GlobalUpdate([]*session.Session{logical}, a))

	as, ok := a.Sessions.Load(logical.ID)
	require.True(t, ok)
	assert.True(t, as.Started)

	appChan, ok := as.Channels[ch.Name]
	require.True(t, ok)
	assert.True(t, appChan.IsSent)
	assert.Len(t, appChan.Events, 1)
	assert.Len(t, appChan.Contexts, 1)

	ev, ok := appChan.Events[key]
	require.True(t, ok)
	assert.GreaterOrEqual(t, int64(ev.Handle), int64(0))
}

func TestReconciler_GlobalUpdate_SkipsSessionsAlreadyPresent(t *testing.T) {
	r, a, _ := testReconciler(t, 1)

	s1 := session.NewSession(1, "s1", 1000, 1000)
	s2 := session.NewSession(2, "s2", 1000, 1000)

	require.NoError(t, r.GlobalUpdate([]*session.Session{s1, s2}, a))
	assert.EqualValues(t, 2, a.Sessions.Len())

	require.NoError(t, r.GlobalUpdate([]*session.Session{s1, s2}, a))
	assert.EqualValues(t, 2, a.Sessions.Len())
}
