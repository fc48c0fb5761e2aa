package reconcile

import (
	"testing"

	"github.com/ardeshir/lttng-tools/pkg/session"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_AddContext_AttachesOnce(t *testing.T) {
	r, a, _ := testReconciler(t, 1)
	logical := session.NewSession(1, "s1", 1000, 1000)
	ch := session.NewChannel("chan0", r.ChannelDefaultsAttr())

	as, err := r.CreateAppSession(logical, a)
	require.NoError(t, err)
	appChan, err := r.CreateChannel(as, ch, a)
	require.NoError(t, err)

	ac, err := r.AddContext(appChan, wire.ContextKind(1), a)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, int64(ac.Handle), int64(0))

	_, err = r.AddContext(appChan, wire.ContextKind(1), a)
	assert.True(t, wire.IsAlreadyExists(err))
}
