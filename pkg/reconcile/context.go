package reconcile

import (
	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// AddContext implements add_context(channel, app, kind) (§4.5): a
// context is identified solely by its kind, so a channel may carry
// each kind at most once. Attaching an already-present kind is
// reported as already-exists, the idempotent per-app-skip class every
// other create path in this package uses.
func (r *Reconciler) AddContext(ch *shadow.AppChannel, kind wire.ContextKind, a *app.App) (*shadow.AppContext, error) {
	if existing, ok := ch.Contexts[kind]; ok {
		return existing, wire.ErrAlreadyExists
	}

	handle, err := a.Tracer.AddContext(ch.TracerHandle, kind)
	if err != nil {
		return nil, err
	}

	ac := &shadow.AppContext{Kind: kind, Handle: handle}
	ch.Contexts[kind] = ac
	return ac, nil
}
