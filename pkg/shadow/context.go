package shadow

import (
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// AppContext is a single context attachment, identified solely by its
// kind (§3: "Identity: context kind enum").
type AppContext struct {
	Kind   wire.ContextKind
	Handle tracer.Handle
}
