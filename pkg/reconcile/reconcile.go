// Package reconcile implements the per-app procedures (C6) that drive
// each application's tracer and the consumer toward the state its
// shadow model says it should be in. This is the glue spec.md §2
// assigns the largest share of the implementation: every fan-out
// operation in pkg/sessiond bottoms out in one of the procedures
// here.
package reconcile

import (
	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/config"
	"github.com/ardeshir/lttng-tools/pkg/consumerd"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/shadow"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"go.uber.org/zap"
)

// Reconciler owns C6: it never itself resolves an App from a socket
// or a pid (that is C4's job), but every method here assumes its
// caller has already pinned the App for the duration of the call.
type Reconciler struct {
	logger    *zap.Logger
	registry  *app.Registry
	consumers *consumerd.Sockets
	fdBudget  *fdbudget.Budget

	channelDefaults  config.ChannelDefaults
	metadataDefaults config.MetadataChannelDefaults
	consumerPaths    config.ConsumerEndpoints

	clock shadow.Clock
}

func New(
	logger *zap.Logger,
	registry *app.Registry,
	consumers *consumerd.Sockets,
	fdBudget *fdbudget.Budget,
	channelDefaults config.ChannelDefaults,
	metadataDefaults config.MetadataChannelDefaults,
	consumerPaths config.ConsumerEndpoints,
) *Reconciler {
	return &Reconciler{
		logger:           logger,
		registry:         registry,
		consumers:        consumers,
		fdBudget:         fdBudget,
		channelDefaults:  channelDefaults,
		metadataDefaults: metadataDefaults,
		consumerPaths:    consumerPaths,
	}
}

// metadataChannelAttr builds the attribute block §4.5 assigns the
// distinguished metadata channel: mmap output, metadata type, and
// subbuffer size/count from the configured metadata defaults. The
// timer intervals are left at zero; the metadata defaults carry no
// timer settings.
func (r *Reconciler) metadataChannelAttr() wire.ChannelAttr {
	return wire.ChannelAttr{
		SubBufSize:  r.metadataDefaults.SubBufSize,
		SubBufCount: r.metadataDefaults.SubBufCount,
		Output:      wire.OutputMmap,
		Type:        wire.ChannelTypeMetadata,
	}
}

// ChannelDefaultsAttr builds the attribute block for a per-cpu channel
// whose caller left one or more fields unset, from the configured
// channel defaults (§4.5). Callers that specify every field
// explicitly do not need this helper.
func (r *Reconciler) ChannelDefaultsAttr() wire.ChannelAttr {
	var output wire.OutputMode
	if r.channelDefaults.Output == config.OutputModeMmap {
		output = wire.OutputMmap
	} else {
		output = wire.OutputSplice
	}
	return wire.ChannelAttr{
		SubBufSize:          r.channelDefaults.SubBufSize,
		SubBufCount:         r.channelDefaults.SubBufCount,
		SwitchTimerInterval: r.channelDefaults.SwitchTimerInterval,
		ReadTimerInterval:   r.channelDefaults.ReadTimerInterval,
		Output:              output,
		Type:                wire.ChannelTypePerCPU,
	}
}

// skip reports whether err is one of the per-app-skip classes §4.6
// step 5 and §7 describe (benign peer death, idempotent already-
// exists/no-entry), as opposed to a fatal out-of-memory condition
// that must abort the fan-out.
func skip(err error) bool {
	if err == nil {
		return false
	}
	return wire.IsBenignPeerDeath(err) || wire.IsAlreadyExists(err) || wire.IsNoEntry(err)
}

// fatal reports whether err must abort the current fan-out rather
// than being skipped for just the current app (§7 item 1).
func fatal(err error) bool {
	return wire.IsOutOfMemory(err)
}
