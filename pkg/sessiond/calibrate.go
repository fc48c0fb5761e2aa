package sessiond

import (
	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/reconcile"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// Calibrate implements §4.7's calibrate(target): run the tracer's
// calibration routine on every compatible app, independent of any
// session.
func (s *Sessiond) Calibrate(target wire.CalibrateTarget) error {
	return reconcile.Fanout(s.registry, func(a *app.App) error {
		return a.Tracer.Calibrate(target)
	})
}
