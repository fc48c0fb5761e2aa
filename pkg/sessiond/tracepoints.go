package sessiond

import (
	"sync"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/reconcile"
	"github.com/ardeshir/lttng-tools/pkg/tracer"
	"github.com/ardeshir/lttng-tools/pkg/wire"
)

// TracepointEntry is one row of list_tracepoints' result, carrying the
// owning app's pid alongside the tracer's tracepoint. §4.7 fixes
// Enabled at the sentinel -1: list_tracepoints reports what exists,
// not what is currently enabled.
type TracepointEntry struct {
	Pid        int32
	Tracepoint tracer.Tracepoint
	Enabled    int32
}

// FieldEntry is list_tracepoint_fields' equivalent row.
type FieldEntry struct {
	Pid     int32
	Field   tracer.Field
	Enabled int32
}

// ListTracepoints implements §4.7's list_tracepoints(): fan out across
// every compatible app, growing each app's result buffer as it reads
// more tracepoints than it started with room for. An app that fails
// mid-read is abandoned for this call; its last successfully cached
// page, if any, is substituted so one flaky app does not blank out
// rows the caller saw on a previous call.
func (s *Sessiond) ListTracepoints() ([]TracepointEntry, error) {
	var mu sync.Mutex
	var all []TracepointEntry

	err := reconcile.Fanout(s.registry, func(a *app.App) error {
		tps, err := collectTracepoints(a)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if cached, ok := s.tracepointCache.Get(a.Pid); ok {
				all = append(all, cached.([]TracepointEntry)...)
			}
			return err
		}
		entries := make([]TracepointEntry, len(tps))
		for i, tp := range tps {
			entries[i] = TracepointEntry{Pid: a.Pid, Tracepoint: tp, Enabled: -1}
		}
		s.tracepointCache.Add(a.Pid, entries)
		all = append(all, entries...)
		return nil
	})
	if err != nil && wire.IsOutOfMemory(err) {
		return nil, err
	}
	return all, nil
}

// ListTracepointFields implements list_tracepoint_fields() the same way.
func (s *Sessiond) ListTracepointFields() ([]FieldEntry, error) {
	var mu sync.Mutex
	var all []FieldEntry

	err := reconcile.Fanout(s.registry, func(a *app.App) error {
		fields, err := collectFields(a)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if cached, ok := s.fieldCache.Get(a.Pid); ok {
				all = append(all, cached.([]FieldEntry)...)
			}
			return err
		}
		entries := make([]FieldEntry, len(fields))
		for i, f := range fields {
			entries[i] = FieldEntry{Pid: a.Pid, Field: f, Enabled: -1}
		}
		s.fieldCache.Add(a.Pid, entries)
		all = append(all, entries...)
		return nil
	})
	if err != nil && wire.IsOutOfMemory(err) {
		return nil, err
	}
	return all, nil
}

// collectTracepoints opens a tracepoint enumeration on a and reads it
// to exhaustion, doubling its buffer's capacity on overflow rather
// than reallocating once per entry, per §4.7's "growable buffer
// doubles on overflow."
func collectTracepoints(a *app.App) ([]tracer.Tracepoint, error) {
	list, err := a.Tracer.TracepointListStart()
	if err != nil {
		return nil, err
	}
	buf := make([]tracer.Tracepoint, 0, 64)
	for index := uint32(0); ; index++ {
		tp, err := a.Tracer.TracepointListGet(list, index)
		if err != nil {
			if wire.IsNoEntry(err) {
				break
			}
			return nil, err
		}
		if len(buf) == cap(buf) {
			grown := make([]tracer.Tracepoint, len(buf), cap(buf)*2)
			copy(grown, buf)
			buf = grown
		}
		buf = append(buf, tp)
	}
	return buf, nil
}

func collectFields(a *app.App) ([]tracer.Field, error) {
	list, err := a.Tracer.FieldListStart()
	if err != nil {
		return nil, err
	}
	buf := make([]tracer.Field, 0, 64)
	for index := uint32(0); ; index++ {
		f, err := a.Tracer.FieldListGet(list, index)
		if err != nil {
			if wire.IsNoEntry(err) {
				break
			}
			return nil, err
		}
		if len(buf) == cap(buf) {
			grown := make([]tracer.Field, len(buf), cap(buf)*2)
			copy(grown, buf)
			buf = grown
		}
		buf = append(buf, f)
	}
	return buf, nil
}
