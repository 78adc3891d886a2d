package datarecording

import (
	"reflect"

	"github.com/desimlab/desim/sim"
)

// EventTraceEntry is one row of the event trace table.
type EventTraceEntry struct {
	Time float64
	Kind string
}

// An EventTracer is a hook that records every handled event into a
// DataRecorder table. Attach it to a Simulation before Start.
type EventTracer struct {
	recorder DataRecorder
	table    string
}

// NewEventTracer creates an EventTracer writing into the named table.
func NewEventTracer(recorder DataRecorder, table string) *EventTracer {
	recorder.CreateTable(table, EventTraceEntry{})

	return &EventTracer{
		recorder: recorder,
		table:    table,
	}
}

// Func records the event. It implements sim.Hook.
func (t *EventTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(sim.Event)
	if !ok {
		return
	}

	t.recorder.InsertData(t.table, EventTraceEntry{
		Time: float64(evt.Time()),
		Kind: reflect.TypeOf(evt).String(),
	})
}
