package sim

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventLogger is a hook that traces every handled event through a logrus
// logger at debug level. Attach it to a Simulation before Start and it is
// carried into the engine of every run.
type EventLogger struct {
	Logger *logrus.Logger
}

// NewEventLogger returns a hook that writes event traces into the logger.
func NewEventLogger(logger *logrus.Logger) *EventLogger {
	return &EventLogger{Logger: logger}
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	fields := logrus.Fields{
		"time": float64(evt.Time()),
		"type": reflect.TypeOf(evt).String(),
	}

	if w, ok := evt.(*wakeEvent); ok {
		fields["proc"] = w.proc.ID()
		fields["reason"] = w.msg.reason.String()
	}

	h.Logger.WithFields(fields).Debug("event")
}
