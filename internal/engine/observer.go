package engine

import (
	"github.com/tegflow/tegflow/internal/logger"
)

// LogObserver renders every engine event as a structured log entry.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver creates an observer writing to the given logger.
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// HandleEvent writes one log entry per event.
func (o *LogObserver) HandleEvent(ev Event) {
	if o == nil || o.log == nil {
		return
	}

	switch ev := ev.(type) {
	case PhaseChanged:
		o.log.With(map[string]any{
			"from": ev.From,
			"to":   ev.To,
		}).Info("phase changed")
	case ActionExecuted:
		o.log.With(map[string]any{
			"phase":  ev.Phase,
			"action": ev.Action,
			"result": ev.Result,
		}).Info("action executed")
	case ConstraintChecked:
		o.log.With(map[string]any{
			"phase":   ev.Phase,
			"action":  ev.Action,
			"success": ev.Success,
		}).Debug("constraints checked")
	}
}

// Recorder collects events in delivery order. Used by tests and the
// interactive simulator.
type Recorder struct {
	Events []Event
}

// HandleEvent appends the event.
func (r *Recorder) HandleEvent(ev Event) {
	r.Events = append(r.Events, ev)
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}
