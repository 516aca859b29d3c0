package engine

// Event is the closed set of notifications the engine fans out to its
// observers. Exactly one of the three concrete types is delivered per
// notification.
type Event interface {
	event()
}

// PhaseChanged reports a completed transition. It is emitted strictly after
// the engine's current phase has been updated.
type PhaseChanged struct {
	From string
	To   string
}

// ActionExecuted reports a successful action resolution. Phase names the
// phase the action ran in, before any transition.
type ActionExecuted struct {
	Phase  string
	Action string
	Result string
}

// ConstraintChecked reports a constraint evaluation, successful or not.
type ConstraintChecked struct {
	Phase   string
	Action  string
	Success bool
}

func (PhaseChanged) event()      {}
func (ActionExecuted) event()    {}
func (ConstraintChecked) event() {}

// Observer receives engine events synchronously, on the call stack of the
// engine operation that triggered them, in registration order.
type Observer interface {
	HandleEvent(Event)
}
