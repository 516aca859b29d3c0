// Package engine interprets a validated rule set as a finite-state machine.
// The phases of the rule set are the states; executing an action's result
// moves the machine along the declared transition. The engine enforces
// which action/result pairs are legal in the current phase and notifies
// observers of every state-affecting call — it does not apply board effects
// or decide game outcomes.
package engine

import (
	"github.com/tegflow/tegflow/internal/constraint"
	"github.com/tegflow/tegflow/internal/logger"
	"github.com/tegflow/tegflow/internal/rules"
	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// Engine drives the phase flow of one game session. It owns its rule set
// and action context exclusively; a single logical caller may invoke its
// mutating operations at a time. Observer notification is synchronous and
// in registration order.
type Engine struct {
	rules     rules.RuleSet
	current   string
	ctx       *constraint.MapContext
	evaluator constraint.Evaluator
	observers []Observer
	log       *logger.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithEvaluator replaces the default constraint evaluation policy.
func WithEvaluator(ev constraint.Evaluator) Option {
	return func(e *Engine) {
		if ev != nil {
			e.evaluator = ev
		}
	}
}

// WithLogger attaches a logger for engine diagnostics.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithObserver registers an observer before play starts.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.AddObserver(o)
	}
}

// New constructs an engine owning the given rule set. The rule set must
// have passed Validate; in particular the default phase is known to name a
// declared phase, so the engine starts there without re-checking.
func New(rs rules.RuleSet, opts ...Option) *Engine {
	e := &Engine{
		rules:     rs,
		current:   rs.DefaultPhase,
		ctx:       constraint.NewMapContext(),
		evaluator: constraint.RuleEvaluator{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AddObserver appends an observer. Observers are never removed; they live
// as long as the engine.
func (e *Engine) AddObserver(o Observer) {
	if o == nil {
		return
	}
	e.observers = append(e.observers, o)
}

// CurrentPhase returns the id of the active phase.
func (e *Engine) CurrentPhase() string {
	return e.current
}

// Context returns the mutable action context consulted by the constraint
// evaluator.
func (e *Engine) Context() *constraint.MapContext {
	return e.ctx
}

// IsActionAllowed reports whether the current phase declares an action of
// the given kind. Pure query: no side effects, no events.
func (e *Engine) IsActionAllowed(kind string) bool {
	phase, ok := e.rules.Phase(e.current)
	if !ok {
		return false
	}
	_, ok = phase.Action(kind)
	return ok
}

// AvailableActions returns the action kinds of the current phase in
// declaration order. An unknown current phase yields an empty slice, never
// an error.
func (e *Engine) AvailableActions() []string {
	phase, ok := e.rules.Phase(e.current)
	if !ok {
		return nil
	}

	kinds := make([]string, 0, len(phase.Actions))
	for _, action := range phase.Actions {
		kinds = append(kinds, action.Kind)
	}
	return kinds
}

// ResultLabels returns the result labels the named action declares in the
// current phase, in no particular order. Unknown phases or actions yield
// nil.
func (e *Engine) ResultLabels(kind string) []string {
	phase, ok := e.rules.Phase(e.current)
	if !ok {
		return nil
	}
	action, ok := phase.Action(kind)
	if !ok {
		return nil
	}

	labels := make([]string, 0, len(action.Result))
	for label := range action.Result {
		labels = append(labels, label)
	}
	return labels
}

// CheckConstraints evaluates the constraints of the named action against
// the action context. A ConstraintChecked event is emitted regardless of
// the outcome. The phase does not change.
func (e *Engine) CheckConstraints(kind string) (bool, error) {
	action, err := e.resolveAction(kind)
	if err != nil {
		return false, err
	}

	success := true
	var evalErr error
	for _, c := range action.Constraints {
		ok, err := e.evaluator.Evaluate(e.ctx, c)
		if err != nil {
			success = false
			evalErr = err
			break
		}
		if !ok {
			success = false
			break
		}
	}

	e.notify(ConstraintChecked{Phase: e.current, Action: kind, Success: success})

	if evalErr != nil {
		e.logDebug("constraint evaluation failed", map[string]any{
			"phase": e.current, "action": kind, "error": evalErr.Error(),
		})
		return false, evalErr
	}
	return success, nil
}

// ExecuteAction resolves the action and result label in the current phase
// and performs the transition. On success the observers see ActionExecuted
// for the pre-transition phase, then PhaseChanged carrying the applied new
// phase, in that order. The transition is atomic from the caller's view:
// either both inputs resolve and the phase changes, or a typed error is
// returned and nothing happened.
func (e *Engine) ExecuteAction(kind, result string) error {
	action, err := e.resolveAction(kind)
	if err != nil {
		return err
	}

	next, ok := action.Result[result]
	if !ok {
		return tegerrors.NewInvalidActionOrResult(e.current, kind, result)
	}

	e.notify(ActionExecuted{Phase: e.current, Action: kind, Result: result})

	old := e.current
	e.current = next

	e.notify(PhaseChanged{From: old, To: next})

	e.logDebug("action executed", map[string]any{
		"action": kind, "result": result, "from": old, "to": next,
	})

	return nil
}

func (e *Engine) resolveAction(kind string) (rules.Action, error) {
	phase, ok := e.rules.Phase(e.current)
	if !ok {
		return rules.Action{}, tegerrors.NewActionNotFound(e.current, kind)
	}

	action, ok := phase.Action(kind)
	if !ok {
		return rules.Action{}, tegerrors.NewActionNotFound(e.current, kind)
	}
	return action, nil
}

func (e *Engine) notify(ev Event) {
	for _, o := range e.observers {
		o.HandleEvent(ev)
	}
}

func (e *Engine) logDebug(msg string, fields map[string]any) {
	if e.log == nil {
		return
	}
	e.log.With(fields).Debug(msg)
}
