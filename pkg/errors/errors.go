// Package errors defines the typed error values shared by the loaders, the
// rule validator, and the phase-flow engine. Load-time errors abort a
// configuration load; engine errors are per-call and recoverable.
package errors

import (
	"fmt"
)

// IOError represents a filesystem failure while reading a data file.
type IOError struct {
	Path string
	Err  error
}

// NewIOError constructs an IOError.
func NewIOError(path string, err error) error {
	return &IOError{Path: path, Err: err}
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("io error: %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseError represents a YAML decoding failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationKind classifies a load-time validation failure.
type ValidationKind string

const (
	// KindEmptyID marks a missing or blank identifier.
	KindEmptyID ValidationKind = "empty_id"
	// KindDuplicatePhaseID marks two phases sharing one id.
	KindDuplicatePhaseID ValidationKind = "duplicate_phase_id"
	// KindUnknownPhaseReference marks a transition target that names no declared phase.
	KindUnknownPhaseReference ValidationKind = "unknown_phase_reference"
	// KindInvalidActionKind marks an action kind outside the recognized whitelist.
	KindInvalidActionKind ValidationKind = "invalid_action_kind"
	// KindEmptyConstraintField marks a constraint with a blank field name.
	KindEmptyConstraintField ValidationKind = "empty_constraint_field"
	// KindInvalidStateChange marks a state change violating its invariant.
	KindInvalidStateChange ValidationKind = "invalid_state_change"
	// KindUnknownDefaultPhase marks a default phase that names no declared phase.
	KindUnknownDefaultPhase ValidationKind = "unknown_default_phase"
	// KindDuplicateID marks an id collision in an entity catalog.
	KindDuplicateID ValidationKind = "duplicate_id"
	// KindUnknownReference marks a catalog foreign key that resolves to nothing.
	KindUnknownReference ValidationKind = "unknown_reference"
	// KindInvalidField marks a scalar field failing its declared shape.
	KindInvalidField ValidationKind = "invalid_field"
)

// ValidationError captures a configuration validation failure.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

// NewValidationError constructs a ValidationError.
func NewValidationError(kind ValidationKind, field, message string) error {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

// NewDuplicateID constructs the catalog uniqueness violation.
func NewDuplicateID(field, id string) error {
	return &ValidationError{Kind: KindDuplicateID, Field: field, Message: fmt.Sprintf("duplicate id %q", id)}
}

// NewUnknownReference constructs the catalog foreign-key violation.
func NewUnknownReference(from, referenced string) error {
	return &ValidationError{Kind: KindUnknownReference, Field: from, Message: fmt.Sprintf("references unknown id %q", referenced)}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error (%s): %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error (%s): %s", e.Kind, e.Message)
}

// EngineKind classifies a runtime engine failure.
type EngineKind string

const (
	// KindActionNotFound marks an action kind the current phase does not declare.
	KindActionNotFound EngineKind = "action_not_found"
	// KindInvalidActionOrResult marks a result label the action does not declare.
	KindInvalidActionOrResult EngineKind = "invalid_action_or_result"
)

// EngineError captures a per-call engine failure. The engine state is
// unchanged; the caller may retry with different inputs.
type EngineError struct {
	Kind   EngineKind
	Phase  string
	Action string
	Result string
}

// NewActionNotFound reports that the current phase declares no such action.
func NewActionNotFound(phase, action string) error {
	return &EngineError{Kind: KindActionNotFound, Phase: phase, Action: action}
}

// NewInvalidActionOrResult reports a result label the action does not map.
func NewInvalidActionOrResult(phase, action, result string) error {
	return &EngineError{Kind: KindInvalidActionOrResult, Phase: phase, Action: action, Result: result}
}

func (e *EngineError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindActionNotFound:
		return fmt.Sprintf("engine error: action %q not found in phase %q", e.Action, e.Phase)
	case KindInvalidActionOrResult:
		return fmt.Sprintf("engine error: action %q in phase %q has no result %q", e.Action, e.Phase, e.Result)
	}
	return fmt.Sprintf("engine error: %s", e.Kind)
}

// StoreError represents a session persistence failure.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError constructs a StoreError for the given operation.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
