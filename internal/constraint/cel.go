package constraint

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tegflow/tegflow/internal/rules"
)

// Snapshotter is the optional context capability the CEL evaluator needs:
// a full copy of the attributes to hand to the CEL runtime.
type Snapshotter interface {
	Snapshot() map[string]any
}

// CELEvaluator evaluates constraints as CEL programs. Comparison
// constraints are translated into a guarded lookup expression; "expr"
// constraints carry a raw CEL expression over the `attrs` map in their
// value. Programs are compiled once per distinct source and cached.
type CELEvaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewCELEvaluator builds the CEL environment shared by all programs.
func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("attrs", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("value", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	return &CELEvaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate compiles (or reuses) the program for the constraint and runs it
// against a snapshot of the context.
func (e *CELEvaluator) Evaluate(ctx Context, c rules.Constraint) (bool, error) {
	snap, ok := ctx.(Snapshotter)
	if !ok {
		return false, fmt.Errorf("constraint %q: context does not support snapshots", c.Field)
	}

	op := c.Op
	if op == "" {
		op = "eq"
	}

	source, isExpr, err := celSource(c, op)
	if err != nil {
		return false, err
	}

	program, err := e.program(source)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(map[string]any{
		"attrs": snap.Snapshot(),
		"value": nativeValue(c.Value),
	})
	if err != nil {
		if isExpr {
			return false, fmt.Errorf("constraint %q: evaluate expression: %w", c.Field, err)
		}
		// A type mismatch between attribute and value fails the
		// comparison, same as the default evaluator.
		return false, nil
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("constraint %q: expression returned %T, want bool", c.Field, out.Value())
	}
	return result, nil
}

func (e *CELEvaluator) program(source string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.programs[source]; ok {
		return program, nil
	}

	ast, issues := e.env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", source, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build program %q: %w", source, err)
	}

	e.programs[source] = program
	return program, nil
}

func celSource(c rules.Constraint, op string) (source string, isExpr bool, err error) {
	if op == "expr" {
		if c.Value.Kind != rules.String {
			return "", false, fmt.Errorf("constraint %q: expr constraints need a string value", c.Field)
		}
		return c.Value.Str, true, nil
	}

	celOp, ok := celOps[op]
	if !ok {
		return "", false, fmt.Errorf("constraint %q: unsupported op %q", c.Field, op)
	}

	field := strconv.Quote(c.Field)
	return fmt.Sprintf("%s in attrs && attrs[%s] %s value", field, field, celOp), false, nil
}

var celOps = map[string]string{
	"eq": "==",
	"ne": "!=",
	"lt": "<",
	"le": "<=",
	"gt": ">",
	"ge": ">=",
}

func nativeValue(v rules.Value) any {
	switch v.Kind {
	case rules.Number:
		return v.Number
	case rules.Bool:
		return v.Bool
	default:
		return v.Str
	}
}
