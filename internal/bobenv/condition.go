package bobenv

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition is a compiled "if:" expression attached to a dependency, SCM, or
// override. Conditions are evaluated against the currently-visible
// environment at expansion time, never at parse time (§4.1).
type Condition struct {
	source  string
	program *vm.Program
}

// CompileCondition parses and type-checks an "if:" expression. The
// expression must evaluate to a boolean.
func CompileCondition(source string) (*Condition, error) {
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling condition %q: %w", source, err)
	}
	return &Condition{source: source, program: program}, nil
}

// Eval runs the condition against env's visible variables.
func (c *Condition) Eval(env Environment) (bool, error) {
	out, err := expr.Run(c.program, env.AsMap())
	if err != nil {
		return false, fmt.Errorf("evaluating condition %q: %w", c.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not evaluate to a boolean", c.source)
	}
	return b, nil
}

// String returns the original expression source.
func (c *Condition) String() string { return c.source }
