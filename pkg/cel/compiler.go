package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultCostLimit bounds the work a single selector evaluation may do.
const DefaultCostLimit = 1_000_000

type CompiledExpr struct {
	source  string
	program cel.Program
	output  *cel.Type

	// and lists expressions that must also hold for EvalBool to be true.
	and []*CompiledExpr
}

func (c *CompiledExpr) Source() string     { return c.source }
func (c *CompiledExpr) OutputType() string { return c.output.String() }

type Compiler struct {
	env       *cel.Env
	costLimit uint64
}

func NewCompiler(env *cel.Env) *Compiler {
	return &Compiler{env: env, costLimit: DefaultCostLimit}
}

// WithCostLimit overrides the runtime cost limit; zero disables it.
func (c *Compiler) WithCostLimit(limit uint64) *Compiler {
	c.costLimit = limit
	return c
}

func (c *Compiler) Compile(expr string) (*CompiledExpr, error) {
	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}

	opts := []cel.ProgramOption{cel.EvalOptions(cel.OptOptimize)}
	if c.costLimit > 0 {
		opts = append(opts, cel.CostLimit(c.costLimit))
	}
	prog, err := c.env.Program(ast, opts...)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	return &CompiledExpr{
		source:  expr,
		program: prog,
		output:  ast.OutputType(),
	}, nil
}

func (c *Compiler) CompileBool(expr string) (*CompiledExpr, error) {
	compiled, err := c.Compile(expr)
	if err != nil {
		return nil, err
	}
	if !compiled.output.IsExactType(cel.BoolType) && !compiled.output.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", compiled.output)
	}
	return compiled, nil
}
