package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/interpreter"
)

// Evaluator runs compiled expressions, reusing activations between calls.
type Evaluator struct {
	pool *activationPool
}

func NewEvaluator() *Evaluator {
	return &Evaluator{pool: newActivationPool()}
}

func (e *Evaluator) Eval(expr *CompiledExpr, vars map[string]any) (any, error) {
	act := e.pool.get(vars)
	defer e.pool.put(act)

	out, _, err := expr.program.Eval(act)
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", expr.source, err)
	}
	return out.Value(), nil
}

// EvalBool evaluates expr and each of its conjuncts in order, stopping
// at the first false.
func (e *Evaluator) EvalBool(expr *CompiledExpr, vars map[string]any) (bool, error) {
	act := e.pool.get(vars)
	defer e.pool.put(act)

	ok, err := evalBool(expr, act)
	if err != nil || !ok {
		return false, err
	}
	for _, next := range expr.and {
		if ok, err = evalBool(next, act); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func evalBool(expr *CompiledExpr, act interpreter.Activation) (bool, error) {
	out, _, err := expr.program.Eval(act)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", expr.source, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expected bool, got %T", expr.source, out.Value())
	}
	return b, nil
}

type activationPool struct {
	pool sync.Pool
}

func newActivationPool() *activationPool {
	return &activationPool{
		pool: sync.Pool{
			New: func() any {
				return &pooledActivation{vars: make(map[string]any, 16)}
			},
		},
	}
}

func (p *activationPool) get(vars map[string]any) *pooledActivation {
	a := p.pool.Get().(*pooledActivation)
	for k, v := range vars {
		a.vars[k] = v
	}
	return a
}

func (p *activationPool) put(a *pooledActivation) {
	clear(a.vars)
	p.pool.Put(a)
}

type pooledActivation struct {
	vars map[string]any
}

func (a *pooledActivation) ResolveName(name string) (any, bool) {
	v, ok := a.vars[name]
	return v, ok
}

func (a *pooledActivation) Parent() interpreter.Activation {
	return nil
}

var _ interpreter.Activation = (*pooledActivation)(nil)
