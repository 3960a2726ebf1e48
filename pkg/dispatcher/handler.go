package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/unijord/unitrigger/pkg/cel"
	"github.com/unijord/unitrigger/pkg/policy"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

// Outcome reports one matched trigger. Queued outcomes belong to afterAsync
// triggers whose result is delivered to Config.OnOutcome later.
type Outcome struct {
	Database string
	Name     string
	Phase    trigger.Phase
	Queued   bool
	Stats    policy.Stats
	Err      error
}

type compiled struct {
	def  trigger.Definition
	expr *cel.CompiledExpr
}

// Handler dispatches commits of one database. Its trigger cache is a
// read-through view of the store, dropped on Invalidate.
type Handler struct {
	database  string
	lister    triggerstore.Lister
	executor  Executor
	compiler  *cel.Compiler
	evaluator *cel.Evaluator
	timeout   time.Duration
	onOutcome func(Outcome)
	logger    *slog.Logger
	tracer    trace.Tracer

	mu         sync.Mutex
	cache      []compiled
	loaded     bool
	generation uint64

	// runMu guards closed against in-flight enqueues.
	runMu  sync.RWMutex
	closed bool
	async  *errgroup.Group
}

func (h *Handler) Database() string {
	return h.database
}

// Invalidate drops the cached trigger set; the next commit reloads it.
func (h *Handler) Invalidate() {
	h.mu.Lock()
	h.cache = nil
	h.loaded = false
	h.generation++
	h.mu.Unlock()
}

func (h *Handler) triggers(ctx context.Context) ([]compiled, error) {
	h.mu.Lock()
	if h.loaded {
		cache := h.cache
		h.mu.Unlock()
		return cache, nil
	}
	gen := h.generation
	h.mu.Unlock()

	defs, err := h.lister.List(ctx, h.database)
	if err != nil {
		return nil, fmt.Errorf("list triggers of %s: %w", h.database, err)
	}

	out := make([]compiled, 0, len(defs))
	for _, def := range defs {
		expr, err := h.compiler.CompileSelector(def.Selector)
		if err != nil {
			h.logger.Warn("skipping trigger with invalid selector",
				"name", def.Name,
				"error", err,
			)
			continue
		}
		out = append(out, compiled{def: def, expr: expr})
	}

	h.mu.Lock()
	// an invalidation during the load makes this set stale
	if h.generation == gen {
		h.cache = out
		h.loaded = true
	}
	h.mu.Unlock()
	return out, nil
}

// AfterCommit runs every active trigger whose selector matches summary.
// Failures are isolated per trigger and reported in the outcomes.
func (h *Handler) AfterCommit(ctx context.Context, summary trigger.ChangeSummary) ([]Outcome, error) {
	if summary.Database == "" {
		summary.Database = h.database
	}
	if summary.Database != h.database {
		return nil, fmt.Errorf("dispatcher: summary for %s sent to handler of %s", summary.Database, h.database)
	}
	if summary.IsEmpty() {
		return nil, nil
	}

	ctx, span := h.tracer.Start(ctx, "dispatcher.afterCommit", trace.WithAttributes(
		attribute.String("trigger.database", h.database),
		attribute.Int64("trigger.transaction_id", summary.TransactionID),
	))
	defer span.End()

	set, err := h.triggers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load triggers")
		return nil, err
	}

	bindings := summary.Bindings()
	var outcomes []Outcome
	for _, t := range set {
		if t.def.Paused {
			continue
		}
		matched, err := h.evaluator.EvalBool(t.expr, bindings)
		if err != nil {
			h.logger.Warn("selector evaluation failed", "name", t.def.Name, "error", err)
			outcomes = append(outcomes, Outcome{
				Database: h.database,
				Name:     t.def.Name,
				Phase:    t.def.Selector.EffectivePhase(),
				Err:      err,
			})
			continue
		}
		if !matched {
			continue
		}

		params := mergeParams(t.def.Params, bindings)
		if t.def.Selector.EffectivePhase() == trigger.PhaseAfterAsync {
			outcomes = append(outcomes, h.enqueue(ctx, t.def, params))
			continue
		}
		outcomes = append(outcomes, h.run(ctx, t.def, params))
	}

	span.SetAttributes(attribute.Int("trigger.matched", len(outcomes)))
	return outcomes, nil
}

func (h *Handler) enqueue(ctx context.Context, def trigger.Definition, params map[string]any) Outcome {
	queued := Outcome{Database: h.database, Name: def.Name, Phase: trigger.PhaseAfterAsync, Queued: true}

	h.runMu.RLock()
	defer h.runMu.RUnlock()
	if h.closed {
		queued.Queued = false
		queued.Err = ErrStopped
		return queued
	}

	// async work outlives the commit call but keeps its trace
	detached := context.WithoutCancel(ctx)
	h.async.Go(func() error {
		out := h.run(detached, def, params)
		if h.onOutcome != nil {
			h.onOutcome(out)
		}
		return nil
	})
	return queued
}

func (h *Handler) run(ctx context.Context, def trigger.Definition, params map[string]any) Outcome {
	out := Outcome{Database: h.database, Name: def.Name, Phase: def.Selector.EffectivePhase()}

	ctx, span := h.tracer.Start(ctx, "dispatcher.execute", trace.WithAttributes(
		attribute.String("trigger.database", h.database),
		attribute.String("trigger.name", def.Name),
		attribute.String("trigger.phase", string(out.Phase)),
	))
	defer span.End()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	stats, err := h.execute(ctx, def, params)
	if err != nil {
		out.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "execute")
		h.logger.Error("trigger execution failed",
			"name", def.Name,
			"phase", out.Phase,
			"error", err,
		)
		return out
	}

	out.Stats = stats
	h.logger.Debug("trigger executed",
		"name", def.Name,
		"phase", out.Phase,
		"elapsed", stats.Elapsed,
	)
	return out
}

// execute turns a panic inside the executor into ErrPanicked so one
// broken trigger cannot take down its siblings or the async workers.
func (h *Handler) execute(ctx context.Context, def trigger.Definition, params map[string]any) (stats policy.Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("trigger execution panicked",
				"name", def.Name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return h.executor.Execute(ctx, h.database, def.Statement, params)
}

// stop rejects new async work and waits for what is queued.
func (h *Handler) stop() {
	h.runMu.Lock()
	h.closed = true
	h.runMu.Unlock()
	_ = h.async.Wait()
}

// mergeParams overlays the change-summary bindings on the trigger params;
// reserved names always win.
func mergeParams(params trigger.Params, bindings map[string]any) map[string]any {
	out := params.Any()
	maps.Copy(out, bindings)
	return out
}
