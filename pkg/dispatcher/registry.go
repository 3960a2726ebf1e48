// Package dispatcher runs installed triggers after commits on user
// databases. A Registry owns one Handler per started database; handlers
// cache compiled selectors and are invalidated by the replicated store.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/unijord/unitrigger/pkg/cel"
	fbtrigger "github.com/unijord/unitrigger/pkg/gen/go/fb/trigger"
	"github.com/unijord/unitrigger/pkg/policy"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

const tracerName = "github.com/unijord/unitrigger/pkg/dispatcher"

var (
	ErrNotStarted = errors.New("dispatcher: database not started")
	ErrStopped    = errors.New("dispatcher: handler stopped")
	ErrPanicked   = errors.New("dispatcher: trigger execution panicked")
)

// DefaultAsyncWorkers bounds concurrent afterAsync executions per database.
const DefaultAsyncWorkers = 4

// Executor runs a matched statement; policy.Engine satisfies it.
type Executor interface {
	Execute(ctx context.Context, database, statement string, params map[string]any) (policy.Stats, error)
}

type Config struct {
	SystemDatabase string
	// Enabled false turns every dispatch into a no-op.
	Enabled  bool
	Lister   triggerstore.Lister
	Executor Executor
	// Compiler defaults to one over the selector environment.
	Compiler     *cel.Compiler
	AsyncWorkers int
	// ExecTimeout bounds each execution; zero leaves it to the caller's ctx.
	ExecTimeout time.Duration
	// OnOutcome receives the results of afterAsync executions.
	OnOutcome func(Outcome)
	Logger    *slog.Logger
	Tracer    trace.Tracer
}

type Registry struct {
	cfg       Config
	compiler  *cel.Compiler
	evaluator *cel.Evaluator
	logger    *slog.Logger

	mu       sync.RWMutex
	handlers map[string]*Handler
}

func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Lister == nil {
		return nil, errors.New("dispatcher: lister is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("dispatcher: executor is required")
	}
	if cfg.SystemDatabase == "" {
		cfg.SystemDatabase = trigger.SystemDatabase
	}
	if cfg.AsyncWorkers <= 0 {
		cfg.AsyncWorkers = DefaultAsyncWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Compiler == nil {
		env, err := cel.NewSelectorEnv()
		if err != nil {
			return nil, fmt.Errorf("dispatcher: selector env: %w", err)
		}
		cfg.Compiler = cel.NewCompiler(env)
	}

	return &Registry{
		cfg:       cfg,
		compiler:  cfg.Compiler,
		evaluator: cel.NewEvaluator(),
		logger:    cfg.Logger.With("component", "dispatcher"),
		handlers:  make(map[string]*Handler),
	}, nil
}

// Start creates the handler of database, or returns the running one.
func (r *Registry) Start(database string) (*Handler, error) {
	if err := trigger.ValidateDatabase(database); err != nil {
		return nil, err
	}
	if database == r.cfg.SystemDatabase {
		return nil, trigger.NewError(trigger.KindInvalidTarget, "dispatch", trigger.MsgBadTarget)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handlers[database]; ok {
		return h, nil
	}

	group := new(errgroup.Group)
	group.SetLimit(r.cfg.AsyncWorkers)
	h := &Handler{
		database:  database,
		lister:    r.cfg.Lister,
		executor:  r.cfg.Executor,
		compiler:  r.compiler,
		evaluator: r.evaluator,
		timeout:   r.cfg.ExecTimeout,
		onOutcome: r.cfg.OnOutcome,
		logger:    r.logger.With("database", database),
		tracer:    r.cfg.Tracer,
		async:     group,
	}
	r.handlers[database] = h
	r.logger.Info("dispatch handler started", "database", database)
	return h, nil
}

// Stop tears down the handler of database after its queued work finishes.
func (r *Registry) Stop(database string) {
	r.mu.Lock()
	h, ok := r.handlers[database]
	delete(r.handlers, database)
	r.mu.Unlock()

	if !ok {
		return
	}
	h.stop()
	r.logger.Info("dispatch handler stopped", "database", database)
}

// Close stops every handler.
func (r *Registry) Close() {
	r.mu.Lock()
	handlers := r.handlers
	r.handlers = make(map[string]*Handler)
	r.mu.Unlock()

	for _, h := range handlers {
		h.stop()
	}
}

func (r *Registry) Handler(database string) (*Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[database]
	return h, ok
}

// Databases lists started databases.
func (r *Registry) Databases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for db := range r.handlers {
		out = append(out, db)
	}
	return out
}

// Exists matches fsm.DatabaseCatalog: a database exists while its handler
// is started.
func (r *Registry) Exists(_ context.Context, database string) (bool, error) {
	_, ok := r.Handler(database)
	return ok, nil
}

func (r *Registry) Invalidate(database string) {
	if h, ok := r.Handler(database); ok {
		h.Invalidate()
	}
}

func (r *Registry) InvalidateAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		h.Invalidate()
	}
}

// OnChange matches fsm.ChangeCallback and drops the cache of the touched
// database.
func (r *Registry) OnChange(database string, kind fbtrigger.CommandType, defs []trigger.Definition) {
	r.logger.Debug("trigger set changed", "database", database, "command", kind.String(), "count", len(defs))
	r.Invalidate(database)
}

// AfterCommit routes summary to the handler of its database. Commits on the
// system database and empty commits dispatch nothing.
func (r *Registry) AfterCommit(ctx context.Context, summary trigger.ChangeSummary) ([]Outcome, error) {
	if !r.cfg.Enabled {
		return nil, nil
	}
	if summary.Database == r.cfg.SystemDatabase || summary.IsEmpty() {
		return nil, nil
	}
	h, ok := r.Handler(summary.Database)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotStarted, summary.Database)
	}
	return h.AfterCommit(ctx, summary)
}
