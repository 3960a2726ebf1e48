// Package coordinator is the public lifecycle surface of the trigger
// registry: install, drop, dropAll, stop, start and show.
//
// Every mutating operation runs its checks in a fixed order (enabled,
// routing, target, name, selector, policy) and touches the store exactly
// once, after every check has passed, so a failed call never leaves a
// partial change behind.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/unijord/unitrigger/pkg/cel"
	"github.com/unijord/unitrigger/pkg/routing"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

const tracerName = "github.com/unijord/unitrigger/pkg/coordinator"

// Result is the finite sequence of descriptors returned by every operation.
// Not found is a zero-length result.
type Result = []trigger.Info

// Validator checks a statement against the allowed query types and
// procedure modes of the target database.
type Validator interface {
	Validate(ctx context.Context, database, statement string, params trigger.Params) error
}

// SelectorCompiler rejects selectors whose condition cannot be compiled.
type SelectorCompiler interface {
	CompileSelector(sel trigger.Selector) (*cel.CompiledExpr, error)
}

type Config struct {
	SystemDatabase string
	// Enabled gates every operation; a disabled registry fails with a
	// disabled error.
	Enabled   bool
	Guard     routing.Guard
	Validator Validator
	Store     triggerstore.Store
	// Selectors is optional; without it selectors are only schema-checked.
	Selectors SelectorCompiler
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Now       func() time.Time
}

type InstallRequest struct {
	Database  string
	Name      string
	Statement string
	Selector  trigger.Selector
	Params    trigger.Params
}

type Coordinator struct {
	system    string
	enabled   bool
	guard     routing.Guard
	validator Validator
	store     triggerstore.Store
	selectors SelectorCompiler
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func New(cfg Config) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, errors.New("coordinator: store is required")
	}
	if cfg.Validator == nil {
		return nil, errors.New("coordinator: validator is required")
	}
	if cfg.Guard.Roles == nil {
		return nil, errors.New("coordinator: guard role provider is required")
	}
	if cfg.SystemDatabase == "" {
		cfg.SystemDatabase = cfg.Guard.SystemDatabase
	}
	if cfg.SystemDatabase == "" {
		cfg.SystemDatabase = trigger.SystemDatabase
	}
	cfg.Guard.SystemDatabase = cfg.SystemDatabase
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Coordinator{
		system:    cfg.SystemDatabase,
		enabled:   cfg.Enabled,
		guard:     cfg.Guard,
		validator: cfg.Validator,
		store:     cfg.Store,
		selectors: cfg.Selectors,
		logger:    cfg.Logger.With("component", "coordinator"),
		tracer:    cfg.Tracer,
		now:       cfg.Now,
	}, nil
}

// SystemDatabase returns the identifier of the coordination database.
func (c *Coordinator) SystemDatabase() string {
	return c.system
}

// Install validates req and upserts it as an active trigger. Reinstalling an
// existing name replaces it and resets paused.
func (c *Coordinator) Install(ctx context.Context, req InstallRequest) (Result, error) {
	const op = "install"
	return c.run(ctx, op, req.Database, req.Name, func(ctx context.Context) ([]trigger.Definition, error) {
		if err := c.checkMutation(ctx, op); err != nil {
			return nil, err
		}
		if err := c.guard.AssertValidTarget(op, req.Database); err != nil {
			return nil, err
		}
		if err := trigger.ValidateName(req.Name); err != nil {
			return nil, trigger.Wrap(trigger.KindInvalidArgument, op, "invalid trigger name", err)
		}
		if err := c.checkSelector(op, req.Selector); err != nil {
			return nil, err
		}
		if err := c.validator.Validate(ctx, req.Database, req.Statement, req.Params); err != nil {
			return nil, asTriggerError(op, err)
		}

		params := req.Params.Clone()
		if params == nil {
			params = trigger.Params{}
		}
		def, err := c.store.Upsert(ctx, trigger.Definition{
			Database:    req.Database,
			Name:        req.Name,
			Statement:   req.Statement,
			Selector:    req.Selector,
			Params:      params,
			Paused:      false,
			InstalledAt: c.now(),
		})
		if err != nil {
			return nil, asTriggerError(op, err)
		}
		return []trigger.Definition{def}, nil
	})
}

// InstallRaw is the procedure-style entry point taking an untyped selector
// and config map. Only config.params is interpreted.
func (c *Coordinator) InstallRaw(ctx context.Context, database, name, statement string, selector, config map[string]any) (Result, error) {
	const op = "install"
	if selector == nil {
		selector = map[string]any{}
	}
	if config == nil {
		config = map[string]any{}
	}
	sel, err := trigger.ParseSelector(selector)
	if err != nil {
		return nil, trigger.Wrap(trigger.KindInvalidArgument, op, trigger.MsgInvalidSelect, err)
	}
	cfg, err := trigger.ParseConfig(config)
	if err != nil {
		return nil, trigger.Wrap(trigger.KindInvalidArgument, op, "invalid trigger config", err)
	}
	return c.Install(ctx, InstallRequest{
		Database:  database,
		Name:      name,
		Statement: statement,
		Selector:  sel,
		Params:    cfg.Params,
	})
}

// Drop removes one trigger. A missing trigger yields an empty result.
func (c *Coordinator) Drop(ctx context.Context, database, name string) (Result, error) {
	const op = "drop"
	return c.run(ctx, op, database, name, func(ctx context.Context) ([]trigger.Definition, error) {
		if err := c.checkNamed(ctx, op, database, name); err != nil {
			return nil, err
		}
		def, found, err := c.store.Remove(ctx, database, name)
		if err != nil {
			return nil, asTriggerError(op, err)
		}
		return optional(def, found), nil
	})
}

// DropAll removes every trigger of database, reported sorted by name.
func (c *Coordinator) DropAll(ctx context.Context, database string) (Result, error) {
	const op = "dropAll"
	return c.run(ctx, op, database, "", func(ctx context.Context) ([]trigger.Definition, error) {
		if err := c.checkMutation(ctx, op); err != nil {
			return nil, err
		}
		if err := checkDatabase(op, database); err != nil {
			return nil, err
		}
		defs, err := c.store.RemoveAll(ctx, database)
		if err != nil {
			return nil, asTriggerError(op, err)
		}
		return defs, nil
	})
}

// Stop pauses a trigger. Stopping a paused trigger is a no-op that still
// reports it.
func (c *Coordinator) Stop(ctx context.Context, database, name string) (Result, error) {
	return c.setPaused(ctx, "stop", database, name, true)
}

// Start resumes a paused trigger.
func (c *Coordinator) Start(ctx context.Context, database, name string) (Result, error) {
	return c.setPaused(ctx, "start", database, name, false)
}

func (c *Coordinator) setPaused(ctx context.Context, op, database, name string, paused bool) (Result, error) {
	return c.run(ctx, op, database, name, func(ctx context.Context) ([]trigger.Definition, error) {
		if err := c.checkNamed(ctx, op, database, name); err != nil {
			return nil, err
		}
		def, found, err := c.store.SetPaused(ctx, database, name, paused)
		if err != nil {
			return nil, asTriggerError(op, err)
		}
		return optional(def, found), nil
	})
}

// Show lists the triggers of database. Any replica of the system database
// may answer, so the view can lag the leader.
func (c *Coordinator) Show(ctx context.Context, database string) (Result, error) {
	const op = "show"
	return c.run(ctx, op, database, "", func(ctx context.Context) ([]trigger.Definition, error) {
		if !c.enabled {
			return nil, trigger.NewError(trigger.KindDisabled, op, trigger.MsgDisabled)
		}
		if err := c.guard.AssertReadable(op, DatabaseFromContext(ctx)); err != nil {
			return nil, err
		}
		if err := checkDatabase(op, database); err != nil {
			return nil, err
		}
		defs, err := c.store.List(ctx, database)
		if err != nil {
			return nil, asTriggerError(op, err)
		}
		return defs, nil
	})
}

func (c *Coordinator) checkMutation(ctx context.Context, op string) error {
	if !c.enabled {
		return trigger.NewError(trigger.KindDisabled, op, trigger.MsgDisabled)
	}
	return c.guard.AssertWritableForMutation(op, DatabaseFromContext(ctx))
}

func (c *Coordinator) checkNamed(ctx context.Context, op, database, name string) error {
	if err := c.checkMutation(ctx, op); err != nil {
		return err
	}
	if err := checkDatabase(op, database); err != nil {
		return err
	}
	if err := trigger.ValidateName(name); err != nil {
		return trigger.Wrap(trigger.KindInvalidArgument, op, "invalid trigger name", err)
	}
	return nil
}

func (c *Coordinator) checkSelector(op string, sel trigger.Selector) error {
	if c.selectors != nil {
		if _, err := c.selectors.CompileSelector(sel); err != nil {
			return trigger.Wrap(trigger.KindInvalidArgument, op, trigger.MsgInvalidSelect, err)
		}
		return nil
	}
	if err := sel.Validate(); err != nil {
		return trigger.Wrap(trigger.KindInvalidArgument, op, trigger.MsgInvalidSelect, err)
	}
	return nil
}

func (c *Coordinator) run(ctx context.Context, op, database, name string, fn func(context.Context) ([]trigger.Definition, error)) (Result, error) {
	attrs := []attribute.KeyValue{
		attribute.String("trigger.database", database),
		attribute.String("trigger.current_database", DatabaseFromContext(ctx)),
	}
	if name != "" {
		attrs = append(attrs, attribute.String("trigger.name", name))
	}
	ctx, span := c.tracer.Start(ctx, "coordinator."+op, trace.WithAttributes(attrs...))
	defer span.End()

	defs, err := fn(ctx)
	if err != nil {
		kind := trigger.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		c.logger.Warn("trigger operation rejected",
			"op", op,
			"database", database,
			"name", name,
			"kind", kind.String(),
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("trigger.results", len(defs)))
	level := slog.LevelInfo
	if op == "show" {
		level = slog.LevelDebug
	}
	c.logger.Log(ctx, level, "trigger operation",
		"op", op,
		"database", database,
		"name", name,
		"results", len(defs),
	)
	return trigger.Infos(defs), nil
}

func checkDatabase(op, database string) error {
	if err := trigger.ValidateDatabase(database); err != nil {
		return trigger.Wrap(trigger.KindInvalidArgument, op, "invalid database", err)
	}
	return nil
}

func optional(def trigger.Definition, found bool) []trigger.Definition {
	if !found {
		return nil
	}
	return []trigger.Definition{def}
}

// asTriggerError keeps classified errors as they are and classifies the rest.
func asTriggerError(op string, err error) error {
	var te *trigger.Error
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return trigger.Wrap(trigger.KindCollaboratorTimeout, op, trigger.MsgTimeout, err)
	}
	return trigger.Wrap(trigger.KindInternal, op, "trigger store failure", err)
}
