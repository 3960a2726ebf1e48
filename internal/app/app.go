// Package app assembles a trigger node from configuration: the raft
// replica holding the system database, the lifecycle coordinator, the
// dispatch registry and the gRPC front end.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/unijord/unitrigger/internal/config"
	"github.com/unijord/unitrigger/internal/otel"
	"github.com/unijord/unitrigger/pkg/cel"
	"github.com/unijord/unitrigger/pkg/cluster"
	"github.com/unijord/unitrigger/pkg/coordinator"
	"github.com/unijord/unitrigger/pkg/dispatcher"
	"github.com/unijord/unitrigger/pkg/engine"
	"github.com/unijord/unitrigger/pkg/fsm"
	"github.com/unijord/unitrigger/pkg/policy"
	"github.com/unijord/unitrigger/pkg/routing"
	"github.com/unijord/unitrigger/pkg/transport/grpcapi"
)

type App struct {
	cfg    *config.Config
	logger *slog.Logger

	node        *cluster.Node
	engine      *engine.KeywordEngine
	coordinator *coordinator.Coordinator
	registry    *dispatcher.Registry
	sweeper     *fsm.Sweeper
	server      *grpcapi.Server

	shutdownTracing func(context.Context) error
}

// New builds every component and binds the gRPC listener. Nothing runs
// until Run is called, except raft itself.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (a *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	a = &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	a.shutdownTracing, err = otel.Setup(ctx, cfg.OTel.ServiceName, cfg.OTel.Endpoint, cfg.Node.ID)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	peers := make([]cluster.Peer, 0, len(cfg.Node.Peers))
	for _, s := range cfg.Node.Peers {
		p, err := cluster.ParsePeer(s)
		if err != nil {
			return nil, err
		}
		peers = append(peers, p)
	}

	a.node, err = cluster.NewNode(cluster.Config{
		NodeID:         cfg.Node.ID,
		DataDir:        cfg.Node.DataDir,
		RaftAddr:       cfg.Node.RaftAddr,
		GRPCAddr:       cfg.GRPC.Addr,
		Bootstrap:      cfg.Node.Bootstrap,
		Peers:          peers,
		ApplyTimeout:   cfg.Node.ApplyTimeout,
		SystemDatabase: cfg.Triggers.SystemDatabase,
		Logger:         logger,
		LogLevel:       cfg.Log.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}

	procs, err := cfg.Engine.ProcedureModes()
	if err != nil {
		return nil, err
	}
	catalog := maps.Clone(engine.DefaultProcedures)
	maps.Copy(catalog, procs)
	a.engine = engine.New(engine.Config{
		Procedures: catalog,
		Latency:    cfg.Engine.Latency,
		Logger:     logger,
	})

	env, err := cel.NewSelectorEnv()
	if err != nil {
		return nil, fmt.Errorf("selector env: %w", err)
	}
	compiler := cel.NewCompiler(env)

	roles := a.node.Roles()
	store := a.node.Store()

	a.coordinator, err = coordinator.New(coordinator.Config{
		SystemDatabase: cfg.Triggers.SystemDatabase,
		Enabled:        cfg.Triggers.Enabled,
		Guard:          routing.NewGuard(cfg.Triggers.SystemDatabase, roles),
		Validator:      policy.DefaultValidator(a.engine),
		Store:          store,
		Selectors:      compiler,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	a.registry, err = dispatcher.NewRegistry(dispatcher.Config{
		SystemDatabase: cfg.Triggers.SystemDatabase,
		Enabled:        cfg.Triggers.Enabled,
		Lister:         store,
		Executor:       a.engine,
		Compiler:       compiler,
		AsyncWorkers:   cfg.Triggers.AsyncWorkers,
		ExecTimeout:    cfg.Triggers.ExecTimeout,
		OnOutcome:      a.logOutcome,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	for _, db := range cfg.Triggers.Databases {
		if _, err := a.registry.Start(db); err != nil {
			return nil, fmt.Errorf("start dispatch for %s: %w", db, err)
		}
	}
	a.node.FSM().RegisterCallback(a.registry.OnChange)
	a.node.FSM().RegisterRestoreCallback(a.registry.InvalidateAll)

	if cfg.Sweeper.Enabled {
		a.sweeper = fsm.NewSweeper(a.node.FSM(), a.node.Raft(), a.registry, fsm.SweeperConfig{
			CheckInterval: cfg.Sweeper.Interval,
			ApplyTimeout:  cfg.Node.ApplyTimeout,
			Logger:        logger,
		})
	}

	svc := grpcapi.NewTriggerService(a.coordinator, roles, cfg.Node.ID)
	a.server, err = grpcapi.Listen(cfg.GRPC.Addr, svc, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) logOutcome(o dispatcher.Outcome) {
	if o.Err != nil {
		a.logger.Warn("async trigger failed", "database", o.Database, "trigger", o.Name, "error", o.Err)
		return
	}
	a.logger.Debug("async trigger done", "database", o.Database, "trigger", o.Name)
}

func (a *App) Node() *cluster.Node                   { return a.node }
func (a *App) Coordinator() *coordinator.Coordinator { return a.coordinator }
func (a *App) Registry() *dispatcher.Registry        { return a.registry }
func (a *App) Engine() *engine.KeywordEngine         { return a.engine }
func (a *App) Sweeper() *fsm.Sweeper                 { return a.sweeper }
func (a *App) Addr() string                          { return a.server.Addr() }

// Run serves gRPC until ctx ends, then shuts every component down.
func (a *App) Run(ctx context.Context) error {
	if a.sweeper != nil {
		a.sweeper.Start()
	}
	a.logger.Info("node running", "node_id", a.cfg.Node.ID, "grpc_addr", a.Addr(), "raft_addr", a.cfg.Node.RaftAddr)

	serveErr := a.server.Serve(ctx)
	closeErr := a.Close(context.WithoutCancel(ctx))
	return errors.Join(serveErr, closeErr)
}

// Close stops background work and releases the node. It is safe on a
// partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		a.server.Close()
	}
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.registry != nil {
		a.registry.Close()
	}
	if a.node != nil {
		if err := a.node.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		a.node = nil
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
		a.shutdownTracing = nil
	}
	return errors.Join(errs...)
}
