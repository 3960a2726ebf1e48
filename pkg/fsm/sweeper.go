package fsm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/raft"

	"github.com/unijord/unitrigger/pkg/command"
)

// DatabaseCatalog reports whether a target database still exists on the host.
type DatabaseCatalog interface {
	Exists(ctx context.Context, database string) (bool, error)
}

// RaftApplier is the subset of *raft.Raft the sweeper needs.
type RaftApplier interface {
	Apply(cmd []byte, timeout time.Duration) raft.ApplyFuture
	State() raft.RaftState
}

// SweeperConfig configures the orphan sweeper.
type SweeperConfig struct {
	CheckInterval time.Duration
	ApplyTimeout  time.Duration
	Logger        *slog.Logger
}

// DefaultSweeperConfig returns sensible defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		CheckInterval: time.Minute,
		ApplyTimeout:  10 * time.Second,
	}
}

// Sweeper removes the triggers of databases that no longer exist. It only
// acts on the leader; followers receive the resulting DROP_ALL through the log.
type Sweeper struct {
	config  SweeperConfig
	fsm     *FSM
	raft    RaftApplier
	catalog DatabaseCatalog

	cmdBuilder *command.Builder
	logger     *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSweeper(fsm *FSM, r RaftApplier, catalog DatabaseCatalog, config SweeperConfig) *Sweeper {
	if config.CheckInterval == 0 {
		config.CheckInterval = time.Minute
	}
	if config.ApplyTimeout == 0 {
		config.ApplyTimeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Sweeper{
		config:     config,
		fsm:        fsm,
		raft:       r,
		catalog:    catalog,
		cmdBuilder: command.NewCommandBuilder(),
		logger:     config.Logger.With("component", "sweeper"),
		stopCh:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// sweep returns the databases it issued DROP_ALL for.
func (s *Sweeper) sweep(ctx context.Context) []string {
	if s.raft.State() != raft.Leader {
		return nil
	}

	dbs, err := s.fsm.Databases()
	if err != nil {
		s.logger.Error("failed to list trigger databases", "error", err)
		return nil
	}

	var dropped []string
	for _, db := range dbs {
		if ctx.Err() != nil {
			return dropped
		}
		exists, err := s.catalog.Exists(ctx, db)
		if err != nil {
			s.logger.Warn("database lookup failed", "database", db, "error", err)
			continue
		}
		if exists {
			continue
		}

		s.logger.Info("dropping triggers of removed database", "database", db)
		future := s.raft.Apply(s.cmdBuilder.BuildDropAll(db), s.config.ApplyTimeout)
		if err := future.Error(); err != nil {
			s.logger.Error("failed to apply drop all",
				"database", db,
				"error", err,
			)
			continue
		}
		dropped = append(dropped, db)
	}
	return dropped
}

// ForceCheck runs one sweep immediately.
func (s *Sweeper) ForceCheck(ctx context.Context) []string {
	select {
	case <-ctx.Done():
		return nil
	default:
		return s.sweep(ctx)
	}
}
