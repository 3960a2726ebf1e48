// Package cluster runs the raft group behind the system database and adapts
// it to the registry's store and routing interfaces.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/unijord/unitrigger/pkg/fsm"
	"github.com/unijord/unitrigger/pkg/trigger"
)

// Peer is a voting member of the raft group.
type Peer struct {
	ID       string
	RaftAddr string
	// GRPCAddr is reported to clients that hit a follower.
	GRPCAddr string
}

// ParsePeer parses "id=raftAddr" or "id=raftAddr=grpcAddr".
func ParsePeer(s string) (Peer, error) {
	parts := strings.Split(s, "=")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Peer{}, fmt.Errorf("invalid peer %q: want id=raft_addr[=grpc_addr]", s)
	}
	p := Peer{ID: parts[0], RaftAddr: parts[1]}
	if len(parts) == 3 {
		p.GRPCAddr = parts[2]
	}
	return p, nil
}

type Config struct {
	NodeID   string
	DataDir  string
	RaftAddr string
	GRPCAddr string
	// Bootstrap forms a new cluster from this node and Peers when no raft
	// state exists yet.
	Bootstrap      bool
	Peers          []Peer
	ApplyTimeout   time.Duration
	SystemDatabase string
	Logger         *slog.Logger
	LogLevel       string
	// RaftConfig overrides raft.DefaultConfig when set; LocalID and Logger
	// are always filled in.
	RaftConfig *raft.Config
}

func (c *Config) setDefaults() {
	if c.ApplyTimeout == 0 {
		c.ApplyTimeout = 5 * time.Second
	}
	if c.SystemDatabase == "" {
		c.SystemDatabase = trigger.SystemDatabase
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Node owns the raft instance and the FSM of one replica.
type Node struct {
	config Config
	raft   *raft.Raft
	fsm    *fsm.FSM
	logger *slog.Logger

	closers []func() error
}

// NewNode starts a replica with bbolt log storage, file snapshots and a TCP
// transport.
func NewNode(cfg Config) (*Node, error) {
	cfg.setDefaults()
	if cfg.NodeID == "" {
		return nil, errors.New("node ID is required")
	}
	if cfg.DataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	hlog := newRaftLogger(cfg.Logger, cfg.LogLevel)

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft.db"))
	if err != nil {
		return nil, fmt.Errorf("create log store: %w", err)
	}
	snapshots, err := raft.NewFileSnapshotStoreWithLogger(cfg.DataDir, 2, hlog)
	if err != nil {
		logStore.Close()
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}
	transport, err := raft.NewTCPTransportWithLogger(cfg.RaftAddr, nil, 3, 10*time.Second, hlog)
	if err != nil {
		logStore.Close()
		return nil, fmt.Errorf("create transport: %w", err)
	}

	n, err := newNode(cfg, hlog, logStore, logStore, snapshots, transport)
	if err != nil {
		transport.Close()
		logStore.Close()
		return nil, err
	}
	n.closers = append(n.closers, transport.Close, logStore.Close)
	return n, nil
}

func newNode(cfg Config, hlog hclog.Logger, logs raft.LogStore, stable raft.StableStore,
	snaps raft.SnapshotStore, transport raft.Transport) (*Node, error) {
	f, err := fsm.New(fsm.Config{
		DBPath: filepath.Join(cfg.DataDir, "fsm.db"),
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create fsm: %w", err)
	}

	raftConfig := raft.DefaultConfig()
	if cfg.RaftConfig != nil {
		c := *cfg.RaftConfig
		raftConfig = &c
	}
	raftConfig.LocalID = raft.ServerID(cfg.NodeID)
	raftConfig.Logger = hlog

	r, err := raft.NewRaft(raftConfig, f, logs, stable, snaps, transport)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create raft: %w", err)
	}

	n := &Node{
		config: cfg,
		raft:   r,
		fsm:    f,
		logger: cfg.Logger.With("component", "cluster", "node_id", cfg.NodeID),
	}

	if cfg.Bootstrap {
		if err := n.bootstrap(logs, stable, snaps, transport.LocalAddr()); err != nil {
			n.Shutdown()
			return nil, err
		}
	}
	return n, nil
}

func (n *Node) bootstrap(logs raft.LogStore, stable raft.StableStore, snaps raft.SnapshotStore, local raft.ServerAddress) error {
	existing, err := raft.HasExistingState(logs, stable, snaps)
	if err != nil {
		return fmt.Errorf("check raft state: %w", err)
	}
	if existing {
		n.logger.Info("raft state present, skipping bootstrap")
		return nil
	}

	servers := []raft.Server{{ID: raft.ServerID(n.config.NodeID), Address: local}}
	for _, p := range n.config.Peers {
		if p.ID == n.config.NodeID {
			continue
		}
		servers = append(servers, raft.Server{ID: raft.ServerID(p.ID), Address: raft.ServerAddress(p.RaftAddr)})
	}
	if err := n.raft.BootstrapCluster(raft.Configuration{Servers: servers}).Error(); err != nil {
		return fmt.Errorf("bootstrap cluster: %w", err)
	}
	n.logger.Info("bootstrapped cluster", "servers", len(servers))
	return nil
}

func (n *Node) Raft() *raft.Raft { return n.raft }
func (n *Node) FSM() *fsm.FSM    { return n.fsm }

// Roles returns the routing view of this replica.
func (n *Node) Roles() *RaftRoles {
	return NewRaftRoles(n.raft, n.config.SystemDatabase, n.config.Peers)
}

// Store returns the replicated trigger store.
func (n *Node) Store() *RaftStore {
	return NewRaftStore(n.raft, n.fsm, n.Roles(), n.config.ApplyTimeout)
}

// WaitForLeader blocks until the group has a leader or ctx ends.
func (n *Node) WaitForLeader(ctx context.Context) (string, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, id := n.raft.LeaderWithID(); id != "" {
			return string(id), nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// Shutdown stops raft and closes every store.
func (n *Node) Shutdown() error {
	var errs []error
	if err := n.raft.Shutdown().Error(); err != nil {
		errs = append(errs, fmt.Errorf("raft shutdown: %w", err))
	}
	if err := n.fsm.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close fsm: %w", err))
	}
	for _, c := range n.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
