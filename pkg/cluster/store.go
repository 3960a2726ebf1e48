package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/raft"

	"github.com/unijord/unitrigger/pkg/command"
	"github.com/unijord/unitrigger/pkg/fsm"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

// leaderLocator is the part of the routing view RaftStore reports in errors.
type leaderLocator interface {
	LeaderAddr(database string) string
}

// RaftStore is a triggerstore.Store whose mutations go through the raft log.
// Reads are served from the local FSM.
type RaftStore struct {
	raft    fsm.RaftApplier
	fsm     *fsm.FSM
	leader  leaderLocator
	builder *command.Builder
	timeout time.Duration
	system  string
}

func NewRaftStore(r fsm.RaftApplier, f *fsm.FSM, roles *RaftRoles, timeout time.Duration) *RaftStore {
	return &RaftStore{
		raft:    r,
		fsm:     f,
		leader:  roles,
		builder: command.NewCommandBuilder(),
		timeout: timeout,
		system:  roles.systemDatabase,
	}
}

func (s *RaftStore) apply(ctx context.Context, op string, data []byte) (fsm.ApplyResult, error) {
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil || timeout <= 0 {
		return fsm.ApplyResult{}, trigger.Wrap(trigger.KindCollaboratorTimeout, op, trigger.MsgTimeout, context.DeadlineExceeded)
	}

	future := s.raft.Apply(data, timeout)
	if err := future.Error(); err != nil {
		return fsm.ApplyResult{}, s.mapApplyError(op, err)
	}
	res, ok := future.Response().(fsm.ApplyResult)
	if !ok {
		return fsm.ApplyResult{}, trigger.NewError(trigger.KindInternal, op, fmt.Sprintf("unexpected apply response %T", future.Response()))
	}
	if res.Err != nil {
		return fsm.ApplyResult{}, trigger.Wrap(trigger.KindInternal, op, "apply failed", res.Err)
	}
	return res, nil
}

func (s *RaftStore) mapApplyError(op string, err error) error {
	switch {
	case errors.Is(err, raft.ErrNotLeader),
		errors.Is(err, raft.ErrLeadershipLost),
		errors.Is(err, raft.ErrLeadershipTransferInProgress),
		errors.Is(err, raft.ErrRaftShutdown):
		e := trigger.Wrap(trigger.KindRouting, op, trigger.MsgNotRouted, err)
		e.LeaderAddr = s.leader.LeaderAddr(s.system)
		return e
	case errors.Is(err, raft.ErrEnqueueTimeout):
		return trigger.Wrap(trigger.KindCollaboratorTimeout, op, trigger.MsgTimeout, err)
	default:
		return trigger.Wrap(trigger.KindInternal, op, "raft apply failed", err)
	}
}

func first(res fsm.ApplyResult) (trigger.Definition, bool) {
	if !res.Found || len(res.Definitions) == 0 {
		return trigger.Definition{}, false
	}
	return res.Definitions[0], true
}

// Upsert replicates an INSTALL. The install time is stamped here, on the
// leader, and carried in the entry.
func (s *RaftStore) Upsert(ctx context.Context, def trigger.Definition) (trigger.Definition, error) {
	data, err := s.builder.BuildInstall(def)
	if err != nil {
		return trigger.Definition{}, trigger.Wrap(trigger.KindInvalidArgument, "install", "cannot encode trigger", err)
	}
	res, err := s.apply(ctx, "install", data)
	if err != nil {
		return trigger.Definition{}, err
	}
	stored, _ := first(res)
	return stored, nil
}

func (s *RaftStore) Remove(ctx context.Context, database, name string) (trigger.Definition, bool, error) {
	res, err := s.apply(ctx, "drop", s.builder.BuildDrop(database, name))
	if err != nil {
		return trigger.Definition{}, false, err
	}
	def, found := first(res)
	return def, found, nil
}

func (s *RaftStore) RemoveAll(ctx context.Context, database string) ([]trigger.Definition, error) {
	res, err := s.apply(ctx, "dropAll", s.builder.BuildDropAll(database))
	if err != nil {
		return nil, err
	}
	return res.Definitions, nil
}

func (s *RaftStore) SetPaused(ctx context.Context, database, name string, paused bool) (trigger.Definition, bool, error) {
	op := "start"
	if paused {
		op = "stop"
	}
	res, err := s.apply(ctx, op, s.builder.BuildSetPaused(database, name, paused))
	if err != nil {
		return trigger.Definition{}, false, err
	}
	def, found := first(res)
	return def, found, nil
}

func (s *RaftStore) List(ctx context.Context, database string) ([]trigger.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fsm.List(database)
}

func (s *RaftStore) Databases(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fsm.Databases()
}

var _ triggerstore.Store = (*RaftStore)(nil)
