// Package routing decides whether a lifecycle operation may run on this
// server given the caller's current database and the replica's role.
package routing

import (
	"sync/atomic"

	"github.com/unijord/unitrigger/pkg/trigger"
)

// RoleProvider reports the replication role of this server per database.
type RoleProvider interface {
	IsWritableLeader(database string) bool
	// LeaderAddr is the address clients should retry against, or "".
	LeaderAddr(database string) string
}

// Guard checks routing preconditions. It has no state of its own.
type Guard struct {
	SystemDatabase string
	Roles          RoleProvider
}

func NewGuard(systemDatabase string, roles RoleProvider) Guard {
	if systemDatabase == "" {
		systemDatabase = trigger.SystemDatabase
	}
	return Guard{SystemDatabase: systemDatabase, Roles: roles}
}

// AssertWritableForMutation fails with a routing error unless the caller is
// on the system database and this server is its writable leader.
func (g Guard) AssertWritableForMutation(op, current string) error {
	if current == g.SystemDatabase && g.Roles.IsWritableLeader(g.SystemDatabase) {
		return nil
	}
	e := trigger.NewError(trigger.KindRouting, op, trigger.MsgNotRouted)
	e.LeaderAddr = g.Roles.LeaderAddr(g.SystemDatabase)
	return e
}

// AssertReadable fails with a scope error unless the caller is on the system
// database. Any replica may serve reads.
func (g Guard) AssertReadable(op, current string) error {
	if current != g.SystemDatabase {
		return trigger.NewError(trigger.KindScope, op, trigger.MsgNotSystemDatabase)
	}
	return nil
}

// AssertValidTarget rejects the system database as a trigger target.
// Names compare exactly, as everywhere else in the guard and the store.
func (g Guard) AssertValidTarget(op, database string) error {
	if err := trigger.ValidateDatabase(database); err != nil {
		return trigger.Wrap(trigger.KindInvalidArgument, op, "invalid database", err)
	}
	if database == g.SystemDatabase {
		return trigger.NewError(trigger.KindInvalidTarget, op, trigger.MsgBadTarget)
	}
	return nil
}

// AlwaysLeader is a RoleProvider for single-node setups and tests.
type AlwaysLeader struct{}

func (AlwaysLeader) IsWritableLeader(string) bool { return true }
func (AlwaysLeader) LeaderAddr(string) string     { return "" }

// AlwaysFollower never accepts writes and reports Leader as the leader address.
type AlwaysFollower struct {
	Leader string
}

func (AlwaysFollower) IsWritableLeader(string) bool { return false }
func (f AlwaysFollower) LeaderAddr(string) string   { return f.Leader }

// Flapping alternates between leader and follower on every query, starting
// as leader.
type Flapping struct {
	calls atomic.Uint64
}

func (f *Flapping) IsWritableLeader(string) bool {
	return f.calls.Add(1)%2 == 1
}

func (f *Flapping) LeaderAddr(string) string { return "" }

// StaticRoles maps database to writable-leader status.
type StaticRoles map[string]bool

func (s StaticRoles) IsWritableLeader(database string) bool { return s[database] }
func (s StaticRoles) LeaderAddr(string) string              { return "" }
