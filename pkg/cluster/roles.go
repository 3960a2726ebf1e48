package cluster

import (
	"github.com/hashicorp/raft"
)

// RaftState is the subset of *raft.Raft that determines roles.
type RaftState interface {
	State() raft.RaftState
	LeaderWithID() (raft.ServerAddress, raft.ServerID)
}

// RaftRoles answers routing questions from the local raft state. Only the
// system database is replicated by this group.
type RaftRoles struct {
	raft           RaftState
	systemDatabase string
	grpcAddrs      map[raft.ServerID]string
}

func NewRaftRoles(r RaftState, systemDatabase string, peers []Peer) *RaftRoles {
	addrs := make(map[raft.ServerID]string, len(peers))
	for _, p := range peers {
		if p.GRPCAddr != "" {
			addrs[raft.ServerID(p.ID)] = p.GRPCAddr
		}
	}
	return &RaftRoles{raft: r, systemDatabase: systemDatabase, grpcAddrs: addrs}
}

func (r *RaftRoles) IsWritableLeader(database string) bool {
	return database == r.systemDatabase && r.raft.State() == raft.Leader
}

// LeaderAddr prefers the leader's client address and falls back to its raft
// address. Empty while no leader is known.
func (r *RaftRoles) LeaderAddr(database string) string {
	if database != r.systemDatabase {
		return ""
	}
	addr, id := r.raft.LeaderWithID()
	if a, ok := r.grpcAddrs[id]; ok {
		return a
	}
	return string(addr)
}
