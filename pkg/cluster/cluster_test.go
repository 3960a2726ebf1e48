package cluster

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unijord/unitrigger/pkg/trigger"
)

func fastRaftConfig() *raft.Config {
	c := raft.DefaultConfig()
	c.HeartbeatTimeout = 50 * time.Millisecond
	c.ElectionTimeout = 50 * time.Millisecond
	c.LeaderLeaseTimeout = 50 * time.Millisecond
	c.CommitTimeout = 5 * time.Millisecond
	return c
}

type testCluster struct {
	nodes      []*Node
	transports []*raft.InmemTransport
}

// newInmemCluster starts size nodes on in-memory transports; node 0
// bootstraps the group.
func newInmemCluster(t *testing.T, size int) *testCluster {
	t.Helper()

	tc := &testCluster{}
	peers := make([]Peer, size)
	for i := 0; i < size; i++ {
		addr, trans := raft.NewInmemTransport("")
		tc.transports = append(tc.transports, trans)
		peers[i] = Peer{ID: fmt.Sprintf("node-%d", i), RaftAddr: string(addr), GRPCAddr: fmt.Sprintf("10.0.0.%d:7000", i)}
	}
	for i, a := range tc.transports {
		for j, b := range tc.transports {
			if i != j {
				a.Connect(b.LocalAddr(), b)
			}
		}
	}

	for i := 0; i < size; i++ {
		cfg := Config{
			NodeID:       peers[i].ID,
			DataDir:      filepath.Join(t.TempDir(), peers[i].ID),
			Bootstrap:    i == 0,
			Peers:        peers,
			ApplyTimeout: 2 * time.Second,
			RaftConfig:   fastRaftConfig(),
		}
		cfg.setDefaults()
		require.NoError(t, mkdir(cfg.DataDir))

		store := raft.NewInmemStore()
		n, err := newNode(cfg, hclog.NewNullLogger(), store, store, raft.NewInmemSnapshotStore(), tc.transports[i])
		require.NoError(t, err)
		tc.nodes = append(tc.nodes, n)
	}
	t.Cleanup(func() {
		for _, n := range tc.nodes {
			n.Shutdown()
		}
	})
	return tc
}

func (tc *testCluster) leader(t *testing.T) (*Node, []*Node) {
	t.Helper()
	var leader *Node
	require.Eventually(t, func() bool {
		for _, n := range tc.nodes {
			if n.Raft().State() == raft.Leader {
				leader = n
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	var followers []*Node
	for _, n := range tc.nodes {
		if n != leader {
			followers = append(followers, n)
		}
	}
	return leader, followers
}

func TestParsePeer(t *testing.T) {
	p, err := ParsePeer("n1=127.0.0.1:7001=127.0.0.1:9001")
	require.NoError(t, err)
	assert.Equal(t, Peer{ID: "n1", RaftAddr: "127.0.0.1:7001", GRPCAddr: "127.0.0.1:9001"}, p)

	p, err = ParsePeer("n2=127.0.0.1:7002")
	require.NoError(t, err)
	assert.Empty(t, p.GRPCAddr)

	for _, bad := range []string{"", "n1", "=addr", "a=b=c=d"} {
		_, err := ParsePeer(bad)
		assert.Error(t, err, bad)
	}
}

func TestSingleNode_StoreRoundTrip(t *testing.T) {
	tc := newInmemCluster(t, 1)
	leader, _ := tc.leader(t)
	ctx := context.Background()

	_, err := leader.WaitForLeader(ctx)
	require.NoError(t, err)
	assert.True(t, leader.Roles().IsWritableLeader(trigger.SystemDatabase))
	assert.False(t, leader.Roles().IsWritableLeader("movies"))

	store := leader.Store()
	def, err := store.Upsert(ctx, trigger.Definition{
		Database:  "movies",
		Name:      "logPerson",
		Statement: "MATCH (p:Person) SET p.seen = true",
		Selector:  trigger.Selector{AssignedLabels: []string{"Person"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "logPerson", def.Name)
	assert.False(t, def.InstalledAt.IsZero())

	got, found, err := store.SetPaused(ctx, "movies", "logPerson", true)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Paused)

	defs, err := store.List(ctx, "movies")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.True(t, defs[0].Paused)

	_, found, err = store.Remove(ctx, "movies", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := store.RemoveAll(ctx, "movies")
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	dbs, err := store.Databases(ctx)
	require.NoError(t, err)
	assert.Empty(t, dbs)
}

func TestThreeNodes_ReplicationAndRouting(t *testing.T) {
	tc := newInmemCluster(t, 3)
	leader, followers := tc.leader(t)
	ctx := context.Background()

	_, err := leader.Store().Upsert(ctx, trigger.Definition{Database: "movies", Name: "t", Statement: "RETURN 1"})
	require.NoError(t, err)

	for _, f := range followers {
		require.Eventually(t, func() bool {
			defs, err := f.FSM().List("movies")
			return err == nil && len(defs) == 1
		}, 5*time.Second, 20*time.Millisecond)

		assert.False(t, f.Roles().IsWritableLeader(trigger.SystemDatabase))

		_, err := f.Store().Upsert(ctx, trigger.Definition{Database: "movies", Name: "x", Statement: "RETURN 1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, trigger.ErrRouting)

		var te *trigger.Error
		require.ErrorAs(t, err, &te)
		assert.Equal(t, leader.Roles().LeaderAddr(trigger.SystemDatabase), te.LeaderAddr)
		assert.Contains(t, te.LeaderAddr, ":7000", "grpc address of the leader is reported")
	}
}

func TestRaftStore_ExpiredContext(t *testing.T) {
	tc := newInmemCluster(t, 1)
	leader, _ := tc.leader(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := leader.Store().Upsert(ctx, trigger.Definition{Database: "movies", Name: "t", Statement: "RETURN 1"})
	assert.ErrorIs(t, err, trigger.ErrCollaboratorTimeout)
}

type fakeRaftState struct {
	state raft.RaftState
	addr  raft.ServerAddress
	id    raft.ServerID
}

func (f fakeRaftState) State() raft.RaftState { return f.state }
func (f fakeRaftState) LeaderWithID() (raft.ServerAddress, raft.ServerID) {
	return f.addr, f.id
}

func TestRaftRoles(t *testing.T) {
	peers := []Peer{{ID: "a", RaftAddr: "r-a", GRPCAddr: "g-a"}, {ID: "b", RaftAddr: "r-b"}}

	r := NewRaftRoles(fakeRaftState{state: raft.Follower, addr: "r-a", id: "a"}, "system", peers)
	assert.False(t, r.IsWritableLeader("system"))
	assert.Equal(t, "g-a", r.LeaderAddr("system"))
	assert.Empty(t, r.LeaderAddr("movies"))

	r = NewRaftRoles(fakeRaftState{state: raft.Leader, addr: "r-b", id: "b"}, "system", peers)
	assert.True(t, r.IsWritableLeader("system"))
	assert.Equal(t, "r-b", r.LeaderAddr("system"))

	r = NewRaftRoles(fakeRaftState{state: raft.Candidate}, "system", peers)
	assert.Empty(t, r.LeaderAddr("system"))
}
