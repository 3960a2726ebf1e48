package grpcapi

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"

	"github.com/unijord/unitrigger/pkg/coordinator"
	"github.com/unijord/unitrigger/pkg/engine"
	unitriggerv1 "github.com/unijord/unitrigger/pkg/gen/go/proto/unitrigger/v1"
	"github.com/unijord/unitrigger/pkg/policy"
	"github.com/unijord/unitrigger/pkg/routing"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

type testEnv struct {
	client *Client
	conn   *grpc.ClientConn
}

func startServer(t *testing.T, roles routing.RoleProvider) *testEnv {
	t.Helper()

	store, err := triggerstore.OpenBoltStore(filepath.Join(t.TempDir(), "triggers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	coord, err := coordinator.New(coordinator.Config{
		Enabled:   true,
		Guard:     routing.NewGuard(trigger.SystemDatabase, roles),
		Validator: policy.DefaultValidator(engine.New(engine.Config{})),
		Store:     store,
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(lis, NewTriggerService(coord, roles, "node-1"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{client: NewClient(conn), conn: conn}
}

func TestLifecycleOverGRPC(t *testing.T) {
	env := startServer(t, routing.AlwaysLeader{})
	ctx := context.Background()
	c := env.client

	res, err := c.Install(ctx, "movies", "logPerson", "MATCH (p:Person) SET p.seen = true",
		map[string]any{"assignedLabels": []string{"Person"}},
		map[string]any{"params": map[string]any{"limit": 5}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "logPerson", res[0].Name)
	assert.Equal(t, []string{"Person"}, res[0].Selector.AssignedLabels)
	assert.EqualValues(t, 5, res[0].Params["limit"])
	require.NotNil(t, res[0].InstalledAt)

	res, err = c.Stop(ctx, "movies", "logPerson")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Paused)

	res, err = c.Start(ctx, "movies", "logPerson")
	require.NoError(t, err)
	assert.False(t, res[0].Paused)

	res, err = c.Show(ctx, "movies")
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = c.Drop(ctx, "movies", "missing")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	res, err = c.DropAll(ctx, "movies")
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = c.Show(ctx, "movies")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestErrorsOverGRPC(t *testing.T) {
	env := startServer(t, routing.AlwaysLeader{})
	ctx := context.Background()

	_, err := env.client.Install(ctx, "system", "t", "MATCH (n) RETURN n", nil, nil)
	assert.ErrorIs(t, err, trigger.ErrInvalidTarget)

	_, err = env.client.Install(ctx, "movies", "t", "CALL db.createIndex('x')", nil, nil)
	assert.ErrorIs(t, err, trigger.ErrMode)
	assert.Contains(t, err.Error(), trigger.MsgModes)

	_, err = env.client.Install(ctx, "movies", "t", "CREATE INDEX i FOR (n:N) ON (n.x)", nil, nil)
	assert.ErrorIs(t, err, trigger.ErrQueryType)

	_, err = env.client.WithDatabase("movies").Show(ctx, "movies")
	assert.ErrorIs(t, err, trigger.ErrScope)

	_, err = env.client.WithDatabase("movies").Drop(ctx, "movies", "t")
	assert.ErrorIs(t, err, trigger.ErrRouting)
}

func TestFollowerReportsLeader(t *testing.T) {
	env := startServer(t, routing.AlwaysFollower{Leader: "10.0.0.1:7000"})
	ctx := context.Background()

	_, err := env.client.Install(ctx, "movies", "t", "MATCH (n) RETURN n", nil, nil)
	require.Error(t, err)
	assert.True(t, trigger.IsNotLeader(err))
	var te *trigger.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "10.0.0.1:7000", te.LeaderAddr)
	assert.Equal(t, "install", te.Op)

	leader, err := env.client.Leader(ctx)
	require.NoError(t, err)
	assert.Equal(t, "node-1", leader.NodeID)
	assert.False(t, leader.IsLeader)
	assert.Equal(t, "10.0.0.1:7000", leader.LeaderAddr)

	shown, err := env.client.Show(ctx, "movies")
	require.NoError(t, err)
	assert.Empty(t, shown)
}

func TestRequestIDAndHealth(t *testing.T) {
	env := startServer(t, routing.AlwaysLeader{})
	rpc := unitriggerv1.NewTriggerServiceClient(env.conn)
	req := &unitriggerv1.DatabaseRequest{Database: "movies"}

	var header metadata.MD
	ctx := metadata.AppendToOutgoingContext(context.Background(), MetadataRequestID, "req-1")
	_, err := rpc.Show(ctx, req, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-1"}, header.Get(MetadataRequestID))

	header = nil
	_, err = rpc.Show(context.Background(), req, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get(MetadataRequestID), 1)
	assert.NotEmpty(t, header.Get(MetadataRequestID)[0])

	hc, err := healthpb.NewHealthClient(env.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.GetStatus())
}

func TestTriggerProtoConversion(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 30, 0, 123456000, time.UTC)
	info := trigger.Info{
		Name:      "logPerson",
		Database:  "movies",
		Statement: "MATCH (p:Person) SET p.seen = true",
		Selector: trigger.Selector{
			Phase:          trigger.PhaseAfter,
			AssignedLabels: []string{"Person"},
			Condition:      "size(createdNodes) > 1",
		},
		Params:      map[string]any{"limit": int64(5), "label": "Person", "tags": []any{"a", "b"}},
		Paused:      true,
		InstalledAt: &at,
	}

	msg, err := triggerToProto(info)
	require.NoError(t, err)
	data, err := proto.Marshal(msg)
	require.NoError(t, err)
	var wire unitriggerv1.Trigger
	require.NoError(t, proto.Unmarshal(data, &wire))

	got, err := triggerFromProto(&wire)
	require.NoError(t, err)
	assert.Equal(t, info.Name, got.Name)
	assert.Equal(t, info.Database, got.Database)
	assert.Equal(t, info.Statement, got.Statement)
	assert.Equal(t, info.Selector, got.Selector)
	assert.Equal(t, map[string]any{"limit": float64(5), "label": "Person", "tags": []any{"a", "b"}}, got.Params)
	assert.True(t, got.Paused)
	require.NotNil(t, got.InstalledAt)
	assert.True(t, at.Equal(*got.InstalledAt))

	t.Run("empty", func(t *testing.T) {
		msg, err := triggerToProto(trigger.Info{Name: "t", Database: "movies"})
		require.NoError(t, err)
		assert.Nil(t, msg.GetInstalledAt())
		got, err := triggerFromProto(msg)
		require.NoError(t, err)
		assert.Equal(t, trigger.Selector{}, got.Selector)
		assert.NotNil(t, got.Params)
		assert.Empty(t, got.Params)
		assert.Nil(t, got.InstalledAt)
	})
}

func TestJSONStruct(t *testing.T) {
	s, err := jsonStruct(map[string]any{"assignedLabels": []string{"Person"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"assignedLabels": []any{"Person"}}, s.AsMap())

	_, err = jsonStruct([]int{1})
	assert.Error(t, err)

	none, err := optionalStruct(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Nil(t, structMap(nil))
}
