package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unijord/unitrigger/internal/config"
	"github.com/unijord/unitrigger/pkg/transport/grpcapi"
	"github.com/unijord/unitrigger/pkg/trigger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Node.DataDir = t.TempDir()
	cfg.Node.RaftAddr = "127.0.0.1:0"
	cfg.GRPC.Addr = "127.0.0.1:0"
	cfg.Triggers.Databases = []string{"movies"}
	cfg.Log.Level = "error"
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) (*App, *grpcapi.Client) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(ctx, cfg, logger)
	require.NoError(t, err)

	waitCtx, waitCancel := context.WithTimeout(ctx, 10*time.Second)
	defer waitCancel()
	_, err = a.Node().WaitForLeader(waitCtx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	client, err := grpcapi.Dial(a.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return a, client
}

func TestApp_InstallAndDispatch(t *testing.T) {
	a, client := startApp(t, testConfig(t))
	ctx := context.Background()

	res, err := client.Install(ctx, "movies", "logPerson", "MATCH (p:Person) SET p.seen = true",
		map[string]any{"assignedLabels": []string{"Person"}}, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)

	commit := trigger.ChangeSummary{
		Database:       "movies",
		TransactionID:  1,
		CommitTime:     time.Now(),
		CreatedNodes:   []int64{1},
		AssignedLabels: map[string][]int64{"Person": {1}},
	}
	outcomes, err := a.Registry().AfterCommit(ctx, commit)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "logPerson", outcomes[0].Name)
	assert.Len(t, a.Engine().Executions(), 1)

	_, err = client.Stop(ctx, "movies", "logPerson")
	require.NoError(t, err)
	outcomes, err = a.Registry().AfterCommit(ctx, commit)
	require.NoError(t, err)
	assert.Empty(t, outcomes, "paused trigger is skipped after the change callback")

	leader, err := client.Leader(ctx)
	require.NoError(t, err)
	assert.True(t, leader.IsLeader)
	assert.Equal(t, "node-1", leader.NodeID)
}

func TestApp_SweeperDropsUnstartedDatabases(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sweeper.Enabled = true
	cfg.Sweeper.Interval = time.Hour
	a, client := startApp(t, cfg)
	ctx := context.Background()

	for _, db := range []string{"movies", "gone"} {
		_, err := client.Install(ctx, db, "t", "MATCH (n) RETURN n", nil, nil)
		require.NoError(t, err)
	}

	swept := a.Sweeper().ForceCheck(ctx)
	assert.Equal(t, []string{"gone"}, swept)

	shown, err := client.Show(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, shown)
	shown, err = client.Show(ctx, "movies")
	require.NoError(t, err)
	assert.Len(t, shown, 1)
}

func TestNew_InvalidPeer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Node.Peers = []string{"broken"}
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
