package dispatcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unijord/unitrigger/pkg/engine"
	fbtrigger "github.com/unijord/unitrigger/pkg/gen/go/fb/trigger"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

var errBoom = errors.New("boom")

type fixture struct {
	store    *triggerstore.BoltStore
	engine   *engine.KeywordEngine
	registry *Registry

	mu    sync.Mutex
	async []Outcome
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	store, err := triggerstore.OpenBoltStore(filepath.Join(t.TempDir(), "triggers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{store: store}
	f.engine = engine.New(engine.Config{Hook: func(_ context.Context, _, stmt string, _ map[string]any) error {
		switch stmt {
		case "CREATE (:Fail)":
			return errBoom
		case "CREATE (:Panic)":
			panic("engine bug")
		}
		return nil
	}})

	cfg := Config{
		Enabled:  true,
		Lister:   store,
		Executor: f.engine,
		OnOutcome: func(o Outcome) {
			f.mu.Lock()
			f.async = append(f.async, o)
			f.mu.Unlock()
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	f.registry, err = NewRegistry(cfg)
	require.NoError(t, err)
	t.Cleanup(f.registry.Close)
	return f
}

func (f *fixture) put(t *testing.T, def trigger.Definition) {
	t.Helper()
	if def.Database == "" {
		def.Database = "movies"
	}
	_, err := f.store.Upsert(context.Background(), def)
	require.NoError(t, err)
}

func personCreated() trigger.ChangeSummary {
	return trigger.ChangeSummary{
		Database:       "movies",
		TransactionID:  7,
		CommitTime:     time.UnixMilli(1_700_000_000_000),
		CreatedNodes:   []int64{1},
		AssignedLabels: map[string][]int64{"Person": {1}},
	}
}

func names(outcomes []Outcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Name
	}
	return out
}

func TestAfterCommit_MatchesActiveTriggers(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{Name: "a_person", Statement: "MATCH (p:Person) SET p.seen = true",
		Selector: trigger.Selector{AssignedLabels: []string{"Person"}}})
	f.put(t, trigger.Definition{Name: "b_movie", Statement: "MATCH (m:Movie) RETURN m",
		Selector: trigger.Selector{AssignedLabels: []string{"Movie"}}})
	f.put(t, trigger.Definition{Name: "c_paused", Statement: "MATCH (n) RETURN n", Paused: true})
	f.put(t, trigger.Definition{Name: "d_any", Statement: "MATCH (n) RETURN n"})
	f.put(t, trigger.Definition{Database: "music", Name: "elsewhere", Statement: "MATCH (n) RETURN n"})

	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	assert.Equal(t, []string{"a_person", "d_any"}, names(outcomes))
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
		assert.Equal(t, trigger.PhaseAfter, o.Phase)
	}
	assert.Len(t, f.engine.Executions(), 2)
}

func TestAfterCommit_ReservedBindingsWin(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{
		Name:      "t",
		Statement: "UNWIND $createdNodes AS id RETURN id, $limit",
		Params: trigger.Params{
			"limit":        trigger.Int(3),
			"databaseName": trigger.String("spoofed"),
		},
	})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	_, err = f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)

	execs := f.engine.Executions()
	require.Len(t, execs, 1)
	params := execs[0].Params
	assert.Equal(t, int64(3), params["limit"])
	assert.Equal(t, "movies", params["databaseName"])
	assert.Equal(t, int64(7), params["transactionId"])
	assert.Equal(t, []any{int64(1)}, params["createdNodes"])
	assert.Equal(t, []any{}, params["deletedNodes"])
}

func TestAfterCommit_IsolatesFailures(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{Name: "a_fails", Statement: "CREATE (:Fail)"})
	f.put(t, trigger.Definition{Name: "b_runs", Statement: "CREATE (:Audit)"})
	f.put(t, trigger.Definition{Name: "c_bad_condition", Statement: "MATCH (n) RETURN n",
		Selector: trigger.Selector{Condition: "createdNodes[5] == 1"}})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.ErrorIs(t, outcomes[0].Err, errBoom)
	assert.NoError(t, outcomes[1].Err)
	assert.Error(t, outcomes[2].Err, "evaluation error is reported")
	assert.Len(t, f.engine.Executions(), 1)
}

func TestAfterCommit_RecoversExecutorPanic(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{Name: "a", Statement: "CREATE (:Panic)"})
	f.put(t, trigger.Definition{Name: "b", Statement: "CREATE (:Audit)"})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	var outcomes []Outcome
	require.NotPanics(t, func() {
		outcomes, err = f.registry.AfterCommit(context.Background(), personCreated())
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names(outcomes))
	assert.ErrorIs(t, outcomes[0].Err, ErrPanicked)
	assert.ErrorContains(t, outcomes[0].Err, "engine bug")
	assert.NoError(t, outcomes[1].Err)
	assert.Len(t, f.engine.Executions(), 1)
}

func TestAfterCommit_RecoversAsyncExecutorPanic(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{Name: "a", Statement: "CREATE (:Panic)",
		Selector: trigger.Selector{Phase: trigger.PhaseAfterAsync}})
	f.put(t, trigger.Definition{Name: "b", Statement: "CREATE (:Audit)",
		Selector: trigger.Selector{Phase: trigger.PhaseAfterAsync}})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	f.registry.Stop("movies")

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.async, 2)
	byName := map[string]error{}
	for _, o := range f.async {
		byName[o.Name] = o.Err
	}
	assert.ErrorIs(t, byName["a"], ErrPanicked)
	assert.NoError(t, byName["b"])
}

func TestAfterCommit_AsyncPhase(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.AsyncWorkers = 2 })
	for _, name := range []string{"a", "b", "c"} {
		f.put(t, trigger.Definition{Name: name, Statement: "CREATE (:Audit)",
			Selector: trigger.Selector{Phase: trigger.PhaseAfterAsync}})
	}
	f.put(t, trigger.Definition{Name: "d_fails", Statement: "CREATE (:Fail)",
		Selector: trigger.Selector{Phase: trigger.PhaseAfterAsync}})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	for _, o := range outcomes {
		assert.True(t, o.Queued)
		assert.NoError(t, o.Err)
	}

	f.registry.Stop("movies")

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.async, 4)
	var failed int
	for _, o := range f.async {
		if o.Err != nil {
			failed++
			assert.Equal(t, "d_fails", o.Name)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestHandler_StoppedRejectsAsync(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{Name: "a", Statement: "CREATE (:Audit)",
		Selector: trigger.Selector{Phase: trigger.PhaseAfterAsync}})
	h, err := f.registry.Start("movies")
	require.NoError(t, err)
	f.registry.Stop("movies")

	outcomes, err := h.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, ErrStopped)
}

func TestAfterCommit_CacheInvalidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Start("movies")
	require.NoError(t, err)
	ctx := context.Background()

	outcomes, err := f.registry.AfterCommit(ctx, personCreated())
	require.NoError(t, err)
	assert.Empty(t, outcomes)

	f.put(t, trigger.Definition{Name: "late", Statement: "MATCH (n) RETURN n"})
	outcomes, err = f.registry.AfterCommit(ctx, personCreated())
	require.NoError(t, err)
	assert.Empty(t, outcomes, "cached set is served until invalidated")

	f.registry.OnChange("movies", fbtrigger.CommandTypeINSTALL, nil)
	outcomes, err = f.registry.AfterCommit(ctx, personCreated())
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, names(outcomes))

	_, _, err = f.store.SetPaused(ctx, "movies", "late", true)
	require.NoError(t, err)
	f.registry.InvalidateAll()
	outcomes, err = f.registry.AfterCommit(ctx, personCreated())
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestAfterCommit_SkipsInvalidStoredSelector(t *testing.T) {
	f := newFixture(t)
	f.put(t, trigger.Definition{Name: "broken", Statement: "MATCH (n) RETURN n",
		Selector: trigger.Selector{Condition: "unknownVar"}})
	f.put(t, trigger.Definition{Name: "ok", Statement: "MATCH (n) RETURN n"})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, names(outcomes))
}

func TestRegistry_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registry.Start("system")
	assert.ErrorIs(t, err, trigger.ErrInvalidTarget)
	_, err = f.registry.Start("SYSTEM")
	require.NoError(t, err, "names compare exactly")
	f.registry.Stop("SYSTEM")
	_, err = f.registry.Start("")
	assert.Error(t, err)

	h1, err := f.registry.Start("movies")
	require.NoError(t, err)
	h2, err := f.registry.Start("movies")
	require.NoError(t, err)
	assert.Same(t, h1, h2)
	assert.Equal(t, []string{"movies"}, f.registry.Databases())
	exists, err := f.registry.Exists(ctx, "movies")
	require.NoError(t, err)
	assert.True(t, exists)

	summary := personCreated()
	summary.Database = "music"
	_, err = f.registry.AfterCommit(ctx, summary)
	assert.ErrorIs(t, err, ErrNotStarted)

	summary.Database = "system"
	outcomes, err := f.registry.AfterCommit(ctx, summary)
	require.NoError(t, err)
	assert.Nil(t, outcomes)

	outcomes, err = f.registry.AfterCommit(ctx, trigger.ChangeSummary{Database: "movies"})
	require.NoError(t, err)
	assert.Nil(t, outcomes)

	_, err = h1.AfterCommit(ctx, summary)
	assert.Error(t, err, "handler rejects other databases")

	f.registry.Stop("movies")
	_, ok := f.registry.Handler("movies")
	assert.False(t, ok)
	exists, err = f.registry.Exists(ctx, "movies")
	require.NoError(t, err)
	assert.False(t, exists)
	f.registry.Stop("movies")
}

func TestRegistry_Disabled(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Enabled = false })
	f.put(t, trigger.Definition{Name: "t", Statement: "MATCH (n) RETURN n"})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	assert.Nil(t, outcomes)
	assert.Empty(t, f.engine.Executions())
}

func TestAfterCommit_ExecTimeout(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Executor = engine.New(engine.Config{Latency: time.Second})
		c.ExecTimeout = 10 * time.Millisecond
	})
	f.put(t, trigger.Definition{Name: "slow", Statement: "MATCH (n) RETURN n"})
	_, err := f.registry.Start("movies")
	require.NoError(t, err)

	outcomes, err := f.registry.AfterCommit(context.Background(), personCreated())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)
}
