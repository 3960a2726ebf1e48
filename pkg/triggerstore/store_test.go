package triggerstore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/unijord/unitrigger/pkg/trigger"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "triggers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func def(db, name string) trigger.Definition {
	return trigger.Definition{
		Database:    db,
		Name:        name,
		Statement:   "MATCH (n) RETURN n",
		Selector:    trigger.Selector{AssignedLabels: []string{"Person"}},
		Params:      trigger.Params{"limit": trigger.Int(5)},
		InstalledAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBoltStore_UpsertList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Upsert(ctx, def("movies", "b"))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, def("movies", "a"))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, def("music", "c"))
	require.NoError(t, err)

	defs, err := s.List(ctx, "movies")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].Name)
	assert.Equal(t, "b", defs[1].Name)
	assert.Equal(t, "movies", defs[0].Database)
	assert.True(t, defs[0].Params.Equal(trigger.Params{"limit": trigger.Int(5)}))
	assert.True(t, defs[0].InstalledAt.Equal(def("", "").InstalledAt))

	dbs, err := s.Databases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"movies", "music"}, dbs)

	none, err := s.List(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBoltStore_UpsertReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	in := def("movies", "t")
	in.InstalledAt = time.Date(2026, 5, 1, 12, 30, 0, 123456789, time.FixedZone("CEST", 2*3600))
	in.Params = trigger.Params{"ratio": trigger.Float(2.5), "limit": trigger.Int(5)}

	got, err := s.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.InstalledAt.Location())
	assert.Equal(t, 123456000, got.InstalledAt.Nanosecond())
	assert.True(t, got.InstalledAt.Equal(in.InstalledAt.Truncate(time.Microsecond)))

	defs, err := s.List(ctx, "movies")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, defs[0], got)
}

func TestBoltStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Upsert(ctx, def("movies", "t"))
	require.NoError(t, err)
	_, _, err = s.SetPaused(ctx, "movies", "t", true)
	require.NoError(t, err)

	next := def("movies", "t")
	next.Statement = "MATCH (m:Movie) RETURN m"
	_, err = s.Upsert(ctx, next)
	require.NoError(t, err)

	defs, err := s.List(ctx, "movies")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "MATCH (m:Movie) RETURN m", defs[0].Statement)
	assert.False(t, defs[0].Paused)
}

func TestBoltStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Upsert(ctx, def("movies", "t"))
	require.NoError(t, err)

	got, found, err := s.Remove(ctx, "movies", "t")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "t", got.Name)

	_, found, err = s.Remove(ctx, "movies", "t")
	require.NoError(t, err)
	assert.False(t, found)

	dbs, err := s.Databases(ctx)
	require.NoError(t, err)
	assert.Empty(t, dbs, "empty database bucket is dropped")
}

func TestBoltStore_RemoveAllSorted(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, n := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Upsert(ctx, def("movies", n))
		require.NoError(t, err)
	}
	_, err := s.Upsert(ctx, def("music", "keep"))
	require.NoError(t, err)

	removed, err := s.RemoveAll(ctx, "movies")
	require.NoError(t, err)
	require.Len(t, removed, 3)
	assert.Equal(t, "alpha", removed[0].Name)
	assert.Equal(t, "mid", removed[1].Name)
	assert.Equal(t, "zeta", removed[2].Name)

	again, err := s.RemoveAll(ctx, "movies")
	require.NoError(t, err)
	assert.Empty(t, again)

	music, err := s.List(ctx, "music")
	require.NoError(t, err)
	assert.Len(t, music, 1)
}

func TestBoltStore_SetPaused(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, found, err := s.SetPaused(ctx, "movies", "missing", true)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Upsert(ctx, def("movies", "t"))
	require.NoError(t, err)

	got, found, err := s.SetPaused(ctx, "movies", "t", true)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Paused)

	// idempotent
	got, found, err = s.SetPaused(ctx, "movies", "t", true)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Paused)

	got, _, err = s.SetPaused(ctx, "movies", "t", false)
	require.NoError(t, err)
	assert.False(t, got.Paused)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "triggers.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, def("movies", "t"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	defs, err := s.List(ctx, "movies")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "MATCH (n) RETURN n", defs[0].Statement)
}

func TestBoltStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Upsert(ctx, def("movies", fmt.Sprintf("t%02d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	defs, err := s.List(ctx, "movies")
	require.NoError(t, err)
	assert.Len(t, defs, 20)
}

func TestBoltStore_CanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Upsert(ctx, def("movies", "t"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.List(ctx, "movies")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAppliedTx(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return SetAppliedTx(tx, 42, 3)
	}))
	require.NoError(t, s.db.View(func(tx *bolt.Tx) error {
		index, term := AppliedTx(tx)
		assert.Equal(t, uint64(42), index)
		assert.Equal(t, uint64(3), term)
		return nil
	}))
}

func TestDecodeRecord_Corrupt(t *testing.T) {
	_, err := decodeRecord("movies", "t", []byte("{not json"))
	assert.ErrorIs(t, err, ErrCorruptRecord)
}
