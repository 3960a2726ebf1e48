package triggerstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/unijord/unitrigger/pkg/trigger"
)

// BoltStore is a single-node Store. bbolt serialises writers, so each
// mutation is atomic with respect to concurrent callers.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// OpenBoltStore opens or creates the store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open trigger store: %w", err)
	}
	if err := db.Update(InitTx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &BoltStore{db: db, path: path}, nil
}

func (s *BoltStore) Path() string { return s.path }

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Upsert(ctx context.Context, def trigger.Definition) (trigger.Definition, error) {
	if err := ctx.Err(); err != nil {
		return trigger.Definition{}, err
	}
	var stored trigger.Definition
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := PutTx(tx, def); err != nil {
			return err
		}
		// return the record as List will see it
		var found bool
		var err error
		stored, found, err = GetTx(tx, def.Database, def.Name)
		if err == nil && !found {
			err = ErrCorruptRecord
		}
		return err
	})
	if err != nil {
		return trigger.Definition{}, fmt.Errorf("upsert %s/%s: %w", def.Database, def.Name, err)
	}
	return stored, nil
}

func (s *BoltStore) Remove(ctx context.Context, database, name string) (def trigger.Definition, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return trigger.Definition{}, false, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		def, found, err = DeleteTx(tx, database, name)
		return err
	})
	return def, found, err
}

func (s *BoltStore) RemoveAll(ctx context.Context, database string) (defs []trigger.Definition, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		defs, err = DeleteAllTx(tx, database)
		return err
	})
	return defs, err
}

func (s *BoltStore) SetPaused(ctx context.Context, database, name string, paused bool) (def trigger.Definition, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return trigger.Definition{}, false, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		def, found, err = SetPausedTx(tx, database, name, paused)
		return err
	})
	return def, found, err
}

func (s *BoltStore) List(ctx context.Context, database string) (defs []trigger.Definition, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		defs, err = ListTx(tx, database)
		return err
	})
	return defs, err
}

func (s *BoltStore) Databases(ctx context.Context) (dbs []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		dbs, err = DatabasesTx(tx)
		return err
	})
	return dbs, err
}

var _ Store = (*BoltStore)(nil)
