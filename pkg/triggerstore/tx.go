package triggerstore

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/unijord/unitrigger/pkg/trigger"
)

// The Tx helpers run inside a caller-owned transaction so the replicated
// state machine can combine a mutation with its applied-index update.

// InitTx creates the top-level buckets.
func InitTx(tx *bolt.Tx) error {
	for _, name := range [][]byte{bucketTriggers, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

func databaseBucket(tx *bolt.Tx, database string) *bolt.Bucket {
	root := tx.Bucket(bucketTriggers)
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(database))
}

// PutTx stores def, replacing any trigger with the same name.
func PutTx(tx *bolt.Tx, def trigger.Definition) error {
	data, err := encodeRecord(def)
	if err != nil {
		return err
	}
	root, err := tx.CreateBucketIfNotExists(bucketTriggers)
	if err != nil {
		return err
	}
	b, err := root.CreateBucketIfNotExists([]byte(def.Database))
	if err != nil {
		return err
	}
	return b.Put([]byte(def.Name), data)
}

func GetTx(tx *bolt.Tx, database, name string) (trigger.Definition, bool, error) {
	b := databaseBucket(tx, database)
	if b == nil {
		return trigger.Definition{}, false, nil
	}
	data := b.Get([]byte(name))
	if data == nil {
		return trigger.Definition{}, false, nil
	}
	def, err := decodeRecord(database, name, data)
	if err != nil {
		return trigger.Definition{}, false, err
	}
	return def, true, nil
}

// DeleteTx removes one trigger and drops the database bucket once empty.
func DeleteTx(tx *bolt.Tx, database, name string) (trigger.Definition, bool, error) {
	def, found, err := GetTx(tx, database, name)
	if err != nil || !found {
		return def, found, err
	}
	b := databaseBucket(tx, database)
	if err := b.Delete([]byte(name)); err != nil {
		return trigger.Definition{}, false, err
	}
	if k, _ := b.Cursor().First(); k == nil {
		if err := tx.Bucket(bucketTriggers).DeleteBucket([]byte(database)); err != nil {
			return trigger.Definition{}, false, err
		}
	}
	return def, true, nil
}

// DeleteAllTx removes every trigger of database. bbolt keeps keys in byte
// order, so the result is sorted by name.
func DeleteAllTx(tx *bolt.Tx, database string) ([]trigger.Definition, error) {
	defs, err := ListTx(tx, database)
	if err != nil || len(defs) == 0 {
		return defs, err
	}
	if err := tx.Bucket(bucketTriggers).DeleteBucket([]byte(database)); err != nil {
		return nil, err
	}
	return defs, nil
}

func SetPausedTx(tx *bolt.Tx, database, name string, paused bool) (trigger.Definition, bool, error) {
	def, found, err := GetTx(tx, database, name)
	if err != nil || !found {
		return def, found, err
	}
	def.Paused = paused
	if err := PutTx(tx, def); err != nil {
		return trigger.Definition{}, false, err
	}
	return def, true, nil
}

// ListTx returns the triggers of database sorted by name.
func ListTx(tx *bolt.Tx, database string) ([]trigger.Definition, error) {
	b := databaseBucket(tx, database)
	if b == nil {
		return nil, nil
	}
	var defs []trigger.Definition
	err := b.ForEach(func(k, v []byte) error {
		def, err := decodeRecord(database, string(k), v)
		if err != nil {
			return err
		}
		defs = append(defs, def)
		return nil
	})
	return defs, err
}

func DatabasesTx(tx *bolt.Tx) ([]string, error) {
	root := tx.Bucket(bucketTriggers)
	if root == nil {
		return nil, nil
	}
	var dbs []string
	err := root.ForEach(func(k, v []byte) error {
		// nested buckets have a nil value
		if v == nil {
			dbs = append(dbs, string(k))
		}
		return nil
	})
	return dbs, err
}

// SetAppliedTx records the last raft index and term folded into the store.
func SetAppliedTx(tx *bolt.Tx, index, term uint64) error {
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}
	if err := meta.Put(keyAppliedIndex, encodeUint64(index)); err != nil {
		return err
	}
	return meta.Put(keyAppliedTerm, encodeUint64(term))
}

func AppliedTx(tx *bolt.Tx) (index, term uint64) {
	meta := tx.Bucket(bucketMeta)
	if meta == nil {
		return 0, 0
	}
	return decodeUint64(meta.Get(keyAppliedIndex)), decodeUint64(meta.Get(keyAppliedTerm))
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(data []byte) uint64 {
	if len(data) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}
