// Package triggerstore persists trigger definitions in bbolt, one nested
// bucket per target database.
package triggerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/unijord/unitrigger/pkg/trigger"
)

var ErrCorruptRecord = errors.New("corrupt trigger record")

var (
	// database -> name -> record
	bucketTriggers = []byte("triggers")
	bucketMeta     = []byte("meta")

	keyAppliedIndex = []byte("applied_index")
	keyAppliedTerm  = []byte("applied_term")
)

// Lister is the read side needed by dispatch handlers.
type Lister interface {
	List(ctx context.Context, database string) ([]trigger.Definition, error)
}

// Store is the record store consumed by the lifecycle coordinator. A missing
// trigger is reported with found=false, never as an error.
type Store interface {
	Lister
	// Upsert installs or replaces def; the stored definition is returned.
	Upsert(ctx context.Context, def trigger.Definition) (trigger.Definition, error)
	Remove(ctx context.Context, database, name string) (trigger.Definition, bool, error)
	// RemoveAll removes every trigger of database, returned sorted by name.
	RemoveAll(ctx context.Context, database string) ([]trigger.Definition, error)
	SetPaused(ctx context.Context, database, name string, paused bool) (trigger.Definition, bool, error)
	// Databases lists target databases with at least one trigger.
	Databases(ctx context.Context) ([]string, error)
}

// record is the bbolt value for a trigger.
type record struct {
	Statement string           `json:"statement"`
	Selector  trigger.Selector `json:"selector"`
	Params    trigger.Params   `json:"params"`
	Paused    bool             `json:"paused"`
	// microseconds since epoch
	InstalledAt int64 `json:"installed_at,omitempty"`
}

func encodeRecord(def trigger.Definition) ([]byte, error) {
	r := record{
		Statement: def.Statement,
		Selector:  def.Selector,
		Params:    def.Params,
		Paused:    def.Paused,
	}
	if r.Params == nil {
		r.Params = trigger.Params{}
	}
	if !def.InstalledAt.IsZero() {
		r.InstalledAt = def.InstalledAt.UnixMicro()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode trigger %s/%s: %w", def.Database, def.Name, err)
	}
	return data, nil
}

func decodeRecord(database, name string, data []byte) (trigger.Definition, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return trigger.Definition{}, fmt.Errorf("%w %s/%s: %v", ErrCorruptRecord, database, name, err)
	}
	def := trigger.Definition{
		Database:  database,
		Name:      name,
		Statement: r.Statement,
		Selector:  r.Selector,
		Params:    r.Params,
		Paused:    r.Paused,
	}
	if def.Params == nil {
		def.Params = trigger.Params{}
	}
	if r.InstalledAt != 0 {
		def.InstalledAt = time.UnixMicro(r.InstalledAt).UTC()
	}
	return def, nil
}
