package fsm

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/raft"
	bolt "go.etcd.io/bbolt"

	"github.com/unijord/unitrigger/pkg/command"
	fbtrigger "github.com/unijord/unitrigger/pkg/gen/go/fb/trigger"
	"github.com/unijord/unitrigger/pkg/trigger"
	"github.com/unijord/unitrigger/pkg/triggerstore"
)

// ApplyResult is the response of every applied command.
type ApplyResult struct {
	// Definitions affected by the command, sorted by name for DROP_ALL.
	Definitions []trigger.Definition
	Found       bool
	Err         error
}

// ChangeCallback runs after a mutation is applied on this replica.
type ChangeCallback func(database string, kind fbtrigger.CommandType, defs []trigger.Definition)

// FSM implements raft.FSM with bbolt as the state store.
type FSM struct {
	// dbMu guards db against Restore swapping the file underneath readers.
	dbMu   sync.RWMutex
	db     *bolt.DB
	dbPath string
	logger *slog.Logger

	mu               sync.RWMutex
	callbacks        []ChangeCallback
	restoreCallbacks []func()
}

// Config holds FSM configuration options.
type Config struct {
	DBPath string
	Logger *slog.Logger
}

func openDB(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
}

// New creates an FSM backed by the bbolt file at cfg.DBPath.
func New(cfg Config) (*FSM, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}
	if err := db.Update(triggerstore.InitTx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &FSM{
		db:     db,
		dbPath: cfg.DBPath,
		logger: cfg.Logger.With("component", "fsm"),
	}, nil
}

// RegisterCallback adds a callback for applied mutations.
func (f *FSM) RegisterCallback(cb ChangeCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
}

// RegisterRestoreCallback adds a callback that runs after a snapshot restore
// replaced the whole state.
func (f *FSM) RegisterRestoreCallback(cb func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restoreCallbacks = append(f.restoreCallbacks, cb)
}

func (f *FSM) notifyCallbacks(database string, kind fbtrigger.CommandType, defs []trigger.Definition) {
	f.mu.RLock()
	callbacks := f.callbacks
	f.mu.RUnlock()

	for _, cb := range callbacks {
		cb(database, kind, defs)
	}
}

// Apply implements raft.FSM.
func (f *FSM) Apply(log *raft.Log) interface{} {
	if len(log.Data) == 0 {
		return nil
	}

	cmd, err := command.Decode(log.Data)
	if err != nil {
		f.logger.Error("dropping undecodable command", "index", log.Index, "error", err)
		return ApplyResult{Err: err}
	}

	var (
		result  ApplyResult
		skipped bool
	)

	f.dbMu.RLock()
	err = f.db.Update(func(tx *bolt.Tx) error {
		if applied, _ := triggerstore.AppliedTx(tx); log.Index <= applied {
			skipped = true
			return nil
		}

		var err error
		switch cmd.Type {
		case fbtrigger.CommandTypeINSTALL:
			def := cmd.Definition()
			err = triggerstore.PutTx(tx, def)
			result = ApplyResult{Definitions: []trigger.Definition{def}, Found: true}
		case fbtrigger.CommandTypeDROP:
			var def trigger.Definition
			def, result.Found, err = triggerstore.DeleteTx(tx, cmd.Database, cmd.Name)
			if result.Found {
				result.Definitions = []trigger.Definition{def}
			}
		case fbtrigger.CommandTypeDROP_ALL:
			result.Definitions, err = triggerstore.DeleteAllTx(tx, cmd.Database)
			result.Found = len(result.Definitions) > 0
		case fbtrigger.CommandTypeSET_PAUSED:
			var def trigger.Definition
			def, result.Found, err = triggerstore.SetPausedTx(tx, cmd.Database, cmd.Name, cmd.Paused)
			if result.Found {
				result.Definitions = []trigger.Definition{def}
			}
		}
		if err != nil {
			return err
		}
		return triggerstore.SetAppliedTx(tx, log.Index, log.Term)
	})
	f.dbMu.RUnlock()

	if err != nil {
		f.logger.Error("failed to apply command",
			"type", cmd.Type,
			"database", cmd.Database,
			"name", cmd.Name,
			"request_id", cmd.RequestID,
			"error", err)
		return ApplyResult{Err: err}
	}
	if skipped {
		f.logger.Debug("skipping already applied command", "index", log.Index, "type", cmd.Type)
		return ApplyResult{}
	}

	f.logger.Info("applied trigger command",
		"type", cmd.Type,
		"database", cmd.Database,
		"name", cmd.Name,
		"found", result.Found,
		"index", log.Index,
		"request_id", cmd.RequestID)

	if result.Found {
		f.notifyCallbacks(cmd.Database, cmd.Type, result.Definitions)
	}
	return result
}

// Snapshot implements raft.FSM.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.dbMu.RLock()
	defer f.dbMu.RUnlock()

	tx, err := f.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	return &FSMSnapshot{tx: tx}, nil
}

// Restore implements raft.FSM by replacing the bbolt file.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	tmpPath := f.dbPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	out.Close()

	f.dbMu.Lock()
	if err := f.db.Close(); err != nil {
		f.dbMu.Unlock()
		return fmt.Errorf("close db: %w", err)
	}
	if err := os.Rename(tmpPath, f.dbPath); err != nil {
		f.dbMu.Unlock()
		return fmt.Errorf("rename snapshot: %w", err)
	}
	db, err := openDB(f.dbPath)
	if err != nil {
		f.dbMu.Unlock()
		return fmt.Errorf("reopen db: %w", err)
	}
	f.db = db
	f.dbMu.Unlock()

	index, term := f.AppliedIndex()
	f.logger.Info("restored FSM from snapshot", "applied_index", index, "applied_term", term)

	f.mu.RLock()
	callbacks := f.restoreCallbacks
	f.mu.RUnlock()
	for _, cb := range callbacks {
		cb()
	}
	return nil
}

func (f *FSM) view(fn func(tx *bolt.Tx) error) error {
	f.dbMu.RLock()
	defer f.dbMu.RUnlock()
	return f.db.View(fn)
}

// List returns the triggers of database sorted by name.
func (f *FSM) List(database string) (defs []trigger.Definition, err error) {
	err = f.view(func(tx *bolt.Tx) error {
		defs, err = triggerstore.ListTx(tx, database)
		return err
	})
	return defs, err
}

func (f *FSM) Get(database, name string) (def trigger.Definition, found bool, err error) {
	err = f.view(func(tx *bolt.Tx) error {
		def, found, err = triggerstore.GetTx(tx, database, name)
		return err
	})
	return def, found, err
}

// Databases lists target databases that hold at least one trigger.
func (f *FSM) Databases() (dbs []string, err error) {
	err = f.view(func(tx *bolt.Tx) error {
		dbs, err = triggerstore.DatabasesTx(tx)
		return err
	})
	return dbs, err
}

// AppliedIndex returns the last raft index and term folded into the state.
func (f *FSM) AppliedIndex() (index, term uint64) {
	_ = f.view(func(tx *bolt.Tx) error {
		index, term = triggerstore.AppliedTx(tx)
		return nil
	})
	return index, term
}

func (f *FSM) Close() error {
	f.dbMu.Lock()
	defer f.dbMu.Unlock()
	return f.db.Close()
}

// FSMSnapshot implements raft.FSMSnapshot.
type FSMSnapshot struct {
	tx *bolt.Tx
}

// Persist writes the whole bbolt file to the sink.
func (s *FSMSnapshot) Persist(sink raft.SnapshotSink) error {
	defer s.tx.Rollback()

	if _, err := s.tx.WriteTo(sink); err != nil {
		sink.Cancel()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return sink.Close()
}

func (s *FSMSnapshot) Release() {
	s.tx.Rollback()
}

var _ raft.FSM = (*FSM)(nil)
