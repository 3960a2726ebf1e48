// Package command encodes registry mutations as FlatBuffers entries for the
// replicated log.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"

	fbtrigger "github.com/unijord/unitrigger/pkg/gen/go/fb/trigger"
	"github.com/unijord/unitrigger/pkg/trigger"
)

const oneKB = 1024

var ErrMalformed = errors.New("malformed command")

// Command is a decoded log entry.
type Command struct {
	Type      fbtrigger.CommandType
	RequestID string
	Database  string
	Name      string
	Statement string
	Selector  trigger.Selector
	Params    trigger.Params
	Paused    bool
	IssuedAt  time.Time
}

// Definition returns the trigger carried by an INSTALL command.
func (c Command) Definition() trigger.Definition {
	return trigger.Definition{
		Database:    c.Database,
		Name:        c.Name,
		Statement:   c.Statement,
		Selector:    c.Selector,
		Params:      c.Params,
		InstalledAt: c.IssuedAt,
	}
}

// Builder constructs commands, reusing flatbuffers builders between calls.
type Builder struct {
	pool sync.Pool
	now  func() time.Time
}

func NewCommandBuilder() *Builder {
	return &Builder{
		pool: sync.Pool{
			New: func() any {
				return flatbuffers.NewBuilder(oneKB)
			},
		},
		now: time.Now,
	}
}

// WithClock replaces the issue-time source.
func (cb *Builder) WithClock(now func() time.Time) *Builder {
	cb.now = now
	return cb
}

func (cb *Builder) getBuilder() *flatbuffers.Builder {
	return cb.pool.Get().(*flatbuffers.Builder)
}

func (cb *Builder) putBuilder(b *flatbuffers.Builder) {
	b.Reset()
	cb.pool.Put(b)
}

type fields struct {
	typ       fbtrigger.CommandType
	database  string
	name      string
	statement string
	selector  []byte
	params    []byte
	paused    bool
}

func (cb *Builder) build(f fields) []byte {
	builder := cb.getBuilder()
	defer cb.putBuilder(builder)

	requestID := builder.CreateString(uuid.NewString())
	database := builder.CreateString(f.database)
	var name, statement, selector, params flatbuffers.UOffsetT
	if f.name != "" {
		name = builder.CreateString(f.name)
	}
	if f.statement != "" {
		statement = builder.CreateString(f.statement)
	}
	if f.selector != nil {
		selector = builder.CreateByteVector(f.selector)
	}
	if f.params != nil {
		params = builder.CreateByteVector(f.params)
	}

	fbtrigger.TriggerCommandStart(builder)
	fbtrigger.TriggerCommandAddType(builder, f.typ)
	fbtrigger.TriggerCommandAddRequestId(builder, requestID)
	fbtrigger.TriggerCommandAddDatabase(builder, database)
	if name != 0 {
		fbtrigger.TriggerCommandAddName(builder, name)
	}
	if statement != 0 {
		fbtrigger.TriggerCommandAddStatement(builder, statement)
	}
	if selector != 0 {
		fbtrigger.TriggerCommandAddSelector(builder, selector)
	}
	if params != 0 {
		fbtrigger.TriggerCommandAddParams(builder, params)
	}
	fbtrigger.TriggerCommandAddPaused(builder, f.paused)
	fbtrigger.TriggerCommandAddIssuedAt(builder, uint64(cb.now().UnixMicro()))
	cmd := fbtrigger.TriggerCommandEnd(builder)

	fbtrigger.FinishTriggerCommandBuffer(builder, cmd)
	data := builder.FinishedBytes()
	result := make([]byte, len(data))
	copy(result, data)
	return result
}

// BuildInstall creates an INSTALL command. The issue time becomes the
// trigger's install time on every replica.
func (cb *Builder) BuildInstall(def trigger.Definition) ([]byte, error) {
	selector, err := json.Marshal(def.Selector)
	if err != nil {
		return nil, fmt.Errorf("encode selector: %w", err)
	}
	params := def.Params
	if params == nil {
		params = trigger.Params{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return cb.build(fields{
		typ:       fbtrigger.CommandTypeINSTALL,
		database:  def.Database,
		name:      def.Name,
		statement: def.Statement,
		selector:  selector,
		params:    paramsJSON,
	}), nil
}

// BuildDrop creates a DROP command.
func (cb *Builder) BuildDrop(database, name string) []byte {
	return cb.build(fields{typ: fbtrigger.CommandTypeDROP, database: database, name: name})
}

// BuildDropAll creates a DROP_ALL command.
func (cb *Builder) BuildDropAll(database string) []byte {
	return cb.build(fields{typ: fbtrigger.CommandTypeDROP_ALL, database: database})
}

// BuildSetPaused creates a SET_PAUSED command used by stop and start.
func (cb *Builder) BuildSetPaused(database, name string, paused bool) []byte {
	return cb.build(fields{typ: fbtrigger.CommandTypeSET_PAUSED, database: database, name: name, paused: paused})
}

// Decode parses a log entry produced by a Builder.
func Decode(data []byte) (cmd Command, err error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return Command{}, fmt.Errorf("%w: %d bytes", ErrMalformed, len(data))
	}
	// flatbuffers accessors panic on out-of-range offsets.
	defer func() {
		if r := recover(); r != nil {
			cmd, err = Command{}, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	fb := fbtrigger.GetRootAsTriggerCommand(data, 0)
	cmd = Command{
		Type:      fb.Type(),
		RequestID: string(fb.RequestId()),
		Database:  string(fb.Database()),
		Name:      string(fb.Name()),
		Statement: string(fb.Statement()),
		Paused:    fb.Paused(),
		IssuedAt:  time.UnixMicro(int64(fb.IssuedAt())).UTC(),
	}

	switch cmd.Type {
	case fbtrigger.CommandTypeINSTALL, fbtrigger.CommandTypeDROP,
		fbtrigger.CommandTypeDROP_ALL, fbtrigger.CommandTypeSET_PAUSED:
	default:
		return Command{}, fmt.Errorf("%w: unknown type %s", ErrMalformed, cmd.Type)
	}
	if cmd.Database == "" {
		return Command{}, fmt.Errorf("%w: missing database", ErrMalformed)
	}

	if b := fb.SelectorBytes(); len(b) > 0 {
		if err := json.Unmarshal(b, &cmd.Selector); err != nil {
			return Command{}, fmt.Errorf("%w: selector: %v", ErrMalformed, err)
		}
	}
	if b := fb.ParamsBytes(); len(b) > 0 {
		if err := json.Unmarshal(b, &cmd.Params); err != nil {
			return Command{}, fmt.Errorf("%w: params: %v", ErrMalformed, err)
		}
	}
	if cmd.Type == fbtrigger.CommandTypeINSTALL && cmd.Params == nil {
		cmd.Params = trigger.Params{}
	}
	return cmd, nil
}
