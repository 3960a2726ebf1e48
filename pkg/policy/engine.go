// Package policy checks trigger statements against the query types and
// procedure modes allowed for post-commit execution.
package policy

import (
	"context"
	"time"
)

// QueryType classifies a planned statement.
type QueryType string

const (
	QueryReadOnly    QueryType = "READ_ONLY"
	QueryWrite       QueryType = "WRITE"
	QueryReadWrite   QueryType = "READ_WRITE"
	QuerySchemaWrite QueryType = "SCHEMA_WRITE"
	QueryDBMS        QueryType = "DBMS"
)

// Mode is the execution mode declared by a procedure.
type Mode string

const (
	ModeRead    Mode = "READ"
	ModeWrite   Mode = "WRITE"
	ModeDefault Mode = "DEFAULT"
	ModeSchema  Mode = "SCHEMA"
	ModeDBMS    Mode = "DBMS"
)

// ProcedureCall is one procedure invocation found while planning.
type ProcedureCall struct {
	Name string
	Mode Mode
}

// Plan is what the engine reports about a statement without running it.
type Plan struct {
	QueryType  QueryType
	Procedures []ProcedureCall
}

// Stats summarises one execution.
type Stats struct {
	RowsReturned  int64
	NodesCreated  int64
	NodesDeleted  int64
	PropertiesSet int64
	Elapsed       time.Duration
}

// Engine is the statement engine of a target database. Implementations must
// honour ctx deadlines and return an error wrapping context.DeadlineExceeded
// when they expire.
type Engine interface {
	Explain(ctx context.Context, database, statement string) (Plan, error)
	Execute(ctx context.Context, database, statement string, params map[string]any) (Stats, error)
}
