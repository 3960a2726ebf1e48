// Package engine provides a statement engine for local runs and tests. It
// classifies statements by their clause keywords instead of parsing them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/unijord/unitrigger/pkg/policy"
)

var (
	ErrSyntax           = errors.New("invalid statement")
	ErrUnknownProcedure = errors.New("unknown procedure")
)

// DefaultProcedures is the catalog used when Config.Procedures is nil.
var DefaultProcedures = map[string]policy.Mode{
	"db.labels":            policy.ModeRead,
	"db.relationshiptypes": policy.ModeRead,
	"db.propertykeys":      policy.ModeRead,
	"db.ping":              policy.ModeDefault,
	"db.createlabel":       policy.ModeWrite,
	"db.createproperty":    policy.ModeWrite,
	"db.awaitindexes":      policy.ModeSchema,
	"db.createindex":       policy.ModeSchema,
	"dbms.listconfig":      policy.ModeDBMS,
	"dbms.killquery":       policy.ModeDBMS,
}

// Execution records one Execute call.
type Execution struct {
	Database  string
	Statement string
	Params    map[string]any
	At        time.Time
}

type Config struct {
	// Procedures maps procedure names (case-insensitive) to their mode.
	Procedures map[string]policy.Mode
	// Latency delays Explain and Execute; a ctx deadline shorter than it
	// yields context.DeadlineExceeded.
	Latency time.Duration
	// Hook runs before each execution; a non-nil error fails it.
	Hook   func(ctx context.Context, database, statement string, params map[string]any) error
	Logger *slog.Logger
}

// KeywordEngine implements policy.Engine.
type KeywordEngine struct {
	procedures map[string]policy.Mode
	latency    time.Duration
	hook       func(ctx context.Context, database, statement string, params map[string]any) error
	logger     *slog.Logger

	mu         sync.Mutex
	executions []Execution
}

func New(cfg Config) *KeywordEngine {
	if cfg.Procedures == nil {
		cfg.Procedures = DefaultProcedures
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	procs := make(map[string]policy.Mode, len(cfg.Procedures))
	for name, mode := range cfg.Procedures {
		procs[strings.ToLower(name)] = mode
	}
	return &KeywordEngine{
		procedures: procs,
		latency:    cfg.Latency,
		hook:       cfg.Hook,
		logger:     cfg.Logger.With("component", "engine"),
	}
}

var (
	stringLiteral = regexp.MustCompile(`'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`)
	callClause    = regexp.MustCompile(`(?i)\bCALL\s+([A-Za-z_][\w.]*)\s*\(`)
	word          = regexp.MustCompile(`[A-Za-z_]+`)
)

var (
	readClauses  = map[string]bool{"MATCH": true, "RETURN": true, "WITH": true, "UNWIND": true, "OPTIONAL": true}
	writeClauses = map[string]bool{"CREATE": true, "MERGE": true, "SET": true, "DELETE": true, "DETACH": true, "REMOVE": true}
	dbmsVerbs    = map[string]bool{"SHOW": true, "GRANT": true, "DENY": true, "REVOKE": true, "ALTER": true}

	schemaCommand = regexp.MustCompile(`(?i)\b(CREATE|DROP)\s+(INDEX|CONSTRAINT)\b`)
	dbmsCommand   = regexp.MustCompile(`(?i)\b(CREATE|DROP|START|STOP)\s+(DATABASE|USER|ROLE|ALIAS)\b`)
)

func (e *KeywordEngine) wait(ctx context.Context) error {
	if e.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Explain classifies statement and resolves the modes of called procedures.
func (e *KeywordEngine) Explain(ctx context.Context, database, statement string) (policy.Plan, error) {
	if err := e.wait(ctx); err != nil {
		return policy.Plan{}, fmt.Errorf("explain on %s: %w", database, err)
	}
	return e.plan(statement)
}

func (e *KeywordEngine) plan(statement string) (policy.Plan, error) {
	if strings.TrimSpace(statement) == "" {
		return policy.Plan{}, fmt.Errorf("%w: empty statement", ErrSyntax)
	}
	if err := balanced(statement); err != nil {
		return policy.Plan{}, err
	}
	stripped := stringLiteral.ReplaceAllString(statement, "''")

	var plan policy.Plan
	for _, m := range callClause.FindAllStringSubmatch(stripped, -1) {
		mode, ok := e.procedures[strings.ToLower(m[1])]
		if !ok {
			return policy.Plan{}, fmt.Errorf("%w: there is no procedure with the name %s registered", ErrUnknownProcedure, m[1])
		}
		plan.Procedures = append(plan.Procedures, policy.ProcedureCall{Name: m[1], Mode: mode})
	}

	words := word.FindAllString(strings.ToUpper(stripped), -1)
	switch {
	case len(words) > 0 && dbmsVerbs[words[0]], dbmsCommand.MatchString(stripped):
		plan.QueryType = policy.QueryDBMS
		return plan, nil
	case schemaCommand.MatchString(stripped):
		plan.QueryType = policy.QuerySchemaWrite
		return plan, nil
	}

	var reads, writes bool
	for _, w := range words {
		reads = reads || readClauses[w]
		writes = writes || writeClauses[w]
	}

	switch {
	case reads && writes:
		plan.QueryType = policy.QueryReadWrite
	case writes:
		plan.QueryType = policy.QueryWrite
	case reads:
		plan.QueryType = policy.QueryReadOnly
	case len(plan.Procedures) > 0:
		plan.QueryType = policy.QueryReadOnly
		for _, p := range plan.Procedures {
			if p.Mode != policy.ModeRead {
				plan.QueryType = policy.QueryReadWrite
			}
		}
	default:
		return policy.Plan{}, fmt.Errorf("%w: no recognised clause in %q", ErrSyntax, statement)
	}
	return plan, nil
}

func balanced(statement string) error {
	var stack []rune
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	stripped := stringLiteral.ReplaceAllString(statement, "''")
	if strings.Count(stripped, "'")%2 != 0 || strings.Count(stripped, `"`)%2 != 0 {
		return fmt.Errorf("%w: unterminated string literal", ErrSyntax)
	}
	for _, r := range stripped {
		switch r {
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Errorf("%w: unbalanced %q", ErrSyntax, r)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: unclosed %q", ErrSyntax, stack[len(stack)-1])
	}
	return nil
}

// Execute records the call after the configured latency and hook.
func (e *KeywordEngine) Execute(ctx context.Context, database, statement string, params map[string]any) (policy.Stats, error) {
	start := time.Now()
	if err := e.wait(ctx); err != nil {
		return policy.Stats{}, fmt.Errorf("execute on %s: %w", database, err)
	}
	plan, err := e.plan(statement)
	if err != nil {
		return policy.Stats{}, err
	}
	if e.hook != nil {
		if err := e.hook(ctx, database, statement, params); err != nil {
			return policy.Stats{}, err
		}
	}

	e.mu.Lock()
	e.executions = append(e.executions, Execution{
		Database:  database,
		Statement: statement,
		Params:    maps.Clone(params),
		At:        start,
	})
	e.mu.Unlock()

	e.logger.Debug("executed statement", "database", database, "query_type", plan.QueryType)

	stats := policy.Stats{Elapsed: time.Since(start)}
	if plan.QueryType == policy.QueryReadOnly {
		stats.RowsReturned = 1
	}
	return stats, nil
}

// Executions returns a copy of every recorded execution.
func (e *KeywordEngine) Executions() []Execution {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Execution, len(e.executions))
	copy(out, e.executions)
	return out
}

func (e *KeywordEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executions = nil
}

var _ policy.Engine = (*KeywordEngine)(nil)
