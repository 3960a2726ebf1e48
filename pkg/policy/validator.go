package policy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/unijord/unitrigger/pkg/trigger"
)

var (
	DefaultQueryTypes = []QueryType{QueryReadOnly, QueryWrite, QueryReadWrite}
	DefaultModes      = []Mode{ModeWrite, ModeRead, ModeDefault}
)

// Validator is stateless; one value may be shared by all callers.
type Validator struct {
	Engine            Engine
	AllowedQueryTypes []QueryType
	AllowedModes      []Mode
}

// DefaultValidator allows READ_ONLY, WRITE and READ_WRITE statements calling
// READ, WRITE or DEFAULT procedures.
func DefaultValidator(engine Engine) *Validator {
	return &Validator{
		Engine:            engine,
		AllowedQueryTypes: DefaultQueryTypes,
		AllowedModes:      DefaultModes,
	}
}

// Validate plans statement on database and rejects it when it falls outside
// the allowed query types or procedure modes.
func (v *Validator) Validate(ctx context.Context, database, statement string, params trigger.Params) error {
	const op = "install"

	if strings.TrimSpace(statement) == "" {
		return trigger.NewError(trigger.KindInvalidArgument, op, "trigger statement must not be empty")
	}
	for _, name := range params.Names() {
		if trigger.IsReservedParam(name) {
			return trigger.NewError(trigger.KindInvalidArgument, op,
				fmt.Sprintf("parameter %q is reserved for change summary bindings", name))
		}
	}

	plan, err := v.Engine.Explain(ctx, database, statement)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return trigger.Wrap(trigger.KindCollaboratorTimeout, op, trigger.MsgTimeout, err)
		}
		if errors.Is(err, context.Canceled) {
			return trigger.Wrap(trigger.KindCollaboratorTimeout, op, "statement planning was canceled", err)
		}
		return trigger.Wrap(trigger.KindInvalidArgument, op, "trigger statement cannot be planned", err)
	}

	if !slices.Contains(v.AllowedQueryTypes, plan.QueryType) {
		return trigger.Wrap(trigger.KindQueryType, op, trigger.MsgQueryTypes,
			fmt.Errorf("statement is %s", plan.QueryType))
	}
	for _, p := range plan.Procedures {
		if !slices.Contains(v.AllowedModes, p.Mode) {
			return trigger.Wrap(trigger.KindMode, op, trigger.MsgModes,
				fmt.Errorf("procedure %s runs in %s mode", p.Name, p.Mode))
		}
	}
	return nil
}
