package trigger

import (
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain identifies trigger errors in gRPC status details.
const ErrorDomain = "github.com/unijord/unitrigger"

// Kind classifies a lifecycle failure so callers can tell "retry on the
// leader" apart from "fix the statement" and "invalid request".
type Kind uint8

const (
	KindInternal Kind = iota
	KindScope
	KindRouting
	KindInvalidTarget
	KindQueryType
	KindMode
	KindCollaboratorTimeout
	KindInvalidArgument
	KindDisabled
)

func (k Kind) String() string {
	switch k {
	case KindScope:
		return "SCOPE"
	case KindRouting:
		return "ROUTING"
	case KindInvalidTarget:
		return "INVALID_TARGET"
	case KindQueryType:
		return "QUERY_TYPE"
	case KindMode:
		return "MODE"
	case KindCollaboratorTimeout:
		return "COLLABORATOR_TIMEOUT"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindDisabled:
		return "DISABLED"
	default:
		return "INTERNAL"
	}
}

// ParseKind is the inverse of String; unknown names are internal.
func ParseKind(s string) Kind {
	for k := KindScope; k <= KindDisabled; k++ {
		if k.String() == s {
			return k
		}
	}
	return KindInternal
}

// GRPCCode maps the kind to the status code used on the wire.
func (k Kind) GRPCCode() codes.Code {
	switch k {
	case KindScope, KindDisabled:
		return codes.FailedPrecondition
	case KindRouting:
		return codes.Unavailable
	case KindInvalidTarget, KindQueryType, KindMode, KindInvalidArgument:
		return codes.InvalidArgument
	case KindCollaboratorTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

const (
	MsgNotSystemDatabase = "The procedure should be executed against a system database."
	MsgNotRouted         = "No write operations are allowed directly on this database. " +
		"Writes must pass through the leader. The role of this server is: FOLLOWER"
	MsgBadTarget     = "Triggers can only be installed on user databases."
	MsgQueryTypes    = "The trigger statement must contain READ_ONLY, WRITE, or READ_WRITE query."
	MsgModes         = "The trigger statement cannot contain procedures that are not in WRITE, READ, or DEFAULT mode."
	MsgDisabled      = "Triggers have not been enabled. Set 'triggers.enabled: true' in the configuration."
	MsgTimeout       = "The statement engine did not answer before its deadline."
	MsgInvalidSelect = "The trigger selector is not valid."
)

// Sentinels for errors.Is; an *Error matches the sentinel of its kind.
var (
	ErrScope               = &Error{Kind: KindScope, Message: MsgNotSystemDatabase}
	ErrRouting             = &Error{Kind: KindRouting, Message: MsgNotRouted}
	ErrInvalidTarget       = &Error{Kind: KindInvalidTarget, Message: MsgBadTarget}
	ErrQueryType           = &Error{Kind: KindQueryType, Message: MsgQueryTypes}
	ErrMode                = &Error{Kind: KindMode, Message: MsgModes}
	ErrCollaboratorTimeout = &Error{Kind: KindCollaboratorTimeout, Message: MsgTimeout}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrDisabled            = &Error{Kind: KindDisabled, Message: MsgDisabled}
)

// Error is the failure returned by every lifecycle operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// LeaderAddr is set on routing failures when the current leader is known.
	LeaderAddr string
	Err        error
}

// NewError builds an error of the given kind for operation op.
func NewError(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Wrap builds an error of the given kind around cause.
func Wrap(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "trigger error"
	}
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.LeaderAddr != "" {
		msg = fmt.Sprintf("%s (leader: %s)", msg, e.LeaderAddr)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports kind equality so errors.Is(err, ErrRouting) works for any
// routing failure regardless of message or operation.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

// GRPCStatus lets grpc-go convert the error into a status without a
// transport-side switch. The kind, operation and leader address travel as
// an ErrorInfo detail so clients can rebuild the error with FromStatus.
func (e *Error) GRPCStatus() *status.Status {
	st := status.New(e.Kind.GRPCCode(), e.Error())
	meta := map[string]string{"message": e.Message}
	if e.Op != "" {
		meta["op"] = e.Op
	}
	if e.LeaderAddr != "" {
		meta["leader"] = e.LeaderAddr
	}
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   e.Kind.String(),
		Domain:   ErrorDomain,
		Metadata: meta,
	})
	if err != nil {
		return st
	}
	return detailed
}

// FromStatus rebuilds an *Error from a status produced by GRPCStatus. Other
// statuses are classified by code alone.
func FromStatus(st *status.Status) *Error {
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		meta := info.GetMetadata()
		return &Error{
			Kind:       ParseKind(info.GetReason()),
			Op:         meta["op"],
			Message:    meta["message"],
			LeaderAddr: meta["leader"],
		}
	}

	kind := KindInternal
	switch st.Code() {
	case codes.Unavailable:
		kind = KindRouting
	case codes.DeadlineExceeded:
		kind = KindCollaboratorTimeout
	case codes.InvalidArgument:
		kind = KindInvalidArgument
	case codes.FailedPrecondition:
		kind = KindScope
	}
	return &Error{Kind: kind, Message: st.Message()}
}

// KindOf extracts the kind from any error; unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotLeader reports whether err signals that the caller should retry
// against the leader.
func IsNotLeader(err error) bool {
	return errors.Is(err, ErrRouting)
}
