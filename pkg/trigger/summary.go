package trigger

import (
	"time"
)

// Relationship identifies a created or deleted relationship.
type Relationship struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// PropertyChange is one assigned or removed property.
type PropertyChange struct {
	EntityID int64  `json:"entityId"`
	Key      string `json:"key"`
	Old      any    `json:"old,omitempty"`
	New      any    `json:"new,omitempty"`
}

// ChangeSummary is what the host hands to the dispatcher after a commit.
// Property maps are keyed by property name, label maps by label.
type ChangeSummary struct {
	Database      string
	TransactionID int64
	CommitTime    time.Time

	CreatedNodes         []int64
	DeletedNodes         []int64
	CreatedRelationships []Relationship
	DeletedRelationships []Relationship

	AssignedLabels map[string][]int64
	RemovedLabels  map[string][]int64

	AssignedNodeProperties         map[string][]PropertyChange
	RemovedNodeProperties          map[string][]PropertyChange
	AssignedRelationshipProperties map[string][]PropertyChange
	RemovedRelationshipProperties  map[string][]PropertyChange
}

// Reserved binding names injected next to trigger params.
const (
	BindTransactionID = "transactionId"
	BindCommitTime    = "commitTime"
	BindDatabaseName  = "databaseName"
)

var reservedParams = func() map[string]struct{} {
	m := map[string]struct{}{
		BindTransactionID: {},
		BindCommitTime:    {},
		BindDatabaseName:  {},
	}
	for _, e := range EventKinds {
		m[string(e)] = struct{}{}
	}
	return m
}()

// IsReservedParam reports whether name collides with a change-summary binding.
func IsReservedParam(name string) bool {
	_, ok := reservedParams[name]
	return ok
}

// Has reports whether the summary contains changes of the given kind.
func (c ChangeSummary) Has(kind EventKind) bool {
	switch kind {
	case EventCreatedNodes:
		return len(c.CreatedNodes) > 0
	case EventDeletedNodes:
		return len(c.DeletedNodes) > 0
	case EventCreatedRelationships:
		return len(c.CreatedRelationships) > 0
	case EventDeletedRelationships:
		return len(c.DeletedRelationships) > 0
	case EventAssignedLabels:
		return len(c.AssignedLabels) > 0
	case EventRemovedLabels:
		return len(c.RemovedLabels) > 0
	case EventAssignedNodeProperties:
		return len(c.AssignedNodeProperties) > 0
	case EventRemovedNodeProperties:
		return len(c.RemovedNodeProperties) > 0
	case EventAssignedRelationshipProperties:
		return len(c.AssignedRelationshipProperties) > 0
	case EventRemovedRelationshipProperties:
		return len(c.RemovedRelationshipProperties) > 0
	}
	return false
}

// IsEmpty reports whether the commit changed nothing.
func (c ChangeSummary) IsEmpty() bool {
	for _, k := range EventKinds {
		if c.Has(k) {
			return false
		}
	}
	return true
}

// Bindings returns the reserved parameters for a matched statement. Every
// key is always present so statements can reference them unconditionally.
func (c ChangeSummary) Bindings() map[string]any {
	return map[string]any{
		string(EventCreatedNodes):                   ids(c.CreatedNodes),
		string(EventDeletedNodes):                   ids(c.DeletedNodes),
		string(EventCreatedRelationships):           rels(c.CreatedRelationships),
		string(EventDeletedRelationships):           rels(c.DeletedRelationships),
		string(EventAssignedLabels):                 labels(c.AssignedLabels),
		string(EventRemovedLabels):                  labels(c.RemovedLabels),
		string(EventAssignedNodeProperties):         props(c.AssignedNodeProperties),
		string(EventRemovedNodeProperties):          props(c.RemovedNodeProperties),
		string(EventAssignedRelationshipProperties): props(c.AssignedRelationshipProperties),
		string(EventRemovedRelationshipProperties):  props(c.RemovedRelationshipProperties),
		BindTransactionID:                           c.TransactionID,
		BindCommitTime:                              c.CommitTime.UnixMilli(),
		BindDatabaseName:                            c.Database,
	}
}

func ids(in []int64) []any {
	out := make([]any, len(in))
	for i, id := range in {
		out[i] = id
	}
	return out
}

func rels(in []Relationship) []any {
	out := make([]any, len(in))
	for i, r := range in {
		out[i] = map[string]any{"id": r.ID, "type": r.Type, "start": r.Start, "end": r.End}
	}
	return out
}

func labels(in map[string][]int64) map[string]any {
	out := make(map[string]any, len(in))
	for l, nodes := range in {
		out[l] = ids(nodes)
	}
	return out
}

func props(in map[string][]PropertyChange) map[string]any {
	out := make(map[string]any, len(in))
	for key, changes := range in {
		list := make([]any, len(changes))
		for i, ch := range changes {
			list[i] = map[string]any{"entityId": ch.EntityID, "key": ch.Key, "old": ch.Old, "new": ch.New}
		}
		out[key] = list
	}
	return out
}
