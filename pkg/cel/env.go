// Package cel compiles trigger selectors into CEL programs evaluated against
// the change summary of a commit.
package cel

import (
	"github.com/google/cel-go/cel"

	"github.com/unijord/unitrigger/pkg/cel/ext"
	"github.com/unijord/unitrigger/pkg/trigger"
)

type EnvBuilder struct {
	opts []cel.EnvOption
}

func NewEnvBuilder() *EnvBuilder {
	return &EnvBuilder{}
}

func (b *EnvBuilder) WithVariable(name string, t *cel.Type) *EnvBuilder {
	b.opts = append(b.opts, cel.Variable(name, t))
	return b
}

// WithChangeSummary declares every binding produced by
// trigger.ChangeSummary.Bindings.
func (b *EnvBuilder) WithChangeSummary() *EnvBuilder {
	ids := cel.ListType(cel.IntType)
	rels := cel.ListType(cel.MapType(cel.StringType, cel.DynType))
	labels := cel.MapType(cel.StringType, ids)
	props := cel.MapType(cel.StringType, cel.ListType(cel.MapType(cel.StringType, cel.DynType)))

	b.opts = append(b.opts,
		cel.Variable(string(trigger.EventCreatedNodes), ids),
		cel.Variable(string(trigger.EventDeletedNodes), ids),
		cel.Variable(string(trigger.EventCreatedRelationships), rels),
		cel.Variable(string(trigger.EventDeletedRelationships), rels),
		cel.Variable(string(trigger.EventAssignedLabels), labels),
		cel.Variable(string(trigger.EventRemovedLabels), labels),
		cel.Variable(string(trigger.EventAssignedNodeProperties), props),
		cel.Variable(string(trigger.EventRemovedNodeProperties), props),
		cel.Variable(string(trigger.EventAssignedRelationshipProperties), props),
		cel.Variable(string(trigger.EventRemovedRelationshipProperties), props),
		cel.Variable(trigger.BindTransactionID, cel.IntType),
		cel.Variable(trigger.BindCommitTime, cel.IntType),
		cel.Variable(trigger.BindDatabaseName, cel.StringType),
	)
	return b
}

func (b *EnvBuilder) WithLibrary(lib cel.Library) *EnvBuilder {
	b.opts = append(b.opts, cel.Lib(lib))
	return b
}

func (b *EnvBuilder) WithOption(opt cel.EnvOption) *EnvBuilder {
	b.opts = append(b.opts, opt)
	return b
}

func (b *EnvBuilder) Build() (*cel.Env, error) {
	return cel.NewEnv(b.opts...)
}

// NewSelectorEnv returns the environment used for trigger selectors: the
// change summary variables, the graph helpers and the ext functions.
func NewSelectorEnv() (*cel.Env, error) {
	return NewEnvBuilder().
		WithChangeSummary().
		WithLibrary(graphLib{}).
		WithOption(ext.All()).
		Build()
}
