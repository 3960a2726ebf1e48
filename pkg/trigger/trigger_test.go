package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValueOf_Nested(t *testing.T) {
	v, err := ValueOf(map[string]any{
		"name":   "alice",
		"age":    42,
		"score":  1.5,
		"active": true,
		"tags":   []string{"a", "b"},
		"nested": map[string]any{"x": nil, "y": []any{int8(1), uint16(2)}},
	})
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())

	got := v.Any().(map[string]any)
	assert.Equal(t, "alice", got["name"])
	assert.Equal(t, int64(42), got["age"])
	assert.Equal(t, 1.5, got["score"])
	assert.Equal(t, true, got["active"])
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.Equal(t, map[string]any{"x": nil, "y": []any{int64(1), int64(2)}}, got["nested"])
}

func TestValueOf_Unsupported(t *testing.T) {
	tests := []any{
		struct{}{},
		make(chan int),
		map[int]string{1: "a"},
		[]any{func() {}},
		uint64(1 << 63),
	}
	for _, x := range tests {
		t.Run(fmt.Sprintf("%T", x), func(t *testing.T) {
			_, err := ValueOf(x)
			if !errors.Is(err, ErrUnsupportedValue) {
				t.Fatalf("expected ErrUnsupportedValue, got %v", err)
			}
		})
	}
}

func TestValue_JSONKeepsIntegers(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"b":[1,2.5,"x"],"a":null}`), &v))

	m := v.Any().(map[string]any)
	assert.Nil(t, m["a"])
	assert.Equal(t, []any{int64(1), 2.5, "x"}, m["b"])

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":[1,2.5,"x"]}`, string(data))
	assert.Equal(t, `{"a":null,"b":[1,2.5,"x"]}`, string(data), "map keys are sorted")
}

func TestParams_EqualAndClone(t *testing.T) {
	p, err := ParamsOf(map[string]any{"limit": 10, "label": "Person"})
	require.NoError(t, err)

	c := p.Clone()
	assert.True(t, p.Equal(c))
	c["limit"] = Int(11)
	assert.False(t, p.Equal(c))
	assert.Equal(t, []string{"label", "limit"}, p.Names())

	assert.True(t, Params(nil).Equal(Params{}))

	_, err = ParamsOf(map[string]any{"": 1})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    Selector
		wantErr bool
	}{
		{
			name: "empty",
			raw:  nil,
			want: Selector{},
		},
		{
			name: "assigned_labels",
			raw:  map[string]any{"assignedLabels": []string{"Person"}},
			want: Selector{AssignedLabels: []string{"Person"}},
		},
		{
			name: "full",
			raw: map[string]any{
				"phase":             "afterAsync",
				"events":            []any{"createdNodes", "removedLabels"},
				"relationshipTypes": []any{"ACTED_IN"},
				"propertyKeys":      []any{"seen"},
				"condition":         "size(createdNodes) > 1",
			},
			want: Selector{
				Phase:             PhaseAfterAsync,
				Events:            []EventKind{EventCreatedNodes, EventRemovedLabels},
				RelationshipTypes: []string{"ACTED_IN"},
				PropertyKeys:      []string{"seen"},
				Condition:         "size(createdNodes) > 1",
			},
		},
		{
			name:    "unknown_phase",
			raw:     map[string]any{"phase": "before"},
			wantErr: true,
		},
		{
			name:    "unknown_event",
			raw:     map[string]any{"events": []any{"committed"}},
			wantErr: true,
		},
		{
			name:    "unknown_key",
			raw:     map[string]any{"labels": []any{"Person"}},
			wantErr: true,
		},
		{
			name:    "label_not_string",
			raw:     map[string]any{"assignedLabels": []any{1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelector(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSelector)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Params)

	cfg, err = ParseConfig(map[string]any{"params": map[string]any{"limit": 5}, "other": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": int64(5)}, cfg.Params.Any())

	_, err = ParseConfig(map[string]any{"params": "nope"})
	assert.Error(t, err)
}

func TestSelector_Validate(t *testing.T) {
	assert.NoError(t, Selector{}.Validate())
	assert.ErrorIs(t, Selector{Phase: "rollback"}.Validate(), ErrInvalidSelector)
	assert.ErrorIs(t, Selector{Events: []EventKind{"x"}}.Validate(), ErrInvalidSelector)
	assert.ErrorIs(t, Selector{PropertyKeys: []string{""}}.Validate(), ErrInvalidSelector)
	assert.Equal(t, PhaseAfter, Selector{}.EffectivePhase())
	assert.True(t, Selector{}.IsZero())
	assert.False(t, Selector{Condition: "true"}.IsZero())
}

func TestChangeSummary_Bindings(t *testing.T) {
	commit := time.UnixMilli(1_700_000_000_000)
	cs := ChangeSummary{
		Database:       "movies",
		TransactionID:  7,
		CommitTime:     commit,
		CreatedNodes:   []int64{1, 2},
		AssignedLabels: map[string][]int64{"Person": {1}},
		AssignedNodeProperties: map[string][]PropertyChange{
			"seen": {{EntityID: 1, Key: "seen", New: true}},
		},
	}

	assert.False(t, cs.IsEmpty())
	assert.True(t, cs.Has(EventCreatedNodes))
	assert.False(t, cs.Has(EventDeletedNodes))

	b := cs.Bindings()
	for _, k := range EventKinds {
		assert.Contains(t, b, string(k))
		assert.True(t, IsReservedParam(string(k)))
	}
	assert.Equal(t, []any{int64(1), int64(2)}, b["createdNodes"])
	assert.Equal(t, int64(7), b[BindTransactionID])
	assert.Equal(t, commit.UnixMilli(), b[BindCommitTime])
	assert.Equal(t, "movies", b[BindDatabaseName])
	assert.False(t, IsReservedParam("limit"))

	assert.True(t, ChangeSummary{}.IsEmpty())
}

func TestError_KindMatching(t *testing.T) {
	err := fmt.Errorf("install: %w", &Error{Kind: KindRouting, Op: "install", Message: MsgNotRouted, LeaderAddr: "10.0.0.1:7000"})

	assert.ErrorIs(t, err, ErrRouting)
	assert.NotErrorIs(t, err, ErrScope)
	assert.True(t, IsNotLeader(err))
	assert.Equal(t, KindRouting, KindOf(err))
	assert.Contains(t, err.Error(), "leader: 10.0.0.1:7000")
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	st, ok := status.FromError(&Error{Kind: KindMode, Message: MsgModes})
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestFromStatus_RoundTrip(t *testing.T) {
	orig := &Error{Kind: KindRouting, Op: "drop", Message: MsgNotRouted, LeaderAddr: "10.0.0.2:7000"}
	st, ok := status.FromError(orig)
	require.True(t, ok)

	got := FromStatus(st)
	assert.Equal(t, KindRouting, got.Kind)
	assert.Equal(t, "drop", got.Op)
	assert.Equal(t, MsgNotRouted, got.Message)
	assert.Equal(t, "10.0.0.2:7000", got.LeaderAddr)
	assert.True(t, IsNotLeader(got))

	plain := FromStatus(status.New(codes.DeadlineExceeded, "slow"))
	assert.Equal(t, KindCollaboratorTimeout, plain.Kind)
	assert.Equal(t, KindInternal, ParseKind("nope"))
	assert.Equal(t, KindMode, ParseKind(KindMode.String()))
}

func TestKind_GRPCCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want codes.Code
	}{
		{KindScope, codes.FailedPrecondition},
		{KindRouting, codes.Unavailable},
		{KindInvalidTarget, codes.InvalidArgument},
		{KindQueryType, codes.InvalidArgument},
		{KindMode, codes.InvalidArgument},
		{KindCollaboratorTimeout, codes.DeadlineExceeded},
		{KindDisabled, codes.FailedPrecondition},
		{KindInternal, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.kind.GRPCCode(); got != tt.want {
			t.Errorf("%s.GRPCCode() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestDefinition_Info(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := Definition{
		Database:    "movies",
		Name:        "logPerson",
		Statement:   "MATCH (p:Person) SET p.seen = true",
		Selector:    Selector{AssignedLabels: []string{"Person"}},
		Params:      Params{"limit": Int(3)},
		InstalledAt: at,
	}
	info := d.Info()
	assert.Equal(t, "logPerson", info.Name)
	assert.Equal(t, "movies", info.Database)
	assert.False(t, info.Paused)
	require.NotNil(t, info.InstalledAt)
	assert.True(t, info.InstalledAt.Equal(at))
	assert.Equal(t, map[string]any{"limit": int64(3)}, info.Params)

	assert.Nil(t, Definition{}.Info().InstalledAt)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("logPerson"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName("a\x00b"))
	assert.Error(t, ValidateName(string(make([]byte, 300))))
	assert.NoError(t, ValidateDatabase("movies"))
	assert.Error(t, ValidateDatabase(""))
}
