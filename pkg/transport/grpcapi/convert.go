package grpcapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	unitriggerv1 "github.com/unijord/unitrigger/pkg/gen/go/proto/unitrigger/v1"
	"github.com/unijord/unitrigger/pkg/trigger"
)

// jsonStruct converts any JSON-encodable value whose encoding is an object
// into a Struct. Typed slices such as []string are accepted, unlike
// structpb.NewStruct.
func jsonStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("not an object: %w", err)
	}
	return s, nil
}

func optionalStruct(m map[string]any) (*structpb.Struct, error) {
	if m == nil {
		return nil, nil
	}
	return jsonStruct(m)
}

func triggerToProto(info trigger.Info) (*unitriggerv1.Trigger, error) {
	sel, err := jsonStruct(info.Selector)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	params := map[string]any{}
	if info.Params != nil {
		params = info.Params
	}
	ps, err := jsonStruct(params)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	out := &unitriggerv1.Trigger{
		Name:      info.Name,
		Database:  info.Database,
		Statement: info.Statement,
		Selector:  sel,
		Params:    ps,
		Paused:    info.Paused,
	}
	if info.InstalledAt != nil {
		out.InstalledAt = timestamppb.New(*info.InstalledAt)
	}
	return out, nil
}

// triggerFromProto rebuilds the descriptor. Numeric params come back as
// float64, the only number type a Struct carries.
func triggerFromProto(t *unitriggerv1.Trigger) (trigger.Info, error) {
	info := trigger.Info{
		Name:      t.GetName(),
		Database:  t.GetDatabase(),
		Statement: t.GetStatement(),
		Params:    t.GetParams().AsMap(),
		Paused:    t.GetPaused(),
	}
	if sel := t.GetSelector(); sel != nil {
		data, err := protojson.Marshal(sel)
		if err != nil {
			return trigger.Info{}, fmt.Errorf("selector of %s: %w", t.GetName(), err)
		}
		if err := json.Unmarshal(data, &info.Selector); err != nil {
			return trigger.Info{}, fmt.Errorf("selector of %s: %w", t.GetName(), err)
		}
	}
	if ts := t.GetInstalledAt(); ts != nil {
		at := ts.AsTime()
		info.InstalledAt = &at
	}
	return info, nil
}
