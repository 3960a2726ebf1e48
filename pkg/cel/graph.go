package cel

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// graphLib adds helpers over the change summary maps.
//
// Functions:
//   - total(map<string, list<dyn>>) -> int: number of entries across all keys
//   - keys(map<string, dyn>) -> list<string>: keys of the map
//   - touches(map<string, list<dyn>>, int) -> bool: whether any key lists the id
type graphLib struct{}

func (graphLib) LibraryName() string {
	return "unitrigger.graph"
}

func (graphLib) ProgramOptions() []cel.ProgramOption {
	return nil
}

func (graphLib) CompileOptions() []cel.EnvOption {
	dynMap := cel.MapType(cel.StringType, cel.DynType)
	return []cel.EnvOption{
		cel.Function("total",
			cel.Overload("total_map",
				[]*cel.Type{dynMap},
				cel.IntType,
				cel.UnaryBinding(total),
			),
		),
		cel.Function("keys",
			cel.Overload("keys_map",
				[]*cel.Type{dynMap},
				cel.ListType(cel.StringType),
				cel.UnaryBinding(keys),
			),
		),
		cel.Function("touches",
			cel.Overload("touches_map_int",
				[]*cel.Type{dynMap, cel.IntType},
				cel.BoolType,
				cel.BinaryBinding(touches),
			),
		),
	}
}

func total(v ref.Val) ref.Val {
	m, ok := v.(traits.Mapper)
	if !ok {
		return types.MaybeNoSuchOverloadErr(v)
	}
	var n int64
	it := m.Iterator()
	for it.HasNext() == types.True {
		if s, ok := m.Get(it.Next()).(traits.Sizer); ok {
			n += int64(s.Size().(types.Int))
		}
	}
	return types.Int(n)
}

func keys(v ref.Val) ref.Val {
	m, ok := v.(traits.Mapper)
	if !ok {
		return types.MaybeNoSuchOverloadErr(v)
	}
	var out []string
	it := m.Iterator()
	for it.HasNext() == types.True {
		if s, ok := it.Next().(types.String); ok {
			out = append(out, string(s))
		}
	}
	return types.NewStringList(types.DefaultTypeAdapter, out)
}

// touches matches label lists of ids as well as property lists whose
// entries carry an entityId.
func touches(v, id ref.Val) ref.Val {
	m, ok := v.(traits.Mapper)
	if !ok {
		return types.MaybeNoSuchOverloadErr(v)
	}
	want, ok := id.(types.Int)
	if !ok {
		return types.MaybeNoSuchOverloadErr(id)
	}
	it := m.Iterator()
	for it.HasNext() == types.True {
		list, ok := m.Get(it.Next()).(traits.Lister)
		if !ok {
			continue
		}
		lit := list.Iterator()
		for lit.HasNext() == types.True {
			switch e := lit.Next().(type) {
			case types.Int:
				if e == want {
					return types.True
				}
			case traits.Mapper:
				if got, found := e.Find(types.String("entityId")); found && got.Equal(want) == types.True {
					return types.True
				}
			}
		}
	}
	return types.False
}
