package ext

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

func ListFuncs() cel.EnvOption {
	return cel.Lib(listLib{})
}

type listLib struct{}

func (listLib) LibraryName() string { return "unitrigger.lists" }

func (listLib) CompileOptions() []cel.EnvOption {
	ints := cel.ListType(cel.IntType)
	dyns := cel.ListType(cel.DynType)
	return []cel.EnvOption{
		cel.Function("sum",
			cel.Overload("sum_list_int", []*cel.Type{ints}, cel.IntType, cel.UnaryBinding(sumInts)),
		),
		cel.Function("min",
			cel.Overload("min_list_int", []*cel.Type{ints}, cel.IntType, cel.UnaryBinding(extremum("min", func(a, b int64) bool { return a < b }))),
		),
		cel.Function("max",
			cel.Overload("max_list_int", []*cel.Type{ints}, cel.IntType, cel.UnaryBinding(extremum("max", func(a, b int64) bool { return a > b }))),
		),
		cel.Function("first",
			cel.Overload("first_list", []*cel.Type{dyns}, cel.DynType, cel.UnaryBinding(at(func(int) int { return 0 }))),
		),
		cel.Function("last",
			cel.Overload("last_list", []*cel.Type{dyns}, cel.DynType, cel.UnaryBinding(at(func(size int) int { return size - 1 }))),
		),
	}
}

func (listLib) ProgramOptions() []cel.ProgramOption { return nil }

func ints(v ref.Val) ([]int64, ref.Val) {
	list, ok := v.(traits.Lister)
	if !ok {
		return nil, types.MaybeNoSuchOverloadErr(v)
	}
	size := int(list.Size().(types.Int))
	out := make([]int64, 0, size)
	for i := 0; i < size; i++ {
		n, ok := list.Get(types.Int(i)).(types.Int)
		if !ok {
			return nil, types.NewErr("expected list of int")
		}
		out = append(out, int64(n))
	}
	return out, nil
}

func sumInts(v ref.Val) ref.Val {
	vals, errVal := ints(v)
	if errVal != nil {
		return errVal
	}
	var sum int64
	for _, n := range vals {
		sum += n
	}
	return types.Int(sum)
}

func extremum(name string, better func(a, b int64) bool) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		vals, errVal := ints(v)
		if errVal != nil {
			return errVal
		}
		if len(vals) == 0 {
			return types.NewErr("%s: empty list", name)
		}
		best := vals[0]
		for _, n := range vals[1:] {
			if better(n, best) {
				best = n
			}
		}
		return types.Int(best)
	}
}

func at(index func(size int) int) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		list, ok := v.(traits.Lister)
		if !ok {
			return types.MaybeNoSuchOverloadErr(v)
		}
		size := int(list.Size().(types.Int))
		if size == 0 {
			return types.NullValue
		}
		return list.Get(types.Int(index(size)))
	}
}
