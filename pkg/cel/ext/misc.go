package ext

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

func TimeFuncs() cel.EnvOption {
	return cel.Lib(timeLib{})
}

type timeLib struct{}

func (timeLib) LibraryName() string { return "unitrigger.time" }

func (timeLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("fromEpochMillis",
			cel.Overload("from_epoch_millis_int",
				[]*cel.Type{cel.IntType},
				cel.TimestampType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					ms, ok := v.(types.Int)
					if !ok {
						return types.MaybeNoSuchOverloadErr(v)
					}
					return types.Timestamp{Time: time.UnixMilli(int64(ms)).UTC()}
				}),
			),
		),
	}
}

func (timeLib) ProgramOptions() []cel.ProgramOption { return nil }

func StringFuncs() cel.EnvOption {
	return cel.Lib(stringLib{})
}

type stringLib struct{}

func (stringLib) LibraryName() string { return "unitrigger.strings" }

func (stringLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("lower",
			cel.Overload("lower_string", []*cel.Type{cel.StringType}, cel.StringType, cel.UnaryBinding(mapString(strings.ToLower))),
		),
		cel.Function("upper",
			cel.Overload("upper_string", []*cel.Type{cel.StringType}, cel.StringType, cel.UnaryBinding(mapString(strings.ToUpper))),
		),
	}
}

func (stringLib) ProgramOptions() []cel.ProgramOption { return nil }

func mapString(fn func(string) string) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		s, ok := v.(types.String)
		if !ok {
			return types.MaybeNoSuchOverloadErr(v)
		}
		return types.String(fn(string(s)))
	}
}
