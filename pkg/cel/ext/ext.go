// Package ext provides CEL functions for trigger selector conditions.
//
// # Sampling (SampleFuncs)
//
//   - sample(int, int) -> bool: true for roughly one in n ids, stable per id
//   - hashBucket(string, int) -> int: xxHash64 of the string modulo n
//
// # Lists (ListFuncs)
//
//   - sum(list<int>) -> int
//   - min(list<int>) -> int: error on an empty list
//   - max(list<int>) -> int: error on an empty list
//   - first(list<dyn>) -> dyn: null when empty
//   - last(list<dyn>) -> dyn: null when empty
//
// # Time (TimeFuncs)
//
//   - fromEpochMillis(int) -> timestamp: pairs with commitTime
//
// # Strings (StringFuncs)
//
//   - lower(string) -> string
//   - upper(string) -> string
package ext

import "github.com/google/cel-go/cel"

// All returns every library of this package.
func All() cel.EnvOption {
	return cel.Lib(allLib{})
}

type allLib struct{}

func (allLib) LibraryName() string { return "unitrigger.ext" }

func (allLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		SampleFuncs(),
		ListFuncs(),
		TimeFuncs(),
		StringFuncs(),
	}
}

func (allLib) ProgramOptions() []cel.ProgramOption { return nil }
