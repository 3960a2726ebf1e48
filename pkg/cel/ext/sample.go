package ext

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

func SampleFuncs() cel.EnvOption {
	return cel.Lib(sampleLib{})
}

type sampleLib struct{}

func (sampleLib) LibraryName() string { return "unitrigger.sample" }

func (sampleLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("sample",
			cel.Overload("sample_int_int",
				[]*cel.Type{cel.IntType, cel.IntType},
				cel.BoolType,
				cel.BinaryBinding(sample),
			),
		),
		cel.Function("hashBucket",
			cel.Overload("hash_bucket_string_int",
				[]*cel.Type{cel.StringType, cel.IntType},
				cel.IntType,
				cel.BinaryBinding(hashBucket),
			),
		),
	}
}

func (sampleLib) ProgramOptions() []cel.ProgramOption { return nil }

func sample(id, n ref.Val) ref.Val {
	v, ok := id.(types.Int)
	if !ok {
		return types.MaybeNoSuchOverloadErr(id)
	}
	buckets, ok := n.(types.Int)
	if !ok {
		return types.MaybeNoSuchOverloadErr(n)
	}
	if buckets <= 0 {
		return types.NewErr("sample: n must be positive, got %d", buckets)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return types.Bool(xxhash.Sum64(buf[:])%uint64(buckets) == 0)
}

func hashBucket(s, n ref.Val) ref.Val {
	str, ok := s.(types.String)
	if !ok {
		return types.MaybeNoSuchOverloadErr(s)
	}
	buckets, ok := n.(types.Int)
	if !ok {
		return types.MaybeNoSuchOverloadErr(n)
	}
	if buckets <= 0 {
		return types.NewErr("hashBucket: n must be positive, got %d", buckets)
	}
	return types.Int(xxhash.Sum64String(string(str)) % uint64(buckets))
}
