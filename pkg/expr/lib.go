package expr

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"

	"github.com/macropower/metareg/pkg/ident"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `isIdentifier` reports whether a string is a valid attribute or rule name.
		// Example: isIdentifier(rule).
		cel.Function("isIdentifier",
			cel.Overload("is_identifier_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					str, ok := s.(types.String).Value().(string)
					if !ok {
						return types.NewErr("isIdentifier: invalid string value")
					}

					return types.Bool(ident.Valid(str))
				}),
			),
		),

		// `normalize` converts a string into identifier form.
		// Example: normalize("minLength") == "min_length".
		cel.Function("normalize",
			cel.Overload("normalize_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					str, ok := s.(types.String).Value().(string)
					if !ok {
						return types.NewErr("normalize: invalid string value")
					}

					return types.String(ident.Normalize(str))
				}),
			),
		),

		// `opt` reads a key from an options map, falling back to a default.
		// Options that are not a map yield the default.
		// Example: opt(opts, "max", 0) > 10.
		cel.Function("opt",
			cel.Overload("opt_dyn_string_dyn",
				[]*cel.Type{cel.DynType, cel.StringType, cel.DynType},
				cel.DynType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					m, ok := args[0].(traits.Mapper)
					if !ok {
						return args[2]
					}

					v, found := m.Find(args[1])
					if !found || v == nil {
						return args[2]
					}

					return v
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// ConvertToCELValue converts a Go value to a CEL value.
// Handles common YAML types and returns null for unsupported types.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue

	case bool:
		return types.Bool(v)

	case int:
		return types.Int(v)

	case int8:
		return types.Int(int64(v))

	case int16:
		return types.Int(int64(v))

	case int32:
		return types.Int(int64(v))

	case int64:
		return types.Int(v)

	case uint:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case uint8:
		return types.Int(int64(v))

	case uint16:
		return types.Int(int64(v))

	case uint32:
		return types.Int(int64(v))

	case uint64:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case float32:
		return types.Double(float64(v))

	case float64:
		return types.Double(v)

	case string:
		return types.String(v)

	case []any:
		// Convert slice to CEL list.
		celValues := make([]ref.Val, len(v))
		for i, item := range v {
			celValues[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, celValues)

	case map[any]any:
		// Convert map to CEL map.
		celMap := make(map[ref.Val]ref.Val)
		for key, val := range v {
			celKey := ConvertToCELValue(key)
			celVal := ConvertToCELValue(val)
			celMap[celKey] = celVal
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	case map[string]any:
		// Convert string map to CEL map.
		celMap := make(map[ref.Val]ref.Val)
		for key, val := range v {
			celKey := types.String(key)
			celVal := ConvertToCELValue(val)
			celMap[celKey] = celVal
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	default:
		// For unsupported types, return null instead of erroring.
		return types.NullValue
	}
}
