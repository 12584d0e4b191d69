package expr_test

import (
	"math"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/metareg/pkg/expr"
)

func newRuleEnv(t *testing.T) *expr.Environment {
	t.Helper()

	env, err := expr.NewEnvironment(
		cel.Variable("rule", cel.StringType),
		cel.Variable("opts", cel.MapType(cel.DynType, cel.DynType)),
	)
	require.NoError(t, err)

	return env
}

func TestLibFunctions(t *testing.T) {
	t.Parallel()

	env := newRuleEnv(t)

	tcs := map[string]struct {
		expression string
		rule       string
		opts       map[string]any
		want       bool
	}{
		"isIdentifier valid": {
			expression: `isIdentifier(rule)`,
			rule:       "presence",
			want:       true,
		},
		"isIdentifier invalid": {
			expression: `isIdentifier("Presence")`,
			rule:       "presence",
			want:       false,
		},
		"normalize camel case": {
			expression: `normalize("minLength") == "min_length"`,
			want:       true,
		},
		"opt present": {
			expression: `opt(opts, "max", 0) == 20`,
			opts:       map[string]any{"max": 20},
			want:       true,
		},
		"opt missing uses default": {
			expression: `opt(opts, "max", 5) == 5`,
			opts:       map[string]any{},
			want:       true,
		},
		"string extension": {
			expression: `rule.upperAscii() == "DRAFT_ONLY"`,
			rule:       "draft_only",
			want:       true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			program, err := env.Compile(tc.expression)
			require.NoError(t, err)

			opts := tc.opts
			if opts == nil {
				opts = map[string]any{}
			}

			got, err := expr.EvalBool(program, map[string]any{
				"rule": tc.rule,
				"opts": expr.ConvertToCELValue(opts),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnvironment_CompileError(t *testing.T) {
	t.Parallel()

	env := newRuleEnv(t)

	_, err := env.Compile(`rule.invalidFunction()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile expression")

	_, err = env.Compile(`undeclared == 1`)
	require.Error(t, err)
}

func TestEvalBool_NonBoolean(t *testing.T) {
	t.Parallel()

	env := newRuleEnv(t)

	program, err := env.Compile(`rule + "_suffix"`)
	require.NoError(t, err)

	got, err := expr.EvalBool(program, map[string]any{
		"rule": "x",
		"opts": map[string]any{},
	})
	require.Error(t, err)
	assert.False(t, got)
	assert.Contains(t, err.Error(), "want bool")
}

func TestEvalBool_EvalError(t *testing.T) {
	t.Parallel()

	env := newRuleEnv(t)

	program, err := env.Compile(`opts["missing"] == 1`)
	require.NoError(t, err)

	got, err := expr.EvalBool(program, map[string]any{
		"rule": "x",
		"opts": map[string]any{},
	})
	require.Error(t, err)
	assert.False(t, got)
}

func TestMustNewEnvironment(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		env := expr.MustNewEnvironment(cel.Variable("value", cel.DynType))
		_, err := env.Compile(`value != null`)
		assert.NoError(t, err)
	})
}

func TestConvertToCELValue(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    any
		expected any
		isNull   bool
	}{
		"nil value": {
			input:  nil,
			isNull: true,
		},
		"bool true": {
			input:    true,
			expected: true,
		},
		"bool false": {
			input:    false,
			expected: false,
		},
		"int": {
			input:    42,
			expected: int64(42),
		},
		"int8": {
			input:    int8(42),
			expected: int64(42),
		},
		"int16": {
			input:    int16(42),
			expected: int64(42),
		},
		"int32": {
			input:    int32(42),
			expected: int64(42),
		},
		"int64": {
			input:    int64(42),
			expected: int64(42),
		},
		"uint": {
			input:    uint(42),
			expected: int64(42),
		},
		"uint overflow": {
			input:    uint(math.MaxUint64),
			expected: float64(math.MaxUint64),
		},
		"uint8": {
			input:    uint8(42),
			expected: int64(42),
		},
		"uint16": {
			input:    uint16(42),
			expected: int64(42),
		},
		"uint32": {
			input:    uint32(42),
			expected: int64(42),
		},
		"uint64": {
			input:    uint64(42),
			expected: int64(42),
		},
		"uint64 overflow": {
			input:    uint64(math.MaxUint64),
			expected: float64(math.MaxUint64),
		},
		"float32": {
			input:    float32(3.14),
			expected: float64(float32(3.14)),
		},
		"float64": {
			input:    3.14159,
			expected: 3.14159,
		},
		"string": {
			input:    "hello world",
			expected: "hello world",
		},
		"unsupported type": {
			input:  complex(1, 2),
			isNull: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result := expr.ConvertToCELValue(tc.input)

			if tc.isNull {
				assert.Equal(t, types.NullValue, result)

				return
			}

			switch expected := tc.expected.(type) {
			case bool:
				boolVal, ok := result.Value().(bool)
				require.True(t, ok)
				assert.Equal(t, expected, boolVal)
			case int64:
				intVal, ok := result.Value().(int64)
				require.True(t, ok)
				assert.Equal(t, expected, intVal)
			case float64:
				floatVal, ok := result.Value().(float64)
				require.True(t, ok)
				assert.InDelta(t, expected, floatVal, 0.01)
			case string:
				strVal, ok := result.Value().(string)
				require.True(t, ok)
				assert.Equal(t, expected, strVal)
			}
		})
	}
}

func TestConvertToCELValue_Slice(t *testing.T) {
	t.Parallel()

	input := []any{1, "hello", true, nil}
	result := expr.ConvertToCELValue(input)

	// The result should not be null and should have the correct type
	assert.NotEqual(t, types.NullValue, result)
	assert.Equal(t, "list", result.Type().TypeName())
}

func TestConvertToCELValue_MapAnyAny(t *testing.T) {
	t.Parallel()

	input := map[any]any{
		"key1": "value1",
		42:     "value2",
	}
	result := expr.ConvertToCELValue(input)

	// The result should not be null and should have the correct type
	assert.NotEqual(t, types.NullValue, result)
	assert.Equal(t, "map", result.Type().TypeName())
}

func TestConvertToCELValue_MapStringAny(t *testing.T) {
	t.Parallel()

	input := map[string]any{
		"name":    "test",
		"count":   42,
		"enabled": true,
		"nested": map[string]any{
			"inner": "value",
		},
	}
	result := expr.ConvertToCELValue(input)

	// The result should not be null and should have the correct type
	assert.NotEqual(t, types.NullValue, result)
	assert.Equal(t, "map", result.Type().TypeName())
}

