package yaml_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/metareg/pkg/yaml"
)

type schemaRule struct {
	Name string `json:"name" jsonschema:"required"`
	Args []any  `json:"args,omitempty"`
}

type schemaDoc struct {
	Owner string        `json:"owner" jsonschema:"required,title=Owner"`
	Rules []*schemaRule `json:"rules,omitempty"`
}

func TestSchemaGenerator_Generate(t *testing.T) {
	t.Parallel()

	data, err := yaml.NewSchemaGenerator(&schemaDoc{}, "").Generate()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"owner"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "owner")
	assert.Contains(t, props, "rules")

	// The generated schema is usable by the validator.
	validator, err := yaml.NewValidator("/doc.json", data)
	require.NoError(t, err)
	require.NoError(t, validator.Validate(map[string]any{"owner": "post"}))
	require.Error(t, validator.Validate(map[string]any{}))
}
