package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator generates JSON schemas from Go types using
// [jsonschema.Reflector]. Doc comments found in the module source become
// schema descriptions.
type SchemaGenerator struct {
	reflector  *jsonschema.Reflector
	value      any
	modulePath string
}

// NewSchemaGenerator creates a [SchemaGenerator] for value. If modulePath is
// set, the working directory must be that module's root; its source is
// scanned for doc comments.
func NewSchemaGenerator(value any, modulePath string) *SchemaGenerator {
	return &SchemaGenerator{
		value:      value,
		modulePath: modulePath,
		reflector: &jsonschema.Reflector{
			FieldNameTag:   "json",
			ExpandedStruct: true,
		},
	}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	if g.modulePath != "" {
		err := g.reflector.AddGoComments(g.modulePath, "./")
		if err != nil {
			return nil, fmt.Errorf("add go comments: %w", err)
		}
	}

	jss := g.reflector.Reflect(g.value)

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
