// Package registries provides the Registry document type for metareg.
//
// A Registry document declares the attributes of one owner and their rules:
//
//	apiVersion: metareg.jacobcolvin.com/v1beta1
//	kind: Registry
//	owner: post
//	contexts:
//	  - name: strict
//	    expression: 'rule != "searchable"'
//	attributes:
//	  - name: title
//	    rules:
//	      - name: presence
//	        kind: validate
//	    contexts:
//	      - name: strict
//	        rules:
//	          - name: length
//	            kind: validate
//	            args: [{max: 20}]
//
// Use [Load] to read a document and [Registry.Build] to turn it into a
// [meta.Registry].
package registries

import (
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/metareg/api"
	"github.com/macropower/metareg/api/v1beta1"
	"github.com/macropower/metareg/pkg/config"
	"github.com/macropower/metareg/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/registry -root ../../.. -o api/v1beta1/registries/registries.v1beta1.json

const Kind = "Registry"

var (
	//go:embed registry.yaml
	defaultRegistryYAML []byte

	//go:embed registries.v1beta1.json
	registrySchemaJSON []byte

	// ValidKinds contains the valid kind values for registry documents.
	ValidKinds = []string{Kind}

	// DefaultValidator validates registry documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/registries.v1beta1.json", registrySchemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Registry)(nil)
)

// Rule declares one rule.
type Rule struct {
	// Name is the rule name. It is normalized to snake_case, so `minLength`
	// declares `min_length`.
	Name string `json:"name" jsonschema:"required,title=Name,minLength=1"`
	// Kind names the rule kind, for example `validate`.
	// Rules without a kind are metadata only.
	Kind string `json:"kind,omitempty" jsonschema:"title=Kind"`
	// Args are the rule's positional arguments. A trailing mapping holds
	// the rule's options.
	Args []any `json:"args,omitempty" jsonschema:"title=Arguments"`
}

// Scope declares rules that apply only in a named context.
type Scope struct {
	// Name is the context name.
	Name string `json:"name" jsonschema:"required,title=Name,minLength=1"`
	// Rules are declared with this context and every enclosing one.
	Rules []*Rule `json:"rules,omitempty" jsonschema:"title=Rules"`
	// Contexts are nested scopes.
	Contexts []*Scope `json:"contexts,omitempty" jsonschema:"title=Contexts"`
}

// Attribute declares the rules of one attribute. Rules are declared before
// the rules of any scopes.
type Attribute struct {
	// Name is the attribute name. It is normalized to snake_case.
	Name string `json:"name" jsonschema:"required,title=Name,minLength=1"`
	// Rules are always active.
	Rules []*Rule `json:"rules,omitempty" jsonschema:"title=Rules"`
	// Contexts scope further rules to named contexts.
	Contexts []*Scope `json:"contexts,omitempty" jsonschema:"title=Contexts"`
}

// Context defines a named context backed by a CEL expression. The
// expression can use the `attribute`, `rule`, `args` and `opts` variables.
type Context struct {
	// Name is the context name.
	Name string `json:"name" jsonschema:"required,title=Name,minLength=1"`
	// Expression is a CEL expression returning a boolean.
	Expression string `json:"expression" jsonschema:"required,title=Expression,minLength=1"`
}

// Registry represents a registry document.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Registry struct {
	// Owner names what the registry describes, such as a model name.
	Owner string `json:"owner" jsonschema:"required,title=Owner,minLength=1"`
	// Contexts are registered in the process-wide context table.
	Contexts []*Context `json:"contexts,omitempty" jsonschema:"title=Contexts"`
	// Attributes are declared in order. Repeated names extend the earlier
	// declaration.
	Attributes       []*Attribute `json:"attributes,omitempty" jsonschema:"title=Attributes"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new [Registry] with default values.
func New() *Registry {
	r := &Registry{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	r.EnsureDefaults()

	return r
}

// EnsureDefaults initializes nil fields to their default values.
func (r *Registry) EnsureDefaults() {
	if r.Contexts == nil {
		r.Contexts = []*Context{}
	}
	if r.Attributes == nil {
		r.Attributes = []*Attribute{}
	}
}

func (r Registry) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the registry document to YAML.
func (r Registry) MarshalYAML() ([]byte, error) {
	type alias Registry

	b, err := api.MarshalYAML(alias(r))
	if err != nil {
		return nil, fmt.Errorf("marshal registry: %w", err)
	}

	return b, nil
}

// Load reads, validates and decodes the registry document at path.
func Load(path string, opts ...config.LoaderOpt) (*Registry, error) {
	l, err := config.NewLoaderFromFile(path, New, DefaultValidator, opts...)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	return l.ValidateAndLoad() //nolint:wrapcheck // Errors carry source annotations.
}

// LoadBytes validates and decodes a registry document.
func LoadBytes(data []byte, opts ...config.LoaderOpt) (*Registry, error) {
	return config.NewLoaderFromBytes(data, New, DefaultValidator, opts...).ValidateAndLoad() //nolint:wrapcheck // Errors carry source annotations.
}

// WriteDefault writes the embedded example registry to path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultRegistryYAML, force, "registry")
	if err != nil {
		return fmt.Errorf("write default registry: %w", err)
	}

	return nil
}

// Schema returns the JSON schema of registry documents.
func Schema() []byte {
	return slices.Clone(registrySchemaJSON)
}
