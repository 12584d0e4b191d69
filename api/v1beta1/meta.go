// Package v1beta1 contains the v1beta1 API types for metareg documents.
package v1beta1

import "github.com/invopop/jsonschema"

// APIVersion is the current API version for all metareg document kinds.
const APIVersion = "metareg.jacobcolvin.com/v1beta1"

// ValidAPIVersions contains all valid API versions.
var ValidAPIVersions = []string{APIVersion}

// TypeMeta contains the API version and kind metadata common to all document types.
type TypeMeta struct {
	// APIVersion specifies the API version for this document.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of document.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Object is the interface that all document types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of a
// document schema to the given values. It panics if either property is
// missing, which means the document type does not embed [TypeMeta].
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	setConsts(jss, "apiVersion", "API Version", apiVersions)
	setConsts(jss, "kind", "Kind", kinds)
}

func setConsts(jss *jsonschema.Schema, property, title string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.OneOf = append(prop.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: v,
			Title: title,
		})
	}

	jss.Properties.Set(property, prop)
}
