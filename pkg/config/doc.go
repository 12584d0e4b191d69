// Package config loads YAML documents of the metareg API.
//
// A [Loader] validates a document against its JSON schema, decodes it into
// the document type and fills in defaults. Errors point at the offending
// location in the YAML source.
package config
