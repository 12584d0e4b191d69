package config

import (
	"bytes"

	"github.com/macropower/metareg/api"
	"github.com/macropower/metareg/api/v1beta1"
	"github.com/macropower/metareg/pkg/yaml"
)

// Validator validates decoded document data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator Validator
	color     bool
}

// WithValidator replaces the default validator. A nil validator disables
// schema validation.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// WithColor styles the source excerpts included in errors.
func WithColor(color bool) LoaderOpt {
	return func(o *loaderOptions) {
		o.color = color
	}
}

// Loader is a generic document loader that handles validation,
// YAML parsing, and error formatting for any document type T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	yamlError *yaml.ErrorWrapper
	path      string
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., registries.New).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{
		validator: defaultValidator,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: options.validator,
		yamlError: yaml.NewErrorWrapper(
			yaml.WithSource(data),
			yaml.WithColor(options.color),
		),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	l := NewLoaderFromBytes(data, newFunc, defaultValidator, opts...)
	l.path = path

	return l, nil
}

// Path returns the file the loader reads from, or an empty string.
func (l *Loader[T]) Path() string {
	return l.path
}

// Validate validates the document data against the schema.
func (l *Loader[T]) Validate() error {
	var doc any

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(&doc)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator != nil {
		err = l.validator.Validate(doc)
		if err != nil {
			return l.yamlError.Wrap(err)
		}
	}

	return nil
}

// Load parses and returns the document.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	doc := l.newFunc()

	dec := yaml.NewDecoder(bytes.NewReader(l.data))
	err := dec.Decode(doc)
	if err != nil {
		var zero T
		return zero, l.yamlError.Wrap(err)
	}

	doc.EnsureDefaults()

	return doc, nil
}

// ValidateAndLoad runs [Loader.Validate] and then [Loader.Load].
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) ValidateAndLoad() (T, error) {
	err := l.Validate()
	if err != nil {
		var zero T
		return zero, err
	}

	return l.Load()
}
