package kinds

import (
	"maps"
	"slices"

	"github.com/macropower/metareg/pkg/meta"
)

var builtin = map[string]meta.Kind{
	Validate.KindName(): Validate,
}

// Lookup returns the built-in [meta.Kind] with the given name.
//
//nolint:ireturn // Kinds are an open set.
func Lookup(name string) (meta.Kind, bool) {
	k, ok := builtin[name]

	return k, ok
}

// Names returns the names of the built-in kinds, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(builtin))
}
