package meta

import "fmt"

// Concern is a reusable bundle of declarations that can be applied to any
// number of registries with [Registry.Use].
type Concern func(r *Registry) error

// Declare returns a [Concern] that declares a single attribute.
func Declare(name string, block Block) Concern {
	return func(r *Registry) error {
		_, err := r.Attribute(name, block)

		return err
	}
}

// Use applies concerns to the registry in order, stopping at the first error.
func (r *Registry) Use(concerns ...Concern) error {
	for i, c := range concerns {
		if c == nil {
			return fmt.Errorf("%w: nil concern at index %d", ErrArgument, i)
		}

		err := c(r)
		if err != nil {
			return fmt.Errorf("concern %d: %w", i, err)
		}
	}

	return nil
}
