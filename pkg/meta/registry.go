package meta

import (
	"fmt"
	"log/slog"
	"slices"
)

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger used for declaration and inclusion events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry is the per-owner collection of attributes.
type Registry struct {
	logger *slog.Logger
	attrs  *AttributeMap
	owner  string
}

// New creates an empty [Registry] for owner.
func New(owner string, opts ...Option) *Registry {
	r := &Registry{
		owner:  owner,
		attrs:  newAttributeMap(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With(slog.String("owner", owner))

	return r
}

// Owner returns the name of the registry's owner.
func (r *Registry) Owner() string {
	return r.owner
}

// Attribute declares the attribute name by evaluating block. If the
// attribute already exists, block extends it; the same [*Attribute] is
// returned for every declaration of name.
func (r *Registry) Attribute(name string, block Block) (*Attribute, error) {
	if block == nil {
		return nil, fmt.Errorf("%w: no block given for attribute %q", ErrArgument, name)
	}

	if a, ok := r.attrs.Get(name); ok {
		err := a.Overload(block)
		if err != nil {
			return a, err
		}

		r.logger.Debug("extend attribute",
			slog.String("attribute", name),
			slog.Int("rules", a.Len()),
		)

		return a, nil
	}

	a, err := newAttribute(name, r, block)
	if err != nil {
		return nil, err
	}

	r.attrs.set(a)

	r.logger.Debug("declare attribute",
		slog.String("attribute", name),
		slog.Int("rules", a.Len()),
	)

	return a, nil
}

// Attributes returns the declared attributes. The result is empty, never
// nil, when nothing has been declared.
func (r *Registry) Attributes() *AttributeMap {
	if r.attrs == nil {
		r.attrs = newAttributeMap()
	}

	return r.attrs
}

// Rules returns every rule, in attribute declaration order and then rule
// declaration order.
func (r *Registry) Rules() []*Rule {
	var rules []*Rule
	for _, a := range r.Attributes().All() {
		rules = append(rules, a.rules...)
	}

	return rules
}

// Lookup returns every rule whose name is one of names, in the order of
// [Registry.Rules]. Context activity is not considered.
func (r *Registry) Lookup(names ...string) []*Rule {
	matches := []*Rule{}
	for _, rule := range r.Rules() {
		if slices.Contains(names, rule.name) {
			matches = append(matches, rule)
		}
	}

	return matches
}

// Kinds returns the distinct rule kinds across all attributes, in the order
// they are first seen. Metadata-only rules are not included.
func (r *Registry) Kinds() []Kind {
	var kinds []Kind
	for _, rule := range r.Rules() {
		if rule.kind == nil || slices.Contains(kinds, rule.kind) {
			continue
		}

		kinds = append(kinds, rule.kind)
	}

	return kinds
}

// Include projects the registry onto target:
//  1. target receives type-level and instance-level accessors returning r;
//  2. every attribute applies its active rules' behavior, in declaration order;
//  3. every distinct kind implementing [TypeSetup] runs its setup once.
//
// Include is meant to be called once per target.
func (r *Registry) Include(target Target) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrArgument)
	}

	accessor := func() *Registry { return r }
	target.SetTypeMeta(accessor)
	target.SetInstanceMeta(accessor)

	for name, a := range r.Attributes().All() {
		err := a.ApplyTo(target)
		if err != nil {
			return fmt.Errorf("include %q: attribute %q: %w", r.owner, name, err)
		}
	}

	setups := 0

	for _, kind := range r.Kinds() {
		ts, ok := kind.(TypeSetup)
		if !ok {
			continue
		}

		err := ts.SetupType(target, r)
		if err != nil {
			return fmt.Errorf("include %q: setup kind %q: %w", r.owner, kind.KindName(), err)
		}

		setups++
	}

	r.logger.Debug("included registry",
		slog.Int("attributes", r.attrs.Len()),
		slog.Int("type_setups", setups),
	)

	return nil
}
