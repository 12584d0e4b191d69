package meta

import (
	"fmt"
	"slices"
	"weak"

	"github.com/macropower/metareg/pkg/ident"
)

// Block is a declaration block evaluated against an [Attribute].
type Block func(a *Attribute)

// Attribute is an ordered collection of rules for one named attribute.
//
// Inside a [Block], declaration calls record their first error instead of
// requiring the block to check each one; the call that evaluated the block
// returns it and discards the rules the block had added.
type Attribute struct {
	parent weak.Pointer[Registry]
	err    error
	name   string
	rules  []*Rule
	stack  []string
	depth  int
}

// NewAttribute creates an [Attribute] and evaluates block against it.
func NewAttribute(name string, block Block) (*Attribute, error) {
	return newAttribute(name, nil, block)
}

func newAttribute(name string, parent *Registry, block Block) (*Attribute, error) {
	if block == nil {
		return nil, fmt.Errorf("%w: no block given for attribute %q", ErrArgument, name)
	}

	if !ident.Valid(name) {
		return nil, &ValidationError{Field: "attribute", Value: name}
	}

	a := &Attribute{name: name}
	if parent != nil {
		a.parent = weak.Make(parent)
	}

	err := a.evaluate(block)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}

	return a, nil
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.name
}

// Rules returns the attribute's rules in declaration order.
func (a *Attribute) Rules() []*Rule {
	return slices.Clone(a.rules)
}

// Len returns the number of rules declared on the attribute.
func (a *Attribute) Len() int {
	return len(a.rules)
}

// Parent returns the registry the attribute belongs to, or nil if it was
// created standalone with [NewAttribute].
func (a *Attribute) Parent() *Registry {
	return a.parent.Value()
}

// Overload evaluates another declaration block against the attribute,
// appending to its rules.
func (a *Attribute) Overload(block Block) error {
	if block == nil {
		return a.fail(fmt.Errorf("%w: no block given to overload attribute %q", ErrArgument, a.name))
	}

	err := a.evaluate(block)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", a.name, err)
	}

	return nil
}

// Emit creates a metadata-only rule named name and registers it.
func (a *Attribute) Emit(name string, args ...any) error {
	return a.EmitKind(nil, name, args...)
}

// EmitKind creates a rule of the given kind and registers it.
func (a *Attribute) EmitKind(kind Kind, name string, args ...any) error {
	r, err := NewKindRule(kind, a.name, name, args...)
	if err != nil {
		return a.fail(err)
	}

	return a.RegisterRule(r)
}

// BeginContext evaluates block with name pushed onto the context stack.
// Every rule registered meanwhile, including inside nested BeginContext
// calls, receives the full chain of context names.
//
// Context names are not resolved here; unknown names are reported when a
// rule's activity is first checked.
func (a *Attribute) BeginContext(name string, block Block) error {
	if block == nil {
		return a.fail(fmt.Errorf("%w: no block given for context %q", ErrArgument, name))
	}

	if name == "" {
		return a.fail(fmt.Errorf("%w: empty context name", ErrArgument))
	}

	a.stack = append(a.stack, name)
	defer func() {
		a.stack = a.stack[:len(a.stack)-1]
	}()

	return a.evaluate(block)
}

// RegisterRule appends r to the attribute, setting its parent and the
// current context chain. The rule must have been constructed with
// [NewRule] or [NewKindRule] and not yet registered anywhere.
func (a *Attribute) RegisterRule(r *Rule) error {
	switch {
	case r == nil:
		return a.fail(fmt.Errorf("%w: nil rule", ErrArgument))
	case !r.constructed:
		return a.fail(fmt.Errorf("%w: rule was not constructed with NewRule", ErrArgument))
	case r.registered:
		return a.fail(fmt.Errorf("%w: rule %s is already registered", ErrArgument, r))
	}

	var chain []string
	if len(a.stack) > 0 {
		chain = slices.Clone(a.stack)
	}

	r.stamp(a, chain)
	a.rules = append(a.rules, r)

	return nil
}

// ApplyTo applies the behavior of every active rule to target, in
// declaration order. Rules without behavior are skipped.
func (a *Attribute) ApplyTo(target Target) error {
	active, err := a.activeRules()
	if err != nil {
		return err
	}

	for _, r := range active {
		behavior := r.Behavior()
		if behavior == nil {
			continue
		}

		err := behavior(target)
		if err != nil {
			return fmt.Errorf("apply %s: %w", r, err)
		}
	}

	return nil
}

// Lookup returns the first active rule named name.
// It returns nil without an error when there is no such rule.
func (a *Attribute) Lookup(name string) (*Rule, error) {
	for _, r := range a.rules {
		if r.name != name {
			continue
		}

		ok, err := r.IsActive()
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.name, err)
		}

		if ok {
			return r, nil
		}
	}

	return nil, nil //nolint:nilnil // Not found is not an error.
}

// ActiveRules returns the rules that are active, in declaration order.
func (a *Attribute) ActiveRules() ([]*Rule, error) {
	return a.activeRules()
}

func (a *Attribute) activeRules() ([]*Rule, error) {
	active := make([]*Rule, 0, len(a.rules))

	for _, r := range a.rules {
		ok, err := r.IsActive()
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.name, err)
		}

		if ok {
			active = append(active, r)
		}
	}

	return active, nil
}

// evaluate runs block against a. The outermost evaluation returns the first
// error recorded by any declaration call and rolls back the rules added
// since it started.
func (a *Attribute) evaluate(block Block) error {
	mark := len(a.rules)
	outer := a.depth == 0
	before := a.err

	a.depth++
	defer func() {
		a.depth--
		if outer {
			a.err = nil
		}
	}()

	block(a)

	// Only report errors first recorded during this evaluation.
	err := a.err
	if err == nil || before != nil {
		return nil
	}

	if outer {
		for _, r := range a.rules[mark:] {
			r.unstamp()
		}

		clear(a.rules[mark:])
		a.rules = a.rules[:mark]
	}

	return err
}

// fail records err for the enclosing block, if any, and returns it.
func (a *Attribute) fail(err error) error {
	if a.depth > 0 && a.err == nil {
		a.err = err
	}

	return err
}
