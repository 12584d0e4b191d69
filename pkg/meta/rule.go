package meta

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"weak"

	"github.com/macropower/metareg/pkg/contexts"
	"github.com/macropower/metareg/pkg/ident"
)

// Rule is a named directive with ordered arguments, belonging to one
// attribute. Its arguments are fixed at construction; the parent attribute
// and context chain are set once, when the rule is registered.
type Rule struct {
	kind     Kind
	behavior Behavior
	parent   weak.Pointer[Attribute]

	activeErr  error
	attribute  string
	name       string
	args       []any
	contexts   []string
	activeOnce sync.Once
	compile    sync.Once

	constructed bool
	registered  bool
	active      bool
}

// NewRule creates a metadata-only [Rule].
func NewRule(attribute, name string, args ...any) (*Rule, error) {
	return NewKindRule(nil, attribute, name, args...)
}

// NewKindRule creates a [Rule] of the given kind. A nil kind creates a
// metadata-only rule.
func NewKindRule(kind Kind, attribute, name string, args ...any) (*Rule, error) {
	if !ident.Valid(attribute) {
		return nil, &ValidationError{Field: "attribute", Value: attribute}
	}

	if !ident.Valid(name) {
		return nil, &ValidationError{Field: "rule", Value: name}
	}

	return &Rule{
		kind:        kind,
		attribute:   attribute,
		name:        name,
		args:        slices.Clone(args),
		constructed: true,
	}, nil
}

// MustNewRule creates a metadata-only [Rule] and panics on error.
func MustNewRule(attribute, name string, args ...any) *Rule {
	r, err := NewRule(attribute, name, args...)
	if err != nil {
		panic(err)
	}

	return r
}

// AttributeName returns the name of the attribute the rule was declared for.
func (r *Rule) AttributeName() string {
	return r.attribute
}

// Name returns the rule name.
func (r *Rule) Name() string {
	return r.name
}

// RuleName returns the rule name. It is equivalent to [Rule.Name].
func (r *Rule) RuleName() string {
	return r.name
}

// Args returns a copy of the rule's positional arguments.
func (r *Rule) Args() []any {
	return slices.Clone(r.args)
}

// Last returns the final positional argument, if any.
func (r *Rule) Last() (any, bool) {
	if len(r.args) == 0 {
		return nil, false
	}

	return r.args[len(r.args)-1], true
}

// Opts returns the final argument, which conventionally holds the rule's
// options. It returns an empty map[string]any when there are no arguments.
// Callers needing a mapping type-assert the result.
func (r *Rule) Opts() any {
	last, ok := r.Last()
	if !ok {
		return map[string]any{}
	}

	return last
}

// Kind returns the rule's kind, or nil for metadata-only rules.
//
//nolint:ireturn // Kinds are an open set.
func (r *Rule) Kind() Kind {
	return r.kind
}

// Parent returns the attribute the rule is registered on. It returns nil
// before registration, or once the attribute has been garbage collected.
func (r *Rule) Parent() *Attribute {
	return r.parent.Value()
}

// Contexts returns the context chain the rule was declared in.
// An empty result means the rule is always active.
func (r *Rule) Contexts() []string {
	return slices.Clone(r.contexts)
}

// IsActive reports whether the rule is active: rules without contexts always
// are, otherwise every named predicate in [contexts.Default] must approve the
// rule.
//
// Once the rule is registered, the first result (including any error) is
// cached for the rule's lifetime, so later changes to predicate behavior do
// not change an answer that has already been given.
func (r *Rule) IsActive() (bool, error) {
	if !r.registered {
		// Contexts are not fixed yet; evaluate without caching.
		return r.evalActive()
	}

	r.activeOnce.Do(func() {
		r.active, r.activeErr = r.evalActive()
	})

	return r.active, r.activeErr
}

func (r *Rule) evalActive() (bool, error) {
	if len(r.contexts) == 0 {
		return true, nil
	}

	ok, err := contexts.Default.ValidFor(r, r.contexts...)
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", r, err)
	}

	return ok, nil
}

// Behavior returns the compiled behavior of the rule, or nil if its kind
// does not implement [Compiler]. The behavior is compiled once.
func (r *Rule) Behavior() Behavior {
	c, ok := r.kind.(Compiler)
	if !ok {
		return nil
	}

	r.compile.Do(func() {
		r.behavior = c.Compile(r)
	})

	return r.behavior
}

// String returns a compact form such as "title.length(20)".
func (r *Rule) String() string {
	args := make([]string, len(r.args))
	for i, arg := range r.args {
		args[i] = fmt.Sprintf("%v", arg)
	}

	return fmt.Sprintf("%s.%s(%s)", r.attribute, r.name, strings.Join(args, ", "))
}

// stamp records the rule's registration on a.
func (r *Rule) stamp(a *Attribute, chain []string) {
	r.parent = weak.Make(a)
	r.contexts = chain
	r.registered = true
}

// unstamp reverts [Rule.stamp] for a rule removed by a failed block, so it
// can be registered again.
func (r *Rule) unstamp() {
	r.parent = weak.Pointer[Attribute]{}
	r.contexts = nil
	r.registered = false
	r.activeOnce = sync.Once{}
	r.active = false
	r.activeErr = nil
}
