package registries

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/macropower/metareg/pkg/contexts"
	"github.com/macropower/metareg/pkg/ident"
	"github.com/macropower/metareg/pkg/kinds"
	"github.com/macropower/metareg/pkg/meta"
)

var (
	ErrUnknownKind     = errors.New("unknown rule kind")
	ErrContextConflict = errors.New("context is already defined differently")
)

// KindResolver resolves rule kind names.
type KindResolver func(name string) (meta.Kind, bool)

// BuildOption configures [Registry.Build].
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger  *slog.Logger
	resolve KindResolver
	table   *contexts.Table
}

// WithKinds sets the resolver for rule kinds. It defaults to [kinds.Lookup].
func WithKinds(resolve KindResolver) BuildOption {
	return func(o *buildOptions) {
		o.resolve = resolve
	}
}

// WithLogger sets the logger passed to the built [meta.Registry].
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// WithContextTable sets the table the document's contexts are registered
// in. Rules always resolve contexts from [contexts.Default], so other tables
// are only useful to check a document's contexts.
func WithContextTable(t *contexts.Table) BuildOption {
	return func(o *buildOptions) {
		o.table = t
	}
}

// Build registers the document's contexts and declares its attributes in a
// new [meta.Registry].
//
// Contexts that are already registered with the same expression are reused;
// any other existing registration is an error.
func (r *Registry) Build(opts ...BuildOption) (*meta.Registry, error) {
	options := &buildOptions{
		logger:  slog.Default(),
		resolve: kinds.Lookup,
		table:   contexts.Default,
	}
	for _, opt := range opts {
		opt(options)
	}

	err := r.checkKinds(options.resolve)
	if err != nil {
		return nil, err
	}

	err = r.RegisterContexts(options.table)
	if err != nil {
		return nil, err
	}

	reg := meta.New(r.Owner, meta.WithLogger(options.logger))

	for _, a := range r.Attributes {
		_, err := reg.Attribute(ident.Normalize(a.Name), func(ma *meta.Attribute) {
			declareRules(ma, a.Rules, options.resolve)
			declareScopes(ma, a.Contexts, options.resolve)
		})
		if err != nil {
			return nil, fmt.Errorf("build registry %q: %w", r.Owner, err)
		}
	}

	return reg, nil
}

// RegisterContexts registers the document's contexts in t.
func (r *Registry) RegisterContexts(t *contexts.Table) error {
	for _, c := range r.Contexts {
		name := ident.Normalize(c.Name)

		p, err := contexts.Expression(c.Expression)
		if err != nil {
			return fmt.Errorf("context %q: %w", name, err)
		}

		err = t.Register(name, p)
		if err == nil {
			continue
		}

		if !errors.Is(err, contexts.ErrDuplicate) {
			return fmt.Errorf("context %q: %w", name, err)
		}

		existing, lookupErr := t.Lookup(name)
		if lookupErr != nil {
			return fmt.Errorf("context %q: %w", name, lookupErr)
		}

		ep, ok := existing.(*contexts.ExpressionPredicate)
		if !ok || ep.Expression != c.Expression {
			return fmt.Errorf("%w: %q", ErrContextConflict, name)
		}

		slog.Debug("reuse registered context", slog.String("context", name))
	}

	return nil
}

func (r *Registry) checkKinds(resolve KindResolver) error {
	var check func(rules []*Rule, scopes []*Scope) error

	check = func(rules []*Rule, scopes []*Scope) error {
		for _, rule := range rules {
			if rule.Kind == "" {
				continue
			}

			if _, ok := resolve(rule.Kind); !ok {
				return fmt.Errorf("rule %q: %w: %q", rule.Name, ErrUnknownKind, rule.Kind)
			}
		}

		for _, s := range scopes {
			err := check(s.Rules, s.Contexts)
			if err != nil {
				return err
			}
		}

		return nil
	}

	for _, a := range r.Attributes {
		err := check(a.Rules, a.Contexts)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}

	return nil
}

func declareRules(a *meta.Attribute, rules []*Rule, resolve KindResolver) {
	for _, rule := range rules {
		var kind meta.Kind
		if rule.Kind != "" {
			kind, _ = resolve(rule.Kind)
		}

		// Errors are recorded on the attribute and returned by the
		// enclosing declaration.
		_ = a.EmitKind(kind, ident.Normalize(rule.Name), rule.Args...)
	}
}

func declareScopes(a *meta.Attribute, scopes []*Scope, resolve KindResolver) {
	for _, s := range scopes {
		_ = a.BeginContext(ident.Normalize(s.Name), func(a *meta.Attribute) {
			declareRules(a, s.Rules, resolve)
			declareScopes(a, s.Contexts, resolve)
		})
	}
}
