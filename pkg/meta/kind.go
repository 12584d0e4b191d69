package meta

// Kind identifies a rule variant. Kinds are compared by identity when
// [Registry.Include] deduplicates type-level setup, so implementations must
// be comparable; pointers to package-level values are typical.
type Kind interface {
	KindName() string
}

// Behavior is the compiled effect of a rule, applied to a [Target].
type Behavior func(target Target) error

// Compiler is implemented by kinds whose rules contribute behavior.
// Compile is called at most once per rule; returning nil marks the rule as
// metadata only.
type Compiler interface {
	Kind
	Compile(r *Rule) Behavior
}

// TypeSetup is implemented by kinds that need one-time setup on a target,
// regardless of how many rules of the kind exist.
type TypeSetup interface {
	Kind
	SetupType(target Target, r *Registry) error
}

// Target is the entity a [Registry] is projected onto.
// It receives two accessors returning the same registry: one for the type
// itself and one for each of its instances.
type Target interface {
	SetTypeMeta(fn func() *Registry)
	SetInstanceMeta(fn func() *Registry)
}

// Extensible is implemented by targets that store kind-specific state.
type Extensible interface {
	Extension(key string) (any, bool)
	SetExtension(key string, value any)
}
