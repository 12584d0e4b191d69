package contexts

// Subject is the read-only view of a rule that predicates evaluate.
type Subject interface {
	AttributeName() string
	RuleName() string
	Args() []any
	Opts() any
}

// Predicate decides whether a rule is active in a context.
// Implementations must be pure functions of the [Subject].
type Predicate interface {
	ValidFor(s Subject) bool
}

// PredicateFunc adapts a function to the [Predicate] interface.
type PredicateFunc func(s Subject) bool

// ValidFor calls f(s).
func (f PredicateFunc) ValidFor(s Subject) bool {
	return f(s)
}

// Always is a [Predicate] that approves every rule.
var Always Predicate = PredicateFunc(func(Subject) bool { return true })

// Never is a [Predicate] that rejects every rule.
var Never Predicate = PredicateFunc(func(Subject) bool { return false })
