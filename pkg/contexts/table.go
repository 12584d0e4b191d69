package contexts

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/macropower/metareg/pkg/ident"
)

var (
	ErrUnknownContext = errors.New("unknown context")
	ErrDuplicate      = errors.New("context already registered")
	ErrInvalidName    = errors.New("invalid context name")
	ErrNilPredicate   = errors.New("nil predicate")
)

// UnknownContextError is returned when a context name is not registered.
type UnknownContextError struct {
	Name string
}

func (e *UnknownContextError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownContext, e.Name)
}

func (e *UnknownContextError) Is(target error) bool {
	return target == ErrUnknownContext
}

// Table maps context names to predicates.
// It is safe for concurrent use. Entries can be added but never removed.
type Table struct {
	predicates map[string]Predicate
	mu         sync.RWMutex
}

// NewTable creates an empty [Table].
func NewTable() *Table {
	return &Table{predicates: map[string]Predicate{}}
}

// Default is the process-wide table that rules resolve their contexts from.
var Default = NewTable()

// Register adds a predicate under name.
func (t *Table) Register(name string, p Predicate) error {
	if !ident.Valid(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if p == nil {
		return fmt.Errorf("context %q: %w", name, ErrNilPredicate)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.predicates[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}

	t.predicates[name] = p

	return nil
}

// MustRegister calls [Table.Register] and panics on error.
func (t *Table) MustRegister(name string, p Predicate) {
	if err := t.Register(name, p); err != nil {
		panic(err)
	}
}

// Lookup returns the predicate registered under name.
// It returns an [*UnknownContextError] if there is none.
//
//nolint:ireturn // Predicates are an open set.
func (t *Table) Lookup(name string) (Predicate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.predicates[name]
	if !ok {
		return nil, &UnknownContextError{Name: name}
	}

	return p, nil
}

// Has reports whether name is registered.
func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.predicates[name]

	return ok
}

// Names returns the registered context names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.predicates))
	for name := range t.predicates {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ValidFor reports whether every named context approves s.
// All names are resolved before any predicate runs, so an unknown name is
// reported even when an earlier predicate rejects s.
func (t *Table) ValidFor(s Subject, names ...string) (bool, error) {
	predicates := make([]Predicate, 0, len(names))
	for _, name := range names {
		p, err := t.Lookup(name)
		if err != nil {
			return false, err
		}

		predicates = append(predicates, p)
	}

	for _, p := range predicates {
		if !p.ValidFor(s) {
			return false, nil
		}
	}

	return true, nil
}

// Register adds a predicate to the [Default] table.
func Register(name string, p Predicate) error {
	return Default.Register(name, p)
}

// MustRegister adds a predicate to the [Default] table and panics on error.
func MustRegister(name string, p Predicate) {
	Default.MustRegister(name, p)
}

// Lookup resolves name from the [Default] table.
//
//nolint:ireturn // Predicates are an open set.
func Lookup(name string) (Predicate, error) {
	return Default.Lookup(name)
}
