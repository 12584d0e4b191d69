package meta

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AttributeMap is an insertion-ordered mapping of attribute names to
// attributes. A nil map is empty.
type AttributeMap struct {
	m *orderedmap.OrderedMap[string, *Attribute]
}

func newAttributeMap() *AttributeMap {
	return &AttributeMap{m: orderedmap.New[string, *Attribute]()}
}

// Get returns the attribute named name.
func (m *AttributeMap) Get(name string) (*Attribute, bool) {
	if m == nil {
		return nil, false
	}

	return m.m.Get(name)
}

// Len returns the number of attributes.
func (m *AttributeMap) Len() int {
	if m == nil {
		return 0
	}

	return m.m.Len()
}

// Names returns the attribute names in declaration order.
func (m *AttributeMap) Names() []string {
	if m == nil {
		return nil
	}

	names := make([]string, 0, m.m.Len())
	for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

// All iterates over the attributes in declaration order.
func (m *AttributeMap) All() iter.Seq2[string, *Attribute] {
	return func(yield func(string, *Attribute) bool) {
		if m == nil {
			return
		}

		for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// set stores a under its name. Replacing an existing name keeps its
// position.
func (m *AttributeMap) set(a *Attribute) {
	m.m.Set(a.name, a)
}
