package mapping

// Mappings is an ordered set of property mappings keyed by mapping name.
// Order follows the field order reported by the metadata reader; adding
// a name that is already present replaces the value in place.
type Mappings struct {
	names  []string
	byName map[string]*PropertyMapping
}

func newMappings(capacity int) *Mappings {
	return &Mappings{
		names:  make([]string, 0, capacity),
		byName: make(map[string]*PropertyMapping, capacity),
	}
}

func (ms *Mappings) put(m *PropertyMapping) {
	if _, ok := ms.byName[m.MappingName()]; !ok {
		ms.names = append(ms.names, m.MappingName())
	}
	ms.byName[m.MappingName()] = m
}

// Len returns the number of mappings
func (ms *Mappings) Len() int { return len(ms.names) }

// Get returns the mapping registered under name
func (ms *Mappings) Get(name string) (*PropertyMapping, bool) {
	m, ok := ms.byName[name]
	return m, ok
}

// Names returns the mapping names in order
func (ms *Mappings) Names() []string {
	out := make([]string, len(ms.names))
	copy(out, ms.names)
	return out
}

// All returns the mappings in order
func (ms *Mappings) All() []*PropertyMapping {
	out := make([]*PropertyMapping, 0, len(ms.names))
	for _, name := range ms.names {
		out = append(out, ms.byName[name])
	}
	return out
}
