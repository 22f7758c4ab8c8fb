package features

// Schema is the canonical ordered feature-name list. Every feature vector
// in the system has exactly this width and order; unknown keys from the
// ingestion boundary are dropped and missing keys default to zero.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a schema from an ordered name list.
func NewSchema(names []string) *Schema {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	// Copy so callers cannot mutate the order afterwards.
	owned := make([]string, len(names))
	copy(owned, names)
	return &Schema{names: owned, index: index}
}

// Names returns the ordered feature names.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the schema width.
func (s *Schema) Len() int {
	return len(s.names)
}

// Vector converts a raw feature map into a fixed-width vector.
func (s *Schema) Vector(m map[string]float64) []float64 {
	vec := make([]float64, len(s.names))
	for name, value := range m {
		if i, ok := s.index[name]; ok {
			vec[i] = value
		}
	}
	return vec
}
