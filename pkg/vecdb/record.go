package vecdb

// Record is one stored row as returned by Query. Fields holds only what the
// request's OutputFields asked for; the typed accessors paper over the
// dynamic map for the well-known fields.
type Record struct {
	Fields map[string]any
}

// ID returns the record id if it was requested and present.
func (r Record) ID() (int64, bool) {
	switch v := r.Fields["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Text returns the text field if present.
func (r Record) Text() (string, bool) {
	s, ok := r.Fields["text"].(string)
	return s, ok
}

// Reference returns the reference field if present.
func (r Record) Reference() (string, bool) {
	s, ok := r.Fields["reference"].(string)
	return s, ok
}

// Metadata returns the decoded metadata mapping if present and non-empty.
func (r Record) Metadata() (map[string]any, bool) {
	m, ok := r.Fields["metadata"].(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// Embedding returns the vector field if present.
func (r Record) Embedding() ([]float32, bool) {
	v, ok := r.Fields["embedding"].([]float32)
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// Value returns the raw value of an arbitrary field.
func (r Record) Value(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Hit is a search result: a record payload plus its similarity score.
// For the L2 metric, lower scores mean greater similarity.
type Hit struct {
	Record

	Score float64
}
