// Package vecdb provides the client interface and value types for talking to
// an embedded vector database file. The inspector treats the database as an
// opaque collaborator: everything index- and persistence-shaped lives behind
// the Client interface; drivers under vecdb/ implement it.
package vecdb

import "context"

// Metric identifies the distance metric used for similarity search.
type Metric string

const (
	// MetricL2 is Euclidean distance; smaller values mean greater similarity.
	MetricL2 Metric = "L2"
)

// Field describes one field of a collection schema.
type Field struct {
	// Name is the field name (e.g. "id", "text", "embedding").
	Name string

	// Type is a human-readable type label (e.g. "INTEGER", "TEXT",
	// "FLOAT_VECTOR(768)").
	Type string

	// Primary marks the system id field.
	Primary bool
}

// CollectionSchema is the schema-description value object for one collection,
// fetched once and passed to whoever needs to decide output fields.
type CollectionSchema struct {
	Name        string
	Description string
	Fields      []Field
}

// HasField reports whether the schema contains a field with the given name.
func (s *CollectionSchema) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldNames returns the schema's field names in declaration order.
func (s *CollectionSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// QueryRequest is a filtered, paged read against one collection.
type QueryRequest struct {
	// Collection is the target collection name.
	Collection string

	// Filter is a predicate expression. The empty string means full scan.
	// Drivers must support at least equality on id ("id == 42").
	Filter string

	// OutputFields is the exact set of fields to return per record.
	OutputFields []string

	// Limit bounds the number of returned records.
	Limit int

	// Offset is the page start.
	Offset int
}

// SearchRequest is a top-k similarity search against one collection.
type SearchRequest struct {
	// Collection is the target collection name.
	Collection string

	// Vectors holds one or more query vectors. The result carries one hit
	// list per query vector, in order.
	Vectors [][]float32

	// AnnsField names the vector field to search.
	AnnsField string

	// Metric is the distance metric. Drivers reject metrics they do not
	// support.
	Metric Metric

	// Limit is the number of hits to return per query vector (top-k).
	Limit int

	// OutputFields is the payload requested per hit. Fields absent from the
	// collection schema are ignored rather than rejected.
	OutputFields []string
}

// Client is the capability set the inspector requires from a database client.
// Implementations are synchronous; every method blocks until the underlying
// call completes.
type Client interface {
	// HasCollection reports whether the named collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// ListCollections returns the names of all collections in the database.
	ListCollections(ctx context.Context) ([]string, error)

	// DescribeCollection returns the schema of the named collection.
	DescribeCollection(ctx context.Context, name string) (*CollectionSchema, error)

	// Stats returns the row count of the named collection. Callers treat a
	// failure as "count unknown", not as a fatal condition.
	Stats(ctx context.Context, name string) (int64, error)

	// Query runs a filtered, paged read and returns matching records.
	Query(ctx context.Context, req QueryRequest) ([]Record, error)

	// Search runs a top-k similarity search and returns one hit list per
	// query vector.
	Search(ctx context.Context, req SearchRequest) ([][]Hit, error)

	// Close releases the connection handle.
	Close() error
}
