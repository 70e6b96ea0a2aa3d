package explorer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Options are the per-invocation options of the inspector, resolved from
// flags, environment and config file before any client contact.
type Options struct {
	// Connection.
	URI      string
	Token    string
	Database string

	// Read surface.
	Collection    string
	Limit         int
	Offset        int
	ShowVectors   bool
	VectorPreview int

	// Search surface.
	Search       bool
	SearchText   string
	SearchVector string
	SearchID     int64
	HasSearchID  bool
	TopK         int

	// queryVector holds the parsed --search_vector value once Validate has
	// accepted it.
	queryVector []float32
}

// Validate rejects inconsistent or unusable options before a connection is
// opened. Precondition failures are plain errors: they carry no category
// code and no trace, just the message.
func (o *Options) Validate() error {
	path := strings.TrimPrefix(o.URI, "file://")
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("database file %q does not exist", o.URI)
			}
			return fmt.Errorf("checking database file %q: %w", o.URI, err)
		}
	}

	if !o.Search {
		return nil
	}

	if o.Collection == "" {
		return errors.New("search requires a collection name (--collection)")
	}

	if !o.HasSearchID && o.SearchVector == "" && o.SearchText == "" {
		return errors.New("search requires one of --search_vector, --search_id, or --search_text")
	}

	if o.SearchVector != "" {
		vec, err := parseVectorJSON(o.SearchVector)
		if err != nil {
			return err
		}
		o.queryVector = vec
	}

	return nil
}

// parseVectorJSON parses an explicit query vector. The value must be a JSON
// array of numbers; any dimensionality is accepted and forwarded to the
// database client uninterpreted.
func parseVectorJSON(s string) ([]float32, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("search vector must be a valid JSON array: %w", err)
	}

	arr, ok := v.([]any)
	if !ok {
		return nil, errors.New("search vector must be a JSON array")
	}

	vec := make([]float32, 0, len(arr))
	for i, elem := range arr {
		n, ok := elem.(float64)
		if !ok {
			return nil, fmt.Errorf("search vector element %d is not a number", i)
		}
		vec = append(vec, float32(n))
	}
	return vec, nil
}
