// Package sqlitevec provides a vecdb.Client driver for a single sqlite-vec
// database file.
//
// One file holds any number of collections. A registry table maps a logical
// database name plus collection name to a description and vector dimension;
// each collection owns a rowid items table for scalar fields and a vec0
// virtual table for embeddings, sharing rowids.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/vecpeek/pkg/vecdb"
)

const (
	// DefaultDatabase is the logical database name used when none is given.
	DefaultDatabase = "default"

	registryTable = "vecdb_collections"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// idFilterPattern matches the only predicate shape the inspector issues:
// equality on the id field.
var idFilterPattern = regexp.MustCompile(`^\s*id\s*==\s*(\d+)\s*$`)

// Driver implements vecdb.Client backed by a sqlite-vec database file.
type Driver struct {
	db       *sql.DB
	database string
	logger   *slog.Logger
}

// Compile-time interface check.
var _ vecdb.Client = (*Driver)(nil)

// Config holds configuration for the sqlite-vec driver.
type Config struct {
	// Path is the path to the SQLite database file.
	Path string

	// Token is the auth credential in user:password form. SQLite files carry
	// no access control, so only the shape is validated.
	Token string

	// Database is the logical database name. Defaults to DefaultDatabase.
	Database string
}

// New opens a sqlite-vec database file and returns a connected driver.
// It fails when the file is not a SQLite database, when sqlite-vec is not
// loadable, or when the token is malformed.
func New(c Config, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if err := validateToken(c.Token); err != nil {
		return nil, err
	}

	database := c.Database
	if database == "" {
		database = DefaultDatabase
	}
	if !identPattern.MatchString(database) {
		return nil, fmt.Errorf("invalid database name %q", database)
	}

	db, err := sql.Open("sqlite3", c.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", vecdb.ErrConnection, c.Path, err)
	}

	// The tool is single-threaded and SQLite likes a single writer; one
	// connection also keeps temp-file databases coherent across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", vecdb.ErrConnection, err)
	}

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vecdb.ErrConnection, err)
	}

	if _, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			db          TEXT NOT NULL DEFAULT 'default',
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			dimension   INTEGER NOT NULL,
			metric      TEXT NOT NULL DEFAULT 'L2',
			PRIMARY KEY (db, name)
		)
	`, registryTable)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating collection registry: %v", vecdb.ErrConnection, err)
	}

	logger.Debug("opened sqlite-vec database",
		"path", c.Path,
		"database", database,
		"vec_version", vecVersion,
	)

	return &Driver{
		db:       db,
		database: database,
		logger:   logger,
	}, nil
}

// validateToken checks the user:password credential shape.
func validateToken(token string) error {
	if token == "" {
		return nil
	}
	user, _, ok := strings.Cut(token, ":")
	if !ok || user == "" {
		return fmt.Errorf("%w: expected user:password form", vecdb.ErrInvalidToken)
	}
	return nil
}

// itemsTable returns the physical name of a collection's scalar table.
func (d *Driver) itemsTable(name string) string {
	return fmt.Sprintf("%s__%s_items", d.database, name)
}

// vecTable returns the physical name of a collection's vec0 table.
func (d *Driver) vecTable(name string) string {
	return fmt.Sprintf("%s__%s_vec", d.database, name)
}

// HasCollection reports whether the named collection exists in the logical
// database.
func (d *Driver) HasCollection(ctx context.Context, name string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE db = ? AND name = ?`, registryTable),
		d.database, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking collection %q: %w", name, err)
	}
	return n > 0, nil
}

// ListCollections returns the collection names of the logical database in
// sorted order.
func (d *Driver) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT name FROM %s WHERE db = ? ORDER BY name`, registryTable),
		d.database,
	)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	return names, nil
}

// registryRow is the registry entry for one collection.
type registryRow struct {
	description string
	dimension   int
}

func (d *Driver) lookupCollection(ctx context.Context, name string) (*registryRow, error) {
	var r registryRow
	err := d.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT description, dimension FROM %s WHERE db = ? AND name = ?`, registryTable),
		d.database, name,
	).Scan(&r.description, &r.dimension)
	switch {
	case err == sql.ErrNoRows:
		return nil, fmt.Errorf("%w: %q", vecdb.ErrCollectionNotFound, name)
	case err != nil:
		return nil, fmt.Errorf("looking up collection %q: %w", name, err)
	}
	return &r, nil
}

// DescribeCollection returns the schema of the named collection: the scalar
// columns of its items table plus the synthetic embedding field.
func (d *Driver) DescribeCollection(ctx context.Context, name string) (*vecdb.CollectionSchema, error) {
	reg, err := d.lookupCollection(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx,
		fmt.Sprintf(`PRAGMA table_info(%q)`, d.itemsTable(name)),
	)
	if err != nil {
		return nil, fmt.Errorf("reading schema of %q: %w", name, err)
	}
	defer rows.Close()

	schema := &vecdb.CollectionSchema{
		Name:        name,
		Description: reg.description,
	}

	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scanning schema of %q: %w", name, err)
		}
		schema.Fields = append(schema.Fields, vecdb.Field{
			Name:    colName,
			Type:    colType,
			Primary: pk > 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schema of %q: %w", name, err)
	}

	schema.Fields = append(schema.Fields, vecdb.Field{
		Name: "embedding",
		Type: fmt.Sprintf("FLOAT_VECTOR(%d)", reg.dimension),
	})

	return schema, nil
}

// Stats returns the row count of the named collection.
func (d *Driver) Stats(ctx context.Context, name string) (int64, error) {
	if _, err := d.lookupCollection(ctx, name); err != nil {
		return 0, err
	}

	var count int64
	err := d.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %q`, d.itemsTable(name)),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rows of %q: %w", name, err)
	}
	return count, nil
}

// Query runs a filtered, paged read. The empty filter means full scan; the
// only predicate shape supported is equality on id.
func (d *Driver) Query(ctx context.Context, req vecdb.QueryRequest) ([]vecdb.Record, error) {
	schema, err := d.DescribeCollection(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	scalar := make(map[string]bool)
	for _, f := range schema.Fields {
		if f.Name != "embedding" {
			scalar[f.Name] = true
		}
	}

	var (
		selects []string
		fields  []string
		needVec bool
	)
	for _, f := range req.OutputFields {
		switch {
		case f == "embedding":
			selects = append(selects, "v.embedding")
			needVec = true
		case scalar[f]:
			selects = append(selects, fmt.Sprintf("i.%q", f))
		default:
			return nil, fmt.Errorf("unknown output field %q in collection %q", f, req.Collection)
		}
		fields = append(fields, f)
	}
	if len(selects) == 0 {
		return nil, fmt.Errorf("no output fields requested")
	}

	query := fmt.Sprintf(`SELECT %s FROM %q i`, strings.Join(selects, ", "), d.itemsTable(req.Collection))
	if needVec {
		query += fmt.Sprintf(` LEFT JOIN %q v ON v.rowid = i.id`, d.vecTable(req.Collection))
	}

	var args []any
	if strings.TrimSpace(req.Filter) != "" {
		m := idFilterPattern.FindStringSubmatch(req.Filter)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", vecdb.ErrUnsupportedFilter, req.Filter)
		}
		query += ` WHERE i.id = ?`
		args = append(args, m[1])
	}

	query += ` ORDER BY i.id LIMIT ? OFFSET ?`
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, req.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", req.Collection, err)
	}
	defer rows.Close()

	var records []vecdb.Record
	for rows.Next() {
		values := make([]any, len(fields))
		scans := make([]any, len(fields))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec := vecdb.Record{Fields: make(map[string]any, len(fields))}
		for i, f := range fields {
			v, err := convertValue(f, values[i])
			if err != nil {
				return nil, fmt.Errorf("decoding field %q: %w", f, err)
			}
			if v != nil {
				rec.Fields[f] = v
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	d.logger.Debug("queried collection",
		"collection", req.Collection,
		"records", len(records),
	)

	return records, nil
}

// Search runs a top-k KNN search via vec0 MATCH, one hit list per query
// vector. Only the L2 metric is supported; output fields absent from the
// schema are ignored.
func (d *Driver) Search(ctx context.Context, req vecdb.SearchRequest) ([][]vecdb.Hit, error) {
	if req.Metric != "" && req.Metric != vecdb.MetricL2 {
		return nil, fmt.Errorf("%w: %q", vecdb.ErrUnsupportedMetric, req.Metric)
	}
	if req.AnnsField != "" && req.AnnsField != "embedding" {
		return nil, fmt.Errorf("unknown vector field %q", req.AnnsField)
	}

	schema, err := d.DescribeCollection(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	var payload []string
	for _, f := range req.OutputFields {
		if f != "embedding" && f != "id" && schema.HasField(f) {
			payload = append(payload, f)
		}
	}

	selects := []string{`i."id"`}
	for _, f := range payload {
		selects = append(selects, fmt.Sprintf("i.%q", f))
	}
	selects = append(selects, "v.distance")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %q v
		INNER JOIN %q i ON i.id = v.rowid
		WHERE v.embedding MATCH ? AND v.k = ?
		ORDER BY v.distance
	`, strings.Join(selects, ", "), d.vecTable(req.Collection), d.itemsTable(req.Collection))

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	results := make([][]vecdb.Hit, 0, len(req.Vectors))
	for _, vec := range req.Vectors {
		blob, err := serializeFloat32(vec)
		if err != nil {
			return nil, fmt.Errorf("serializing query vector: %w", err)
		}

		rows, err := d.db.QueryContext(ctx, query, blob, limit)
		if err != nil {
			return nil, fmt.Errorf("searching collection %q: %w", req.Collection, err)
		}

		hits, err := scanHits(rows, payload)
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("searching collection %q: %w", req.Collection, err)
		}

		results = append(results, hits)
	}

	d.logger.Debug("searched collection",
		"collection", req.Collection,
		"vectors", len(req.Vectors),
		"limit", limit,
	)

	return results, nil
}

func scanHits(rows *sql.Rows, payload []string) ([]vecdb.Hit, error) {
	var hits []vecdb.Hit
	for rows.Next() {
		var (
			id       int64
			distance float64
		)
		values := make([]any, len(payload))
		scans := make([]any, 0, len(payload)+2)
		scans = append(scans, &id)
		for i := range values {
			scans = append(scans, &values[i])
		}
		scans = append(scans, &distance)

		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}

		rec := vecdb.Record{Fields: map[string]any{"id": id}}
		for i, f := range payload {
			v, err := convertValue(f, values[i])
			if err != nil {
				return nil, fmt.Errorf("decoding field %q: %w", f, err)
			}
			if v != nil {
				rec.Fields[f] = v
			}
		}

		hits = append(hits, vecdb.Hit{Record: rec, Score: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// Close releases the connection handle.
func (d *Driver) Close() error {
	return d.db.Close()
}

// convertValue normalizes a scanned SQL value into the shape Record
// accessors expect: metadata JSON decodes to a map, embedding blobs decode
// to []float32, byte slices become strings.
func convertValue(field string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch field {
	case "embedding":
		blob, ok := toBytes(v)
		if !ok {
			return nil, fmt.Errorf("embedding value is %T, want blob", v)
		}
		return deserializeFloat32(blob)

	case "metadata":
		raw, ok := toBytes(v)
		if !ok {
			return v, nil
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			// Not valid JSON; surface the raw text instead of failing the read.
			return string(raw), nil
		}
		return m, nil

	default:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return v, nil
	}
}

func toBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case string:
		return []byte(x), true
	default:
		return nil, false
	}
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// in sqlite-vec BLOB format.
func serializeFloat32(v []float32) ([]byte, error) {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf, nil
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
