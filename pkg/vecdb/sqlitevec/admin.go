package sqlitevec

import (
	"context"
	"encoding/json"
	"fmt"
)

// CollectionSpec describes a collection to create.
type CollectionSpec struct {
	Name        string
	Description string
	Dimension   int
}

// Row is one record to insert. The id is assigned by the database.
type Row struct {
	Text      string
	Reference string
	Metadata  map[string]any
	Embedding []float32
}

// CreateCollection registers a collection and creates its items and vec0
// tables. The inspector never calls this; it exists for seeding and tests.
func (d *Driver) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	if !identPattern.MatchString(spec.Name) {
		return fmt.Errorf("invalid collection name %q", spec.Name)
	}
	if spec.Dimension <= 0 {
		return fmt.Errorf("collection %q needs a positive vector dimension", spec.Name)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (db, name, description, dimension) VALUES (?, ?, ?, ?)`, registryTable),
		d.database, spec.Name, spec.Description, spec.Dimension,
	); err != nil {
		return fmt.Errorf("registering collection %q: %w", spec.Name, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE %q (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			text      TEXT,
			reference TEXT,
			metadata  TEXT NOT NULL DEFAULT '{}'
		)
	`, d.itemsTable(spec.Name))); err != nil {
		return fmt.Errorf("creating items table for %q: %w", spec.Name, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE VIRTUAL TABLE %q USING vec0(embedding float[%d])`,
		d.vecTable(spec.Name), spec.Dimension,
	)); err != nil {
		return fmt.Errorf("creating vec0 table for %q: %w", spec.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("created collection",
		"collection", spec.Name,
		"dimension", spec.Dimension,
	)

	return nil
}

// Insert stores rows in the named collection. Embedding dimensions must
// match the collection's registered dimension.
func (d *Driver) Insert(ctx context.Context, collection string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	reg, err := d.lookupCollection(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		if len(row.Embedding) != reg.dimension {
			return fmt.Errorf("embedding dimension %d does not match collection %q dimension %d",
				len(row.Embedding), collection, reg.dimension)
		}

		meta := row.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %q (text, reference, metadata) VALUES (?, ?, ?)`, d.itemsTable(collection)),
			row.Text, row.Reference, string(metaJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting row into %q: %w", collection, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid: %w", err)
		}

		blob, err := serializeFloat32(row.Embedding)
		if err != nil {
			return fmt.Errorf("serializing embedding: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %q (rowid, embedding) VALUES (?, ?)`, d.vecTable(collection)),
			rowID, blob,
		); err != nil {
			return fmt.Errorf("inserting embedding into %q: %w", collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("inserted rows",
		"collection", collection,
		"count", len(rows),
	)

	return nil
}
