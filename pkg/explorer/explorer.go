// Package explorer holds the coordination logic of the inspector: option
// validation, dispatch to one of the three modes (list collections, show
// collection, search), and result rendering. All storage and similarity work
// is delegated to the database client.
package explorer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/oops"

	"github.com/papercomputeco/vecpeek/pkg/vecdb"
)

// Error category codes attached to client-call failures. Precondition
// failures stay plain errors without codes.
const (
	CodeListFailure     = "explorer.list.failure"
	CodeDescribeFailure = "explorer.describe.failure"
	CodeQueryFailure    = "explorer.query.failure"
	CodeSearchFailure   = "explorer.search.failure"
	CodeVectorResolve   = "explorer.search.vector_resolve.failure"
)

// unknownCount is the sentinel rendered when a collection's row count cannot
// be retrieved.
const unknownCount = "unknown"

// TraceWorthy reports whether failures with the given category code print a
// full diagnostic trace. Only the read and search paths do.
func TraceWorthy(code string) bool {
	switch code {
	case CodeQueryFailure, CodeSearchFailure, CodeVectorResolve:
		return true
	default:
		return false
	}
}

// Explorer runs one inspection against an already-opened database client.
// The client handle is owned by the caller; Explorer never closes it.
type Explorer struct {
	client vecdb.Client
	opts   Options
	out    io.Writer
	logger *slog.Logger
}

func New(client vecdb.Client, opts Options, out io.Writer, logger *slog.Logger) *Explorer {
	return &Explorer{
		client: client,
		opts:   opts,
		out:    out,
		logger: logger,
	}
}

// Run dispatches to exactly one of the three modes and returns when its
// report has been printed. Control flow is strictly linear; a failed client
// call is reported once and the path returns.
func (e *Explorer) Run(ctx context.Context) error {
	switch {
	case e.opts.Search:
		return e.runSearch(ctx)
	case e.opts.Collection == "":
		return e.listCollections(ctx)
	default:
		return e.showCollection(ctx)
	}
}

// listCollections prints a table of every collection with its description
// and best-effort row count. A failing row-count (or describe) call degrades
// that one row; it never aborts the listing.
func (e *Explorer) listCollections(ctx context.Context) error {
	names, err := e.client.ListCollections(ctx)
	if err != nil {
		return oops.Code(CodeListFailure).Wrapf(err, "listing collections")
	}

	if len(names) == 0 {
		fmt.Fprintln(e.out, dimStyle.Render("No collections in database."))
		return nil
	}

	fmt.Fprintf(e.out, "\n%s\n", headerStyle.Render("Collections:"))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "DESCRIPTION", "ROWS")

	for _, name := range names {
		var desc string
		schema, err := e.client.DescribeCollection(ctx, name)
		if err != nil {
			desc = fmt.Sprintf("describe failed: %v", err)
		} else {
			desc = schema.Description
		}

		count := unknownCount
		if n, err := e.client.Stats(ctx, name); err == nil {
			count = strconv.FormatInt(n, 10)
		} else {
			e.logger.Debug("row count unavailable",
				"collection", name,
				"error", err,
			)
		}

		t.Row(name, desc, count)
	}

	fmt.Fprintln(e.out, t.Render())
	return nil
}

// showCollection runs the paged read path: schema once, then a full-scan
// query bounded by limit and offset, requesting exactly the computed output
// field set.
func (e *Explorer) showCollection(ctx context.Context) error {
	name := e.opts.Collection

	ok, err := e.client.HasCollection(ctx, name)
	if err != nil {
		return oops.Code(CodeDescribeFailure).Wrapf(err, "checking collection %q", name)
	}
	if !ok {
		return fmt.Errorf("collection %q does not exist", name)
	}

	schema, err := e.client.DescribeCollection(ctx, name)
	if err != nil {
		return oops.Code(CodeDescribeFailure).Wrapf(err, "describing collection %q", name)
	}

	fmt.Fprintf(e.out, "\n%s\n", headerStyle.Render(fmt.Sprintf("Collection %q:", name)))
	desc := schema.Description
	if desc == "" {
		desc = "none"
	}
	fmt.Fprintf(e.out, "%s %s\n", keyStyle.Render("description:"), desc)

	records, err := e.client.Query(ctx, vecdb.QueryRequest{
		Collection:   name,
		Filter:       "",
		OutputFields: e.outputFields(schema),
		Limit:        e.opts.Limit,
		Offset:       e.opts.Offset,
	})
	if err != nil {
		return oops.Code(CodeQueryFailure).Wrapf(err, "querying collection %q", name)
	}

	if len(records) == 0 {
		fmt.Fprintln(e.out, dimStyle.Render(fmt.Sprintf("Collection %q has no records.", name)))
		return nil
	}

	fmt.Fprintf(e.out, "\n%s\n", headerStyle.Render(
		fmt.Sprintf("Records %d-%d:", e.opts.Offset+1, e.opts.Offset+len(records)),
	))

	for i, rec := range records {
		e.renderRecord(e.opts.Offset+i+1, rec, schema)
	}

	return nil
}

// outputFields computes the field set for the paged read. With vector
// display every schema field except id is requested; otherwise only the
// well-known payload fields that actually exist in the schema. The id field
// is always appended.
func (e *Explorer) outputFields(schema *vecdb.CollectionSchema) []string {
	var fields []string

	if e.opts.ShowVectors {
		for _, f := range schema.Fields {
			if f.Name != "id" {
				fields = append(fields, f.Name)
			}
		}
	} else {
		for _, name := range []string{"text", "reference", "metadata"} {
			if schema.HasField(name) {
				fields = append(fields, name)
			}
		}
	}

	return append(fields, "id")
}
