package explorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/papercomputeco/vecpeek/pkg/vecdb"
)

// searchOutputFields is the payload requested for every hit.
var searchOutputFields = []string{"text", "reference", "metadata"}

// runSearch resolves a query vector and issues one top-k similarity search
// under the fixed L2 metric.
func (e *Explorer) runSearch(ctx context.Context) error {
	name := e.opts.Collection

	ok, err := e.client.HasCollection(ctx, name)
	if err != nil {
		return oops.Code(CodeSearchFailure).Wrapf(err, "checking collection %q", name)
	}
	if !ok {
		return fmt.Errorf("collection %q does not exist", name)
	}

	vec, err := e.resolveQueryVector(ctx)
	if err != nil {
		return err
	}

	results, err := e.client.Search(ctx, vecdb.SearchRequest{
		Collection:   name,
		Vectors:      [][]float32{vec},
		AnnsField:    "embedding",
		Metric:       vecdb.MetricL2,
		Limit:        e.opts.TopK,
		OutputFields: searchOutputFields,
	})
	if err != nil {
		return oops.Code(CodeSearchFailure).Wrapf(err, "searching collection %q", name)
	}

	if len(results) == 0 || len(results[0]) == 0 {
		fmt.Fprintln(e.out, dimStyle.Render("No similar results found."))
		return nil
	}

	hits := results[0]
	fmt.Fprintf(e.out, "\n%s\n", headerStyle.Render(fmt.Sprintf("Found %d similar results:", len(hits))))

	for i, hit := range hits {
		e.renderHit(i+1, hit)
	}

	return nil
}

// resolveQueryVector picks the query vector source, first match wins:
// stored vector of a record id, then the explicit JSON vector, then text.
// Text search stays unimplemented; it fails with a pointer to the other two
// modes before any client contact.
func (e *Explorer) resolveQueryVector(ctx context.Context) ([]float32, error) {
	switch {
	case e.opts.HasSearchID:
		records, err := e.client.Query(ctx, vecdb.QueryRequest{
			Collection:   e.opts.Collection,
			Filter:       fmt.Sprintf("id == %d", e.opts.SearchID),
			OutputFields: []string{"embedding"},
			Limit:        1,
		})
		if err != nil {
			return nil, oops.Code(CodeVectorResolve).Wrapf(err, "fetching vector of record %d", e.opts.SearchID)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("no record with id %d in collection %q", e.opts.SearchID, e.opts.Collection)
		}
		emb, ok := records[0].Embedding()
		if !ok {
			return nil, fmt.Errorf("record %d in collection %q has no embedding", e.opts.SearchID, e.opts.Collection)
		}
		fmt.Fprintln(e.out, dimStyle.Render(
			fmt.Sprintf("Searching with the stored vector of record %d.", e.opts.SearchID),
		))
		return emb, nil

	case e.opts.queryVector != nil:
		fmt.Fprintln(e.out, dimStyle.Render(
			fmt.Sprintf("Searching with the provided vector (dimension %d).", len(e.opts.queryVector)),
		))
		return e.opts.queryVector, nil

	default:
		return nil, errors.New(
			"text search is not implemented: no embedding model is wired in; use --search_vector or --search_id",
		)
	}
}
