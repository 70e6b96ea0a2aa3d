// Package testutils provides shared test doubles.
package testutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/vecpeek/pkg/vecdb"
)

// FakeClient is a scriptable vecdb.Client that records every call it
// receives. Zero value behaves like an empty database.
type FakeClient struct {
	Collections map[string]*vecdb.CollectionSchema
	RowCounts   map[string]int64
	QueryRows   []vecdb.Record
	SearchHits  []vecdb.Hit

	// Per-call error injection.
	ListErr   error
	StatsErr  map[string]error
	QueryErr  error
	SearchErr error

	// Recorded calls.
	Calls          []string
	QueryRequests  []vecdb.QueryRequest
	SearchRequests []vecdb.SearchRequest
	Closed         bool
}

// Compile-time interface check.
var _ vecdb.Client = (*FakeClient)(nil)

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Collections: make(map[string]*vecdb.CollectionSchema),
		RowCounts:   make(map[string]int64),
		StatsErr:    make(map[string]error),
	}
}

// AddCollection registers a schema and row count.
func (f *FakeClient) AddCollection(schema *vecdb.CollectionSchema, rows int64) {
	f.Collections[schema.Name] = schema
	f.RowCounts[schema.Name] = rows
}

func (f *FakeClient) HasCollection(_ context.Context, name string) (bool, error) {
	f.Calls = append(f.Calls, "HasCollection")
	_, ok := f.Collections[name]
	return ok, nil
}

func (f *FakeClient) ListCollections(_ context.Context) ([]string, error) {
	f.Calls = append(f.Calls, "ListCollections")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	names := make([]string, 0, len(f.Collections))
	for name := range f.Collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *FakeClient) DescribeCollection(_ context.Context, name string) (*vecdb.CollectionSchema, error) {
	f.Calls = append(f.Calls, "DescribeCollection")
	schema, ok := f.Collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", vecdb.ErrCollectionNotFound, name)
	}
	return schema, nil
}

func (f *FakeClient) Stats(_ context.Context, name string) (int64, error) {
	f.Calls = append(f.Calls, "Stats")
	if err := f.StatsErr[name]; err != nil {
		return 0, err
	}
	return f.RowCounts[name], nil
}

func (f *FakeClient) Query(_ context.Context, req vecdb.QueryRequest) ([]vecdb.Record, error) {
	f.Calls = append(f.Calls, "Query")
	f.QueryRequests = append(f.QueryRequests, req)
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	return f.QueryRows, nil
}

func (f *FakeClient) Search(_ context.Context, req vecdb.SearchRequest) ([][]vecdb.Hit, error) {
	f.Calls = append(f.Calls, "Search")
	f.SearchRequests = append(f.SearchRequests, req)
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	if f.SearchHits == nil {
		return [][]vecdb.Hit{{}}, nil
	}
	return [][]vecdb.Hit{f.SearchHits}, nil
}

func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}
