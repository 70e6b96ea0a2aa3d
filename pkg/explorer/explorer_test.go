package explorer_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/vecpeek/pkg/explorer"
	testutils "github.com/papercomputeco/vecpeek/pkg/utils/test"
	"github.com/papercomputeco/vecpeek/pkg/vecdb"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// existingDB creates an empty file and returns its path, so Validate's
// file-existence check passes.
func existingDB() string {
	path := filepath.Join(GinkgoT().TempDir(), "store.db")
	Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())
	return path
}

func docsSchema() *vecdb.CollectionSchema {
	return &vecdb.CollectionSchema{
		Name:        "docs",
		Description: "demo documents",
		Fields: []vecdb.Field{
			{Name: "id", Type: "INT64", Primary: true},
			{Name: "text", Type: "TEXT"},
			{Name: "reference", Type: "TEXT"},
			{Name: "metadata", Type: "TEXT"},
			{Name: "embedding", Type: "FLOAT_VECTOR(3)"},
		},
	}
}

var _ = Describe("Options.Validate", func() {
	It("should reject a URI whose file does not exist", func() {
		opts := explorer.Options{URI: "/definitely/not/here.db"}
		err := opts.Validate()
		Expect(err).To(MatchError(ContainSubstring("does not exist")))
	})

	It("should skip the file check for :memory:", func() {
		opts := explorer.Options{URI: ":memory:"}
		Expect(opts.Validate()).To(Succeed())
	})

	It("should strip a file:// prefix before checking", func() {
		opts := explorer.Options{URI: "file://" + existingDB()}
		Expect(opts.Validate()).To(Succeed())
	})

	It("should require a collection for search", func() {
		opts := explorer.Options{URI: ":memory:", Search: true}
		err := opts.Validate()
		Expect(err).To(MatchError(ContainSubstring("--collection")))
	})

	It("should require at least one vector source for search", func() {
		opts := explorer.Options{URI: ":memory:", Search: true, Collection: "docs"}
		err := opts.Validate()
		Expect(err).To(MatchError(ContainSubstring("--search_vector")))
	})

	It("should reject a malformed search vector", func() {
		opts := explorer.Options{
			URI:          ":memory:",
			Search:       true,
			Collection:   "docs",
			SearchVector: "[0.1, oops]",
		}
		Expect(opts.Validate()).NotTo(Succeed())
	})

	It("should reject a non-array search vector", func() {
		opts := explorer.Options{
			URI:          ":memory:",
			Search:       true,
			Collection:   "docs",
			SearchVector: `{"x": 1}`,
		}
		err := opts.Validate()
		Expect(err).To(MatchError(ContainSubstring("JSON array")))
	})

	It("should accept a numeric JSON array", func() {
		opts := explorer.Options{
			URI:          ":memory:",
			Search:       true,
			Collection:   "docs",
			SearchVector: "[0.1, 0.2, 0.3]",
		}
		Expect(opts.Validate()).To(Succeed())
	})
})

var _ = Describe("Explorer", func() {
	var (
		client *testutils.FakeClient
		out    *bytes.Buffer
		ctx    context.Context
	)

	BeforeEach(func() {
		client = testutils.NewFakeClient()
		out = &bytes.Buffer{}
		ctx = context.Background()
	})

	run := func(opts explorer.Options) error {
		return explorer.New(client, opts, out, discardLogger()).Run(ctx)
	}

	Describe("listing collections", func() {
		It("should report an empty database", func() {
			Expect(run(explorer.Options{})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No collections in database."))
		})

		It("should render name, description and row count", func() {
			client.AddCollection(docsSchema(), 42)

			Expect(run(explorer.Options{})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("docs"))
			Expect(out.String()).To(ContainSubstring("demo documents"))
			Expect(out.String()).To(ContainSubstring("42"))
		})

		It("should degrade a failing row count to unknown without hiding other rows", func() {
			client.AddCollection(docsSchema(), 42)
			client.AddCollection(&vecdb.CollectionSchema{
				Name:        "archive",
				Description: "older documents",
			}, 314)
			client.StatsErr["docs"] = context.DeadlineExceeded

			Expect(run(explorer.Options{})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("docs"))
			Expect(out.String()).To(ContainSubstring("unknown"))
			Expect(out.String()).NotTo(ContainSubstring("42"))
			Expect(out.String()).To(ContainSubstring("archive"))
			Expect(out.String()).To(ContainSubstring("314"))
		})

		It("should fail when the listing itself fails", func() {
			client.ListErr = context.DeadlineExceeded
			Expect(run(explorer.Options{})).NotTo(Succeed())
		})
	})

	Describe("showing a collection", func() {
		It("should fail plainly when the collection is missing", func() {
			err := run(explorer.Options{Collection: "nope", Limit: 10})
			Expect(err).To(MatchError(ContainSubstring(`collection "nope" does not exist`)))
			Expect(client.Calls).NotTo(ContainElement("Query"))
		})

		It("should report an empty collection without a record header", func() {
			client.AddCollection(docsSchema(), 0)

			Expect(run(explorer.Options{Collection: "docs", Limit: 10})).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`Collection "docs" has no records.`))
			Expect(out.String()).NotTo(ContainSubstring("--- record"))
		})

		It("should number records from the offset", func() {
			client.AddCollection(docsSchema(), 10)
			client.QueryRows = []vecdb.Record{
				{Fields: map[string]any{"id": int64(3), "text": "third"}},
				{Fields: map[string]any{"id": int64(4), "text": "fourth"}},
			}

			Expect(run(explorer.Options{Collection: "docs", Limit: 2, Offset: 2})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Records 3-4:"))
			Expect(out.String()).To(ContainSubstring("--- record #3 ---"))
			Expect(out.String()).To(ContainSubstring("--- record #4 ---"))
		})

		It("should request only payload fields plus id by default", func() {
			client.AddCollection(docsSchema(), 1)

			Expect(run(explorer.Options{Collection: "docs", Limit: 10})).To(Succeed())
			Expect(client.QueryRequests).To(HaveLen(1))
			Expect(client.QueryRequests[0].OutputFields).To(Equal(
				[]string{"text", "reference", "metadata", "id"},
			))
			Expect(client.QueryRequests[0].Limit).To(Equal(10))
		})

		It("should request every non-id field with vector display on", func() {
			client.AddCollection(docsSchema(), 1)

			Expect(run(explorer.Options{Collection: "docs", Limit: 10, ShowVectors: true})).To(Succeed())
			Expect(client.QueryRequests[0].OutputFields).To(Equal(
				[]string{"text", "reference", "metadata", "embedding", "id"},
			))
		})

		It("should truncate long multi-byte text by character count", func() {
			client.AddCollection(docsSchema(), 1)
			client.QueryRows = []vecdb.Record{
				{Fields: map[string]any{"id": int64(1), "text": strings.Repeat("数", 101)}},
			}

			Expect(run(explorer.Options{Collection: "docs", Limit: 10})).To(Succeed())
			Expect(out.String()).To(ContainSubstring(strings.Repeat("数", 97) + "..."))
			Expect(out.String()).NotTo(ContainSubstring(strings.Repeat("数", 98)))
		})

		It("should render vector previews when asked", func() {
			client.AddCollection(docsSchema(), 1)
			client.QueryRows = []vecdb.Record{
				{Fields: map[string]any{
					"id":        int64(1),
					"text":      "hello",
					"embedding": []float32{3, 4},
				}},
			}

			Expect(run(explorer.Options{
				Collection: "docs", Limit: 10, ShowVectors: true, VectorPreview: 5,
			})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("(dim 2)"))
			Expect(out.String()).To(ContainSubstring("norm: 5.0000"))
		})
	})

	Describe("searching", func() {
		validSearch := func() explorer.Options {
			opts := explorer.Options{
				URI:          ":memory:",
				Collection:   "docs",
				Search:       true,
				SearchVector: "[0.1, 0.2, 0.3]",
				TopK:         3,
			}
			Expect(opts.Validate()).To(Succeed())
			return opts
		}

		It("should issue exactly one search with the parsed vector", func() {
			client.AddCollection(docsSchema(), 1)

			Expect(run(validSearch())).To(Succeed())
			Expect(client.SearchRequests).To(HaveLen(1))

			req := client.SearchRequests[0]
			Expect(req.Collection).To(Equal("docs"))
			Expect(req.Vectors).To(Equal([][]float32{{0.1, 0.2, 0.3}}))
			Expect(req.AnnsField).To(Equal("embedding"))
			Expect(req.Metric).To(Equal(vecdb.MetricL2))
			Expect(req.Limit).To(Equal(3))
			Expect(req.OutputFields).To(Equal([]string{"text", "reference", "metadata"}))
		})

		It("should report when nothing is similar", func() {
			client.AddCollection(docsSchema(), 1)

			Expect(run(validSearch())).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No similar results found."))
		})

		It("should render ranked hits with scores", func() {
			client.AddCollection(docsSchema(), 2)
			client.SearchHits = []vecdb.Hit{
				{Record: vecdb.Record{Fields: map[string]any{"id": int64(7), "text": "close"}}, Score: 0.1234},
				{Record: vecdb.Record{Fields: map[string]any{"id": int64(9), "text": "far"}}, Score: 2.5},
			}

			Expect(run(validSearch())).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Found 2 similar results:"))
			Expect(out.String()).To(ContainSubstring("#1"))
			Expect(out.String()).To(ContainSubstring("0.1234"))
			Expect(out.String()).To(ContainSubstring("#2"))
		})

		It("should prefer the stored vector of a record id over an explicit vector", func() {
			client.AddCollection(docsSchema(), 1)
			client.QueryRows = []vecdb.Record{
				{Fields: map[string]any{"id": int64(5), "embedding": []float32{9, 9, 9}}},
			}

			opts := validSearch()
			opts.SearchID = 5
			opts.HasSearchID = true

			Expect(run(opts)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("stored vector of record 5"))

			Expect(client.QueryRequests).To(HaveLen(1))
			Expect(client.QueryRequests[0].Filter).To(Equal("id == 5"))
			Expect(client.QueryRequests[0].OutputFields).To(Equal([]string{"embedding"}))

			Expect(client.SearchRequests).To(HaveLen(1))
			Expect(client.SearchRequests[0].Vectors).To(Equal([][]float32{{9, 9, 9}}))
		})

		It("should fail when the record id has no match", func() {
			client.AddCollection(docsSchema(), 0)

			opts := explorer.Options{
				URI: ":memory:", Collection: "docs", Search: true,
				SearchID: 99, HasSearchID: true, TopK: 3,
			}
			Expect(opts.Validate()).To(Succeed())

			err := run(opts)
			Expect(err).To(MatchError(ContainSubstring("no record with id 99")))
			Expect(client.Calls).NotTo(ContainElement("Search"))
		})

		It("should refuse text search before any search call", func() {
			client.AddCollection(docsSchema(), 1)

			opts := explorer.Options{
				URI: ":memory:", Collection: "docs", Search: true,
				SearchText: "find me", TopK: 3,
			}
			Expect(opts.Validate()).To(Succeed())

			err := run(opts)
			Expect(err).To(MatchError(ContainSubstring("text search is not implemented")))
			Expect(client.Calls).NotTo(ContainElement("Search"))
		})

		It("should fail plainly when the collection is missing", func() {
			err := run(validSearch())
			Expect(err).To(MatchError(ContainSubstring(`collection "docs" does not exist`)))
			Expect(client.Calls).NotTo(ContainElement("Search"))
		})
	})
})

var _ = Describe("TraceWorthy", func() {
	It("should flag only read and search failures", func() {
		Expect(explorer.TraceWorthy(explorer.CodeQueryFailure)).To(BeTrue())
		Expect(explorer.TraceWorthy(explorer.CodeSearchFailure)).To(BeTrue())
		Expect(explorer.TraceWorthy(explorer.CodeVectorResolve)).To(BeTrue())
		Expect(explorer.TraceWorthy(explorer.CodeListFailure)).To(BeFalse())
		Expect(explorer.TraceWorthy(explorer.CodeDescribeFailure)).To(BeFalse())
		Expect(explorer.TraceWorthy("other")).To(BeFalse())
	})
})
