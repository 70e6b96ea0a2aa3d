package sqlitevec_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/vecpeek/pkg/vecdb"
	"github.com/papercomputeco/vecpeek/pkg/vecdb/sqlitevec"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openDriver(path string) *sqlitevec.Driver {
	d, err := sqlitevec.New(sqlitevec.Config{Path: path}, discardLogger())
	Expect(err).NotTo(HaveOccurred())
	return d
}

var _ = Describe("New", func() {
	It("should require a database path", func() {
		_, err := sqlitevec.New(sqlitevec.Config{}, discardLogger())
		Expect(err).To(HaveOccurred())
	})

	It("should reject a token without a user part", func() {
		path := filepath.Join(GinkgoT().TempDir(), "t.db")
		_, err := sqlitevec.New(sqlitevec.Config{Path: path, Token: ":password"}, discardLogger())
		Expect(err).To(MatchError(vecdb.ErrInvalidToken))
	})

	It("should reject a token without a colon", func() {
		path := filepath.Join(GinkgoT().TempDir(), "t.db")
		_, err := sqlitevec.New(sqlitevec.Config{Path: path, Token: "root"}, discardLogger())
		Expect(err).To(MatchError(vecdb.ErrInvalidToken))
	})

	It("should accept an empty token", func() {
		path := filepath.Join(GinkgoT().TempDir(), "t.db")
		d, err := sqlitevec.New(sqlitevec.Config{Path: path}, discardLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Close()).To(Succeed())
	})

	It("should reject a database name with unsafe characters", func() {
		path := filepath.Join(GinkgoT().TempDir(), "t.db")
		_, err := sqlitevec.New(sqlitevec.Config{Path: path, Database: "bad;name"}, discardLogger())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Driver", func() {
	var (
		d   *sqlitevec.Driver
		ctx context.Context
	)

	seed := func() {
		Expect(d.CreateCollection(ctx, sqlitevec.CollectionSpec{
			Name:        "docs",
			Description: "test documents",
			Dimension:   3,
		})).To(Succeed())

		Expect(d.Insert(ctx, "docs", []sqlitevec.Row{
			{
				Text:      "alpha",
				Reference: "ref-1",
				Metadata:  map[string]any{"lang": "en"},
				Embedding: []float32{1, 0, 0},
			},
			{
				Text:      "beta",
				Reference: "ref-2",
				Embedding: []float32{0, 1, 0},
			},
			{
				Text:      "gamma",
				Reference: "ref-3",
				Embedding: []float32{0, 0, 1},
			},
		})).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		d = openDriver(filepath.Join(GinkgoT().TempDir(), "store.db"))
	})

	AfterEach(func() {
		Expect(d.Close()).To(Succeed())
	})

	Describe("collection registry", func() {
		It("should start empty", func() {
			names, err := d.ListCollections(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(BeEmpty())

			ok, err := d.HasCollection(ctx, "docs")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should list created collections in sorted order", func() {
			seed()
			Expect(d.CreateCollection(ctx, sqlitevec.CollectionSpec{
				Name: "archive", Dimension: 2,
			})).To(Succeed())

			names, err := d.ListCollections(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"archive", "docs"}))
		})

		It("should refuse duplicate collection names", func() {
			seed()
			err := d.CreateCollection(ctx, sqlitevec.CollectionSpec{Name: "docs", Dimension: 3})
			Expect(err).To(HaveOccurred())
		})

		It("should keep logical databases separate", func() {
			seed()

			other, err := sqlitevec.New(sqlitevec.Config{
				Path:     filepath.Join(GinkgoT().TempDir(), "other.db"),
				Database: "staging",
			}, discardLogger())
			Expect(err).NotTo(HaveOccurred())
			defer other.Close()

			ok, err := other.HasCollection(ctx, "docs")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("DescribeCollection", func() {
		It("should fail for a missing collection", func() {
			_, err := d.DescribeCollection(ctx, "nope")
			Expect(err).To(MatchError(vecdb.ErrCollectionNotFound))
		})

		It("should return scalar columns plus the embedding field", func() {
			seed()

			schema, err := d.DescribeCollection(ctx, "docs")
			Expect(err).NotTo(HaveOccurred())
			Expect(schema.Name).To(Equal("docs"))
			Expect(schema.Description).To(Equal("test documents"))
			Expect(schema.FieldNames()).To(Equal(
				[]string{"id", "text", "reference", "metadata", "embedding"},
			))
			Expect(schema.HasField("embedding")).To(BeTrue())
		})
	})

	Describe("Stats", func() {
		It("should fail for a missing collection", func() {
			_, err := d.Stats(ctx, "nope")
			Expect(err).To(MatchError(vecdb.ErrCollectionNotFound))
		})

		It("should count inserted rows", func() {
			seed()
			n, err := d.Stats(ctx, "docs")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(3)))
		})
	})

	Describe("Query", func() {
		It("should page in id order", func() {
			seed()

			records, err := d.Query(ctx, vecdb.QueryRequest{
				Collection:   "docs",
				OutputFields: []string{"text", "id"},
				Limit:        2,
				Offset:       1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))

			text, _ := records[0].Text()
			Expect(text).To(Equal("beta"))
			text, _ = records[1].Text()
			Expect(text).To(Equal("gamma"))
		})

		It("should filter by id equality", func() {
			seed()

			records, err := d.Query(ctx, vecdb.QueryRequest{
				Collection:   "docs",
				Filter:       "id == 2",
				OutputFields: []string{"text", "id"},
				Limit:        10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			id, ok := records[0].ID()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(int64(2)))
		})

		It("should reject any other filter shape", func() {
			seed()

			_, err := d.Query(ctx, vecdb.QueryRequest{
				Collection:   "docs",
				Filter:       "text == 'alpha'",
				OutputFields: []string{"id"},
			})
			Expect(err).To(MatchError(vecdb.ErrUnsupportedFilter))
		})

		It("should reject unknown output fields", func() {
			seed()

			_, err := d.Query(ctx, vecdb.QueryRequest{
				Collection:   "docs",
				OutputFields: []string{"id", "nope"},
			})
			Expect(err).To(HaveOccurred())
		})

		It("should decode metadata and embedding values", func() {
			seed()

			records, err := d.Query(ctx, vecdb.QueryRequest{
				Collection:   "docs",
				Filter:       "id == 1",
				OutputFields: []string{"text", "metadata", "embedding", "id"},
				Limit:        1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			meta, ok := records[0].Metadata()
			Expect(ok).To(BeTrue())
			Expect(meta).To(HaveKeyWithValue("lang", "en"))

			emb, ok := records[0].Embedding()
			Expect(ok).To(BeTrue())
			Expect(emb).To(Equal([]float32{1, 0, 0}))
		})
	})

	Describe("Search", func() {
		It("should return hits in ascending distance order", func() {
			seed()

			results, err := d.Search(ctx, vecdb.SearchRequest{
				Collection:   "docs",
				Vectors:      [][]float32{{0.9, 0.1, 0}},
				AnnsField:    "embedding",
				Metric:       vecdb.MetricL2,
				Limit:        2,
				OutputFields: []string{"text", "reference", "metadata"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0]).To(HaveLen(2))

			text, _ := results[0][0].Text()
			Expect(text).To(Equal("alpha"))
			Expect(results[0][0].Score).To(BeNumerically("<", results[0][1].Score))
		})

		It("should return one hit list per query vector", func() {
			seed()

			results, err := d.Search(ctx, vecdb.SearchRequest{
				Collection: "docs",
				Vectors:    [][]float32{{1, 0, 0}, {0, 0, 1}},
				Limit:      1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			text, _ := results[0][0].Text()
			Expect(text).To(Equal("alpha"))
			text, _ = results[1][0].Text()
			Expect(text).To(Equal("gamma"))
		})

		It("should reject unsupported metrics", func() {
			seed()

			_, err := d.Search(ctx, vecdb.SearchRequest{
				Collection: "docs",
				Vectors:    [][]float32{{1, 0, 0}},
				Metric:     vecdb.Metric("COSINE"),
			})
			Expect(err).To(MatchError(vecdb.ErrUnsupportedMetric))
		})

		It("should reject unknown vector fields", func() {
			seed()

			_, err := d.Search(ctx, vecdb.SearchRequest{
				Collection: "docs",
				Vectors:    [][]float32{{1, 0, 0}},
				AnnsField:  "other_vec",
			})
			Expect(err).To(HaveOccurred())
		})

		It("should ignore output fields absent from the schema", func() {
			seed()

			results, err := d.Search(ctx, vecdb.SearchRequest{
				Collection:   "docs",
				Vectors:      [][]float32{{1, 0, 0}},
				Limit:        1,
				OutputFields: []string{"text", "not_a_field"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0]).To(HaveLen(1))
		})
	})

	Describe("Insert", func() {
		It("should reject mismatched embedding dimensions", func() {
			seed()

			err := d.Insert(ctx, "docs", []sqlitevec.Row{
				{Text: "bad", Embedding: []float32{1, 2}},
			})
			Expect(err).To(HaveOccurred())
		})

		It("should fail for a missing collection", func() {
			err := d.Insert(ctx, "nope", []sqlitevec.Row{
				{Text: "x", Embedding: []float32{1}},
			})
			Expect(err).To(MatchError(vecdb.ErrCollectionNotFound))
		})
	})
})
