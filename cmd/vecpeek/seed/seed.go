package seedcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/vecpeek/pkg/cliui"
	"github.com/papercomputeco/vecpeek/pkg/config"
	"github.com/papercomputeco/vecpeek/pkg/vecdb/sqlitevec"
)

const seedLongDesc string = `Seed demo collections into a vector database file.

Creates two small collections with embeddings so the inspector has
something to show. Seeding refuses to touch an existing file unless
--overwrite is given.

Examples:
  vecpeek seed
  vecpeek seed --uri ./demo.db
  vecpeek seed --overwrite`

const seedShortDesc string = "Seed demo collections"

type seedCommander struct {
	uri       string
	overwrite bool
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagURI, &cmder.uri)
	cmd.Flags().BoolVarP(&cmder.overwrite, "overwrite", "f", false, "Overwrite the database file before seeding")

	return cmd
}

// resolve wires the uri flag into the viper precedence chain so a
// connection.uri persisted with "vecpeek config set" seeds the same file the
// root command inspects. An explicit --uri still wins.
func (c *seedCommander) resolve(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagURI})
	c.uri = v.GetString("connection.uri")

	return nil
}

func (c *seedCommander) run(ctx context.Context) error {
	if _, err := os.Stat(c.uri); err == nil {
		if !c.overwrite {
			return fmt.Errorf("database file %q already exists; pass --overwrite to replace it", c.uri)
		}
		if err := os.Remove(c.uri); err != nil {
			return fmt.Errorf("removing %q: %w", c.uri, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %q: %w", c.uri, err)
	}

	var collections, rows int
	if err := cliui.Step(os.Stdout, "Seeding demo collections", func() error {
		var seedErr error
		collections, rows, seedErr = SeedDemo(ctx, c.uri)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Seeded %s collections %s into %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(strconv.Itoa(collections)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d records)", rows)),
		cliui.DimStyle.Render(c.uri),
	)
	return nil
}

// demoCollection pairs a collection spec with its rows.
type demoCollection struct {
	spec sqlitevec.CollectionSpec
	rows []sqlitevec.Row
}

// SeedDemo writes the demo collections into the database file at path and
// returns the collection and record counts.
func SeedDemo(ctx context.Context, path string) (int, int, error) {
	driver, err := sqlitevec.New(sqlitevec.Config{Path: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return 0, 0, err
	}
	defer driver.Close()

	demos := demoCollections()

	total := 0
	for _, demo := range demos {
		if err := driver.CreateCollection(ctx, demo.spec); err != nil {
			return 0, 0, err
		}
		if err := driver.Insert(ctx, demo.spec.Name, demo.rows); err != nil {
			return 0, 0, err
		}
		total += len(demo.rows)
	}

	return len(demos), total, nil
}

func demoCollections() []demoCollection {
	return []demoCollection{
		{
			spec: sqlitevec.CollectionSpec{
				Name:        "quotes",
				Description: "Famous quotes with tiny embeddings",
				Dimension:   4,
			},
			rows: []sqlitevec.Row{
				{
					Text:      "The best way to predict the future is to invent it.",
					Reference: ref("quotes"),
					Metadata:  map[string]any{"author": "Alan Kay", "year": 1971},
					Embedding: []float32{0.9, 0.1, 0.0, 0.2},
				},
				{
					Text:      "Simplicity is prerequisite for reliability.",
					Reference: ref("quotes"),
					Metadata:  map[string]any{"author": "Edsger Dijkstra", "year": 1975},
					Embedding: []float32{0.1, 0.8, 0.3, 0.0},
				},
				{
					Text:      "Premature optimization is the root of all evil.",
					Reference: ref("quotes"),
					Metadata:  map[string]any{"author": "Donald Knuth", "year": 1974},
					Embedding: []float32{0.2, 0.3, 0.9, 0.1},
				},
			},
		},
		{
			spec: sqlitevec.CollectionSpec{
				Name:        "snippets",
				Description: "Documentation snippets",
				Dimension:   4,
			},
			rows: []sqlitevec.Row{
				{
					Text:      "A goroutine is a lightweight thread managed by the Go runtime.",
					Reference: ref("snippets"),
					Metadata:  map[string]any{"topic": "concurrency"},
					Embedding: []float32{0.7, 0.2, 0.1, 0.5},
				},
				{
					Text:      "Channels are a typed conduit through which you can send and receive values.",
					Reference: ref("snippets"),
					Metadata:  map[string]any{"topic": "concurrency"},
					Embedding: []float32{0.6, 0.3, 0.2, 0.6},
				},
			},
		},
	}
}

func ref(collection string) string {
	return fmt.Sprintf("demo://%s/%s", collection, uuid.NewString())
}
