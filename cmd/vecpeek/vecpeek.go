// Package vecpeekcmder provides the root vecpeek command: a read-only
// inspector for local vector database files. Without arguments it lists
// collections; with --collection it pages records; with --search it runs a
// top-k similarity search.
package vecpeekcmder

import (
	"errors"
	"fmt"
	"io"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/vecpeek/cmd/vecpeek/config"
	seedcmder "github.com/papercomputeco/vecpeek/cmd/vecpeek/seed"
	"github.com/papercomputeco/vecpeek/pkg/cliui"
	"github.com/papercomputeco/vecpeek/pkg/config"
	"github.com/papercomputeco/vecpeek/pkg/explorer"
	"github.com/papercomputeco/vecpeek/pkg/logger"
	"github.com/papercomputeco/vecpeek/pkg/utils"
	vecdbutils "github.com/papercomputeco/vecpeek/pkg/vecdb/utils"
)

const vecpeekLongDesc string = `Vecpeek is a read-only inspector for local vector database files.

Without arguments it lists every collection with its description and row
count. With --collection it pages through records; add --show_vectors to
include embedding previews. With --search it runs a top-k similarity search
using either an explicit JSON vector (--search_vector) or the stored vector
of an existing record (--search_id).

Examples:
  vecpeek --uri ./milvus.db
  vecpeek --collection docs --limit 5 --offset 10
  vecpeek --collection docs --show_vectors --vector_preview 8
  vecpeek --collection docs --search --search_vector "[0.1, 0.2, 0.3]" --top_k 3
  vecpeek --collection docs --search --search_id 42`

const vecpeekShortDesc string = "Vecpeek - Vector Database Inspector"

// codeOpenFailure tags connection failures; the category rides on the error
// for machine consumption but no trace is printed.
const codeOpenFailure = "vecdb.open.failure"

// registryFlags are the config-backed flags of the root command.
var registryFlags = []string{
	config.FlagURI,
	config.FlagToken,
	config.FlagDB,
	config.FlagLimit,
	config.FlagVectorPreview,
	config.FlagTopK,
}

type vecpeekCommander struct {
	uri           string
	token         string
	db            string
	limit         int
	vectorPreview int
	topK          int

	collection   string
	offset       int
	showVectors  bool
	search       bool
	searchText   string
	searchVector string
	searchID     int64
}

func NewVecpeekCmd() *cobra.Command {
	cmder := &vecpeekCommander{}

	cmd := &cobra.Command{
		Use:           "vecpeek",
		Short:         vecpeekShortDesc,
		Long:          vecpeekLongDesc,
		Version:       utils.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .vecpeek config directory")

	config.AddStringFlag(cmd, config.Flags, config.FlagURI, &cmder.uri)
	config.AddStringFlag(cmd, config.Flags, config.FlagToken, &cmder.token)
	config.AddStringFlag(cmd, config.Flags, config.FlagDB, &cmder.db)
	config.AddIntFlag(cmd, config.Flags, config.FlagLimit, &cmder.limit)
	config.AddIntFlag(cmd, config.Flags, config.FlagVectorPreview, &cmder.vectorPreview)
	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &cmder.topK)

	cmd.Flags().StringVar(&cmder.collection, "collection", "", "Collection to inspect")
	cmd.Flags().IntVar(&cmder.offset, "offset", 0, "Number of records to skip")
	cmd.Flags().BoolVar(&cmder.showVectors, "show_vectors", false, "Include embedding previews in record output")
	cmd.Flags().BoolVar(&cmder.search, "search", false, "Run a similarity search instead of a paged read")
	cmd.Flags().StringVar(&cmder.searchText, "search_text", "", "Query text (requires an embedding model; not implemented)")
	cmd.Flags().StringVar(&cmder.searchVector, "search_vector", "", "Query vector as a JSON array of numbers")
	cmd.Flags().Int64Var(&cmder.searchID, "search_id", 0, "Use the stored vector of this record id as the query")

	// Add subcommands
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}

// resolve wires flags into the viper precedence chain and reads back the
// effective values. Flags the user did not set fall through to environment,
// config file, and finally the built-in defaults.
func (c *vecpeekCommander) resolve(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, registryFlags)

	c.uri = v.GetString("connection.uri")
	c.token = v.GetString("connection.token")
	c.db = v.GetString("connection.db")
	c.limit = v.GetInt("display.limit")
	c.vectorPreview = v.GetInt("display.vector_preview")
	c.topK = v.GetInt("search.top_k")

	return nil
}

func (c *vecpeekCommander) run(cmd *cobra.Command) error {
	opts := explorer.Options{
		URI:           c.uri,
		Token:         c.token,
		Database:      c.db,
		Collection:    c.collection,
		Limit:         c.limit,
		Offset:        c.offset,
		ShowVectors:   c.showVectors,
		VectorPreview: c.vectorPreview,
		Search:        c.search,
		SearchText:    c.searchText,
		SearchVector:  c.searchVector,
		SearchID:      c.searchID,
		HasSearchID:   cmd.Flags().Changed("search_id"),
		TopK:          c.topK,
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	log := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
	)

	client, err := vecdbutils.Open(vecdbutils.OpenOpts{
		URI:      c.uri,
		Token:    c.token,
		Database: c.db,
		Logger:   log,
	})
	if err != nil {
		return oops.Code(codeOpenFailure).Wrapf(err, "opening database %q", c.uri)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Debug("closing database client", "error", err)
		}
	}()

	return explorer.New(client, opts, cmd.OutOrStdout(), log).Run(cmd.Context())
}

// PrintError renders a failed invocation once. Every failure prints its
// message; failures carrying a read or search category code also print the
// category and a diagnostic trace.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", cliui.FailMark, err)

	var oopsErr oops.OopsError
	if !errors.As(err, &oopsErr) {
		return
	}

	code := oopsErr.Code()
	if !explorer.TraceWorthy(code) {
		return
	}

	fmt.Fprintf(w, "\n%s %s\n", cliui.KeyStyle.Render("category:"), code)
	if trace := oopsErr.Stacktrace(); trace != "" {
		fmt.Fprintf(w, "%s\n%s\n", cliui.KeyStyle.Render("trace:"), cliui.DimStyle.Render(trace))
	}
}
