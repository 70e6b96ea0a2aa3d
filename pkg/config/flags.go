package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag that is backed by a
// config key. Commands reference flags by registry key rather than
// hard-coding names, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "uri").
	Name string

	// Shorthand is the one-letter short flag. Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "connection.uri").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to Flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagURI           = "uri"
	FlagToken         = "token"
	FlagDB            = "db"
	FlagLimit         = "limit"
	FlagVectorPreview = "vector_preview"
	FlagTopK          = "top_k"
)

// Flags is the registry of config-backed flags. Flag names follow the
// documented option surface, so underscores are kept as-is.
var Flags = FlagSet{
	FlagURI: {
		Name:        "uri",
		ViperKey:    "connection.uri",
		Description: "Path to the database file",
	},
	FlagToken: {
		Name:        "token",
		ViperKey:    "connection.token",
		Description: "Auth token in user:password form",
	},
	FlagDB: {
		Name:        "db",
		ViperKey:    "connection.db",
		Description: "Logical database name",
	},
	FlagLimit: {
		Name:        "limit",
		ViperKey:    "display.limit",
		Description: "Number of records per page",
	},
	FlagVectorPreview: {
		Name:        "vector_preview",
		ViperKey:    "display.vector_preview",
		Description: "Number of vector elements shown per record",
	},
	FlagTopK: {
		Name:        "top_k",
		ViperKey:    "search.top_k",
		Description: "Number of similar results to return",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *string) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using
// definitions from the given FlagSet. Call this in PreRunE after InitViper
// to connect flags to the viper precedence chain
// (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
