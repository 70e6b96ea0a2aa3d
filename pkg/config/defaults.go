package config

const (
	defaultURI      = "./milvus.db"
	defaultToken    = "root:Milvus"
	defaultDatabase = "default"

	defaultLimit         = 10
	defaultVectorPreview = 5

	defaultTopK = 5
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Connection: ConnectionConfig{
			URI:      defaultURI,
			Token:    defaultToken,
			Database: defaultDatabase,
		},
		Display: DisplayConfig{
			Limit:         defaultLimit,
			VectorPreview: defaultVectorPreview,
		},
		Search: SearchConfig{
			TopK: defaultTopK,
		},
	}
}
