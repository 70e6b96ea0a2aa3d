// Package vecdbutils constructs a vecdb.Client from a connection URI.
package vecdbutils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/vecpeek/pkg/vecdb"
	"github.com/papercomputeco/vecpeek/pkg/vecdb/sqlitevec"
)

type OpenOpts struct {
	URI      string
	Token    string
	Database string
	Logger   *slog.Logger
}

// Open returns a connected client for the given URI. Plain paths and
// file:// URIs open the sqlite-vec driver; remote schemes are rejected, the
// inspector only speaks to local database files.
func Open(o OpenOpts) (vecdb.Client, error) {
	uri := o.URI

	switch {
	case strings.HasPrefix(uri, "file://"):
		uri = strings.TrimPrefix(uri, "file://")
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("unsupported database URI scheme in %q: only local files are supported", o.URI)
	}

	return sqlitevec.New(sqlitevec.Config{
		Path:     uri,
		Token:    o.Token,
		Database: o.Database,
	}, o.Logger)
}
