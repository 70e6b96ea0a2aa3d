package vecdb

import "errors"

var (
	// ErrCollectionNotFound is returned when the named collection does not
	// exist in the database.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrConnection is returned when the database file cannot be opened or
	// does not speak the expected format.
	ErrConnection = errors.New("database connection failed")

	// ErrInvalidToken is returned when the auth token is malformed.
	ErrInvalidToken = errors.New("invalid auth token")

	// ErrUnsupportedMetric is returned for search metrics the driver does
	// not implement.
	ErrUnsupportedMetric = errors.New("unsupported distance metric")

	// ErrUnsupportedFilter is returned for filter expressions the driver
	// cannot translate.
	ErrUnsupportedFilter = errors.New("unsupported filter expression")
)
