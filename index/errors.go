package index

import "github.com/pkg/errors"

var (
	// ErrEmptyInput is returned when a dataset should be built from zero records.
	ErrEmptyInput = errors.New("no records to build the dataset from")

	// ErrInvalidRecord is returned when a record has coordinates outside the WGS84 value range.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrOutOfRegion is returned when a point lies outside the grid. Searches treat it as an empty cell.
	ErrOutOfRegion = errors.New("point outside of grid region")

	// ErrNotFound is returned when no candidate record exists. Callers should treat this as "no data for this
	// location" and not as failure.
	ErrNotFound = errors.New("no record found")
)
