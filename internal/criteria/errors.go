package criteria

import "errors"

var (
	// ErrInvalidArgument marks missing or malformed input. State is unchanged.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a row id that is not in the table.
	ErrNotFound = errors.New("not found")
	// ErrNoCurrentTable is returned when an operation needs a table and none exists.
	ErrNoCurrentTable = errors.New("no current table")
	// ErrParse marks a current-table document that exists but cannot be decoded.
	ErrParse = errors.New("parse table")
)
