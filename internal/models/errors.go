package models

import "errors"

// Domain error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; lower layers wrap them with context via fmt.Errorf.
var (
	// ErrEncoding: no candidate encoding decoded the upload.
	ErrEncoding = errors.New("unable to decode file with any supported encoding")
	// ErrMalformedInput: structurally invalid delimited data.
	ErrMalformedInput = errors.New("file is empty or not valid CSV")
	// ErrNotFound: unknown batch ID.
	ErrNotFound = errors.New("batch not found")
	// ErrDuplicateID: batch ID collision. IDs are generated, so this is
	// an invariant violation rather than a user error.
	ErrDuplicateID = errors.New("batch id already exists")
	// ErrInvalidCategory: drill-down requested for a label outside the
	// fixed category set.
	ErrInvalidCategory = errors.New("invalid category")
)
