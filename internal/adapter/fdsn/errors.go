package fdsn

import "errors"

var (
	// ErrFetch marks connection, transport, and HTTP status failures.
	ErrFetch = errors.New("fdsn fetch failed")

	// ErrDocument marks a response that is not well-formed XML.
	ErrDocument = errors.New("quakeml document malformed")

	// ErrInvalidRegion is returned for a nil or unsupported region.
	ErrInvalidRegion = errors.New("invalid region")
)
