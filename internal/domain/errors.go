package domain

import "errors"

var (
	// ErrDimensionMismatch signals vectors of different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrUnknownSession signals an append to a session that was never created.
	ErrUnknownSession = errors.New("unknown session")
	// ErrGeneration signals a failed completion call.
	ErrGeneration = errors.New("generation failed")
	// ErrEmbedding signals a failed embedding call.
	ErrEmbedding = errors.New("embedding failed")
	// ErrCatalog signals a document store failure.
	ErrCatalog = errors.New("catalog unavailable")
)
