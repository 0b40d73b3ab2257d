package storage

import "errors"

var (
	ErrStoreUnreachable  = errors.New("qdrant server unreachable")
	ErrLengthMismatch    = errors.New("vectors, chunks, and metadata must be equal length")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
