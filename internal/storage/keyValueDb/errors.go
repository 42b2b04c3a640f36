package keyValueDb

import "errors"

var (
	// ErrDBClosed is returned when trying to operate on a closed keyValueDb
	ErrDBClosed = errors.New("keyValueDb is closed")

	// ErrNotFound is returned when a key doesn't exist in the keyValueDb
	ErrNotFound = errors.New("key not found")

	// ErrUnknownBatchOp is returned for a batch operation of unknown type
	ErrUnknownBatchOp = errors.New("unknown batch operation")
)
