package storage

import "errors"

// The engine's shared error space. Callers branch with errors.Is; every layer
// wraps these with context via fmt.Errorf("...: %w", ...).
var (
	ErrFileNotFound        = errors.New("page file not found")
	ErrFileHandleNotInit   = errors.New("file handle not initialized")
	ErrFileCloseFailed     = errors.New("page file close failed")
	ErrWriteFailed         = errors.New("page write failed")
	ErrReadNonExistingPage = errors.New("read of non-existing page")

	ErrPinnedPagesInBuffer = errors.New("pinned pages in buffer pool")
	ErrPageNotCached       = errors.New("page not resident in buffer pool")

	ErrInvalidParameter = errors.New("invalid parameter")

	ErrNoMoreTuples          = errors.New("no more tuples")
	ErrNoTupleWithGivenRID   = errors.New("no tuple with given rid")
	ErrScanConditionNotFound = errors.New("scan condition not found")
	ErrTypeMismatch          = errors.New("comparison of different data types")
)
