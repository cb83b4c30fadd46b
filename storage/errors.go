package storage

import (
	"errors"
)

var (
	// Note: there is another not found error: badger.ErrKeyNotFound. The
	// difference is that badger.ErrKeyNotFound is returned by the badger
	// API, while modules in storage/badger and storage/badger/operation
	// return storage.ErrNotFound for not found errors.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")

	// ErrDataMismatch is returned by compare-and-set updates when the
	// stored value differs from the expected one.
	ErrDataMismatch = errors.New("data for key is different")
)
