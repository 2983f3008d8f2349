// Copyright (c) 2024 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the minimal key-value store surface the ledger
// state is built on, plus helpers to prefix keys into buckets.
package kv

// Getter reads keys.
type Getter interface {
	// Get returns the value stored under key. Absence is reported as an
	// error distinguishable via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool

	// NewIterator walks the keys of r in ascending order.
	NewIterator(r Range) Iterator
}

// Putter writes keys, directly or through a batch.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	NewBatch() Batch
}

// GetPutter reads and writes keys.
type GetPutter interface {
	Getter
	Putter
}

// GetPutCloser is a store with a lifecycle.
type GetPutCloser interface {
	GetPutter
	Close() error
}

// Batch accumulates writes for one atomic flush.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Iterator walks keys in order. Release must be called when done, and
// Error checked after the walk.
type Iterator interface {
	Next() bool
	Release()
	Error() error

	Key() []byte
	Value() []byte
}

// Range is the half-open key interval [From, To).
type Range struct {
	From []byte
	To   []byte
}
