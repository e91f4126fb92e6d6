// Package store defines the primitives of a simple key/value storage.
//
// Documentation Last Review: 28.08.2026
package store

// Readable is the interface for a readable store.
type Readable interface {
	// Get returns the value associated with the key and a flag to distinguish
	// a missing key from a key set to an empty value.
	Get(key []byte) ([]byte, bool)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and written
// independently. A write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}
