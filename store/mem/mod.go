// Package mem implements the committed state of the key/value store.
//
// The store is a plain in-memory mapping shared by every session. Individual
// reads and writes are atomic, nothing more: any exclusivity over a whole
// commit is the responsibility of the engine.
//
// Documentation Last Review: 28.08.2026
package mem

import "sync"

// Store is an in-memory implementation of the committed key/value mapping.
// It only guarantees the atomicity of a single key operation.
//
// - implements store.Snapshot
type Store struct {
	sync.RWMutex
	values map[string][]byte
}

// NewStore creates a new empty store.
func NewStore() *Store {
	return &Store{
		values: make(map[string][]byte),
	}
}

// Get implements store.Readable. It returns the committed value associated
// with the key, or false if the key does not exist.
func (s *Store) Get(key []byte) ([]byte, bool) {
	s.RLock()
	defer s.RUnlock()

	value, found := s.values[string(key)]

	return value, found
}

// Set implements store.Writable. It writes the value to the store.
func (s *Store) Set(key, value []byte) error {
	s.Lock()
	defer s.Unlock()

	s.values[string(key)] = value

	return nil
}

// Delete implements store.Writable. It removes the key from the store. It is
// not an error to delete a key that does not exist.
func (s *Store) Delete(key []byte) error {
	s.Lock()
	defer s.Unlock()

	delete(s.values, string(key))

	return nil
}

// Len returns the number of committed keys.
func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.values)
}

// ForEach iterates over all the committed pairs in an unspecified order. The
// iteration stops when the callback returns an error.
func (s *Store) ForEach(fn func(key, value []byte) error) error {
	s.RLock()
	defer s.RUnlock()

	for key, value := range s.values {
		err := fn([]byte(key), value)
		if err != nil {
			return err
		}
	}

	return nil
}

// view returns the pairs as a detached copy, mostly to compare the final
// state of a store in the tests.
func (s *Store) view() map[string][]byte {
	s.RLock()
	defer s.RUnlock()

	pairs := make(map[string][]byte)
	for key, value := range s.values {
		pairs[key] = value
	}

	return pairs
}
