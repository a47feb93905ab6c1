// Package rosedb is a small embedded key/value store: an in-memory mapping
// persisted to a single document through a pluggable codec and an optional
// cipher, with change notification.
//
// A store starts uninitialized. Init loads the persisted document (or seeds
// the configured default), saves it once and makes the store usable. Every
// mutation updates memory, emits a KeyChangeEvent (single-key mutations only)
// and a ChangeEvent, and then rewrites the whole document.
//
// Store blocks on I/O. AsyncStore has identical semantics but threads a
// context through the pipeline so callers can cancel or time out a load or
// save.
package rosedb

import "context"

// Store is the blocking variant. It is meant for use from one goroutine.
type Store struct {
	*core
}

// New returns an uninitialized Store.
func New(opts Options) (*Store, error) {
	c, err := newCore(opts)
	if err != nil {
		return nil, err
	}
	return &Store{core: c}, nil
}

// Init loads or seeds the data and persists it once. It fails with
// ErrAlreadyInitialized on a second call. On any other error the store
// stays uninitialized and Init may be retried.
func (s *Store) Init() error {
	return s.init(context.Background())
}

// Get returns the value for key, or def when key is absent.
func (s *Store) Get(key string, def any) (any, error) {
	return s.get(key, def)
}

// Has reports whether key is present.
func (s *Store) Has(key string) (bool, error) {
	return s.has(key)
}

// Set assigns a deep copy of value to key and persists the mapping.
// A value that cannot be copied, such as a channel, is rejected and the
// store is left unchanged.
func (s *Store) Set(key string, value any) error {
	return s.set(context.Background(), key, value)
}

// Delete removes key and persists the mapping. Deleting an absent key
// still emits events and saves.
func (s *Store) Delete(key string) error {
	return s.delete(context.Background(), key)
}

// Clear empties the mapping. Only a ChangeEvent is emitted.
func (s *Store) Clear() error {
	return s.clear(context.Background())
}

// Reset replaces the mapping with a fresh copy of the default.
func (s *Store) Reset() error {
	return s.reset(context.Background())
}

// Data returns a deep copy of the current mapping.
func (s *Store) Data() (Data, error) {
	return s.snapshotData()
}

// Keys returns the current keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	return s.keys()
}

// Len returns the number of keys.
func (s *Store) Len() (int, error) {
	return s.length()
}

// Getter is implemented by Store and AsyncStore.
type Getter interface {
	Get(key string, def any) (any, error)
}

// GetAs returns the value for key as a T. It returns def when the key is
// absent or holds a value of another type. Note that codecs decode numbers
// into their own representation (float64 for JSON).
func GetAs[T any](g Getter, key string, def T) (T, error) {
	v, err := g.Get(key, def)
	if err != nil {
		return def, err
	}
	t, ok := v.(T)
	if !ok {
		return def, nil
	}
	return t, nil
}
