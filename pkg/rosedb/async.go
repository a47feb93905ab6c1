package rosedb

import "context"

// AsyncStore is the context-aware variant. The pipeline checks ctx before
// every leg and hands it to the Backend.
//
// Mutations from concurrent goroutines are not serialized with respect to
// their persistence: two overlapping Set calls may each save a document that
// reflects either or both changes. Callers needing stronger ordering must
// serialize calls themselves.
type AsyncStore struct {
	*core
}

// NewAsync returns an uninitialized AsyncStore.
func NewAsync(opts Options) (*AsyncStore, error) {
	c, err := newCore(opts)
	if err != nil {
		return nil, err
	}
	return &AsyncStore{core: c}, nil
}

// Init loads or seeds the data and persists it once.
func (s *AsyncStore) Init(ctx context.Context) error {
	return s.init(ctx)
}

// Get returns the value for key, or def when key is absent.
func (s *AsyncStore) Get(key string, def any) (any, error) {
	return s.get(key, def)
}

// Has reports whether key is present.
func (s *AsyncStore) Has(key string) (bool, error) {
	return s.has(key)
}

// Set assigns a deep copy of value to key and persists the mapping under ctx.
func (s *AsyncStore) Set(ctx context.Context, key string, value any) error {
	return s.set(ctx, key, value)
}

// Delete removes key and persists the mapping. Deleting an absent key
// still emits events and saves.
func (s *AsyncStore) Delete(ctx context.Context, key string) error {
	return s.delete(ctx, key)
}

// Clear empties the mapping. Only a ChangeEvent is emitted.
func (s *AsyncStore) Clear(ctx context.Context) error {
	return s.clear(ctx)
}

// Reset replaces the mapping with a fresh copy of the default.
func (s *AsyncStore) Reset(ctx context.Context) error {
	return s.reset(ctx)
}

// Data returns a deep copy of the current mapping.
func (s *AsyncStore) Data() (Data, error) {
	return s.snapshotData()
}

// Keys returns the current keys in sorted order.
func (s *AsyncStore) Keys() ([]string, error) {
	return s.keys()
}

// Len returns the number of keys.
func (s *AsyncStore) Len() (int, error) {
	return s.length()
}
