// Package memory is an in-process Backend. It keeps the last saved
// document in memory and can be told to fail, which makes it the backend
// of choice for tests and throwaway stores.
package memory

import (
	"context"
	"sync"
)

type Backend struct {
	mu      sync.Mutex
	raw     []byte
	present bool
	saves   int
	loadErr error
	saveErr error
}

func New() *Backend {
	return &Backend{}
}

// NewWith returns a Backend that already holds raw.
func NewWith(raw []byte) *Backend {
	b := &Backend{}
	b.raw = append([]byte(nil), raw...)
	b.present = true
	return b
}

func (b *Backend) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, false, b.loadErr
	}
	if !b.present {
		return nil, false, nil
	}
	return append([]byte(nil), b.raw...), true, nil
}

func (b *Backend) Save(ctx context.Context, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.raw = append([]byte(nil), raw...)
	b.present = true
	b.saves++
	return nil
}

// Bytes returns a copy of the last saved document.
func (b *Backend) Bytes() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.raw...), b.present
}

// Saves returns the number of successful saves.
func (b *Backend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// FailLoad makes every Load return err until called again with nil.
func (b *Backend) FailLoad(err error) {
	b.mu.Lock()
	b.loadErr = err
	b.mu.Unlock()
}

// FailSave makes every Save return err until called again with nil.
func (b *Backend) FailSave(err error) {
	b.mu.Lock()
	b.saveErr = err
	b.mu.Unlock()
}
