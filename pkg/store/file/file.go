// Package file persists a store document as a single file.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend reads and writes one file. Writes go to a temp file in the same
// directory that is then renamed over the target.
type Backend struct {
	path  string
	mkdir bool
	mode  os.FileMode
}

// New returns a Backend for path, resolved against the working directory
// when relative. With mkdir set, missing parent directories are created
// before each save.
func New(path string, mkdir bool) (*Backend, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Backend{path: abs, mkdir: mkdir, mode: 0o644}, nil
}

// WithMode returns a copy of b that creates files with mode.
func (b *Backend) WithMode(mode os.FileMode) *Backend {
	c := *b
	c.mode = mode
	return &c
}

// Path returns the absolute file path.
func (b *Backend) Path() string { return b.path }

// Load returns ok=false when the file does not exist.
func (b *Backend) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", b.path, err)
	}
	return raw, true, nil
}

func (b *Backend) Save(ctx context.Context, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(b.path)
	if b.mkdir {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := b.replace(raw); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	return nil
}

// replace stages raw in a sibling temp file and renames it over the target,
// so readers see either the old document or the new one. The temp file is
// removed unless the rename went through.
func (b *Backend) replace(raw []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			err = errors.Join(err, ignoreMissing(os.Remove(tmp.Name())))
		}
	}()

	if err := stage(tmp, raw, b.mode); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return err
	}
	committed = true
	return nil
}

// stage writes, chmods and syncs f, closing it on every path.
func stage(f *os.File, raw []byte, mode os.FileMode) error {
	_, err := f.Write(raw)
	if err == nil {
		err = f.Chmod(mode)
	}
	if err == nil {
		err = f.Sync()
	}
	return errors.Join(err, f.Close())
}

func ignoreMissing(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
