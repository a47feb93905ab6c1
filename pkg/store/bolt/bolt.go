// Package bolt keeps store documents inside an embedded bbolt database,
// one value per document name.
package bolt

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var documentsBucket = []byte("documents")

// DB is a bbolt database holding named documents.
type DB struct {
	db *bolt.DB
}

// Open creates or opens a bbolt database at the given path. It gives up
// after a second if another process holds the file lock.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	return &DB{db: db}, nil
}

// Document returns a backend for the named document. Nothing is written
// until the first Save.
func (d *DB) Document(name string) *Document {
	return &Document{db: d, name: []byte(name)}
}

// Documents lists stored document names in key order.
func (d *DB) Documents() ([]string, error) {
	var names []string
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(documentsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Remove deletes a document. Removing a missing document is not an error.
func (d *DB) Remove(name string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(documentsBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) get(key []byte) ([]byte, error) {
	var val []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(documentsBucket)
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v != nil {
			val = make([]byte, len(v))
			copy(val, v)
		}
		return nil
	})
	return val, err
}

func (d *DB) put(key, value []byte) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(documentsBucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return b.Put(key, value)
	})
}

// Document is a single named document; it implements the rosedb Backend
// contract. Each Save is one bbolt transaction.
type Document struct {
	db   *DB
	name []byte
}

func (doc *Document) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, err := doc.db.get(doc.name)
	if err != nil {
		return nil, false, fmt.Errorf("reading document %q: %w", doc.name, err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

func (doc *Document) Save(ctx context.Context, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if raw == nil {
		raw = []byte{}
	}
	if err := doc.db.put(doc.name, raw); err != nil {
		return fmt.Errorf("writing document %q: %w", doc.name, err)
	}
	return nil
}
