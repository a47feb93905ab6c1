package rosedb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rosedb/internal/logging"
	"rosedb/pkg/cipher"
	"rosedb/pkg/codec"
	"rosedb/pkg/store/file"
)

// Data is the mapping a store holds.
type Data = map[string]any

// Codec turns Data into bytes and back.
type Codec = codec.Codec

// Cipher transforms encoded bytes on their way to and from the backend.
type Cipher = cipher.Cipher

// Backend loads and saves the encoded document.
//
// Load reports ok=false, with a nil error, when nothing has been persisted
// yet. Implementations acquire and release their resources within a call.
type Backend interface {
	Load(ctx context.Context) (raw []byte, ok bool, err error)
	Save(ctx context.Context, raw []byte) error
}

// Options configures a Store or AsyncStore.
type Options struct {
	// Default seeds the store when nothing is persisted and is the target
	// of Reset. Nil means an empty mapping.
	Default Data

	// File is the document path, resolved against the working directory
	// when relative. Ignored when Backend is set.
	File string
	// Mkfile creates missing parent directories of File before saving.
	Mkfile bool

	// Format names the codec ("json", "yaml", ...). Empty infers it from
	// the extension of File, falling back to JSON.
	Format string
	// Codec overrides Format.
	Codec Codec

	// Encryption enables the default Shift cipher when Cipher is nil.
	Encryption bool
	// Cipher overrides Encryption with a custom pair.
	Cipher Cipher

	// Backend overrides File.
	Backend Backend

	Logger *slog.Logger
}

var errNoBackend = errors.New("rosedb: either File or Backend must be set")

// resolved is the pipeline configuration derived from Options.
type resolved struct {
	backend  Backend
	codec    Codec
	cipher   Cipher
	defaults Data
	logger   *slog.Logger
	location string
}

func (o Options) resolve() (*resolved, error) {
	r := &resolved{logger: o.Logger}
	if r.logger == nil {
		r.logger = logging.For("rosedb")
	}

	switch {
	case o.Backend != nil:
		r.backend = o.Backend
		r.location = fmt.Sprintf("%T", o.Backend)
	case o.File != "":
		fb, err := file.New(o.File, o.Mkfile)
		if err != nil {
			return nil, fmt.Errorf("rosedb: resolving file: %w", err)
		}
		r.backend = fb
		r.location = fb.Path()
	default:
		return nil, errNoBackend
	}

	if o.Codec != nil {
		r.codec = o.Codec
	} else {
		name := o.Format
		if name == "" {
			name = codec.FormatForPath(o.File)
		}
		c, err := codec.ForFormat(name)
		if err != nil {
			return nil, fmt.Errorf("rosedb: %w", err)
		}
		r.codec = c
	}

	switch {
	case o.Cipher != nil:
		r.cipher = o.Cipher
	case o.Encryption:
		r.cipher = cipher.Shift{}
	default:
		r.cipher = cipher.None{}
	}

	defaults, err := snapshot(o.Default)
	if err != nil {
		return nil, fmt.Errorf("rosedb: copying default data: %w", err)
	}
	r.defaults = defaults
	return r, nil
}
