// Package codec converts a store's mapping to and from its on-disk text
// representation. Each format lives in its own file; ForFormat and
// FormatForPath select one by name or by file extension.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Codec serializes a mapping and parses it back.
// Deserialize may return a nil map for an empty document.
type Codec interface {
	Serialize(data map[string]any) ([]byte, error)
	Deserialize(raw []byte) (map[string]any, error)
}

// Format names.
const (
	FormatJSON      = "json"
	FormatJWCC      = "jwcc"
	FormatYAML      = "yaml"
	FormatTOML      = "toml"
	FormatINI       = "ini"
	FormatXML       = "xml"
	FormatProtoJSON = "protojson"
)

var ErrUnknownFormat = errors.New("unknown codec format")

var formats = map[string]func() Codec{
	FormatJSON:      func() Codec { return JSON{} },
	FormatJWCC:      func() Codec { return JWCC{} },
	FormatYAML:      func() Codec { return YAML{} },
	FormatTOML:      func() Codec { return TOML{} },
	FormatINI:       func() Codec { return INI{} },
	FormatXML:       func() Codec { return XML{} },
	FormatProtoJSON: func() Codec { return ProtoJSON{} },
}

var extensions = map[string]string{
	".json":   FormatJSON,
	".jwcc":   FormatJWCC,
	".jsonc":  FormatJWCC,
	".hujson": FormatJWCC,
	".yaml":   FormatYAML,
	".yml":    FormatYAML,
	".toml":   FormatTOML,
	".ini":    FormatINI,
	".xml":    FormatXML,
	".pbjson": FormatProtoJSON,
}

// ForFormat returns the codec registered under name (case-insensitive).
func ForFormat(name string) (Codec, error) {
	ctor, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return ctor(), nil
}

// FormatForPath infers a format name from the extension of path.
// Unknown or missing extensions map to JSON.
func FormatForPath(path string) string {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatJSON
}

// Formats lists the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Funcs adapts a pair of functions to Codec. A nil function falls back to
// the matching method of Fallback, or of JSON when Fallback is nil.
type Funcs struct {
	SerializeFunc   func(map[string]any) ([]byte, error)
	DeserializeFunc func([]byte) (map[string]any, error)
	Fallback        Codec
}

func (f Funcs) fallback() Codec {
	if f.Fallback != nil {
		return f.Fallback
	}
	return JSON{}
}

func (f Funcs) Serialize(data map[string]any) ([]byte, error) {
	if f.SerializeFunc != nil {
		return f.SerializeFunc(data)
	}
	return f.fallback().Serialize(data)
}

func (f Funcs) Deserialize(raw []byte) (map[string]any, error) {
	if f.DeserializeFunc != nil {
		return f.DeserializeFunc(raw)
	}
	return f.fallback().Deserialize(raw)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
