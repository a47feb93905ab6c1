package codec

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// TOML decodes integers as int64 and cannot represent nil values.
type TOML struct{}

func (TOML) Serialize(data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if data == nil {
		data = map[string]any{}
	}
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (TOML) Deserialize(raw []byte) (map[string]any, error) {
	var m map[string]any
	if _, err := toml.Decode(string(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}
