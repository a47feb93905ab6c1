package codec

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// JSON is the default codec. Output is indented with two spaces unless
// Compact is set. Numbers decode as float64.
type JSON struct {
	Compact bool
}

func (j JSON) Serialize(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	if j.Compact {
		return json.Marshal(data)
	}
	return json.MarshalIndent(data, "", "  ")
}

func (JSON) Deserialize(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// JWCC is JSON with comments and trailing commas. Deserialize accepts both;
// Serialize emits formatted standard JSON, which is valid JWCC.
type JWCC struct{}

func (JWCC) Serialize(data map[string]any) ([]byte, error) {
	b, err := JSON{Compact: true}.Serialize(data)
	if err != nil {
		return nil, err
	}
	v, err := hujson.Parse(b)
	if err != nil {
		return nil, err
	}
	v.Format()
	return v.Pack(), nil
}

func (JWCC) Deserialize(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	v, err := hujson.Parse(raw)
	if err != nil {
		return nil, err
	}
	v.Standardize()
	return JSON{}.Deserialize(v.Pack())
}
