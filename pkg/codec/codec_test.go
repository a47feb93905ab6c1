package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		data  map[string]any
	}{
		{"json", JSON{}, map[string]any{
			"name":   "rosedb",
			"count":  float64(3),
			"tags":   []any{"a", "b"},
			"nested": map[string]any{"ok": true},
			"none":   nil,
		}},
		{"json-compact", JSON{Compact: true}, map[string]any{"name": "rosedb"}},
		{"jwcc", JWCC{}, map[string]any{
			"name":   "rosedb",
			"count":  float64(3),
			"nested": map[string]any{"list": []any{float64(1), "two"}},
		}},
		{"yaml", YAML{}, map[string]any{
			"name":   "rosedb",
			"count":  3,
			"tags":   []any{"a", "b"},
			"nested": map[string]any{"ok": true},
			"none":   nil,
		}},
		{"toml", TOML{}, map[string]any{
			"name":   "rosedb",
			"count":  int64(3),
			"tags":   []any{"a", "b"},
			"nested": map[string]any{"ok": true},
		}},
		{"ini", INI{}, map[string]any{
			"name":   "rosedb",
			"debug":  true,
			"quoted": `"quoted"`,
			"single": `'single'`,
			"padded": " padded ",
			"empty":  "",
			"server": map[string]any{
				"host": "localhost",
				"port": "8080",
				"tls":  map[string]any{"enabled": false},
			},
		}},
		{"xml", XML{}, map[string]any{
			"name":   "rosedb",
			"tags":   []any{"a", "b"},
			"nested": map[string]any{"city": "Lisbon"},
			"padded": " padded ",
			"empty":  "",
			"none":   nil,
			"blank":  map[string]any{},
			"quoted": `"quoted"`,
		}},
		{"protojson", ProtoJSON{}, map[string]any{
			"name":   "rosedb",
			"count":  float64(3),
			"tags":   []any{"a", "b"},
			"nested": map[string]any{"ok": true},
			"none":   nil,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.codec.Serialize(tt.data)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			got, err := tt.codec.Deserialize(raw)
			if err != nil {
				t.Fatalf("Deserialize: %v\n%s", err, raw)
			}
			if !reflect.DeepEqual(got, tt.data) {
				t.Fatalf("round trip mismatch:\n got  %#v\n want %#v\n raw:\n%s", got, tt.data, raw)
			}
		})
	}
}

func TestEmptyMapping(t *testing.T) {
	for _, name := range Formats() {
		t.Run(name, func(t *testing.T) {
			c, err := ForFormat(name)
			if err != nil {
				t.Fatal(err)
			}
			raw, err := c.Serialize(map[string]any{})
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			got, err := c.Deserialize(raw)
			if err != nil {
				t.Fatalf("Deserialize: %v\n%s", err, raw)
			}
			if len(got) != 0 {
				t.Fatalf("expected empty mapping, got %#v", got)
			}
		})
	}
}

func TestJWCCAcceptsCommentsAndTrailingCommas(t *testing.T) {
	raw := []byte(`{
  // the store name
  "name": "rosedb",
  "tags": ["a", "b",],
}`)
	got, err := JWCC{}.Deserialize(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"name": "rosedb", "tags": []any{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestDeserializeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		raw   string
	}{
		{"json", JSON{}, `{"name":`},
		{"json-not-object", JSON{}, `[1, 2]`},
		{"jwcc", JWCC{}, `{"name": }`},
		{"yaml", YAML{}, "name: [unclosed"},
		{"toml", TOML{}, "name = "},
		{"xml", XML{}, "<rosedb><name>x</rosedb>"},
		{"protojson", ProtoJSON{}, `{"name": }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.codec.Deserialize([]byte(tt.raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestINIRejectsLists(t *testing.T) {
	_, err := INI{}.Serialize(map[string]any{"tags": []any{"a"}})
	if !errors.Is(err, errININested) {
		t.Fatalf("expected errININested, got %v", err)
	}
}

func TestINIRejectsAmbiguousQuotes(t *testing.T) {
	_, err := INI{}.Serialize(map[string]any{"k": `" padded "`})
	if !errors.Is(err, errINIValue) {
		t.Fatalf("expected errINIValue, got %v", err)
	}
}

func TestXMLRejectsInvalidNames(t *testing.T) {
	for _, key := range []string{"1abc", "has space", "", "xmlish"} {
		_, err := XML{}.Serialize(map[string]any{key: "v"})
		if !errors.Is(err, errXMLName) {
			t.Errorf("key %q: expected errXMLName, got %v", key, err)
		}
	}
}

func TestXMLEscapesText(t *testing.T) {
	data := map[string]any{"expr": `a < b && "c"`}
	raw, err := XML{}.Serialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "a < b") {
		t.Fatalf("text was not escaped:\n%s", raw)
	}
	got, err := XML{}.Deserialize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Fatalf("got %#v, want %#v", got, data)
	}
}

func TestForFormat(t *testing.T) {
	c, err := ForFormat(" YAML ")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(YAML); !ok {
		t.Fatalf("expected YAML codec, got %T", c)
	}

	_, err = ForFormat("cson")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data.json", FormatJSON},
		{"conf/app.YML", FormatYAML},
		{"conf/app.yaml", FormatYAML},
		{"settings.toml", FormatTOML},
		{"settings.ini", FormatINI},
		{"db.xml", FormatXML},
		{"db.jsonc", FormatJWCC},
		{"db.pbjson", FormatProtoJSON},
		{"no-extension", FormatJSON},
		{"", FormatJSON},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFuncs(t *testing.T) {
	var called bool
	c := Funcs{
		SerializeFunc: func(m map[string]any) ([]byte, error) {
			called = true
			return []byte(`{"custom":true}`), nil
		},
	}
	raw, err := c.Serialize(map[string]any{"ignored": 1})
	if err != nil || !called {
		t.Fatalf("custom serialize not used: err=%v", err)
	}
	// nil DeserializeFunc falls back to JSON
	got, err := c.Deserialize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got["custom"] != true {
		t.Fatalf("got %#v", got)
	}

	y := Funcs{Fallback: YAML{}}
	got, err = y.Deserialize([]byte("a: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got["a"] != 1 {
		t.Fatalf("YAML fallback not used: %#v", got)
	}
}
