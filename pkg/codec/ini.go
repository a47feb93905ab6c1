package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

var (
	errININested = errors.New("ini: lists are not representable")
	errINIValue  = errors.New("ini: value is not representable")
)

// INI maps top-level scalars to the default section and nested mappings to
// sections. Deeper nesting uses dotted section names ("a.b"). Values come
// back as strings, except "true" and "false" which decode as booleans.
// Surrounding quotes in a value are kept as written.
type INI struct{}

func (INI) Serialize(data map[string]any) ([]byte, error) {
	f := ini.Empty()
	root := f.Section("")
	var sections []string
	for _, k := range sortedKeys(data) {
		if _, ok := data[k].(map[string]any); ok {
			sections = append(sections, k)
			continue
		}
		if err := iniKey(root, k, data[k]); err != nil {
			return nil, err
		}
	}
	for _, name := range sections {
		if err := iniSection(f, name, data[name].(map[string]any)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func iniSection(f *ini.File, name string, m map[string]any) error {
	sec, err := f.NewSection(name)
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(m) {
		if nested, ok := m[k].(map[string]any); ok {
			if err := iniSection(f, name+"."+k, nested); err != nil {
				return err
			}
			continue
		}
		if err := iniKey(sec, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func iniKey(sec *ini.Section, name string, v any) error {
	var s string
	switch v := v.(type) {
	case nil:
	case string:
		// ini writes padded values inside double quotes, so a value that
		// already looks like that cannot be told apart on load
		if iniUnquote(v) != v {
			return fmt.Errorf("%w: key %q", errINIValue, name)
		}
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case []any:
		return fmt.Errorf("%w: key %q", errININested, name)
	default:
		s = fmt.Sprint(v)
	}
	_, err := sec.NewKey(name, s)
	return err
}

func (INI) Deserialize(raw []byte) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{PreserveSurroundedQuote: true}, raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	for _, sec := range f.Sections() {
		target := out
		if sec.Name() != ini.DefaultSection {
			target = iniPath(out, strings.Split(sec.Name(), "."))
		}
		for _, key := range sec.Keys() {
			target[key.Name()] = iniValue(iniUnquote(key.Value()))
		}
	}
	return out, nil
}

func iniPath(root map[string]any, path []string) map[string]any {
	m := root
	for _, p := range path {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	return m
}

// iniUnquote strips the double quotes ini adds around values with leading
// or trailing whitespace.
func iniUnquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		inner := s[1 : len(s)-1]
		if strings.TrimSpace(inner) != inner {
			return inner
		}
	}
	return s
}

func iniValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
