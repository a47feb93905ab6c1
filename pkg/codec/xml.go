package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// XMLRoot is the document element name used by XML.
const XMLRoot = "rosedb"

var errXMLName = errors.New("xml: key is not a valid element name")

// XML writes each key as a child element of <rosedb>. Nested mappings
// become nested elements and lists become repeated elements. Leaf values
// come back as strings with their text kept verbatim; a repeated element
// comes back as []any. nil and empty mappings are tagged with an attribute
// so they stay distinct from "".
type XML struct{}

// Marker attributes for values an empty element cannot express alone.
var (
	xmlNilAttr = xml.Attr{Name: xml.Name{Local: "nil"}, Value: "true"}
	xmlMapAttr = xml.Attr{Name: xml.Name{Local: "map"}, Value: "true"}
)

func (XML) Serialize(data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: XMLRoot}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	if err := xmlFields(enc, data); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func xmlFields(enc *xml.Encoder, m map[string]any) error {
	for _, k := range sortedKeys(m) {
		if !xmlName(k) {
			return fmt.Errorf("%w: %q", errXMLName, k)
		}
		if err := xmlElement(enc, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func xmlElement(enc *xml.Encoder, name string, v any) error {
	if list, ok := v.([]any); ok {
		for _, item := range list {
			if err := xmlElement(enc, name, item); err != nil {
				return err
			}
		}
		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}
	switch v := v.(type) {
	case nil:
		start.Attr = []xml.Attr{xmlNilAttr}
	case map[string]any:
		if len(v) == 0 {
			start.Attr = []xml.Attr{xmlMapAttr}
		}
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
	case map[string]any:
		if err := xmlFields(enc, v); err != nil {
			return err
		}
	case string:
		if err := enc.EncodeToken(xml.CharData(v)); err != nil {
			return err
		}
	case bool:
		if err := enc.EncodeToken(xml.CharData(strconv.FormatBool(v))); err != nil {
			return err
		}
	default:
		if err := enc.EncodeToken(xml.CharData(fmt.Sprint(v))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func xmlName(s string) bool {
	if s == "" || strings.HasPrefix(strings.ToLower(s), "xml") {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

func (XML) Deserialize(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("xml: missing root element")
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		v, err := xmlParse(dec, start)
		if err != nil {
			return nil, err
		}
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		// root with text only or no children
		return map[string]any{}, nil
	}
}

// xmlParse reads the content of the element whose start token was just
// consumed, up to and including its end token. Text between child elements
// is indentation and is dropped; leaf text is returned untouched.
func xmlParse(dec *xml.Decoder, start xml.StartElement) (any, error) {
	var (
		text     strings.Builder
		children map[string]any
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			v, err := xmlParse(dec, t)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = make(map[string]any)
			}
			name := t.Name.Local
			switch prev := children[name].(type) {
			case nil:
				if _, seen := children[name]; seen {
					children[name] = []any{nil, v}
				} else {
					children[name] = v
				}
			case []any:
				children[name] = append(prev, v)
			default:
				children[name] = []any{prev, v}
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			switch {
			case children != nil:
				return children, nil
			case xmlHasAttr(start, xmlNilAttr):
				return nil, nil
			case xmlHasAttr(start, xmlMapAttr):
				return map[string]any{}, nil
			}
			return text.String(), nil
		}
	}
}

func xmlHasAttr(start xml.StartElement, want xml.Attr) bool {
	for _, a := range start.Attr {
		if a.Name.Local == want.Name.Local && a.Value == want.Value {
			return true
		}
	}
	return false
}
