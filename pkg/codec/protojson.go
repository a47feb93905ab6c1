package codec

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoJSON stores the mapping as the canonical JSON form of a
// google.protobuf.Struct. Numbers decode as float64.
type ProtoJSON struct{}

func (ProtoJSON) Serialize(data map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(data)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}

func (ProtoJSON) Deserialize(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var s structpb.Struct
	if err := protojson.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}
