// Package apiconnect defines the famfund Connect services: procedure names,
// handler and client constructors, and the JSON codec they share.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// codecName replaces Connect's default protojson codec so plain Go structs can
// be used as messages. Content type on the wire is application/json.
const codecName = "json"

// jsonCodec marshals protobuf messages (well-known types such as emptypb.Empty)
// with protojson and everything else with encoding/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	if m, ok := msg.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if m, ok := msg.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	return json.Unmarshal(data, msg)
}

// WithJSONCodec registers the codec on a handler or client. The constructors
// in this package add it automatically.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
