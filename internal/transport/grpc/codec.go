package grpc

import "encoding/json"

// jsonCodec lets the ledger service run over gRPC without generated
// protobuf code: messages are plain structs serialized as JSON.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
