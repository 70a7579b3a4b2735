package cachepb

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Codec is the gRPC codec for cache.CacheService. It registers under the
// standard "proto" name, so requests carry the usual application/grpc+proto
// content type. Generated proto messages (health, reflection) are passed
// through to proto.Marshal, which lets a server force this codec for every
// service it hosts.
type Codec struct{}

// Marshal encodes v.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case message:
		return m.marshalWire(), nil
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("cachepb: cannot marshal %T", v)
	}
}

// Unmarshal decodes data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case message:
		return m.unmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("cachepb: cannot unmarshal into %T", v)
	}
}

// Name returns the content subtype of the codec.
func (Codec) Name() string {
	return "proto"
}
