package cachepb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// message is implemented by every type in this package that Codec encodes.
type message interface {
	marshalWire() []byte
	unmarshalWire(b []byte) error
}

// SetRequest stores Value under Key.
type SetRequest struct {
	Key   string
	Value []byte
}

func (m *SetRequest) GetKey() string {
	if m == nil {
		return ""
	}
	return m.Key
}

func (m *SetRequest) GetValue() []byte {
	if m == nil {
		return nil
	}
	return m.Value
}

func (m *SetRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.Key)
	b = appendBytes(b, 2, m.Value)
	return b
}

func (m *SetRequest) unmarshalWire(b []byte) error {
	*m = SetRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.Key = v
			return n
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			m.Value = append([]byte{}, v...)
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

// SetResponse acknowledges a Set.
type SetResponse struct {
	Success bool
}

func (m *SetResponse) GetSuccess() bool {
	return m != nil && m.Success
}

func (m *SetResponse) marshalWire() []byte {
	return appendBool(nil, 1, m.Success)
}

func (m *SetResponse) unmarshalWire(b []byte) error {
	*m = SetResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			m.Success = protowire.DecodeBool(v)
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

// GetRequest looks up Key on the node that receives it.
type GetRequest struct {
	Key string
}

func (m *GetRequest) GetKey() string {
	if m == nil {
		return ""
	}
	return m.Key
}

func (m *GetRequest) marshalWire() []byte {
	return appendString(nil, 1, m.Key)
}

func (m *GetRequest) unmarshalWire(b []byte) error {
	*m = GetRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.Key = v
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

// GetResponse carries the value when Found is true.
type GetResponse struct {
	Value []byte
	Found bool
}

func (m *GetResponse) GetValue() []byte {
	if m == nil {
		return nil
	}
	return m.Value
}

func (m *GetResponse) GetFound() bool {
	return m != nil && m.Found
}

func (m *GetResponse) marshalWire() []byte {
	var b []byte
	b = appendBytes(b, 1, m.Value)
	b = appendBool(b, 2, m.Found)
	return b
}

func (m *GetResponse) unmarshalWire(b []byte) error {
	*m = GetResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			m.Value = append([]byte{}, v...)
			return n
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Found = protowire.DecodeBool(v)
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
}

// proto3 omits fields holding their zero value.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// walkFields calls field for every field in b. field returns the number of
// bytes consumed from the field's value, or a negative protowire error code.
func walkFields(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n = field(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}
