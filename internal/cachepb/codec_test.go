package cachepb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodec_SetRequestWireFormat(t *testing.T) {
	b, err := Codec{}.Marshal(&SetRequest{Key: "k", Value: []byte("v")})
	require.NoError(t, err)

	// field 1 (string) "k", field 2 (bytes) "v"
	assert.Equal(t, []byte{0x0a, 0x01, 'k', 0x12, 0x01, 'v'}, b)
}

func TestCodec_GetResponseWireFormat(t *testing.T) {
	b, err := Codec{}.Marshal(&GetResponse{Value: []byte("hi"), Found: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x02, 'h', 'i', 0x10, 0x01}, b)

	// Zero values are omitted entirely.
	b, err = Codec{}.Marshal(&GetResponse{})
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestCodec_Decode(t *testing.T) {
	var req SetRequest
	require.NoError(t, Codec{}.Unmarshal([]byte{0x0a, 0x07, 'u', 's', 'e', 'r', ':', '4', '2', 0x12, 0x05, 'h', 'e', 'l', 'l', 'o'}, &req))
	assert.Equal(t, "user:42", req.Key)
	assert.Equal(t, []byte("hello"), req.Value)

	var resp SetResponse
	require.NoError(t, Codec{}.Unmarshal([]byte{0x08, 0x01}, &resp))
	assert.True(t, resp.GetSuccess())

	var get GetRequest
	require.NoError(t, Codec{}.Unmarshal([]byte{0x0a, 0x01, 'x'}, &get))
	assert.Equal(t, "x", get.GetKey())
}

func TestCodec_SkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, 1234)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "key")
	b = protowire.AppendTag(b, 7, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("ignored"))

	var req GetRequest
	require.NoError(t, Codec{}.Unmarshal(b, &req))
	assert.Equal(t, "key", req.Key)
}

func TestCodec_TruncatedInput(t *testing.T) {
	var req SetRequest
	err := Codec{}.Unmarshal([]byte{0x0a, 0x05, 'a'}, &req)
	assert.Error(t, err)
}

func TestCodec_ResetsMessage(t *testing.T) {
	resp := GetResponse{Value: []byte("old"), Found: true}
	require.NoError(t, Codec{}.Unmarshal(nil, &resp))
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Value)
}

func TestCodec_ProtoPassthrough(t *testing.T) {
	b, err := Codec{}.Marshal(wrapperspb.String("hello"))
	require.NoError(t, err)

	out := &wrapperspb.StringValue{}
	require.NoError(t, Codec{}.Unmarshal(b, out))
	assert.Equal(t, "hello", out.GetValue())
}

func TestCodec_RejectsForeignTypes(t *testing.T) {
	_, err := Codec{}.Marshal(struct{}{})
	assert.Error(t, err)
	assert.Error(t, Codec{}.Unmarshal(nil, &struct{}{}))
	assert.Equal(t, "proto", Codec{}.Name())
}

func TestNilGetters(t *testing.T) {
	var set *SetRequest
	var get *GetResponse
	assert.Empty(t, set.GetKey())
	assert.Nil(t, set.GetValue())
	assert.False(t, get.GetFound())
	assert.Nil(t, get.GetValue())
}
