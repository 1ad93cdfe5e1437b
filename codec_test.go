package kvlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgpackCodec_RoundTrip(t *testing.T) {
	codec := MsgpackCodec{}

	cases := []struct {
		name string
		in   any
		want any
	}{
		{"string", "hello", "hello"},
		{"empty string", "", ""},
		{"int widens to int64", 42, int64(42)},
		{"negative int", -7, int64(-7)},
		{"bool", true, true},
		{"nil", nil, nil},
		{"float", 3.25, 3.25},
		{"bytes", []byte("blob"), []byte("blob")},
		{
			"slice",
			[]any{"a", int64(1), true},
			[]any{"a", int64(1), true},
		},
		{
			"map",
			map[string]any{"x": int64(1), "y": "z"},
			map[string]any{"x": int64(1), "y": "z"},
		},
		{
			"nested",
			map[string]any{"outer": map[string]any{"inner": []any{int64(1), int64(2)}}},
			map[string]any{"outer": map[string]any{"inner": []any{int64(1), int64(2)}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := codec.Encode(tc.in)
			require.NoError(t, err)

			got, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMsgpackCodec_CorruptBytes(t *testing.T) {
	codec := MsgpackCodec{}

	// 0xc1 is the one code the msgpack format never assigns.
	_, err := codec.Decode([]byte{0xc1})
	assert.Error(t, err)

	// Array header promising two elements, only one present.
	_, err = codec.Decode([]byte{0x92, 0x01})
	assert.Error(t, err)
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := JSONCodec{}

	data, err := codec.Encode(map[string]any{"n": 1, "s": "x"})
	require.NoError(t, err)

	got, err := codec.Decode(data)
	require.NoError(t, err)

	// JSON numbers come back as float64.
	assert.Equal(t, map[string]any{"n": float64(1), "s": "x"}, got)
}

func TestJSONCodec_CorruptBytes(t *testing.T) {
	codec := JSONCodec{}
	_, err := codec.Decode([]byte("{not json"))
	assert.Error(t, err)
}
