package kvlite

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes values to and from the opaque blobs held in the
// value column. Encode and Decode must be exact inverses for every
// value the codec supports; the store never inspects the bytes.
//
// A Codec is pluggable per Store via WithCodec.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// MsgpackCodec is the default codec. It round-trips strings, booleans,
// integers (decoded as int64/uint64), floats, byte slices, nil, and
// nested slices and string-keyed maps.
type MsgpackCodec struct{}

// Encode implements Codec.
func (MsgpackCodec) Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return data, nil
}

// Decode implements Codec.
// Loose interface decoding widens integers to int64/uint64 so that a
// value survives a round trip with a predictable type.
func (MsgpackCodec) Decode(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}

// JSONCodec stores values as JSON. Useful when the table must stay
// readable by other tooling. Note the usual JSON lossiness: numbers
// decode as float64 and byte slices as base64 strings.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return data, nil
}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
