package codec

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// fixed is the set of fixed-width representations.
type fixed interface {
	uint8 | int16 | int32 | int64 | float32 | float64
}

// fixedCodec encodes a fixed-width number in the configured byte order.
type fixedCodec[N fixed] struct {
	kind  Kind
	order binary.ByteOrder
}

func fixedFactory[N fixed](kind Kind, order binary.ByteOrder) Factory {
	return func() (Codec, error) {
		return fixedCodec[N]{kind: kind, order: order}, nil
	}
}

func (c fixedCodec[N]) Kind() Kind { return c.kind }

func (c fixedCodec[N]) NativeType() reflect.Type { return reflect.TypeFor[N]() }

func (c fixedCodec[N]) Encode(v any) ([]byte, error) {
	n, ok := v.(N)
	if !ok {
		return nil, typeError(c, v)
	}
	return binary.Append(nil, c.order, n)
}

func (c fixedCodec[N]) Decode(data []byte) (any, error) {
	var n N
	if size := binary.Size(n); len(data) != size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrInvalidLength, c.kind, size, len(data))
	}
	if _, err := binary.Decode(data, c.order, &n); err != nil {
		return nil, fmt.Errorf("%s: %w", c.kind, err)
	}
	return n, nil
}

// booleanCodec implements HLAboolean: an HLAinteger32BE holding 0 or 1.
type booleanCodec struct{}

func (booleanCodec) Kind() Kind { return KindBoolean }

func (booleanCodec) NativeType() reflect.Type { return reflect.TypeFor[bool]() }

func (c booleanCodec) Encode(v any) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, typeError(c, v)
	}
	var n uint32
	if b {
		n = 1
	}
	return binary.BigEndian.AppendUint32(nil, n), nil
}

func (booleanCodec) Decode(data []byte) (any, error) {
	if len(data) != 4 {
		return nil, fmt.Errorf("%w: %s needs 4 bytes, got %d", ErrInvalidLength, KindBoolean, len(data))
	}
	return binary.BigEndian.Uint32(data) != 0, nil
}

func typeError(c Codec, v any) error {
	return fmt.Errorf("%w: %s expects %s, got %T", ErrValueType, c.Kind(), c.NativeType(), v)
}
