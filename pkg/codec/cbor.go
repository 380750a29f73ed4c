package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// cborCodec encodes structured application values with deterministic CBOR.
type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() (Codec, error) {
	// Deterministic output so identical values yield identical bytes.
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	enc, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder mode: %w", err)
	}

	// Lenient decoding for forward compatibility.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	dec, err := decOpts.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder mode: %w", err)
	}

	return cborCodec{enc: enc, dec: dec}, nil
}

func (cborCodec) Kind() Kind { return KindCBOR }

// NativeType is nil: any CBOR-representable value is accepted.
func (cborCodec) NativeType() reflect.Type { return nil }

func (c cborCodec) Encode(v any) ([]byte, error) {
	data, err := c.enc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, KindCBOR, err)
	}
	return data, nil
}

func (c cborCodec) Decode(data []byte) (any, error) {
	var v any
	if err := c.dec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", KindCBOR, err)
	}
	return v, nil
}

func (c cborCodec) DecodeInto(data []byte, target any) error {
	if err := c.dec.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: %w", KindCBOR, err)
	}
	return nil
}

var _ TypedDecoder = cborCodec{}
