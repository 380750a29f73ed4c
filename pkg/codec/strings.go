package codec

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// lengthPrefix is the size of the HLAinteger32BE element count that
// precedes every variable-length array.
const lengthPrefix = 4

// unicodeStringCodec implements HLAunicodeString: an element count followed
// by UTF-16BE code units.
type unicodeStringCodec struct {
	utf16 encoding.Encoding
}

func newUnicodeStringCodec() (Codec, error) {
	return unicodeStringCodec{utf16: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}, nil
}

func (unicodeStringCodec) Kind() Kind { return KindUnicodeString }

func (unicodeStringCodec) NativeType() reflect.Type { return reflect.TypeFor[string]() }

func (c unicodeStringCodec) Encode(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, typeError(c, v)
	}
	units, err := c.utf16.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, KindUnicodeString, err)
	}
	out := binary.BigEndian.AppendUint32(make([]byte, 0, lengthPrefix+len(units)), uint32(len(units)/2))
	return append(out, units...), nil
}

func (c unicodeStringCodec) Decode(data []byte) (any, error) {
	count, body, err := splitCounted(KindUnicodeString, data, 2)
	if err != nil {
		return nil, err
	}
	decoded, err := c.utf16.NewDecoder().Bytes(body[:count*2])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, KindUnicodeString, err)
	}
	return string(decoded), nil
}

// asciiStringCodec implements HLAASCIIstring.
type asciiStringCodec struct{}

func (asciiStringCodec) Kind() Kind { return KindASCIIString }

func (asciiStringCodec) NativeType() reflect.Type { return reflect.TypeFor[string]() }

func (c asciiStringCodec) Encode(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, typeError(c, v)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, fmt.Errorf("%w: %s: non-ASCII byte at offset %d", ErrInvalidValue, KindASCIIString, i)
		}
	}
	out := binary.BigEndian.AppendUint32(make([]byte, 0, lengthPrefix+len(s)), uint32(len(s)))
	return append(out, s...), nil
}

func (asciiStringCodec) Decode(data []byte) (any, error) {
	count, body, err := splitCounted(KindASCIIString, data, 1)
	if err != nil {
		return nil, err
	}
	return string(body[:count]), nil
}

// opaqueDataCodec implements HLAopaqueData.
type opaqueDataCodec struct{}

func (opaqueDataCodec) Kind() Kind { return KindOpaqueData }

func (opaqueDataCodec) NativeType() reflect.Type { return reflect.TypeFor[[]byte]() }

func (c opaqueDataCodec) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, typeError(c, v)
	}
	out := binary.BigEndian.AppendUint32(make([]byte, 0, lengthPrefix+len(b)), uint32(len(b)))
	return append(out, b...), nil
}

func (opaqueDataCodec) Decode(data []byte) (any, error) {
	count, body, err := splitCounted(KindOpaqueData, data, 1)
	if err != nil {
		return nil, err
	}
	out := make([]byte, count)
	copy(out, body[:count])
	return out, nil
}

// splitCounted reads the element count and verifies the body holds count
// elements of elemSize bytes.
func splitCounted(kind Kind, data []byte, elemSize int) (int, []byte, error) {
	if len(data) < lengthPrefix {
		return 0, nil, fmt.Errorf("%w: %s missing element count", ErrInvalidLength, kind)
	}
	count := int(binary.BigEndian.Uint32(data))
	body := data[lengthPrefix:]
	if count < 0 || count*elemSize > len(body) {
		return 0, nil, fmt.Errorf("%w: %s declares %d elements, %d bytes available", ErrInvalidLength, kind, count, len(body))
	}
	return count, body, nil
}
