package codec

import (
	"errors"
	"reflect"
)

// Kind identifies a value representation on the wire.
type Kind string

// Built-in kinds.
const (
	KindBoolean       Kind = "HLAboolean"
	KindOctet         Kind = "HLAoctet"
	KindInteger16BE   Kind = "HLAinteger16BE"
	KindInteger16LE   Kind = "HLAinteger16LE"
	KindInteger32BE   Kind = "HLAinteger32BE"
	KindInteger32LE   Kind = "HLAinteger32LE"
	KindInteger64BE   Kind = "HLAinteger64BE"
	KindInteger64LE   Kind = "HLAinteger64LE"
	KindFloat32BE     Kind = "HLAfloat32BE"
	KindFloat32LE     Kind = "HLAfloat32LE"
	KindFloat64BE     Kind = "HLAfloat64BE"
	KindFloat64LE     Kind = "HLAfloat64LE"
	KindEnum32        Kind = "HLAenum32"
	KindUnicodeString Kind = "HLAunicodeString"
	KindASCIIString   Kind = "HLAASCIIstring"
	KindOpaqueData    Kind = "HLAopaqueData"
	KindTime          Kind = "HLAinteger64Time"
	KindCBOR          Kind = "CBOR"
)

// Codec errors.
var (
	ErrUnknownCodec    = errors.New("unknown codec kind")
	ErrUnconstructible = errors.New("codec cannot be constructed")
	ErrDuplicateKind   = errors.New("codec kind already registered")
	ErrValueType       = errors.New("value type does not match codec")
	ErrInvalidLength   = errors.New("invalid encoded length")
	ErrInvalidValue    = errors.New("value cannot be represented")
)

// Codec converts between a native value and its encoded form.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Kind returns the kind this codec implements.
	Kind() Kind

	// NativeType returns the Go type accepted by Encode and produced by
	// Decode. A nil type means any value is accepted (see TypedDecoder).
	NativeType() reflect.Type

	// Encode encodes v, which must be of NativeType.
	Encode(v any) ([]byte, error)

	// Decode decodes data into a value of NativeType.
	Decode(data []byte) (any, error)
}

// TypedDecoder is implemented by codecs that can decode directly into a
// caller-supplied target, typically codecs without a fixed native type.
type TypedDecoder interface {
	// DecodeInto decodes data into target, which must be a non-nil pointer.
	DecodeInto(data []byte, target any) error
}
