// Package codec converts native Go values to and from the byte sequences
// carried in wire value maps.
//
// Each codec is identified by a Kind. Codecs are stateless, built lazily on
// first use and cached by a Registry for the life of the process:
//
//	reg := codec.NewRegistry()
//	c, err := reg.Get(codec.KindFloat64BE)
//	data, err := c.Encode(3.5)
//
// # Basic Data Types
//
// The HLA basic representations are provided as built-in kinds:
//   - Integers and floats in big- and little-endian form
//   - HLAboolean (four-byte big-endian 0/1)
//   - HLAoctet
//   - HLAenum32 (four-byte big-endian enumerator)
//   - HLAunicodeString (element count + UTF-16BE code units)
//   - HLAASCIIstring and HLAopaqueData (element count + bytes)
//
// Structured application data (vectors, quaternions, frame states) uses
// KindCBOR, which encodes arbitrary Go values with deterministic CBOR.
//
// # Native Types
//
// Every codec reports the Go type it accepts. Field bindings are checked
// against it when a class is built, so a mismatch is a configuration error
// rather than a runtime failure.
package codec
