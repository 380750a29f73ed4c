package model

import (
	"fmt"
	"reflect"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/codec"
)

// Scope declares whether an attribute takes part in publication,
// subscription, both, or neither.
type Scope uint8

const (
	// ScopePublish marks an attribute this federate sends.
	ScopePublish Scope = 1 << iota

	// ScopeSubscribe marks an attribute this federate receives.
	ScopeSubscribe

	// ScopeNone excludes the attribute from declarations. It is still
	// encoded and decoded when named explicitly.
	ScopeNone Scope = 0

	// ScopePublishSubscribe is send and receive.
	ScopePublishSubscribe = ScopePublish | ScopeSubscribe
)

// CanPublish returns true if the attribute is publishable.
func (s Scope) CanPublish() bool { return s&ScopePublish != 0 }

// CanSubscribe returns true if the attribute is subscribable.
func (s Scope) CanSubscribe() bool { return s&ScopeSubscribe != 0 }

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopePublish:
		return "PUBLISH"
	case ScopeSubscribe:
		return "SUBSCRIBE"
	case ScopePublishSubscribe:
		return "PUBLISH_SUBSCRIBE"
	case ScopeNone:
		return "NONE"
	default:
		return fmt.Sprintf("Scope(%d)", uint8(s))
	}
}

// Field binds one wire name of a class to an accessor pair on *T.
//
// Fields are created with Attribute, OptionalAttribute, Parameter or
// OptionalParameter and validated when the owning class is built.
type Field[T any] struct {
	name      string
	kind      codec.Kind
	scope     Scope
	parameter bool
	valueType reflect.Type

	get func(*T) (any, bool)
	set func(*T, any) error

	// decodeInto decodes with a codec that has no fixed native type.
	decodeInto func(codec.TypedDecoder, []byte) (any, error)
}

// Name returns the wire name.
func (f Field[T]) Name() string { return f.name }

// Kind returns the codec kind.
func (f Field[T]) Kind() codec.Kind { return f.kind }

// Scope returns the declaration scope.
func (f Field[T]) Scope() Scope { return f.scope }

// Attribute binds an object class attribute. A value is treated as null
// (and omitted from encodes) when it is a nil pointer, slice, map or
// interface.
func Attribute[T, V any](name string, kind codec.Kind, scope Scope, get func(*T) V, set func(*T, V)) Field[T] {
	f := newField(name, kind, scope, set)
	if get != nil {
		f.get = func(e *T) (any, bool) {
			v := get(e)
			return v, !isNull(v)
		}
	}
	return f
}

// OptionalAttribute binds an attribute whose getter reports presence
// explicitly. Absent values are omitted from encodes.
func OptionalAttribute[T, V any](name string, kind codec.Kind, scope Scope, get func(*T) (V, bool), set func(*T, V)) Field[T] {
	f := newField(name, kind, scope, set)
	if get != nil {
		f.get = func(e *T) (any, bool) {
			v, ok := get(e)
			return v, ok && !isNull(v)
		}
	}
	return f
}

// Parameter binds an interaction class parameter. Parameters are always
// both sent and received.
func Parameter[T, V any](name string, kind codec.Kind, get func(*T) V, set func(*T, V)) Field[T] {
	f := Attribute(name, kind, ScopePublishSubscribe, get, set)
	f.parameter = true
	return f
}

// OptionalParameter is the parameter form of OptionalAttribute.
func OptionalParameter[T, V any](name string, kind codec.Kind, get func(*T) (V, bool), set func(*T, V)) Field[T] {
	f := OptionalAttribute(name, kind, ScopePublishSubscribe, get, set)
	f.parameter = true
	return f
}

func newField[T, V any](name string, kind codec.Kind, scope Scope, set func(*T, V)) Field[T] {
	f := Field[T]{
		name:      name,
		kind:      kind,
		scope:     scope,
		valueType: reflect.TypeFor[V](),
		decodeInto: func(td codec.TypedDecoder, data []byte) (any, error) {
			var v V
			if err := td.DecodeInto(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	if set != nil {
		f.set = func(e *T, v any) error {
			nv, ok := v.(V)
			if !ok {
				return fmt.Errorf("%w: %s expects %s, got %T", ErrValueType, name, f.valueType, v)
			}
			set(e, nv)
			return nil
		}
	}
	return f
}

// isNull reports whether v carries no value.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
