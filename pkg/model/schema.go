package model

import "reflect"

// ClassKind distinguishes object classes from interaction classes.
type ClassKind uint8

const (
	// ObjectClass classes carry attributes and have instances.
	ObjectClass ClassKind = iota

	// InteractionClass classes carry parameters and are sent as messages.
	InteractionClass
)

// String returns the class kind name.
func (k ClassKind) String() string {
	switch k {
	case ObjectClass:
		return "object"
	case InteractionClass:
		return "interaction"
	default:
		return "unknown"
	}
}

// Schema is the type-erased view of a Class used by components that handle
// many element types.
type Schema interface {
	Name() string
	Kind() ClassKind

	// FieldNames returns all wire names in declaration order.
	FieldNames() []string
	Publishable() []string
	Subscribable() []string
	Scope(name string) (Scope, bool)

	// New returns a fresh default-constructed element.
	New() any
	ElementType() reflect.Type

	Encode(element any, names []string) (map[string][]byte, error)
	Decode(element any, values map[string][]byte) error
}

// ChangeListener is implemented by elements that want to observe decoded
// field changes.
type ChangeListener interface {
	FieldChanged(name string, oldValue, newValue any)
}
