package model

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/codec"
)

// Class errors.
var (
	// ErrInvalidClass wraps every class construction failure. Construction
	// failures are configuration errors and are not retried.
	ErrInvalidClass = errors.New("invalid class definition")

	ErrMissingClassName = errors.New("missing class name")
	ErrMissingFieldName = errors.New("missing field name")
	ErrDuplicateName    = errors.New("duplicate wire name")
	ErrMissingAccessor  = errors.New("missing getter or setter")
	ErrTypeMismatch     = errors.New("accessor type incompatible with codec")
	ErrFieldKind        = errors.New("field kind does not match class kind")

	ErrElementType  = errors.New("element type does not match class")
	ErrUnknownField = errors.New("unknown field")
	ErrValueType    = errors.New("decoded value type does not match field")
)

// ClassConfig configures class construction.
type ClassConfig struct {
	// Kind selects object or interaction class semantics.
	Kind ClassKind

	// Name is the wire class name, e.g. "HLAobjectRoot.ReferenceFrame".
	Name string

	// Registry supplies codecs. Defaults to codec.Default().
	Registry *codec.Registry

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Class is the immutable binding between a Go type and its wire class.
// It is safe for concurrent use; access to individual elements is not
// synchronized.
type Class[T any] struct {
	kind   ClassKind
	name   string
	logger *slog.Logger

	fields []binding[T]
	index  map[string]int

	publishable  []string
	subscribable []string
}

// binding is a validated field with its resolved codec.
type binding[T any] struct {
	Field[T]
	codec codec.Codec

	// toWire converts the accessor value to the codec's native type.
	toWire func(any) any

	// fromWire converts a decoded value back to the accessor type.
	fromWire func(any) any
}

// NewClass builds and validates a class binding.
func NewClass[T any](cfg ClassConfig, fields ...Field[T]) (*Class[T], error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClass, ErrMissingClassName)
	}
	if cfg.Registry == nil {
		cfg.Registry = codec.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Class[T]{
		kind:   cfg.Kind,
		name:   cfg.Name,
		logger: cfg.Logger.With("class", cfg.Name),
		fields: make([]binding[T], 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		b, err := c.bind(cfg.Registry, f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidClass, cfg.Name, f.name, err)
		}
		c.index[f.name] = len(c.fields)
		c.fields = append(c.fields, b)

		if f.scope.CanPublish() {
			c.publishable = append(c.publishable, f.name)
		}
		if f.scope.CanSubscribe() {
			c.subscribable = append(c.subscribable, f.name)
		}
	}

	return c, nil
}

// NewObjectClass builds an object class using the default registry.
func NewObjectClass[T any](name string, fields ...Field[T]) (*Class[T], error) {
	return NewClass(ClassConfig{Kind: ObjectClass, Name: name}, fields...)
}

// NewInteractionClass builds an interaction class using the default registry.
func NewInteractionClass[T any](name string, fields ...Field[T]) (*Class[T], error) {
	return NewClass(ClassConfig{Kind: InteractionClass, Name: name}, fields...)
}

// Must panics if err is non-nil. For package-level class declarations.
func Must[T any](c *Class[T], err error) *Class[T] {
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Class[T]) bind(reg *codec.Registry, f Field[T]) (binding[T], error) {
	if f.name == "" {
		return binding[T]{}, ErrMissingFieldName
	}
	if _, dup := c.index[f.name]; dup {
		return binding[T]{}, ErrDuplicateName
	}
	if f.get == nil || f.set == nil {
		return binding[T]{}, ErrMissingAccessor
	}
	if f.parameter != (c.kind == InteractionClass) {
		return binding[T]{}, ErrFieldKind
	}

	cd, err := reg.Get(f.kind)
	if err != nil {
		return binding[T]{}, err
	}

	b := binding[T]{Field: f, codec: cd, toWire: identity, fromWire: identity}

	native := cd.NativeType()
	switch {
	case native == nil:
		if _, ok := cd.(codec.TypedDecoder); !ok {
			return binding[T]{}, fmt.Errorf("%w: %s has no native type and no typed decoder", ErrTypeMismatch, f.kind)
		}
	case native == f.valueType:
	case native.Kind() == f.valueType.Kind() && f.valueType.ConvertibleTo(native) && native.ConvertibleTo(f.valueType):
		// Named types over the codec's representation, e.g. enums over int32.
		b.toWire = converter(native)
		b.fromWire = converter(f.valueType)
	default:
		return binding[T]{}, fmt.Errorf("%w: %s is %s, codec %s expects %s", ErrTypeMismatch, f.name, f.valueType, f.kind, native)
	}

	return b, nil
}

func identity(v any) any { return v }

func converter(to reflect.Type) func(any) any {
	return func(v any) any {
		return reflect.ValueOf(v).Convert(to).Interface()
	}
}

// Name returns the wire class name.
func (c *Class[T]) Name() string { return c.name }

// Kind returns the class kind.
func (c *Class[T]) Kind() ClassKind { return c.kind }

// FieldNames returns all wire names in declaration order.
func (c *Class[T]) FieldNames() []string {
	names := make([]string, len(c.fields))
	for i, b := range c.fields {
		names[i] = b.name
	}
	return names
}

// Publishable returns the wire names this federate may send.
func (c *Class[T]) Publishable() []string { return slices.Clone(c.publishable) }

// Subscribable returns the wire names this federate may receive.
func (c *Class[T]) Subscribable() []string { return slices.Clone(c.subscribable) }

// Scope returns the scope of the named field.
func (c *Class[T]) Scope(name string) (Scope, bool) {
	i, ok := c.index[name]
	if !ok {
		return ScopeNone, false
	}
	return c.fields[i].scope, true
}

// Codec returns the codec kind of the named field.
func (c *Class[T]) Codec(name string) (codec.Kind, bool) {
	i, ok := c.index[name]
	if !ok {
		return "", false
	}
	return c.fields[i].kind, true
}

// New returns a zero-valued element as *T.
func (c *Class[T]) New() any { return new(T) }

// ElementType returns the element type *T.
func (c *Class[T]) ElementType() reflect.Type { return reflect.TypeFor[*T]() }

// Encode reads the named fields of element (a *T) and encodes them.
// A nil names slice selects the publishable fields. Null values are
// logged and omitted; a partial map is not an error.
func (c *Class[T]) Encode(element any, names []string) (map[string][]byte, error) {
	e, err := c.cast(element)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = c.publishable
	}

	out := make(map[string][]byte, len(names))
	for _, name := range names {
		i, ok := c.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, c.name, name)
		}
		b := &c.fields[i]

		v, present := b.get(e)
		if !present {
			c.logger.Debug("omitting null value", "field", name)
			continue
		}

		data, err := b.codec.Encode(b.toWire(v))
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", c.name, name, err)
		}
		out[name] = data
	}
	return out, nil
}

// Decode decodes values into element (a *T). Unknown names are skipped.
// All values are decoded before any setter runs, so a decode failure
// leaves element untouched. Elements implementing ChangeListener are
// notified once per written field, in declaration order.
func (c *Class[T]) Decode(element any, values map[string][]byte) error {
	e, err := c.cast(element)
	if err != nil {
		return err
	}

	type staged struct {
		b     *binding[T]
		value any
	}
	pending := make([]staged, 0, len(values))

	for name, data := range values {
		i, ok := c.index[name]
		if !ok {
			c.logger.Debug("skipping unknown field", "field", name)
			continue
		}
		b := &c.fields[i]

		v, err := c.decodeValue(b, data)
		if err != nil {
			return fmt.Errorf("decode %s.%s: %w", c.name, name, err)
		}
		pending = append(pending, staged{b: b, value: v})
	}

	slices.SortFunc(pending, func(a, b staged) int {
		return c.index[a.b.name] - c.index[b.b.name]
	})

	listener, notify := element.(ChangeListener)
	for _, p := range pending {
		old, _ := p.b.get(e)
		if err := p.b.set(e, p.value); err != nil {
			return fmt.Errorf("decode %s.%s: %w", c.name, p.b.name, err)
		}
		if notify {
			listener.FieldChanged(p.b.name, old, p.value)
		}
	}
	return nil
}

func (c *Class[T]) decodeValue(b *binding[T], data []byte) (any, error) {
	if td, ok := b.codec.(codec.TypedDecoder); ok && b.codec.NativeType() == nil {
		return b.decodeInto(td, data)
	}
	v, err := b.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return b.fromWire(v), nil
}

func (c *Class[T]) cast(element any) (*T, error) {
	e, ok := element.(*T)
	if !ok || e == nil {
		return nil, fmt.Errorf("%w: %s expects %s, got %T", ErrElementType, c.name, c.ElementType(), element)
	}
	return e, nil
}

var _ Schema = (*Class[struct{}])(nil)
