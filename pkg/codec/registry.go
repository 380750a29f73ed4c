package codec

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"
)

// Factory constructs a codec. It is called at most once per registry and kind.
type Factory func() (Codec, error)

// Registry lazily constructs and caches codecs by kind.
//
// Concurrent first lookups of the same kind observe a single constructed
// instance; the factory runs once. A factory failure is cached too: the
// kind stays unusable and the factory is not retried.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory

	// slots holds one *slot per kind ever requested.
	slots sync.Map
}

type slot struct {
	once  sync.Once
	codec Codec
	err   error
}

// NewRegistry creates a registry preloaded with the built-in kinds.
func NewRegistry() *Registry {
	return &Registry{factories: builtinFactories()}
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry used when no registry is
// supplied explicitly.
func Default() *Registry {
	return defaultRegistry()
}

// Register adds a factory for a new kind. Registering a kind that already
// has a factory returns ErrDuplicateKind.
func (r *Registry) Register(kind Kind, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %s", ErrUnconstructible, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.factories[kind] = factory
	return nil
}

// Get returns the codec for kind, constructing it on first use.
func (r *Registry) Get(kind Kind) (Codec, error) {
	v, _ := r.slots.LoadOrStore(kind, &slot{})
	s := v.(*slot)
	s.once.Do(func() {
		s.codec, s.err = r.construct(kind)
	})
	return s.codec, s.err
}

// MustGet is like Get but panics on error. Intended for package
// initialization where a missing codec is a programming error.
func (r *Registry) MustGet(kind Kind) Codec {
	c, err := r.Get(kind)
	if err != nil {
		panic(err)
	}
	return c
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func (r *Registry) construct(kind Kind) (Codec, error) {
	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, kind)
	}

	c, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnconstructible, kind, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s: factory returned nil", ErrUnconstructible, kind)
	}
	return c, nil
}

func builtinFactories() map[Kind]Factory {
	return map[Kind]Factory{
		KindBoolean:       func() (Codec, error) { return booleanCodec{}, nil },
		KindOctet:         fixedFactory[uint8](KindOctet, binary.BigEndian),
		KindInteger16BE:   fixedFactory[int16](KindInteger16BE, binary.BigEndian),
		KindInteger16LE:   fixedFactory[int16](KindInteger16LE, binary.LittleEndian),
		KindInteger32BE:   fixedFactory[int32](KindInteger32BE, binary.BigEndian),
		KindInteger32LE:   fixedFactory[int32](KindInteger32LE, binary.LittleEndian),
		KindInteger64BE:   fixedFactory[int64](KindInteger64BE, binary.BigEndian),
		KindInteger64LE:   fixedFactory[int64](KindInteger64LE, binary.LittleEndian),
		KindFloat32BE:     fixedFactory[float32](KindFloat32BE, binary.BigEndian),
		KindFloat32LE:     fixedFactory[float32](KindFloat32LE, binary.LittleEndian),
		KindFloat64BE:     fixedFactory[float64](KindFloat64BE, binary.BigEndian),
		KindFloat64LE:     fixedFactory[float64](KindFloat64LE, binary.LittleEndian),
		KindEnum32:        fixedFactory[int32](KindEnum32, binary.BigEndian),
		KindUnicodeString: newUnicodeStringCodec,
		KindASCIIString:   func() (Codec, error) { return asciiStringCodec{}, nil },
		KindOpaqueData:    func() (Codec, error) { return opaqueDataCodec{}, nil },
		KindTime:          fixedFactory[int64](KindTime, binary.BigEndian),
		KindCBOR:          newCBORCodec,
	}
}
