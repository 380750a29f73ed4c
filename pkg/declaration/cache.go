package declaration

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Cache holds one class model per class name. Models are created lazily on
// first use and shared afterwards.
type Cache struct {
	amb    rti.Ambassador
	logger *slog.Logger

	mu           sync.RWMutex
	objects      map[string]*ObjectClass
	interactions map[string]*InteractionClass
}

// NewCache creates an empty cache bound to amb.
func NewCache(amb rti.Ambassador, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		amb:          amb,
		logger:       logger,
		objects:      make(map[string]*ObjectClass),
		interactions: make(map[string]*InteractionClass),
	}
}

// Object returns the model for an object class schema, creating it on first
// use. A second schema with the same name but a different element type is
// rejected.
func (c *Cache) Object(schema model.Schema) (*ObjectClass, error) {
	c.mu.RLock()
	oc, ok := c.objects[schema.Name()]
	c.mu.RUnlock()
	if ok {
		return oc, checkSchema(oc.schema, schema)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if oc, ok := c.objects[schema.Name()]; ok {
		return oc, checkSchema(oc.schema, schema)
	}
	oc, err := NewObjectClass(schema, c.amb, c.logger)
	if err != nil {
		return nil, err
	}
	c.objects[schema.Name()] = oc
	return oc, nil
}

// Interaction returns the model for an interaction class schema.
func (c *Cache) Interaction(schema model.Schema) (*InteractionClass, error) {
	c.mu.RLock()
	ic, ok := c.interactions[schema.Name()]
	c.mu.RUnlock()
	if ok {
		return ic, checkSchema(ic.schema, schema)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ic, ok := c.interactions[schema.Name()]; ok {
		return ic, checkSchema(ic.schema, schema)
	}
	ic, err := NewInteractionClass(schema, c.amb, c.logger)
	if err != nil {
		return nil, err
	}
	c.interactions[schema.Name()] = ic
	return ic, nil
}

func checkSchema(have, want model.Schema) error {
	if have.ElementType() != want.ElementType() {
		return fmt.Errorf("%w: %s bound to %s, not %s",
			ErrSchemaConflict, have.Name(), have.ElementType(), want.ElementType())
	}
	return nil
}

// ObjectByName returns the model registered under a class name.
func (c *Cache) ObjectByName(name string) (*ObjectClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	oc, ok := c.objects[name]
	return oc, ok
}

// ObjectByHandle returns the resolved model with the given class handle.
func (c *Cache) ObjectByHandle(h rti.ObjectClassHandle) (*ObjectClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, oc := range c.objects {
		if got, ok := oc.Handle(); ok && got == h {
			return oc, true
		}
	}
	return nil, false
}

// InteractionByHandle returns the resolved model with the given class handle.
func (c *Cache) InteractionByHandle(h rti.InteractionClassHandle) (*InteractionClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ic := range c.interactions {
		if got, ok := ic.Handle(); ok && got == h {
			return ic, true
		}
	}
	return nil, false
}

// Objects returns every object class model sorted by name.
func (c *Cache) Objects() []*ObjectClass {
	c.mu.RLock()
	out := make([]*ObjectClass, 0, len(c.objects))
	for _, oc := range c.objects {
		out = append(out, oc)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b *ObjectClass) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// Interactions returns every interaction class model sorted by name.
func (c *Cache) Interactions() []*InteractionClass {
	c.mu.RLock()
	out := make([]*InteractionClass, 0, len(c.interactions))
	for _, ic := range c.interactions {
		out = append(out, ic)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b *InteractionClass) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}
