package declaration

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
)

// Declaration errors.
var (
	// ErrNotConnected is the panic value raised when values are encoded or
	// unpacked before the class handles were resolved. It indicates a
	// programming error (no publish/subscribe happened first).
	ErrNotConnected = errors.New("class not connected to runtime")

	// ErrResolve wraps runtime failures resolving class or field handles.
	ErrResolve = errors.New("cannot resolve class handles")

	ErrWrongKind      = errors.New("schema kind does not match class model")
	ErrSchemaConflict = errors.New("class name already bound to another type")
)

// core is the declaration state shared by object and interaction classes.
// C is the class handle type and F the field handle type.
type core[C, F comparable] struct {
	schema model.Schema
	logger *slog.Logger

	// resolver looks up the class handle and every field handle.
	resolver func() (C, map[string]F, error)

	// fieldless classes may still be declared (interactions).
	fieldless bool

	flags Flags

	// declMu serializes declaration requests so a duplicate request is
	// detected before it reaches the runtime.
	declMu sync.Mutex

	once     sync.Once
	err      error
	resolved atomic.Bool

	// Immutable once resolved.
	handle     C
	byName     map[string]F
	byHandle   map[F]string
	pubNames   []string
	pubHandles []F
	subNames   []string
	subHandles []F
}

func (c *core[C, F]) resolve() error {
	c.once.Do(func() {
		h, fields, err := c.resolver()
		if err != nil {
			c.err = fmt.Errorf("%w: %s: %w", ErrResolve, c.schema.Name(), err)
			return
		}

		c.handle = h
		c.byName = fields
		c.byHandle = make(map[F]string, len(fields))
		for name, fh := range fields {
			c.byHandle[fh] = name
		}
		c.pubNames, c.pubHandles = c.lookup(c.schema.Publishable())
		c.subNames, c.subHandles = c.lookup(c.schema.Subscribable())

		c.resolved.Store(true)
		c.logger.Debug("class resolved", "fields", len(fields))
	})
	return c.err
}

func (c *core[C, F]) lookup(names []string) ([]string, []F) {
	handles := make([]F, 0, len(names))
	for _, n := range names {
		handles = append(handles, c.byName[n])
	}
	return names, handles
}

func (c *core[C, F]) publish(request func(C, []F) error) error {
	c.declMu.Lock()
	defer c.declMu.Unlock()

	if c.flags.IsPublished() {
		c.logger.Warn("class already published")
		return nil
	}
	if err := c.resolve(); err != nil {
		return err
	}
	if len(c.pubHandles) == 0 && !c.fieldless {
		c.logger.Warn("no publishable fields, publish skipped")
		return nil
	}
	if err := request(c.handle, c.pubHandles); err != nil {
		return fmt.Errorf("publish %s: %w", c.schema.Name(), err)
	}

	c.flags.SetPublishFlag()
	c.logger.Info("class published", "fields", c.pubNames)
	return nil
}

func (c *core[C, F]) unpublish(request func(C) error) error {
	c.declMu.Lock()
	defer c.declMu.Unlock()

	if !c.flags.IsPublished() {
		c.logger.Warn("class not published, unpublish skipped")
		return nil
	}
	if err := request(c.handle); err != nil {
		return fmt.Errorf("unpublish %s: %w", c.schema.Name(), err)
	}

	c.flags.UnsetPublishFlag()
	c.logger.Info("class unpublished")
	return nil
}

func (c *core[C, F]) subscribe(request func(C, []F) error) error {
	c.declMu.Lock()
	defer c.declMu.Unlock()

	if c.flags.IsSubscribed() {
		c.logger.Warn("class already subscribed")
		return nil
	}
	if err := c.resolve(); err != nil {
		return err
	}
	if len(c.subHandles) == 0 && !c.fieldless {
		c.logger.Warn("no subscribable fields, subscribe skipped")
		return nil
	}
	if err := request(c.handle, c.subHandles); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.schema.Name(), err)
	}

	c.flags.SetSubscribeFlag()
	c.logger.Info("class subscribed", "fields", c.subNames)
	return nil
}

func (c *core[C, F]) unsubscribe(request func(C) error) error {
	c.declMu.Lock()
	defer c.declMu.Unlock()

	if !c.flags.IsSubscribed() {
		c.logger.Warn("class not subscribed, unsubscribe skipped")
		return nil
	}
	if err := request(c.handle); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", c.schema.Name(), err)
	}

	c.flags.UnsetSubscribeFlag()
	c.logger.Info("class unsubscribed")
	return nil
}

func (c *core[C, F]) mustBeResolved() {
	if !c.resolved.Load() {
		panic(fmt.Errorf("%w: %s", ErrNotConnected, c.schema.Name()))
	}
}

func (c *core[C, F]) encode(element any, names []string) (map[F][]byte, error) {
	c.mustBeResolved()

	byName, err := c.schema.Encode(element, names)
	if err != nil {
		return nil, err
	}
	out := make(map[F][]byte, len(byName))
	for name, data := range byName {
		out[c.byName[name]] = data
	}
	return out, nil
}

func (c *core[C, F]) decode(element any, values map[F][]byte) error {
	c.mustBeResolved()

	byName := make(map[string][]byte, len(values))
	for h, data := range values {
		name, ok := c.byHandle[h]
		if !ok {
			c.logger.Debug("skipping unknown field handle", "handle", h)
			continue
		}
		byName[name] = data
	}
	return c.schema.Decode(element, byName)
}

func (c *core[C, F]) names(handles []F) []string {
	c.mustBeResolved()

	out := make([]string, 0, len(handles))
	for _, h := range handles {
		if name, ok := c.byHandle[h]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Schema returns the class binding.
func (c *core[C, F]) Schema() model.Schema { return c.schema }

// Name returns the wire class name.
func (c *core[C, F]) Name() string { return c.schema.Name() }

// Status returns the declaration status.
func (c *core[C, F]) Status() Status { return c.flags.Status() }

// IsPublished reports whether the class is currently published.
func (c *core[C, F]) IsPublished() bool { return c.flags.IsPublished() }

// IsSubscribed reports whether the class is currently subscribed.
func (c *core[C, F]) IsSubscribed() bool { return c.flags.IsSubscribed() }

// Resolved reports whether runtime handles have been resolved.
func (c *core[C, F]) Resolved() bool { return c.resolved.Load() }

// Handle returns the class handle; ok is false before resolution.
func (c *core[C, F]) Handle() (h C, ok bool) {
	if !c.resolved.Load() {
		return h, false
	}
	return c.handle, true
}
