package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/poll"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/declaration"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/dispatch"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Registry errors.
var (
	ErrAlreadyRegistered = errors.New("element already registered")
	ErrElementType       = errors.New("element type does not match class")
	ErrNotPublished      = errors.New("object class not published")
)

// DefaultReservationTimeout bounds the wait for a name reservation callback.
const DefaultReservationTimeout = 5 * time.Second

// Config configures a Registry.
type Config struct {
	Ambassador rti.Ambassador
	Classes    *declaration.Cache

	// Dispatcher runs listener notifications. When nil the registry starts
	// and owns a default one.
	Dispatcher *dispatch.Dispatcher

	Logger *slog.Logger

	// PollInterval is the reservation polling interval.
	PollInterval time.Duration

	// ReservationTimeout bounds CreateLocal's wait for a reservation.
	ReservationTimeout time.Duration
}

// Registry holds local and remote entities keyed by handle.
type Registry struct {
	amb                rti.Ambassador
	classes            *declaration.Cache
	dispatcher         *dispatch.Dispatcher
	ownsDispatcher     bool
	logger             *slog.Logger
	pollInterval       time.Duration
	reservationTimeout time.Duration

	mu        sync.RWMutex
	byHandle  map[rti.ObjectInstanceHandle]*Entity
	byElement map[any]*Entity
	byName    map[string]*Entity

	resMu        sync.Mutex
	reservations map[string]Reservation

	listenerMu sync.RWMutex
	onAdded    []func(*Entity)
	onRemoved  []func(*Entity)
	onUpdated  []func(*Entity, []string)
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		amb:                cfg.Ambassador,
		classes:            cfg.Classes,
		dispatcher:         cfg.Dispatcher,
		logger:             logger.With("component", "instance"),
		pollInterval:       cfg.PollInterval,
		reservationTimeout: cfg.ReservationTimeout,
		byHandle:           make(map[rti.ObjectInstanceHandle]*Entity),
		byElement:          make(map[any]*Entity),
		byName:             make(map[string]*Entity),
		reservations:       make(map[string]Reservation),
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(dispatch.Config{Logger: logger})
		r.ownsDispatcher = true
	}
	if r.pollInterval <= 0 {
		r.pollInterval = poll.DefaultInterval
	}
	if r.reservationTimeout <= 0 {
		r.reservationTimeout = DefaultReservationTimeout
	}
	return r
}

// Close stops the dispatcher if the registry created it.
func (r *Registry) Close() error {
	if r.ownsDispatcher {
		return r.dispatcher.Close()
	}
	return nil
}

// OnAdded registers a listener for remote entities becoming populated.
func (r *Registry) OnAdded(fn func(*Entity)) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.onAdded = append(r.onAdded, fn)
}

// OnRemoved registers a listener for entities leaving the registry.
func (r *Registry) OnRemoved(fn func(*Entity)) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.onRemoved = append(r.onRemoved, fn)
}

// OnUpdated registers a listener for reflected values. It receives the
// names of the attributes that were reflected.
func (r *Registry) OnUpdated(fn func(*Entity, []string)) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.onUpdated = append(r.onUpdated, fn)
}

// CreateLocal registers element as a new local instance of class.
//
// With a non-empty name the name is reserved first; if the reservation
// fails or times out the runtime assigns a name instead and no error is
// returned. The full set of publishable values is sent right after
// registration.
func (r *Registry) CreateLocal(ctx context.Context, class *declaration.ObjectClass, element any, name string) (*Entity, error) {
	if !class.IsPublished() {
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, class.Name())
	}
	if want := class.Schema().ElementType(); reflect.TypeOf(element) != want {
		return nil, fmt.Errorf("%w: %s expects %s, got %T", ErrElementType, class.Name(), want, element)
	}
	r.mu.RLock()
	_, exists := r.byElement[element]
	r.mu.RUnlock()
	if exists {
		return nil, ErrAlreadyRegistered
	}

	classHandle, _ := class.Handle()

	var (
		handle   rti.ObjectInstanceHandle
		err      error
		reserved bool
	)
	if name != "" {
		st, rerr := r.Reserve(ctx, name, r.reservationTimeout)
		if rerr != nil {
			r.logger.Warn("name reservation request failed", "name", name, "error", rerr)
		}
		if st == Succeeded {
			reserved = true
			handle, err = r.amb.RegisterObjectInstanceWithName(classHandle, name)
		} else {
			r.logger.Warn("name reservation not granted, using runtime-assigned name", "name", name, "status", st)
			handle, err = r.amb.RegisterObjectInstance(classHandle)
		}
	} else {
		handle, err = r.amb.RegisterObjectInstance(classHandle)
	}
	if err != nil {
		return nil, fmt.Errorf("register %s instance: %w", class.Name(), err)
	}

	if !reserved {
		name, err = r.amb.GetObjectInstanceName(handle)
		if err != nil {
			return nil, fmt.Errorf("instance name for %d: %w", handle, err)
		}
	}

	e := &Entity{
		name:     name,
		handle:   handle,
		class:    class,
		element:  element,
		origin:   Local,
		reserved: reserved,
	}
	r.store(e)
	r.logger.Info("local instance registered", "class", class.Name(), "name", name, "handle", handle)

	if err := r.update(e, nil, nil); err != nil {
		return e, err
	}
	return e, nil
}

// DiscoverRemote records a newly discovered remote instance and asks its
// owner for a full attribute refresh. Discovery of an unknown class or an
// already known handle is logged and ignored.
func (r *Registry) DiscoverRemote(handle rti.ObjectInstanceHandle, classHandle rti.ObjectClassHandle, name string) error {
	class, ok := r.classes.ObjectByHandle(classHandle)
	if !ok {
		r.logger.Warn("discovered instance of unknown class", "handle", handle, "class", classHandle)
		return nil
	}

	e := &Entity{
		name:    name,
		handle:  handle,
		class:   class,
		element: class.Schema().New(),
		origin:  Remote,
	}

	r.mu.Lock()
	if _, exists := r.byHandle[handle]; exists {
		r.mu.Unlock()
		r.logger.Debug("instance already discovered", "handle", handle, "name", name)
		return nil
	}
	r.storeLocked(e)
	r.mu.Unlock()

	r.logger.Info("remote instance discovered", "class", class.Name(), "name", name, "handle", handle)

	if err := r.amb.RequestAttributeValueUpdate(handle, class.SubscribedAttributes(), nil); err != nil {
		return fmt.Errorf("request update for %s: %w", name, err)
	}
	return nil
}

// Reflect decodes received values into the entity's element. The first
// successful reflect of a remote entity makes it Populated and fires the
// "added" listeners. Values for unknown or removed handles are dropped.
// A decode error affects this exchange only.
func (r *Registry) Reflect(handle rti.ObjectInstanceHandle, values rti.AttributeValues) error {
	e, ok := r.Entity(handle)
	if !ok {
		r.logger.Debug("reflect for unknown instance dropped", "handle", handle)
		return nil
	}

	var names []string
	e.mu.Lock()
	err := e.class.Unpack(e.element, values)
	if err == nil {
		names = e.class.AttributeNames(handleKeys(values))
	}
	e.mu.Unlock()

	if err != nil {
		r.logger.Error("decode reflected values", "name", e.name, "error", err)
		return err
	}
	if e.removed.Load() {
		return nil
	}

	if e.origin == Remote && e.populated.CompareAndSwap(false, true) {
		r.logger.Debug("remote instance populated", "name", e.name)
		r.notifyAdded(e)
	}
	r.notifyUpdated(e, names)
	return nil
}

// RemoveRemote forgets a remote entity and fires the "removed" listeners.
// Removing an unknown handle does nothing.
func (r *Registry) RemoveRemote(handle rti.ObjectInstanceHandle) {
	r.mu.Lock()
	e, ok := r.byHandle[handle]
	if !ok {
		r.mu.Unlock()
		return
	}
	if e.origin != Remote {
		r.mu.Unlock()
		r.logger.Warn("remove callback for local instance ignored", "name", e.name)
		return
	}
	r.deleteLocked(e)
	r.mu.Unlock()

	e.removed.Store(true)
	r.logger.Info("remote instance removed", "name", e.name, "handle", handle)
	r.notifyRemoved(e)
}

// DeleteLocal deletes the local instance carrying element. Remote and
// unknown elements are refused with a warning. With release set, a
// reserved name is given back before the deletion request.
func (r *Registry) DeleteLocal(element any, release bool, tag []byte) error {
	e, ok := r.EntityOf(element)
	if !ok {
		r.logger.Warn("delete of unregistered element ignored", "type", fmt.Sprintf("%T", element))
		return nil
	}
	if e.origin != Local {
		r.logger.Warn("cannot delete remote instance", "name", e.name)
		return nil
	}

	if release && e.reserved {
		if err := r.Release(e.name); err != nil {
			r.logger.Warn("release name", "name", e.name, "error", err)
		}
	}
	if err := r.amb.DeleteObjectInstance(e.handle, tag); err != nil {
		return fmt.Errorf("delete %s: %w", e.name, err)
	}

	r.mu.Lock()
	r.deleteLocked(e)
	r.mu.Unlock()

	e.removed.Store(true)
	r.logger.Info("local instance deleted", "name", e.name, "handle", e.handle)
	r.notifyRemoved(e)
	return nil
}

// Update encodes and sends the named attributes of a local element. With no
// names every publishable attribute is sent.
func (r *Registry) Update(element any, tag []byte, names ...string) error {
	e, ok := r.EntityOf(element)
	if !ok {
		r.logger.Warn("update of unregistered element ignored", "type", fmt.Sprintf("%T", element))
		return nil
	}
	if e.origin != Local {
		r.logger.Warn("cannot update remote instance", "name", e.name)
		return nil
	}
	return r.update(e, names, tag)
}

// ProvideUpdate answers a refresh request for a local instance by sending
// the requested attributes.
func (r *Registry) ProvideUpdate(handle rti.ObjectInstanceHandle, attrs []rti.AttributeHandle, tag []byte) error {
	e, ok := r.Entity(handle)
	if !ok || e.origin != Local {
		r.logger.Debug("refresh request for instance not owned", "handle", handle)
		return nil
	}
	names := e.class.AttributeNames(attrs)
	if len(names) == 0 {
		return nil
	}
	return r.update(e, names, tag)
}

func (r *Registry) update(e *Entity, names []string, tag []byte) error {
	e.mu.Lock()
	values, err := e.class.EncodedValues(e.element, names...)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.name, err)
	}
	if len(values) == 0 {
		r.logger.Debug("no values to send", "name", e.name)
		return nil
	}
	if err := r.amb.UpdateAttributeValues(e.handle, values, tag); err != nil {
		return fmt.Errorf("update %s: %w", e.name, err)
	}
	return nil
}

// Entity returns the entity with the given handle.
func (r *Registry) Entity(handle rti.ObjectInstanceHandle) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byHandle[handle]
	return e, ok
}

// EntityOf returns the entity carrying element.
func (r *Registry) EntityOf(element any) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byElement[element]
	return e, ok
}

// EntityByName returns the entity with the given instance name.
func (r *Registry) EntityByName(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// Locals returns the local entities sorted by name.
func (r *Registry) Locals() []*Entity { return r.filter(Local) }

// Remotes returns the remote entities sorted by name.
func (r *Registry) Remotes() []*Entity { return r.filter(Remote) }

// Len returns the number of entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle)
}

func (r *Registry) filter(origin Origin) []*Entity {
	r.mu.RLock()
	out := make([]*Entity, 0, len(r.byHandle))
	for _, e := range r.byHandle {
		if e.origin == origin {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Entity) int { return strings.Compare(a.name, b.name) })
	return out
}

func (r *Registry) store(e *Entity) {
	r.mu.Lock()
	r.storeLocked(e)
	r.mu.Unlock()
}

func (r *Registry) storeLocked(e *Entity) {
	r.byHandle[e.handle] = e
	r.byElement[e.element] = e
	if e.name != "" {
		r.byName[e.name] = e
	}
}

func (r *Registry) deleteLocked(e *Entity) {
	delete(r.byHandle, e.handle)
	delete(r.byElement, e.element)
	if r.byName[e.name] == e {
		delete(r.byName, e.name)
	}
}

func (r *Registry) notifyAdded(e *Entity) {
	r.listenerMu.RLock()
	listeners := slices.Clone(r.onAdded)
	r.listenerMu.RUnlock()
	for _, fn := range listeners {
		_ = r.dispatcher.Submit("instance added", func() { fn(e) })
	}
}

func (r *Registry) notifyRemoved(e *Entity) {
	r.listenerMu.RLock()
	listeners := slices.Clone(r.onRemoved)
	r.listenerMu.RUnlock()
	for _, fn := range listeners {
		_ = r.dispatcher.Submit("instance removed", func() { fn(e) })
	}
}

func (r *Registry) notifyUpdated(e *Entity, names []string) {
	r.listenerMu.RLock()
	listeners := slices.Clone(r.onUpdated)
	r.listenerMu.RUnlock()
	for _, fn := range listeners {
		_ = r.dispatcher.Submit("instance updated", func() { fn(e, names) })
	}
}

func handleKeys(values rti.AttributeValues) []rti.AttributeHandle {
	out := make([]rti.AttributeHandle, 0, len(values))
	for h := range values {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
