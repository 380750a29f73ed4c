package loopback

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/poll"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Ambassador is one federate's connection to a Federation. All state lives
// behind the federation lock.
type Ambassador struct {
	fed *Federation

	// Set on join.
	joined bool
	handle rti.FederateHandle
	name   string
	kind   string
	cb     rti.Callbacks
	queue  *queue

	pubObjects      map[rti.ObjectClassHandle]map[rti.AttributeHandle]bool
	subObjects      map[rti.ObjectClassHandle]map[rti.AttributeHandle]bool
	pubInteractions map[rti.InteractionClassHandle]bool
	subInteractions map[rti.InteractionClassHandle]bool

	regulating  bool
	constrained bool
	lookahead   rti.Time
	time        rti.Time
	pending     *rti.Time
}

var _ rti.Ambassador = (*Ambassador)(nil)

// Join joins the federation. federation must match the Federation's name.
func (a *Ambassador) Join(ctx context.Context, federateName, federateType, federation string, cb rti.Callbacks) (rti.FederateHandle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f := a.fed
	f.mu.Lock()
	defer f.mu.Unlock()

	if a.joined {
		return 0, rti.ErrAlreadyJoined
	}
	if federation != f.name {
		return 0, fmt.Errorf("%w: %s", rti.ErrFederationNotFound, federation)
	}
	for _, m := range f.members {
		if m.name == federateName {
			return 0, fmt.Errorf("%w: %s", rti.ErrFederateNameInUse, federateName)
		}
	}

	a.joined = true
	a.handle = rti.FederateHandle(f.allocLocked())
	a.name = federateName
	a.kind = federateType
	a.cb = cb
	a.queue = newQueue()
	a.pubObjects = make(map[rti.ObjectClassHandle]map[rti.AttributeHandle]bool)
	a.subObjects = make(map[rti.ObjectClassHandle]map[rti.AttributeHandle]bool)
	a.pubInteractions = make(map[rti.InteractionClassHandle]bool)
	a.subInteractions = make(map[rti.InteractionClassHandle]bool)
	a.regulating, a.constrained = false, false
	a.time, a.pending, a.lookahead = 0, nil, 0
	f.members[a.handle] = a

	// Points still being synchronized include the newcomer.
	for _, p := range f.points {
		p.awaiting[a.handle] = true
		label, tag := p.label, p.tag
		a.queue.push(func() { cb.AnnounceSynchronizationPoint(label, tag) })
	}

	f.logger.Info("federate joined", "federate", federateName, "handle", a.handle)
	return a.handle, nil
}

// Resign leaves the federation, deleting every owned instance.
func (a *Ambassador) Resign() error {
	f := a.fed
	f.mu.Lock()
	defer f.mu.Unlock()

	if !a.joined {
		return rti.ErrNotJoined
	}
	for _, obj := range f.objects {
		if obj.owner == a.handle {
			f.removeObjectLocked(obj, nil)
		}
	}
	for name, owner := range f.reserved {
		if owner == a.handle {
			delete(f.reserved, name)
		}
	}
	delete(f.members, a.handle)
	a.joined = false
	a.queue.close()

	for _, p := range f.points {
		delete(p.awaiting, a.handle)
		delete(p.achieved, a.handle)
		f.checkPointLocked(p)
	}
	f.grantLocked()

	f.logger.Info("federate resigned", "federate", a.name)
	return nil
}

// Handle returns the federate handle assigned on join.
func (a *Ambassador) Handle() rti.FederateHandle {
	a.fed.mu.Lock()
	defer a.fed.mu.Unlock()
	return a.handle
}

// Flush waits until every queued callback has been delivered.
func (a *Ambassador) Flush(ctx context.Context, timeout time.Duration) bool {
	a.fed.mu.Lock()
	q := a.queue
	a.fed.mu.Unlock()
	if q == nil {
		return true
	}
	return poll.Until(ctx, time.Millisecond, timeout, q.idle)
}

// Done is closed once the callback goroutine exits after Resign.
func (a *Ambassador) Done() <-chan struct{} {
	a.fed.mu.Lock()
	defer a.fed.mu.Unlock()
	if a.queue == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.queue.done
}

func (a *Ambassador) lock() (*Federation, error) {
	f := a.fed
	f.mu.Lock()
	if !a.joined {
		f.mu.Unlock()
		return nil, rti.ErrNotJoined
	}
	return f, nil
}

// Handle resolution.

func (a *Ambassador) GetObjectClassHandle(name string) (rti.ObjectClassHandle, error) {
	f, err := a.lock()
	if err != nil {
		return 0, err
	}
	defer f.mu.Unlock()
	if name == "" {
		return 0, rti.ErrNameNotFound
	}
	h, ok := f.objectClasses[name]
	if !ok {
		h = rti.ObjectClassHandle(f.allocLocked())
		f.objectClasses[name] = h
	}
	return h, nil
}

func (a *Ambassador) GetAttributeHandle(class rti.ObjectClassHandle, name string) (rti.AttributeHandle, error) {
	f, err := a.lock()
	if err != nil {
		return 0, err
	}
	defer f.mu.Unlock()
	if !f.knownObjectClassLocked(class) {
		return 0, fmt.Errorf("%w: object class %d", rti.ErrInvalidHandle, class)
	}
	key := fieldKey{uint64(class), name}
	h, ok := f.attributes[key]
	if !ok {
		h = rti.AttributeHandle(f.allocLocked())
		f.attributes[key] = h
	}
	return h, nil
}

func (a *Ambassador) GetInteractionClassHandle(name string) (rti.InteractionClassHandle, error) {
	f, err := a.lock()
	if err != nil {
		return 0, err
	}
	defer f.mu.Unlock()
	if name == "" {
		return 0, rti.ErrNameNotFound
	}
	h, ok := f.interactionClasses[name]
	if !ok {
		h = rti.InteractionClassHandle(f.allocLocked())
		f.interactionClasses[name] = h
	}
	return h, nil
}

func (a *Ambassador) GetParameterHandle(class rti.InteractionClassHandle, name string) (rti.ParameterHandle, error) {
	f, err := a.lock()
	if err != nil {
		return 0, err
	}
	defer f.mu.Unlock()
	if !f.knownInteractionClassLocked(class) {
		return 0, fmt.Errorf("%w: interaction class %d", rti.ErrInvalidHandle, class)
	}
	key := fieldKey{uint64(class), name}
	h, ok := f.parameters[key]
	if !ok {
		h = rti.ParameterHandle(f.allocLocked())
		f.parameters[key] = h
	}
	return h, nil
}

func (a *Ambassador) GetObjectInstanceName(instance rti.ObjectInstanceHandle) (string, error) {
	f, err := a.lock()
	if err != nil {
		return "", err
	}
	defer f.mu.Unlock()
	obj, ok := f.objects[instance]
	if !ok {
		return "", fmt.Errorf("%w: instance %d", rti.ErrInvalidHandle, instance)
	}
	return obj.name, nil
}

func (f *Federation) knownObjectClassLocked(h rti.ObjectClassHandle) bool {
	for _, c := range f.objectClasses {
		if c == h {
			return true
		}
	}
	return false
}

func (f *Federation) knownInteractionClassLocked(h rti.InteractionClassHandle) bool {
	for _, c := range f.interactionClasses {
		if c == h {
			return true
		}
	}
	return false
}

// Declarations.

func (a *Ambassador) PublishObjectClassAttributes(class rti.ObjectClassHandle, attrs []rti.AttributeHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	if !f.knownObjectClassLocked(class) {
		return fmt.Errorf("%w: object class %d", rti.ErrInvalidHandle, class)
	}
	a.pubObjects[class] = toSet(attrs)
	return nil
}

func (a *Ambassador) UnpublishObjectClass(class rti.ObjectClassHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	delete(a.pubObjects, class)
	return nil
}

func (a *Ambassador) SubscribeObjectClassAttributes(class rti.ObjectClassHandle, attrs []rti.AttributeHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	if !f.knownObjectClassLocked(class) {
		return fmt.Errorf("%w: object class %d", rti.ErrInvalidHandle, class)
	}
	a.subObjects[class] = toSet(attrs)
	for _, obj := range f.objects {
		if obj.class == class {
			f.discoverLocked(obj, a)
		}
	}
	return nil
}

func (a *Ambassador) UnsubscribeObjectClass(class rti.ObjectClassHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	delete(a.subObjects, class)
	return nil
}

func (a *Ambassador) PublishInteractionClass(class rti.InteractionClassHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	if !f.knownInteractionClassLocked(class) {
		return fmt.Errorf("%w: interaction class %d", rti.ErrInvalidHandle, class)
	}
	a.pubInteractions[class] = true
	return nil
}

func (a *Ambassador) UnpublishInteractionClass(class rti.InteractionClassHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	delete(a.pubInteractions, class)
	return nil
}

func (a *Ambassador) SubscribeInteractionClass(class rti.InteractionClassHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	if !f.knownInteractionClassLocked(class) {
		return fmt.Errorf("%w: interaction class %d", rti.ErrInvalidHandle, class)
	}
	a.subInteractions[class] = true
	return nil
}

func (a *Ambassador) UnsubscribeInteractionClass(class rti.InteractionClassHandle) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	delete(a.subInteractions, class)
	return nil
}

// Instance names.

func (a *Ambassador) ReserveObjectInstanceName(name string) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	cb := a.cb
	if _, taken := f.reserved[name]; taken || f.usedNames[name] || name == "" {
		a.queue.push(func() { cb.ObjectInstanceNameReservationFailed(name) })
		return nil
	}
	f.reserved[name] = a.handle
	a.queue.push(func() { cb.ObjectInstanceNameReservationSucceeded(name) })
	return nil
}

func (a *Ambassador) ReleaseObjectInstanceName(name string) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	if f.reserved[name] != a.handle {
		return fmt.Errorf("%w: %s", rti.ErrNameNotReserved, name)
	}
	delete(f.reserved, name)
	return nil
}

// Instances.

func (a *Ambassador) RegisterObjectInstance(class rti.ObjectClassHandle) (rti.ObjectInstanceHandle, error) {
	f, err := a.lock()
	if err != nil {
		return 0, err
	}
	defer f.mu.Unlock()

	name := "HLAobject-" + uuid.NewString()
	return a.registerLocked(f, class, name)
}

func (a *Ambassador) RegisterObjectInstanceWithName(class rti.ObjectClassHandle, name string) (rti.ObjectInstanceHandle, error) {
	f, err := a.lock()
	if err != nil {
		return 0, err
	}
	defer f.mu.Unlock()

	if owner, ok := f.reserved[name]; !ok || owner != a.handle {
		return 0, fmt.Errorf("%w: %s", rti.ErrNameNotReserved, name)
	}
	if f.usedNames[name] {
		return 0, fmt.Errorf("%w: %s already registered", rti.ErrNameNotReserved, name)
	}
	return a.registerLocked(f, class, name)
}

func (a *Ambassador) registerLocked(f *Federation, class rti.ObjectClassHandle, name string) (rti.ObjectInstanceHandle, error) {
	if _, ok := a.pubObjects[class]; !ok {
		return 0, fmt.Errorf("%w: object class %d", rti.ErrNotPublished, class)
	}
	obj := &object{
		handle: rti.ObjectInstanceHandle(f.allocLocked()),
		class:  class,
		name:   name,
		owner:  a.handle,
		known:  make(map[rti.FederateHandle]bool),
	}
	f.objects[obj.handle] = obj
	f.usedNames[name] = true

	for _, m := range f.othersLocked(a.handle) {
		f.discoverLocked(obj, m)
	}
	return obj.handle, nil
}

func (a *Ambassador) DeleteObjectInstance(instance rti.ObjectInstanceHandle, tag []byte) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	obj, ok := f.objects[instance]
	if !ok {
		return fmt.Errorf("%w: instance %d", rti.ErrInvalidHandle, instance)
	}
	if obj.owner != a.handle {
		return fmt.Errorf("%w: instance %d", rti.ErrNotOwned, instance)
	}
	f.removeObjectLocked(obj, tag)
	return nil
}

func (a *Ambassador) RequestAttributeValueUpdate(instance rti.ObjectInstanceHandle, attrs []rti.AttributeHandle, tag []byte) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	obj, ok := f.objects[instance]
	if !ok {
		return fmt.Errorf("%w: instance %d", rti.ErrInvalidHandle, instance)
	}
	owner, ok := f.members[obj.owner]
	if !ok {
		return nil
	}
	published := owner.pubObjects[obj.class]
	wanted := make([]rti.AttributeHandle, 0, len(attrs))
	for _, h := range attrs {
		if published[h] {
			wanted = append(wanted, h)
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	cb := owner.cb
	owner.queue.push(func() { cb.ProvideAttributeValueUpdate(instance, wanted, tag) })
	return nil
}

func (a *Ambassador) UpdateAttributeValues(instance rti.ObjectInstanceHandle, values rti.AttributeValues, tag []byte) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	obj, ok := f.objects[instance]
	if !ok {
		return fmt.Errorf("%w: instance %d", rti.ErrInvalidHandle, instance)
	}
	if obj.owner != a.handle {
		return fmt.Errorf("%w: instance %d", rti.ErrNotOwned, instance)
	}

	for _, m := range f.othersLocked(a.handle) {
		if !f.discoverLocked(obj, m) {
			continue
		}
		sub := m.subObjects[obj.class]
		filtered := make(rti.AttributeValues, len(values))
		for h, v := range values {
			if sub[h] {
				filtered[h] = v
			}
		}
		if len(filtered) == 0 {
			continue
		}
		cb := m.cb
		m.queue.push(func() { cb.ReflectAttributeValues(instance, filtered, tag) })
	}
	return nil
}

func (a *Ambassador) SendInteraction(class rti.InteractionClassHandle, values rti.ParameterValues, tag []byte) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	if !a.pubInteractions[class] {
		return fmt.Errorf("%w: interaction class %d", rti.ErrNotPublished, class)
	}
	for _, m := range f.othersLocked(a.handle) {
		if !m.subInteractions[class] {
			continue
		}
		cb, copied := m.cb, maps.Clone(values)
		m.queue.push(func() { cb.ReceiveInteraction(class, copied, tag) })
	}
	return nil
}

// Time management.

func (a *Ambassador) EnableTimeRegulation(lookahead rti.Time) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	if a.regulating {
		return rti.ErrRegulationPending
	}
	if lookahead < 0 {
		return fmt.Errorf("%w: negative lookahead", rti.ErrInvalidTime)
	}
	a.regulating = true
	a.lookahead = lookahead
	t, cb := a.time, a.cb
	a.queue.push(func() { cb.TimeRegulationEnabled(t) })
	return nil
}

func (a *Ambassador) DisableTimeRegulation() error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	a.regulating = false
	f.grantLocked()
	return nil
}

func (a *Ambassador) EnableTimeConstrained() error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	if a.constrained {
		return rti.ErrConstrainedPending
	}
	a.constrained = true
	t, cb := a.time, a.cb
	a.queue.push(func() { cb.TimeConstrainedEnabled(t) })
	return nil
}

func (a *Ambassador) DisableTimeConstrained() error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()
	a.constrained = false
	f.grantLocked()
	return nil
}

func (a *Ambassador) TimeAdvanceRequest(t rti.Time) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	if a.pending != nil {
		return rti.ErrAdvancePending
	}
	if t < a.time {
		return fmt.Errorf("%w: %s before %s", rti.ErrInvalidTime, t, a.time)
	}
	a.pending = &t
	f.grantLocked()
	return nil
}

func (a *Ambassador) QueryGALT() (rti.Time, bool, error) {
	f, err := a.lock()
	if err != nil {
		return 0, false, err
	}
	defer f.mu.Unlock()
	galt, ok := f.galtLocked(a)
	return galt, ok, nil
}

// Synchronization points.

func (a *Ambassador) RegisterSynchronizationPoint(label string, tag []byte) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	cb := a.cb
	if _, exists := f.points[label]; exists || label == "" {
		a.queue.push(func() { cb.SynchronizationPointRegistrationFailed(label, "label not unique") })
		return nil
	}

	p := &syncPoint{
		label:    label,
		tag:      tag,
		awaiting: make(map[rti.FederateHandle]bool, len(f.members)),
		achieved: make(map[rti.FederateHandle]bool, len(f.members)),
	}
	f.points[label] = p
	a.queue.push(func() { cb.SynchronizationPointRegistrationSucceeded(label) })

	for h, m := range f.members {
		p.awaiting[h] = true
		mcb := m.cb
		m.queue.push(func() { mcb.AnnounceSynchronizationPoint(label, tag) })
	}
	return nil
}

func (a *Ambassador) SynchronizationPointAchieved(label string) error {
	f, err := a.lock()
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	p, ok := f.points[label]
	if !ok || !p.awaiting[a.handle] {
		return fmt.Errorf("%w: %s", rti.ErrSyncPointNotAnnounced, label)
	}
	p.achieved[a.handle] = true
	f.checkPointLocked(p)
	return nil
}

func toSet[H comparable](hs []H) map[H]bool {
	out := make(map[H]bool, len(hs))
	for _, h := range hs {
		out[h] = true
	}
	return out
}
