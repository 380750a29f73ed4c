package loopback

import (
	"log/slog"
	"sync"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

type fieldKey struct {
	class uint64
	name  string
}

type object struct {
	handle rti.ObjectInstanceHandle
	class  rti.ObjectClassHandle
	name   string
	owner  rti.FederateHandle

	// known holds the federates this instance was discovered by.
	known map[rti.FederateHandle]bool
}

type syncPoint struct {
	label    string
	tag      []byte
	awaiting map[rti.FederateHandle]bool
	achieved map[rti.FederateHandle]bool
}

// Federation is one in-process federation execution. Its zero value is not
// usable; create one with NewFederation.
type Federation struct {
	name   string
	logger *slog.Logger

	mu         sync.Mutex
	nextHandle uint64

	objectClasses      map[string]rti.ObjectClassHandle
	attributes         map[fieldKey]rti.AttributeHandle
	interactionClasses map[string]rti.InteractionClassHandle
	parameters         map[fieldKey]rti.ParameterHandle

	members   map[rti.FederateHandle]*Ambassador
	objects   map[rti.ObjectInstanceHandle]*object
	reserved  map[string]rti.FederateHandle
	usedNames map[string]bool
	points    map[string]*syncPoint
}

// NewFederation creates an empty federation execution called name.
func NewFederation(name string, logger *slog.Logger) *Federation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Federation{
		name:               name,
		logger:             logger.With("component", "loopback", "federation", name),
		objectClasses:      make(map[string]rti.ObjectClassHandle),
		attributes:         make(map[fieldKey]rti.AttributeHandle),
		interactionClasses: make(map[string]rti.InteractionClassHandle),
		parameters:         make(map[fieldKey]rti.ParameterHandle),
		members:            make(map[rti.FederateHandle]*Ambassador),
		objects:            make(map[rti.ObjectInstanceHandle]*object),
		reserved:           make(map[string]rti.FederateHandle),
		usedNames:          make(map[string]bool),
		points:             make(map[string]*syncPoint),
	}
}

// Name returns the federation execution name.
func (f *Federation) Name() string { return f.name }

// NewAmbassador returns an unjoined ambassador connected to f.
func (f *Federation) NewAmbassador() *Ambassador {
	return &Ambassador{fed: f}
}

// Members returns the names of the joined federates.
func (f *Federation) Members() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, m.name)
	}
	return out
}

func (f *Federation) allocLocked() uint64 {
	f.nextHandle++
	return f.nextHandle
}

// others returns every joined member except self.
func (f *Federation) othersLocked(self rti.FederateHandle) []*Ambassador {
	out := make([]*Ambassador, 0, len(f.members))
	for h, m := range f.members {
		if h != self {
			out = append(out, m)
		}
	}
	return out
}

// discoverLocked announces obj to m if m subscribes to its class and has
// not seen it yet.
func (f *Federation) discoverLocked(obj *object, m *Ambassador) bool {
	if m.handle == obj.owner {
		return false
	}
	if _, ok := m.subObjects[obj.class]; !ok {
		return false
	}
	if !obj.known[m.handle] {
		obj.known[m.handle] = true
		h, class, name, cb := obj.handle, obj.class, obj.name, m.cb
		m.queue.push(func() { cb.DiscoverObjectInstance(h, class, name) })
	}
	return true
}

// removeObjectLocked deletes obj and tells every federate that knew it.
func (f *Federation) removeObjectLocked(obj *object, tag []byte) {
	delete(f.objects, obj.handle)
	delete(f.usedNames, obj.name)
	for fh := range obj.known {
		m, ok := f.members[fh]
		if !ok {
			continue
		}
		h, cb := obj.handle, m.cb
		m.queue.push(func() { cb.RemoveObjectInstance(h, tag) })
	}
}

// galtLocked returns the greatest time m may be granted, or ok=false when
// no other federate regulates.
func (f *Federation) galtLocked(m *Ambassador) (galt rti.Time, ok bool) {
	for h, o := range f.members {
		if h == m.handle || !o.regulating {
			continue
		}
		promise := o.time
		if o.pending != nil {
			promise = *o.pending
		}
		promise += o.lookahead
		if !ok || promise < galt {
			galt, ok = promise, true
		}
	}
	return galt, ok
}

// grantLocked grants every pending advance that is now safe. A grant can
// raise another federate's GALT, so it repeats until nothing changes.
func (f *Federation) grantLocked() {
	for changed := true; changed; {
		changed = false
		for _, m := range f.members {
			if m.pending == nil {
				continue
			}
			t := *m.pending
			if m.constrained {
				if galt, ok := f.galtLocked(m); ok && t > galt {
					continue
				}
			}
			m.time = t
			m.pending = nil
			changed = true
			cb := m.cb
			m.queue.push(func() { cb.TimeAdvanceGrant(t) })
		}
	}
}

// checkPointLocked synchronizes p if every awaiting federate achieved it.
func (f *Federation) checkPointLocked(p *syncPoint) {
	for h := range p.awaiting {
		if !p.achieved[h] {
			return
		}
	}
	delete(f.points, p.label)
	for h := range p.awaiting {
		m, ok := f.members[h]
		if !ok {
			continue
		}
		label, cb := p.label, m.cb
		m.queue.push(func() { cb.FederationSynchronized(label) })
	}
	f.logger.Debug("federation synchronized", "label", p.label)
}
