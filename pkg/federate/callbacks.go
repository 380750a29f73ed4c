package federate

import (
	"slices"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Federate receives every runtime callback and routes it to the owning
// component.
var _ rti.Callbacks = (*Federate)(nil)

func (f *Federate) traceIn(cat log.Category, call log.CallEvent) {
	f.tracer.Call(log.DirectionIn, cat, call)
}

func (f *Federate) ObjectInstanceNameReservationSucceeded(name string) {
	f.traceIn(log.CategoryObject, log.CallEvent{Name: "ObjectInstanceNameReservationSucceeded", Label: name})
	f.registry.NameReservationSucceeded(name)
}

func (f *Federate) ObjectInstanceNameReservationFailed(name string) {
	f.traceIn(log.CategoryObject, log.CallEvent{Name: "ObjectInstanceNameReservationFailed", Label: name})
	f.registry.NameReservationFailed(name)
}

func (f *Federate) DiscoverObjectInstance(instance rti.ObjectInstanceHandle, class rti.ObjectClassHandle, name string) {
	f.traceIn(log.CategoryObject, log.CallEvent{
		Name: "DiscoverObjectInstance", Class: uint64(class), Instance: uint64(instance), Label: name,
	})
	if err := f.registry.DiscoverRemote(instance, class, name); err != nil {
		f.logger.Warn("discover failed", "instance", name, "error", err)
		f.tracer.Error("DiscoverObjectInstance", err)
	}
}

func (f *Federate) ReflectAttributeValues(instance rti.ObjectInstanceHandle, values rti.AttributeValues, tag []byte) {
	f.traceIn(log.CategoryObject, log.CallEvent{
		Name: "ReflectAttributeValues", Instance: uint64(instance), Values: sizes(values), Tag: tag,
	})
	if err := f.registry.Reflect(instance, values); err != nil {
		f.tracer.Error("ReflectAttributeValues", err)
	}
}

func (f *Federate) RemoveObjectInstance(instance rti.ObjectInstanceHandle, tag []byte) {
	f.traceIn(log.CategoryObject, log.CallEvent{Name: "RemoveObjectInstance", Instance: uint64(instance), Tag: tag})
	f.registry.RemoveRemote(instance)
}

func (f *Federate) ProvideAttributeValueUpdate(instance rti.ObjectInstanceHandle, attrs []rti.AttributeHandle, tag []byte) {
	f.traceIn(log.CategoryObject, log.CallEvent{Name: "ProvideAttributeValueUpdate", Instance: uint64(instance), Tag: tag})
	if err := f.registry.ProvideUpdate(instance, attrs, tag); err != nil {
		f.logger.Warn("provide attribute update failed", "instance", instance, "error", err)
		f.tracer.Error("ProvideAttributeValueUpdate", err)
	}
}

func (f *Federate) ReceiveInteraction(class rti.InteractionClassHandle, values rti.ParameterValues, tag []byte) {
	f.traceIn(log.CategoryInteraction, log.CallEvent{
		Name: "ReceiveInteraction", Class: uint64(class), Values: sizes(values), Tag: tag,
	})

	ic, ok := f.classes.InteractionByHandle(class)
	if !ok || !ic.IsSubscribed() {
		f.logger.Debug("interaction of unknown class ignored", "class", class)
		return
	}
	element := ic.Schema().New()
	if err := ic.Unpack(element, values); err != nil {
		f.logger.Warn("interaction decode failed", "class", ic.Name(), "error", err)
		f.tracer.Error("ReceiveInteraction", err)
		return
	}

	f.mu.RLock()
	handlers := slices.Clone(f.received)
	f.mu.RUnlock()
	for _, fn := range handlers {
		_ = f.dispatcher.Submit("interaction received", func() { fn(ic.Name(), element, tag) })
	}
}

func (f *Federate) TimeRegulationEnabled(t rti.Time) {
	f.traceIn(log.CategoryTime, log.CallEvent{Name: "TimeRegulationEnabled", Time: timeRef(t)})
	f.timing.RegulationEnabled(t)
}

func (f *Federate) TimeConstrainedEnabled(t rti.Time) {
	f.traceIn(log.CategoryTime, log.CallEvent{Name: "TimeConstrainedEnabled", Time: timeRef(t)})
	f.timing.ConstrainedEnabled(t)
}

func (f *Federate) TimeAdvanceGrant(t rti.Time) {
	f.traceIn(log.CategoryTime, log.CallEvent{Name: "TimeAdvanceGrant", Time: timeRef(t)})
	f.timing.AdvanceGranted(t)
}

func (f *Federate) SynchronizationPointRegistrationSucceeded(label string) {
	f.traceIn(log.CategorySync, log.CallEvent{Name: "SynchronizationPointRegistrationSucceeded", Label: label})
	f.points.RegistrationSucceeded(label)
}

func (f *Federate) SynchronizationPointRegistrationFailed(label, reason string) {
	f.traceIn(log.CategorySync, log.CallEvent{Name: "SynchronizationPointRegistrationFailed", Label: label, Result: reason})
	f.points.RegistrationFailed(label, reason)
}

func (f *Federate) AnnounceSynchronizationPoint(label string, tag []byte) {
	f.traceIn(log.CategorySync, log.CallEvent{Name: "AnnounceSynchronizationPoint", Label: label, Tag: tag})
	f.points.Announced(label, tag)
}

func (f *Federate) FederationSynchronized(label string) {
	f.traceIn(log.CategorySync, log.CallEvent{Name: "FederationSynchronized", Label: label})
	f.points.Synchronized(label)
}
