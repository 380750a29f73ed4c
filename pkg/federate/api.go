package federate

import (
	"context"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/declaration"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/instance"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
)

// PublishObject publishes the publishable attributes of schema.
func (f *Federate) PublishObject(schema model.Schema) (*declaration.ObjectClass, error) {
	oc, err := f.classes.Object(schema)
	if err != nil {
		return nil, err
	}
	return oc, oc.Publish()
}

// SubscribeObject subscribes to the subscribable attributes of schema.
func (f *Federate) SubscribeObject(schema model.Schema) (*declaration.ObjectClass, error) {
	oc, err := f.classes.Object(schema)
	if err != nil {
		return nil, err
	}
	return oc, oc.Subscribe()
}

// PublishInteraction publishes the interaction class of schema.
func (f *Federate) PublishInteraction(schema model.Schema) (*declaration.InteractionClass, error) {
	ic, err := f.classes.Interaction(schema)
	if err != nil {
		return nil, err
	}
	return ic, ic.Publish()
}

// SubscribeInteraction subscribes to the interaction class of schema.
func (f *Federate) SubscribeInteraction(schema model.Schema) (*declaration.InteractionClass, error) {
	ic, err := f.classes.Interaction(schema)
	if err != nil {
		return nil, err
	}
	return ic, ic.Subscribe()
}

// Register creates a local instance of element's class. The class must be
// published first. See instance.Registry.CreateLocal for name handling.
func (f *Federate) Register(ctx context.Context, schema model.Schema, element any, name string) (*instance.Entity, error) {
	oc, err := f.classes.Object(schema)
	if err != nil {
		return nil, err
	}
	return f.registry.CreateLocal(ctx, oc, element, name)
}

// Update sends the named attributes of a registered element, or every
// publishable attribute when names is empty.
func (f *Federate) Update(element any, tag []byte, names ...string) error {
	return f.registry.Update(element, tag, names...)
}

// Delete deletes a registered element, releasing its reserved name.
func (f *Federate) Delete(element any, tag []byte) error {
	return f.registry.DeleteLocal(element, true, tag)
}

// Send sends element as an interaction of schema's class.
func (f *Federate) Send(schema model.Schema, element any, tag []byte) error {
	ic, err := f.classes.Interaction(schema)
	if err != nil {
		return err
	}
	return ic.Send(element, tag)
}

// OnReceived registers a handler for received interactions. Handlers run
// on the dispatcher, never on the runtime callback goroutine.
func (f *Federate) OnReceived(fn ReceivedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, fn)
}

// OnDiscovered registers a handler for remote entities that received their
// first values.
func (f *Federate) OnDiscovered(fn func(*instance.Entity)) { f.registry.OnAdded(fn) }

// OnRemoved registers a handler for entities leaving the federation.
func (f *Federate) OnRemoved(fn func(*instance.Entity)) { f.registry.OnRemoved(fn) }

// OnReflected registers a handler for reflected attribute values.
func (f *Federate) OnReflected(fn func(*instance.Entity, []string)) { f.registry.OnUpdated(fn) }
