package declaration

import (
	"fmt"
	"log/slog"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// ObjectClass is the runtime-side model of one object class binding.
//
// Handles are resolved once, on the first Publish or Subscribe, and are
// immutable afterwards. Publish and Subscribe are independent; repeating a
// transition that is already in effect logs a warning and returns nil.
type ObjectClass struct {
	core[rti.ObjectClassHandle, rti.AttributeHandle]
	amb rti.Ambassador
}

// NewObjectClass creates the model for an object class schema.
func NewObjectClass(schema model.Schema, amb rti.Ambassador, logger *slog.Logger) (*ObjectClass, error) {
	if schema.Kind() != model.ObjectClass {
		return nil, fmt.Errorf("%w: %s is an %s class", ErrWrongKind, schema.Name(), schema.Kind())
	}
	if logger == nil {
		logger = slog.Default()
	}

	oc := &ObjectClass{amb: amb}
	oc.schema = schema
	oc.logger = logger.With("component", "declaration", "class", schema.Name())
	oc.resolver = oc.resolveHandles
	return oc, nil
}

func (oc *ObjectClass) resolveHandles() (rti.ObjectClassHandle, map[string]rti.AttributeHandle, error) {
	h, err := oc.amb.GetObjectClassHandle(oc.schema.Name())
	if err != nil {
		return 0, nil, err
	}
	names := oc.schema.FieldNames()
	fields := make(map[string]rti.AttributeHandle, len(names))
	for _, name := range names {
		ah, err := oc.amb.GetAttributeHandle(h, name)
		if err != nil {
			return 0, nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		fields[name] = ah
	}
	return h, fields, nil
}

// Publish declares every publishable attribute to the runtime.
func (oc *ObjectClass) Publish() error {
	return oc.publish(oc.amb.PublishObjectClassAttributes)
}

// Unpublish withdraws the publication.
func (oc *ObjectClass) Unpublish() error {
	return oc.unpublish(oc.amb.UnpublishObjectClass)
}

// Subscribe declares interest in every subscribable attribute.
func (oc *ObjectClass) Subscribe() error {
	return oc.subscribe(oc.amb.SubscribeObjectClassAttributes)
}

// Unsubscribe withdraws the subscription.
func (oc *ObjectClass) Unsubscribe() error {
	return oc.unsubscribe(oc.amb.UnsubscribeObjectClass)
}

// EncodedValues encodes the named attributes of element keyed by attribute
// handle. With no names every publishable attribute is encoded. Null fields
// are omitted.
//
// It panics with ErrNotConnected if the class has not been resolved.
func (oc *ObjectClass) EncodedValues(element any, names ...string) (rti.AttributeValues, error) {
	if len(names) == 0 {
		names = nil
	}
	values, err := oc.encode(element, names)
	if err != nil {
		return nil, err
	}
	return rti.AttributeValues(values), nil
}

// Unpack decodes received attribute values into element. Unknown handles are
// skipped; a value that fails to decode leaves element unchanged.
//
// It panics with ErrNotConnected if the class has not been resolved.
func (oc *ObjectClass) Unpack(element any, values rti.AttributeValues) error {
	return oc.decode(element, values)
}

// AttributeHandle returns the handle of the named attribute.
func (oc *ObjectClass) AttributeHandle(name string) (rti.AttributeHandle, bool) {
	if !oc.resolved.Load() {
		return 0, false
	}
	h, ok := oc.byName[name]
	return h, ok
}

// AttributeNames maps handles to wire names, dropping unknown handles.
func (oc *ObjectClass) AttributeNames(handles []rti.AttributeHandle) []string {
	return oc.names(handles)
}

// SubscribedAttributes returns the handles declared on Subscribe.
func (oc *ObjectClass) SubscribedAttributes() []rti.AttributeHandle {
	oc.mustBeResolved()
	out := make([]rti.AttributeHandle, len(oc.subHandles))
	copy(out, oc.subHandles)
	return out
}

// PublishedAttributes returns the handles declared on Publish.
func (oc *ObjectClass) PublishedAttributes() []rti.AttributeHandle {
	oc.mustBeResolved()
	out := make([]rti.AttributeHandle, len(oc.pubHandles))
	copy(out, oc.pubHandles)
	return out
}
