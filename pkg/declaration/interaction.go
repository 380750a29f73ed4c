package declaration

import (
	"fmt"
	"log/slog"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// InteractionClass is the runtime-side model of one interaction class
// binding. Interactions are declared as a whole; the parameter sets only
// drive encoding.
type InteractionClass struct {
	core[rti.InteractionClassHandle, rti.ParameterHandle]
	amb rti.Ambassador
}

// NewInteractionClass creates the model for an interaction class schema.
func NewInteractionClass(schema model.Schema, amb rti.Ambassador, logger *slog.Logger) (*InteractionClass, error) {
	if schema.Kind() != model.InteractionClass {
		return nil, fmt.Errorf("%w: %s is an %s class", ErrWrongKind, schema.Name(), schema.Kind())
	}
	if logger == nil {
		logger = slog.Default()
	}

	ic := &InteractionClass{amb: amb}
	ic.schema = schema
	ic.logger = logger.With("component", "declaration", "class", schema.Name())
	ic.resolver = ic.resolveHandles
	ic.fieldless = true
	return ic, nil
}

func (ic *InteractionClass) resolveHandles() (rti.InteractionClassHandle, map[string]rti.ParameterHandle, error) {
	h, err := ic.amb.GetInteractionClassHandle(ic.schema.Name())
	if err != nil {
		return 0, nil, err
	}
	names := ic.schema.FieldNames()
	fields := make(map[string]rti.ParameterHandle, len(names))
	for _, name := range names {
		ph, err := ic.amb.GetParameterHandle(h, name)
		if err != nil {
			return 0, nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		fields[name] = ph
	}
	return h, fields, nil
}

// Publish declares the interaction class.
func (ic *InteractionClass) Publish() error {
	return ic.publish(func(h rti.InteractionClassHandle, _ []rti.ParameterHandle) error {
		return ic.amb.PublishInteractionClass(h)
	})
}

// Unpublish withdraws the publication.
func (ic *InteractionClass) Unpublish() error {
	return ic.unpublish(ic.amb.UnpublishInteractionClass)
}

// Subscribe declares interest in the interaction class.
func (ic *InteractionClass) Subscribe() error {
	return ic.subscribe(func(h rti.InteractionClassHandle, _ []rti.ParameterHandle) error {
		return ic.amb.SubscribeInteractionClass(h)
	})
}

// Unsubscribe withdraws the subscription.
func (ic *InteractionClass) Unsubscribe() error {
	return ic.unsubscribe(ic.amb.UnsubscribeInteractionClass)
}

// EncodedValues encodes every non-null parameter of element.
//
// It panics with ErrNotConnected if the class has not been resolved.
func (ic *InteractionClass) EncodedValues(element any) (rti.ParameterValues, error) {
	values, err := ic.encode(element, ic.schema.FieldNames())
	if err != nil {
		return nil, err
	}
	return rti.ParameterValues(values), nil
}

// Unpack decodes received parameter values into element.
//
// It panics with ErrNotConnected if the class has not been resolved.
func (ic *InteractionClass) Unpack(element any, values rti.ParameterValues) error {
	return ic.decode(element, values)
}

// Send encodes element and sends it. Sending an unpublished interaction
// logs a warning and does nothing.
func (ic *InteractionClass) Send(element any, tag []byte) error {
	if !ic.flags.IsPublished() {
		ic.logger.Warn("interaction not published, send skipped")
		return nil
	}
	values, err := ic.EncodedValues(element)
	if err != nil {
		return err
	}
	if err := ic.amb.SendInteraction(ic.handle, values, tag); err != nil {
		return fmt.Errorf("send %s: %w", ic.schema.Name(), err)
	}
	return nil
}
