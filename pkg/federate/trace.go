package federate

import (
	"context"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// tracingAmbassador records requests that change federation state.
// Handle lookups pass straight through.
type tracingAmbassador struct {
	rti.Ambassador
	tracer *log.Tracer
}

func (t *tracingAmbassador) record(cat log.Category, call log.CallEvent, start time.Time, err error) {
	d := time.Since(start)
	call.Duration = &d
	if err != nil {
		call.Result = err.Error()
	}
	t.tracer.Call(log.DirectionOut, cat, call)
}

func timeRef(t rti.Time) *int64 {
	v := int64(t)
	return &v
}

func sizes[H ~uint64](values map[H][]byte) map[uint64]int {
	out := make(map[uint64]int, len(values))
	for h, v := range values {
		out[uint64(h)] = len(v)
	}
	return out
}

func (t *tracingAmbassador) Join(ctx context.Context, federateName, federateType, federation string, cb rti.Callbacks) (rti.FederateHandle, error) {
	start := time.Now()
	h, err := t.Ambassador.Join(ctx, federateName, federateType, federation, cb)
	t.record(log.CategoryFederation, log.CallEvent{Name: "JoinFederationExecution", Label: federateName}, start, err)
	return h, err
}

func (t *tracingAmbassador) Resign() error {
	start := time.Now()
	err := t.Ambassador.Resign()
	t.record(log.CategoryFederation, log.CallEvent{Name: "ResignFederationExecution"}, start, err)
	return err
}

func (t *tracingAmbassador) PublishObjectClassAttributes(class rti.ObjectClassHandle, attrs []rti.AttributeHandle) error {
	start := time.Now()
	err := t.Ambassador.PublishObjectClassAttributes(class, attrs)
	t.record(log.CategoryDeclaration, log.CallEvent{Name: "PublishObjectClassAttributes", Class: uint64(class)}, start, err)
	return err
}

func (t *tracingAmbassador) SubscribeObjectClassAttributes(class rti.ObjectClassHandle, attrs []rti.AttributeHandle) error {
	start := time.Now()
	err := t.Ambassador.SubscribeObjectClassAttributes(class, attrs)
	t.record(log.CategoryDeclaration, log.CallEvent{Name: "SubscribeObjectClassAttributes", Class: uint64(class)}, start, err)
	return err
}

func (t *tracingAmbassador) PublishInteractionClass(class rti.InteractionClassHandle) error {
	start := time.Now()
	err := t.Ambassador.PublishInteractionClass(class)
	t.record(log.CategoryDeclaration, log.CallEvent{Name: "PublishInteractionClass", Class: uint64(class)}, start, err)
	return err
}

func (t *tracingAmbassador) SubscribeInteractionClass(class rti.InteractionClassHandle) error {
	start := time.Now()
	err := t.Ambassador.SubscribeInteractionClass(class)
	t.record(log.CategoryDeclaration, log.CallEvent{Name: "SubscribeInteractionClass", Class: uint64(class)}, start, err)
	return err
}

func (t *tracingAmbassador) ReserveObjectInstanceName(name string) error {
	start := time.Now()
	err := t.Ambassador.ReserveObjectInstanceName(name)
	t.record(log.CategoryObject, log.CallEvent{Name: "ReserveObjectInstanceName", Label: name}, start, err)
	return err
}

func (t *tracingAmbassador) RegisterObjectInstance(class rti.ObjectClassHandle) (rti.ObjectInstanceHandle, error) {
	start := time.Now()
	h, err := t.Ambassador.RegisterObjectInstance(class)
	t.record(log.CategoryObject, log.CallEvent{Name: "RegisterObjectInstance", Class: uint64(class), Instance: uint64(h)}, start, err)
	return h, err
}

func (t *tracingAmbassador) RegisterObjectInstanceWithName(class rti.ObjectClassHandle, name string) (rti.ObjectInstanceHandle, error) {
	start := time.Now()
	h, err := t.Ambassador.RegisterObjectInstanceWithName(class, name)
	t.record(log.CategoryObject, log.CallEvent{
		Name: "RegisterObjectInstanceWithName", Class: uint64(class), Instance: uint64(h), Label: name,
	}, start, err)
	return h, err
}

func (t *tracingAmbassador) DeleteObjectInstance(instance rti.ObjectInstanceHandle, tag []byte) error {
	start := time.Now()
	err := t.Ambassador.DeleteObjectInstance(instance, tag)
	t.record(log.CategoryObject, log.CallEvent{Name: "DeleteObjectInstance", Instance: uint64(instance), Tag: tag}, start, err)
	return err
}

func (t *tracingAmbassador) UpdateAttributeValues(instance rti.ObjectInstanceHandle, values rti.AttributeValues, tag []byte) error {
	start := time.Now()
	err := t.Ambassador.UpdateAttributeValues(instance, values, tag)
	t.record(log.CategoryObject, log.CallEvent{
		Name: "UpdateAttributeValues", Instance: uint64(instance), Values: sizes(values), Tag: tag,
	}, start, err)
	return err
}

func (t *tracingAmbassador) SendInteraction(class rti.InteractionClassHandle, values rti.ParameterValues, tag []byte) error {
	start := time.Now()
	err := t.Ambassador.SendInteraction(class, values, tag)
	t.record(log.CategoryInteraction, log.CallEvent{
		Name: "SendInteraction", Class: uint64(class), Values: sizes(values), Tag: tag,
	}, start, err)
	return err
}

func (t *tracingAmbassador) EnableTimeRegulation(lookahead rti.Time) error {
	start := time.Now()
	err := t.Ambassador.EnableTimeRegulation(lookahead)
	t.record(log.CategoryTime, log.CallEvent{Name: "EnableTimeRegulation", Time: timeRef(lookahead)}, start, err)
	return err
}

func (t *tracingAmbassador) EnableTimeConstrained() error {
	start := time.Now()
	err := t.Ambassador.EnableTimeConstrained()
	t.record(log.CategoryTime, log.CallEvent{Name: "EnableTimeConstrained"}, start, err)
	return err
}

func (t *tracingAmbassador) TimeAdvanceRequest(target rti.Time) error {
	start := time.Now()
	err := t.Ambassador.TimeAdvanceRequest(target)
	t.record(log.CategoryTime, log.CallEvent{Name: "TimeAdvanceRequest", Time: timeRef(target)}, start, err)
	return err
}

func (t *tracingAmbassador) RegisterSynchronizationPoint(label string, tag []byte) error {
	start := time.Now()
	err := t.Ambassador.RegisterSynchronizationPoint(label, tag)
	t.record(log.CategorySync, log.CallEvent{Name: "RegisterSynchronizationPoint", Label: label, Tag: tag}, start, err)
	return err
}

func (t *tracingAmbassador) SynchronizationPointAchieved(label string) error {
	start := time.Now()
	err := t.Ambassador.SynchronizationPointAchieved(label)
	t.record(log.CategorySync, log.CallEvent{Name: "SynchronizationPointAchieved", Label: label}, start, err)
	return err
}
