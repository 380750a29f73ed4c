// Package rtimock provides a testify mock of rti.Ambassador for unit tests.
package rtimock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Ambassador is a mock rti.Ambassador.
type Ambassador struct {
	mock.Mock
}

// New creates a mock whose expectations are asserted at test cleanup.
func New(t interface {
	mock.TestingT
	Cleanup(func())
}) *Ambassador {
	m := &Ambassador{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Ambassador) Join(ctx context.Context, federateName, federateType, federation string, cb rti.Callbacks) (rti.FederateHandle, error) {
	args := m.Called(ctx, federateName, federateType, federation, cb)
	return args.Get(0).(rti.FederateHandle), args.Error(1)
}

func (m *Ambassador) Resign() error {
	return m.Called().Error(0)
}

func (m *Ambassador) GetObjectClassHandle(name string) (rti.ObjectClassHandle, error) {
	args := m.Called(name)
	return args.Get(0).(rti.ObjectClassHandle), args.Error(1)
}

func (m *Ambassador) GetAttributeHandle(class rti.ObjectClassHandle, name string) (rti.AttributeHandle, error) {
	args := m.Called(class, name)
	return args.Get(0).(rti.AttributeHandle), args.Error(1)
}

func (m *Ambassador) GetInteractionClassHandle(name string) (rti.InteractionClassHandle, error) {
	args := m.Called(name)
	return args.Get(0).(rti.InteractionClassHandle), args.Error(1)
}

func (m *Ambassador) GetParameterHandle(class rti.InteractionClassHandle, name string) (rti.ParameterHandle, error) {
	args := m.Called(class, name)
	return args.Get(0).(rti.ParameterHandle), args.Error(1)
}

func (m *Ambassador) GetObjectInstanceName(instance rti.ObjectInstanceHandle) (string, error) {
	args := m.Called(instance)
	return args.String(0), args.Error(1)
}

func (m *Ambassador) PublishObjectClassAttributes(class rti.ObjectClassHandle, attrs []rti.AttributeHandle) error {
	return m.Called(class, attrs).Error(0)
}

func (m *Ambassador) UnpublishObjectClass(class rti.ObjectClassHandle) error {
	return m.Called(class).Error(0)
}

func (m *Ambassador) SubscribeObjectClassAttributes(class rti.ObjectClassHandle, attrs []rti.AttributeHandle) error {
	return m.Called(class, attrs).Error(0)
}

func (m *Ambassador) UnsubscribeObjectClass(class rti.ObjectClassHandle) error {
	return m.Called(class).Error(0)
}

func (m *Ambassador) PublishInteractionClass(class rti.InteractionClassHandle) error {
	return m.Called(class).Error(0)
}

func (m *Ambassador) UnpublishInteractionClass(class rti.InteractionClassHandle) error {
	return m.Called(class).Error(0)
}

func (m *Ambassador) SubscribeInteractionClass(class rti.InteractionClassHandle) error {
	return m.Called(class).Error(0)
}

func (m *Ambassador) UnsubscribeInteractionClass(class rti.InteractionClassHandle) error {
	return m.Called(class).Error(0)
}

func (m *Ambassador) ReserveObjectInstanceName(name string) error {
	return m.Called(name).Error(0)
}

func (m *Ambassador) ReleaseObjectInstanceName(name string) error {
	return m.Called(name).Error(0)
}

func (m *Ambassador) RegisterObjectInstance(class rti.ObjectClassHandle) (rti.ObjectInstanceHandle, error) {
	args := m.Called(class)
	return args.Get(0).(rti.ObjectInstanceHandle), args.Error(1)
}

func (m *Ambassador) RegisterObjectInstanceWithName(class rti.ObjectClassHandle, name string) (rti.ObjectInstanceHandle, error) {
	args := m.Called(class, name)
	return args.Get(0).(rti.ObjectInstanceHandle), args.Error(1)
}

func (m *Ambassador) DeleteObjectInstance(instance rti.ObjectInstanceHandle, tag []byte) error {
	return m.Called(instance, tag).Error(0)
}

func (m *Ambassador) RequestAttributeValueUpdate(instance rti.ObjectInstanceHandle, attrs []rti.AttributeHandle, tag []byte) error {
	return m.Called(instance, attrs, tag).Error(0)
}

func (m *Ambassador) UpdateAttributeValues(instance rti.ObjectInstanceHandle, values rti.AttributeValues, tag []byte) error {
	return m.Called(instance, values, tag).Error(0)
}

func (m *Ambassador) SendInteraction(class rti.InteractionClassHandle, values rti.ParameterValues, tag []byte) error {
	return m.Called(class, values, tag).Error(0)
}

func (m *Ambassador) EnableTimeRegulation(lookahead rti.Time) error {
	return m.Called(lookahead).Error(0)
}

func (m *Ambassador) DisableTimeRegulation() error {
	return m.Called().Error(0)
}

func (m *Ambassador) EnableTimeConstrained() error {
	return m.Called().Error(0)
}

func (m *Ambassador) DisableTimeConstrained() error {
	return m.Called().Error(0)
}

func (m *Ambassador) TimeAdvanceRequest(t rti.Time) error {
	return m.Called(t).Error(0)
}

func (m *Ambassador) QueryGALT() (rti.Time, bool, error) {
	args := m.Called()
	return args.Get(0).(rti.Time), args.Bool(1), args.Error(2)
}

func (m *Ambassador) RegisterSynchronizationPoint(label string, tag []byte) error {
	return m.Called(label, tag).Error(0)
}

func (m *Ambassador) SynchronizationPointAchieved(label string) error {
	return m.Called(label).Error(0)
}

var _ rti.Ambassador = (*Ambassador)(nil)
