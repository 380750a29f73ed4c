package rti

import "context"

// Ambassador is the set of calls a federate makes into the runtime.
//
// All methods are synchronous requests. Requests whose outcome is reported
// asynchronously (name reservation, time regulation, time advance,
// synchronization point registration) only acknowledge receipt; the result
// arrives later through Callbacks.
type Ambassador interface {
	// Join joins the named federation execution. cb receives all callbacks
	// for this federate until Resign returns.
	Join(ctx context.Context, federateName, federateType, federation string, cb Callbacks) (FederateHandle, error)

	// Resign leaves the federation execution, deleting owned instances.
	Resign() error

	GetObjectClassHandle(name string) (ObjectClassHandle, error)
	GetAttributeHandle(class ObjectClassHandle, name string) (AttributeHandle, error)
	GetInteractionClassHandle(name string) (InteractionClassHandle, error)
	GetParameterHandle(class InteractionClassHandle, name string) (ParameterHandle, error)
	GetObjectInstanceName(instance ObjectInstanceHandle) (string, error)

	PublishObjectClassAttributes(class ObjectClassHandle, attrs []AttributeHandle) error
	UnpublishObjectClass(class ObjectClassHandle) error
	SubscribeObjectClassAttributes(class ObjectClassHandle, attrs []AttributeHandle) error
	UnsubscribeObjectClass(class ObjectClassHandle) error
	PublishInteractionClass(class InteractionClassHandle) error
	UnpublishInteractionClass(class InteractionClassHandle) error
	SubscribeInteractionClass(class InteractionClassHandle) error
	UnsubscribeInteractionClass(class InteractionClassHandle) error

	ReserveObjectInstanceName(name string) error
	ReleaseObjectInstanceName(name string) error
	RegisterObjectInstance(class ObjectClassHandle) (ObjectInstanceHandle, error)
	RegisterObjectInstanceWithName(class ObjectClassHandle, name string) (ObjectInstanceHandle, error)
	DeleteObjectInstance(instance ObjectInstanceHandle, tag []byte) error
	RequestAttributeValueUpdate(instance ObjectInstanceHandle, attrs []AttributeHandle, tag []byte) error
	UpdateAttributeValues(instance ObjectInstanceHandle, values AttributeValues, tag []byte) error
	SendInteraction(class InteractionClassHandle, values ParameterValues, tag []byte) error

	EnableTimeRegulation(lookahead Time) error
	DisableTimeRegulation() error
	EnableTimeConstrained() error
	DisableTimeConstrained() error
	TimeAdvanceRequest(t Time) error

	// QueryGALT returns the greatest available logical time. ok is false
	// when no federate in the execution is time regulating.
	QueryGALT() (galt Time, ok bool, err error)

	RegisterSynchronizationPoint(label string, tag []byte) error
	SynchronizationPointAchieved(label string) error
}

// Callbacks is implemented by the federate to receive runtime callbacks.
type Callbacks interface {
	ObjectInstanceNameReservationSucceeded(name string)
	ObjectInstanceNameReservationFailed(name string)

	DiscoverObjectInstance(instance ObjectInstanceHandle, class ObjectClassHandle, name string)
	ReflectAttributeValues(instance ObjectInstanceHandle, values AttributeValues, tag []byte)
	RemoveObjectInstance(instance ObjectInstanceHandle, tag []byte)
	ProvideAttributeValueUpdate(instance ObjectInstanceHandle, attrs []AttributeHandle, tag []byte)
	ReceiveInteraction(class InteractionClassHandle, values ParameterValues, tag []byte)

	TimeRegulationEnabled(t Time)
	TimeConstrainedEnabled(t Time)
	TimeAdvanceGrant(t Time)

	SynchronizationPointRegistrationSucceeded(label string)
	SynchronizationPointRegistrationFailed(label string, reason string)
	AnnounceSynchronizationPoint(label string, tag []byte)
	FederationSynchronized(label string)
}
