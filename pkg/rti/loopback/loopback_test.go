package loopback

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// recorder records every callback as a short string.
type recorder struct {
	mu     sync.Mutex
	events []string
	values []rti.AttributeValues
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) ObjectInstanceNameReservationSucceeded(name string) {
	r.add("reserved %s", name)
}
func (r *recorder) ObjectInstanceNameReservationFailed(name string) {
	r.add("reserve-failed %s", name)
}
func (r *recorder) DiscoverObjectInstance(h rti.ObjectInstanceHandle, _ rti.ObjectClassHandle, name string) {
	r.add("discover %s", name)
}
func (r *recorder) ReflectAttributeValues(h rti.ObjectInstanceHandle, values rti.AttributeValues, _ []byte) {
	r.mu.Lock()
	r.values = append(r.values, values)
	r.mu.Unlock()
	r.add("reflect %d", len(values))
}
func (r *recorder) RemoveObjectInstance(rti.ObjectInstanceHandle, []byte) { r.add("remove") }
func (r *recorder) ProvideAttributeValueUpdate(_ rti.ObjectInstanceHandle, attrs []rti.AttributeHandle, _ []byte) {
	r.add("provide %d", len(attrs))
}
func (r *recorder) ReceiveInteraction(_ rti.InteractionClassHandle, values rti.ParameterValues, tag []byte) {
	r.add("interaction %s", tag)
}
func (r *recorder) TimeRegulationEnabled(t rti.Time)  { r.add("regulating %d", int64(t)) }
func (r *recorder) TimeConstrainedEnabled(t rti.Time) { r.add("constrained %d", int64(t)) }
func (r *recorder) TimeAdvanceGrant(t rti.Time)       { r.add("grant %d", int64(t)) }
func (r *recorder) SynchronizationPointRegistrationSucceeded(label string) {
	r.add("registered %s", label)
}
func (r *recorder) SynchronizationPointRegistrationFailed(label, reason string) {
	r.add("register-failed %s: %s", label, reason)
}
func (r *recorder) AnnounceSynchronizationPoint(label string, _ []byte) {
	r.add("announce %s", label)
}
func (r *recorder) FederationSynchronized(label string) { r.add("synchronized %s", label) }

type member struct {
	amb *Ambassador
	rec *recorder
}

func (m member) flush(t *testing.T) {
	t.Helper()
	require.True(t, m.amb.Flush(context.Background(), time.Second))
}

func join(t *testing.T, fed *Federation, name string) member {
	t.Helper()
	m := member{amb: fed.NewAmbassador(), rec: &recorder{}}
	_, err := m.amb.Join(context.Background(), name, "test", fed.Name(), m.rec)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.amb.Resign() })
	return m
}

func TestJoinRejections(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")

	dup := fed.NewAmbassador()
	_, err := dup.Join(context.Background(), "alpha", "test", "SEE", &recorder{})
	assert.ErrorIs(t, err, rti.ErrFederateNameInUse)

	_, err = dup.Join(context.Background(), "beta", "test", "other", &recorder{})
	assert.ErrorIs(t, err, rti.ErrFederationNotFound)

	_, err = a.amb.Join(context.Background(), "alpha2", "test", "SEE", a.rec)
	assert.ErrorIs(t, err, rti.ErrAlreadyJoined)

	_, err = dup.GetObjectClassHandle("HLAobjectRoot.X")
	assert.ErrorIs(t, err, rti.ErrNotJoined)

	assert.ElementsMatch(t, []string{"alpha"}, fed.Members())
}

func TestHandlesAreSharedAcrossMembers(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")
	b := join(t, fed, "beta")

	ca, err := a.amb.GetObjectClassHandle("HLAobjectRoot.Body")
	require.NoError(t, err)
	cb, err := b.amb.GetObjectClassHandle("HLAobjectRoot.Body")
	require.NoError(t, err)
	assert.Equal(t, ca, cb)

	_, err = a.amb.GetAttributeHandle(9999, "x")
	assert.ErrorIs(t, err, rti.ErrInvalidHandle)
}

func TestObjectLifecycle(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")
	b := join(t, fed, "beta")

	class, err := a.amb.GetObjectClassHandle("HLAobjectRoot.Body")
	require.NoError(t, err)
	pos, _ := a.amb.GetAttributeHandle(class, "position")
	mass, _ := a.amb.GetAttributeHandle(class, "mass")

	_, err = a.amb.RegisterObjectInstance(class)
	assert.ErrorIs(t, err, rti.ErrNotPublished)

	require.NoError(t, a.amb.PublishObjectClassAttributes(class, []rti.AttributeHandle{pos, mass}))
	require.NoError(t, b.amb.SubscribeObjectClassAttributes(class, []rti.AttributeHandle{pos}))

	_, err = a.amb.RegisterObjectInstanceWithName(class, "Moon")
	assert.ErrorIs(t, err, rti.ErrNameNotReserved)

	require.NoError(t, a.amb.ReserveObjectInstanceName("Moon"))
	require.NoError(t, b.amb.ReserveObjectInstanceName("Moon"))
	a.flush(t)
	b.flush(t)
	assert.Equal(t, []string{"reserved Moon"}, a.rec.Events())
	assert.Equal(t, []string{"reserve-failed Moon"}, b.rec.Events())

	inst, err := a.amb.RegisterObjectInstanceWithName(class, "Moon")
	require.NoError(t, err)
	name, err := b.amb.GetObjectInstanceName(inst)
	require.NoError(t, err)
	assert.Equal(t, "Moon", name)

	require.NoError(t, a.amb.UpdateAttributeValues(inst, rti.AttributeValues{pos: {1}, mass: {2}}, nil))
	assert.ErrorIs(t, b.amb.UpdateAttributeValues(inst, rti.AttributeValues{pos: {1}}, nil), rti.ErrNotOwned)

	require.NoError(t, b.amb.RequestAttributeValueUpdate(inst, []rti.AttributeHandle{pos, mass}, nil))

	assert.ErrorIs(t, b.amb.DeleteObjectInstance(inst, nil), rti.ErrNotOwned)
	require.NoError(t, a.amb.DeleteObjectInstance(inst, nil))

	a.flush(t)
	b.flush(t)
	assert.Equal(t, []string{"reserve-failed Moon", "discover Moon", "reflect 1", "remove"}, b.rec.Events())
	assert.Equal(t, []string{"reserved Moon", "provide 2"}, a.rec.Events())

	b.rec.mu.Lock()
	assert.Equal(t, rti.AttributeValues{pos: {1}}, b.rec.values[0])
	b.rec.mu.Unlock()
}

func TestLateSubscriberDiscoversExisting(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")

	class, _ := a.amb.GetObjectClassHandle("HLAobjectRoot.Body")
	attr, _ := a.amb.GetAttributeHandle(class, "mass")
	require.NoError(t, a.amb.PublishObjectClassAttributes(class, []rti.AttributeHandle{attr}))
	_, err := a.amb.RegisterObjectInstance(class)
	require.NoError(t, err)

	b := join(t, fed, "beta")
	require.NoError(t, b.amb.SubscribeObjectClassAttributes(class, []rti.AttributeHandle{attr}))
	b.flush(t)

	events := b.rec.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0], "discover HLAobject-")
}

func TestResignRemovesOwnedInstances(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := fed.NewAmbassador()
	_, err := a.Join(context.Background(), "alpha", "test", "SEE", &recorder{})
	require.NoError(t, err)
	b := join(t, fed, "beta")

	class, _ := a.GetObjectClassHandle("HLAobjectRoot.Body")
	attr, _ := a.GetAttributeHandle(class, "mass")
	require.NoError(t, a.PublishObjectClassAttributes(class, []rti.AttributeHandle{attr}))
	require.NoError(t, b.amb.SubscribeObjectClassAttributes(class, []rti.AttributeHandle{attr}))
	_, err = a.RegisterObjectInstance(class)
	require.NoError(t, err)

	require.NoError(t, a.Resign())
	assert.ErrorIs(t, a.Resign(), rti.ErrNotJoined)

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("callback goroutine did not exit")
	}

	b.flush(t)
	events := b.rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "remove", events[1])
}

func TestInteractions(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")
	b := join(t, fed, "beta")
	c := join(t, fed, "gamma")

	class, _ := a.amb.GetInteractionClassHandle("HLAinteractionRoot.ModeTransitionRequest")
	param, _ := a.amb.GetParameterHandle(class, "execution_mode")

	assert.ErrorIs(t, a.amb.SendInteraction(class, rti.ParameterValues{param: {1}}, nil), rti.ErrNotPublished)

	require.NoError(t, a.amb.PublishInteractionClass(class))
	require.NoError(t, b.amb.SubscribeInteractionClass(class))
	require.NoError(t, a.amb.SendInteraction(class, rti.ParameterValues{param: {1}}, []byte("run")))

	b.flush(t)
	c.flush(t)
	assert.Equal(t, []string{"interaction run"}, b.rec.Events())
	assert.Empty(t, c.rec.Events())
}

func TestTimeAdvanceWaitsForRegulator(t *testing.T) {
	fed := NewFederation("SEE", nil)
	reg := join(t, fed, "regulator")
	con := join(t, fed, "constrained")

	require.NoError(t, reg.amb.EnableTimeRegulation(1))
	assert.ErrorIs(t, reg.amb.EnableTimeRegulation(1), rti.ErrRegulationPending)
	require.NoError(t, con.amb.EnableTimeConstrained())

	galt, ok, err := con.amb.QueryGALT()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rti.Time(1), galt)

	_, ok, err = reg.amb.QueryGALT()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, con.amb.TimeAdvanceRequest(5))
	assert.ErrorIs(t, con.amb.TimeAdvanceRequest(6), rti.ErrAdvancePending)
	con.flush(t)
	assert.Equal(t, []string{"constrained 0"}, con.rec.Events())

	require.NoError(t, reg.amb.TimeAdvanceRequest(4))
	reg.flush(t)
	con.flush(t)
	assert.Equal(t, []string{"regulating 0", "grant 4"}, reg.rec.Events())
	assert.Equal(t, []string{"constrained 0", "grant 5"}, con.rec.Events())

	assert.ErrorIs(t, con.amb.TimeAdvanceRequest(2), rti.ErrInvalidTime)
}

func TestSynchronizationPoint(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")
	b := join(t, fed, "beta")

	assert.ErrorIs(t, a.amb.SynchronizationPointAchieved("startup"), rti.ErrSyncPointNotAnnounced)

	require.NoError(t, a.amb.RegisterSynchronizationPoint("startup", nil))
	require.NoError(t, b.amb.RegisterSynchronizationPoint("startup", nil))

	require.NoError(t, a.amb.SynchronizationPointAchieved("startup"))
	a.flush(t)
	assert.Equal(t, []string{"registered startup", "announce startup"}, a.rec.Events())

	require.NoError(t, b.amb.SynchronizationPointAchieved("startup"))
	a.flush(t)
	b.flush(t)
	assert.Equal(t, []string{"registered startup", "announce startup", "synchronized startup"}, a.rec.Events())
	assert.Equal(t, []string{
		"announce startup",
		"register-failed startup: label not unique",
		"synchronized startup",
	}, b.rec.Events())
}

func TestLateJoinerReceivesPendingAnnouncement(t *testing.T) {
	fed := NewFederation("SEE", nil)
	a := join(t, fed, "alpha")
	require.NoError(t, a.amb.RegisterSynchronizationPoint("mtr_freeze", nil))

	b := join(t, fed, "beta")
	require.NoError(t, a.amb.SynchronizationPointAchieved("mtr_freeze"))
	b.flush(t)
	assert.Equal(t, []string{"announce mtr_freeze"}, b.rec.Events())

	require.NoError(t, b.amb.SynchronizationPointAchieved("mtr_freeze"))
	a.flush(t)
	assert.Contains(t, a.rec.Events(), "synchronized mtr_freeze")
}
