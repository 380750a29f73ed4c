package syncpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/rtimock"
)

func newManager(t *testing.T) (*Manager, *rtimock.Ambassador) {
	t.Helper()
	amb := rtimock.New(t)
	return NewManager(Config{Ambassador: amb, PollInterval: time.Millisecond}), amb
}

func TestRegisterAndAnnounce(t *testing.T) {
	m, amb := newManager(t)
	amb.On("RegisterSynchronizationPoint", "init_done", []byte(nil)).Return(nil).Once()

	require.NoError(t, m.Register("init_done", nil))
	assert.Equal(t, RegistrationPending, m.Point("init_done").Registration())
	assert.False(t, m.IsRegistered("init_done"))

	m.RegistrationSucceeded("init_done")
	assert.True(t, m.IsRegistered("init_done"))
	assert.Equal(t, RegistrationSucceeded, m.Point("init_done").Registration())

	m.Announced("init_done", []byte("t"))
	assert.True(t, m.IsAnnounced("init_done"))
	assert.Equal(t, []byte("t"), m.Point("init_done").Tag())
}

func TestRegisterRejected(t *testing.T) {
	m, amb := newManager(t)
	amb.On("RegisterSynchronizationPoint", "x", []byte(nil)).Return(errors.New("not joined")).Once()

	require.Error(t, m.Register("x", nil))
	assert.Equal(t, Unregistered, m.Point("x").Registration())
}

func TestRegistrationFailed(t *testing.T) {
	m, amb := newManager(t)
	amb.On("RegisterSynchronizationPoint", "mtr_run", []byte(nil)).Return(nil).Once()
	require.NoError(t, m.Register("mtr_run", nil))

	go m.RegistrationFailed("mtr_run", "label not unique")
	st := m.AwaitRegistration(context.Background(), "mtr_run", time.Second)
	assert.Equal(t, RegistrationFailed, st)
	assert.True(t, m.IsRegistrationFailed("mtr_run"))
	assert.Equal(t, "label not unique", m.Point("mtr_run").FailureReason())
}

func TestAwaitAnnouncement(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	start := time.Now()
	assert.False(t, m.AwaitAnnouncement(ctx, "init_done", 50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	m.Announced("init_done", nil)
	start = time.Now()
	assert.True(t, m.AwaitAnnouncement(ctx, "init_done", 50*time.Millisecond))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAwaitSynchronization(t *testing.T) {
	m, _ := newManager(t)

	go func() {
		time.Sleep(5 * time.Millisecond)
		m.Synchronized("startup")
	}()
	assert.True(t, m.AwaitSynchronization(context.Background(), "startup", time.Second))
}

func TestAchieve(t *testing.T) {
	m, amb := newManager(t)

	// Not announced: ignored without calling the runtime.
	require.NoError(t, m.Achieve("mtr_freeze"))

	amb.On("SynchronizationPointAchieved", "mtr_freeze").Return(nil).Once()
	m.Announced("mtr_freeze", nil)
	require.NoError(t, m.Achieve("mtr_freeze"))
	require.NoError(t, m.Achieve("mtr_freeze"))
	assert.True(t, m.Point("mtr_freeze").IsAchieved())
}

func TestListenersFireOnce(t *testing.T) {
	m, _ := newManager(t)

	var announced, synced []string
	m.OnAnnounced(func(label string, _ []byte) { announced = append(announced, label) })
	m.OnSynchronized(func(label string) { synced = append(synced, label) })

	m.Announced("a", nil)
	m.Announced("a", nil)
	m.Synchronized("a")
	m.Synchronized("a")

	assert.Equal(t, []string{"a"}, announced)
	assert.Equal(t, []string{"a"}, synced)
}

func TestReset(t *testing.T) {
	m, _ := newManager(t)

	m.Announced("a", []byte("x"))
	m.RegistrationSucceeded("a")
	m.Synchronized("a")
	m.RegistrationFailed("b", "dup")

	m.Reset("a")
	p := m.Point("a")
	assert.False(t, p.IsAnnounced())
	assert.False(t, p.IsRegistered())
	assert.False(t, p.IsSynchronized())
	assert.Nil(t, p.Tag())

	m.ResetAll()
	assert.False(t, m.IsRegistrationFailed("b"))
	assert.Equal(t, []string{"a", "b"}, m.Labels())
}

func TestRegistrationString(t *testing.T) {
	assert.Equal(t, "UNREGISTERED", Unregistered.String())
	assert.Equal(t, "PENDING", RegistrationPending.String())
	assert.Equal(t, "SUCCEEDED", RegistrationSucceeded.String())
	assert.Equal(t, "FAILED", RegistrationFailed.String())
	assert.Equal(t, "UNKNOWN", Registration(7).String())
}
