package timing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/rtimock"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

func newManager(t *testing.T) (*Manager, *rtimock.Ambassador) {
	t.Helper()
	amb := rtimock.New(t)
	m := NewManager(Config{
		Ambassador:    amb,
		Lookahead:     rti.Time(1_000_000),
		PollInterval:  time.Millisecond,
		EnableTimeout: 100 * time.Millisecond,
	})
	return m, amb
}

func TestAdvanceGrantCycle(t *testing.T) {
	m, amb := newManager(t)
	amb.On("TimeAdvanceRequest", rti.Time(1_000_000)).Return(nil).Once()

	assert.False(t, m.IsAdvancing())
	require.NoError(t, m.RequestAdvance(1_000_000))
	assert.True(t, m.IsAdvancing())

	// A stale grant leaves the request pending.
	m.AdvanceGranted(500_000)
	assert.True(t, m.IsAdvancing())
	assert.Equal(t, rti.Time(0), m.FederateTime())

	m.AdvanceGranted(1_000_000)
	assert.False(t, m.IsAdvancing())
	assert.Equal(t, rti.Time(1_000_000), m.FederateTime())
	assert.Equal(t, rti.Time(1_000_000), m.FederationTime())

	// A grant with nothing pending is ignored.
	m.AdvanceGranted(5_000_000)
	assert.Equal(t, rti.Time(1_000_000), m.FederateTime())
}

func TestRequestAdvanceWhilePending(t *testing.T) {
	m, amb := newManager(t)
	amb.On("TimeAdvanceRequest", rti.Time(2_000_000)).Return(nil).Once()

	require.NoError(t, m.RequestAdvance(2_000_000))
	require.NoError(t, m.RequestAdvance(3_000_000))
	assert.Equal(t, rti.Time(2_000_000), m.Requested())
}

func TestRequestAdvanceErrors(t *testing.T) {
	m, amb := newManager(t)
	amb.On("TimeAdvanceRequest", rti.Time(1_000_000)).Return(nil).Once()
	require.NoError(t, m.RequestAdvance(1_000_000))
	m.AdvanceGranted(1_000_000)

	assert.ErrorIs(t, m.RequestAdvance(500_000), ErrTimeInPast)

	amb.On("TimeAdvanceRequest", rti.Time(2_000_000)).Return(rti.ErrInvalidTime).Once()
	err := m.RequestAdvance(2_000_000)
	assert.ErrorIs(t, err, rti.ErrInvalidTime)
	assert.False(t, m.IsAdvancing())
}

func TestAwaitGrant(t *testing.T) {
	m, amb := newManager(t)
	amb.On("TimeAdvanceRequest", rti.Time(1_000_000)).Return(nil).Run(func(mock.Arguments) {
		go func() {
			time.Sleep(5 * time.Millisecond)
			m.AdvanceGranted(1_000_000)
		}()
	}).Once()

	require.NoError(t, m.RequestAdvance(1_000_000))
	assert.True(t, m.AwaitGrant(context.Background(), time.Second))
}

func TestEnableRegulationAndConstraint(t *testing.T) {
	m, amb := newManager(t)
	amb.On("EnableTimeRegulation", rti.Time(1_000_000)).Return(nil).Run(func(mock.Arguments) {
		go m.RegulationEnabled(3_000_000)
	}).Once()
	amb.On("EnableTimeConstrained").Return(nil).Run(func(mock.Arguments) {
		go m.ConstrainedEnabled(3_000_000)
	}).Once()
	amb.On("DisableTimeRegulation").Return(nil).Once()
	amb.On("DisableTimeConstrained").Return(nil).Once()

	ctx := context.Background()
	require.NoError(t, m.EnableRegulation(ctx))
	require.NoError(t, m.EnableRegulation(ctx))
	require.NoError(t, m.EnableConstraint(ctx))

	s := m.Snapshot()
	assert.True(t, s.Regulating)
	assert.True(t, s.Constrained)
	assert.Equal(t, rti.Time(3_000_000), s.FederateTime)
	assert.Equal(t, rti.Time(1_000_000), s.Lookahead)

	require.NoError(t, m.DisableRegulation())
	require.NoError(t, m.DisableRegulation())
	require.NoError(t, m.DisableConstraint())
	assert.False(t, m.IsRegulating())
	assert.False(t, m.IsConstrained())
}

func TestEnableRegulationTimeout(t *testing.T) {
	m, amb := newManager(t)
	amb.On("EnableTimeRegulation", rti.Time(1_000_000)).Return(nil).Once()

	err := m.EnableRegulation(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, m.IsRegulating())
}

func TestLateJoinerBoundary(t *testing.T) {
	tests := []struct {
		name string
		galt rti.Time
		lcts rti.Time
		want rti.Time
	}{
		{"between boundaries", 12_500_000, 1_000_000, 13_000_000},
		{"on boundary", 12_000_000, 1_000_000, 13_000_000},
		{"zero", 0, 250_000, 250_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LateJoinerBoundary(tt.galt, tt.lcts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LateJoinerBoundary(1, 0)
	assert.ErrorIs(t, err, ErrNoTimeStep)
}

func TestJoinLate(t *testing.T) {
	m, amb := newManager(t)
	amb.On("QueryGALT").Return(rti.Time(12_500_000), true, nil).Once()
	amb.On("TimeAdvanceRequest", rti.Time(13_000_000)).Return(nil).Run(func(mock.Arguments) {
		go m.AdvanceGranted(13_000_000)
	}).Once()

	now, err := m.JoinLate(context.Background(), 1_000_000, time.Second)
	require.NoError(t, err)
	assert.Equal(t, rti.Time(13_000_000), now)
	assert.Equal(t, rti.Time(13_000_000), m.FederationTime())
}

func TestJoinLateWithoutGALT(t *testing.T) {
	m, amb := newManager(t)
	amb.On("QueryGALT").Return(rti.Time(0), false, nil).Once()

	now, err := m.JoinLate(context.Background(), 1_000_000, time.Second)
	require.NoError(t, err)
	assert.Equal(t, rti.Time(0), now)

	amb.On("QueryGALT").Return(rti.Time(0), false, errors.New("not joined")).Once()
	_, err = m.JoinLate(context.Background(), 1_000_000, time.Second)
	assert.Error(t, err)
}

func TestFederationTimeMonotonic(t *testing.T) {
	m, amb := newManager(t)
	amb.On("QueryGALT").Return(rti.Time(8_000_000), true, nil).Once()
	amb.On("QueryGALT").Return(rti.Time(4_000_000), true, nil).Once()

	_, _, err := m.QueryGALT()
	require.NoError(t, err)
	_, _, err = m.QueryGALT()
	require.NoError(t, err)
	assert.Equal(t, rti.Time(8_000_000), m.FederationTime())
}

func TestCycles(t *testing.T) {
	m, _ := newManager(t)
	assert.Equal(t, uint64(1), m.IncrementCycles())
	assert.Equal(t, uint64(2), m.IncrementCycles())
	assert.Equal(t, uint64(2), m.Snapshot().Cycles)
}
