package declaration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/rtimock"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/codec"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

type body struct {
	Name  string
	Mass  float64
	Count int32
}

type command struct {
	Mode int32
}

var bodyClass = model.Must(model.NewObjectClass("HLAobjectRoot.Body",
	model.Attribute("name", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(b *body) string { return b.Name },
		func(b *body, v string) { b.Name = v }),
	model.Attribute("mass", codec.KindFloat64BE, model.ScopePublish,
		func(b *body) float64 { return b.Mass },
		func(b *body, v float64) { b.Mass = v }),
	model.Attribute("count", codec.KindInteger32BE, model.ScopeSubscribe,
		func(b *body) int32 { return b.Count },
		func(b *body, v int32) { b.Count = v }),
))

var commandClass = model.Must(model.NewInteractionClass("HLAinteractionRoot.Command",
	model.Parameter("mode", codec.KindEnum32,
		func(c *command) int32 { return c.Mode },
		func(c *command, v int32) { c.Mode = v }),
))

const (
	bodyHandle  = rti.ObjectClassHandle(10)
	nameHandle  = rti.AttributeHandle(1)
	massHandle  = rti.AttributeHandle(2)
	countHandle = rti.AttributeHandle(3)
)

func expectBodyHandles(amb *rtimock.Ambassador) {
	amb.On("GetObjectClassHandle", "HLAobjectRoot.Body").Return(bodyHandle, nil).Once()
	amb.On("GetAttributeHandle", bodyHandle, "name").Return(nameHandle, nil).Once()
	amb.On("GetAttributeHandle", bodyHandle, "mass").Return(massHandle, nil).Once()
	amb.On("GetAttributeHandle", bodyHandle, "count").Return(countHandle, nil).Once()
}

func newBody(t *testing.T) (*ObjectClass, *rtimock.Ambassador) {
	t.Helper()
	amb := rtimock.New(t)
	oc, err := NewObjectClass(bodyClass, amb, nil)
	require.NoError(t, err)
	return oc, amb
}

func TestFlagsStatus(t *testing.T) {
	var f Flags
	assert.Equal(t, StatusUndesignated, f.Status())

	assert.True(t, f.SetPublishFlag())
	assert.False(t, f.SetPublishFlag())
	assert.Equal(t, StatusPublished, f.Status())

	assert.True(t, f.SetSubscribeFlag())
	assert.Equal(t, StatusPublishedSubscribed, f.Status())

	assert.True(t, f.UnsetPublishFlag())
	assert.False(t, f.UnsetPublishFlag())
	assert.Equal(t, StatusSubscribed, f.Status())

	assert.True(t, f.UnsetSubscribeFlag())
	assert.False(t, f.UnsetSubscribeFlag())
	assert.Equal(t, StatusUndesignated, f.Status())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "UNDESIGNATED", StatusUndesignated.String())
	assert.Equal(t, "PUBLISHED", StatusPublished.String())
	assert.Equal(t, "SUBSCRIBED", StatusSubscribed.String())
	assert.Equal(t, "PUBLISHED_SUBSCRIBED", StatusPublishedSubscribed.String())
	assert.Equal(t, "UNKNOWN", Status(9).String())
}

func TestObjectClassPublishSubscribe(t *testing.T) {
	oc, amb := newBody(t)
	expectBodyHandles(amb)
	amb.On("PublishObjectClassAttributes", bodyHandle, []rti.AttributeHandle{nameHandle, massHandle}).Return(nil).Once()
	amb.On("SubscribeObjectClassAttributes", bodyHandle, []rti.AttributeHandle{nameHandle, countHandle}).Return(nil).Once()
	amb.On("UnpublishObjectClass", bodyHandle).Return(nil).Once()
	amb.On("UnsubscribeObjectClass", bodyHandle).Return(nil).Once()

	_, ok := oc.Handle()
	assert.False(t, ok)

	require.NoError(t, oc.Publish())
	assert.Equal(t, StatusPublished, oc.Status())
	assert.True(t, oc.Resolved())

	// Second publish is a no-op and does not reach the runtime.
	require.NoError(t, oc.Publish())

	require.NoError(t, oc.Subscribe())
	assert.Equal(t, StatusPublishedSubscribed, oc.Status())
	assert.Equal(t, []rti.AttributeHandle{nameHandle, countHandle}, oc.SubscribedAttributes())
	assert.Equal(t, []rti.AttributeHandle{nameHandle, massHandle}, oc.PublishedAttributes())

	require.NoError(t, oc.Unpublish())
	require.NoError(t, oc.Unpublish())
	assert.Equal(t, StatusSubscribed, oc.Status())

	require.NoError(t, oc.Unsubscribe())
	require.NoError(t, oc.Unsubscribe())
	assert.Equal(t, StatusUndesignated, oc.Status())

	h, ok := oc.Handle()
	assert.True(t, ok)
	assert.Equal(t, bodyHandle, h)
}

func TestObjectClassResolveFailure(t *testing.T) {
	oc, amb := newBody(t)
	amb.On("GetObjectClassHandle", "HLAobjectRoot.Body").Return(rti.ObjectClassHandle(0), rti.ErrNameNotFound).Once()

	err := oc.Publish()
	require.ErrorIs(t, err, ErrResolve)
	assert.ErrorIs(t, err, rti.ErrNameNotFound)

	// The failure is remembered rather than retried.
	assert.ErrorIs(t, oc.Subscribe(), ErrResolve)
	assert.Equal(t, StatusUndesignated, oc.Status())
	assert.False(t, oc.Resolved())
}

func TestObjectClassPublishRejected(t *testing.T) {
	oc, amb := newBody(t)
	expectBodyHandles(amb)
	amb.On("PublishObjectClassAttributes", bodyHandle, mock.Anything).Return(errors.New("boom")).Once()

	require.Error(t, oc.Publish())
	assert.False(t, oc.IsPublished())
}

func TestObjectClassValuesBeforeResolve(t *testing.T) {
	oc, _ := newBody(t)

	assert.Panics(t, func() { _, _ = oc.EncodedValues(&body{}) })
	assert.Panics(t, func() { _ = oc.Unpack(&body{}, rti.AttributeValues{}) })

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrNotConnected)
	}()
	_, _ = oc.EncodedValues(&body{})
}

func TestObjectClassEncodeUnpack(t *testing.T) {
	oc, amb := newBody(t)
	expectBodyHandles(amb)
	amb.On("PublishObjectClassAttributes", bodyHandle, mock.Anything).Return(nil).Once()
	require.NoError(t, oc.Publish())

	values, err := oc.EncodedValues(&body{Name: "moon", Mass: 7.3e22})
	require.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Contains(t, values, nameHandle)
	assert.Contains(t, values, massHandle)

	values, err = oc.EncodedValues(&body{Name: "moon"}, "name")
	require.NoError(t, err)
	assert.Len(t, values, 1)

	cnt, err := codec.Default().MustGet(codec.KindInteger32BE).Encode(int32(5))
	require.NoError(t, err)
	values[countHandle] = cnt
	values[rti.AttributeHandle(99)] = []byte{1}

	var got body
	require.NoError(t, oc.Unpack(&got, values))
	assert.Equal(t, "moon", got.Name)
	assert.Equal(t, int32(5), got.Count)

	assert.Equal(t, []string{"name", "count"}, oc.AttributeNames([]rti.AttributeHandle{nameHandle, 42, countHandle}))
	h, ok := oc.AttributeHandle("mass")
	assert.True(t, ok)
	assert.Equal(t, massHandle, h)
}

func TestWrongKind(t *testing.T) {
	amb := rtimock.New(t)
	_, err := NewObjectClass(commandClass, amb, nil)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = NewInteractionClass(bodyClass, amb, nil)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestInteractionClassSend(t *testing.T) {
	amb := rtimock.New(t)
	ic, err := NewInteractionClass(commandClass, amb, nil)
	require.NoError(t, err)

	// Unpublished send is skipped without touching the runtime.
	require.NoError(t, ic.Send(&command{Mode: 1}, nil))

	amb.On("GetInteractionClassHandle", "HLAinteractionRoot.Command").Return(rti.InteractionClassHandle(20), nil).Once()
	amb.On("GetParameterHandle", rti.InteractionClassHandle(20), "mode").Return(rti.ParameterHandle(5), nil).Once()
	amb.On("PublishInteractionClass", rti.InteractionClassHandle(20)).Return(nil).Once()
	amb.On("SubscribeInteractionClass", rti.InteractionClassHandle(20)).Return(nil).Once()
	amb.On("SendInteraction", rti.InteractionClassHandle(20), mock.MatchedBy(func(v rti.ParameterValues) bool {
		return len(v[rti.ParameterHandle(5)]) == 4
	}), []byte("tag")).Return(nil).Once()

	require.NoError(t, ic.Publish())
	require.NoError(t, ic.Subscribe())
	assert.Equal(t, StatusPublishedSubscribed, ic.Status())
	require.NoError(t, ic.Send(&command{Mode: 2}, []byte("tag")))

	values, err := ic.EncodedValues(&command{Mode: 3})
	require.NoError(t, err)
	var got command
	require.NoError(t, ic.Unpack(&got, values))
	assert.Equal(t, int32(3), got.Mode)
}

func TestCache(t *testing.T) {
	amb := rtimock.New(t)
	c := NewCache(amb, nil)

	oc, err := c.Object(bodyClass)
	require.NoError(t, err)
	again, err := c.Object(bodyClass)
	require.NoError(t, err)
	assert.Same(t, oc, again)

	_, err = c.Object(commandClass)
	assert.ErrorIs(t, err, ErrWrongKind)

	other := model.Must(model.NewObjectClass("HLAobjectRoot.Body",
		model.Attribute("mode", codec.KindInteger32BE, model.ScopePublish,
			func(c *command) int32 { return c.Mode },
			func(c *command, v int32) { c.Mode = v }),
	))
	_, err = c.Object(other)
	assert.ErrorIs(t, err, ErrSchemaConflict)

	_, ok := c.ObjectByName("HLAobjectRoot.Body")
	assert.True(t, ok)

	// Not resolved yet, so no handle lookup succeeds.
	_, ok = c.ObjectByHandle(bodyHandle)
	assert.False(t, ok)

	expectBodyHandles(amb)
	amb.On("SubscribeObjectClassAttributes", bodyHandle, mock.Anything).Return(nil).Once()
	require.NoError(t, oc.Subscribe())

	found, ok := c.ObjectByHandle(bodyHandle)
	assert.True(t, ok)
	assert.Same(t, oc, found)

	ic, err := c.Interaction(commandClass)
	require.NoError(t, err)
	assert.Equal(t, []*InteractionClass{ic}, c.Interactions())
	assert.Equal(t, []*ObjectClass{oc}, c.Objects())
	_, ok = c.InteractionByHandle(20)
	assert.False(t, ok)
}
