package examples

import (
	"sync"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/codec"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
)

// PhysicalEntity is a body moving in a reference frame, such as a lander
// or a rover.
type PhysicalEntity struct {
	Name         string
	Type         string
	Status       string
	ParentFrame  string
	State        SpaceTimeCoordinateState
	Acceleration Vector3

	mu      sync.Mutex
	changed map[string]int
}

// PhysicalEntityClass binds PhysicalEntity. Acceleration is published only;
// peers derive it from successive states.
var PhysicalEntityClass = model.Must(model.NewObjectClass(PhysicalEntityClassName,
	model.Attribute("name", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(e *PhysicalEntity) string { return e.Name },
		func(e *PhysicalEntity, v string) { e.Name = v }),
	model.Attribute("type", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(e *PhysicalEntity) string { return e.Type },
		func(e *PhysicalEntity, v string) { e.Type = v }),
	model.OptionalAttribute("status", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(e *PhysicalEntity) (string, bool) { return e.Status, e.Status != "" },
		func(e *PhysicalEntity, v string) { e.Status = v }),
	model.Attribute("parent_reference_frame", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(e *PhysicalEntity) string { return e.ParentFrame },
		func(e *PhysicalEntity, v string) { e.ParentFrame = v }),
	model.Attribute("state", codec.KindCBOR, model.ScopePublishSubscribe,
		func(e *PhysicalEntity) SpaceTimeCoordinateState { return e.State },
		func(e *PhysicalEntity, v SpaceTimeCoordinateState) { e.State = v }),
	model.Attribute("acceleration", codec.KindCBOR, model.ScopePublish,
		func(e *PhysicalEntity) Vector3 { return e.Acceleration },
		func(e *PhysicalEntity, v Vector3) { e.Acceleration = v }),
))

// Step propagates the entity by dt seconds.
func (e *PhysicalEntity) Step(dt float64) {
	e.State = e.State.Propagate(e.Acceleration, dt)
}

// FieldChanged counts reflected attribute writes.
func (e *PhysicalEntity) FieldChanged(name string, _, _ any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.changed == nil {
		e.changed = make(map[string]int)
	}
	e.changed[name]++
}

// Changes returns how often the named attribute was reflected.
func (e *PhysicalEntity) Changes(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changed[name]
}
