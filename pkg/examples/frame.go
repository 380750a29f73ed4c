package examples

import (
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/codec"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
)

// Class names.
const (
	ReferenceFrameClassName        = "HLAobjectRoot.ReferenceFrame"
	PhysicalEntityClassName        = "HLAobjectRoot.PhysicalEntity"
	ModeTransitionRequestClassName = "HLAinteractionRoot.ModeTransitionRequest"
)

// ReferenceFrame is a node of the federation's frame tree. The root frame
// has no parent.
type ReferenceFrame struct {
	Name       string
	ParentName string
	State      SpaceTimeCoordinateState
}

// ReferenceFrameClass binds ReferenceFrame with every attribute published
// and subscribed.
var ReferenceFrameClass = model.Must(model.NewObjectClass(ReferenceFrameClassName,
	model.Attribute("name", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(f *ReferenceFrame) string { return f.Name },
		func(f *ReferenceFrame, v string) { f.Name = v }),
	model.OptionalAttribute("parent_name", codec.KindUnicodeString, model.ScopePublishSubscribe,
		func(f *ReferenceFrame) (string, bool) { return f.ParentName, f.ParentName != "" },
		func(f *ReferenceFrame, v string) { f.ParentName = v }),
	model.Attribute("state", codec.KindCBOR, model.ScopePublishSubscribe,
		func(f *ReferenceFrame) SpaceTimeCoordinateState { return f.State },
		func(f *ReferenceFrame, v SpaceTimeCoordinateState) { f.State = v }),
))

// IsRoot reports whether the frame has no parent.
func (f *ReferenceFrame) IsRoot() bool { return f.ParentName == "" }
