// Package model binds application types to wire classes.
//
// A class is declared once per Go type by listing its fields explicitly.
// Each field names its wire name, codec kind, declaration scope and an
// accessor pair:
//
//	var FrameClass = model.Must(model.NewObjectClass[Frame]("HLAobjectRoot.ReferenceFrame",
//	    model.Attribute("name", codec.KindUnicodeString, model.ScopePublishSubscribe,
//	        func(f *Frame) string { return f.Name },
//	        func(f *Frame, v string) { f.Name = v }),
//	    model.Attribute("parent_name", codec.KindUnicodeString, model.ScopePublishSubscribe,
//	        func(f *Frame) string { return f.Parent },
//	        func(f *Frame, v string) { f.Parent = v }),
//	))
//
// # Validation
//
// Construction fails with ErrInvalidClass when the class name is missing,
// a wire name repeats, an accessor is missing, or the accessor type is not
// compatible with the codec's native type. Named types whose underlying
// type matches the codec (enumerations over int32, for example) are
// converted automatically.
//
// # Scope
//
// Attribute scopes decide the publishable and subscribable subsets:
//
//	PUBLISH            publishable only
//	SUBSCRIBE          subscribable only
//	PUBLISH_SUBSCRIBE  both
//	NONE               neither
//
// Interaction parameters are always both.
//
// # Encoding
//
// Encode omits null values (nil pointers, slices, maps; absent optional
// values) so partial updates are possible. Decode stages every value
// before writing any, so a malformed value leaves the element unchanged.
package model
