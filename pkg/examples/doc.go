// Package examples provides reference class bindings for a space
// exploration federation, built on pkg/model.
//
// The examples show:
//   - Object classes with structured CBOR state (ReferenceFrame, PhysicalEntity)
//   - Optional attributes that are omitted when unset
//   - Enumerated interaction parameters (ModeTransitionRequest)
//   - Change notification through model.ChangeListener
//
// These types can serve as templates for real federate data models.
package examples
