// Package l6objects owns Layer 6 (Objects) of the motion data model.
//
// Responsibilities: promoting tracked objects to reportable moving
// objects, and building the per-frame Metadata (smoothed trajectories
// in caller coordinates plus ObjectIn/ObjectOut/SabotageOn/SabotageOff
// events).
// Key types: Classifier, Reporter, Metadata, Event.
//
// Dependency rule: L6 may depend on L1-L5.
package l6objects
