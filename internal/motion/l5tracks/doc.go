// Package l5tracks owns Layer 5 (Tracks) of the motion data model.
//
// Responsibilities: frame-to-frame correspondence between moving
// regions and tracked objects (nearest match, mutual-containment
// linking, creation of new objects, removal of stale ones) and the
// bounded per-object trajectory.
// Key types: Object, Position, Tracker.
//
// Dependency rule: L5 may depend on L1-L4, but never on L6.
package l5tracks
