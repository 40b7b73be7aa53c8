// Package l4segment owns Layer 4 (Segmentation) of the motion data model.
//
// Responsibilities: hysteresis region growing over the difference
// pyramid (seed, flood fill, area check, coarse-to-fine refinement) and
// the scene stability verdict derived from the refined mask.
// Key types: MovingRegion, Engine, Result, StabilityMonitor.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
package l4segment
