// Package l2model owns Layer 2 (Model) of the motion data model.
//
// Responsibilities: the scene model supplied by the caller (minimal
// object size, region of interest) and its calibration against a frame
// size into pyramid geometry, ROI masks and search regions.
// Key types: Model, Geometry, SearchRegion, Calibrator.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2model
