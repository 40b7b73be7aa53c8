// Package l3background owns Layer 3 (Background) of the motion data model.
//
// Responsibilities: texture feature extraction (gray value and boosted
// gradients), the per-pixel background range model with its
// Init/Grow/Update state machine, and the weighted difference between
// the current features and the learned background.
// Key types: Feature, Texture, Background, BackgroundState, Estimator.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3background
