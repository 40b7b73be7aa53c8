// Package l1pixels owns Layer 1 (Pixels) of the motion data model.
//
// Responsibilities: gray plane and pyramid buffers, pyramid reduction,
// format conversion, and the per-pixel kernels used by the higher
// layers (gradients, range statistics, feature difference, mask
// propagation and polygon rasterization).
// Key types: Pyramid, PointF.
//
// Dependency rule: L1 has no dependency on any other motion layer.
// Kernels never allocate per call; callers own every buffer.
package l1pixels
