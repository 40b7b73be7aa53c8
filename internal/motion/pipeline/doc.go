// Package pipeline provides the motion detector that orchestrates the
// per-frame stages from L1 Pixels through L6 Objects.
//
// This package is the composition root: it imports from layer packages
// (l1pixels, l2model, l3background, l4segment, l5tracks, l6objects) and
// the debug annotator, but none of those packages import pipeline/.
//
// A Detector is not safe for concurrent use; callers feed frames from
// one goroutine in non-decreasing timestamp order.
package pipeline
