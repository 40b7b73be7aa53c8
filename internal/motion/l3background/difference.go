package l3background

import (
	"fmt"
	"image"

	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
)

// Estimator computes the per-level difference pyramid between the
// current features and the learned background.
type Estimator struct {
	cfg  *DifferenceConfig
	roi  l1pixels.Pyramid
	diff l1pixels.Pyramid
	tmp  l1pixels.Pyramid
}

// NewEstimator allocates difference buffers. A non-nil roi must have
// the same shape as the buffers; NewEstimator panics otherwise.
func NewEstimator(cfg *DifferenceConfig, size image.Point, levels int, roi l1pixels.Pyramid) *Estimator {
	diff := l1pixels.NewPyramid(size, levels)
	if roi != nil && !diff.Compatible(roi) {
		panic(fmt.Sprintf("l3background: roi pyramid %v/%d does not match %v/%d",
			roi.Size(), roi.Levels(), size, levels))
	}
	return &Estimator{
		cfg:  cfg,
		roi:  roi,
		diff: diff,
		tmp:  l1pixels.NewPyramid(size, levels),
	}
}

// Difference returns the pyramid filled by the last Estimate.
func (e *Estimator) Difference() l1pixels.Pyramid { return e.diff }

// Estimate recomputes the difference pyramid from features.
func (e *Estimator) Estimate(features []*Feature) l1pixels.Pyramid {
	for i, d := range e.diff {
		l1pixels.Fill(d, 0)
		for _, f := range features {
			l1pixels.AddFeatureDifference(f.Value[i], f.Lo[i], f.Hi[i], f.Weight, d)
		}
	}
	if e.cfg.PropagateForward {
		// Ascending: level i reduces the already propagated level i-1.
		for i := 1; i < len(e.diff); i++ {
			l1pixels.Reduce4x4(e.diff[i-1], e.tmp[i])
			l1pixels.Maximum(e.diff[i], e.tmp[i], e.diff[i])
		}
	}
	if e.cfg.RoiMaskEnable && e.roi != nil {
		for i, d := range e.diff {
			l1pixels.And(d, e.roi[i], d)
		}
	}
	return e.diff
}
