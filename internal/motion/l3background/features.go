package l3background

import (
	"image"

	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
)

// FeatureKind identifies a texture feature.
type FeatureKind int

const (
	FeatureGray FeatureKind = iota
	FeatureDx
	FeatureDy
)

func (k FeatureKind) String() string {
	switch k {
	case FeatureGray:
		return "gray"
	case FeatureDx:
		return "dx"
	case FeatureDy:
		return "dy"
	}
	return "unknown"
}

// Feature holds one texture channel with its learned background range.
// Value is written by Texture; the remaining pyramids belong to Background.
type Feature struct {
	Kind   FeatureKind
	Weight uint16 // 8.8 fixed point

	Value   l1pixels.Pyramid
	Lo      l1pixels.Pyramid
	LoCount l1pixels.Pyramid
	Hi      l1pixels.Pyramid
	HiCount l1pixels.Pyramid
}

func newFeature(kind FeatureKind, weight float64, value l1pixels.Pyramid) *Feature {
	size, levels := value.Size(), value.Levels()
	return &Feature{
		Kind:    kind,
		Weight:  uint16(weight * 256),
		Value:   value,
		Lo:      l1pixels.NewPyramid(size, levels),
		LoCount: l1pixels.NewPyramid(size, levels),
		Hi:      l1pixels.NewPyramid(size, levels),
		HiCount: l1pixels.NewPyramid(size, levels),
	}
}

// Texture extracts the active features from processed gray frames.
type Texture struct {
	cfg      *TextureConfig
	gray     l1pixels.Pyramid
	dx, dy   l1pixels.Pyramid
	features []*Feature
}

// NewTexture allocates feature buffers for a pyramid of the given shape.
// Features with zero weight are not allocated.
func NewTexture(cfg *TextureConfig, size image.Point, levels int) *Texture {
	t := &Texture{cfg: cfg, gray: l1pixels.NewPyramid(size, levels)}
	if cfg.GrayWeight > 0 {
		t.features = append(t.features, newFeature(FeatureGray, cfg.GrayWeight, t.gray))
	}
	if cfg.DxWeight > 0 {
		t.dx = l1pixels.NewPyramid(size, levels)
		t.features = append(t.features, newFeature(FeatureDx, cfg.DxWeight, t.dx))
	}
	if cfg.DyWeight > 0 {
		t.dy = l1pixels.NewPyramid(size, levels)
		t.features = append(t.features, newFeature(FeatureDy, cfg.DyWeight, t.dy))
	}
	return t
}

// Features returns the active features in gray, dx, dy order.
func (t *Texture) Features() []*Feature { return t.features }

// Gray returns the gray pyramid of the last extracted frame.
func (t *Texture) Gray() l1pixels.Pyramid { return t.gray }

// Extract fills every feature value pyramid from frame. The frame is
// converted to gray and resampled to the level-0 size when needed.
func (t *Texture) Extract(frame image.Image) {
	l1pixels.ToGray(t.gray[0], frame)
	t.gray.Build()
	if t.dx == nil && t.dy == nil {
		return
	}
	for i, g := range t.gray {
		var dx, dy *image.Gray
		if t.dx != nil {
			dx = t.dx[i]
		}
		if t.dy != nil {
			dy = t.dy[i]
		}
		l1pixels.BoostedSaturatedGradient(g, dx, dy, t.cfg.GradientSaturation, t.cfg.GradientBoost)
	}
}
