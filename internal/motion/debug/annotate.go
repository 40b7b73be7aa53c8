// Package debug draws detector state onto caller frames for inspection.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/banshee-data/motiondetect/internal/config"
	"github.com/banshee-data/motiondetect/internal/motion/l4segment"
	"github.com/banshee-data/motiondetect/internal/motion/l5tracks"
)

var (
	regionColor     = color.RGBA{G: 255, A: 255}
	objectColor     = color.RGBA{R: 255, G: 255, A: 255}
	trajectoryColor = color.RGBA{R: 255, G: 64, B: 64, A: 255}
)

// AnnotationConfig selects what Annotator draws.
type AnnotationConfig struct {
	Difference    bool // Level-1 difference inset in the bottom-right corner (default: false)
	MovingRegions bool // Outline of every region found this frame (default: true)
	Objects       bool // Rect, id and trajectory of moving objects (default: true)
}

// DefaultAnnotationConfig returns an AnnotationConfig with built-in defaults.
func DefaultAnnotationConfig() *AnnotationConfig {
	return AnnotationConfigFromTuning(config.EmptyTuningConfig())
}

// AnnotationConfigFromTuning builds an AnnotationConfig from a loaded TuningConfig.
func AnnotationConfigFromTuning(cfg *config.TuningConfig) *AnnotationConfig {
	return &AnnotationConfig{
		Difference:    cfg.GetDebugAnnotateDifference(),
		MovingRegions: cfg.GetDebugAnnotateMovingRegions(),
		Objects:       cfg.GetDebugAnnotateObjects(),
	}
}

// Scene is the detector state for one frame. Coordinates are processed
// level-0 pixels; Scale maps them to the output image.
type Scene struct {
	Scale      int
	Regions    []*l4segment.MovingRegion
	Objects    []*l5tracks.Object
	Difference *image.Gray
}

// Annotator renders a Scene.
type Annotator struct {
	cfg  *AnnotationConfig
	face font.Face
}

// NewAnnotator returns an annotator labelling with basicfont.Face7x13.
func NewAnnotator(cfg *AnnotationConfig) *Annotator {
	return &Annotator{cfg: cfg, face: basicfont.Face7x13}
}

// Draw paints s onto dst, which must hold the caller frame.
func (a *Annotator) Draw(dst draw.Image, s Scene) error {
	if s.Scale < 1 {
		return fmt.Errorf("annotate: scale must be positive, got %d", s.Scale)
	}
	if a.cfg.Difference && s.Difference != nil {
		a.drawDifference(dst, s.Difference)
	}
	if a.cfg.MovingRegions {
		for _, r := range s.Regions {
			strokeRect(dst, scaleRect(r.Rect, s.Scale), regionColor)
		}
	}
	if a.cfg.Objects {
		for _, o := range s.Objects {
			if o.Type != l5tracks.ObjectMoving {
				continue
			}
			rect := scaleRect(o.Rect, s.Scale)
			strokeRect(dst, rect, objectColor)
			for i := 1; i < len(o.Trajectory); i++ {
				line(dst, o.Trajectory[i-1].Point.Mul(s.Scale), o.Trajectory[i].Point.Mul(s.Scale), trajectoryColor)
			}
			a.label(dst, rect.Min, strconv.Itoa(o.ClassID))
		}
	}
	return nil
}

func (a *Annotator) label(dst draw.Image, at image.Point, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(objectColor),
		Face: a.face,
		Dot:  fixed.P(at.X+2, at.Y+a.face.Metrics().Ascent.Ceil()+1),
	}
	d.DrawString(text)
}

// drawDifference copies diff into the bottom-right corner of dst.
func (a *Annotator) drawDifference(dst draw.Image, diff *image.Gray) {
	b := dst.Bounds()
	sz := diff.Rect.Size()
	r := image.Rectangle{Min: b.Max.Sub(sz), Max: b.Max}.Intersect(b)
	draw.Draw(dst, r, diff, diff.Rect.Min, draw.Src)
}

func scaleRect(r image.Rectangle, s int) image.Rectangle {
	return image.Rectangle{Min: r.Min.Mul(s), Max: r.Max.Mul(s)}
}

func strokeRect(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}

// line draws a 1-pixel segment with Bresenham's algorithm.
func line(dst draw.Image, p0, p1 image.Point, c color.Color) {
	dx, dy := abs(p1.X-p0.X), -abs(p1.Y-p0.Y)
	sx, sy := sign(p1.X-p0.X), sign(p1.Y-p0.Y)
	e := dx + dy
	for p := p0; ; {
		dst.Set(p.X, p.Y, c)
		if p == p1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
