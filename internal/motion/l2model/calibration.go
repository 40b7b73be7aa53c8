package l2model

import (
	"errors"
	"fmt"
	"image"

	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
)

var (
	// ErrNoPyramidLevels is returned when the frame or the minimal
	// object is too small for even one pyramid level.
	ErrNoPyramidLevels = errors.New("frame too small for any pyramid level")
	// ErrEmptyROI is returned when the region of interest covers no
	// searchable pixel.
	ErrEmptyROI = errors.New("region of interest covers no pixels")
)

// Scanline is a half-open run [Begin, End) of Pix offsets inside one row
// of a level plane.
type Scanline struct {
	Begin, End int
}

// SearchRegion is where segmentation looks for seeds. It is immutable
// after calibration.
type SearchRegion struct {
	Level     int
	Rect      image.Rectangle
	Scanlines []Scanline
}

// Geometry is the result of calibrating a Model against a frame size.
type Geometry struct {
	FrameSize   image.Point // caller frame size
	Size        image.Point // processed level-0 size
	ScaleLevels int         // halvings applied before processing
	LevelCount  int

	ObjectSize image.Point // minimal object in processed level-0 pixels
	ObjectArea float64     // minimal object area in processed level-0 pixels
	AreaMin    []int       // minimal region bounding-box area per level

	ROIMask       l1pixels.Pyramid // binary, 255 inside
	ROIArea       int              // nonzero level-0 ROI pixels
	SearchRegions []SearchRegion
}

// Scale returns the factor from processed to caller coordinates.
func (g *Geometry) Scale() int { return 1 << g.ScaleLevels }

// Bounds returns the processed level-0 frame rectangle.
func (g *Geometry) Bounds() image.Rectangle { return image.Rectangle{Max: g.Size} }

// ToFrame maps a processed level-0 point to caller frame coordinates.
func (g *Geometry) ToFrame(p image.Point) image.Point { return p.Mul(g.Scale()) }

// Calibrate derives the pyramid geometry for frameSize. It is a pure
// function of its arguments.
func Calibrate(frameSize image.Point, m Model, cfg *CalibrationConfig) (*Geometry, error) {
	if frameSize.X <= 0 || frameSize.Y <= 0 {
		return nil, fmt.Errorf("calibrate %v: %w", frameSize, ErrNoPyramidLevels)
	}

	objW := m.MinObjectSize.X / 2 * float64(frameSize.X)
	objH := m.MinObjectSize.Y / 2 * float64(frameSize.Y)
	area := objW * objH

	candidate := 0
	for sz, a := frameSize, area; sz.X >= cfg.LevelSizeMin && sz.Y >= cfg.LevelSizeMin && a >= cfg.ObjectAreaMin; {
		candidate++
		sz = l1pixels.LevelSize(sz)
		a /= 4
	}
	if candidate == 0 {
		return nil, fmt.Errorf("calibrate %v with object %.1fx%.1f px: %w", frameSize, objW, objH, ErrNoPyramidLevels)
	}

	scale := min(max(candidate-cfg.LevelCountMax, 0), cfg.ScaleLevelsMax)
	if candidate-scale < cfg.LevelCountMin {
		scale = max(candidate-cfg.LevelCountMin, 0)
	}

	g := &Geometry{
		FrameSize:   frameSize,
		Size:        frameSize,
		ScaleLevels: scale,
		LevelCount:  candidate - scale,
		ObjectArea:  area,
	}
	for i := 0; i < scale; i++ {
		g.Size = l1pixels.LevelSize(g.Size)
		objW, objH = objW/2, objH/2
		g.ObjectArea /= 4
	}
	g.ObjectSize = image.Pt(int(objW), int(objH))

	g.AreaMin = make([]int, g.LevelCount)
	for i := range g.AreaMin {
		g.AreaMin[i] = max(1, int(g.ObjectArea/float64(int(1)<<(2*i))))
	}

	g.ROIMask = l1pixels.NewPyramid(g.Size, g.LevelCount)
	rasterizeROI(g.ROIMask[0], m)
	for i := 1; i < g.LevelCount; i++ {
		l1pixels.Reduce4x4(g.ROIMask[i-1], g.ROIMask[i])
		l1pixels.Binarize(g.ROIMask[i])
	}
	g.ROIArea = l1pixels.CountAtLeast(g.ROIMask[0], 1)
	if g.ROIArea == 0 {
		return nil, fmt.Errorf("calibrate %v: %w", frameSize, ErrEmptyROI)
	}

	sr := searchRegion(g.ROIMask, g.LevelCount-1)
	if len(sr.Scanlines) == 0 {
		return nil, fmt.Errorf("calibrate %v: no search scanlines at level %d: %w", frameSize, sr.Level, ErrEmptyROI)
	}
	g.SearchRegions = []SearchRegion{sr}
	return g, nil
}

func rasterizeROI(dst *image.Gray, m Model) {
	switch {
	case m.ROIMask != nil:
		l1pixels.ToGray(dst, m.ROIMask)
		l1pixels.Binarize(dst)
	case len(m.ROI) >= 3:
		w, h := float64(dst.Rect.Dx()), float64(dst.Rect.Dy())
		pts := make([]l1pixels.PointF, len(m.ROI))
		for i, p := range m.ROI {
			pts[i] = l1pixels.PointF{X: (p.X + 1) / 2 * w, Y: (p.Y + 1) / 2 * h}
		}
		l1pixels.FillPolygon(dst, pts, 255)
	default:
		l1pixels.Fill(dst, 255)
	}
}

// searchRegion covers the ROI at level, kept one pixel clear of the
// plane border.
func searchRegion(roi l1pixels.Pyramid, level int) SearchRegion {
	plane := roi[level]
	sr := SearchRegion{
		Level: level,
		Rect:  l1pixels.Bounds(plane).Intersect(plane.Rect.Inset(1)),
	}
	for y := sr.Rect.Min.Y; y < sr.Rect.Max.Y; y++ {
		begin := -1
		for x := sr.Rect.Min.X; x <= sr.Rect.Max.X; x++ {
			o := plane.PixOffset(x, y)
			inside := x < sr.Rect.Max.X && plane.Pix[o] != 0
			switch {
			case inside && begin < 0:
				begin = o
			case !inside && begin >= 0:
				sr.Scanlines = append(sr.Scanlines, Scanline{Begin: begin, End: o})
				begin = -1
			}
		}
	}
	return sr
}

// Calibrator caches the geometry for the last frame size it saw.
type Calibrator struct {
	cfg   *CalibrationConfig
	model Model
	geom  *Geometry
}

// NewCalibrator returns a Calibrator for model.
func NewCalibrator(cfg *CalibrationConfig, m Model) *Calibrator {
	return &Calibrator{cfg: cfg, model: m}
}

// Calibrate returns the geometry for frameSize, reusing the cached
// result when the size is unchanged.
func (c *Calibrator) Calibrate(frameSize image.Point) (*Geometry, error) {
	if c.geom != nil && c.geom.FrameSize == frameSize {
		return c.geom, nil
	}
	g, err := Calibrate(frameSize, c.model, c.cfg)
	if err != nil {
		c.geom = nil
		return nil, err
	}
	c.geom = g
	return g, nil
}

// Geometry returns the cached geometry, or nil before a successful Calibrate.
func (c *Calibrator) Geometry() *Geometry { return c.geom }

// Model returns the scene model being calibrated.
func (c *Calibrator) Model() Model { return c.model }

// Reset replaces the configuration and model and drops the cache.
func (c *Calibrator) Reset(cfg *CalibrationConfig, m Model) {
	c.cfg = cfg
	c.model = m
	c.geom = nil
}
