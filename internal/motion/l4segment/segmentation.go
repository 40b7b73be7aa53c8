package l4segment

import (
	"image"
	"time"

	"github.com/banshee-data/motiondetect/internal/monitoring"
	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
	"github.com/banshee-data/motiondetect/internal/motion/l2model"
)

// Result is the outcome of segmenting one frame.
type Result struct {
	Regions []*MovingRegion
	// Truncated is set when the label space ran out and the rest of the
	// frame was skipped.
	Truncated bool
}

// Engine segments difference pyramids into moving regions. It owns the
// label mask pyramid, which stays valid until the next Segment call.
type Engine struct {
	cfg          *SegmentationConfig
	geom         *l2model.Geometry
	mask         l1pixels.Pyramid
	stack        []image.Point
	creationMin  uint8
	expansionMin uint8
}

// NewEngine allocates an engine for the calibrated geometry.
func NewEngine(cfg *SegmentationConfig, geom *l2model.Geometry) *Engine {
	return &Engine{
		cfg:          cfg,
		geom:         geom,
		mask:         l1pixels.NewPyramid(geom.Size, geom.LevelCount),
		creationMin:  cfg.CreationMin(),
		expansionMin: cfg.ExpansionMin(),
	}
}

// Mask returns the label mask of the last segmented frame.
func (e *Engine) Mask() l1pixels.Pyramid { return e.mask }

// Segment finds the moving regions in diff for the frame at now.
func (e *Engine) Segment(diff l1pixels.Pyramid, now time.Duration) Result {
	e.mask.Fill(MaskNotVisited)
	for _, m := range e.mask {
		l1pixels.FillFrame(m, m.Rect, MaskInvalid)
	}

	var res Result
	next := int(MaskFirstIndex)
	for _, sr := range e.geom.SearchRegions {
		m, d := e.mask[sr.Level], diff[sr.Level]
		l1pixels.FillFrame(m, sr.Rect.Inset(-1), MaskInvalid)

		for _, sl := range sr.Scanlines {
			for o := sl.Begin; o < sl.End; o++ {
				if d.Pix[o] > e.creationMin && m.Pix[o] == MaskNotVisited {
					m.Pix[o] = MaskSeed
				}
			}
		}

		window := l1pixels.ShrinkRegion(m, sr.Rect, MaskSeed)
		if window.Empty() {
			continue
		}
		window = window.Inset(-1).Intersect(sr.Rect)

		for y := window.Min.Y; y < window.Max.Y && !res.Truncated; y++ {
			for x := window.Min.X; x < window.Max.X; x++ {
				if m.Pix[m.PixOffset(x, y)] != MaskSeed {
					continue
				}
				if next > 255 {
					res.Truncated = true
					monitoring.Debugf("segmentation: %d regions, label space exhausted at level %d (%d,%d)",
						len(res.Regions), sr.Level, x, y)
					break
				}
				if r := e.grow(diff, sr.Level, image.Pt(x, y), uint8(next), now); r != nil {
					res.Regions = append(res.Regions, r)
					next++
				}
			}
		}
		if res.Truncated {
			break
		}
	}
	return res
}

// grow floods a region from seed at level and refines it down to level
// 0. It returns nil when the region is rejected; its label is then
// replaced by MaskInvalid and may be reused.
func (e *Engine) grow(diff l1pixels.Pyramid, level int, seed image.Point, index uint8, now time.Duration) *MovingRegion {
	rect := e.fill(e.mask[level], diff[level], seed, index)
	if rect.Dx()*rect.Dy() < e.geom.AreaMin[level] {
		l1pixels.ChangeIndex(e.mask[level], rect, index, MaskInvalid)
		return nil
	}

	rects := make([]image.Rectangle, level+1)
	rects[level] = rect
	for l := level; l > 0; l-- {
		parent, child := e.mask[l], e.mask[l-1]
		l1pixels.Propagate2x2(parent, child, diff[l-1], rects[l], index, MaskInvalid, MaskNotVisited, e.expansionMin)

		p := rects[l]
		window := image.Rect(2*p.Min.X-1, 2*p.Min.Y-1, 2*p.Max.X+1, 2*p.Max.Y+1).
			Inset(-1).
			Intersect(child.Rect.Inset(1))
		rects[l-1] = l1pixels.ShrinkRegion(child, window, index)
		if rects[l-1].Empty() {
			for k := l; k <= level; k++ {
				l1pixels.ChangeIndex(e.mask[k], rects[k], index, MaskInvalid)
			}
			return nil
		}
	}

	return &MovingRegion{
		Index:   index,
		Level:   level,
		Rects:   rects,
		Rect:    rects[0],
		Center:  rectCenter(rects[0]),
		Time:    now,
		Object:  -1,
		Nearest: -1,
	}
}

// fill labels the 4-connected component reachable from seed through
// pixels whose difference exceeds the expansion threshold and returns
// its bounding box.
func (e *Engine) fill(m, d *image.Gray, seed image.Point, index uint8) image.Rectangle {
	b := m.Rect
	m.Pix[m.PixOffset(seed.X, seed.Y)] = index
	rect := image.Rectangle{Min: seed, Max: seed.Add(image.Pt(1, 1))}
	e.stack = append(e.stack[:0], seed)
	for len(e.stack) > 0 {
		p := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		rect = rect.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})

		for _, q := range [4]image.Point{{p.X - 1, p.Y}, {p.X + 1, p.Y}, {p.X, p.Y - 1}, {p.X, p.Y + 1}} {
			if !q.In(b) {
				continue
			}
			o := m.PixOffset(q.X, q.Y)
			if m.Pix[o] <= MaskSeed && d.Pix[o] > e.expansionMin {
				m.Pix[o] = index
				e.stack = append(e.stack, q)
			}
		}
	}
	return rect
}
