package l1pixels

import (
	"image"
)

// Pyramid is a stack of gray planes. Level 0 is full resolution and
// level i+1 is ((w+1)/2, (h+1)/2) of level i. Every plane is allocated
// with image.NewGray, so Stride equals width and Rect starts at (0, 0).
type Pyramid []*image.Gray

// LevelSize returns the size of the level following one of size sz.
func LevelSize(sz image.Point) image.Point {
	return image.Pt((sz.X+1)/2, (sz.Y+1)/2)
}

// NewPyramid allocates a zeroed pyramid with the given level-0 size.
func NewPyramid(size image.Point, levels int) Pyramid {
	p := make(Pyramid, levels)
	for i := range p {
		p[i] = image.NewGray(image.Rect(0, 0, size.X, size.Y))
		size = LevelSize(size)
	}
	return p
}

// Levels returns the number of levels.
func (p Pyramid) Levels() int { return len(p) }

// Size returns the level-0 size, or the zero point for an empty pyramid.
func (p Pyramid) Size() image.Point {
	if len(p) == 0 {
		return image.Point{}
	}
	return p[0].Rect.Size()
}

// Compatible reports whether o has the same level count and per-level sizes.
func (p Pyramid) Compatible(o Pyramid) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i].Rect != o[i].Rect {
			return false
		}
	}
	return true
}

// Fill sets every pixel of every level to v.
func (p Pyramid) Fill(v uint8) {
	for _, plane := range p {
		Fill(plane, v)
	}
}

// Build rebuilds levels 1..n-1 from level 0 by successive Reduce4x4.
func (p Pyramid) Build() {
	for i := 1; i < len(p); i++ {
		Reduce4x4(p[i-1], p[i])
	}
}

// Fill sets every pixel of plane to v.
func Fill(plane *image.Gray, v uint8) {
	pix := plane.Pix
	for i := range pix {
		pix[i] = v
	}
}

// FillFrame paints the one-pixel outline of r with v. Parts of the
// outline outside the plane are skipped.
func FillFrame(plane *image.Gray, r image.Rectangle, v uint8) {
	if r.Empty() {
		return
	}
	b := plane.Rect
	set := func(x, y int) {
		if image.Pt(x, y).In(b) {
			plane.Pix[plane.PixOffset(x, y)] = v
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y-1)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X-1, y)
	}
}

// Binarize maps every nonzero pixel to 255.
func Binarize(plane *image.Gray) {
	for i, v := range plane.Pix {
		if v != 0 {
			plane.Pix[i] = 255
		}
	}
}

// CountAtLeast returns the number of pixels with value >= v.
func CountAtLeast(plane *image.Gray, v uint8) int {
	n := 0
	for _, p := range plane.Pix {
		if p >= v {
			n++
		}
	}
	return n
}

// Bounds returns the tight bounding box of nonzero pixels, or an empty
// rectangle when the plane is all zero.
func Bounds(plane *image.Gray) image.Rectangle {
	var r image.Rectangle
	first := true
	w, h := plane.Rect.Dx(), plane.Rect.Dy()
	for y := 0; y < h; y++ {
		row := plane.Pix[y*plane.Stride : y*plane.Stride+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if first {
				r, first = px, false
			} else {
				r = r.Union(px)
			}
		}
	}
	return r
}
