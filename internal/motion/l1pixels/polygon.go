package l1pixels

import (
	"image"
	"math"
	"sort"
)

// PointF is a point in continuous pixel coordinates, where the center
// of pixel (x, y) sits at (x+0.5, y+0.5).
type PointF struct {
	X, Y float64
}

// FillPolygon sets to v every pixel whose center lies inside the
// polygon, using the even-odd rule. Polygons with fewer than three
// vertices fill nothing.
func FillPolygon(plane *image.Gray, pts []PointF, v uint8) {
	if len(pts) < 3 {
		return
	}
	w, h := plane.Rect.Dx(), plane.Rect.Dy()
	xs := make([]float64, 0, len(pts))
	for y := 0; y < h; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a.Y <= yc) == (b.Y <= yc) {
				continue
			}
			xs = append(xs, a.X+(yc-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		sort.Float64s(xs)
		row := plane.Pix[y*plane.Stride : y*plane.Stride+w]
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := max(0, int(math.Ceil(xs[i]-0.5)))
			x1 := min(w, int(math.Ceil(xs[i+1]-0.5)))
			for x := x0; x < x1; x++ {
				row[x] = v
			}
		}
	}
}
