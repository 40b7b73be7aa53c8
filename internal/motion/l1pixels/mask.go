package l1pixels

import "image"

// ShrinkRegion returns the tight bounding box of pixels equal to index
// inside r, or an empty rectangle when there are none.
func ShrinkRegion(mask *image.Gray, r image.Rectangle, index uint8) image.Rectangle {
	r = r.Intersect(mask.Rect)
	minX, minY := r.Max.X, r.Max.Y
	maxX, maxY := r.Min.X-1, r.Min.Y-1
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := mask.Pix[y*mask.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] != index {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// ChangeIndex relabels pixels equal to from inside r as to.
func ChangeIndex(mask *image.Gray, r image.Rectangle, from, to uint8) {
	r = r.Intersect(mask.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := mask.Pix[y*mask.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] == from {
				row[x] = to
			}
		}
	}
}

// Propagate2x2 pushes a region label one pyramid level down. For every
// parent pixel in r labelled index, each of its 2x2 children in child
// is relabelled: index when diff exceeds threshold, empty otherwise.
// Children already holding invalid or a different label >= invalid are
// left untouched. Each child is decided by its own diff value; a child
// whose covering parents all hold index is not forced to index.
func Propagate2x2(parent, child, diff *image.Gray, r image.Rectangle, index, invalid, empty, threshold uint8) {
	r = r.Intersect(parent.Rect)
	cb := child.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		prow := parent.Pix[y*parent.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			if prow[x] != index {
				continue
			}
			for cy := 2 * y; cy < 2*y+2 && cy < cb.Max.Y; cy++ {
				for cx := 2 * x; cx < 2*x+2 && cx < cb.Max.X; cx++ {
					o := cy*child.Stride + cx
					if c := child.Pix[o]; c >= invalid && c != index {
						continue
					}
					if diff.Pix[cy*diff.Stride+cx] > threshold {
						child.Pix[o] = index
					} else {
						child.Pix[o] = empty
					}
				}
			}
		}
	}
}
