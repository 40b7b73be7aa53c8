package l1pixels

import (
	"image"

	"golang.org/x/image/draw"
)

// ToGray writes src into dst. Color models are converted to gray and,
// when the sizes differ, src is resampled bilinearly to fill dst.
func ToGray(dst *image.Gray, src image.Image) {
	sb := src.Bounds()
	if sb.Size() != dst.Rect.Size() {
		draw.BiLinear.Scale(dst, dst.Rect, src, sb, draw.Src, nil)
		return
	}
	if g, ok := src.(*image.Gray); ok {
		w := sb.Dx()
		for y := 0; y < sb.Dy(); y++ {
			so := g.PixOffset(sb.Min.X, sb.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], g.Pix[so:so+w])
		}
		return
	}
	draw.Draw(dst, dst.Rect, src, sb.Min, draw.Src)
}
