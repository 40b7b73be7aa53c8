package l1pixels

import "image"

// reduceWeights are the separable [1 3 3 1] taps at offsets -1..2.
var reduceWeights = [4]int{1, 3, 3, 1}

// Reduce4x4 downsamples src into dst by 2 using a 4x4 binomial kernel
// with clamped borders. dst must be LevelSize(src) in size.
func Reduce4x4(src, dst *image.Gray) {
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < dh; y++ {
		var rows [4]int
		for k := range rows {
			rows[k] = clampIndex(2*y-1+k, sh) * src.Stride
		}
		out := dst.Pix[y*dst.Stride : y*dst.Stride+dw]
		for x := range out {
			var cols [4]int
			for k := range cols {
				cols[k] = clampIndex(2*x-1+k, sw)
			}
			sum := 0
			for ky, ro := range rows {
				wy := reduceWeights[ky]
				for kx, co := range cols {
					sum += wy * reduceWeights[kx] * int(src.Pix[ro+co])
				}
			}
			out[x] = uint8((sum + 32) >> 6)
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
