package l1pixels

import "image"

// BoostedSaturatedGradient writes the horizontal and vertical central
// differences of src into dx and dy. Each difference is clamped to
// [-saturation, saturation], shifted by saturation and multiplied by
// boost, so a flat area maps to saturation*boost. Border pixels are 0.
// Either output may be nil.
func BoostedSaturatedGradient(src, dx, dy *image.Gray, saturation, boost int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for _, out := range []*image.Gray{dx, dy} {
		if out != nil {
			Fill(out, 0)
		}
	}
	if w < 3 || h < 3 {
		return
	}
	s := src.Stride
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			o := y*s + x
			if dx != nil {
				d := int(src.Pix[o+1]) - int(src.Pix[o-1])
				dx.Pix[y*dx.Stride+x] = boostedSaturate(d, saturation, boost)
			}
			if dy != nil {
				d := int(src.Pix[o+s]) - int(src.Pix[o-s])
				dy.Pix[y*dy.Stride+x] = boostedSaturate(d, saturation, boost)
			}
		}
	}
}

func boostedSaturate(d, saturation, boost int) uint8 {
	if d < -saturation {
		d = -saturation
	} else if d > saturation {
		d = saturation
	}
	v := (d + saturation) * boost
	if v > 255 {
		return 255
	}
	return uint8(v)
}
