package l1pixels

import "image"

// AddFeatureDifference accumulates into dst the weighted squared excess
// of value outside [lo, hi]. weight is 8.8 fixed point and dst saturates
// at 255.
func AddFeatureDifference(value, lo, hi *image.Gray, weight uint16, dst *image.Gray) {
	w := int(weight)
	for i, v := range value.Pix {
		excess := 0
		if l := lo.Pix[i]; v < l {
			excess += int(l - v)
		}
		if h := hi.Pix[i]; v > h {
			excess += int(v - h)
		}
		if excess == 0 {
			continue
		}
		sum := int(dst.Pix[i]) + (w*excess*excess)>>16
		if sum > 255 {
			sum = 255
		}
		dst.Pix[i] = uint8(sum)
	}
}

// Maximum stores the per-pixel maximum of a and b in dst.
func Maximum(a, b, dst *image.Gray) {
	for i, v := range a.Pix {
		if u := b.Pix[i]; u > v {
			v = u
		}
		dst.Pix[i] = v
	}
}

// And stores the bitwise AND of a and b in dst.
func And(a, b, dst *image.Gray) {
	for i, v := range a.Pix {
		dst.Pix[i] = v & b.Pix[i]
	}
}
