package l1pixels

import "image"

// The range kernels below treat their planes as flat buffers: every
// argument must come from pyramids with identical level sizes.

// InitRange seeds lo and hi from value and clears both counters.
func InitRange(value, lo, loCount, hi, hiCount *image.Gray) {
	copy(lo.Pix, value.Pix)
	copy(hi.Pix, value.Pix)
	Fill(loCount, 0)
	Fill(hiCount, 0)
}

// GrowRange widens [lo, hi] to include value.
func GrowRange(value, lo, hi *image.Gray) {
	for i, v := range value.Pix {
		if v < lo.Pix[i] {
			lo.Pix[i] = v
		}
		if v > hi.Pix[i] {
			hi.Pix[i] = v
		}
	}
}

// IncrementCount bumps loCount where value is below lo and hiCount
// where it is above hi. Counters saturate at 255.
func IncrementCount(value, lo, loCount, hi, hiCount *image.Gray) {
	for i, v := range value.Pix {
		if v < lo.Pix[i] && loCount.Pix[i] < 255 {
			loCount.Pix[i]++
		}
		if v > hi.Pix[i] && hiCount.Pix[i] < 255 {
			hiCount.Pix[i]++
		}
	}
}

// AdjustRange moves each bound by one step: outwards where its counter
// exceeds threshold, inwards where it is below. Counters are reset.
func AdjustRange(loCount, lo, hiCount, hi *image.Gray, threshold uint8) {
	for i := range lo.Pix {
		switch c := loCount.Pix[i]; {
		case c > threshold && lo.Pix[i] > 0:
			lo.Pix[i]--
		case c < threshold && lo.Pix[i] < 255:
			lo.Pix[i]++
		}
		switch c := hiCount.Pix[i]; {
		case c > threshold && hi.Pix[i] < 255:
			hi.Pix[i]++
		case c < threshold && hi.Pix[i] > 0:
			hi.Pix[i]--
		}
	}
	Fill(loCount, 0)
	Fill(hiCount, 0)
}
