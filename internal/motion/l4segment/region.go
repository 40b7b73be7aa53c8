package l4segment

import (
	"image"
	"time"
)

// Mask codes. Values from MaskFirstIndex upward label regions.
const (
	MaskNotVisited uint8 = 0
	MaskSeed       uint8 = 1
	MaskInvalid    uint8 = 2
	MaskFirstIndex uint8 = 3
)

// MaxRegions is the number of region labels available per frame.
const MaxRegions = 256 - int(MaskFirstIndex)

// MovingRegion is a connected area of significant difference found in
// one frame. Rectangles are tight, with exclusive Max. Regions do not
// outlive the frame they were found in.
type MovingRegion struct {
	Index  uint8
	Level  int               // discovery level
	Rects  []image.Rectangle // per level, index 0 is full resolution
	Rect   image.Rectangle   // level-0 rectangle
	Center image.Point       // level-0 rectangle center
	Time   time.Duration

	// Object and Nearest are tracker indices set during tracking; -1 when unset.
	Object  int
	Nearest int
}

// Area returns the level-0 bounding-box area.
func (r *MovingRegion) Area() int {
	return r.Rect.Dx() * r.Rect.Dy()
}

func rectCenter(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}
