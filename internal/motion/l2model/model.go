package l2model

import (
	"fmt"
	"image"
)

// Point is a normalized image coordinate. (-1, -1) is the top-left
// corner of the frame and (1, 1) the bottom-right.
type Point struct {
	X, Y float64
}

// Model describes the scene independently of any frame size.
type Model struct {
	// MinObjectSize is the smallest object of interest, in normalized
	// units where 2 spans the whole frame.
	MinObjectSize Point
	// ROI is a polygon in normalized coordinates. Fewer than three
	// points selects the whole frame.
	ROI []Point
	// ROIMask, when set, takes precedence over ROI. Nonzero pixels are
	// inside. It is resized to the processed frame size.
	ROIMask *image.Gray
}

// DefaultModel returns a whole-frame model with a 5% object size.
func DefaultModel() Model {
	return Model{MinObjectSize: Point{X: 0.1, Y: 0.1}}
}

// Validate checks that the model can be calibrated.
func (m Model) Validate() error {
	if m.MinObjectSize.X <= 0 || m.MinObjectSize.X > 2 {
		return fmt.Errorf("MinObjectSize.X must be in (0, 2], got %f", m.MinObjectSize.X)
	}
	if m.MinObjectSize.Y <= 0 || m.MinObjectSize.Y > 2 {
		return fmt.Errorf("MinObjectSize.Y must be in (0, 2], got %f", m.MinObjectSize.Y)
	}
	for i, p := range m.ROI {
		if p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 {
			return fmt.Errorf("ROI point %d (%f, %f) outside [-1, 1]", i, p.X, p.Y)
		}
	}
	if m.ROIMask != nil && m.ROIMask.Rect.Empty() {
		return fmt.Errorf("ROIMask has empty bounds")
	}
	return nil
}
