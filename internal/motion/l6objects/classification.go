package l6objects

import (
	"image"
	"math"
	"time"

	"github.com/banshee-data/motiondetect/internal/motion/l5tracks"
)

// Classifier promotes static objects that have moved far enough for
// long enough. Classification ids are sequential per classifier.
type Classifier struct {
	cfg        *ClassifierConfig
	shiftMinSq float64
	nextID     int
}

// NewClassifier returns a classifier for a processed frame of size.
func NewClassifier(cfg *ClassifierConfig, size image.Point) *Classifier {
	diag := math.Hypot(float64(size.X), float64(size.Y))
	shift := cfg.ShiftMin * diag
	return &Classifier{cfg: cfg, shiftMinSq: shift * shift}
}

// Classify promotes eligible objects and returns them in object order.
func (c *Classifier) Classify(objects []*l5tracks.Object, now time.Duration) []*l5tracks.Object {
	var promoted []*l5tracks.Object
	for _, o := range objects {
		if o.Type != l5tracks.ObjectStatic || now-o.FirstTime < c.cfg.TimeMin {
			continue
		}
		d := o.Center.Sub(o.FirstPoint)
		if float64(d.X*d.X+d.Y*d.Y) < c.shiftMinSq {
			continue
		}
		o.Type = l5tracks.ObjectMoving
		o.ClassID = c.nextID
		c.nextID++
		promoted = append(promoted, o)
	}
	return promoted
}
