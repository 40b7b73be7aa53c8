package l6objects

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motiondetect/internal/motion/l4segment"
	"github.com/banshee-data/motiondetect/internal/motion/l5tracks"
)

// Reporter assembles Metadata in caller coordinates.
type Reporter struct {
	halfRange int
	scale     int
	xs, ys    []float64
}

// NewReporter returns a reporter smoothing over ±halfRange samples and
// scaling processed coordinates by scale.
func NewReporter(halfRange, scale int) *Reporter {
	return &Reporter{halfRange: halfRange, scale: scale}
}

// Report builds the metadata for one frame. Events are ordered: the
// stability edge, then ObjectOut, then ObjectIn.
func (r *Reporter) Report(objects, removed, promoted []*l5tracks.Object, tr l4segment.Transition) *Metadata {
	md := &Metadata{}
	switch tr {
	case l4segment.TransitionSabotageOn:
		md.Events = append(md.Events, newEvent(EventSabotageOn, SceneEventID))
	case l4segment.TransitionSabotageOff:
		md.Events = append(md.Events, newEvent(EventSabotageOff, SceneEventID))
	}
	for _, o := range removed {
		if o.Type == l5tracks.ObjectMoving {
			md.Events = append(md.Events, newEvent(EventObjectOut, o.ClassID))
		}
	}
	for _, o := range promoted {
		md.Events = append(md.Events, newEvent(EventObjectIn, o.ClassID))
	}

	for _, set := range [][]*l5tracks.Object{objects, removed} {
		for _, o := range set {
			if o.Type == l5tracks.ObjectMoving {
				md.Objects = append(md.Objects, r.info(o))
			}
		}
	}
	return md
}

func (r *Reporter) info(o *l5tracks.Object) ObjectInfo {
	s := r.scale
	info := ObjectInfo{
		ID:         o.ClassID,
		Rect:       image.Rect(o.Rect.Min.X*s, o.Rect.Min.Y*s, o.Rect.Max.X*s, o.Rect.Max.Y*s),
		Trajectory: make([]TrajectoryPoint, len(o.Trajectory)),
	}
	n := len(o.Trajectory)
	for i := range o.Trajectory {
		lo, hi := max(0, i-r.halfRange), min(n-1, i+r.halfRange)
		r.xs, r.ys = r.xs[:0], r.ys[:0]
		for _, p := range o.Trajectory[lo : hi+1] {
			r.xs = append(r.xs, float64(p.Point.X))
			r.ys = append(r.ys, float64(p.Point.Y))
		}
		info.Trajectory[i] = TrajectoryPoint{
			Point: image.Pt(
				int(math.Round(stat.Mean(r.xs, nil)*float64(s))),
				int(math.Round(stat.Mean(r.ys, nil)*float64(s))),
			),
			Time: o.Trajectory[i].Time,
		}
	}
	return info
}
