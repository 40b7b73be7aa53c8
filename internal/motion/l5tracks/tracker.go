package l5tracks

import (
	"image"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motiondetect/internal/motion/l4segment"
)

// ObjectType is the classification state of a tracked object.
type ObjectType string

const (
	ObjectStatic ObjectType = "static" // tracked, not yet shown to move
	ObjectMoving ObjectType = "moving" // promoted by the classifier
)

// Position is a snapshot of the region linked to an object in one frame.
type Position struct {
	Point image.Point
	Rect  image.Rectangle
	Time  time.Duration
}

// Object is a tracked entity persisting across frames.
type Object struct {
	ID      int // tracker-assigned, unique per detector
	ClassID int // classification id, -1 until promoted
	Type    ObjectType

	Center     image.Point
	Rect       image.Rectangle
	Trajectory []Position

	FirstPoint image.Point
	FirstTime  time.Duration
}

// LastTime returns the time of the most recent linked region.
func (o *Object) LastTime() time.Duration {
	return o.Trajectory[len(o.Trajectory)-1].Time
}

// Tracker associates moving regions with objects across frames.
type Tracker struct {
	cfg     *TrackerConfig
	bounds  image.Rectangle
	objects []*Object
	nextID  int

	ws, hs []float64
}

// NewTracker returns an empty tracker clipping object rects to bounds.
func NewTracker(cfg *TrackerConfig, bounds image.Rectangle) *Tracker {
	return &Tracker{cfg: cfg, bounds: bounds}
}

// Objects returns the live objects in creation order.
func (t *Tracker) Objects() []*Object { return t.objects }

// Reset drops every object and returns them.
func (t *Tracker) Reset() []*Object {
	removed := t.objects
	t.objects = nil
	return removed
}

// Update links this frame's regions to objects. When active is false
// (the background is not yet reliable) all objects are dropped. It
// returns the objects removed by this call.
func (t *Tracker) Update(regions []*l4segment.MovingRegion, active bool, now time.Duration) []*Object {
	if !active {
		return t.Reset()
	}

	t.findNearest(regions)
	t.link(regions)
	t.create(regions, now)
	return t.removeStale(now)
}

func (t *Tracker) findNearest(regions []*l4segment.MovingRegion) {
	for _, r := range regions {
		r.Nearest = -1
		best := 0
		for i, o := range t.objects {
			if d := distanceSq(r.Center, o.Center); r.Nearest < 0 || d < best {
				r.Nearest, best = i, d
			}
		}
	}
}

func (t *Tracker) link(regions []*l4segment.MovingRegion) {
	for i, o := range t.objects {
		var match *l4segment.MovingRegion
		best := 0
		for _, r := range regions {
			if r.Object >= 0 || r.Nearest != i || !t.linkable(o, r) {
				continue
			}
			if d := distanceSq(r.Center, o.Center); match == nil || d < best {
				match, best = r, d
			}
		}
		if match == nil {
			continue
		}
		match.Object = i
		t.extend(o, match)
	}
}

// linkable requires each center to fall inside the other's enlarged rect.
func (t *Tracker) linkable(o *Object, r *l4segment.MovingRegion) bool {
	return r.Center.In(t.enlarge(o.Rect)) && o.Center.In(t.enlarge(r.Rect))
}

func (t *Tracker) enlarge(r image.Rectangle) image.Rectangle {
	k := t.cfg.AdditionalLinking
	if k == 0 {
		return r
	}
	bx := int(float64(r.Dx()) * k)
	by := int(float64(r.Dy()) * k)
	return image.Rect(r.Min.X-bx, r.Min.Y-by, r.Max.X+bx, r.Max.Y+by)
}

func (t *Tracker) extend(o *Object, r *l4segment.MovingRegion) {
	o.Trajectory = append(o.Trajectory, Position{Point: r.Center, Rect: r.Rect, Time: r.Time})
	if n := len(o.Trajectory) - t.cfg.TrajectoryMax; n > 0 {
		o.Trajectory = append(o.Trajectory[:0], o.Trajectory[n:]...)
	}
	o.Center = r.Center
	o.Rect = t.averageRect(o.Trajectory, r.Center)
}

// averageRect centers the mean size of the most recent trajectory rects
// on c, clipped to the frame.
func (t *Tracker) averageRect(traj []Position, c image.Point) image.Rectangle {
	recent := traj[max(0, len(traj)-t.cfg.AveragingHalfRange):]
	t.ws, t.hs = t.ws[:0], t.hs[:0]
	for _, p := range recent {
		t.ws = append(t.ws, float64(p.Rect.Dx()))
		t.hs = append(t.hs, float64(p.Rect.Dy()))
	}
	w := int(stat.Mean(t.ws, nil) + 0.5)
	h := int(stat.Mean(t.hs, nil) + 0.5)
	tl := image.Pt(c.X-w/2, c.Y-h/2)
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(w, h))}.Intersect(t.bounds)
}

func (t *Tracker) create(regions []*l4segment.MovingRegion, now time.Duration) {
	existing := len(t.objects)
	for _, r := range regions {
		if r.Object >= 0 || t.covered(r.Center, existing) {
			continue
		}
		o := &Object{
			ID:         t.nextID,
			ClassID:    -1,
			Type:       ObjectStatic,
			Center:     r.Center,
			Rect:       r.Rect,
			Trajectory: []Position{{Point: r.Center, Rect: r.Rect, Time: r.Time}},
			FirstPoint: r.Center,
			FirstTime:  r.Time,
		}
		t.nextID++
		r.Object = len(t.objects)
		t.objects = append(t.objects, o)
	}
}

// covered reports whether p lies inside one of the first n objects.
func (t *Tracker) covered(p image.Point, n int) bool {
	for _, o := range t.objects[:n] {
		if p.In(o.Rect) {
			return true
		}
	}
	return false
}

func (t *Tracker) removeStale(now time.Duration) []*Object {
	var removed []*Object
	kept := t.objects[:0]
	for _, o := range t.objects {
		if o.LastTime()+t.cfg.RemoveTime < now {
			removed = append(removed, o)
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(t.objects); i++ {
		t.objects[i] = nil
	}
	t.objects = kept
	return removed
}

func distanceSq(a, b image.Point) int {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}
