package pipeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"

	"github.com/banshee-data/motiondetect/internal/monitoring"
	"github.com/banshee-data/motiondetect/internal/motion/debug"
	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
	"github.com/banshee-data/motiondetect/internal/motion/l2model"
	"github.com/banshee-data/motiondetect/internal/motion/l3background"
	"github.com/banshee-data/motiondetect/internal/motion/l4segment"
	"github.com/banshee-data/motiondetect/internal/motion/l5tracks"
	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
)

var (
	// ErrNotReady is returned while the detector has no valid calibration.
	ErrNotReady = errors.New("detector not calibrated")
	// ErrFrameRejected is returned for frames that cannot be processed.
	// No detector state is changed.
	ErrFrameRejected = errors.New("frame rejected")
)

// Frame is one caller video frame.
type Frame struct {
	Image     image.Image
	Timestamp time.Duration
}

// Detector runs the motion pipeline one frame at a time.
type Detector struct {
	cfg        *Config
	calibrator *l2model.Calibrator
	geom       *l2model.Geometry

	texture    *l3background.Texture
	background *l3background.Background
	estimator  *l3background.Estimator
	engine     *l4segment.Engine
	stability  *l4segment.StabilityMonitor
	tracker    *l5tracks.Tracker
	classifier *l6objects.Classifier
	reporter   *l6objects.Reporter
	annotator  *debug.Annotator

	regions  []*l4segment.MovingRegion
	started  bool
	lastTime time.Duration
	frames   int
}

// NewDetector validates cfg and m and returns an uncalibrated detector.
// Calibration happens on the first frame or an explicit Calibrate call.
func NewDetector(cfg *Config, m l2model.Model) (*Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	return &Detector{
		cfg:        cfg,
		calibrator: l2model.NewCalibrator(cfg.Calibration, m),
		annotator:  debug.NewAnnotator(cfg.Annotation),
	}, nil
}

// SetConfig replaces the configuration. The detector recalibrates on
// the next frame and all learned state is discarded.
func (d *Detector) SetConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = cfg
	d.annotator = debug.NewAnnotator(cfg.Annotation)
	d.calibrator.Reset(cfg.Calibration, d.calibrator.Model())
	d.invalidate()
	return nil
}

// SetModel replaces the scene model. The detector recalibrates on the
// next frame and all learned state is discarded.
func (d *Detector) SetModel(m l2model.Model) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	d.calibrator.Reset(d.cfg.Calibration, m)
	d.invalidate()
	return nil
}

func (d *Detector) invalidate() {
	d.geom = nil
	d.regions = nil
	d.started = false
	d.frames = 0
}

// Calibrate derives the geometry for frameSize and allocates every
// stage. It is a no-op when the detector is already calibrated for
// that size.
func (d *Detector) Calibrate(frameSize image.Point) error {
	if d.geom != nil && d.geom.FrameSize == frameSize {
		return nil
	}
	g, err := d.calibrator.Calibrate(frameSize)
	if err != nil {
		d.invalidate()
		return fmt.Errorf("%w: calibrate %dx%d: %w", ErrNotReady, frameSize.X, frameSize.Y, err)
	}
	d.allocate(g)
	monitoring.Logf("motion: calibrated %dx%d -> %dx%d, %d levels, object %dx%d, roi %d px",
		g.FrameSize.X, g.FrameSize.Y, g.Size.X, g.Size.Y, g.LevelCount,
		g.ObjectSize.X, g.ObjectSize.Y, g.ROIArea)
	return nil
}

func (d *Detector) allocate(g *l2model.Geometry) {
	c := d.cfg
	d.geom = g
	d.texture = l3background.NewTexture(c.Texture, g.Size, g.LevelCount)
	d.background = l3background.NewBackground(c.Background, d.texture.Features())
	d.estimator = l3background.NewEstimator(c.Difference, g.Size, g.LevelCount, g.ROIMask)
	d.engine = l4segment.NewEngine(c.Segmentation, g)
	d.stability = l4segment.NewStabilityMonitor(c.Stability)
	d.tracker = l5tracks.NewTracker(c.Tracker, g.Bounds())
	d.classifier = l6objects.NewClassifier(c.Classifier, g.Size)
	d.reporter = l6objects.NewReporter(c.Classifier.AveragingHalfRange, g.Scale())
	d.regions = nil
}

// NextFrame processes f and returns its metadata. When out is non-nil
// it must have the frame's size and receives the debug annotation.
func (d *Detector) NextFrame(f Frame, out draw.Image) (*l6objects.Metadata, error) {
	if f.Image == nil || f.Image.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrFrameRejected)
	}
	size := f.Image.Bounds().Size()
	if out != nil && out.Bounds().Size() != size {
		return nil, fmt.Errorf("%w: output %v does not match frame %v",
			ErrFrameRejected, out.Bounds().Size(), size)
	}
	if d.started && f.Timestamp < d.lastTime {
		return nil, fmt.Errorf("%w: timestamp %v before previous %v",
			ErrFrameRejected, f.Timestamp, d.lastTime)
	}
	if err := d.Calibrate(size); err != nil {
		return nil, err
	}
	now := f.Timestamp
	d.started, d.lastTime = true, now
	d.frames++

	d.texture.Extract(f.Image)
	diff := d.estimator.Estimate(d.texture.Features())
	seg := d.engine.Segment(diff, now)
	d.regions = seg.Regions

	scene, tr := l3background.SceneUnknown, l4segment.TransitionNone
	if d.background.State() != l3background.StateInit {
		scene, tr = d.stability.Evaluate(d.engine.Mask()[0], d.geom.ROIArea)
		if tr != l4segment.TransitionNone {
			monitoring.Logf("motion: %v at %v", tr, now)
		}
	}

	// Tracking runs only against a settled background on a stable scene.
	active := d.background.State() == l3background.StateUpdate && scene != l3background.SceneSabotage
	removed := d.tracker.Update(seg.Regions, active, now)
	objects := d.tracker.Objects()
	promoted := d.classifier.Classify(objects, now)

	prev := d.background.State()
	action := d.background.Update(scene, now)
	if next := d.background.State(); next != prev || action == l3background.ActionInit {
		monitoring.Logf("motion: background %v -> %v (%v) at %v", prev, next, action, now)
	}

	md := d.reporter.Report(objects, removed, promoted, tr)
	if out != nil {
		if err := d.annotate(out, diff); err != nil {
			return md, err
		}
	}
	return md, nil
}

func (d *Detector) annotate(out draw.Image, diff l1pixels.Pyramid) error {
	var inset *image.Gray
	if len(diff) > 1 {
		inset = diff[1]
	} else if len(diff) == 1 {
		inset = diff[0]
	}
	return d.annotator.Draw(out, debug.Scene{
		Scale:      d.geom.Scale(),
		Regions:    d.regions,
		Objects:    d.tracker.Objects(),
		Difference: inset,
	})
}

// Geometry returns the current calibration, or nil when not ready.
func (d *Detector) Geometry() *l2model.Geometry { return d.geom }

// Ready reports whether the detector holds a valid calibration.
func (d *Detector) Ready() bool { return d.geom != nil }

// FrameCount returns the frames processed since the last calibration change.
func (d *Detector) FrameCount() int { return d.frames }

// BackgroundState returns the scalar background state.
func (d *Detector) BackgroundState() l3background.BackgroundState {
	if d.background == nil {
		return l3background.BackgroundState{}
	}
	return d.background.Snapshot()
}

// StabilityState returns the verdict of the last evaluated frame.
func (d *Detector) StabilityState() l3background.SceneState {
	if d.stability == nil {
		return l3background.SceneUnknown
	}
	return d.stability.State()
}

// Objects returns the live tracked objects.
func (d *Detector) Objects() []*l5tracks.Object {
	if d.tracker == nil {
		return nil
	}
	return d.tracker.Objects()
}

// Regions returns the moving regions of the last frame.
func (d *Detector) Regions() []*l4segment.MovingRegion { return d.regions }

// Difference returns the difference pyramid of the last frame.
func (d *Detector) Difference() l1pixels.Pyramid {
	if d.estimator == nil {
		return nil
	}
	return d.estimator.Difference()
}
