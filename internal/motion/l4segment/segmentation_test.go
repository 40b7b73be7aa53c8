package l4segment

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motiondetect/internal/motion/l1pixels"
	"github.com/banshee-data/motiondetect/internal/motion/l2model"
	"github.com/banshee-data/motiondetect/internal/motion/l3background"
)

func calibrate(t *testing.T, size image.Point, m l2model.Model) *l2model.Geometry {
	t.Helper()
	g, err := l2model.Calibrate(size, m, l2model.DefaultCalibrationConfig())
	require.NoError(t, err)
	return g
}

// paint fills r on level 0 with v and r/2 (rounded outwards) on every
// coarser level, mimicking a propagated difference.
func paint(d l1pixels.Pyramid, r image.Rectangle, v uint8) {
	for _, plane := range d {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				plane.SetGray(x, y, color.Gray{Y: v})
			}
		}
		r = image.Rect(r.Min.X/2, r.Min.Y/2, (r.Max.X+1)/2, (r.Max.Y+1)/2)
	}
}

func TestSegment_SingleBlock(t *testing.T) {
	t.Parallel()
	g := calibrate(t, image.Pt(64, 64), l2model.DefaultModel())
	e := NewEngine(DefaultSegmentationConfig(), g)
	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	paint(diff, image.Rect(20, 20, 30, 30), 200)

	res := e.Segment(diff, 2*time.Second)
	require.Len(t, res.Regions, 1)
	assert.False(t, res.Truncated)

	r := res.Regions[0]
	assert.Equal(t, MaskFirstIndex, r.Index)
	assert.Equal(t, 1, r.Level)
	assert.Equal(t, image.Rect(20, 20, 30, 30), r.Rect)
	assert.Equal(t, image.Rect(10, 10, 15, 15), r.Rects[1])
	assert.Equal(t, image.Pt(25, 25), r.Center)
	assert.Equal(t, 100, r.Area())
	assert.Equal(t, 2*time.Second, r.Time)
	assert.Equal(t, -1, r.Object)
	assert.Equal(t, -1, r.Nearest)

	assert.Equal(t, 100, l1pixels.CountAtLeast(e.Mask()[0], MaskFirstIndex))
	assert.Equal(t, MaskInvalid, e.Mask()[0].GrayAt(0, 0).Y, "outer ring is invalid")
}

func TestSegment_DiscoveryOrder(t *testing.T) {
	t.Parallel()
	g := calibrate(t, image.Pt(64, 64), l2model.DefaultModel())
	e := NewEngine(DefaultSegmentationConfig(), g)
	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	paint(diff, image.Rect(40, 40, 50, 50), 200)
	paint(diff, image.Rect(8, 8, 16, 16), 200)

	res := e.Segment(diff, 0)
	require.Len(t, res.Regions, 2)
	assert.Equal(t, image.Rect(8, 8, 16, 16), res.Regions[0].Rect)
	assert.Equal(t, uint8(3), res.Regions[0].Index)
	assert.Equal(t, image.Rect(40, 40, 50, 50), res.Regions[1].Rect)
	assert.Equal(t, uint8(4), res.Regions[1].Index)
}

func TestSegment_SmallBlobRejected(t *testing.T) {
	t.Parallel()
	g := calibrate(t, image.Pt(64, 64), l2model.DefaultModel())
	require.Equal(t, 2, g.AreaMin[1])
	e := NewEngine(DefaultSegmentationConfig(), g)
	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	paint(diff, image.Rect(32, 32, 34, 34), 255)

	res := e.Segment(diff, 0)
	assert.Empty(t, res.Regions)
	assert.Equal(t, MaskInvalid, e.Mask()[1].GrayAt(16, 16).Y)
	assert.Equal(t, 0, l1pixels.CountAtLeast(e.Mask()[0], MaskFirstIndex))
}

func TestSegment_RefinementDiscard(t *testing.T) {
	t.Parallel()
	g := calibrate(t, image.Pt(64, 64), l2model.DefaultModel())
	e := NewEngine(DefaultSegmentationConfig(), g)
	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	// Strong at the coarse level only: nothing survives at full resolution.
	paint(l1pixels.Pyramid{diff[1]}, image.Rect(10, 10, 14, 14), 200)

	res := e.Segment(diff, 0)
	assert.Empty(t, res.Regions)
	assert.Equal(t, MaskInvalid, e.Mask()[1].GrayAt(12, 12).Y)
	assert.Equal(t, 0, l1pixels.CountAtLeast(e.Mask()[1], MaskFirstIndex))
}

func TestSegment_HysteresisGrowth(t *testing.T) {
	t.Parallel()
	g := calibrate(t, image.Pt(64, 64), l2model.DefaultModel())
	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	paint(diff, image.Rect(16, 16, 30, 30), 110) // between expansion and creation
	paint(diff, image.Rect(20, 20, 26, 26), 200)

	loose := NewEngine(&SegmentationConfig{CreateThreshold: 0.5, ExpandCoefficient: 0.75}, g)
	res := loose.Segment(diff, 0)
	require.Len(t, res.Regions, 1)
	assert.Equal(t, image.Rect(16, 16, 30, 30), res.Regions[0].Rect)

	tight := NewEngine(&SegmentationConfig{CreateThreshold: 0.5, ExpandCoefficient: 0.9}, g)
	res = tight.Segment(diff, 0)
	require.Len(t, res.Regions, 1)
	assert.Equal(t, image.Rect(20, 20, 26, 26), res.Regions[0].Rect)

	// A halo alone never seeds.
	halo := l1pixels.NewPyramid(g.Size, g.LevelCount)
	paint(halo, image.Rect(16, 16, 30, 30), 110)
	assert.Empty(t, loose.Segment(halo, 0).Regions)
}

func TestSegment_CreateThresholdMonotonic(t *testing.T) {
	t.Parallel()
	g := calibrate(t, image.Pt(64, 64), l2model.DefaultModel())
	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	paint(diff, image.Rect(8, 8, 18, 18), 250)
	paint(diff, image.Rect(40, 40, 50, 50), 150)

	prev := MaxRegions + 1
	for _, thr := range []float64{0.3, 0.5, 0.7, 0.9, 0.99} {
		e := NewEngine(&SegmentationConfig{CreateThreshold: thr, ExpandCoefficient: 0.75}, g)
		n := len(e.Segment(diff, 0).Regions)
		assert.LessOrEqual(t, n, prev, "threshold %.2f", thr)
		prev = n
	}
	assert.Equal(t, 0, prev)
}

func TestSegment_LabelSpaceExhausted(t *testing.T) {
	t.Parallel()
	m := l2model.DefaultModel()
	m.MinObjectSize = l2model.Point{X: 0.05, Y: 0.05}
	g := calibrate(t, image.Pt(64, 64), m)
	require.Equal(t, 1, g.LevelCount)
	require.Equal(t, 2, g.AreaMin[0])

	diff := l1pixels.NewPyramid(g.Size, g.LevelCount)
	for y := 1; y+1 < 63; y += 3 {
		for x := 1; x < 63; x += 2 {
			diff[0].SetGray(x, y, color.Gray{Y: 255})
			diff[0].SetGray(x, y+1, color.Gray{Y: 255})
		}
	}

	e := NewEngine(DefaultSegmentationConfig(), g)
	res := e.Segment(diff, 0)
	assert.True(t, res.Truncated)
	require.Len(t, res.Regions, MaxRegions)
	assert.Equal(t, uint8(255), res.Regions[MaxRegions-1].Index)
}

func TestSegmentationConfig(t *testing.T) {
	t.Parallel()
	c := DefaultSegmentationConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, uint8(127), c.CreationMin())
	assert.Equal(t, uint8(95), c.ExpansionMin())

	assert.Error(t, (&SegmentationConfig{CreateThreshold: 0, ExpandCoefficient: 0.5}).Validate())
	assert.Error(t, (&SegmentationConfig{CreateThreshold: 0.5, ExpandCoefficient: 1.5}).Validate())
	assert.NoError(t, DefaultStabilityConfig().Validate())
	assert.Error(t, (&StabilityConfig{RegionAreaMax: 0}).Validate())
}

func TestStabilityMonitor(t *testing.T) {
	t.Parallel()
	mask := image.NewGray(image.Rect(0, 0, 10, 10))
	mon := NewStabilityMonitor(DefaultStabilityConfig())
	assert.Equal(t, l3background.SceneUnknown, mon.State())

	setMoving := func(n int) {
		l1pixels.Fill(mask, MaskNotVisited)
		for i := 0; i < n; i++ {
			mask.Pix[i] = MaskFirstIndex + uint8(i%4)
		}
	}

	steps := []struct {
		moving int
		state  l3background.SceneState
		tr     Transition
	}{
		{10, l3background.SceneStable, TransitionNone},
		{51, l3background.SceneSabotage, TransitionSabotageOn},
		{90, l3background.SceneSabotage, TransitionNone},
		{50, l3background.SceneStable, TransitionSabotageOff},
		{0, l3background.SceneStable, TransitionNone},
	}
	for i, s := range steps {
		setMoving(s.moving)
		state, tr := mon.Evaluate(mask, 100)
		assert.Equal(t, s.state, state, "step %d", i)
		assert.Equal(t, s.tr, tr, "step %d", i)
	}
	assert.Equal(t, "SabotageOn", TransitionSabotageOn.String())
}

func TestStabilityMonitor_SeedAndInvalidIgnored(t *testing.T) {
	t.Parallel()
	mask := image.NewGray(image.Rect(0, 0, 10, 10))
	l1pixels.Fill(mask, MaskInvalid)
	mask.Pix[0] = MaskSeed
	mon := NewStabilityMonitor(DefaultStabilityConfig())
	state, _ := mon.Evaluate(mask, 100)
	assert.Equal(t, l3background.SceneStable, state)
}
