package l2model

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrate_SmallFrame(t *testing.T) {
	t.Parallel()
	g, err := Calibrate(image.Pt(64, 64), DefaultModel(), DefaultCalibrationConfig())
	require.NoError(t, err)

	assert.Equal(t, image.Pt(64, 64), g.Size)
	assert.Equal(t, 0, g.ScaleLevels)
	assert.Equal(t, 1, g.Scale())
	assert.Equal(t, 2, g.LevelCount)
	assert.InDelta(t, 10.24, g.ObjectArea, 1e-9)
	assert.Equal(t, []int{10, 2}, g.AreaMin)
	assert.Equal(t, 64*64, g.ROIArea)
	require.Len(t, g.ROIMask, 2)

	require.Len(t, g.SearchRegions, 1)
	sr := g.SearchRegions[0]
	assert.Equal(t, 1, sr.Level)
	assert.Equal(t, image.Rect(1, 1, 31, 31), sr.Rect)
	require.Len(t, sr.Scanlines, 30)
	assert.Equal(t, Scanline{Begin: 33, End: 63}, sr.Scanlines[0])
}

func TestCalibrate_PreScale(t *testing.T) {
	t.Parallel()
	g, err := Calibrate(image.Pt(640, 480), DefaultModel(), DefaultCalibrationConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, g.ScaleLevels)
	assert.Equal(t, 2, g.Scale())
	assert.Equal(t, 4, g.LevelCount)
	assert.Equal(t, image.Pt(320, 240), g.Size)
	assert.Equal(t, image.Pt(16, 12), g.ObjectSize)
	assert.Equal(t, []int{192, 48, 12, 3}, g.AreaMin)
	assert.Equal(t, image.Pt(64, 40), g.ToFrame(image.Pt(32, 20)))
	assert.Equal(t, image.Rect(0, 0, 320, 240), g.Bounds())
}

func TestCalibrate_LevelBounds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		cfg        *CalibrationConfig
		wantScale  int
		wantLevels int
	}{
		{"defaults", DefaultCalibrationConfig(), 1, 4},
		{"more levels allowed", DefaultCalibrationConfig().WithLevelCount(2, 5), 0, 5},
		{"no pre-scale", DefaultCalibrationConfig().WithScaleLevelsMax(0), 0, 5},
		{"pre-scale capped", DefaultCalibrationConfig().WithLevelCount(2, 2).WithScaleLevelsMax(2), 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.cfg.Validate())
			g, err := Calibrate(image.Pt(640, 480), DefaultModel(), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScale, g.ScaleLevels)
			assert.Equal(t, tt.wantLevels, g.LevelCount)
		})
	}
}

func TestCalibrate_NoLevels(t *testing.T) {
	t.Parallel()

	_, err := Calibrate(image.Pt(8, 8), DefaultModel(), DefaultCalibrationConfig())
	assert.True(t, errors.Is(err, ErrNoPyramidLevels))

	tiny := DefaultModel()
	tiny.MinObjectSize = Point{X: 0.01, Y: 0.01}
	_, err = Calibrate(image.Pt(64, 64), tiny, DefaultCalibrationConfig())
	assert.ErrorIs(t, err, ErrNoPyramidLevels)

	_, err = Calibrate(image.Point{}, DefaultModel(), DefaultCalibrationConfig())
	assert.ErrorIs(t, err, ErrNoPyramidLevels)
}

func TestCalibrate_PolygonROI(t *testing.T) {
	t.Parallel()
	m := DefaultModel()
	m.ROI = []Point{{-1, -1}, {0, -1}, {0, 1}, {-1, 1}}
	require.NoError(t, m.Validate())

	g, err := Calibrate(image.Pt(64, 64), m, DefaultCalibrationConfig())
	require.NoError(t, err)

	assert.Equal(t, 32*64, g.ROIArea)
	assert.Equal(t, uint8(255), g.ROIMask[0].GrayAt(31, 10).Y)
	assert.Equal(t, uint8(0), g.ROIMask[0].GrayAt(32, 10).Y)
	assert.Equal(t, image.Rect(1, 1, 17, 31), g.SearchRegions[0].Rect)
	for _, sl := range g.SearchRegions[0].Scanlines {
		assert.Equal(t, 16, sl.End-sl.Begin)
	}
}

func TestCalibrate_MaskROI(t *testing.T) {
	t.Parallel()
	mask := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	m := DefaultModel()
	m.ROIMask = mask
	m.ROI = []Point{{-1, -1}, {1, -1}, {1, 1}} // ignored when a mask is set

	g, err := Calibrate(image.Pt(64, 64), m, DefaultCalibrationConfig())
	require.NoError(t, err)
	assert.InDelta(t, 32*32, g.ROIArea, 70)
	assert.Equal(t, uint8(0), g.ROIMask[0].GrayAt(60, 60).Y)

	m.ROIMask = image.NewGray(image.Rect(0, 0, 64, 64))
	_, err = Calibrate(image.Pt(64, 64), m, DefaultCalibrationConfig())
	assert.ErrorIs(t, err, ErrEmptyROI)
}

func TestCalibrator_Idempotent(t *testing.T) {
	t.Parallel()
	c := NewCalibrator(DefaultCalibrationConfig(), DefaultModel())
	assert.Nil(t, c.Geometry())

	g1, err := c.Calibrate(image.Pt(64, 48))
	require.NoError(t, err)
	g2, err := c.Calibrate(image.Pt(64, 48))
	require.NoError(t, err)
	assert.Same(t, g1, g2, "same size reuses the cached geometry")

	fresh, err := Calibrate(image.Pt(64, 48), DefaultModel(), DefaultCalibrationConfig())
	require.NoError(t, err)
	if diff := cmp.Diff(g1, fresh); diff != "" {
		t.Errorf("calibration is not deterministic (-cached +fresh):\n%s", diff)
	}

	g3, err := c.Calibrate(image.Pt(96, 64))
	require.NoError(t, err)
	assert.NotSame(t, g1, g3)
	assert.Equal(t, image.Pt(96, 64), g3.FrameSize)

	c.Reset(DefaultCalibrationConfig(), DefaultModel())
	assert.Nil(t, c.Geometry())

	_, err = c.Calibrate(image.Pt(4, 4))
	assert.Error(t, err)
	assert.Nil(t, c.Geometry(), "failed calibration leaves the detector not ready")
}

func TestModelValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultModel().Validate())

	bad := []Model{
		{MinObjectSize: Point{0, 0.1}},
		{MinObjectSize: Point{0.1, 3}},
		{MinObjectSize: Point{0.1, 0.1}, ROI: []Point{{-2, 0}, {0, 0}, {0, 1}}},
		{MinObjectSize: Point{0.1, 0.1}, ROIMask: &image.Gray{}},
	}
	for i, m := range bad {
		assert.Error(t, m.Validate(), "case %d", i)
	}
}

func TestCalibrationConfigValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultCalibrationConfig().Validate())
	assert.Error(t, DefaultCalibrationConfig().WithLevelCount(3, 2).Validate())
	assert.Error(t, DefaultCalibrationConfig().WithScaleLevelsMax(-1).Validate())
	assert.Error(t, (&CalibrationConfig{}).Validate())
}
