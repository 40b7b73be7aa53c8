package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	require.NotNil(t, cfg.MinObjectWidth)
	assert.Equal(t, 0.1, *cfg.MinObjectWidth)
	require.NotNil(t, cfg.BackgroundGrowTime)
	assert.Equal(t, "1s", *cfg.BackgroundGrowTime)
	require.NotNil(t, cfg.BackgroundStatUpdateTime)
	assert.Equal(t, "0s", *cfg.BackgroundStatUpdateTime)

	assert.Equal(t, 16, cfg.GetCalibrationLevelSizeMin())
	assert.Equal(t, 18.0, cfg.GetDifferenceDxFeatureWeight())
	assert.Equal(t, time.Second, cfg.GetTrackingRemoveTime())
	assert.True(t, cfg.GetDifferencePropagateForward())
	assert.False(t, cfg.GetDebugAnnotateDifference())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsFileMatchesCode(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultTuningConfig(), fromFile); diff != "" {
		t.Errorf("%s drifted from DefaultTuningConfig (-code +file):\n%s", DefaultConfigPath, diff)
	}
}

func TestEmptyTuningConfigFallsBack(t *testing.T) {
	cfg := EmptyTuningConfig()

	assert.Equal(t, 0.5, cfg.GetSegmentationCreateThreshold())
	assert.Equal(t, 0.75, cfg.GetSegmentationExpandCoefficient())
	assert.Equal(t, 1024, cfg.GetTrackingTrajectoryMax())
	assert.Equal(t, 12, cfg.GetTrackingAveragingHalfRange())
	assert.Equal(t, time.Second, cfg.GetClassificationTimeMin())
	assert.Equal(t, time.Duration(0), cfg.GetBackgroundStatUpdateTime())
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	testJSON := `{
  "segmentation_create_threshold": 0.4,
  "background_grow_time": "250ms",
  "tracking_trajectory_max": 64,
  "difference_roi_mask_enable": false
}`
	require.NoError(t, os.WriteFile(configPath, []byte(testJSON), 0644))

	cfg, err := LoadTuningConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.GetSegmentationCreateThreshold())
	assert.Equal(t, 250*time.Millisecond, cfg.GetBackgroundGrowTime())
	assert.Equal(t, 64, cfg.GetTrackingTrajectoryMax())
	assert.False(t, cfg.GetDifferenceRoiMaskEnable())

	// Omitted fields keep their defaults.
	assert.Equal(t, 0.75, cfg.GetSegmentationExpandCoefficient())
	assert.Equal(t, time.Second, cfg.GetBackgroundUpdateTime())
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"wrong extension", write("cfg.yaml", "{}")},
		{"missing file", filepath.Join(tmpDir, "absent.json")},
		{"bad json", write("bad.json", "{")},
		{"threshold out of range", write("thr.json", `{"segmentation_create_threshold": 1.5}`)},
		{"bad duration", write("dur.json", `{"tracking_remove_time": "soon"}`)},
		{"negative duration", write("neg.json", `{"classification_time_min": "-1s"}`)},
		{"weight overflow", write("w.json", `{"difference_gray_feature_weight": 300}`)},
		{"negative count", write("cnt.json", `{"background_sabotage_count_max": -1}`)},
		{"level bounds inverted", write("lvl.json", `{"calibration_level_count_min": 5, "calibration_level_count_max": 3}`)},
		{"object too large", write("obj.json", `{"min_object_width": 2.5}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuningConfig(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadTuningConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	big := make([]byte, 1024*1024+1)
	for i := range big {
		big[i] = ' '
	}
	require.NoError(t, os.WriteFile(p, big, 0644))

	_, err := LoadTuningConfig(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
