package l3background

import (
	"fmt"
	"time"

	"github.com/banshee-data/motiondetect/internal/config"
)

// TextureConfig selects the features and how gradients are formed.
type TextureConfig struct {
	GradientSaturation int     // Clamp applied to central differences (default: 16)
	GradientBoost      int     // Multiplier after clamping (default: 4)
	GrayWeight         float64 // Difference weight of the gray value (default: 18); 0 disables
	DxWeight           float64 // Difference weight of the horizontal gradient (default: 18); 0 disables
	DyWeight           float64 // Difference weight of the vertical gradient (default: 18); 0 disables
}

// DefaultTextureConfig returns a TextureConfig with built-in defaults.
func DefaultTextureConfig() *TextureConfig {
	return TextureConfigFromTuning(config.EmptyTuningConfig())
}

// TextureConfigFromTuning builds a TextureConfig from a loaded TuningConfig.
func TextureConfigFromTuning(cfg *config.TuningConfig) *TextureConfig {
	return &TextureConfig{
		GradientSaturation: cfg.GetTextureGradientSaturation(),
		GradientBoost:      cfg.GetTextureGradientBoost(),
		GrayWeight:         cfg.GetDifferenceGrayFeatureWeight(),
		DxWeight:           cfg.GetDifferenceDxFeatureWeight(),
		DyWeight:           cfg.GetDifferenceDyFeatureWeight(),
	}
}

// Validate checks if the configuration is valid.
func (c *TextureConfig) Validate() error {
	if c.GradientSaturation < 1 || c.GradientSaturation > 127 {
		return fmt.Errorf("GradientSaturation must be in [1, 127], got %d", c.GradientSaturation)
	}
	if c.GradientBoost < 1 {
		return fmt.Errorf("GradientBoost must be positive, got %d", c.GradientBoost)
	}
	for name, w := range map[string]float64{"GrayWeight": c.GrayWeight, "DxWeight": c.DxWeight, "DyWeight": c.DyWeight} {
		if w < 0 || w >= 256 {
			return fmt.Errorf("%s must be in [0, 256), got %f", name, w)
		}
	}
	if c.GrayWeight == 0 && c.DxWeight == 0 && c.DyWeight == 0 {
		return fmt.Errorf("at least one feature weight must be nonzero")
	}
	return nil
}

// WithWeights sets the per-feature difference weights.
func (c *TextureConfig) WithWeights(gray, dx, dy float64) *TextureConfig {
	c.GrayWeight, c.DxWeight, c.DyWeight = gray, dx, dy
	return c
}

// DifferenceConfig controls how per-level differences are post-processed.
type DifferenceConfig struct {
	PropagateForward bool // Max each level with the reduced finer level (default: true)
	RoiMaskEnable    bool // Zero differences outside the ROI (default: true)
}

// DefaultDifferenceConfig returns a DifferenceConfig with built-in defaults.
func DefaultDifferenceConfig() *DifferenceConfig {
	return DifferenceConfigFromTuning(config.EmptyTuningConfig())
}

// DifferenceConfigFromTuning builds a DifferenceConfig from a loaded TuningConfig.
func DifferenceConfigFromTuning(cfg *config.TuningConfig) *DifferenceConfig {
	return &DifferenceConfig{
		PropagateForward: cfg.GetDifferencePropagateForward(),
		RoiMaskEnable:    cfg.GetDifferenceRoiMaskEnable(),
	}
}

// BackgroundConfig controls the background state machine cadence.
type BackgroundConfig struct {
	GrowTime         time.Duration // Quiet time required before leaving Grow (default: 1s)
	UpdateTime       time.Duration // Accumulated stable time between range adjustments (default: 1s)
	StatUpdateTime   time.Duration // Minimum spacing of count increments (default: 0, every frame)
	SampleCountMin   int           // Increments required before a timed adjustment (default: 8)
	SampleCountMax   int           // Increments forcing an adjustment (default: 127)
	AdjustThreshold  int           // Counter level separating widen from narrow (default: 1)
	SabotageCountMax int           // Sabotaged frames tolerated in Update before re-init (default: 0)
}

// DefaultBackgroundConfig returns a BackgroundConfig with built-in defaults.
func DefaultBackgroundConfig() *BackgroundConfig {
	return BackgroundConfigFromTuning(config.EmptyTuningConfig())
}

// BackgroundConfigFromTuning builds a BackgroundConfig from a loaded TuningConfig.
func BackgroundConfigFromTuning(cfg *config.TuningConfig) *BackgroundConfig {
	return &BackgroundConfig{
		GrowTime:         cfg.GetBackgroundGrowTime(),
		UpdateTime:       cfg.GetBackgroundUpdateTime(),
		StatUpdateTime:   cfg.GetBackgroundStatUpdateTime(),
		SampleCountMin:   cfg.GetBackgroundSampleCountMin(),
		SampleCountMax:   cfg.GetBackgroundSampleCountMax(),
		AdjustThreshold:  cfg.GetBackgroundAdjustThreshold(),
		SabotageCountMax: cfg.GetBackgroundSabotageCountMax(),
	}
}

// Validate checks if the configuration is valid.
func (c *BackgroundConfig) Validate() error {
	if c.GrowTime < 0 || c.UpdateTime < 0 || c.StatUpdateTime < 0 {
		return fmt.Errorf("background times must be non-negative, got grow=%v update=%v stat=%v",
			c.GrowTime, c.UpdateTime, c.StatUpdateTime)
	}
	if c.SampleCountMin < 0 || c.SampleCountMax < 1 || c.SampleCountMin > c.SampleCountMax {
		return fmt.Errorf("sample counts must satisfy 0 <= min <= max, max >= 1, got min=%d max=%d",
			c.SampleCountMin, c.SampleCountMax)
	}
	if c.AdjustThreshold < 0 || c.AdjustThreshold > 255 {
		return fmt.Errorf("AdjustThreshold must be in [0, 255], got %d", c.AdjustThreshold)
	}
	if c.SabotageCountMax < 0 {
		return fmt.Errorf("SabotageCountMax must be non-negative, got %d", c.SabotageCountMax)
	}
	return nil
}

// WithGrowTime sets the grow phase duration.
func (c *BackgroundConfig) WithGrowTime(d time.Duration) *BackgroundConfig {
	c.GrowTime = d
	return c
}

// WithUpdateTime sets the adjustment cadence.
func (c *BackgroundConfig) WithUpdateTime(d time.Duration) *BackgroundConfig {
	c.UpdateTime = d
	return c
}
