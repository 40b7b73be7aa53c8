package l2model

import (
	"fmt"

	"github.com/banshee-data/motiondetect/internal/config"
)

// CalibrationConfig bounds the pyramid chosen for a frame size.
type CalibrationConfig struct {
	LevelSizeMin   int     // Smallest level width or height kept (default: 16)
	ObjectAreaMin  float64 // Smallest object area in pixels at any kept level (default: 2)
	LevelCountMin  int     // Levels never pre-scaled away (default: 2)
	LevelCountMax  int     // Levels processed before pre-scaling kicks in (default: 4)
	ScaleLevelsMax int     // Maximum halvings applied before processing (default: 2)
}

// DefaultCalibrationConfig returns a CalibrationConfig with built-in defaults.
func DefaultCalibrationConfig() *CalibrationConfig {
	return CalibrationConfigFromTuning(config.EmptyTuningConfig())
}

// CalibrationConfigFromTuning builds a CalibrationConfig from a loaded TuningConfig.
func CalibrationConfigFromTuning(cfg *config.TuningConfig) *CalibrationConfig {
	return &CalibrationConfig{
		LevelSizeMin:   cfg.GetCalibrationLevelSizeMin(),
		ObjectAreaMin:  cfg.GetCalibrationObjectAreaMin(),
		LevelCountMin:  cfg.GetCalibrationLevelCountMin(),
		LevelCountMax:  cfg.GetCalibrationLevelCountMax(),
		ScaleLevelsMax: cfg.GetCalibrationScaleLevelsMax(),
	}
}

// Validate checks if the configuration is valid.
func (c *CalibrationConfig) Validate() error {
	if c.LevelSizeMin < 1 {
		return fmt.Errorf("LevelSizeMin must be positive, got %d", c.LevelSizeMin)
	}
	if c.ObjectAreaMin < 0 {
		return fmt.Errorf("ObjectAreaMin must be non-negative, got %f", c.ObjectAreaMin)
	}
	if c.LevelCountMin < 1 {
		return fmt.Errorf("LevelCountMin must be at least 1, got %d", c.LevelCountMin)
	}
	if c.LevelCountMax < c.LevelCountMin {
		return fmt.Errorf("LevelCountMax (%d) must be >= LevelCountMin (%d)", c.LevelCountMax, c.LevelCountMin)
	}
	if c.ScaleLevelsMax < 0 {
		return fmt.Errorf("ScaleLevelsMax must be non-negative, got %d", c.ScaleLevelsMax)
	}
	return nil
}

// WithLevelCount sets the processed level bounds.
func (c *CalibrationConfig) WithLevelCount(minLevels, maxLevels int) *CalibrationConfig {
	c.LevelCountMin = minLevels
	c.LevelCountMax = maxLevels
	return c
}

// WithScaleLevelsMax sets the pre-scale limit.
func (c *CalibrationConfig) WithScaleLevelsMax(n int) *CalibrationConfig {
	c.ScaleLevelsMax = n
	return c
}
