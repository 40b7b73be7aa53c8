package l6objects

import (
	"fmt"
	"time"

	"github.com/banshee-data/motiondetect/internal/config"
)

// ClassifierConfig holds the promotion criteria and reporting smoothing.
type ClassifierConfig struct {
	ShiftMin           float64       // Displacement as a fraction of the frame diagonal (default: 0.075)
	TimeMin            time.Duration // Tracked time before promotion (default: 1s)
	AveragingHalfRange int           // Half window of the trajectory moving average (default: 12)
}

// DefaultClassifierConfig returns a ClassifierConfig with built-in defaults.
func DefaultClassifierConfig() *ClassifierConfig {
	return ClassifierConfigFromTuning(config.EmptyTuningConfig())
}

// ClassifierConfigFromTuning builds a ClassifierConfig from a loaded TuningConfig.
func ClassifierConfigFromTuning(cfg *config.TuningConfig) *ClassifierConfig {
	return &ClassifierConfig{
		ShiftMin:           cfg.GetClassificationShiftMin(),
		TimeMin:            cfg.GetClassificationTimeMin(),
		AveragingHalfRange: cfg.GetTrackingAveragingHalfRange(),
	}
}

// Validate checks if the configuration is valid.
func (c *ClassifierConfig) Validate() error {
	if c.ShiftMin < 0 {
		return fmt.Errorf("ShiftMin must be non-negative, got %f", c.ShiftMin)
	}
	if c.TimeMin < 0 {
		return fmt.Errorf("TimeMin must be non-negative, got %v", c.TimeMin)
	}
	if c.AveragingHalfRange < 0 {
		return fmt.Errorf("AveragingHalfRange must be non-negative, got %d", c.AveragingHalfRange)
	}
	return nil
}
