package l5tracks

import (
	"fmt"
	"time"

	"github.com/banshee-data/motiondetect/internal/config"
)

// TrackerConfig holds association and lifecycle parameters.
type TrackerConfig struct {
	TrajectoryMax      int           // Positions kept per object (default: 1024)
	RemoveTime         time.Duration // Unlinked time before removal (default: 1s)
	AdditionalLinking  float64       // Rect enlargement, as a fraction of size, for linking (default: 0)
	AveragingHalfRange int           // Trajectory rects averaged for the object rect (default: 12)
}

// DefaultTrackerConfig returns a TrackerConfig with built-in defaults.
func DefaultTrackerConfig() *TrackerConfig {
	return TrackerConfigFromTuning(config.EmptyTuningConfig())
}

// TrackerConfigFromTuning builds a TrackerConfig from a loaded TuningConfig.
func TrackerConfigFromTuning(cfg *config.TuningConfig) *TrackerConfig {
	return &TrackerConfig{
		TrajectoryMax:      cfg.GetTrackingTrajectoryMax(),
		RemoveTime:         cfg.GetTrackingRemoveTime(),
		AdditionalLinking:  cfg.GetTrackingAdditionalLinking(),
		AveragingHalfRange: cfg.GetTrackingAveragingHalfRange(),
	}
}

// Validate checks if the configuration is valid.
func (c *TrackerConfig) Validate() error {
	if c.TrajectoryMax < 1 {
		return fmt.Errorf("TrajectoryMax must be positive, got %d", c.TrajectoryMax)
	}
	if c.RemoveTime < 0 {
		return fmt.Errorf("RemoveTime must be non-negative, got %v", c.RemoveTime)
	}
	if c.AdditionalLinking < 0 {
		return fmt.Errorf("AdditionalLinking must be non-negative, got %f", c.AdditionalLinking)
	}
	if c.AveragingHalfRange < 1 {
		return fmt.Errorf("AveragingHalfRange must be positive, got %d", c.AveragingHalfRange)
	}
	return nil
}

// WithRemoveTime sets the stale-object timeout.
func (c *TrackerConfig) WithRemoveTime(d time.Duration) *TrackerConfig {
	c.RemoveTime = d
	return c
}

// WithAdditionalLinking sets the linking enlargement.
func (c *TrackerConfig) WithAdditionalLinking(f float64) *TrackerConfig {
	c.AdditionalLinking = f
	return c
}
