package l4segment

import (
	"fmt"

	"github.com/banshee-data/motiondetect/internal/config"
)

// SegmentationConfig holds the hysteresis thresholds as fractions of 255.
type SegmentationConfig struct {
	CreateThreshold   float64 // Seed threshold (default: 0.5)
	ExpandCoefficient float64 // Growth threshold relative to CreateThreshold (default: 0.75)
}

// DefaultSegmentationConfig returns a SegmentationConfig with built-in defaults.
func DefaultSegmentationConfig() *SegmentationConfig {
	return SegmentationConfigFromTuning(config.EmptyTuningConfig())
}

// SegmentationConfigFromTuning builds a SegmentationConfig from a loaded TuningConfig.
func SegmentationConfigFromTuning(cfg *config.TuningConfig) *SegmentationConfig {
	return &SegmentationConfig{
		CreateThreshold:   cfg.GetSegmentationCreateThreshold(),
		ExpandCoefficient: cfg.GetSegmentationExpandCoefficient(),
	}
}

// Validate checks if the configuration is valid.
func (c *SegmentationConfig) Validate() error {
	if c.CreateThreshold <= 0 || c.CreateThreshold >= 1 {
		return fmt.Errorf("CreateThreshold must be in (0, 1), got %f", c.CreateThreshold)
	}
	if c.ExpandCoefficient <= 0 || c.ExpandCoefficient > 1 {
		return fmt.Errorf("ExpandCoefficient must be in (0, 1], got %f", c.ExpandCoefficient)
	}
	return nil
}

// CreationMin is the difference a pixel must exceed to seed a region.
func (c *SegmentationConfig) CreationMin() uint8 {
	return uint8(255 * c.CreateThreshold)
}

// ExpansionMin is the difference a pixel must exceed to join a region.
func (c *SegmentationConfig) ExpansionMin() uint8 {
	return uint8(255 * c.CreateThreshold * c.ExpandCoefficient)
}

// StabilityConfig bounds how much of the ROI may be in motion.
type StabilityConfig struct {
	RegionAreaMax float64 // Fraction of ROI area (default: 0.5)
}

// DefaultStabilityConfig returns a StabilityConfig with built-in defaults.
func DefaultStabilityConfig() *StabilityConfig {
	return StabilityConfigFromTuning(config.EmptyTuningConfig())
}

// StabilityConfigFromTuning builds a StabilityConfig from a loaded TuningConfig.
func StabilityConfigFromTuning(cfg *config.TuningConfig) *StabilityConfig {
	return &StabilityConfig{RegionAreaMax: cfg.GetStabilityRegionAreaMax()}
}

// Validate checks if the configuration is valid.
func (c *StabilityConfig) Validate() error {
	if c.RegionAreaMax <= 0 || c.RegionAreaMax > 1 {
		return fmt.Errorf("RegionAreaMax must be in (0, 1], got %f", c.RegionAreaMax)
	}
	return nil
}
