package pipeline

import (
	"errors"
	"fmt"

	"github.com/banshee-data/motiondetect/internal/config"
	"github.com/banshee-data/motiondetect/internal/motion/debug"
	"github.com/banshee-data/motiondetect/internal/motion/l2model"
	"github.com/banshee-data/motiondetect/internal/motion/l3background"
	"github.com/banshee-data/motiondetect/internal/motion/l4segment"
	"github.com/banshee-data/motiondetect/internal/motion/l5tracks"
	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
)

// Config aggregates the stage configurations of a Detector.
type Config struct {
	Calibration  *l2model.CalibrationConfig
	Texture      *l3background.TextureConfig
	Difference   *l3background.DifferenceConfig
	Background   *l3background.BackgroundConfig
	Segmentation *l4segment.SegmentationConfig
	Stability    *l4segment.StabilityConfig
	Tracker      *l5tracks.TrackerConfig
	Classifier   *l6objects.ClassifierConfig
	Annotation   *debug.AnnotationConfig
}

// DefaultConfig returns a Config with built-in defaults.
func DefaultConfig() *Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds every stage configuration from one TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) *Config {
	return &Config{
		Calibration:  l2model.CalibrationConfigFromTuning(cfg),
		Texture:      l3background.TextureConfigFromTuning(cfg),
		Difference:   l3background.DifferenceConfigFromTuning(cfg),
		Background:   l3background.BackgroundConfigFromTuning(cfg),
		Segmentation: l4segment.SegmentationConfigFromTuning(cfg),
		Stability:    l4segment.StabilityConfigFromTuning(cfg),
		Tracker:      l5tracks.TrackerConfigFromTuning(cfg),
		Classifier:   l6objects.ClassifierConfigFromTuning(cfg),
		Annotation:   debug.AnnotationConfigFromTuning(cfg),
	}
}

// ModelFromTuning returns a whole-frame model with the tuned object size.
func ModelFromTuning(cfg *config.TuningConfig) l2model.Model {
	return l2model.Model{MinObjectSize: l2model.Point{X: cfg.GetMinObjectWidth(), Y: cfg.GetMinObjectHeight()}}
}

// Validate checks every stage configuration.
func (c *Config) Validate() error {
	if c == nil || c.Calibration == nil || c.Texture == nil || c.Difference == nil || c.Background == nil ||
		c.Segmentation == nil || c.Stability == nil || c.Tracker == nil || c.Classifier == nil ||
		c.Annotation == nil {
		return errors.New("pipeline config: missing stage config")
	}
	for name, v := range map[string]interface{ Validate() error }{
		"calibration":  c.Calibration,
		"texture":      c.Texture,
		"background":   c.Background,
		"segmentation": c.Segmentation,
		"stability":    c.Stability,
		"tracker":      c.Tracker,
		"classifier":   c.Classifier,
	} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s config: %w", name, err)
		}
	}
	return nil
}
