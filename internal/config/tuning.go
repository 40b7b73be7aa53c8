package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/motion.defaults.json"

// TuningConfig represents the root configuration for detector tuning.
// The schema is flat so a partial JSON file can override a handful of
// values while every omitted field falls back to its Get* default.
type TuningConfig struct {
	// Model params
	MinObjectWidth  *float64 `json:"min_object_width,omitempty"`
	MinObjectHeight *float64 `json:"min_object_height,omitempty"`

	// Calibration params
	CalibrationLevelSizeMin   *int     `json:"calibration_level_size_min,omitempty"`
	CalibrationObjectAreaMin  *float64 `json:"calibration_object_area_min,omitempty"`
	CalibrationLevelCountMin  *int     `json:"calibration_level_count_min,omitempty"`
	CalibrationLevelCountMax  *int     `json:"calibration_level_count_max,omitempty"`
	CalibrationScaleLevelsMax *int     `json:"calibration_scale_levels_max,omitempty"`

	// Texture params
	TextureGradientSaturation *int `json:"texture_gradient_saturation,omitempty"`
	TextureGradientBoost      *int `json:"texture_gradient_boost,omitempty"`

	// Difference params
	DifferenceGrayFeatureWeight *float64 `json:"difference_gray_feature_weight,omitempty"`
	DifferenceDxFeatureWeight   *float64 `json:"difference_dx_feature_weight,omitempty"`
	DifferenceDyFeatureWeight   *float64 `json:"difference_dy_feature_weight,omitempty"`
	DifferencePropagateForward  *bool    `json:"difference_propagate_forward,omitempty"`
	DifferenceRoiMaskEnable     *bool    `json:"difference_roi_mask_enable,omitempty"`

	// Background params
	BackgroundGrowTime         *string `json:"background_grow_time,omitempty"`        // duration string like "1s"
	BackgroundUpdateTime       *string `json:"background_update_time,omitempty"`      // duration string like "1s"
	BackgroundStatUpdateTime   *string `json:"background_stat_update_time,omitempty"` // duration string like "40ms"
	BackgroundSampleCountMin   *int    `json:"background_sample_count_min,omitempty"`
	BackgroundSampleCountMax   *int    `json:"background_sample_count_max,omitempty"`
	BackgroundAdjustThreshold  *int    `json:"background_adjust_threshold,omitempty"`
	BackgroundSabotageCountMax *int    `json:"background_sabotage_count_max,omitempty"`

	// Segmentation params
	SegmentationCreateThreshold   *float64 `json:"segmentation_create_threshold,omitempty"`
	SegmentationExpandCoefficient *float64 `json:"segmentation_expand_coefficient,omitempty"`
	StabilityRegionAreaMax        *float64 `json:"stability_region_area_max,omitempty"`

	// Tracker params
	TrackingTrajectoryMax      *int     `json:"tracking_trajectory_max,omitempty"`
	TrackingRemoveTime         *string  `json:"tracking_remove_time,omitempty"`
	TrackingAdditionalLinking  *float64 `json:"tracking_additional_linking,omitempty"`
	TrackingAveragingHalfRange *int     `json:"tracking_averaging_half_range,omitempty"`

	// Classification params
	ClassificationShiftMin *float64 `json:"classification_shift_min,omitempty"`
	ClassificationTimeMin  *string  `json:"classification_time_min,omitempty"`

	// Debug annotation params
	DebugAnnotateDifference    *bool `json:"debug_annotate_difference,omitempty"`
	DebugAnnotateMovingRegions *bool `json:"debug_annotate_moving_regions,omitempty"`
	DebugAnnotateObjects       *bool `json:"debug_annotate_objects,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the Get* defaults. It must stay in step with DefaultConfigPath.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		MinObjectWidth:  ptrFloat64(e.GetMinObjectWidth()),
		MinObjectHeight: ptrFloat64(e.GetMinObjectHeight()),

		CalibrationLevelSizeMin:   ptrInt(e.GetCalibrationLevelSizeMin()),
		CalibrationObjectAreaMin:  ptrFloat64(e.GetCalibrationObjectAreaMin()),
		CalibrationLevelCountMin:  ptrInt(e.GetCalibrationLevelCountMin()),
		CalibrationLevelCountMax:  ptrInt(e.GetCalibrationLevelCountMax()),
		CalibrationScaleLevelsMax: ptrInt(e.GetCalibrationScaleLevelsMax()),

		TextureGradientSaturation: ptrInt(e.GetTextureGradientSaturation()),
		TextureGradientBoost:      ptrInt(e.GetTextureGradientBoost()),

		DifferenceGrayFeatureWeight: ptrFloat64(e.GetDifferenceGrayFeatureWeight()),
		DifferenceDxFeatureWeight:   ptrFloat64(e.GetDifferenceDxFeatureWeight()),
		DifferenceDyFeatureWeight:   ptrFloat64(e.GetDifferenceDyFeatureWeight()),
		DifferencePropagateForward:  ptrBool(e.GetDifferencePropagateForward()),
		DifferenceRoiMaskEnable:     ptrBool(e.GetDifferenceRoiMaskEnable()),

		BackgroundGrowTime:         ptrString(e.GetBackgroundGrowTime().String()),
		BackgroundUpdateTime:       ptrString(e.GetBackgroundUpdateTime().String()),
		BackgroundStatUpdateTime:   ptrString(e.GetBackgroundStatUpdateTime().String()),
		BackgroundSampleCountMin:   ptrInt(e.GetBackgroundSampleCountMin()),
		BackgroundSampleCountMax:   ptrInt(e.GetBackgroundSampleCountMax()),
		BackgroundAdjustThreshold:  ptrInt(e.GetBackgroundAdjustThreshold()),
		BackgroundSabotageCountMax: ptrInt(e.GetBackgroundSabotageCountMax()),

		SegmentationCreateThreshold:   ptrFloat64(e.GetSegmentationCreateThreshold()),
		SegmentationExpandCoefficient: ptrFloat64(e.GetSegmentationExpandCoefficient()),
		StabilityRegionAreaMax:        ptrFloat64(e.GetStabilityRegionAreaMax()),

		TrackingTrajectoryMax:      ptrInt(e.GetTrackingTrajectoryMax()),
		TrackingRemoveTime:         ptrString(e.GetTrackingRemoveTime().String()),
		TrackingAdditionalLinking:  ptrFloat64(e.GetTrackingAdditionalLinking()),
		TrackingAveragingHalfRange: ptrInt(e.GetTrackingAveragingHalfRange()),

		ClassificationShiftMin: ptrFloat64(e.GetClassificationShiftMin()),
		ClassificationTimeMin:  ptrString(e.GetClassificationTimeMin().String()),

		DebugAnnotateDifference:    ptrBool(e.GetDebugAnnotateDifference()),
		DebugAnnotateMovingRegions: ptrBool(e.GetDebugAnnotateMovingRegions()),
		DebugAnnotateObjects:       ptrBool(e.GetDebugAnnotateObjects()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,             // from cmd/motion-detect/
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/motion/pipeline/
		"../../../../" + DefaultConfigPath,    // from internal/motion/storage/sqlite/
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*float64{
		"min_object_width":  c.MinObjectWidth,
		"min_object_height": c.MinObjectHeight,
	} {
		if v != nil && (*v <= 0 || *v > 2) {
			return fmt.Errorf("%s must be in (0, 2], got %f", name, *v)
		}
	}

	for name, v := range map[string]*float64{
		"segmentation_create_threshold":   c.SegmentationCreateThreshold,
		"segmentation_expand_coefficient": c.SegmentationExpandCoefficient,
		"stability_region_area_max":       c.StabilityRegionAreaMax,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	for name, v := range map[string]*float64{
		"difference_gray_feature_weight": c.DifferenceGrayFeatureWeight,
		"difference_dx_feature_weight":   c.DifferenceDxFeatureWeight,
		"difference_dy_feature_weight":   c.DifferenceDyFeatureWeight,
	} {
		// Weights are stored as 8.8 fixed point.
		if v != nil && (*v < 0 || *v >= 256) {
			return fmt.Errorf("%s must be in [0, 256), got %f", name, *v)
		}
	}

	for name, v := range map[string]*int{
		"calibration_level_size_min":    c.CalibrationLevelSizeMin,
		"calibration_level_count_min":   c.CalibrationLevelCountMin,
		"calibration_level_count_max":   c.CalibrationLevelCountMax,
		"calibration_scale_levels_max":  c.CalibrationScaleLevelsMax,
		"texture_gradient_saturation":   c.TextureGradientSaturation,
		"texture_gradient_boost":        c.TextureGradientBoost,
		"background_sample_count_min":   c.BackgroundSampleCountMin,
		"background_sample_count_max":   c.BackgroundSampleCountMax,
		"background_adjust_threshold":   c.BackgroundAdjustThreshold,
		"background_sabotage_count_max": c.BackgroundSabotageCountMax,
		"tracking_trajectory_max":       c.TrackingTrajectoryMax,
		"tracking_averaging_half_range": c.TrackingAveragingHalfRange,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}

	for name, v := range map[string]*string{
		"background_grow_time":        c.BackgroundGrowTime,
		"background_update_time":      c.BackgroundUpdateTime,
		"background_stat_update_time": c.BackgroundStatUpdateTime,
		"tracking_remove_time":        c.TrackingRemoveTime,
		"classification_time_min":     c.ClassificationTimeMin,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", name, d)
		}
	}

	if c.CalibrationLevelCountMin != nil && c.CalibrationLevelCountMax != nil &&
		*c.CalibrationLevelCountMin > *c.CalibrationLevelCountMax {
		return fmt.Errorf("calibration_level_count_min (%d) exceeds calibration_level_count_max (%d)",
			*c.CalibrationLevelCountMin, *c.CalibrationLevelCountMax)
	}

	return nil
}

func parseDurationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}

// GetMinObjectWidth returns the minimal object width in normalized units (0..2).
func (c *TuningConfig) GetMinObjectWidth() float64 {
	if c.MinObjectWidth == nil {
		return 0.1
	}
	return *c.MinObjectWidth
}

// GetMinObjectHeight returns the minimal object height in normalized units (0..2).
func (c *TuningConfig) GetMinObjectHeight() float64 {
	if c.MinObjectHeight == nil {
		return 0.1
	}
	return *c.MinObjectHeight
}

func (c *TuningConfig) GetCalibrationLevelSizeMin() int {
	if c.CalibrationLevelSizeMin == nil {
		return 16
	}
	return *c.CalibrationLevelSizeMin
}

func (c *TuningConfig) GetCalibrationObjectAreaMin() float64 {
	if c.CalibrationObjectAreaMin == nil {
		return 2.0
	}
	return *c.CalibrationObjectAreaMin
}

func (c *TuningConfig) GetCalibrationLevelCountMin() int {
	if c.CalibrationLevelCountMin == nil {
		return 2
	}
	return *c.CalibrationLevelCountMin
}

func (c *TuningConfig) GetCalibrationLevelCountMax() int {
	if c.CalibrationLevelCountMax == nil {
		return 4
	}
	return *c.CalibrationLevelCountMax
}

func (c *TuningConfig) GetCalibrationScaleLevelsMax() int {
	if c.CalibrationScaleLevelsMax == nil {
		return 2
	}
	return *c.CalibrationScaleLevelsMax
}

func (c *TuningConfig) GetTextureGradientSaturation() int {
	if c.TextureGradientSaturation == nil {
		return 16
	}
	return *c.TextureGradientSaturation
}

func (c *TuningConfig) GetTextureGradientBoost() int {
	if c.TextureGradientBoost == nil {
		return 4
	}
	return *c.TextureGradientBoost
}

func (c *TuningConfig) GetDifferenceGrayFeatureWeight() float64 {
	if c.DifferenceGrayFeatureWeight == nil {
		return 18.0
	}
	return *c.DifferenceGrayFeatureWeight
}

func (c *TuningConfig) GetDifferenceDxFeatureWeight() float64 {
	if c.DifferenceDxFeatureWeight == nil {
		return 18.0
	}
	return *c.DifferenceDxFeatureWeight
}

func (c *TuningConfig) GetDifferenceDyFeatureWeight() float64 {
	if c.DifferenceDyFeatureWeight == nil {
		return 18.0
	}
	return *c.DifferenceDyFeatureWeight
}

func (c *TuningConfig) GetDifferencePropagateForward() bool {
	if c.DifferencePropagateForward == nil {
		return true
	}
	return *c.DifferencePropagateForward
}

func (c *TuningConfig) GetDifferenceRoiMaskEnable() bool {
	if c.DifferenceRoiMaskEnable == nil {
		return true
	}
	return *c.DifferenceRoiMaskEnable
}

// GetBackgroundGrowTime returns how long the background keeps widening
// its ranges after the scene last looked unstable.
func (c *TuningConfig) GetBackgroundGrowTime() time.Duration {
	return parseDurationOr(c.BackgroundGrowTime, time.Second)
}

// GetBackgroundUpdateTime returns the minimum accumulated time between
// range adjustments once enough samples have been counted.
func (c *TuningConfig) GetBackgroundUpdateTime() time.Duration {
	return parseDurationOr(c.BackgroundUpdateTime, time.Second)
}

// GetBackgroundStatUpdateTime returns the minimum spacing between count
// increments. Zero counts every stable frame.
func (c *TuningConfig) GetBackgroundStatUpdateTime() time.Duration {
	return parseDurationOr(c.BackgroundStatUpdateTime, 0)
}

func (c *TuningConfig) GetBackgroundSampleCountMin() int {
	if c.BackgroundSampleCountMin == nil {
		return 8
	}
	return *c.BackgroundSampleCountMin
}

func (c *TuningConfig) GetBackgroundSampleCountMax() int {
	if c.BackgroundSampleCountMax == nil {
		return 127
	}
	return *c.BackgroundSampleCountMax
}

func (c *TuningConfig) GetBackgroundAdjustThreshold() int {
	if c.BackgroundAdjustThreshold == nil {
		return 1
	}
	return *c.BackgroundAdjustThreshold
}

func (c *TuningConfig) GetBackgroundSabotageCountMax() int {
	if c.BackgroundSabotageCountMax == nil {
		return 0
	}
	return *c.BackgroundSabotageCountMax
}

func (c *TuningConfig) GetSegmentationCreateThreshold() float64 {
	if c.SegmentationCreateThreshold == nil {
		return 0.5
	}
	return *c.SegmentationCreateThreshold
}

func (c *TuningConfig) GetSegmentationExpandCoefficient() float64 {
	if c.SegmentationExpandCoefficient == nil {
		return 0.75
	}
	return *c.SegmentationExpandCoefficient
}

// GetStabilityRegionAreaMax returns the fraction of the ROI that moving
// regions may cover before the scene is considered sabotaged.
func (c *TuningConfig) GetStabilityRegionAreaMax() float64 {
	if c.StabilityRegionAreaMax == nil {
		return 0.5
	}
	return *c.StabilityRegionAreaMax
}

func (c *TuningConfig) GetTrackingTrajectoryMax() int {
	if c.TrackingTrajectoryMax == nil {
		return 1024
	}
	return *c.TrackingTrajectoryMax
}

func (c *TuningConfig) GetTrackingRemoveTime() time.Duration {
	return parseDurationOr(c.TrackingRemoveTime, time.Second)
}

func (c *TuningConfig) GetTrackingAdditionalLinking() float64 {
	if c.TrackingAdditionalLinking == nil {
		return 0.0
	}
	return *c.TrackingAdditionalLinking
}

func (c *TuningConfig) GetTrackingAveragingHalfRange() int {
	if c.TrackingAveragingHalfRange == nil {
		return 12
	}
	return *c.TrackingAveragingHalfRange
}

// GetClassificationShiftMin returns the minimum displacement, as a
// fraction of the processed frame diagonal, for an object to count as moving.
func (c *TuningConfig) GetClassificationShiftMin() float64 {
	if c.ClassificationShiftMin == nil {
		return 0.075
	}
	return *c.ClassificationShiftMin
}

func (c *TuningConfig) GetClassificationTimeMin() time.Duration {
	return parseDurationOr(c.ClassificationTimeMin, time.Second)
}

func (c *TuningConfig) GetDebugAnnotateDifference() bool {
	if c.DebugAnnotateDifference == nil {
		return false
	}
	return *c.DebugAnnotateDifference
}

func (c *TuningConfig) GetDebugAnnotateMovingRegions() bool {
	if c.DebugAnnotateMovingRegions == nil {
		return true
	}
	return *c.DebugAnnotateMovingRegions
}

func (c *TuningConfig) GetDebugAnnotateObjects() bool {
	if c.DebugAnnotateObjects == nil {
		return true
	}
	return *c.DebugAnnotateObjects
}
