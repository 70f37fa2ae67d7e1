package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultTuningPath is the path to the canonical tuning defaults file.
const DefaultTuningPath = "config/tuning.defaults.json"

// Merge rules for collapsing two simultaneous points into one
const (
	MergeMidpoint           = "midpoint"
	MergeRandom             = "random"
	MergeCloserGTDistance   = "closer_gt_distance"
	MergeCloserGTProjection = "closer_gt_projection"
)

// Built-in defaults used when a field is absent from the tuning file
const (
	DefaultMatchThresholdSecs       = 30 * 60
	DefaultDistanceThresholdMeters  = 25.0
	DefaultTimeSyncFuzzSecs         = 0.0
	DefaultSensedRangeFuzzSecs      = 30 * 60
	DefaultSectionExtensionSecs     = 30 * 60
	DefaultMaxDurationVariationSecs = 5 * 60
	DefaultRandomSeed               = 1
	DefaultRetryDelay               = "10s"
)

// TuningConfig holds the thresholds of the segmentation and matching engine.
// Omitted fields fall back to the built-in defaults through the Get methods.
type TuningConfig struct {
	// Matching
	MatchThresholdSecs *float64 `json:"match_threshold_secs,omitempty"`

	// Ranges
	TimeSyncFuzzSecs         *float64 `json:"time_sync_fuzz_secs,omitempty"`
	SensedRangeFuzzSecs      *float64 `json:"sensed_range_fuzz_secs,omitempty"`
	SectionExtensionSecs     *float64 `json:"section_extension_secs,omitempty"`
	MaxDurationVariationSecs *float64 `json:"max_duration_variation_secs,omitempty"`

	// Reference trajectory
	DistanceThresholdMeters *float64 `json:"distance_threshold_meters,omitempty"`
	MergeRule               *string  `json:"merge_rule,omitempty"`
	RandomSeed              *int64   `json:"random_seed,omitempty"`
	AugmentStartEnd         *bool    `json:"augment_start_end,omitempty"`

	// Retrieval
	RetryDelay *string `json:"retry_delay,omitempty"` // duration string like "10s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt64(v int64) *int64       { return &v }
func ptrBool(v bool) *bool          { return &v }

// DefaultTuningConfig returns a TuningConfig with every field set.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		MatchThresholdSecs:       ptrFloat64(DefaultMatchThresholdSecs),
		TimeSyncFuzzSecs:         ptrFloat64(DefaultTimeSyncFuzzSecs),
		SensedRangeFuzzSecs:      ptrFloat64(DefaultSensedRangeFuzzSecs),
		SectionExtensionSecs:     ptrFloat64(DefaultSectionExtensionSecs),
		MaxDurationVariationSecs: ptrFloat64(DefaultMaxDurationVariationSecs),
		DistanceThresholdMeters:  ptrFloat64(DefaultDistanceThresholdMeters),
		MergeRule:                ptrString(MergeMidpoint),
		RandomSeed:               ptrInt64(DefaultRandomSeed),
		AugmentStartEnd:          ptrBool(false),
		RetryDelay:               ptrString(DefaultRetryDelay),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *TuningConfig) Validate() error {
	nonNegative := map[string]*float64{
		"match_threshold_secs":        c.MatchThresholdSecs,
		"time_sync_fuzz_secs":         c.TimeSyncFuzzSecs,
		"sensed_range_fuzz_secs":      c.SensedRangeFuzzSecs,
		"section_extension_secs":      c.SectionExtensionSecs,
		"max_duration_variation_secs": c.MaxDurationVariationSecs,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}

	if c.DistanceThresholdMeters != nil && *c.DistanceThresholdMeters <= 0 {
		return fmt.Errorf("distance_threshold_meters must be positive, got %f", *c.DistanceThresholdMeters)
	}

	if c.MergeRule != nil {
		switch *c.MergeRule {
		case MergeMidpoint, MergeRandom, MergeCloserGTDistance, MergeCloserGTProjection:
		default:
			return fmt.Errorf("unknown merge_rule %q", *c.MergeRule)
		}
	}

	if c.RetryDelay != nil && *c.RetryDelay != "" {
		if _, err := time.ParseDuration(*c.RetryDelay); err != nil {
			return fmt.Errorf("invalid retry_delay '%s': %w", *c.RetryDelay, err)
		}
	}

	return nil
}

// GetMatchThresholdSecs returns the boundary matching threshold in seconds.
func (c *TuningConfig) GetMatchThresholdSecs() float64 {
	if c == nil || c.MatchThresholdSecs == nil {
		return DefaultMatchThresholdSecs
	}
	return *c.MatchThresholdSecs
}

// GetTimeSyncFuzzSecs returns the fuzz applied when subsetting range data.
func (c *TuningConfig) GetTimeSyncFuzzSecs() float64 {
	if c == nil || c.TimeSyncFuzzSecs == nil {
		return DefaultTimeSyncFuzzSecs
	}
	return *c.TimeSyncFuzzSecs
}

// GetSensedRangeFuzzSecs returns the fuzz used to select sensed segments for a range.
func (c *TuningConfig) GetSensedRangeFuzzSecs() float64 {
	if c == nil || c.SensedRangeFuzzSecs == nil {
		return DefaultSensedRangeFuzzSecs
	}
	return *c.SensedRangeFuzzSecs
}

// GetSectionExtensionSecs returns how far past a trip end activity is still read.
func (c *TuningConfig) GetSectionExtensionSecs() float64 {
	if c == nil || c.SectionExtensionSecs == nil {
		return DefaultSectionExtensionSecs
	}
	return *c.SectionExtensionSecs
}

// GetMaxDurationVariationSecs returns the allowed deviation from the median range duration.
func (c *TuningConfig) GetMaxDurationVariationSecs() float64 {
	if c == nil || c.MaxDurationVariationSecs == nil {
		return DefaultMaxDurationVariationSecs
	}
	return *c.MaxDurationVariationSecs
}

// GetDistanceThresholdMeters returns the reference trajectory distance threshold.
func (c *TuningConfig) GetDistanceThresholdMeters() float64 {
	if c == nil || c.DistanceThresholdMeters == nil {
		return DefaultDistanceThresholdMeters
	}
	return *c.DistanceThresholdMeters
}

// GetMergeRule returns the configured merge rule.
func (c *TuningConfig) GetMergeRule() string {
	if c == nil || c.MergeRule == nil {
		return MergeMidpoint
	}
	return *c.MergeRule
}

// GetRandomSeed returns the seed for the random merge rule.
func (c *TuningConfig) GetRandomSeed() int64 {
	if c == nil || c.RandomSeed == nil {
		return DefaultRandomSeed
	}
	return *c.RandomSeed
}

// GetAugmentStartEnd reports whether reference trajectories recover start/end region points.
func (c *TuningConfig) GetAugmentStartEnd() bool {
	if c == nil || c.AugmentStartEnd == nil {
		return false
	}
	return *c.AugmentStartEnd
}

// GetRetryDelay returns the delay before the single retrieval retry.
func (c *TuningConfig) GetRetryDelay() time.Duration {
	if c == nil || c.RetryDelay == nil || *c.RetryDelay == "" {
		d, _ := time.ParseDuration(DefaultRetryDelay)
		return d
	}
	d, err := time.ParseDuration(*c.RetryDelay)
	if err != nil {
		d, _ = time.ParseDuration(DefaultRetryDelay)
	}
	return d
}
