package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuning(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNilTuningReturnsDefaults(t *testing.T) {
	var cfg *TuningConfig
	assert.Equal(t, 1800.0, cfg.GetMatchThresholdSecs())
	assert.Equal(t, 25.0, cfg.GetDistanceThresholdMeters())
	assert.Equal(t, 0.0, cfg.GetTimeSyncFuzzSecs())
	assert.Equal(t, 300.0, cfg.GetMaxDurationVariationSecs())
	assert.Equal(t, MergeMidpoint, cfg.GetMergeRule())
	assert.Equal(t, 10*time.Second, cfg.GetRetryDelay())
	assert.False(t, cfg.GetAugmentStartEnd())
}

func TestDefaultTuningConfigMatchesGetters(t *testing.T) {
	cfg := DefaultTuningConfig()
	require.NoError(t, cfg.Validate())

	var empty *TuningConfig
	assert.Equal(t, empty.GetMatchThresholdSecs(), cfg.GetMatchThresholdSecs())
	assert.Equal(t, empty.GetSensedRangeFuzzSecs(), cfg.GetSensedRangeFuzzSecs())
	assert.Equal(t, empty.GetSectionExtensionSecs(), cfg.GetSectionExtensionSecs())
	assert.Equal(t, empty.GetRandomSeed(), cfg.GetRandomSeed())
	assert.Equal(t, empty.GetRetryDelay(), cfg.GetRetryDelay())
}

func TestLoadTuningConfigPartial(t *testing.T) {
	path := writeTuning(t, "tuning.json", `{"distance_threshold_meters": 40, "merge_rule": "random"}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.GetDistanceThresholdMeters())
	assert.Equal(t, MergeRandom, cfg.GetMergeRule())
	assert.Equal(t, 1800.0, cfg.GetMatchThresholdSecs())
}

func TestLoadTuningConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"wrong extension", "tuning.yaml", `{}`},
		{"bad json", "tuning.json", `{`},
		{"negative fuzz", "tuning.json", `{"time_sync_fuzz_secs": -1}`},
		{"zero distance", "tuning.json", `{"distance_threshold_meters": 0}`},
		{"unknown merge rule", "tuning.json", `{"merge_rule": "average"}`},
		{"bad retry delay", "tuning.json", `{"retry_delay": "ten"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuningConfig(writeTuning(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestCanonicalDefaultsFile(t *testing.T) {
	cfg, err := LoadTuningConfig(filepath.Join("..", "..", DefaultTuningPath))
	require.NoError(t, err)
	assert.Equal(t, DefaultTuningConfig().GetMatchThresholdSecs(), cfg.GetMatchThresholdSecs())
	assert.Equal(t, DefaultTuningConfig().GetDistanceThresholdMeters(), cfg.GetDistanceThresholdMeters())
	assert.Equal(t, DefaultTuningConfig().GetRetryDelay(), cfg.GetRetryDelay())
}
