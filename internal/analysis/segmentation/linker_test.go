package segmentation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

func evalRanges(suffix string, n int) []*models.EvaluationRange {
	out := make([]*models.EvaluationRange, n)
	for i := range out {
		base := "fixed_route"
		if suffix != "" {
			base = fmt.Sprintf("fixed_route:%s_%d", suffix, i)
		}
		out[i] = &models.EvaluationRange{Range: models.Range{
			TripID:     base + "_0",
			TripIDBase: base,
			StartTS:    float64(i * 1000),
			EndTS:      float64(i*1000 + 900),
			Duration:   900,
		}}
	}
	return out
}

func device(label string, role models.RoleKind, suffix string, n int) *models.Device {
	return &models.Device{
		Label:            label,
		OS:               "android",
		ConfiguredRole:   role,
		EvaluationRanges: evalRanges(suffix, n),
	}
}

func TestLinkEvaluationRangesAssignsRoles(t *testing.T) {
	devices := []*models.Device{
		device("android-1", models.RoleAccuracyControl, "ACC", 3),
		device("android-2", models.RoleEvaluation, "x", 3),
		device("android-3", models.RoleEvaluation, "y", 3),
		device("android-4", models.RolePowerControl, "PWR", 3),
	}

	require.NoError(t, LinkEvaluationRanges(devices))

	for idx := 0; idx < 3; idx++ {
		counts := map[string]int{}
		for _, d := range devices {
			r := d.EvaluationRanges[idx]
			assert.Equal(t, "fixed_route", r.CommonTripID)
			assert.Equal(t, fmt.Sprint(idx), r.Role.Run)
			counts[r.Role.String()]++
		}
		assert.Equal(t, map[string]int{
			"accuracy_control": 1,
			"power_control":    1,
			"evaluation_x":     1,
			"evaluation_y":     1,
		}, counts)
	}
	assert.Equal(t, models.RoleAccuracyControl, devices[0].EvaluationRanges[0].Role.Kind)
	assert.Equal(t, models.RolePowerControl, devices[3].EvaluationRanges[0].Role.Kind)
}

func TestLinkEvaluationRangesUnequalCounts(t *testing.T) {
	devices := []*models.Device{
		device("android-1", models.RoleAccuracyControl, "ACC", 3),
		device("android-2", models.RoleEvaluation, "x", 2),
		device("android-3", models.RolePowerControl, "PWR", 3),
	}

	err := LinkEvaluationRanges(devices)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptInput))
	assert.Contains(t, err.Error(), "android-2")
}

func TestLinkEvaluationRangesCommonIDMismatch(t *testing.T) {
	devices := []*models.Device{
		device("android-1", models.RoleAccuracyControl, "ACC", 1),
		device("android-2", models.RoleEvaluation, "x", 1),
		device("android-3", models.RolePowerControl, "PWR", 1),
	}
	devices[1].EvaluationRanges[0].TripID = "other_route:x_0_0"

	err := LinkEvaluationRanges(devices)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptInput))
}

func TestLinkEvaluationRangesRunMismatch(t *testing.T) {
	devices := []*models.Device{
		device("android-1", models.RoleAccuracyControl, "ACC", 1),
		device("android-2", models.RoleEvaluation, "x", 1),
		device("android-3", models.RoleEvaluation, "y", 1),
		device("android-4", models.RolePowerControl, "PWR", 1),
	}
	devices[2].EvaluationRanges[0].TripID = "fixed_route:y_7_0"

	err := LinkEvaluationRanges(devices)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptInput))
}

func TestLinkEvaluationRangesTwoDevices(t *testing.T) {
	devices := []*models.Device{
		device("ios-1", models.RoleAccuracyControl, "HAHFDC", 2),
		device("ios-2", models.RoleEvaluation, "HAHFDC", 2),
	}

	require.NoError(t, LinkEvaluationRanges(devices))
	assert.Equal(t, "accuracy_control", devices[0].EvaluationRanges[1].Role.String())
	assert.Equal(t, "power_control", devices[1].EvaluationRanges[1].Role.String())
	assert.Equal(t, "1", devices[1].EvaluationRanges[1].Role.Run)
}

func TestCommonTripID(t *testing.T) {
	assert.Equal(t, "fixed_route", CommonTripID("fixed_route:HAHFDC_0_0"))
	assert.Equal(t, "no_suffix_0", CommonTripID("no_suffix_0"))
}
