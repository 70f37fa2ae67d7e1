package segmentation

import (
	"strings"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

// CommonTripID strips the per-device role suffix from an evaluation trip id.
func CommonTripID(tripID string) string {
	common, _, _ := strings.Cut(tripID, ":")
	return common
}

// roleSuffix parses "<common>:<condition>_<run>..." into condition and run.
func roleSuffix(tripID string) (string, string, bool) {
	_, suffix, ok := strings.Cut(tripID, ":")
	if !ok {
		return "", "", false
	}
	parts := strings.Split(suffix, "_")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// LinkEvaluationRanges assigns a common trip id and a role to the evaluation
// ranges of one OS family. Devices must be in configured order: the first
// column is the accuracy control and the last the power control.
func LinkEvaluationRanges(devices []*models.Device) error {
	if len(devices) == 0 {
		return nil
	}

	n := len(devices[0].EvaluationRanges)
	for _, d := range devices[1:] {
		if len(d.EvaluationRanges) != n {
			return corrupt("link", "", "device %s has %d evaluation ranges but %s has %d",
				d.Label, len(d.EvaluationRanges), devices[0].Label, n)
		}
	}

	for idx := 0; idx < n; idx++ {
		column := make([]*models.EvaluationRange, len(devices))
		for i, d := range devices {
			column[i] = d.EvaluationRanges[idx]
		}
		if err := linkColumn(devices, column); err != nil {
			return err
		}
	}

	monitoring.Logf("[Segmentation] Linked %d evaluation ranges across %d devices", n, len(devices))
	return nil
}

func linkColumn(devices []*models.Device, column []*models.EvaluationRange) error {
	common := CommonTripID(column[0].TripID)
	for i, r := range column {
		if c := CommonTripID(r.TripID); c != common {
			return corrupt("link", r.TripID, "device %s has common id %q, expected %q", devices[i].Label, c, common)
		}
	}

	// roles are written only by the devices under test
	first, last := 1, len(column)-1
	if len(column) <= 2 {
		first, last = 0, len(column)
	}

	conditions := make([]string, len(column))
	run := ""
	for i := first; i < last; i++ {
		cond, r, ok := roleSuffix(column[i].TripID)
		if !ok {
			return corrupt("link", column[i].TripID, "device %s has no <condition>_<run> role suffix", devices[i].Label)
		}
		if run != "" && r != run {
			return corrupt("link", column[i].TripID, "device %s is on run %s, expected %s", devices[i].Label, r, run)
		}
		conditions[i] = cond
		run = r
	}

	for i, r := range column {
		r.CommonTripID = common
		switch {
		case i == 0:
			r.Role = models.Role{Kind: models.RoleAccuracyControl, Run: run}
		case i == len(column)-1:
			r.Role = models.Role{Kind: models.RolePowerControl, Run: run}
		default:
			r.Role = models.Role{Kind: models.RoleEvaluation, Condition: conditions[i], Run: run}
		}
	}
	return nil
}
