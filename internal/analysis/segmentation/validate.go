package segmentation

import (
	"fmt"
	"sort"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/stats"
)

// ValidateDurations compares the duration of same-id ranges across devices
// and reports every range that strays maxVariation seconds or more from the
// median. The keys of byDevice are device labels.
func ValidateDurations(byDevice map[string][]models.Range, maxVariation float64) []string {
	durations := make(map[string]map[string]float64)
	for label, ranges := range byDevice {
		for _, r := range ranges {
			if durations[r.TripID] == nil {
				durations[r.TripID] = make(map[string]float64)
			}
			durations[r.TripID][label] = r.Duration
		}
	}

	tripIDs := make([]string, 0, len(durations))
	for id := range durations {
		tripIDs = append(tripIDs, id)
	}
	sort.Strings(tripIDs)

	var warnings []string
	for _, id := range tripIDs {
		labels := make([]string, 0, len(durations[id]))
		values := make([]float64, 0, len(durations[id]))
		for label, d := range durations[id] {
			labels = append(labels, label)
			values = append(values, d)
		}
		median := stats.Median(values)
		if stats.MaxDeviation(values, median) < maxVariation {
			continue
		}

		sort.Strings(labels)
		for _, label := range labels {
			d := durations[id][label]
			if diff := d - median; diff >= maxVariation || -diff >= maxVariation {
				warnings = append(warnings, fmt.Sprintf("range %s on %s lasted %.0fs, median is %.0fs", id, label, d, median))
			}
		}
	}
	return warnings
}
