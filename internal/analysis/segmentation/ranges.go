package segmentation

import (
	"sort"
	"strconv"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

// FilterTransitions keeps the events of one spec whose kind belongs to pair,
// ordered by ts. The input slice is not modified.
func FilterTransitions(events []models.TransitionEvent, specID string, pair models.TransitionPair) []models.TransitionEvent {
	var out []models.TransitionEvent
	for _, e := range events {
		if pair.Contains(e.Transition) && e.SpecID == specID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// SelectWithin keeps the events of pair whose ts lies inside r, ordered by ts.
func SelectWithin(events []models.TransitionEvent, pair models.TransitionPair, r models.Range) []models.TransitionEvent {
	var out []models.TransitionEvent
	for _, e := range events {
		if pair.Contains(e.Transition) && r.Encloses(e.TS) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// BuildRanges pairs time-ordered start/stop events into ranges.
//
// A duplicated START logged ahead of its STOP is repaired by swapping the
// second START with the following STOP. Only the triples at even offsets are
// inspected, once each. A trailing START without a STOP is closed at
// min(now, specEndTS). Any other malformation is returned as a
// *CorruptInputError.
func BuildRanges(events []models.TransitionEvent, pair models.TransitionPair, specEndTS float64, clock timeutil.Clock) ([]models.Range, error) {
	if len(events) == 0 {
		return nil, nil
	}

	list := repairOrder(events)

	if len(list)%2 == 1 {
		now := timeutil.UnixSeconds(clock)
		end := now
		if now > specEndTS {
			end = specEndTS
		}
		fake := list[len(list)-1]
		fake.Transition = pair.Stop
		fake.TS = end
		fake.WriteTS = end
		monitoring.Logf("[Segmentation] Incomplete range for %s, closing at %.0f", fake.TripID, end)
		list = append(list, fake)
	}

	runs := make(map[string]int)
	ranges := make([]models.Range, 0, len(list)/2)
	for i := 0; i+1 < len(list); i += 2 {
		s, e := list[i], list[i+1]
		if err := validatePair(s, e, pair); err != nil {
			return nil, err
		}

		run := runs[s.TripID]
		runs[s.TripID] = run + 1

		start, end := s.RangeTS(), e.RangeTS()
		ranges = append(ranges, models.Range{
			TripID:     s.TripID + "_" + strconv.Itoa(run),
			TripIDBase: s.TripID,
			TripRun:    run,
			StartTS:    start,
			EndTS:      end,
			Duration:   end - start,
		})
	}

	return ranges, nil
}

// repairOrder returns a copy of events with the duplicate-start pattern
// START, START, STOP rewritten to START, STOP, START.
func repairOrder(events []models.TransitionEvent) []models.TransitionEvent {
	list := make([]models.TransitionEvent, len(events), len(events)+1)
	copy(list, events)
	for i := 0; i+2 < len(list); i += 2 {
		if list[i].Transition.IsStart() && list[i+1].Transition.IsStart() && list[i+2].Transition.IsStop() {
			list[i+1], list[i+2] = list[i+2], list[i+1]
		}
	}
	return list
}

func validatePair(s, e models.TransitionEvent, pair models.TransitionPair) error {
	if s.Transition != pair.Start {
		return corrupt("build", s.TripID, "start transition has %s, want %s", s.Transition, pair.Start)
	}
	if e.Transition != pair.Stop {
		return corrupt("build", e.TripID, "stop transition has %s, want %s", e.Transition, pair.Stop)
	}
	if s.TripID != e.TripID {
		return corrupt("build", s.TripID, "trip_id mismatch %q != %q", s.TripID, e.TripID)
	}
	if !(e.TS > s.TS) {
		return corrupt("build", s.TripID, "end %.3f is not after start %.3f", e.TS, s.TS)
	}

	fields := []struct {
		name string
		a, b string
	}{
		{"spec_id", s.SpecID, e.SpecID},
		{"device_manufacturer", s.DeviceManufacturer, e.DeviceManufacturer},
		{"device_model", s.DeviceModel, e.DeviceModel},
		{"device_version", s.DeviceVersion, e.DeviceVersion},
	}
	for _, f := range fields {
		if f.a != f.b {
			return corrupt("build", s.TripID, "field %s mismatch %q != %q", f.name, f.a, f.b)
		}
	}
	return nil
}
