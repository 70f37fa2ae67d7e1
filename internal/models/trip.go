package models

// Range is a time interval paired from a start and a stop transition
type Range struct {
	// Identification
	TripID     string `json:"trip_id"`      // TripIDBase + "_" + TripRun
	TripIDBase string `json:"trip_id_base"` // trip_id as logged by the device
	TripRun    int    `json:"trip_run"`     // zero-based repeat counter per base

	// Temporal info
	StartTS  float64 `json:"start_ts"`
	EndTS    float64 `json:"end_ts"`
	Duration float64 `json:"duration"` // seconds
}

// Span returns the range as a matchable ground truth span.
func (r Range) Span() GroundTruthSpan {
	return GroundTruthSpan{ID: r.TripID, StartTS: r.StartTS, EndTS: r.EndTS}
}

// Covers reports whether ts lies in (start-fuzz, end+fuzz].
func (r Range) Covers(ts, fuzz float64) bool {
	return ts > r.StartTS-fuzz && ts <= r.EndTS+fuzz
}

// Encloses reports whether ts lies in [start, end].
func (r Range) Encloses(ts float64) bool {
	return ts >= r.StartTS && ts <= r.EndTS
}

// RangeData is the raw per-device data that falls inside a range
type RangeData struct {
	Locations         []Location
	FilteredLocations []Location
	MotionActivities  []MotionActivity
	Transitions       []StateTransition
}

// DataCounts summarizes a RangeData for output
type DataCounts struct {
	Locations         int `json:"locations"`
	FilteredLocations int `json:"filtered_locations"`
	MotionActivities  int `json:"motion_activities"`
	Transitions       int `json:"transitions"`
}

// Counts returns the number of entries of each kind.
func (d RangeData) Counts() DataCounts {
	return DataCounts{
		Locations:         len(d.Locations),
		FilteredLocations: len(d.FilteredLocations),
		MotionActivities:  len(d.MotionActivities),
		Transitions:       len(d.Transitions),
	}
}

// Subset returns the entries of d covered by r widened by fuzz.
func (d RangeData) Subset(r Range, fuzz float64) RangeData {
	var out RangeData
	for _, l := range d.Locations {
		if r.Covers(l.TS, fuzz) {
			out.Locations = append(out.Locations, l)
		}
	}
	for _, l := range d.FilteredLocations {
		if r.Covers(l.TS, fuzz) {
			out.FilteredLocations = append(out.FilteredLocations, l)
		}
	}
	for _, a := range d.MotionActivities {
		if r.Covers(a.TS, fuzz) {
			out.MotionActivities = append(out.MotionActivities, a)
		}
	}
	for _, t := range d.Transitions {
		if r.Covers(t.TS, fuzz) {
			out.Transitions = append(out.Transitions, t)
		}
	}
	return out
}

// CalibrationRange is one calibration period on one device
type CalibrationRange struct {
	Range
	Data   RangeData  `json:"-"`
	Counts DataCounts `json:"counts"`
}

// EvaluationRange is one scripted run of the whole evaluation window
type EvaluationRange struct {
	Range

	// Linking
	CommonTripID string `json:"eval_common_trip_id"`
	Role         Role   `json:"eval_role"`

	// Ground truth hierarchy
	TripRanges []*TripRange `json:"evaluation_trip_ranges"`

	// Device data
	Data   RangeData  `json:"-"`
	Counts DataCounts `json:"counts"`

	// Matching
	SensedTrips []SensedSegment        `json:"sensed_trip_ranges,omitempty"`
	TripMatches MatchSet               `json:"trip_matches,omitempty"`
	TripDiffs   map[string]SegmentDiff `json:"trip_diffs,omitempty"`
}

// TripRange is one ground-truth trip inside an evaluation range
type TripRange struct {
	Range

	SectionRanges []*SectionRange `json:"evaluation_section_ranges"`

	Data   RangeData  `json:"-"`
	Counts DataCounts `json:"counts"`

	SensedSections []SensedSegment        `json:"sensed_section_ranges,omitempty"`
	SectionMatches MatchSet               `json:"section_matches,omitempty"`
	SectionDiffs   map[string]SegmentDiff `json:"section_diffs,omitempty"`
	ModeChecks     map[string]ModeCheck   `json:"mode_checks,omitempty"`
}

// SectionRange is one single-mode leg inside a trip range
type SectionRange struct {
	Range

	Data   RangeData  `json:"-"`
	Counts DataCounts `json:"counts"`

	Reference *ReferenceTrajectory `json:"reference_trajectory,omitempty"`
}

// Clone returns a deep copy of the trip range and its sections.
func (t *TripRange) Clone() *TripRange {
	c := *t
	c.Data = t.Data.clone()
	c.SensedSections = cloneSlice(t.SensedSections)
	c.SectionMatches = t.SectionMatches.Clone()
	c.SectionDiffs = cloneMap(t.SectionDiffs)
	c.ModeChecks = cloneMap(t.ModeChecks)
	c.SectionRanges = make([]*SectionRange, len(t.SectionRanges))
	for i, s := range t.SectionRanges {
		c.SectionRanges[i] = s.Clone()
	}
	return &c
}

// Clone returns a deep copy of the section range.
func (s *SectionRange) Clone() *SectionRange {
	c := *s
	c.Data = s.Data.clone()
	c.Reference = s.Reference.Clone()
	return &c
}

// CloneTripRanges deep-copies a list of trip ranges.
func CloneTripRanges(trips []*TripRange) []*TripRange {
	out := make([]*TripRange, len(trips))
	for i, t := range trips {
		out[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of the match set.
func (m MatchSet) Clone() MatchSet {
	if m == nil {
		return nil
	}
	c := make(MatchSet, len(m))
	for k, v := range m {
		c[k] = MatchResult{Type: v.Type, Match: cloneSlice(v.Match)}
	}
	return c
}

func (d RangeData) clone() RangeData {
	return RangeData{
		Locations:         cloneSlice(d.Locations),
		FilteredLocations: cloneSlice(d.FilteredLocations),
		MotionActivities:  cloneSlice(d.MotionActivities),
		Transitions:       cloneSlice(d.Transitions),
	}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
