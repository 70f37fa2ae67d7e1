package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TransitionKind is a manual evaluation transition. Devices report it either
// as a legacy string constant or as its numeric code; both decode to the
// same kind.
type TransitionKind int

// Transition kinds, valued by their numeric codes
const (
	TransitionUnknown      TransitionKind = -1
	StartCalibrationPeriod TransitionKind = 0
	StopCalibrationPeriod  TransitionKind = 1
	StartEvaluationPeriod  TransitionKind = 2
	StopEvaluationPeriod   TransitionKind = 3
	StartEvaluationTrip    TransitionKind = 4
	StopEvaluationTrip     TransitionKind = 5
	StartEvaluationSection TransitionKind = 6
	StopEvaluationSection  TransitionKind = 7
)

var transitionNames = map[TransitionKind]string{
	StartCalibrationPeriod: "START_CALIBRATION_PERIOD",
	StopCalibrationPeriod:  "STOP_CALIBRATION_PERIOD",
	StartEvaluationPeriod:  "START_EVALUATION_PERIOD",
	StopEvaluationPeriod:   "STOP_EVALUATION_PERIOD",
	StartEvaluationTrip:    "START_EVALUATION_TRIP",
	StopEvaluationTrip:     "STOP_EVALUATION_TRIP",
	StartEvaluationSection: "START_EVALUATION_SECTION",
	StopEvaluationSection:  "STOP_EVALUATION_SECTION",
}

var transitionsByName = func() map[string]TransitionKind {
	m := make(map[string]TransitionKind, len(transitionNames))
	for k, name := range transitionNames {
		m[name] = k
	}
	return m
}()

// ParseTransitionKind accepts the legacy string form or the decimal code.
func ParseTransitionKind(s string) TransitionKind {
	if k, ok := transitionsByName[s]; ok {
		return k
	}
	if code, err := strconv.Atoi(s); err == nil {
		return TransitionKindFromCode(code)
	}
	return TransitionUnknown
}

// TransitionKindFromCode maps a numeric code to its kind.
func TransitionKindFromCode(code int) TransitionKind {
	k := TransitionKind(code)
	if _, ok := transitionNames[k]; ok {
		return k
	}
	return TransitionUnknown
}

// String returns the legacy string form.
func (k TransitionKind) String() string {
	if name, ok := transitionNames[k]; ok {
		return name
	}
	return "UNKNOWN_TRANSITION"
}

// IsKnown reports whether k is one of the eight evaluation transitions.
func (k TransitionKind) IsKnown() bool {
	_, ok := transitionNames[k]
	return ok
}

// IsStart reports whether k opens a range. Start kinds have even codes.
func (k TransitionKind) IsStart() bool {
	return k.IsKnown() && k%2 == 0
}

// IsStop reports whether k closes a range.
func (k TransitionKind) IsStop() bool {
	return k.IsKnown() && k%2 == 1
}

// MarshalJSON writes the legacy string form.
func (k TransitionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes either representation.
func (k *TransitionKind) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = TransitionUnknown
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode transition: %w", err)
		}
		*k = ParseTransitionKind(s)
		return nil
	}
	var code float64
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("failed to decode transition code: %w", err)
	}
	*k = TransitionKindFromCode(int(code))
	return nil
}

// TransitionPair is the (start, stop) pair that delimits one range category.
type TransitionPair struct {
	Start TransitionKind
	Stop  TransitionKind
}

// Contains reports whether k is either side of the pair.
func (p TransitionPair) Contains(k TransitionKind) bool {
	return k == p.Start || k == p.Stop
}

// Range categories
var (
	CalibrationPair = TransitionPair{StartCalibrationPeriod, StopCalibrationPeriod}
	EvaluationPair  = TransitionPair{StartEvaluationPeriod, StopEvaluationPeriod}
	TripPair        = TransitionPair{StartEvaluationTrip, StopEvaluationTrip}
	SectionPair     = TransitionPair{StartEvaluationSection, StopEvaluationSection}
)

// TransitionEvent is one manual/evaluation_transition entry.
type TransitionEvent struct {
	TS                 float64        `json:"ts"`
	WriteTS            float64        `json:"write_ts,omitempty"`
	Transition         TransitionKind `json:"transition"`
	TripID             string         `json:"trip_id"`
	SpecID             string         `json:"spec_id"`
	DeviceManufacturer string         `json:"device_manufacturer"`
	DeviceModel        string         `json:"device_model"`
	DeviceVersion      string         `json:"device_version"`
}

// RangeTS is the timestamp used for range bounds: the datastore write
// timestamp when present, the event timestamp otherwise.
func (e TransitionEvent) RangeTS() float64 {
	if e.WriteTS > 0 {
		return e.WriteTS
	}
	return e.TS
}
