package phoneview

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis/segmentation"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// OS families
const (
	OSAndroid = "android"
	OSIOS     = "ios"
)

// Sensed trips open and close on these state machine transitions.
var tripPatterns = map[string]segmentation.TripPattern{
	OSAndroid: {
		Start: regexp.MustCompile(`^local\.transition\.exited_geofence$`),
		End:   regexp.MustCompile(`^local\.transition\.stopped_moving$`),
	},
	OSIOS: {
		Start: regexp.MustCompile(`^(?:T_EXITED_GEOFENCE|T_VISIT_ENDED)$`),
		End:   regexp.MustCompile(`^(?:T_TRIP_ENDED|T_VISIT_STARTED)$`),
	},
}

// TripPatternFor returns the sensed trip pattern of an OS family.
func TripPatternFor(os string) (segmentation.TripPattern, error) {
	p, ok := tripPatterns[os]
	if !ok {
		return segmentation.TripPattern{}, fmt.Errorf("%w: unknown OS %q", evalspec.ErrInvalidSpec, os)
	}
	return p, nil
}

// android DetectedActivity codes
var androidModes = map[int]models.SensedMode{
	0: models.SensedAutomotive, // IN_VEHICLE
	1: models.SensedCycling,    // ON_BICYCLE
	2: models.SensedWalking,    // ON_FOOT
	3: models.SensedStationary, // STILL
	7: models.SensedWalking,    // WALKING
	8: models.SensedWalking,    // RUNNING
}

type androidActivity struct {
	TS      float64 `json:"ts"`
	WriteTS float64 `json:"write_ts"`
	Code    *int    `json:"zzbhB"`
	Type    *int    `json:"type"`
}

type iosActivity struct {
	TS         float64 `json:"ts"`
	WriteTS    float64 `json:"write_ts"`
	Automotive bool    `json:"automotive"`
	Cycling    bool    `json:"cycling"`
	Walking    bool    `json:"walking"`
	Running    bool    `json:"running"`
	Stationary bool    `json:"stationary"`
	Unknown    bool    `json:"unknown"`
}

// mode is the single activity the phone is sure about. Running counts as
// walking; no flag or several flags are invalid.
func (a iosActivity) mode() models.SensedMode {
	var modes []models.SensedMode
	add := func(set bool, m models.SensedMode) {
		if set {
			modes = append(modes, m)
		}
	}
	add(a.Automotive, models.SensedAutomotive)
	add(a.Cycling, models.SensedCycling)
	add(a.Walking, models.SensedWalking)
	add(a.Running, models.SensedWalking)
	add(a.Stationary, models.SensedStationary)
	add(a.Unknown, models.SensedInvalid)
	if len(modes) != 1 {
		return models.SensedInvalid
	}
	return modes[0]
}

func activityTS(ts, writeTS float64) float64 {
	if ts == 0 {
		return writeTS
	}
	return ts
}

// MotionActivities decodes the background/motion_activity entries of one
// OS family into normalized readings. Entries without a ts use their
// write_ts.
func MotionActivities(os string, entries []models.Entry) ([]models.MotionActivity, error) {
	out := make([]models.MotionActivity, 0, len(entries))
	for _, e := range entries {
		switch os {
		case OSAndroid:
			var a androidActivity
			if err := e.DecodeData(&a); err != nil {
				return nil, err
			}
			mode := models.SensedInvalid
			code := a.Code
			if code == nil {
				code = a.Type
			}
			if code != nil {
				if m, ok := androidModes[*code]; ok {
					mode = m
				}
			}
			out = append(out, models.MotionActivity{TS: activityTS(a.TS, a.WriteTS), Mode: mode})
		case OSIOS:
			var a iosActivity
			if err := e.DecodeData(&a); err != nil {
				return nil, err
			}
			out = append(out, models.MotionActivity{TS: activityTS(a.TS, a.WriteTS), Mode: a.mode()})
		default:
			return nil, fmt.Errorf("%w: unknown OS %q", evalspec.ErrInvalidSpec, os)
		}
	}
	return out, nil
}

// Transitions decodes manual/evaluation_transition entries.
func Transitions(entries []models.Entry) ([]models.TransitionEvent, error) {
	out := make([]models.TransitionEvent, 0, len(entries))
	for _, e := range entries {
		var t models.TransitionEvent
		if err := e.DecodeData(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Locations decodes background/location or background/filtered_location
// entries.
func Locations(entries []models.Entry) ([]models.Location, error) {
	out := make([]models.Location, 0, len(entries))
	for _, e := range entries {
		var l models.Location
		if err := e.DecodeData(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// StateTransitions decodes statemachine/transition entries. A numeric
// transition is kept as its decimal text.
func StateTransitions(entries []models.Entry) ([]models.StateTransition, error) {
	out := make([]models.StateTransition, 0, len(entries))
	for _, e := range entries {
		var raw struct {
			TS         float64         `json:"ts"`
			Transition json.RawMessage `json:"transition"`
		}
		if err := e.DecodeData(&raw); err != nil {
			return nil, err
		}
		var name string
		if err := json.Unmarshal(raw.Transition, &name); err != nil {
			name = strings.TrimSpace(string(raw.Transition))
		}
		out = append(out, models.StateTransition{TS: raw.TS, Transition: name})
	}
	return out, nil
}
