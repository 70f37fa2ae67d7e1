package models

// SensedMode is a device-detected motion mode, normalized across OS families
type SensedMode string

// SensedMode constants
const (
	SensedAutomotive SensedMode = "AUTOMOTIVE"
	SensedCycling    SensedMode = "CYCLING"
	SensedWalking    SensedMode = "WALKING"
	SensedStationary SensedMode = "STATIONARY"
	SensedInvalid    SensedMode = "INVALID" // ambiguous or unknown reading, never part of a segment
)

// IsMoving reports whether m is a valid non-stationary mode.
func (m SensedMode) IsMoving() bool {
	return m == SensedAutomotive || m == SensedCycling || m == SensedWalking
}

// SensedSegment is a time interval detected by the device itself
type SensedSegment struct {
	StartTS float64    `json:"start_ts"`
	EndTS   float64    `json:"end_ts"`
	Mode    SensedMode `json:"mode,omitempty"` // empty for trip-level segments
}

// Duration returns the segment length in seconds.
func (s SensedSegment) Duration() float64 {
	return s.EndTS - s.StartTS
}

// GroundTruthSpan is the part of a ground-truth range the matcher needs
type GroundTruthSpan struct {
	ID      string  `json:"id"`
	StartTS float64 `json:"start_ts"`
	EndTS   float64 `json:"end_ts"`
}

// MotionActivity is one normalized activity reading
type MotionActivity struct {
	TS   float64    `json:"ts"`
	Mode SensedMode `json:"mode"`
}

// StateTransition is one device state machine transition
type StateTransition struct {
	TS         float64 `json:"ts"`
	Transition string  `json:"transition"`
}

// Ground truth travel modes
const (
	ModeWalking   = "WALKING"
	ModeBicycling = "BICYCLING"
	ModeEscooter  = "ESCOOTER"
	ModeBus       = "BUS"
	ModeTrain     = "TRAIN"
	ModeLightRail = "LIGHT_RAIL"
	ModeSubway    = "SUBWAY"
	ModeCar       = "CAR"
	ModeStopped   = "STOPPED"
)

// BaseMode maps a ground truth mode to the sensed mode a phone reports for it.
var BaseMode = map[string]SensedMode{
	ModeWalking:   SensedWalking,
	ModeBicycling: SensedCycling,
	ModeEscooter:  SensedCycling,
	ModeBus:       SensedAutomotive,
	ModeTrain:     SensedAutomotive,
	ModeLightRail: SensedAutomotive,
	ModeSubway:    SensedAutomotive,
	ModeCar:       SensedAutomotive,
}
