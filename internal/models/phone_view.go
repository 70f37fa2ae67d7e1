package models

// Device is one phone taking part in an experiment
type Device struct {
	Label          string   `json:"label"`
	OS             string   `json:"os"`
	ConfiguredRole RoleKind `json:"configured_role"`
	RoleName       string   `json:"role_name"` // role as written in the experiment spec

	CalibrationRanges []*CalibrationRange `json:"calibration_ranges"`
	EvaluationRanges  []*EvaluationRange  `json:"evaluation_ranges"`

	Transitions []TransitionEvent `json:"-"` // every evaluation transition retrieved for the device
}

// PhoneFamily groups the devices of one OS family in configured order
type PhoneFamily struct {
	OS      string    `json:"os"`
	Devices []*Device `json:"devices"`
}

// AccuracyControl returns the device configured as accuracy control, or nil.
func (f *PhoneFamily) AccuracyControl() *Device {
	for _, d := range f.Devices {
		if d.ConfiguredRole == RoleAccuracyControl {
			return d
		}
	}
	return nil
}

// PhoneView is the linked range hierarchy for one experiment
type PhoneView struct {
	SpecID      string         `json:"spec_id"`
	SpecName    string         `json:"spec_name"`
	EvalStartTS float64        `json:"eval_start_ts"`
	EvalEndTS   float64        `json:"eval_end_ts"`
	Families    []*PhoneFamily `json:"families"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Family returns the family for an OS, or nil.
func (v *PhoneView) Family(os string) *PhoneFamily {
	for _, f := range v.Families {
		if f.OS == os {
			return f
		}
	}
	return nil
}

// Devices returns every device across families in configured order.
func (v *PhoneView) Devices() []*Device {
	var out []*Device
	for _, f := range v.Families {
		out = append(out, f.Devices...)
	}
	return out
}
