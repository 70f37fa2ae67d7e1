package models

import "strings"

// RoleKind is the part a device plays in an experiment
type RoleKind string

const (
	RoleAccuracyControl RoleKind = "accuracy_control"
	RolePowerControl    RoleKind = "power_control"
	RoleEvaluation      RoleKind = "evaluation"
)

// ParseRoleKind maps a configured phone role ("accuracy_control",
// "power_control", "evaluation_<anything>") to its kind.
func ParseRoleKind(s string) (RoleKind, bool) {
	switch {
	case s == string(RoleAccuracyControl):
		return RoleAccuracyControl, true
	case s == string(RolePowerControl):
		return RolePowerControl, true
	case strings.HasPrefix(s, string(RoleEvaluation)):
		return RoleEvaluation, true
	}
	return "", false
}

// IsControl reports whether the role is one of the always-on controls.
func (k RoleKind) IsControl() bool {
	return k == RoleAccuracyControl || k == RolePowerControl
}

// Role is the role a device range was assigned by linking.
type Role struct {
	Kind      RoleKind `json:"kind"`
	Condition string   `json:"condition,omitempty"`
	Run       string   `json:"run"`
}

// String renders accuracy_control, power_control or evaluation_<condition>.
func (r Role) String() string {
	if r.Kind == RoleEvaluation {
		return string(RoleEvaluation) + "_" + r.Condition
	}
	return string(r.Kind)
}
