package models

// Location is a single background/location or background/filtered_location fix
type Location struct {
	TS        float64 `json:"ts"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Accuracy  float64 `json:"accuracy,omitempty"` // meters
}

// Reference point sources other than a trace label
const (
	SourceMidpoint = "midpoint"
)

// ReferencePoint is one point of a fused reference trajectory
type ReferencePoint struct {
	TS        float64 `json:"ts"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Source    string  `json:"source"` // trace label or "midpoint"
}

// CoverageStats describes how well a candidate trajectory covers its window
type CoverageStats struct {
	Density      float64 `json:"coverage_density"` // points per second
	TimeCoverage float64 `json:"coverage_time"`    // (last-first)/duration
	MaxGap       float64 `json:"coverage_max_gap"` // largest gap/duration
}

// ReferenceTrajectory is the selected fused trajectory for one section
type ReferenceTrajectory struct {
	Strategy string                   `json:"strategy"`
	Stats    CoverageStats            `json:"stats"`
	Rejected map[string]CoverageStats `json:"rejected,omitempty"`
	Points   []ReferencePoint         `json:"points"`
}

// Clone returns a deep copy.
func (r *ReferenceTrajectory) Clone() *ReferenceTrajectory {
	if r == nil {
		return nil
	}
	c := *r
	c.Points = cloneSlice(r.Points)
	if r.Rejected != nil {
		c.Rejected = make(map[string]CoverageStats, len(r.Rejected))
		for k, v := range r.Rejected {
			c.Rejected[k] = v
		}
	}
	return &c
}
