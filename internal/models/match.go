package models

// MatchType says which ground truth boundaries found a sensed counterpart
type MatchType string

// MatchType constants
const (
	MatchBoth  MatchType = "both"
	MatchStart MatchType = "start_ts"
	MatchEnd   MatchType = "end_ts"
	MatchNone  MatchType = "none"
)

// MatchResult is the sensed segments matched to one ground truth segment
type MatchResult struct {
	Type  MatchType       `json:"type"`
	Match []SensedSegment `json:"match"`
}

// MatchSet maps ground truth segment ids to their matches
type MatchSet map[string]MatchResult

// SegmentDiff summarizes a match as a count plus boundary errors in minutes
type SegmentDiff struct {
	Count         int     `json:"count"`
	StartDiffMins float64 `json:"start_diff_mins"`
	EndDiffMins   float64 `json:"end_diff_mins"`
}

// ModeCheck is the share of a ground truth leg covered by the right sensed mode
type ModeCheck struct {
	GTMode          string     `json:"gt_mode"`
	GTBaseMode      SensedMode `json:"gt_base_mode"`
	GTDuration      float64    `json:"gt_duration"`
	MatchedDuration float64    `json:"matched_duration"`
	MatchingPct     float64    `json:"matching_pct"`
}
