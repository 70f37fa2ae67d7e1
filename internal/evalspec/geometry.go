package evalspec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// Alternative is one version of a ground truth geometry with the window in
// which it was valid.
type Alternative struct {
	ValidStartTS float64
	ValidEndTS   float64
	Feature      *geojson.Feature
}

// covers reports whether the alternative was valid for all of r.
func (a Alternative) covers(r models.Range) bool {
	return a.ValidStartTS <= r.StartTS && r.EndTS <= a.ValidEndTS
}

// GeometryField is a leg geometry: a single GeoJSON feature, or a list of
// features each tagged with valid_start_ts and valid_end_ts.
type GeometryField struct {
	Single       *geojson.Feature
	Alternatives []Alternative
}

// IsZero reports whether the field was absent.
func (g GeometryField) IsZero() bool {
	return g.Single == nil && len(g.Alternatives) == 0
}

// UnmarshalJSON accepts either form.
func (g *GeometryField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*g = GeometryField{}
		return nil
	}

	if data[0] != '[' {
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return fmt.Errorf("failed to decode feature: %w", err)
		}
		*g = GeometryField{Single: f}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode alternatives: %w", err)
	}
	alts := make([]Alternative, 0, len(raw))
	for i, r := range raw {
		var window struct {
			ValidStartTS *float64 `json:"valid_start_ts"`
			ValidEndTS   *float64 `json:"valid_end_ts"`
		}
		if err := json.Unmarshal(r, &window); err != nil {
			return fmt.Errorf("failed to decode alternative %d: %w", i, err)
		}
		if window.ValidStartTS == nil || window.ValidEndTS == nil {
			return fmt.Errorf("%w: alternative %d has no validity window", ErrInvalidSpec, i)
		}
		f, err := geojson.UnmarshalFeature(r)
		if err != nil {
			return fmt.Errorf("failed to decode alternative %d: %w", i, err)
		}
		alts = append(alts, Alternative{ValidStartTS: *window.ValidStartTS, ValidEndTS: *window.ValidEndTS, Feature: f})
	}
	*g = GeometryField{Alternatives: alts}
	return nil
}

// MarshalJSON writes the field back in the form it was read.
func (g GeometryField) MarshalJSON() ([]byte, error) {
	if g.Single != nil {
		return json.Marshal(g.Single)
	}
	if len(g.Alternatives) == 0 {
		return []byte("null"), nil
	}

	out := make([]json.RawMessage, 0, len(g.Alternatives))
	for _, a := range g.Alternatives {
		body, err := json.Marshal(a.Feature)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		fields["valid_start_ts"], _ = json.Marshal(a.ValidStartTS)
		fields["valid_end_ts"], _ = json.Marshal(a.ValidEndTS)
		merged, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, merged)
	}
	return json.Marshal(out)
}

// Select returns the geometry valid for r. A list must have exactly one
// alternative whose window contains r.
func (g GeometryField) Select(r models.Range) (orb.Geometry, error) {
	if g.Single != nil {
		return g.Single.Geometry, nil
	}
	if len(g.Alternatives) == 0 {
		return nil, fmt.Errorf("%w: missing geometry", ErrInvalidSpec)
	}

	var found []Alternative
	for _, a := range g.Alternatives {
		if a.covers(r) {
			found = append(found, a)
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: %d of %d alternatives valid for %s [%.0f, %.0f]",
			ErrInvalidSpec, len(found), len(g.Alternatives), r.TripID, r.StartTS, r.EndTS)
	}
	return found[0].Feature.Geometry, nil
}
