// Package evalspec reads the evaluation spec an experiment was run against:
// the phones and their roles, the evaluation window and the ground truth
// trips with their legs and geometry.
package evalspec

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

// Leg types
const (
	LegTravel   = "TRAVEL"
	LegAccess   = "ACCESS"
	LegTransfer = "TRANSFER"
	LegWaiting  = "WAITING"
)

// Leg is one single-mode part of a ground truth trip
type Leg struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Mode string `json:"mode"`
	Name string `json:"name,omitempty"`

	// TRAVEL legs
	StartLoc    GeometryField `json:"start_loc"`
	EndLoc      GeometryField `json:"end_loc"`
	RouteCoords GeometryField `json:"route_coords"`

	// ACCESS, TRANSFER and WAITING legs
	Loc GeometryField `json:"loc"`
}

// Route returns the ground truth route valid for r.
func (l *Leg) Route(r models.Range) (orb.LineString, error) {
	g, err := l.RouteCoords.Select(r)
	if err != nil {
		return nil, fmt.Errorf("leg %s route: %w", l.ID, err)
	}
	line, ok := g.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("%w: leg %s route is %T", ErrInvalidSpec, l.ID, g)
	}
	return line, nil
}

// Regions returns the start and end regions valid for r. Either may be nil
// when the leg has none.
func (l *Leg) Regions(r models.Range) (orb.Geometry, orb.Geometry, error) {
	var start, end orb.Geometry
	var err error
	if !l.StartLoc.IsZero() {
		if start, err = l.StartLoc.Select(r); err != nil {
			return nil, nil, fmt.Errorf("leg %s start: %w", l.ID, err)
		}
	}
	if !l.EndLoc.IsZero() {
		if end, err = l.EndLoc.Select(r); err != nil {
			return nil, nil, fmt.Errorf("leg %s end: %w", l.ID, err)
		}
	}
	return start, end, nil
}

// Trip is one ground truth trip
type Trip struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Legs []Leg  `json:"legs"`
}

// Spec is the authored part of an evaluation spec
type Spec struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region struct {
		Timezone string `json:"timezone"`
	} `json:"region"`
	Phones          Phones `json:"phones"`
	EvaluationTrips []Trip `json:"evaluation_trips"`
}

// Details is a spec together with the window it was run in
type Details struct {
	Spec    Spec    `json:"label"`
	StartTS float64 `json:"start_ts"`
	EndTS   float64 `json:"end_ts"`
}

// Trip returns the ground truth trip with the given id.
func (d *Details) Trip(id string) (*Trip, error) {
	for i := range d.Spec.EvaluationTrips {
		if d.Spec.EvaluationTrips[i].ID == id {
			return &d.Spec.EvaluationTrips[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no trip %q in %s", ErrInvalidSpec, id, d.Spec.ID)
}

// Leg returns the ground truth leg keyed by (tripID, legID).
func (d *Details) Leg(tripID, legID string) (*Leg, error) {
	t, err := d.Trip(tripID)
	if err != nil {
		return nil, err
	}
	for i := range t.Legs {
		if t.Legs[i].ID == legID {
			return &t.Legs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no leg %q in trip %q", ErrInvalidSpec, legID, tripID)
}

// Parse decodes the data of one config/evaluation_spec entry.
func Parse(data []byte) (*Details, error) {
	var d Details
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if d.Spec.ID == "" {
		return nil, fmt.Errorf("%w: spec has no id", ErrInvalidSpec)
	}
	if d.EndTS < d.StartTS {
		return nil, fmt.Errorf("%w: %s ends at %v before it starts at %v", ErrInvalidSpec, d.Spec.ID, d.EndTS, d.StartTS)
	}
	return &d, nil
}

// Select returns the spec with the given id from a list of spec entries.
// When an id was uploaded more than once the last entry wins.
func Select(entries []models.Entry, specID string) (*Details, error) {
	var found *Details
	for _, e := range entries {
		var probe struct {
			Label struct {
				ID string `json:"id"`
			} `json:"label"`
		}
		if err := e.DecodeData(&probe); err != nil {
			monitoring.Logf("[EvalSpec] skipping unreadable spec entry: %v", err)
			continue
		}
		if probe.Label.ID != specID {
			continue
		}
		d, err := Parse(e.Data)
		if err != nil {
			return nil, err
		}
		found = d
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s among %d entries", ErrSpecNotFound, specID, len(entries))
	}
	monitoring.Logf("[EvalSpec] found spec %s (%s), window [%.0f, %.0f]", found.Spec.ID, found.Spec.Name, found.StartTS, found.EndTS)
	return found, nil
}

// Load retrieves every spec the author uploaded up to now and selects one.
func Load(ctx context.Context, r datastore.Retriever, authorEmail, specID string, now float64) (*Details, error) {
	entries, err := r.Retrieve(ctx, authorEmail, models.KeyEvaluationSpec, 0, now)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve specs for %s: %w", authorEmail, err)
	}
	return Select(entries, specID)
}
