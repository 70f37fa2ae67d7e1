// Package testutil provides a small recorded experiment shared by the
// pipeline, service and handler tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// Experiment identifiers
const (
	SpecID      = "commute_eval"
	AuthorEmail = "author@example.com"

	TripID    = "commute"
	BusLegID  = "suburb_to_downtown"
	WalkLegID = "walk_home"

	SpecStartTS = 1000.0
	SpecEndTS   = 100000.0
)

// Device labels in configured order
var (
	AndroidLabels = []string{"android-acc", "android-eval", "android-power"}
	IOSLabels     = []string{"ios-acc", "ios-eval", "ios-power"}
)

// FrozenNow is a clock reading after the experiment ended.
var FrozenNow = time.Unix(200000, 0).UTC()

const route = `{"type": "Feature", "properties": {},
	"geometry": {"type": "LineString", "coordinates": [[-122.27, 37.87], [-122.27, 37.8725], [-122.27, 37.875], [-122.27, 37.8775], [-122.27, 37.88]]}}`

const home = `{"type": "Feature", "properties": {"name": "home"},
	"geometry": {"type": "Polygon", "coordinates": [[[-122.271, 37.879], [-122.269, 37.879], [-122.269, 37.881], [-122.271, 37.881], [-122.271, 37.879]]]}}`

// SpecJSON is the data of the experiment's config/evaluation_spec entry.
const SpecJSON = `{
	"label": {
		"id": "` + SpecID + `",
		"name": "Bus commute",
		"region": {"timezone": "America/Los_Angeles"},
		"phones": {
			"android": {
				"android-acc": "accuracy_control",
				"android-eval": "evaluation_hahfdc",
				"android-power": "power_control"
			},
			"ios": {
				"ios-acc": "accuracy_control",
				"ios-eval": "evaluation_hahfdc",
				"ios-power": "power_control"
			}
		},
		"evaluation_trips": [{
			"id": "` + TripID + `",
			"legs": [
				{"id": "` + BusLegID + `", "type": "TRAVEL", "mode": "BUS", "route_coords": ` + route + `},
				{"id": "` + WalkLegID + `", "type": "ACCESS", "mode": "WALKING", "loc": ` + home + `}
			]
		}]
	},
	"start_ts": 1000,
	"end_ts": 100000
}`

// Entry builds a datastore entry whose data is v marshalled to JSON.
func Entry(key string, writeTS float64, v any) models.Entry {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: cannot marshal %T: %v", v, err))
	}
	return models.Entry{
		Metadata: models.EntryMetadata{Key: key, WriteTS: writeTS},
		Data:     data,
	}
}

var roleTripIDs = map[string]string{
	"android-acc":   "fixed:ACCURACY_CONTROL_0",
	"android-eval":  "fixed:HAHFDC_0",
	"android-power": "fixed:POWER_CONTROL_0",
	"ios-acc":       "fixed:ACCURACY_CONTROL_0",
	"ios-eval":      "fixed:HAHFDC_0",
	"ios-power":     "fixed:POWER_CONTROL_0",
}

func transition(label string, ts float64, kind models.TransitionKind, tripID string) models.Entry {
	manufacturer := "Google"
	if strings.HasPrefix(label, "ios") {
		manufacturer = "Apple"
	}
	return Entry(models.KeyEvaluationTransition, ts, map[string]any{
		"ts":                  ts,
		"transition":          kind.String(),
		"trip_id":             tripID,
		"spec_id":             SpecID,
		"device_manufacturer": manufacturer,
		"device_model":        label,
		"device_version":      "1",
	})
}

// Experiment returns a store holding ExperimentEntries.
func Experiment() *datastore.MemoryStore {
	store := datastore.NewMemoryStore()
	for user, entries := range ExperimentEntries() {
		store.Add(user, entries...)
	}
	return store
}

// ExperimentEntries returns one recorded run of the experiment by user: a
// calibration period and an evaluation period on six phones, one ground
// truth trip with a bus and a walking section logged by the android
// accuracy control, location traces on both accuracy controls and sensed
// data on both evaluation phones.
func ExperimentEntries() map[string][]models.Entry {
	store := recorder{}
	store.Add(AuthorEmail, Entry(models.KeyEvaluationSpec, 500, json.RawMessage(SpecJSON)))

	for _, label := range append(append([]string{}, AndroidLabels...), IOSLabels...) {
		store.Add(label,
			transition(label, 1100, models.StartCalibrationPeriod, "high_accuracy_stationary"),
			transition(label, 1400, models.StopCalibrationPeriod, "high_accuracy_stationary"),
			transition(label, 2000, models.StartEvaluationPeriod, roleTripIDs[label]),
			transition(label, 3000, models.StopEvaluationPeriod, roleTripIDs[label]),
		)
	}

	store.Add("android-acc",
		transition("android-acc", 2100, models.StartEvaluationTrip, TripID),
		transition("android-acc", 2100, models.StartEvaluationSection, BusLegID),
		transition("android-acc", 2200, models.StopEvaluationSection, BusLegID),
		transition("android-acc", 2200, models.StartEvaluationSection, WalkLegID),
		transition("android-acc", 2260, models.StopEvaluationSection, WalkLegID),
		transition("android-acc", 2260, models.StopEvaluationTrip, TripID),
	)

	// northbound along the route, one fix every 5 s
	for ts := 2100.0; ts <= 2200; ts += 5 {
		lat := 37.8705 + (ts-2100)*0.00008
		store.Add("android-acc", Entry(models.KeyLocation, ts, models.Location{TS: ts, Longitude: -122.27, Latitude: lat, Accuracy: 5}))
		store.Add("ios-acc", Entry(models.KeyLocation, ts, models.Location{TS: ts, Longitude: -122.27002, Latitude: lat, Accuracy: 5}))
	}

	store.Add("android-eval",
		Entry(models.KeyStateTransition, 2090, map[string]any{"ts": 2090, "transition": "local.transition.exited_geofence"}),
		Entry(models.KeyStateTransition, 2270, map[string]any{"ts": 2270, "transition": "local.transition.stopped_moving"}),
		Entry(models.KeyMotionActivity, 2101, map[string]any{"ts": 2101, "zzbhB": 0}),
		Entry(models.KeyMotionActivity, 2205, map[string]any{"ts": 2205, "zzbhB": 7}),
		Entry(models.KeyMotionActivity, 2280, map[string]any{"ts": 2280, "zzbhB": 3}),
	)
	store.Add("ios-eval",
		Entry(models.KeyStateTransition, 2095, map[string]any{"ts": 2095, "transition": "T_EXITED_GEOFENCE"}),
		Entry(models.KeyStateTransition, 2265, map[string]any{"ts": 2265, "transition": "T_TRIP_ENDED"}),
		Entry(models.KeyMotionActivity, 2102, map[string]any{"ts": 2102, "automotive": true}),
		Entry(models.KeyMotionActivity, 2203, map[string]any{"ts": 2203, "walking": true}),
		Entry(models.KeyMotionActivity, 2275, map[string]any{"ts": 2275, "stationary": true}),
	)
	return store
}

type recorder map[string][]models.Entry

func (r recorder) Add(user string, entries ...models.Entry) {
	r[user] = append(r[user], entries...)
}
