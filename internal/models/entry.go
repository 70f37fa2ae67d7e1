package models

import (
	"encoding/json"
	"fmt"
)

// Datastore keys
const (
	KeyEvaluationTransition = "manual/evaluation_transition"
	KeyLocation             = "background/location"
	KeyFilteredLocation     = "background/filtered_location"
	KeyMotionActivity       = "background/motion_activity"
	KeyStateTransition      = "statemachine/transition"
	KeyEvaluationSpec       = "config/evaluation_spec"
)

// Entry is one timestamped record as stored by the phone datastore
type Entry struct {
	Metadata EntryMetadata   `json:"metadata"`
	Data     json.RawMessage `json:"data"`
}

// EntryMetadata carries the storage-side fields of an entry
type EntryMetadata struct {
	Key      string  `json:"key"`
	WriteTS  float64 `json:"write_ts"`
	Platform string  `json:"platform,omitempty"`
}

// DecodeData unmarshals the entry payload into v.
func (e Entry) DecodeData(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s entry at %v: %w", e.Metadata.Key, e.Metadata.WriteTS, err)
	}
	return nil
}

// WithWriteTS returns a copy of the entry whose data also carries write_ts.
// Payloads that are not JSON objects are returned unchanged.
func (e Entry) WithWriteTS() Entry {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &fields); err != nil || fields == nil {
		return e
	}
	ts, err := json.Marshal(e.Metadata.WriteTS)
	if err != nil {
		return e
	}
	fields["write_ts"] = ts
	data, err := json.Marshal(fields)
	if err != nil {
		return e
	}
	e.Data = data
	return e
}
