// Package datastore retrieves the timestamped entries phones uploaded:
// evaluation transitions, locations, motion activity, state machine
// transitions and evaluation specs.
package datastore

import (
	"context"
	"errors"
	"sort"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// ErrNotFound is returned by stores that distinguish a missing user or key
// from an empty result.
var ErrNotFound = errors.New("entries not found")

// Retriever returns the entries of one user and key whose write_ts lies in
// [startTS, endTS], ordered by write_ts. Every returned entry carries its
// write_ts inside its data as well.
type Retriever interface {
	Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error)

// Retrieve calls f.
func (f RetrieverFunc) Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error) {
	return f(ctx, user, key, startTS, endTS)
}

// window keeps the entries with write_ts in [startTS, endTS], stamps
// write_ts into their data and orders them.
func window(entries []models.Entry, startTS, endTS float64) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Metadata.WriteTS >= startTS && e.Metadata.WriteTS <= endTS {
			out = append(out, e.WithWriteTS())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Metadata.WriteTS < out[j].Metadata.WriteTS })
	return out
}
