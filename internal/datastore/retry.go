package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

// Retrying retries a failed retrieval once after a fixed delay.
type Retrying struct {
	next  Retriever
	delay time.Duration
	clock timeutil.Clock
}

// NewRetrying wraps next. A nil clock uses the real clock.
func NewRetrying(next Retriever, delay time.Duration, clock timeutil.Clock) *Retrying {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Retrying{next: next, delay: delay, clock: clock}
}

// Retrieve implements Retriever.
func (r *Retrying) Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error) {
	entries, err := r.next.Retrieve(ctx, user, key, startTS, endTS)
	if err == nil {
		return entries, nil
	}
	monitoring.Logf("[Datastore] %s/%s failed: %v, retrying in %s", user, key, err, r.delay)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.clock.After(r.delay):
	}

	entries, err = r.next.Retrieve(ctx, user, key, startTS, endTS)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s for %s after retry: %w", key, user, err)
	}
	return entries, nil
}
