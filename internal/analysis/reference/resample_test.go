package reference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

func TestResample(t *testing.T) {
	locations := []models.Location{
		{TS: 4.5, Latitude: 4.5, Longitude: -4.5},
		{TS: 0.5, Latitude: 0.5, Longitude: -0.5},
		{TS: 2.5, Latitude: 2.5, Longitude: -2.5},
	}

	samples, err := Resample(locations)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for i, s := range samples {
		ts := float64(i + 1)
		assert.Equal(t, ts, s.TS)
		assert.InDelta(t, ts, s.Latitude, 1e-9)
		assert.InDelta(t, -ts, s.Longitude, 1e-9)
	}
}

func TestResampleNeverExtrapolates(t *testing.T) {
	samples, err := Resample([]models.Location{{TS: 10, Latitude: 1}, {TS: 13, Latitude: 4}})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 10.0, samples[0].TS)
	assert.Equal(t, 12.0, samples[2].TS)
	assert.InDelta(t, 3.0, samples[2].Latitude, 1e-9)
}

func TestResampleDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		locations []models.Location
	}{
		{"empty", nil},
		{"single fix", []models.Location{{TS: 1}}},
		{"duplicate timestamps", []models.Location{{TS: 1, Latitude: 1}, {TS: 1, Latitude: 2}}},
		{"no whole second", []models.Location{{TS: 1.2}, {TS: 1.8}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resample(tt.locations)
			assert.True(t, errors.Is(err, ErrDegenerateTrace))
		})
	}
}
