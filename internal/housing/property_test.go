package housing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/household-sim/internal/entropy"
)

func TestClasses(t *testing.T) {
	s := entropy.NewStream(4)
	tests := []struct {
		class     Class
		ownership Ownership
		garages   int
		beds      int
		cost      float64
	}{
		{Apartment, Rental, 0, 3, 1000},
		{ModestHouse, Owned, 3, 4, 2000},
		{CompleteHouse, Owned, 5, 7, 4000},
	}
	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			p, err := New(s, tt.class)
			require.NoError(t, err)
			assert.Equal(t, tt.ownership, p.Ownership)
			assert.Equal(t, tt.garages, p.Garages)
			assert.Equal(t, tt.beds, p.Beds)
			assert.Equal(t, tt.cost, p.MonthlyCost)
			assert.True(t, p.Primary)
			assert.Contains(t, locations, p.Location)

			city, highway := DrivingRatios(p.Location)
			assert.Equal(t, city, p.CityDrivingRatio)
			assert.Equal(t, highway, p.HighwayDrivingRatio)
		})
	}
}

func TestUnknownClass(t *testing.T) {
	_, err := New(entropy.NewStream(1), Class(9))
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestApartmentsAreMostlyDowntown(t *testing.T) {
	s := entropy.NewStream(8)
	downtown := 0
	for i := 0; i < 2000; i++ {
		p, err := New(s, Apartment)
		require.NoError(t, err)
		if p.Location == Downtown {
			downtown++
		}
	}
	assert.InDelta(t, 1600, downtown, 120)
}

func TestDrivingRatios(t *testing.T) {
	city, highway := DrivingRatios(Downtown)
	assert.Equal(t, 1.4, city)
	assert.Equal(t, 0.35, highway)

	city, highway = DrivingRatios(Country)
	assert.Equal(t, 0.5, city)
	assert.Equal(t, 1.8, highway)
}
