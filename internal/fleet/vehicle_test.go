package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/household-sim/internal/entropy"
)

func TestNewSedanAtAgeZero(t *testing.T) {
	v, err := New(entropy.NewStream(1), 0, Sedan)
	require.NoError(t, err)

	assert.Equal(t, 20_000.0, v.MSRP)
	assert.Equal(t, v.MSRP, v.PurchasePrice)
	assert.Equal(t, v.MSRP, v.Value)

	v.MoveForwardNYears(1)
	assert.InDelta(t, v.MSRP*0.95, v.Value, 1e-9)
	assert.Equal(t, 1, v.Age)
	assert.Equal(t, 1, v.YearsOwned)
	assert.Equal(t, v.MSRP, v.PurchasePrice, "purchase price is fixed at purchase")
}

func TestNewUsedVehicleDepreciated(t *testing.T) {
	v, err := New(entropy.NewStream(1), 3, Pickup)
	require.NoError(t, err)
	assert.InDelta(t, 60_000*0.95*0.95*0.95, v.PurchasePrice, 1e-6)
	assert.Equal(t, v.PurchasePrice, v.Value)
}

func TestUnknownTypeFailsFast(t *testing.T) {
	_, err := New(entropy.NewStream(1), 0, Type("hovercraft"))
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = Lookup("")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestCatalogComplete(t *testing.T) {
	for _, typ := range Types {
		spec, err := Lookup(typ)
		require.NoError(t, err, typ)
		assert.Positive(t, spec.Seats)
		assert.Positive(t, spec.MSRP)
	}
}

func TestCosts(t *testing.T) {
	v, err := New(entropy.NewStream(2), 0, SUV)
	require.NoError(t, err)

	assert.InDelta(t, 1.2*60_000/60, v.LoanCost(), 1e-9)
	assert.Equal(t, 50.0, v.MaintenanceCost())

	v.MoveForwardNYears(6)
	assert.Zero(t, v.LoanCost(), "loan is paid off after five years")
	assert.Equal(t, 50.0, v.MonthlyCost())

	tests := []struct {
		age  int
		want float64
	}{
		{9, 50}, {10, 100}, {14, 100}, {15, 150}, {19, 150}, {20, 200}, {30, 200},
	}
	for _, tt := range tests {
		v.Age = tt.age
		assert.Equal(t, tt.want, v.MaintenanceCost(), "age %d", tt.age)
	}
}

func TestCoverageAny(t *testing.T) {
	assert.False(t, Coverage{}.Any())
	assert.True(t, Coverage{UBI: true}.Any())
}
