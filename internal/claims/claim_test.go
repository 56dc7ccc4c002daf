package claims

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
	"github.com/talgya/household-sim/internal/housing"
)

func fullCoverage() fleet.Coverage {
	return fleet.Coverage{BI: true, PD: true, Coll: true, Comp: true, MPC: true, ERS: true, UBI: true}
}

func TestHazardsReferenceValues(t *testing.T) {
	b := Bucket{Mileage: 10_000, Road: City, DrivingHazard: 1, VehicleAge: 5, Location: housing.Suburb}
	got := Hazards(b)
	want := [7]float64{0.03, 0.03, 0.01, 0.01, 0.03, 0.03, 0.03 * min(1, 1+0.025)}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, Types[i])
	}

	b.Road = Highway
	got = Hazards(b)
	assert.InDelta(t, 0.015, got[0], 1e-12)
	assert.InDelta(t, 0.0075, got[1], 1e-12)
	assert.InDelta(t, 0.0005, got[2], 1e-12)
	assert.InDelta(t, 0.013, got[3], 1e-12)
	assert.InDelta(t, 0.063, got[4], 1e-12)
	assert.InDelta(t, 0.009, got[5], 1e-12)
	assert.InDelta(t, 0.045, got[6], 1e-12)
}

func TestHazardsScaling(t *testing.T) {
	b := Bucket{Mileage: 40_000, Road: City, DrivingHazard: 2, VehicleAge: 2, Location: housing.Downtown}
	got := Hazards(b)

	assert.InDelta(t, 0.03*2*math.Pow(2, 0.9)*0.97, got[0], 1e-12)
	assert.InDelta(t, 0.01*2*math.Pow(2, 0.1)*1.5, got[2], 1e-12, "downtown theft is higher")
	assert.InDelta(t, 0.01*2*math.Pow(2, 0.1)*0.6, got[3], 1e-12, "downtown hail is lower")

	zero := Hazards(Bucket{Mileage: 0, Road: City, DrivingHazard: 1})
	for _, v := range zero {
		assert.Zero(t, v)
	}
}

func TestUnknownType(t *testing.T) {
	_, err := New(entropy.NewStream(1), Type("meteor"), Context{})
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestParkedLossesHaveNoDriver(t *testing.T) {
	s := entropy.NewStream(2)
	ctx := Context{VehicleID: "v1", DriverID: "d1", Coverage: fullCoverage(), Protection: 2, HurtOthers: 2}
	for _, typ := range Types {
		c, err := New(s, typ, ctx)
		require.NoError(t, err)
		assert.Equal(t, "v1", c.VehicleID)
		if typ == Theft || typ == Hail {
			assert.Empty(t, c.DriverID, typ)
		} else {
			assert.Equal(t, "d1", c.DriverID, typ)
		}
	}
}

func TestCoverageGating(t *testing.T) {
	s := entropy.NewStream(3)
	for i := 0; i < 5000; i++ {
		cov := fleet.Coverage{
			BI: s.Bernoulli(0.5), PD: s.Bernoulli(0.5), Coll: s.Bernoulli(0.5), Comp: s.Bernoulli(0.5),
			MPC: s.Bernoulli(0.5), ERS: s.Bernoulli(0.5), UBI: s.Bernoulli(0.5),
		}
		typ := Types[s.Intn(len(Types))]
		c, err := New(s, typ, Context{VehicleID: "v", Coverage: cov, Protection: 1, HurtOthers: 3, Garaged: s.Bernoulli(0.5)})
		require.NoError(t, err)

		require.False(t, c.BI && !cov.BI)
		require.False(t, c.PD && !cov.PD)
		require.False(t, c.Coll && !cov.Coll)
		require.False(t, c.Comp && !cov.Comp)
		require.False(t, c.MPC && !cov.MPC)
		require.False(t, c.ERS && !cov.ERS)
		require.False(t, c.UBI && !cov.UBI)
		require.Equal(t, cov, c.Coverage)
	}
}

func TestDeterministicIndicators(t *testing.T) {
	s := entropy.NewStream(4)
	ctx := Context{VehicleID: "v", Coverage: fullCoverage()}

	c, err := New(s, Glass, ctx)
	require.NoError(t, err)
	assert.True(t, c.Comp)
	assert.False(t, c.Coll)

	c, err = New(s, UBI, ctx)
	require.NoError(t, err)
	assert.True(t, c.UBI)
	assert.True(t, c.Coll)

	c, err = New(s, ERS, ctx)
	require.NoError(t, err)
	assert.True(t, c.ERS)
	assert.True(t, c.Paid())

	c, err = New(s, MultiCarCollision, ctx)
	require.NoError(t, err)
	assert.True(t, c.PD)

	c, err = New(s, ERS, Context{VehicleID: "v"})
	require.NoError(t, err)
	assert.False(t, c.Paid(), "nothing pays without coverage")
}

func TestGaragedHailPaysLess(t *testing.T) {
	s := entropy.NewStream(5)
	paid := 0
	for i := 0; i < 2000; i++ {
		c, err := New(s, Hail, Context{VehicleID: "v", Coverage: fullCoverage(), Garaged: true})
		require.NoError(t, err)
		if c.Comp {
			paid++
		}
	}
	assert.InDelta(t, 600, paid, 80)
}

func TestSummaryAndAge(t *testing.T) {
	c, err := New(entropy.NewStream(6), Theft, Context{VehicleID: "v", DriverID: "d", Coverage: fullCoverage(), WhenOccurred: 3})
	require.NoError(t, err)

	assert.Equal(t, 4, c.HowOld(7))
	row := c.Summary(7)
	assert.Equal(t, 4, row["claim_age"])
	assert.Nil(t, row["driver_id"])
	assert.Equal(t, false, row["driver_claim"])
	assert.Equal(t, 0, row["bi_ind"])
	assert.True(t, c.Indicator("all"))
	assert.False(t, c.Indicator("nope"))
}

func TestTotalBucketUsesCityFactors(t *testing.T) {
	b := Bucket{Mileage: 22_500, Road: City, DrivingHazard: 1.3, VehicleAge: 9, Location: housing.Country}
	city := Hazards(b)
	b.Road = Total
	assert.Equal(t, city, Hazards(b))
	assert.Equal(t, []Road{City, Highway, Total}, Roads)
}
