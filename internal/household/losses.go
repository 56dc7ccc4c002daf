package household

import (
	"sort"

	"github.com/talgya/household-sim/internal/claims"
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
	"github.com/talgya/household-sim/internal/housing"
	"github.com/talgya/household-sim/internal/people"
)

// generateClaims draws this year's claims from every driver/vehicle/road
// bucket of exposure. Each exposure is drawn on its city, highway and total
// buckets, so combined mileage is counted twice.
func (h *Household) generateClaims() {
	location := h.garagingLocation()

	for _, e := range h.DetermineMileage() {
		hazard := e.Driver.DrivingHazard()
		for _, road := range claims.Roads {
			rates := claims.Hazards(claims.Bucket{
				Mileage:       e.Mileage(road),
				Road:          road,
				DrivingHazard: hazard,
				VehicleAge:    e.Vehicle.Age,
				Location:      location,
			})
			for i, typ := range claims.Types {
				for n := entropy.Poisson(h.rng, rates[i]); n > 0; n-- {
					h.addClaim(typ, e.Vehicle, e.Driver)
				}
			}
		}
	}
}

func (h *Household) addClaim(t claims.Type, v *fleet.Vehicle, d *people.Person) {
	c, err := claims.New(h.rng, t, claims.Context{
		VehicleID:    v.ID,
		DriverID:     d.ID,
		Coverage:     v.Coverage,
		Protection:   v.Protection,
		HurtOthers:   v.HurtOthers,
		Garaged:      h.isGaraged(v),
		AnnualIncome: h.AnnualIncome(),
		WhenOccurred: h.TenureYears,
	})
	if err != nil {
		h.fail(err)
		return
	}
	h.Claims = append(h.Claims, c)
}

// isGaraged reports whether v gets one of the primary home's garage
// spots. The most valuable vehicles are parked inside.
func (h *Household) isGaraged(v *fleet.Vehicle) bool {
	garages := h.GarageCount()
	if garages == 0 {
		return false
	}
	sorted := make([]*fleet.Vehicle, len(h.Vehicles))
	copy(sorted, h.Vehicles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	for i, c := range sorted {
		if c.ID == v.ID {
			return i < garages
		}
	}
	return false
}

func (h *Household) garagingLocation() housing.Location {
	if p := h.PrimaryHouse(); p != nil {
		return p.Location
	}
	return ""
}

// reportableClaims are the claims that show up in summaries: paid, at
// least a year old, and either a parked-car loss or charged to a driver
// still on the policy.
func (h *Household) reportableClaims() []*claims.Claim {
	current := make(map[string]bool)
	for _, d := range h.Drivers() {
		current[d.ID] = true
	}

	var out []*claims.Claim
	for _, c := range h.Claims {
		if c.DriverID != "" && !current[c.DriverID] {
			continue
		}
		if c.HowOld(h.TenureYears) == 0 || !c.Paid() {
			continue
		}
		out = append(out, c)
	}
	return out
}
