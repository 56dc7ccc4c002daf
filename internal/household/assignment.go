package household

import (
	"maps"
	"sort"

	"github.com/talgya/household-sim/internal/claims"
	"github.com/talgya/household-sim/internal/fleet"
	"github.com/talgya/household-sim/internal/people"
)

// Allocation maps driver id to vehicle id to the share of the driver's
// mileage put on that vehicle. Each driver's shares sum to 1.
type Allocation map[string]map[string]float64

// Share returns the share of driverID's mileage on vehicleID.
func (a Allocation) Share(driverID, vehicleID string) float64 {
	return a[driverID][vehicleID]
}

const (
	firstPickShare  = 0.85
	secondPickShare = 0.10
)

// VehicleAssignments decides how each driver splits their driving across
// vehicles. The head (and spouse) get most of their driving on a favourite
// vehicle; children of driving age share what is left, preferring
// vehicles the parents did not claim.
func (h *Household) VehicleAssignments(vehicles []*fleet.Vehicle) Allocation {
	alloc := Allocation{}
	drivers := h.Drivers()
	if len(drivers) == 0 || len(vehicles) == 0 {
		return alloc
	}

	if len(vehicles) == 1 {
		for _, d := range drivers {
			alloc[d.ID] = map[string]float64{vehicles[0].ID: 1}
		}
		return alloc
	}

	n := len(vehicles)
	hasChildren := len(h.Children) > 0
	interest := func(p *people.Person) []float64 {
		prefs := make([]float64, n)
		for i, v := range vehicles {
			prefs[i] = p.VehicleInterest(v, vehicles, hasChildren)
		}
		return prefs
	}

	if h.Spouse == nil {
		// The head chooses; everyone drives the same mix.
		first, second := topTwo(interest(h.Head))
		row := make(map[string]float64, n)
		for i, v := range vehicles {
			switch {
			case i == first:
				row[v.ID] = firstPickShare
			case n == 2:
				row[v.ID] = 1 - firstPickShare
			case i == second:
				row[v.ID] = secondPickShare
			default:
				row[v.ID] = (1 - firstPickShare - secondPickShare) / float64(n-2)
			}
		}
		for _, d := range drivers {
			alloc[d.ID] = maps.Clone(row)
		}
		return alloc
	}

	headPrefs, spousePrefs := interest(h.Head), interest(h.Spouse)
	headFirst, _ := topTwo(headPrefs)
	spouseFirst, spouseSecond := topTwo(spousePrefs)

	// When both want the same vehicle the head keeps it and the spouse
	// settles for their second choice.
	bestHead, bestSpouse := headFirst, spouseFirst
	if headFirst == spouseFirst {
		bestSpouse = spouseSecond
	}

	rest := (1 - firstPickShare) / float64(n-1)
	pickRow := func(pick int) map[string]float64 {
		row := make(map[string]float64, n)
		for i, v := range vehicles {
			if i == pick {
				row[v.ID] = firstPickShare
			} else {
				row[v.ID] = rest
			}
		}
		return row
	}

	var others []*people.Person
	for _, d := range drivers {
		switch d {
		case h.Head:
			alloc[d.ID] = pickRow(bestHead)
		case h.Spouse:
			alloc[d.ID] = pickRow(bestSpouse)
		default:
			others = append(others, d)
		}
	}
	if len(others) == 0 {
		return alloc
	}

	// Children prefer vehicles the parents have not claimed, and compete
	// with each other for the rest.
	prefs := make([][]float64, len(others))
	colSum := make([]float64, n)
	for j, c := range others {
		prefs[j] = interest(c)
		for i := range prefs[j] {
			x := prefs[j][i]
			if i == bestHead || i == bestSpouse {
				x *= 0.75
			}
			prefs[j][i] = x * x
			colSum[i] += prefs[j][i]
		}
	}
	for j, c := range others {
		balanced := normalize(prefs[j])
		for i := range balanced {
			balanced[i] /= colSum[i]
		}
		final := normalize(balanced)

		row := make(map[string]float64, n)
		for i, v := range vehicles {
			row[v.ID] = final[i]
		}
		alloc[c.ID] = row
	}
	return alloc
}

// topTwo returns the indexes of the largest and second largest values.
// Ties go to the earlier index.
func topTwo(xs []float64) (first, second int) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return xs[idx[a]] > xs[idx[b]]
	})
	if len(idx) < 2 {
		return idx[0], idx[0]
	}
	return idx[0], idx[1]
}

func normalize(xs []float64) []float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x / total
	}
	return out
}

// Exposure is the mileage one driver put on one vehicle in a year.
type Exposure struct {
	Driver  *people.Person
	Vehicle *fleet.Vehicle
	City    float64
	Highway float64
}

// Total is city plus highway mileage.
func (e Exposure) Total() float64 {
	return e.City + e.Highway
}

// Mileage returns the exposure's mileage on a road bucket.
func (e Exposure) Mileage(r claims.Road) float64 {
	switch r {
	case claims.City:
		return e.City
	case claims.Highway:
		return e.Highway
	case claims.Total:
		return e.Total()
	}
	return 0
}

// DetermineMileage splits every driver's annual mileage across the current
// fleet by their allocation.
func (h *Household) DetermineMileage() []Exposure {
	alloc := h.VehicleAssignments(h.Vehicles)
	drivers := h.Drivers()

	base := people.MileageContext{
		NonDrivers:          h.NonDriverCount(),
		Drivers:             len(drivers),
		HouseholdDriviness:  h.Driviness,
		PropertyDriviness:   1,
		CityDrivingRatio:    1,
		HighwayDrivingRatio: 1,
	}
	if p := h.PrimaryHouse(); p != nil {
		base.PropertyDriviness = p.Driviness
		base.CityDrivingRatio = p.CityDrivingRatio
		base.HighwayDrivingRatio = p.HighwayDrivingRatio
	}

	var out []Exposure
	for _, d := range drivers {
		ctx := base
		ctx.HasPartner = (d == h.Head && h.Spouse != nil) || d == h.Spouse
		city, highway := d.AnnualMileage(ctx)

		for _, v := range h.Vehicles {
			share := alloc.Share(d.ID, v.ID)
			out = append(out, Exposure{
				Driver:  d,
				Vehicle: v,
				City:    city * share,
				Highway: highway * share,
			})
		}
	}
	return out
}

// MileageByVehicle totals annual mileage per vehicle id.
func (h *Household) MileageByVehicle() map[string]float64 {
	out := make(map[string]float64, len(h.Vehicles))
	for _, v := range h.Vehicles {
		out[v.ID] = 0
	}
	for _, e := range h.DetermineMileage() {
		out[e.Vehicle.ID] += e.Total()
	}
	return out
}

// MileageByDriver totals annual mileage per driver id.
func (h *Household) MileageByDriver() map[string]float64 {
	out := make(map[string]float64)
	for _, d := range h.Drivers() {
		out[d.ID] = 0
	}
	for _, e := range h.DetermineMileage() {
		out[e.Driver.ID] += e.Total()
	}
	return out
}
