package people

import (
	"sort"

	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
)

// DrivingExperiencePct maps accumulated driving experience onto (0, 1).
func (p *Person) DrivingExperiencePct() float64 {
	return entropy.Sigmoid(1.5*p.DrivingExperience - 5)
}

// RiskMitigationPct maps the risk mitigation score onto (0, 1).
func (p *Person) RiskMitigationPct() float64 {
	return entropy.Sigmoid(p.RiskMitigationScore/2.5 - 0.75)
}

// agePenalty rises past 55 and 65 and eases slightly past 75.
func (p *Person) agePenalty() float64 {
	age := float64(p.Age)
	return 0.1*max(age-55, 0) + 0.25*max(age-65, 0) - 0.15*max(age-75, 0)
}

// DrivingHazard is the driver's at-fault claim multiplier, between 0.5
// and 2.8.
func (p *Person) DrivingHazard() float64 {
	x := 1 - 1.5*p.DrivingExperiencePct() - 2.0*p.RiskMitigationPct() + p.agePenalty()
	return 0.5 + 2.3*entropy.Sigmoid(x)
}

// Interest floor keeps allocation shares well defined.
const minInterest = 0.05

// childValuePenalty discourages children from claiming the most and
// second most valuable vehicles in the household.
var childValuePenalty = []float64{0.25, 0.35}

// VehicleInterest scores how much p wants to drive v out of the candidate
// fleet. hasChildren reports whether the household has any children, which
// makes adults weigh family-friendliness.
func (p *Person) VehicleInterest(v *fleet.Vehicle, vehicles []*fleet.Vehicle, hasChildren bool) float64 {
	age := float64(v.Age)
	interest := 1 - 0.02*age - 0.04*max(age-15, 0) - 0.06*max(age-20, 0)
	interest = max(interest, minInterest)

	if v.Type == p.PreferredType {
		interest *= 1.5
	}

	if p.Gender == Male {
		interest *= 1 + v.MaleInterest
	} else {
		interest *= 1 + v.FemaleInterest
	}

	switch {
	case p.Role == RoleChild:
		interest *= 1 + v.ChildInterest
		if rank := valueRank(v, vehicles); rank < len(childValuePenalty) {
			interest *= childValuePenalty[rank]
		}
	case hasChildren:
		interest *= 1 + v.ParentInterest
	}

	return max(interest, minInterest)
}

// valueRank is v's position when vehicles are sorted by value, most
// valuable first. A vehicle absent from the list ranks last.
func valueRank(v *fleet.Vehicle, vehicles []*fleet.Vehicle) int {
	sorted := make([]*fleet.Vehicle, len(vehicles))
	copy(sorted, vehicles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	for i, c := range sorted {
		if c.ID == v.ID {
			return i
		}
	}
	return len(sorted)
}

// MileageContext is the household state a driver's mileage depends on.
type MileageContext struct {
	HasPartner          bool // Rides are shared with a spouse.
	NonDrivers          int  // Children too young to drive.
	Drivers             int
	HouseholdDriviness  float64
	PropertyDriviness   float64
	CityDrivingRatio    float64
	HighwayDrivingRatio float64
}

// BaseMileage is the annual mileage of an average driver.
const BaseMileage = 10_000

// AnnualMileage returns the person's annual city and highway mileage.
func (p *Person) AnnualMileage(ctx MileageContext) (city, highway float64) {
	mileage := float64(BaseMileage)

	// Men drive a bit more.
	if p.Gender == Male {
		mileage *= 1.2
	}

	if p.JobClass == 0 {
		mileage *= 0.5
	}

	if ctx.HasPartner {
		mileage *= 0.7
	}

	if p.Age >= 65 {
		modifier := 0.01*float64(p.Age-65) + 0.01*float64(max(p.Age-75, 0))
		mileage *= max(1-modifier, 0)
	}

	switch {
	case p.Role == RoleChild:
		// Teenagers still at home mostly drive to school and back.
		if p.Age < 18 {
			mileage *= 0.6
		}
	case ctx.NonDrivers > 0 && ctx.Drivers > 0:
		// Kids have their own activities.
		mileage += 2_000 * float64(ctx.NonDrivers) / float64(ctx.Drivers)
	}

	mileage *= p.Driviness * ctx.HouseholdDriviness * ctx.PropertyDriviness
	mileage = max(mileage, 0)

	city = mileage * 0.55 * ctx.CityDrivingRatio
	highway = mileage * 0.45 * ctx.HighwayDrivingRatio
	return city, highway
}
