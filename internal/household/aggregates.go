package household

import (
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/housing"
	"github.com/talgya/household-sim/internal/people"
)

// Members returns the current head, spouse and children.
func (h *Household) Members() []*people.Person {
	members := make([]*people.Person, 0, 2+len(h.Children))
	members = append(members, h.Head)
	if h.Spouse != nil {
		members = append(members, h.Spouse)
	}
	return append(members, h.Children...)
}

// Drivers returns the members of licensing age.
func (h *Household) Drivers() []*people.Person {
	var drivers []*people.Person
	for _, p := range h.Members() {
		if p.IsDrivingAge() {
			drivers = append(drivers, p)
		}
	}
	return drivers
}

// CombinedRiskScore is the head's upbringing score, averaged with the
// spouse's when there is one. Children inherit it.
func (h *Household) CombinedRiskScore() float64 {
	x := h.Head.UpbringingScore
	if h.Spouse != nil {
		x = (x + h.Spouse.UpbringingScore) / 2
	}
	return x
}

func (h *Household) PeopleCount() int { return len(h.Members()) }
func (h *Household) DriverCount() int { return len(h.Drivers()) }
func (h *Household) ChildCount() int  { return len(h.Children) }

// YouthfulDriverCount counts drivers 25 and under.
func (h *Household) YouthfulDriverCount() int {
	n := 0
	for _, d := range h.Drivers() {
		if d.Age <= 25 {
			n++
		}
	}
	return n
}

// NonDriverCount counts children too young to drive.
func (h *Household) NonDriverCount() int {
	n := 0
	for _, c := range h.Children {
		if !c.IsDrivingAge() {
			n++
		}
	}
	return n
}

func (h *Household) AnnualIncome() float64 {
	total := 0.0
	for _, p := range h.Members() {
		total += p.AnnualIncome()
	}
	return total
}

func (h *Household) MonthlyIncome() float64 {
	return h.AnnualIncome() / 12
}

// MonthlyExpenses covers living costs per person, taxes and savings, and
// the upkeep of every property and vehicle.
func (h *Household) MonthlyExpenses() float64 {
	income := h.MonthlyIncome()
	cost := float64(h.PeopleCount()) * 1_000
	cost += income * 0.2 // taxes
	cost += income * 0.1 // savings
	for _, p := range h.Properties {
		cost += p.MonthlyCost
	}
	for _, v := range h.Vehicles {
		cost += v.MonthlyCost()
	}
	return cost
}

// PrimaryHouse returns the primary residence, or nil before the household
// has picked one.
func (h *Household) PrimaryHouse() *housing.Property {
	for _, p := range h.Properties {
		if p.Primary {
			return p
		}
	}
	return nil
}

func (h *Household) GarageCount() int {
	if p := h.PrimaryHouse(); p != nil {
		return p.Garages
	}
	return 0
}

func (h *Household) BedCount() int {
	if p := h.PrimaryHouse(); p != nil {
		return p.Beds
	}
	return 0
}

// CreditScore is the head of household's credit score.
func (h *Household) CreditScore() int {
	return h.Head.CreditScore()
}

// driverStat folds f over the drivers. ok is false when there are none.
func (h *Household) driverStat(f func(*people.Person) float64) (lo, hi, mean float64, ok bool) {
	drivers := h.Drivers()
	if len(drivers) == 0 {
		return 0, 0, 0, false
	}
	lo, hi = f(drivers[0]), f(drivers[0])
	sum := 0.0
	for _, d := range drivers {
		v := f(d)
		lo, hi = min(lo, v), max(hi, v)
		sum += v
	}
	return lo, hi, sum / float64(len(drivers)), true
}

// Multiline indicators: other policies the household reports holding with
// the same carrier. Each is reported only some of the time, so they are
// drawn from s.

func (h *Household) multilineHouses(s *entropy.Stream) int {
	return h.countReported(s, 0.85, housing.Owned)
}

func (h *Household) multilineRental(s *entropy.Stream) int {
	return h.countReported(s, 0.45, housing.Rental)
}

func (h *Household) countReported(s *entropy.Stream, reportRate float64, o housing.Ownership) int {
	if !s.Bernoulli(reportRate) {
		return 0
	}
	n := 0
	for _, p := range h.Properties {
		if p.Ownership == o {
			n++
		}
	}
	return n
}

// multilineUmbrella tracks income: high earners carry extra liability.
func (h *Household) multilineUmbrella(s *entropy.Stream) int {
	income := h.AnnualIncome()
	rate := 0.0
	for _, step := range []struct{ above, add float64 }{
		{95_000, 0.05}, {115_000, 0.05}, {135_000, 0.05}, {155_000, 0.1}, {195_000, 0.1},
	} {
		if income > step.above {
			rate += step.add
		}
	}
	if rate >= s.Float() {
		return 1
	}
	return 0
}

// multilineArticle covers jewellery and the like; married couples need it
// at a lower income.
func (h *Household) multilineArticle(s *entropy.Stream) int {
	threshold := 150_000.0
	if h.Spouse != nil {
		threshold = 75_000
	}
	if h.AnnualIncome() > threshold && 0.15 >= s.Float() {
		return 1
	}
	return 0
}
