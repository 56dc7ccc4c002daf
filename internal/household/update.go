package household

import (
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
	"github.com/talgya/household-sim/internal/housing"
)

// Utility scores for fleets the household cannot live with.
const (
	scoreNoVehicles   = -1000.0
	scoreUnaffordable = -500.0
	scoreBadFit       = -250.0

	// Below this, fall back to a fleet of old sedans.
	fallbackThreshold = -100.0
	fallbackAge       = 20
)

// EvaluateVehicles scores a candidate fleet: how well the drivers like
// their allocated vehicles, less penalties for a driver/vehicle mismatch
// and for duplicate vehicle types. Empty, unaffordable and badly sized
// fleets get fixed low scores.
func (h *Household) EvaluateVehicles(vehicles []*fleet.Vehicle) float64 {
	if len(vehicles) == 0 {
		return scoreNoVehicles
	}

	cost := 0.0
	for _, v := range vehicles {
		cost += 12 * v.MonthlyCost()
	}
	if cost-h.AnnualIncome()*0.2*0.7 >= 0 {
		return scoreUnaffordable
	}

	drivers := h.Drivers()
	diff := len(drivers) - len(vehicles)
	if diff > 2 || diff < -2 {
		return scoreBadFit
	}

	alloc := h.VehicleAssignments(vehicles)
	hasChildren := len(h.Children) > 0

	score := 0.0
	for _, v := range vehicles {
		for _, d := range drivers {
			score += d.VehicleInterest(v, vehicles, hasChildren) * alloc.Share(d.ID, v.ID)
		}
	}

	if diff != 0 {
		score -= float64(diff * diff)
	}

	types := make(map[fleet.Type]struct{}, len(vehicles))
	for _, v := range vehicles {
		types[v.Type] = struct{}{}
	}
	if len(types) < len(vehicles) {
		score += 0.5 * float64(len(types)-len(vehicles))
	}
	return score
}

// UpdateVehicles reconsiders the fleet. A household without vehicles
// shops from scratch; otherwise it weighs keeping its fleet against
// adding, swapping and dropping vehicles. Coverage drifts with the head's
// risk mitigation, and the chosen fleet carries the same coverage.
func (h *Household) UpdateVehicles() {
	s := h.rng
	drivers := h.DriverCount()
	care := entropy.Sigmoid(h.Head.RiskMitigationScore / 5)

	var (
		cov     fleet.Coverage
		options [][]*fleet.Vehicle
	)

	if len(h.Vehicles) == 0 {
		pMajor := 0.5 + 0.5*care
		pMinor := 0.3 + 0.6*care
		cov = fleet.Coverage{
			BI:   true,
			PD:   true,
			Coll: s.Bernoulli(pMajor),
			Comp: s.Bernoulli(pMajor),
			MPC:  s.Bernoulli(pMinor),
			ERS:  s.Bernoulli(pMinor),
			UBI:  s.Bernoulli(pMinor),
		}

		sizes := []int{drivers - 1, drivers, drivers + 1}
		repeat := 5
		if drivers <= 1 {
			sizes, repeat = []int{1, 2}, 10
		}
		for _, n := range sizes {
			for i := 0; i < repeat; i++ {
				options = append(options, h.freshFleet(n))
			}
		}
	} else {
		cov = h.currentCoverage()

		pUpgrade := 0.12 * care
		pDowngrade := 0.05 - 0.05*care
		optional := []*bool{&cov.Coll, &cov.Comp, &cov.MPC, &cov.ERS, &cov.UBI}
		for _, c := range optional {
			if s.Bernoulli(pDowngrade) {
				*c = false
			}
		}
		for _, c := range optional {
			if s.Bernoulli(pUpgrade) {
				*c = true
			}
		}
		cov.BI, cov.PD = true, true

		options = append(options, slices.Clone(h.Vehicles))
		for _, o := range []struct {
			add    bool
			remove int
			times  int
		}{
			{true, 0, 5}, {true, 1, 3}, {true, 2, 3},
			{false, 1, 3}, {false, 2, 1}, {false, 3, 1},
		} {
			for i := 0; i < o.times; i++ {
				options = append(options, h.alteredFleet(o.add, o.remove))
			}
		}
	}

	options = dedupeFleets(options)

	best, bestScore := 0, math.Inf(-1)
	for i, o := range options {
		if score := h.EvaluateVehicles(o); score > bestScore {
			best, bestScore = i, score
		}
	}

	chosen := options[best]
	if bestScore < fallbackThreshold {
		chosen = h.fallbackFleet(max(drivers, 1))
	}

	for _, v := range chosen {
		v.Coverage = cov
	}
	h.setVehicles(chosen)
}

func (h *Household) currentCoverage() fleet.Coverage {
	var cov fleet.Coverage
	for _, v := range h.Vehicles {
		cov.Coll = cov.Coll || v.Coverage.Coll
		cov.Comp = cov.Comp || v.Coverage.Comp
		cov.MPC = cov.MPC || v.Coverage.MPC
		cov.ERS = cov.ERS || v.Coverage.ERS
		cov.UBI = cov.UBI || v.Coverage.UBI
	}
	return cov
}

func (h *Household) newVehicle(age int, t fleet.Type) *fleet.Vehicle {
	v, err := fleet.New(h.rng, age, t)
	if err != nil {
		h.fail(err)
		return nil
	}
	return v
}

func (h *Household) randomType() fleet.Type {
	return fleet.Types[h.rng.Intn(len(fleet.Types))]
}

// freshFleet buys n vehicles, mostly a few years old.
func (h *Household) freshFleet(n int) []*fleet.Vehicle {
	var out []*fleet.Vehicle
	for i := 0; i < n; i++ {
		age := int(h.rng.Triangular(0, 25, 5))
		if v := h.newVehicle(age, h.randomType()); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// alteredFleet drops up to remove random vehicles from the current fleet
// (never the last one) and optionally buys one more.
func (h *Household) alteredFleet(add bool, remove int) []*fleet.Vehicle {
	out := slices.Clone(h.Vehicles)
	for i := 0; i < remove && len(out) > 1; i++ {
		j := h.rng.Intn(len(out))
		out = slices.Delete(out, j, j+1)
	}
	if add {
		age := int(h.rng.Uniform(0, 25))
		if v := h.newVehicle(age, h.randomType()); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (h *Household) fallbackFleet(n int) []*fleet.Vehicle {
	var out []*fleet.Vehicle
	for i := 0; i < n; i++ {
		if v := h.newVehicle(fallbackAge, fleet.Sedan); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// dedupeFleets drops candidate fleets made of exactly the same vehicles
// as an earlier candidate.
func dedupeFleets(options [][]*fleet.Vehicle) [][]*fleet.Vehicle {
	seen := make(map[string]bool, len(options))
	out := options[:0]
	for _, o := range options {
		ids := make([]string, len(o))
		for i, v := range o {
			ids[i] = v.ID
		}
		sort.Strings(ids)
		key := strings.Join(ids, ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

func (h *Household) setVehicles(vehicles []*fleet.Vehicle) {
	for _, v := range vehicles {
		h.vehicles[v.ID] = v
	}
	if len(vehicles) != len(h.Vehicles) {
		slog.Debug("fleet changed", "household", h.ID, "from", len(h.Vehicles), "to", len(vehicles))
	}
	h.Vehicles = vehicles
}

// UpdateHouse picks a home the household can afford: housing should take
// no more than 30% of take-home pay. Very high earners add a vacation
// home. Households already holding more than one property stay put.
func (h *Household) UpdateHouse() {
	if len(h.Properties) > 1 {
		return
	}

	apartment := h.newProperty(housing.Apartment)
	modest := h.newProperty(housing.ModestHouse)
	complete := h.newProperty(housing.CompleteHouse)
	if apartment == nil || modest == nil || complete == nil {
		return
	}

	takeHome := h.MonthlyIncome() * 0.7
	var chosen []*housing.Property
	switch {
	case 0.2*takeHome >= complete.MonthlyCost+modest.MonthlyCost:
		modest.Primary = false
		chosen = []*housing.Property{complete, modest}
	case 0.3*takeHome >= complete.MonthlyCost:
		chosen = []*housing.Property{complete}
	case 0.3*takeHome >= modest.MonthlyCost:
		chosen = []*housing.Property{modest}
	default:
		chosen = []*housing.Property{apartment}
	}

	for _, p := range chosen {
		h.properties[p.ID] = p
	}
	h.Properties = chosen
}

func (h *Household) newProperty(c housing.Class) *housing.Property {
	p, err := housing.New(h.rng, c)
	if err != nil {
		h.fail(err)
		return nil
	}
	return p
}
