package household

import (
	"fmt"
	"maps"
	"math"

	"github.com/talgya/household-sim/internal/claims"
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
	"github.com/talgya/household-sim/internal/people"
)

// Record is a flat feature row. Values are strings, bools, ints, float64s,
// nil for missing, or nested []Record lists.
type Record = map[string]any

const (
	minDriverAge = 16
	maxDriverAge = 98
	lookback     = 15 // Claim age window, in years.
)

var (
	coverageKeys = []string{"all", "bi", "pd", "coll", "comp", "mpc", "ers", "ubi"}
	genders      = []people.Gender{people.Male, people.Female}

	mileageJitter        = []float64{-2000, -1000, 0, 1000, 2000}
	mileageJitterWeights = []float64{0.1, 0.2, 0.3, 0.2, 0.1}
)

// summaryStream returns the stream summary draws come from. It depends
// only on the household and its tenure, so a summary is repeatable and
// stops changing once the household lapses.
func (h *Household) summaryStream() *entropy.Stream {
	return entropy.NewStream(h.summarySeed + int64(h.TenureYears))
}

// Summary is the household feature row as of the current tenure.
func (h *Household) Summary() Record {
	return h.summary(h.summaryStream())
}

func (h *Household) summary(s *entropy.Stream) Record {
	reportable := h.reportableClaims()
	drivers := h.Drivers()

	r := Record{
		"household_id":          h.ID,
		"inforce":               h.Inforce,
		"household_tenure":      h.TenureYears,
		"driver_count":          len(drivers),
		"vehicle_count":         len(h.Vehicles),
		"youthful_driver_count": h.YouthfulDriverCount(),
		"credit_score":          h.CreditScore(),
		"garaging_location":     nil,
	}

	ageFn := func(p *people.Person) float64 { return float64(p.Age) }
	tenureFn := func(p *people.Person) float64 { return float64(p.TenureYears) }
	if lo, hi, mean, ok := h.driverStat(ageFn); ok {
		r["min_driver_age"], r["max_driver_age"], r["mean_driver_age"] = int(lo), int(hi), mean
	} else {
		r["min_driver_age"], r["max_driver_age"], r["mean_driver_age"] = nil, nil, nil
	}
	if lo, hi, _, ok := h.driverStat(tenureFn); ok {
		r["min_driver_tenure"], r["max_driver_tenure"] = int(lo), int(hi)
	} else {
		r["min_driver_tenure"], r["max_driver_tenure"] = nil, nil
	}

	if p := h.PrimaryHouse(); p != nil {
		r["garaging_location"] = string(p.Location)
	}

	r["multiline_houses"] = h.multilineHouses(s)
	r["multiline_rental"] = h.multilineRental(s)
	r["multiline_personal_liability_umbrella"] = h.multilineUmbrella(s)
	r["multiline_personal_article_policy"] = h.multilineArticle(s)

	vehicleInfo := make([]Record, 0, len(h.Vehicles))
	for _, v := range h.Vehicles {
		vehicleInfo = append(vehicleInfo, h.vehicleSummary(v))
	}
	driverInfo := make([]Record, 0, len(drivers))
	for _, d := range drivers {
		driverInfo = append(driverInfo, d.Summary())
	}
	claimsInfo := make([]Record, 0, len(reportable))
	for _, c := range reportable {
		claimsInfo = append(claimsInfo, c.Summary(h.TenureYears))
	}
	r["vehicle_info"] = vehicleInfo
	r["driver_info"] = driverInfo
	r["claims_info"] = claimsInfo

	for age := minDriverAge; age <= maxDriverAge; age++ {
		total := 0
		byGender := make(map[people.Gender]int, len(genders))
		for _, d := range drivers {
			if d.Age == age {
				total++
				byGender[d.Gender]++
			}
		}
		r[fmt.Sprintf("driver_cnt_%d", age)] = total
		for _, g := range genders {
			r[fmt.Sprintf("driver_cnt_%d_%s", age, g)] = byGender[g]
		}
	}

	addClaimHistory(r, "household", reportable, h.TenureYears)
	return r
}

// addClaimHistory writes per-age claim counts and time since the most
// recent claim, for every coverage, under the given key prefix. The "all"
// key counts every claim in cs, paid or not.
func addClaimHistory(r Record, prefix string, cs []*claims.Claim, tenure int) {
	for _, key := range coverageKeys {
		counts := make([]int, lookback+1)
		var since any
		for _, c := range cs {
			age := c.HowOld(tenure)
			if age < 1 || age > lookback || (key != "all" && !c.Indicator(key)) {
				continue
			}
			counts[age]++
			if since == nil || age < since.(int) {
				since = age
			}
		}
		for age := 1; age <= lookback; age++ {
			r[fmt.Sprintf("%s_claim_cnt_%s_%d", prefix, key, age)] = counts[age]
		}
		r[fmt.Sprintf("%s_claim_time_since_%s", prefix, key)] = since
	}
}

// vehicleSummary is the per-vehicle feature row. Its claim history counts
// every claim ever filed on the vehicle, including unpaid claims and claims
// charged to drivers who have left.
func (h *Household) vehicleSummary(v *fleet.Vehicle) Record {
	r := Record{
		"vehicle_id":          v.ID,
		"vehicle_age":         v.Age,
		"vehicle_years_owned": v.YearsOwned,
		"vehicle_type":        string(v.Type),
	}
	var own []*claims.Claim
	for _, c := range h.Claims {
		if c.VehicleID == v.ID {
			own = append(own, c)
		}
	}
	addClaimHistory(r, "vehicle", own, h.TenureYears)
	return r
}

var vehicleSelection = []string{"vehicle_id", "vehicle_age", "vehicle_years_owned", "vehicle_type"}

// SummaryPerVehicle expands the household summary into one row per
// vehicle, with the vehicle's own fields, its rounded annual mileage, and
// the household's claims split into this vehicle's and the others'.
func (h *Household) SummaryPerVehicle() []Record {
	s := h.summaryStream()
	base := h.summary(s)

	claimsInfo := base["claims_info"].([]Record)
	vehicleInfo := base["vehicle_info"].([]Record)
	delete(base, "claims_info")
	delete(base, "vehicle_info")

	mileage := h.MileageByVehicle()

	selected := make([]Record, len(vehicleInfo))
	for i, v := range vehicleInfo {
		selected[i] = Record{}
		for _, k := range vehicleSelection {
			selected[i][k] = v[k]
		}
	}

	rows := make([]Record, 0, len(vehicleInfo))
	for _, v := range vehicleInfo {
		id := v["vehicle_id"].(string)

		row := maps.Clone(base)
		maps.Copy(row, v)

		rounded := math.RoundToEven(mileage[id]/1000) * 1000
		jitter := mileageJitter[s.Weighted(mileageJitterWeights)]
		row["annual_mileage"] = int(max(1000, rounded+jitter))

		var own, other []Record
		for _, c := range claimsInfo {
			if c["vehicle_id"] == id {
				own = append(own, c)
			} else {
				other = append(other, c)
			}
		}
		row["vehicle_claims"] = own
		row["other_claims"] = other

		household := make([]Record, len(selected))
		for i, sel := range selected {
			household[i] = maps.Clone(sel)
			household[i]["this_vehicle_ind"] = sel["vehicle_id"] == id
		}
		row["household_vehicles_info"] = household

		rows = append(rows, row)
	}
	return rows
}

// SummaryWithDebugging adds the latent household state behind the
// observable summary.
func (h *Household) SummaryWithDebugging() Record {
	r := h.Summary()

	bestJob := 0
	for _, p := range h.Members() {
		bestJob = max(bestJob, p.JobClass)
	}

	r["child_count"] = h.ChildCount()
	r["monthly_income"] = h.MonthlyIncome()
	r["monthly_expenses"] = h.MonthlyExpenses()
	r["net_monthly"] = h.MonthlyIncome() - h.MonthlyExpenses()
	r["best_job"] = bestJob
	r["hoh_education"] = string(h.Head.Education)
	r["head_of_house_upbringing_score"] = h.Head.UpbringingScore

	hazard := func(p *people.Person) float64 { return p.DrivingHazard() }
	rms := func(p *people.Person) float64 { return p.RiskMitigationScore }
	for name, f := range map[string]func(*people.Person) float64{"driver_hazard": hazard, "risk_mitigation_score": rms} {
		if lo, hi, mean, ok := h.driverStat(f); ok {
			r["min_"+name], r["max_"+name], r["mean_"+name] = lo, hi, mean
		} else {
			r["min_"+name], r["max_"+name], r["mean_"+name] = nil, nil, nil
		}
	}
	return r
}
