// Package people provides the person model and the yearly life-cycle
// engine: aging, marriage, education, employment, risk drift and driving
// behaviour. Heads of household, spouses and children share one core;
// a role only decides which household hooks the core is allowed to fire.
package people

import (
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
)

// Role is the position a person holds in a household.
type Role uint8

const (
	RoleHead Role = iota
	RoleSpouse
	RoleChild
)

func (r Role) String() string {
	switch r {
	case RoleHead:
		return "head_of_household"
	case RoleSpouse:
		return "spouse"
	case RoleChild:
		return "child"
	}
	return "unknown"
}

// Capabilities is the set of household-level events a role may trigger.
type Capabilities struct {
	InitiatesMarriage bool // Marrying brings a new spouse into the household.
	BearsChildren     bool // Runs the yearly fertility check.
	LeavesVoluntarily bool // Runs the yearly leave-household check.
	LeavesOnMarriage  bool // Marrying removes the person from the household.
	ShopsForHousing   bool // Occasionally re-evaluates the household's dwelling.
}

// Capabilities returns the capability set of the role.
func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleHead:
		return Capabilities{InitiatesMarriage: true, BearsChildren: true, ShopsForHousing: true}
	case RoleChild:
		return Capabilities{LeavesVoluntarily: true, LeavesOnMarriage: true}
	}
	return Capabilities{}
}

// Gender is m or f.
type Gender string

const (
	Male   Gender = "m"
	Female Gender = "f"
)

// Opposite returns the other gender.
func (g Gender) Opposite() Gender {
	if g == Male {
		return Female
	}
	return Male
}

// Education is the highest education state reached.
type Education string

const (
	Uneducated        Education = "uneducated"
	HighSchool        Education = "high_school"
	AttendingCollege  Education = "attending_college"
	CollegeGraduate   Education = "college_graduate"
	Postbaccalaureate Education = "postbaccalaureate"
)

// allowedJobs lists the job classes reachable from each education tier,
// in ascending order.
var allowedJobs = map[Education][]int{
	Uneducated:        {0, 1, 2},
	HighSchool:        {0, 1, 2, 3},
	AttendingCollege:  {0, 1, 2},
	CollegeGraduate:   {0, 2, 3, 4},
	Postbaccalaureate: {0, 3, 4, 5, 6},
}

// AllowedJobs returns the job classes allowed for an education tier.
func AllowedJobs(e Education) []int {
	return allowedJobs[e]
}

// hourlyWage by job class.
var hourlyWage = [...]float64{0, 8, 15, 30, 50, 70, 125}

// Hooks is implemented by the household that owns a person. The life-cycle
// core only calls the hooks the person's role is capable of.
type Hooks interface {
	// Married is called after a marriage-initiating person marries.
	Married(p *Person, yearsRemaining int)
	// ReevaluateHousing lets the household shop for a new dwelling.
	ReevaluateHousing(p *Person)
	// ChildCheck runs the household's fertility check for p.
	ChildCheck(p *Person, yearsRemaining int)
	// Leave removes p from the household.
	Leave(p *Person)
}

// Person is one member of a household.
type Person struct {
	ID     string `json:"driver_id"`
	Role   Role   `json:"role"`
	Gender Gender `json:"driver_gender"`

	Age               int       `json:"driver_age"`
	TenureYears       int       `json:"driver_tenure"`
	DrivingExperience float64   `json:"driving_experience"`
	Married           bool      `json:"married"`
	Education         Education `json:"education"`
	JobClass          int       `json:"job_class"`
	Inforce           bool      `json:"inforce"`

	// Latent traits fixed at creation.
	AgeLicensed            int        `json:"age_licensed"`
	MarriedAge             int        `json:"married_age"`
	UpbringingScore        float64    `json:"upbringing_score"`
	JobRiskDeviation       float64    `json:"job_risk_deviation"`
	FinancialRiskDeviation float64    `json:"financial_risk_deviation"`
	PreferredType          fleet.Type `json:"preferred_vehicle_type"`
	Driviness              float64    `json:"driviness"`

	RiskMitigationScore float64 `json:"risk_mitigation_score"`

	partTimeHours float64
	rng           *entropy.Stream
}
