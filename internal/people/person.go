package people

import (
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
)

var (
	licenseAges    = []int{16, 17, 18, 19, 20}
	licenseWeights = []float64{0.7, 0.1, 0.1, 0.05, 0.05}

	// 1000 stands in for "never marries".
	marriageAges    = []int{22, 25, 29, 33, 37, 41, 1000}
	marriageWeights = []float64{0.25, 0.15, 0.15, 0.1, 0.1, 0.1, 0.15}
)

// newPerson draws the latent traits of a newborn. gender and upbringing
// are drawn when nil.
func newPerson(s *entropy.Stream, role Role, gender *Gender, upbringing *float64) *Person {
	p := &Person{
		ID:        s.ID(),
		Role:      role,
		Education: Uneducated,
		Inforce:   true,
		rng:       s,
	}

	if gender != nil {
		p.Gender = *gender
	} else if s.Weighted([]float64{0.5, 0.5}) == 0 {
		p.Gender = Male
	} else {
		p.Gender = Female
	}

	p.AgeLicensed = licenseAges[s.Weighted(licenseWeights)]
	p.MarriedAge = max(18, marriageAges[s.Weighted(marriageWeights)]+int(s.Uniform(-3, 3)))

	if upbringing != nil {
		p.UpbringingScore = *upbringing
	} else {
		p.UpbringingScore = s.Normal(0, 3)
	}
	p.RiskMitigationScore = p.UpbringingScore + s.Normal(0, 0.5)
	p.JobRiskDeviation = s.Normal(0, 0.5)
	p.FinancialRiskDeviation = s.Normal(0, 0.5)

	p.PreferredType = drawPreferredType(s, p.Gender)
	p.Driviness = max(0.1, s.Normal(1, 0.1))
	return p
}

func drawPreferredType(s *entropy.Stream, g Gender) fleet.Type {
	weights := make([]float64, len(fleet.Types))
	for i, t := range fleet.Types {
		// fleet.Types only lists catalog entries, so Lookup cannot fail here.
		spec, _ := fleet.Lookup(t)
		if g == Male {
			weights[i] = spec.MaleInterest
		} else {
			weights[i] = spec.FemaleInterest
		}
	}
	return fleet.Types[s.Weighted(weights)]
}

// NewHead creates a head of household at age zero. Call StartLife once the
// owning household holds a reference to it.
func NewHead(s *entropy.Stream) *Person {
	return newPerson(s, RoleHead, nil, nil)
}

// StartLife ages a new head of household to a drawn starting age between
// roughly 20 and 60.
func (p *Person) StartLife(h Hooks) {
	target := max(16, int(p.rng.Uniform(20, 60)+p.rng.Normal(0, 3)))
	p.MoveForwardNYears(target, h)
}

// NewSpouse creates the spouse of head, correlated in age, gender and
// upbringing, aged so they end the head's current catch-up period level
// with the head.
func NewSpouse(s *entropy.Stream, head *Person, yearsRemaining int, h Hooks) *Person {
	lower := max(int(float64(head.Age)/2+7), 18, head.Age-10)
	upper := head.Age
	mode := head.Age - 2

	target := head.Age
	if lower < mode && mode < upper {
		target = int(s.Triangular(float64(lower), float64(upper), float64(mode)))
	}

	gender := head.Gender.Opposite()
	if s.Weighted([]float64{0.9, 0.1}) == 1 {
		gender = head.Gender
	}

	upbringing := head.UpbringingScore + s.Normal(0, 0.5)

	sp := newPerson(s, RoleSpouse, &gender, &upbringing)
	sp.MoveForwardNYears(target+yearsRemaining, h)
	sp.marryOnce()
	return sp
}

// NewChild creates a child with the given upbringing score and ages it
// yearsRemaining years. The child may already have left when this returns;
// check Inforce.
func NewChild(s *entropy.Stream, upbringing float64, yearsRemaining int, h Hooks) *Person {
	c := newPerson(s, RoleChild, nil, &upbringing)
	c.MoveForwardNYears(yearsRemaining, h)
	return c
}

// Capabilities returns the person's role capabilities.
func (p *Person) Capabilities() Capabilities {
	return p.Role.Capabilities()
}

// Stream returns the random stream the person draws from.
func (p *Person) Stream() *entropy.Stream {
	return p.rng
}

// IsDrivingAge reports whether the person is old enough to hold a licence.
func (p *Person) IsDrivingAge() bool {
	return p.YearsLicensed() >= 0
}

// YearsLicensed is the number of years since the licensing age; negative
// before it.
func (p *Person) YearsLicensed() int {
	return p.Age - p.AgeLicensed
}

// Wage is the hourly wage of the current job class.
func (p *Person) Wage() float64 {
	if p.JobClass < 0 || p.JobClass >= len(hourlyWage) {
		return 0
	}
	return hourlyWage[p.JobClass]
}

// HoursWorked is weekly hours. Students and people 21 and under work a
// part-time schedule drawn once a year.
func (p *Person) HoursWorked() float64 {
	switch {
	case p.JobClass == 0:
		return 0
	case p.Education == AttendingCollege || p.Age <= 21:
		if p.partTimeHours == 0 {
			return 10
		}
		return p.partTimeHours
	default:
		return 40
	}
}

// AnnualIncome is wage × weekly hours × 52.
func (p *Person) AnnualIncome() float64 {
	return p.Wage() * p.HoursWorked() * 52
}

// JobRiskScore drives job instability.
func (p *Person) JobRiskScore() float64 {
	return p.RiskMitigationScore + p.JobRiskDeviation
}

// FinancialRiskScore drives the credit score.
func (p *Person) FinancialRiskScore() float64 {
	return p.RiskMitigationScore + p.FinancialRiskDeviation
}

// CreditScore maps financial risk onto the 200–900 range.
func (p *Person) CreditScore() int {
	return int(200 + 700*entropy.Sigmoid(0.2*p.FinancialRiskScore()))
}

// Summary is the per-driver feature row.
func (p *Person) Summary() map[string]any {
	return map[string]any{
		"driver_id":     p.ID,
		"driver_age":    p.Age,
		"driver_gender": string(p.Gender),
		"driver_tenure": p.TenureYears,
	}
}
