package people

import (
	"log/slog"

	"github.com/talgya/household-sim/internal/entropy"
)

// Marriage bonus to risk mitigation.
const marriageBonus = 0.15

// MoveForwardNYears runs n yearly life-cycle steps. Each year, in order:
// age, marriage, education, job, housing, driving experience, risk drift,
// fertility and the leave-household check. A person removed from the
// household stops aging.
func (p *Person) MoveForwardNYears(n int, h Hooks) {
	caps := p.Capabilities()

	for i := 0; i < n; i++ {
		if !p.Inforce {
			return
		}
		yearsRemaining := n - 1 - i

		p.Age++

		if !p.Married && p.MarriedAge <= p.Age {
			p.marry(caps, h, yearsRemaining)
			if !p.Inforce {
				return
			}
		}

		p.evaluateEducation()
		p.evaluateJob()

		// Nobody shops for a house every year.
		if caps.ShopsForHousing && p.rng.Bernoulli(0.33) && h != nil {
			h.ReevaluateHousing(p)
		}

		if p.IsDrivingAge() {
			p.DrivingExperience += p.rng.Uniform(0, 1)
		}

		p.driftRisk()

		if caps.BearsChildren && h != nil {
			h.ChildCheck(p, yearsRemaining)
		}

		if caps.LeavesVoluntarily {
			p.leaveCheck(h)
		}
	}
}

func (p *Person) marry(caps Capabilities, h Hooks, yearsRemaining int) {
	if caps.LeavesOnMarriage {
		slog.Debug("child married and left household", "person", p.ID, "age", p.Age)
		p.leave(h)
		return
	}

	p.marryOnce()
	if caps.InitiatesMarriage && h != nil {
		h.Married(p, yearsRemaining)
	}
}

func (p *Person) marryOnce() {
	if p.Married {
		return
	}
	p.Married = true
	p.RiskMitigationScore += marriageBonus
}

// LeaveProbability is the yearly chance a child moves out.
func (p *Person) LeaveProbability() float64 {
	score := 0.0
	if p.AnnualIncome() >= 35_000 {
		score += 0.5
	}
	if p.Age >= 25 {
		score += 0.25
	}
	return score
}

func (p *Person) leaveCheck(h Hooks) {
	if p.LeaveProbability() > p.rng.Float() {
		slog.Debug("child left household", "person", p.ID, "age", p.Age)
		p.leave(h)
	}
}

func (p *Person) leave(h Hooks) {
	p.Inforce = false
	if h != nil {
		h.Leave(p)
	}
}

func (p *Person) evaluateEducation() {
	defer p.snapJob()

	switch {
	case p.Education == AttendingCollege:
		if p.Age >= 26 {
			p.Education = HighSchool
			p.JobClass = 1
		} else if p.Age >= 21 {
			if entropy.Sigmoid(p.UpbringingScore/5+0.5) > p.rng.Float() {
				p.Education = CollegeGraduate
				p.JobClass = min(max(2, p.JobClass+1), 6)
			} else if p.UpbringingScore < 0 && p.rng.Bernoulli(0.2) {
				p.Education = HighSchool
				p.JobClass = 1
			}
		}
	case p.Age < 17 || p.Age > 40:
		return
	case p.Age <= 21:
		chance := entropy.Sigmoid(p.UpbringingScore/5 + 0.5)
		roll := p.rng.Float()
		if p.Education == Uneducated && chance > roll {
			p.Education = HighSchool
			p.JobClass = 1
		} else if p.Education == HighSchool && chance > roll {
			p.Education = AttendingCollege
			p.JobClass = 1
		}
	case 24 <= p.Age && p.Age <= 26 && p.Education == CollegeGraduate:
		if entropy.Sigmoid(p.UpbringingScore/5-1) > p.rng.Float() {
			p.Education = Postbaccalaureate
			p.JobClass = min(max(4, p.JobClass+1), 6)
		}
	case p.Education == CollegeGraduate && p.JobClass >= 3:
		if p.rng.Bernoulli(0.03) {
			p.Education = Postbaccalaureate
			p.JobClass = min(max(4, p.JobClass+1), 6)
		}
	}
}

// snapJob moves a job class that is not allowed for the current education
// to the nearest allowed one, preferring the lower on ties.
func (p *Person) snapJob() {
	allowed := allowedJobs[p.Education]
	best := allowed[0]
	for _, c := range allowed {
		if c == p.JobClass {
			return
		}
		if abs(c-p.JobClass) < abs(best-p.JobClass) {
			best = c
		}
	}
	p.JobClass = best
}

func (p *Person) evaluateJob() {
	change := 0.5 * entropy.Sigmoid(-p.JobRiskScore())
	if change > p.rng.Float() {
		allowed := allowedJobs[p.Education]
		idx := 0
		for i, c := range allowed {
			if c == p.JobClass {
				idx = i
				break
			}
		}

		if p.rng.Bernoulli(0.6) {
			idx++
		} else {
			idx--
		}
		idx = max(min(idx, len(allowed)-1), 0)
		p.JobClass = allowed[idx]
	}

	if p.JobClass > 0 && (p.Education == AttendingCollege || p.Age <= 21) {
		p.partTimeHours = p.rng.Uniform(5, 15)
	}
}

func (p *Person) driftRisk() {
	switch {
	case p.Gender == Male && p.Age > 23 && p.Age < 27:
		p.RiskMitigationScore += p.rng.Uniform(-0.05, 0.15)
	case p.Gender == Female && p.Age > 18 && p.Age < 23:
		p.RiskMitigationScore += p.rng.Uniform(-0.05, 0.15)
	case p.Age < 23:
		p.RiskMitigationScore += p.rng.Uniform(-0.05, 0.05)
	default:
		p.RiskMitigationScore += p.rng.Uniform(-0.05, 0.1)
	}
	p.RiskMitigationScore += p.rng.Uniform(-0.05, 0.1)
}

// FertilityProbability is the base yearly chance a couple has a child,
// given the head's age, the current child count and whether the couple is
// same-sex. Zero outside the fertile age bands.
func FertilityProbability(age, childCount int, sameSex bool) float64 {
	var p float64
	switch {
	case age >= 20 && age <= 25:
		p = 0.25
	case age >= 26 && age <= 36:
		p = 0.5
	case age >= 37 && age <= 41:
		p = 0.35
	case age >= 42 && age <= 45:
		p = 0.25
	default:
		return 0
	}

	if childCount >= 1 {
		p *= 0.9
	}
	if childCount >= 3 {
		p *= 0.9
	}
	if sameSex {
		p *= 0.25
	}
	return p
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
