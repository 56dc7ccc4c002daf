// Package household is the simulation orchestrator. A Household owns its
// people, vehicles, properties and claim ledger, advances them one year at
// a time, allocates driving across the fleet, draws claims from the
// resulting exposure and decides when the policy lapses.
//
// Entities are kept in per-household arenas keyed by id; claims refer to
// vehicles and drivers by id only.
package household

import (
	"log/slog"
	"slices"

	"github.com/talgya/household-sim/internal/claims"
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
	"github.com/talgya/household-sim/internal/housing"
	"github.com/talgya/household-sim/internal/people"
)

var (
	childInterestCounts  = []int{0, 1, 2, 3, 4, 5}
	childInterestWeights = []float64{0.10, 0.15, 0.3, 0.3, 0.1, 0.05}
)

// Household is one insured household.
type Household struct {
	ID            string
	Inforce       bool
	TenureYears   int
	ChildInterest int     // Number of children the couple wants.
	Driviness     float64 // Household-wide mileage multiplier.

	Head       *people.Person
	Spouse     *people.Person
	Children   []*people.Person
	Vehicles   []*fleet.Vehicle
	Properties []*housing.Property
	Claims     []*claims.Claim

	// Arenas of every entity that ever belonged to the household.
	people     map[string]*people.Person
	vehicles   map[string]*fleet.Vehicle
	properties map[string]*housing.Property

	rng         *entropy.Stream
	summarySeed int64
	err         error
}

// New creates a household: the head of household lives up to a starting
// age (possibly marrying and having children on the way), then the
// household picks a home and an initial fleet.
func New(s *entropy.Stream) (*Household, error) {
	h := &Household{
		ID:         s.ID(),
		Inforce:    true,
		Driviness:  s.Normal(1, 0.2),
		people:     make(map[string]*people.Person),
		vehicles:   make(map[string]*fleet.Vehicle),
		properties: make(map[string]*housing.Property),
		rng:        s,
	}
	h.ChildInterest = childInterestCounts[s.Weighted(childInterestWeights)]
	h.summarySeed = s.Int63()

	h.Head = people.NewHead(s)
	h.register(h.Head)
	h.Head.StartLife(h)

	h.UpdateHouse()
	h.UpdateVehicles()

	// Guess how long the starting fleet has been owned.
	for _, v := range h.Vehicles {
		if v.Age > 0 {
			v.YearsOwned = s.IntRange(0, v.Age)
		}
	}

	if h.err != nil {
		return nil, h.err
	}

	slog.Debug("household created",
		"household", h.ID,
		"head_age", h.Head.Age,
		"children", len(h.Children),
		"vehicles", len(h.Vehicles),
	)
	return h, nil
}

// Err returns the first configuration error the household hit, if any.
// A household with an error stops advancing.
func (h *Household) Err() error {
	return h.err
}

func (h *Household) fail(err error) {
	if h.err == nil {
		h.err = err
		slog.Error("household configuration error", "household", h.ID, "error", err)
	}
}

func (h *Household) register(p *people.Person) {
	h.people[p.ID] = p
}

// Person looks up anyone who ever belonged to the household.
func (h *Household) Person(id string) (*people.Person, bool) {
	p, ok := h.people[id]
	return p, ok
}

// Vehicle looks up any vehicle the household ever held.
func (h *Household) Vehicle(id string) (*fleet.Vehicle, bool) {
	v, ok := h.vehicles[id]
	return v, ok
}

// Property looks up any property the household ever held.
func (h *Household) Property(id string) (*housing.Property, bool) {
	p, ok := h.properties[id]
	return p, ok
}

// Advance moves the household forward the given number of years. Each
// year: children, spouse and head age (the head's year cascades marriage,
// fertility, education, job and housing), vehicles age, tenures grow, the
// lapse check runs, the fleet is refreshed half of the time, and claims
// are drawn. A lapsed household ignores further calls.
func (h *Household) Advance(years int) {
	for i := 0; i < years; i++ {
		if !h.Inforce || h.err != nil {
			return
		}

		for _, c := range slices.Clone(h.Children) {
			c.MoveForwardNYears(1, h)
		}
		if h.Spouse != nil {
			h.Spouse.MoveForwardNYears(1, h)
		}
		h.Head.MoveForwardNYears(1, h)

		for _, v := range h.Vehicles {
			v.MoveForwardNYears(1)
		}

		h.TenureYears++
		for _, d := range h.Drivers() {
			d.TenureYears++
		}

		h.lapseCheck()
		if !h.Inforce {
			slog.Debug("household lapsed", "household", h.ID, "tenure", h.TenureYears, "head_age", h.Head.Age)
			return
		}

		if h.rng.Float() > 0.5 {
			h.UpdateVehicles()
		}

		h.generateClaims()
	}
}

// Married implements people.Hooks: the head's marriage brings in a spouse.
func (h *Household) Married(p *people.Person, yearsRemaining int) {
	if p != h.Head || h.Spouse != nil {
		return
	}
	h.Spouse = people.NewSpouse(h.rng, p, yearsRemaining, h)
	h.register(h.Spouse)
	slog.Debug("head of household married", "household", h.ID, "head_age", p.Age, "spouse_age", h.Spouse.Age)
}

// ReevaluateHousing implements people.Hooks.
func (h *Household) ReevaluateHousing(*people.Person) {
	h.UpdateHouse()
}

// ChildCheck implements people.Hooks.
func (h *Household) ChildCheck(p *people.Person, yearsRemaining int) {
	if p != h.Head {
		return
	}
	h.childCheck(yearsRemaining)
}

// Leave implements people.Hooks: the person leaves the household for good.
func (h *Household) Leave(p *people.Person) {
	h.removeChild(p)
}

func (h *Household) removeChild(p *people.Person) {
	p.Inforce = false
	h.Children = slices.DeleteFunc(h.Children, func(c *people.Person) bool {
		return c == p
	})
}

// CanHaveChild reports whether the hard fertility preconditions hold:
// income comfortably above expenses, a spare bed, a married couple and
// fewer children than wanted.
func (h *Household) CanHaveChild() bool {
	finances := h.MonthlyIncome() > h.MonthlyExpenses()*1.2
	room := h.BedCount() >= h.ChildCount()+1
	possible := h.Head.Married && h.Spouse != nil && h.ChildInterest > h.ChildCount()
	return finances && room && possible
}

func (h *Household) childCheck(yearsRemaining int) {
	if !h.CanHaveChild() {
		return
	}

	sameSex := h.Spouse.Gender == h.Head.Gender
	p := people.FertilityProbability(h.Head.Age, h.ChildCount(), sameSex)
	if p <= 0 || !h.rng.Bernoulli(p) {
		return
	}

	upbringing := h.CombinedRiskScore() + h.rng.Normal(0, 0.5)
	h.addChild(upbringing, yearsRemaining)

	// Twins, when there is still a bed for the second.
	if h.rng.Bernoulli(0.05) && h.BedCount() >= h.ChildCount()+1 {
		h.addChild(upbringing, yearsRemaining)
	}

	h.Head.RiskMitigationScore += 0.1
	h.Spouse.RiskMitigationScore += 0.1
}

func (h *Household) addChild(upbringing float64, yearsRemaining int) {
	c := people.NewChild(h.rng, upbringing, yearsRemaining, h)
	h.register(c)
	if !c.Inforce {
		// Grew up and moved out during catch-up aging.
		return
	}
	h.Children = append(h.Children, c)
	slog.Debug("child born", "household", h.ID, "children", len(h.Children), "child_age", c.Age)
}

func (h *Household) lapseCheck() {
	age := h.Head.Age
	if age >= 99 {
		h.Inforce = false
		return
	}

	// Low credit households shop around more.
	var p float64
	switch score := h.CreditScore(); {
	case score <= 500:
		p = 0.10
	case score <= 600:
		p = 0.05
	case score <= 700:
		p = 0.025
	default:
		p = 0.01
	}

	if age > 75 {
		m := float64(age-75) / 95
		p += m * m
	}

	if h.rng.Bernoulli(p) {
		h.Inforce = false
	}
}
