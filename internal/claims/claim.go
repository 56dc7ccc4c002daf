// Package claims turns yearly mileage exposure into insurance claims. It
// holds the hazard table that converts mileage and driver risk into claim
// rates, and the per-type logic that decides which sub-coverages a realized
// claim pays under.
package claims

import (
	"errors"
	"fmt"

	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/fleet"
)

// ErrUnknownType is returned for a claim type outside the catalog.
var ErrUnknownType = errors.New("unknown claim type")

// Type is the category of loss.
type Type string

const (
	SingleCarCollision Type = "single_car_collision"
	MultiCarCollision  Type = "multi_car_collision"
	Theft              Type = "theft"
	Hail               Type = "hail"
	Glass              Type = "glass"
	UBI                Type = "ubi"
	ERS                Type = "ers"
)

var typeOrder = [...]Type{SingleCarCollision, MultiCarCollision, Theft, Hail, Glass, UBI, ERS}

// Types lists claim types in hazard-table order.
var Types = typeOrder[:]

// HasDriver reports whether claims of this type are attributed to a driver.
// Parked-car losses are not.
func (t Type) HasDriver() bool {
	return t != Theft && t != Hail
}

// Context is what a claim needs to know about the vehicle, driver and
// household at the moment it occurs.
type Context struct {
	VehicleID    string
	DriverID     string // Empty for parked-car losses.
	Coverage     fleet.Coverage
	Protection   int
	HurtOthers   int
	Garaged      bool
	AnnualIncome float64
	WhenOccurred int // Household tenure year.
}

// Claim is an immutable record of one loss.
type Claim struct {
	ID           string         `json:"claim_id"`
	Type         Type           `json:"claim_type"`
	Subtype      string         `json:"claim_subtype"`
	VehicleID    string         `json:"vehicle_id"`
	DriverID     string         `json:"driver_id,omitempty"`
	WhenOccurred int            `json:"when_occurred"`
	Coverage     fleet.Coverage `json:"coverage"`

	BI   bool `json:"bi"`
	PD   bool `json:"pd"`
	Coll bool `json:"coll"`
	Comp bool `json:"comp"`
	MPC  bool `json:"mpc"`
	ERS  bool `json:"ers"`
	UBI  bool `json:"ubi"`
}

type subtype struct {
	name   string
	weight float64
}

var subtypes = map[Type][]subtype{
	SingleCarCollision: {{"fixed_object", 0.6}, {"rollover", 0.15}, {"animal", 0.25}},
	MultiCarCollision:  {{"rear_end", 0.45}, {"intersection", 0.35}, {"sideswipe", 0.2}},
	Theft:              {{"whole_vehicle", 0.3}, {"break_in", 0.7}},
	Hail:               {{"hail", 1}},
	Glass:              {{"chip", 0.7}, {"replacement", 0.3}},
	UBI:                {{"telematics", 1}},
	ERS:                {{"tow", 0.4}, {"battery", 0.3}, {"lockout", 0.15}, {"flat_tire", 0.15}},
}

// High earners pay small collision repairs out of pocket.
const selfPayIncome = 150_000

// New draws a crash subtype for a claim of type t and decides which
// sub-coverages it pays under. No indicator is set for a coverage that is
// not in force in ctx.Coverage.
func New(s *entropy.Stream, t Type, ctx Context) (*Claim, error) {
	subs, ok := subtypes[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	weights := make([]float64, len(subs))
	for i, st := range subs {
		weights[i] = st.weight
	}

	c := &Claim{
		ID:           s.ID(),
		Type:         t,
		Subtype:      subs[s.Weighted(weights)].name,
		VehicleID:    ctx.VehicleID,
		WhenOccurred: ctx.WhenOccurred,
		Coverage:     ctx.Coverage,
	}
	if t.HasDriver() {
		c.DriverID = ctx.DriverID
	}

	injury := injuryChance(ctx.Protection)
	incomeFactor := 1.0
	if ctx.AnnualIncome > selfPayIncome {
		incomeFactor = 0.85
	}

	switch t {
	case SingleCarCollision:
		switch c.Subtype {
		case "animal":
			c.Comp = true
		case "rollover":
			c.Coll = true
			c.MPC = s.Bernoulli(2 * injury)
		default:
			c.Coll = true
			c.PD = s.Bernoulli(0.3)
			c.MPC = s.Bernoulli(injury)
		}
	case MultiCarCollision:
		severity := map[string]float64{"rear_end": 1, "intersection": 1.5, "sideswipe": 0.5}[c.Subtype]
		c.PD = true
		c.BI = s.Bernoulli((0.1 + 0.05*float64(ctx.HurtOthers)) * severity)
		c.Coll = s.Bernoulli(0.85 * incomeFactor)
		c.MPC = s.Bernoulli(injury * severity)
	case Theft:
		if ctx.Garaged && c.Subtype == "break_in" {
			c.Comp = s.Bernoulli(0.6)
		} else {
			c.Comp = true
		}
	case Hail:
		if ctx.Garaged {
			c.Comp = s.Bernoulli(0.3)
		} else {
			c.Comp = true
		}
	case Glass:
		c.Comp = true
	case UBI:
		c.Coll = true
		c.UBI = true
	case ERS:
		c.ERS = true
	}

	c.gate()
	return c, nil
}

// injuryChance is the chance occupants need medical payments, falling
// with the vehicle's protection class.
func injuryChance(protection int) float64 {
	return max(0.15+0.1*float64(3-protection), 0.05)
}

func (c *Claim) gate() {
	c.BI = c.BI && c.Coverage.BI
	c.PD = c.PD && c.Coverage.PD
	c.Coll = c.Coll && c.Coverage.Coll
	c.Comp = c.Comp && c.Coverage.Comp
	c.MPC = c.MPC && c.Coverage.MPC
	c.ERS = c.ERS && c.Coverage.ERS
	c.UBI = c.UBI && c.Coverage.UBI
}

// HowOld is the claim age at household tenure year tenure.
func (c *Claim) HowOld(tenure int) int {
	return tenure - c.WhenOccurred
}

// Paid reports whether any sub-coverage pays on the claim.
func (c *Claim) Paid() bool {
	return c.BI || c.PD || c.Coll || c.Comp || c.MPC || c.ERS || c.UBI
}

// Indicator reports the sub-coverage indicator named by key (bi, pd, coll,
// comp, mpc, ers, ubi). "all" reports Paid.
func (c *Claim) Indicator(key string) bool {
	switch key {
	case "all":
		return c.Paid()
	case "bi":
		return c.BI
	case "pd":
		return c.PD
	case "coll":
		return c.Coll
	case "comp":
		return c.Comp
	case "mpc":
		return c.MPC
	case "ers":
		return c.ERS
	case "ubi":
		return c.UBI
	}
	return false
}

// Summary is the per-claim feature row as of household tenure year tenure.
func (c *Claim) Summary(tenure int) map[string]any {
	var driver any
	if c.DriverID != "" {
		driver = c.DriverID
	}
	return map[string]any{
		"claim_id":     c.ID,
		"claim_type":   string(c.Type),
		"vehicle_id":   c.VehicleID,
		"driver_id":    driver,
		"driver_claim": c.DriverID != "",
		"bi_ind":       btoi(c.BI),
		"pd_ind":       btoi(c.PD),
		"coll_ind":     btoi(c.Coll),
		"comp_ind":     btoi(c.Comp),
		"mpc_ind":      btoi(c.MPC),
		"ers_ind":      btoi(c.ERS),
		"ubi_ind":      btoi(c.UBI),
		"claim_age":    c.HowOld(tenure),
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
