// Package fleet models the vehicles a household insures: the type catalog,
// depreciation, ownership costs and the coverage flags carried on each car.
package fleet

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/household-sim/internal/entropy"
)

// ErrUnknownType is returned when a vehicle type is not in the catalog.
var ErrUnknownType = errors.New("unknown vehicle type")

// DepreciationRate is the fraction of value a vehicle keeps each year.
const DepreciationRate = 0.95

// Type is a vehicle body style.
type Type string

const (
	Pickup    Type = "pickup"
	SUV       Type = "suv"
	Sedan     Type = "sedan"
	SportsCar Type = "sports_car"
	Van       Type = "van"
)

// Types lists every catalog type in a fixed order.
var Types = []Type{Pickup, SUV, Sedan, SportsCar, Van}

// Spec holds the fixed attributes of a vehicle type.
type Spec struct {
	Seats          int
	MSRP           float64
	MaleInterest   float64
	FemaleInterest float64
	ChildInterest  float64
	ParentInterest float64
	Protection     int // Occupant protection class, higher is safer.
	HurtOthers     int // Damage class inflicted on third parties.
}

var catalog = map[Type]Spec{
	Pickup:    {Seats: 3, MSRP: 60_000, MaleInterest: 0.75, FemaleInterest: 0.1, ChildInterest: 0.2, ParentInterest: 0.1, Protection: 2, HurtOthers: 3},
	SUV:       {Seats: 6, MSRP: 60_000, MaleInterest: 0.6, FemaleInterest: 0.3, ChildInterest: 0.3, ParentInterest: 0.6, Protection: 3, HurtOthers: 3},
	Sedan:     {Seats: 4, MSRP: 20_000, MaleInterest: 0.2, FemaleInterest: 0.4, ChildInterest: 0.2, ParentInterest: 0.3, Protection: 1, HurtOthers: 1},
	SportsCar: {Seats: 2, MSRP: 25_000, MaleInterest: 0.6, FemaleInterest: 0.1, ChildInterest: 0.6, ParentInterest: 0.1, Protection: 1, HurtOthers: 2},
	Van:       {Seats: 6, MSRP: 30_000, MaleInterest: 0.1, FemaleInterest: 0.7, ChildInterest: 0.1, ParentInterest: 0.9, Protection: 2, HurtOthers: 2},
}

// Lookup returns the catalog entry for t.
func Lookup(t Type) (Spec, error) {
	spec, ok := catalog[t]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return spec, nil
}

// Coverage records which coverages are in force on a vehicle.
type Coverage struct {
	BI   bool `json:"bi"`
	PD   bool `json:"pd"`
	Coll bool `json:"coll"`
	Comp bool `json:"comp"`
	MPC  bool `json:"mpc"`
	ERS  bool `json:"ers"`
	UBI  bool `json:"ubi"`
}

// Any reports whether at least one coverage is in force.
func (c Coverage) Any() bool {
	return c.BI || c.PD || c.Coll || c.Comp || c.MPC || c.ERS || c.UBI
}

// Vehicle is a purchased car owned by a household.
type Vehicle struct {
	ID            string   `json:"vehicle_id"`
	Type          Type     `json:"vehicle_type"`
	Age           int      `json:"vehicle_age"`
	YearsOwned    int      `json:"vehicle_years_owned"`
	PurchasePrice float64  `json:"purchase_price"`
	Value         float64  `json:"value"`
	Coverage      Coverage `json:"coverage"`

	Spec `json:"-"`
}

// New builds a vehicle of the given type that is age years old at purchase.
func New(s *entropy.Stream, age int, t Type) (*Vehicle, error) {
	spec, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	if age < 0 {
		age = 0
	}

	price := spec.MSRP * math.Pow(DepreciationRate, float64(age))
	return &Vehicle{
		ID:            s.ID(),
		Type:          t,
		Age:           age,
		PurchasePrice: price,
		Value:         price,
		Spec:          spec,
	}, nil
}

// MoveForwardNYears ages the vehicle, depreciating its value each year.
func (v *Vehicle) MoveForwardNYears(n int) {
	for i := 0; i < n; i++ {
		v.Age++
		v.YearsOwned++
		v.Value *= DepreciationRate
	}
}

// LoanCost is the monthly payment on a five-year loan with some interest.
func (v *Vehicle) LoanCost() float64 {
	if v.YearsOwned <= 5 {
		return 1.2 * v.PurchasePrice / (5 * 12)
	}
	return 0
}

// MaintenanceCost is the monthly upkeep, rising with age.
func (v *Vehicle) MaintenanceCost() float64 {
	switch {
	case v.Age < 10:
		return 50
	case v.Age < 15:
		return 100
	case v.Age < 20:
		return 150
	default:
		return 200
	}
}

// MonthlyCost is the total monthly cost of keeping the vehicle.
func (v *Vehicle) MonthlyCost() float64 {
	return v.LoanCost() + v.MaintenanceCost()
}
