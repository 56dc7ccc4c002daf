// Package housing models the dwellings a household can hold. A property
// gates bed capacity for children, garage capacity for parked vehicles,
// contributes a monthly expense and fixes the city/highway driving mix.
package housing

import (
	"errors"
	"fmt"

	"github.com/talgya/household-sim/internal/entropy"
)

// ErrUnknownClass is returned for a property class outside the catalog.
var ErrUnknownClass = errors.New("unknown property class")

// Class is the kind of dwelling.
type Class int

const (
	Apartment     Class = 1
	ModestHouse   Class = 2
	CompleteHouse Class = 3
)

func (c Class) String() string {
	switch c {
	case Apartment:
		return "apartment"
	case ModestHouse:
		return "modest_house"
	case CompleteHouse:
		return "complete_house"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// Ownership distinguishes rented from owned dwellings.
type Ownership string

const (
	Rental Ownership = "rental"
	Owned  Ownership = "owned"
)

// Location is where the dwelling sits; it drives the road mix.
type Location string

const (
	Downtown Location = "downtown"
	Suburb   Location = "suburb"
	Country  Location = "country"
)

var locations = []Location{Downtown, Suburb, Country}

type classSpec struct {
	ownership   Ownership
	garages     int
	beds        int
	monthlyCost float64
	// Location weights in downtown, suburb, country order.
	locationWeights []float64
}

var classes = map[Class]classSpec{
	Apartment:     {Rental, 0, 3, 1000, []float64{0.8, 0.15, 0.05}},
	ModestHouse:   {Owned, 3, 4, 2000, []float64{0.4, 0.4, 0.2}},
	CompleteHouse: {Owned, 5, 7, 4000, []float64{0.2, 0.7, 0.3}},
}

// DrivingRatios returns the city and highway mileage multipliers for a
// location.
func DrivingRatios(l Location) (city, highway float64) {
	switch l {
	case Downtown:
		return 1.4, 0.35
	case Suburb:
		return 0.8, 1.25
	case Country:
		return 0.5, 1.8
	}
	return 1, 1
}

// Property is a dwelling held by a household.
type Property struct {
	ID          string    `json:"property_id"`
	Class       Class     `json:"property_class"`
	Ownership   Ownership `json:"ownership_type"`
	Garages     int       `json:"garages"`
	Beds        int       `json:"beds"`
	MonthlyCost float64   `json:"monthly_cost"`
	Location    Location  `json:"location"`
	Primary     bool      `json:"is_primary"`
	Driviness   float64   `json:"driviness"`

	CityDrivingRatio    float64 `json:"city_driving_ratio"`
	HighwayDrivingRatio float64 `json:"highway_driving_ratio"`
}

// New builds a primary property of class c with a drawn location.
func New(s *entropy.Stream, c Class) (*Property, error) {
	spec, ok := classes[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClass, int(c))
	}

	p := &Property{
		ID:          s.ID(),
		Class:       c,
		Ownership:   spec.ownership,
		Garages:     spec.garages,
		Beds:        spec.beds,
		MonthlyCost: spec.monthlyCost,
		Primary:     true,
		Driviness:   s.Normal(1, 0.1),
	}
	p.Location = locations[s.Weighted(spec.locationWeights)]
	p.CityDrivingRatio, p.HighwayDrivingRatio = DrivingRatios(p.Location)
	return p, nil
}
