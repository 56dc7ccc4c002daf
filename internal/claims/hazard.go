package claims

import (
	"math"

	"github.com/talgya/household-sim/internal/housing"
)

// Road is the kind of road a mileage bucket was driven on.
type Road string

const (
	City    Road = "city"
	Highway Road = "highway"
	Total   Road = "total" // City and highway combined.
)

// Roads lists the buckets claims are drawn on. The total bucket is drawn
// on top of city and highway.
var Roads = []Road{City, Highway, Total}

// Bucket is mileage one driver put on one vehicle on one road type in a
// year, with the context the hazard table needs.
type Bucket struct {
	Mileage       float64
	Road          Road
	DrivingHazard float64
	VehicleAge    int
	Location      housing.Location
}

func roadFactor(r Road, highway float64) float64 {
	if r == Highway {
		return highway
	}
	return 1
}

// Hazards returns the yearly claim rate of every claim type for b, indexed
// like Types.
func Hazards(b Bucket) [len(typeOrder)]float64 {
	exposure := math.Sqrt(max(b.Mileage, 0) / 10_000)
	h := b.DrivingHazard
	age := float64(b.VehicleAge)
	downtown := b.Location == housing.Downtown

	theftLocation, hailLocation := 1.0, 1.0
	if downtown {
		theftLocation, hailLocation = 1.5, 0.6
	}

	ersAge := 1 + 0.005*age + 0.1*max(age-7, 0) + 0.1*max(age-12, 0) -
		0.1*max(age-17, 0) - 0.05*max(age-21, 0)

	return [len(typeOrder)]float64{
		0.03 * exposure * roadFactor(b.Road, 0.5) * math.Pow(h, 0.9) * min(1, 1+0.01*(age-5)),
		0.03 * exposure * roadFactor(b.Road, 0.25) * h * min(1, 1+0.0125*(age-5)),
		0.01 * exposure * roadFactor(b.Road, 0.05) * math.Pow(h, 0.1) * theftLocation,
		0.01 * exposure * roadFactor(b.Road, 1.3) * math.Pow(h, 0.1) * hailLocation,
		0.03 * exposure * roadFactor(b.Road, 2.1) * math.Pow(h, 0.1),
		0.03 * exposure * roadFactor(b.Road, 0.3) * math.Pow(h, 0.4),
		0.03 * exposure * roadFactor(b.Road, 1.5) * math.Pow(h, 0.3) * min(1, ersAge),
	}
}
