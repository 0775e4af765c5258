package routing

import (
	"math"
	"sort"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Candidate pairs a location with its available quantity for one product.
type Candidate struct {
	Location models.Location
	Quantity int
}

// RankedCandidate is a candidate annotated with its distance to the
// destination. Distance is +Inf when the location has no coordinates.
type RankedCandidate struct {
	Candidate
	Distance float64
}

// Destination is the delivery point an order should be routed toward.
type Destination struct {
	Latitude  float64
	Longitude float64
}

// Rank orders candidates by ascending distance to the destination, breaking
// ties by descending available quantity. Candidates that cannot cover the
// requested quantity are dropped. The sort is stable so equal candidates keep
// their input order.
func Rank(dest Destination, quantity int, candidates []Candidate) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Quantity < quantity {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			Candidate: c,
			Distance:  distanceTo(dest, c.Location),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].Quantity > ranked[j].Quantity
	})

	return ranked
}

// Route returns the best location ID to fulfill the requested quantity, or
// false when no location can cover it.
func Route(dest Destination, quantity int, candidates []Candidate) (uuid.UUID, bool) {
	ranked := Rank(dest, quantity, candidates)
	if len(ranked) == 0 {
		return uuid.Nil, false
	}
	return ranked[0].Location.ID, true
}

// distanceTo computes the planar distance between the destination and the
// location's coordinates. Locations without coordinates sort last.
func distanceTo(dest Destination, loc models.Location) float64 {
	if !loc.HasCoordinates() {
		return math.Inf(1)
	}
	dLat := *loc.Latitude - dest.Latitude
	dLng := *loc.Longitude - dest.Longitude
	return math.Sqrt(dLat*dLat + dLng*dLng)
}
