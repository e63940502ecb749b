package geometry

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/landdesk/api/internal/models"
)

// ErrInvalidGeometry indicates a ring that cannot describe a parcel boundary:
// fewer than three distinct points, or all points collinear/identical.
// Callers treat it as "no computed metrics available", not as a crash.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Minimum area, in square meters, below which a ring is considered
// degenerate. Rounding would report such a ring as zero anyway.
const degenerateAreaSqm = 0.5

// Metrics holds geometry-derived parcel figures.
type Metrics struct {
	AreaSqm    float64
	PerimeterM float64
}

// Evaluate computes the geodesic area and perimeter of a boundary ring.
// The ring is implicitly closed if its first and last points differ.
// Area is rounded to the nearest square meter and perimeter to the nearest
// meter, matching how the figures are shown and summed downstream.
func Evaluate(ring models.Ring) (Metrics, error) {
	vertices := openRing(ring)
	if countDistinct(vertices) < 3 {
		return Metrics{}, ErrInvalidGeometry
	}

	// Build a closed orb ring from the vertices.
	r := make(orb.Ring, 0, len(vertices)+1)
	for _, p := range vertices {
		r = append(r, orb.Point{p[0], p[1]})
	}
	r = append(r, r[0])

	// geo.Area signs the result by winding order; the magnitude is what a
	// parcel's surface means.
	area := math.Abs(geo.Area(orb.Polygon{r}))
	if area < degenerateAreaSqm {
		return Metrics{}, ErrInvalidGeometry
	}

	var perimeter float64
	for i := 1; i < len(r); i++ {
		perimeter += geo.Distance(r[i-1], r[i])
	}

	return Metrics{
		AreaSqm:    math.Round(area),
		PerimeterM: math.Round(perimeter),
	}, nil
}

// openRing drops the explicit closing point, if present.
func openRing(ring models.Ring) [][2]float64 {
	if ring.Closed() {
		return ring[:len(ring)-1]
	}
	return ring
}

// countDistinct returns the number of distinct vertices in the ring.
func countDistinct(points [][2]float64) int {
	seen := make(map[[2]float64]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}
