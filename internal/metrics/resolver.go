// Package metrics decides which area/perimeter figures are authoritative for
// a parcel and reports the manual-vs-computed discrepancy.
package metrics

import (
	"math"

	"github.com/landdesk/api/internal/models"
)

// Input carries the two candidate figure pairs for one parcel.
type Input struct {
	ManualAreaSqm      *float64
	ManualPerimeterM   *float64
	ComputedAreaSqm    *float64
	ComputedPerimeterM *float64
	UseManualMetrics   bool
}

// Resolution is the outcome of resolving one parcel's metrics.
// All fields are nullable: a parcel awaiting survey with no manual entry
// resolves to all-nil, which is a valid state.
type Resolution struct {
	AreaSqm          *float64
	PerimeterM       *float64
	AreaDiffPct      *float64
	PerimeterDiffPct *float64
}

// Resolve picks the authoritative area/perimeter pair and computes the
// signed percentage deltas between manual and computed figures.
//
// When UseManualMetrics is set, the manual pair wins if a manual area is
// present, else the computed pair; otherwise the computed pair wins if a
// computed area is present, else the manual pair. The choice is made per
// pair, keyed on area presence, so a parcel never mixes a manual area with
// a computed perimeter.
func Resolve(in Input) Resolution {
	res := Resolution{
		AreaDiffPct:      diffPct(in.ManualAreaSqm, in.ComputedAreaSqm),
		PerimeterDiffPct: diffPct(in.ManualPerimeterM, in.ComputedPerimeterM),
	}

	if in.UseManualMetrics {
		if in.ManualAreaSqm != nil {
			res.AreaSqm, res.PerimeterM = in.ManualAreaSqm, in.ManualPerimeterM
		} else {
			res.AreaSqm, res.PerimeterM = in.ComputedAreaSqm, in.ComputedPerimeterM
		}
		return res
	}

	if in.ComputedAreaSqm != nil {
		res.AreaSqm, res.PerimeterM = in.ComputedAreaSqm, in.ComputedPerimeterM
	} else {
		res.AreaSqm, res.PerimeterM = in.ManualAreaSqm, in.ManualPerimeterM
	}
	return res
}

// FromParcel builds a resolver input from a parcel's persisted fields.
func FromParcel(p *models.Parcel) Input {
	return Input{
		ManualAreaSqm:      p.ManualAreaSqm,
		ManualPerimeterM:   p.ManualPerimeterM,
		ComputedAreaSqm:    p.ComputedAreaSqm,
		ComputedPerimeterM: p.ComputedPerimeterM,
		UseManualMetrics:   p.UseManualMetrics,
	}
}

// FleetStats aggregates authoritative areas across a set of parcels.
// AverageAreaSqm divides the total by the number of parcels that had a
// non-nil authoritative area; it is nil when no parcel had one.
type FleetStats struct {
	ByStatus       map[models.ParcelStatus]int `json:"byStatus"`
	AverageAreaSqm *float64                    `json:"averageAreaSqm"`
	TotalAreaSqm   float64                     `json:"totalAreaSqm"`
	ParcelCount    int                         `json:"parcelCount"`
	WithAreaCount  int                         `json:"withAreaCount"`
}

// Aggregate sums authoritative areas over a fleet of parcels, using the same
// manual-first-else-computed rule per parcel as Resolve.
func Aggregate(parcels []models.Parcel) FleetStats {
	stats := FleetStats{
		ByStatus: make(map[models.ParcelStatus]int),
	}

	for i := range parcels {
		p := &parcels[i]
		stats.ParcelCount++
		stats.ByStatus[p.Status]++

		res := Resolve(FromParcel(p))
		if res.AreaSqm != nil {
			stats.TotalAreaSqm += *res.AreaSqm
			stats.WithAreaCount++
		}
	}

	if stats.WithAreaCount > 0 {
		avg := round1(stats.TotalAreaSqm / float64(stats.WithAreaCount))
		stats.AverageAreaSqm = &avg
	}

	return stats
}

// diffPct returns (manual − computed) / computed × 100 rounded to one
// decimal, or nil when either side is absent or the computed value is zero.
// A zero divisor yields nil rather than an infinity.
func diffPct(manual, computed *float64) *float64 {
	if manual == nil || computed == nil || *computed == 0 {
		return nil
	}
	pct := round1((*manual - *computed) / *computed * 100)
	return &pct
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
