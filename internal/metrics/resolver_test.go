package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landdesk/api/internal/models"
)

func f(v float64) *float64 {
	return &v
}

func TestResolve_ManualOnly(t *testing.T) {
	res := Resolve(Input{
		ManualAreaSqm:    f(500),
		ManualPerimeterM: f(90),
	})

	require.NotNil(t, res.AreaSqm)
	assert.Equal(t, 500.0, *res.AreaSqm)
	require.NotNil(t, res.PerimeterM)
	assert.Equal(t, 90.0, *res.PerimeterM)
	// No computed figures means no discrepancy to report.
	assert.Nil(t, res.AreaDiffPct)
	assert.Nil(t, res.PerimeterDiffPct)
}

func TestResolve_ComputedOnly(t *testing.T) {
	res := Resolve(Input{
		ComputedAreaSqm:    f(480),
		ComputedPerimeterM: f(88),
	})

	require.NotNil(t, res.AreaSqm)
	assert.Equal(t, 480.0, *res.AreaSqm)
	require.NotNil(t, res.PerimeterM)
	assert.Equal(t, 88.0, *res.PerimeterM)
	assert.Nil(t, res.AreaDiffPct)
	assert.Nil(t, res.PerimeterDiffPct)
}

func TestResolve_ComputedWinsByDefault(t *testing.T) {
	res := Resolve(Input{
		ManualAreaSqm:      f(500),
		ManualPerimeterM:   f(90),
		ComputedAreaSqm:    f(480),
		ComputedPerimeterM: f(88),
	})

	require.NotNil(t, res.AreaSqm)
	assert.Equal(t, 480.0, *res.AreaSqm)
	require.NotNil(t, res.PerimeterM)
	assert.Equal(t, 88.0, *res.PerimeterM)

	// (500-480)/480 * 100 = 4.1666..., rounded to one decimal
	require.NotNil(t, res.AreaDiffPct)
	assert.Equal(t, 4.2, *res.AreaDiffPct)
	// (90-88)/88 * 100 = 2.2727...
	require.NotNil(t, res.PerimeterDiffPct)
	assert.Equal(t, 2.3, *res.PerimeterDiffPct)
}

func TestResolve_ManualFlagWins(t *testing.T) {
	res := Resolve(Input{
		ManualAreaSqm:      f(500),
		ManualPerimeterM:   f(90),
		ComputedAreaSqm:    f(480),
		ComputedPerimeterM: f(88),
		UseManualMetrics:   true,
	})

	require.NotNil(t, res.AreaSqm)
	assert.Equal(t, 500.0, *res.AreaSqm)
	require.NotNil(t, res.PerimeterM)
	assert.Equal(t, 90.0, *res.PerimeterM)

	// The delta is reported regardless of which pair wins.
	require.NotNil(t, res.AreaDiffPct)
	assert.Equal(t, 4.2, *res.AreaDiffPct)
}

func TestResolve_ManualFlagFallsBackWithoutManualArea(t *testing.T) {
	// The flag is set but no manual area exists; the computed pair wins
	// wholesale, never a mixed pair.
	res := Resolve(Input{
		ManualPerimeterM:   f(90),
		ComputedAreaSqm:    f(480),
		ComputedPerimeterM: f(88),
		UseManualMetrics:   true,
	})

	require.NotNil(t, res.AreaSqm)
	assert.Equal(t, 480.0, *res.AreaSqm)
	require.NotNil(t, res.PerimeterM)
	assert.Equal(t, 88.0, *res.PerimeterM)
}

func TestResolve_AllAbsent(t *testing.T) {
	res := Resolve(Input{})

	assert.Nil(t, res.AreaSqm)
	assert.Nil(t, res.PerimeterM)
	assert.Nil(t, res.AreaDiffPct)
	assert.Nil(t, res.PerimeterDiffPct)
}

func TestResolve_NegativeDelta(t *testing.T) {
	res := Resolve(Input{
		ManualAreaSqm:   f(450),
		ComputedAreaSqm: f(480),
	})

	// (450-480)/480 * 100 = -6.25, rounded to -6.2 (round half away handled
	// by math.Round on the scaled value: -62.5 rounds to -63, i.e. -6.3)
	require.NotNil(t, res.AreaDiffPct)
	assert.InDelta(t, -6.3, *res.AreaDiffPct, 0.01)
}

func TestResolve_ZeroComputedYieldsNilDelta(t *testing.T) {
	res := Resolve(Input{
		ManualAreaSqm:   f(500),
		ComputedAreaSqm: f(0),
	})

	assert.Nil(t, res.AreaDiffPct)
}

func TestFromParcel(t *testing.T) {
	parcel := &models.Parcel{
		ManualAreaSqm:      f(500),
		ManualPerimeterM:   f(90),
		ComputedAreaSqm:    f(480),
		ComputedPerimeterM: f(88),
		UseManualMetrics:   true,
	}

	in := FromParcel(parcel)

	assert.Equal(t, parcel.ManualAreaSqm, in.ManualAreaSqm)
	assert.Equal(t, parcel.ManualPerimeterM, in.ManualPerimeterM)
	assert.Equal(t, parcel.ComputedAreaSqm, in.ComputedAreaSqm)
	assert.Equal(t, parcel.ComputedPerimeterM, in.ComputedPerimeterM)
	assert.True(t, in.UseManualMetrics)
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.ParcelCount)
	assert.Equal(t, 0, stats.WithAreaCount)
	assert.Equal(t, 0.0, stats.TotalAreaSqm)
	assert.Nil(t, stats.AverageAreaSqm)
	assert.Empty(t, stats.ByStatus)
}

func TestAggregate_MixedFleet(t *testing.T) {
	parcels := []models.Parcel{
		{
			Status:          models.StatusAvailable,
			ComputedAreaSqm: f(480),
		},
		{
			Status:           models.StatusReserved,
			ManualAreaSqm:    f(500),
			ComputedAreaSqm:  f(480),
			UseManualMetrics: true,
		},
		{
			// Awaiting survey: contributes to counts but not to area.
			Status: models.StatusAvailable,
		},
		{
			Status:        models.StatusSold,
			ManualAreaSqm: f(320),
		},
	}

	stats := Aggregate(parcels)

	assert.Equal(t, 4, stats.ParcelCount)
	assert.Equal(t, 3, stats.WithAreaCount)
	assert.Equal(t, 1300.0, stats.TotalAreaSqm)
	require.NotNil(t, stats.AverageAreaSqm)
	assert.InDelta(t, 433.3, *stats.AverageAreaSqm, 0.01)

	assert.Equal(t, 2, stats.ByStatus[models.StatusAvailable])
	assert.Equal(t, 1, stats.ByStatus[models.StatusReserved])
	assert.Equal(t, 1, stats.ByStatus[models.StatusSold])
}

func TestAggregate_NoAreasYieldsNilAverage(t *testing.T) {
	parcels := []models.Parcel{
		{Status: models.StatusAvailable},
		{Status: models.StatusSold},
	}

	stats := Aggregate(parcels)

	assert.Equal(t, 2, stats.ParcelCount)
	assert.Nil(t, stats.AverageAreaSqm)
	assert.Equal(t, 0.0, stats.TotalAreaSqm)
}
