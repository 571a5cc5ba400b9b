package shear

import (
	"math"
	"testing"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
)

// buildColumn places vals at the first len(vals) standard levels and
// masks the rest, mirroring the spec's literal S6 worked example
// (level grid {100,200,300,400}, U=(x/100)^2).
func buildColumn(vals []float64) []float64 {
	col := make([]float64, gridgeom.NumLevels)
	for i := range col {
		col[i] = Sentinel
	}
	copy(col, vals)
	return col
}

func TestQuadraticShearWorkedExample(t *testing.T) {
	// gridgeom.Levels[0:4] == [100,200,300,400]
	vals := []float64{1, 4, 9, 16} // (level/100)^2
	col := buildColumn(vals)
	out := Column(col, false)

	got := out[1] // level 200
	want := 4.0   // model(250) - model(150) = 2.5^2 - 1.5^2
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("shear at level 200 = %v, want %v", got, want)
	}
}

func TestFewerThanThreeSamplesFullyMasked(t *testing.T) {
	col := buildColumn([]float64{1, 4})
	out := Column(col, false)
	for i, v := range out {
		if v != Sentinel {
			t.Fatalf("level %d = %v, want fully masked with <3 samples", i, v)
		}
	}
}

func TestAngularWrapCorrection(t *testing.T) {
	vals := []float64{350, 355, 5, 15} // crosses the 0/360 seam
	col := buildColumn(vals)
	out := Column(col, true)
	for i, v := range out {
		if v == Sentinel {
			continue
		}
		if v > 180 || v < -180 {
			t.Errorf("level %d shear = %v, out of [-180,180]", i, v)
		}
	}
}

func TestMaskedRawSampleStillGetsShearFromFit(t *testing.T) {
	// [1, missing, 9, 16] at levels [100,200,300,400] lies exactly on
	// x^2/10000; the surviving three samples recover that quadratic
	// exactly, so level 200's shear is computable even though its own
	// raw sample was masked. Masking comes only from the fit's own
	// out-of-bounds NaN fill, never from the raw sample at that index.
	col := buildColumn([]float64{1, Sentinel, 9, 16})
	out := Column(col, false)
	want := 4.0 // model(250) - model(150) = 2.5^2 - 1.5^2
	if math.Abs(out[1]-want) > 1e-6 {
		t.Errorf("shear at level 200 = %v, want %v (computed from the fit, not gated on the raw sample)", out[1], want)
	}
}
