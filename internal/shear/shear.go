/*
Copyright © 2026 the wprgrid authors.
This file is part of wprgrid.

wprgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

wprgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with wprgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package shear computes finite-difference vertical shears of a cube's
// wind variables via a per-column quadratic fit.
package shear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
)

// Sentinel is the masked-value marker used on both the input column
// and the output shear, per §4.8.5.
const Sentinel = -9999.0

// Delta is the finite-difference step, in meters. Its value also
// fixes the stored shear's units label, "per 100 m".
const Delta = 100.0

// Column computes the vertical shear of one (level, value) column,
// already aligned with gridgeom.Levels. angular selects the HWD wrap
// correction. Masked input/output cells use Sentinel.
func Column(values []float64, angular bool) []float64 {
	levels := gridgeom.Levels
	out := make([]float64, len(values))
	for i := range out {
		out[i] = Sentinel
	}

	var x, y []float64
	for i, v := range values {
		if v == Sentinel || gridgeom.IsMissing(v) {
			continue
		}
		x = append(x, levels[i])
		y = append(y, v)
	}
	if len(x) < 3 {
		return out
	}

	model, minX, maxX := fitQuadratic(x, y)

	eval := func(z float64) float64 {
		if z < minX || z > maxX {
			return math.NaN()
		}
		return model(z)
	}

	last := len(levels) - 1
	for i := range values {
		var d float64
		switch {
		case i == 0:
			d = eval(levels[0]+Delta) - eval(levels[0])
		case i == last:
			d = eval(levels[last]) - eval(levels[last]-Delta)
		default:
			d = eval(levels[i]+Delta/2) - eval(levels[i]-Delta/2)
		}
		if math.IsNaN(d) {
			continue
		}
		if angular {
			if d > 180 {
				d -= 360
			} else if d < -180 {
				d += 360
			}
		}
		out[i] = d
	}
	return out
}

// fitQuadratic solves the least-squares quadratic y = a + b*x + c*x^2
// over the samples (x, y), returning an evaluator plus the samples'
// range.
func fitQuadratic(x, y []float64) (model func(float64) float64, minX, maxX float64) {
	n := len(x)
	A := mat.NewDense(n, 3, nil)
	for i, xi := range x {
		A.Set(i, 0, 1)
		A.Set(i, 1, xi)
		A.Set(i, 2, xi*xi)
	}
	b := mat.NewVecDense(n, y)

	var ata mat.Dense
	ata.Mul(A.T(), A)
	var atb mat.VecDense
	atb.MulVec(A.T(), b)

	var coef mat.VecDense
	if err := coef.SolveVec(&ata, &atb); err != nil {
		// Degenerate (e.g. collinear x): fall back to the mean value.
		mean := 0.0
		for _, yi := range y {
			mean += yi
		}
		mean /= float64(n)
		return func(float64) float64 { return mean }, minMax(x)
	}
	a0, a1, a2 := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
	mn, mx := minMax(x)
	return func(z float64) float64 {
		return a0 + a1*z + a2*z*z
	}, mn, mx
}

func minMax(x []float64) (min, max float64) {
	min, max = x[0], x[0]
	for _, v := range x[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
