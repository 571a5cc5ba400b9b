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

// Package gridgeom holds the pipeline's one fixed vertical and
// horizontal grid, shared by the vertical interpolator, horizontal
// interpolator, cube writer, and shear engine so there is exactly one
// definition of the output geometry rather than one per stage.
package gridgeom

import "math"

// Missing is the sentinel discriminator for a not-a-real-number
// profile or grid value (distinct from an IEEE NaN so callers can tell
// "absent by construction" from a genuine floating-point NaN produced
// upstream; IsMissing below reports true for both).
const Missing = math.MaxFloat64

// IsMissing reports whether v is the missing sentinel or a NaN.
func IsMissing(v float64) bool {
	return v == Missing || math.IsNaN(v)
}

// Levels is the fixed 40-element vertical grid, in meters.
var Levels = buildLevels()

func buildLevels() []float64 {
	var levels []float64
	for h := 100; h < 2000; h += 100 {
		levels = append(levels, float64(h))
	}
	for h := 2000; h < 5000; h += 250 {
		levels = append(levels, float64(h))
	}
	for h := 5000; h < 9500; h += 500 {
		levels = append(levels, float64(h))
	}
	return levels
}

// Lons is the fixed 80-cell longitude grid, 85..124.5 step 0.5.
var Lons = buildAxis(85.0, 124.5, 0.5)

// Lats is the fixed 62-cell latitude grid, 14..44.5 step 0.5.
var Lats = buildAxis(14.0, 44.5, 0.5)

func buildAxis(min, max, step float64) []float64 {
	var axis []float64
	// Round-trip through an integer count to avoid float accumulation
	// drift across ~80 steps.
	n := int(math.Round((max-min)/step)) + 1
	for i := 0; i < n; i++ {
		axis = append(axis, min+float64(i)*step)
	}
	return axis
}

// NumLevels, NumLats, NumLons are the fixed cube dimensions.
var (
	NumLevels = len(Levels)
	NumLats   = len(Lats)
	NumLons   = len(Lons)
)
