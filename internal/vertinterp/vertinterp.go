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

// Package vertinterp resamples one station's reported profile columns
// onto the fixed 40-level vertical grid.
package vertinterp

import (
	"gonum.org/v1/gonum/interp"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/station"
)

// Column holds one resampled profile column on the standard grid.
type Column []float64

// Station is the per-station result of resampling every profile
// column onto gridgeom.Levels.
type Station struct {
	StationID string
	Lon, Lat  float64
	HWD       Column
	HWS       Column
	VWS       Column
	HDR       Column
	VDR       Column
	CN2       Column
}

// Resample builds the vertically-resampled Station for rec.
func Resample(rec *station.Record) *Station {
	return &Station{
		StationID: rec.StationID,
		Lon:       rec.Lon,
		Lat:       rec.Lat,
		HWD:       resampleColumn(rec.SH, rec.HWD),
		HWS:       resampleColumn(rec.SH, rec.HWS),
		VWS:       resampleColumn(rec.SH, rec.VWS),
		HDR:       resampleColumn(rec.SH, rec.HDR),
		VDR:       resampleColumn(rec.SH, rec.VDR),
		CN2:       resampleColumn(rec.SH, rec.CN2),
	}
}

// resampleColumn drops missing entries positionally, fits a
// piecewise-linear interpolant on the survivors, and evaluates it at
// every standard level, masking out-of-[min,max] targets.
func resampleColumn(srcH, srcV []float64) Column {
	out := make(Column, gridgeom.NumLevels)
	for i := range out {
		out[i] = gridgeom.Missing
	}

	var h, v []float64
	for i := range srcH {
		if gridgeom.IsMissing(srcH[i]) || gridgeom.IsMissing(srcV[i]) {
			continue
		}
		h = append(h, srcH[i])
		v = append(v, srcV[i])
	}
	if len(h) < 2 {
		return out
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(h, v); err != nil {
		return out
	}
	minH, maxH := h[0], h[len(h)-1]
	for i, target := range gridgeom.Levels {
		if target < minH || target > maxH {
			continue
		}
		out[i] = pl.Predict(target)
	}
	return out
}
