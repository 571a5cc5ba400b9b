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

// Package horizinterp interpolates a slot's vertically-resampled
// station records onto the fixed lon×lat grid at every level,
// producing masked U, V, HWS, HWD, VWS cubes.
package horizinterp

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ctessum/geom"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/vertinterp"
)

// Method selects the scatter-to-grid interpolation algorithm. Cubic
// grids with the same barycentric-linear scheme as Linear; the only
// difference is the negative-HWS clamp in interpolateLevel.
type Method string

const (
	Linear  Method = "linear"
	Cubic   Method = "cubic"
	Nearest Method = "nearest"
)

// Cubes holds the five gridded wind variables for one slot, shape
// (level, lat, lon) each, row-major lat-major-then-lon.
type Cubes struct {
	U, V, HWS, HWD, VWS []float64 // len = NumLevels*NumLats*NumLons
}

func newCube() []float64 {
	c := make([]float64, gridgeom.NumLevels*gridgeom.NumLats*gridgeom.NumLons)
	for i := range c {
		c[i] = gridgeom.Missing
	}
	return c
}

func cellIndex(level, lat, lon int) int {
	return level*gridgeom.NumLats*gridgeom.NumLons + lat*gridgeom.NumLons + lon
}

// Interpolate grids stations (sorted here by StationID, on a copy, for
// determinism) onto the fixed grid for every level,
// fanning out one goroutine per level, grounded on the teacher's
// per-derived-variable goroutine/errChan idiom.
func Interpolate(stations []*vertinterp.Station, method Method) (*Cubes, error) {
	sorted := append([]*vertinterp.Station{}, stations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StationID < sorted[j].StationID })

	cubes := &Cubes{U: newCube(), V: newCube(), HWS: newCube(), HWD: newCube(), VWS: newCube()}

	var wg sync.WaitGroup
	errCh := make(chan error, gridgeom.NumLevels)
	for level := 0; level < gridgeom.NumLevels; level++ {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			if err := interpolateLevel(sorted, method, level, cubes); err != nil {
				errCh <- fmt.Errorf("horizinterp: level %d: %w", level, err)
			}
		}(level)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		return nil, err
	}
	return cubes, nil
}

func interpolateLevel(stations []*vertinterp.Station, method Method, level int, out *Cubes) error {
	// u,v scatter samples (meteorological-to-Cartesian wind components)
	var pts []geom.Point
	var uVal, vVal, vwsVal []float64
	for _, s := range stations {
		hws, hwd, vws := s.HWS[level], s.HWD[level], s.VWS[level]
		if gridgeom.IsMissing(hws) || gridgeom.IsMissing(hwd) {
			continue
		}
		u := hws * math.Sin(hwd*math.Pi/180)
		v := hws * math.Cos(hwd*math.Pi/180)
		pts = append(pts, geom.Point{X: s.Lon, Y: s.Lat})
		uVal = append(uVal, u)
		vVal = append(vVal, v)
		if gridgeom.IsMissing(vws) {
			vwsVal = append(vwsVal, gridgeom.Missing)
		} else {
			vwsVal = append(vwsVal, vws)
		}
	}

	uGrid, uOK := gridScalar(pts, uVal, method)
	vGrid, vOK := gridScalar(pts, vVal, method)
	vwsGrid, vwsOK := gridScalar(pts, vwsVal, method)

	for la := 0; la < gridgeom.NumLats; la++ {
		for lo := 0; lo < gridgeom.NumLons; lo++ {
			idx := cellIndex(level, la, lo)
			cell := la*gridgeom.NumLons + lo
			if !uOK[cell] || !vOK[cell] {
				continue
			}
			u, v := uGrid[cell], vGrid[cell]
			hws := math.Sqrt(u*u + v*v)
			var hwd float64
			if hws == 0 {
				hwd = 0
			} else {
				ratio := u / hws
				ratio = math.Max(-1, math.Min(1, ratio))
				hwd = math.Asin(ratio) * 180 / math.Pi
			}
			// Store "blows-to" convention: negate both components.
			outU, outV := -u, -v
			if method == Cubic && hws < 0 {
				hws = 0
			}
			out.U[idx] = outU
			out.V[idx] = outV
			out.HWS[idx] = hws
			out.HWD[idx] = hwd
			if vwsOK[cell] {
				out.VWS[idx] = vwsGrid[cell]
			}
		}
	}
	return nil
}

// gridScalar interpolates one scalar field's scatter samples onto the
// fixed lat/lon mesh. ok[i] is false where the cell is masked (outside
// the convex hull, no samples, or a masked input sample at that
// station).
func gridScalar(pts []geom.Point, vals []float64, method Method) (grid []float64, ok []bool) {
	n := gridgeom.NumLats * gridgeom.NumLons
	grid = make([]float64, n)
	ok = make([]bool, n)

	// Drop scatter samples whose value itself is masked.
	var cleanPts []geom.Point
	var cleanVals []float64
	for i, v := range vals {
		if gridgeom.IsMissing(v) {
			continue
		}
		cleanPts = append(cleanPts, pts[i])
		cleanVals = append(cleanVals, v)
	}
	if len(cleanPts) == 0 {
		return grid, ok
	}

	if method == Nearest {
		for la := 0; la < gridgeom.NumLats; la++ {
			for lo := 0; lo < gridgeom.NumLons; lo++ {
				q := geom.Point{X: gridgeom.Lons[lo], Y: gridgeom.Lats[la]}
				best := nearestIndex(cleanPts, q)
				cell := la*gridgeom.NumLons + lo
				grid[cell] = cleanVals[best]
				ok[cell] = true
			}
		}
		return grid, ok
	}

	tri, built := newTriangulation(cleanPts)
	if !built {
		return grid, ok // triangulation failed: whole level stays masked
	}
	for la := 0; la < gridgeom.NumLats; la++ {
		for lo := 0; lo < gridgeom.NumLons; lo++ {
			q := geom.Point{X: gridgeom.Lons[lo], Y: gridgeom.Lats[la]}
			w, idx, in := tri.locate(q)
			cell := la*gridgeom.NumLons + lo
			if !in {
				continue
			}
			val := w[0]*cleanVals[idx[0]] + w[1]*cleanVals[idx[1]] + w[2]*cleanVals[idx[2]]
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			grid[cell] = val
			ok[cell] = true
		}
	}
	return grid, ok
}

func nearestIndex(pts []geom.Point, q geom.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i, p := range pts {
		dx, dy := p.X-q.X, p.Y-q.Y
		d := dx*dx + dy*dy
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
