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

package horizinterp

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// triangle is one Delaunay triangle, indexing into the scatter point
// slice the triangulation was built from.
type triangle struct {
	a, b, c int
}

// triangulation is a Delaunay triangulation of a scatter point set,
// indexed by an rtree over each triangle's bounding box so point
// location does not have to scan every triangle.
type triangulation struct {
	points    []geom.Point
	triangles []triangle
	index     *rtree.Rtree
}

// triBox wraps a triangle index for rtree storage.
type triBox struct {
	bounds *geom.Bounds
	tri    int
}

func (t *triBox) Bounds() *geom.Bounds { return t.bounds }

// newTriangulation runs an incremental Bowyer-Watson triangulation
// over pts. It returns (nil, false) when triangulation is not possible
// (fewer than 3 points, or all points collinear), matching the
// "triangulation fails -> mask the level" contract.
func newTriangulation(pts []geom.Point) (*triangulation, bool) {
	if len(pts) < 3 {
		return nil, false
	}

	// Super-triangle comfortably containing every scatter point.
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	dx, dy := maxX-minX, maxY-minY
	deltaMax := math.Max(dx, dy) * 10
	if deltaMax == 0 {
		deltaMax = 10
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	working := append([]geom.Point{}, pts...)
	superA := len(working)
	working = append(working, geom.Point{X: midX - 2*deltaMax, Y: midY - deltaMax})
	superB := len(working)
	working = append(working, geom.Point{X: midX, Y: midY + 2*deltaMax})
	superC := len(working)
	working = append(working, geom.Point{X: midX + 2*deltaMax, Y: midY - deltaMax})

	tris := []triangle{{superA, superB, superC}}

	for i := range pts {
		tris = addPoint(working, tris, i)
	}

	// Drop any triangle touching a super-triangle vertex.
	var final []triangle
	for _, tr := range tris {
		if tr.a >= len(pts) || tr.b >= len(pts) || tr.c >= len(pts) {
			continue
		}
		final = append(final, tr)
	}
	if len(final) == 0 {
		return nil, false // collinear input: no real triangle survives
	}

	idx := rtree.NewTree(4, 16)
	for i, tr := range final {
		b := triBounds(pts, tr)
		idx.Insert(&triBox{bounds: b, tri: i})
	}

	return &triangulation{points: pts, triangles: final, index: idx}, true
}

func triBounds(pts []geom.Point, tr triangle) *geom.Bounds {
	a, b, c := pts[tr.a], pts[tr.b], pts[tr.c]
	minX := math.Min(a.X, math.Min(b.X, c.X))
	maxX := math.Max(a.X, math.Max(b.X, c.X))
	minY := math.Min(a.Y, math.Min(b.Y, c.Y))
	maxY := math.Max(a.Y, math.Max(b.Y, c.Y))
	return &geom.Bounds{Min: geom.Point{X: minX, Y: minY}, Max: geom.Point{X: maxX, Y: maxY}}
}

// addPoint inserts working[pointIdx] into the triangulation via the
// standard Bowyer-Watson bad-triangle-cavity retriangulation.
func addPoint(working []geom.Point, tris []triangle, pointIdx int) []triangle {
	p := working[pointIdx]
	var bad []triangle
	var good []triangle
	for _, tr := range tris {
		if inCircumcircle(working, tr, p) {
			bad = append(bad, tr)
		} else {
			good = append(good, tr)
		}
	}

	type edge struct{ u, v int }
	edgeCount := map[edge]int{}
	addEdge := func(u, v int) {
		if u > v {
			u, v = v, u
		}
		edgeCount[edge{u, v}]++
	}
	for _, tr := range bad {
		addEdge(tr.a, tr.b)
		addEdge(tr.b, tr.c)
		addEdge(tr.c, tr.a)
	}

	for e, count := range edgeCount {
		if count == 1 {
			good = append(good, triangle{e.u, e.v, pointIdx})
		}
	}
	return good
}

// inCircumcircle reports whether p lies inside the circumcircle of tr.
func inCircumcircle(pts []geom.Point, tr triangle, p geom.Point) bool {
	a, b, c := pts[tr.a], pts[tr.b], pts[tr.c]
	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	// Orientation of a,b,c determines the sign convention for "inside".
	orient := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	if orient > 0 {
		return det > 0
	}
	return det < 0
}

// locate finds the triangle containing q, returning its barycentric
// weights. ok is false if q lies outside every triangle (i.e. outside
// the convex hull of the scatter points).
func (t *triangulation) locate(q geom.Point) (w [3]float64, idx [3]int, ok bool) {
	qb := &geom.Bounds{Min: q, Max: q}
	candidates := t.index.SearchIntersect(qb)
	for _, c := range candidates {
		tb, isTri := c.(*triBox)
		if !isTri {
			continue
		}
		tr := t.triangles[tb.tri]
		if bw, in := barycentric(t.points[tr.a], t.points[tr.b], t.points[tr.c], q); in {
			return bw, [3]int{tr.a, tr.b, tr.c}, true
		}
	}
	return w, idx, false
}

// barycentric returns q's barycentric weights w.r.t. triangle (a,b,c),
// and whether q lies within the (closed) triangle.
func barycentric(a, b, c, q geom.Point) ([3]float64, bool) {
	v0x, v0y := b.X-a.X, b.Y-a.Y
	v1x, v1y := c.X-a.X, c.Y-a.Y
	v2x, v2y := q.X-a.X, q.Y-a.Y

	den := v0x*v1y - v1x*v0y
	if den == 0 {
		return [3]float64{}, false
	}
	v := (v2x*v1y - v1x*v2y) / den
	w := (v0x*v2y - v2x*v0y) / den
	u := 1 - v - w

	const eps = -1e-9
	if u < eps || v < eps || w < eps {
		return [3]float64{}, false
	}
	return [3]float64{u, v, w}, true
}
