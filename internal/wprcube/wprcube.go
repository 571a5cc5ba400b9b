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

// Package wprcube writes the self-describing 4-D cube (lon, lat,
// level, time + variables + attributes) that is the pipeline's single
// published output artifact, and its JSON fallback.
package wprcube

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bitbucket.org/ctessum/cdf"
	"bitbucket.org/ctessum/sparse"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/wprerr"
)

// copyrightNote is stamped onto every variable, per §4.7.
const copyrightNote = "wprgrid wind-profiler gridded product, NOAA/CMA station network"

// VarAttrs are the per-variable attributes the writer emits.
type VarAttrs struct {
	LongName  string
	Units     string
	FillValue *float64
	Note      string
}

// Variable is one data variable to write, shaped (level, lat, lon).
type Variable struct {
	Name  string
	Data  *sparse.DenseArray
	Attrs VarAttrs
}

// Cube is everything needed to write one slot's (or shear's) output
// file: the fixed coordinates plus a set of caller-supplied variables.
type Cube struct {
	TimeMinutes float64
	Variables   []Variable
}

// NewCube builds a Cube from level×lat×lon flat slices for U, V, HWS,
// HWD, VWS (plus any extras), tagging timeMinutes as the coordinate
// value (minutes since gridgeom's epoch).
func NewCube(timeMinutes float64, vars map[string][]float64, attrs map[string]VarAttrs) *Cube {
	c := &Cube{TimeMinutes: timeMinutes}
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		da := sparse.ZerosDense(gridgeom.NumLevels, gridgeom.NumLats, gridgeom.NumLons)
		copy(da.Elements, vars[name])
		c.Variables = append(c.Variables, Variable{Name: name, Data: da, Attrs: attrs[name]})
	}
	return c
}

// WriteTo writes the cube to finalPath, via a temp file in bufferDir
// then an atomic rename, so readers never observe a half-written file.
// The file format is chosen by finalPath's extension: ".nc"/".cdf" use
// the binary cube format; ".json" uses the JSON fallback (missing
// becomes a null token). Any other extension is a fatal *output
// error*.
func WriteTo(bufferDir, finalPath string, c *Cube) error {
	ext := filepath.Ext(finalPath)
	switch ext {
	case ".nc", ".cdf":
		return writeBinary(bufferDir, finalPath, c)
	case ".json":
		return writeJSON(bufferDir, finalPath, c)
	default:
		return fmt.Errorf("wprcube: unrecognized output extension %q: %w", ext, wprerr.Output)
	}
}

func writeBinary(bufferDir, finalPath string, c *Cube) error {
	if err := os.MkdirAll(bufferDir, 0755); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	tmp, err := os.CreateTemp(bufferDir, ".cube-*.nc.tmp")
	if err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	h := cdf.NewHeader(
		[]string{"lon", "lat", "level", "time"},
		[]int{gridgeom.NumLons, gridgeom.NumLats, gridgeom.NumLevels, 0},
	)
	h.AddAttribute("", "Conventions", "wprgrid-cube-1")

	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "long_name", "longitude")
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddAttribute("lon", "copyright", copyrightNote)

	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "long_name", "latitude")
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddAttribute("lat", "copyright", copyrightNote)

	h.AddVariable("level", []string{"level"}, []float64{0})
	h.AddAttribute("level", "long_name", "height above ground level")
	h.AddAttribute("level", "units", "m")
	h.AddAttribute("level", "copyright", copyrightNote)

	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "long_name", "time")
	h.AddAttribute("time", "units", "minutes since 2018-01-01 00:00:00")
	h.AddAttribute("time", "copyright", copyrightNote)

	for _, v := range c.Variables {
		h.AddVariable(v.Name, []string{"level", "lat", "lon"}, []float64{0})
		h.AddAttribute(v.Name, "long_name", v.Attrs.LongName)
		h.AddAttribute(v.Name, "units", v.Attrs.Units)
		if v.Attrs.FillValue != nil {
			h.AddAttribute(v.Name, "fill_value", []float64{*v.Attrs.FillValue})
		}
		if v.Attrs.Note != "" {
			h.AddAttribute(v.Name, "note", v.Attrs.Note)
		}
		h.AddAttribute(v.Name, "copyright", copyrightNote)
	}
	h.Define()

	f, err := cdf.Create(tmp, h)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}

	if err := writeCoord(f, "lon", gridgeom.Lons); err != nil {
		tmp.Close()
		return err
	}
	if err := writeCoord(f, "lat", gridgeom.Lats); err != nil {
		tmp.Close()
		return err
	}
	if err := writeCoord(f, "level", gridgeom.Levels); err != nil {
		tmp.Close()
		return err
	}
	if err := writeCoord(f, "time", []float64{c.TimeMinutes}); err != nil {
		tmp.Close()
		return err
	}
	for _, v := range c.Variables {
		if err := writeVariable(f, v.Name, v.Data); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := cdf.UpdateNumRecs(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	if err := os.Rename(tmpName, finalPath); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	return nil
}

func writeCoord(f *cdf.File, name string, vals []float64) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(vals); err != nil {
		return fmt.Errorf("wprcube: writing %s: %w: %v", name, wprerr.Output, err)
	}
	return nil
}

func writeVariable(f *cdf.File, name string, data *sparse.DenseArray) error {
	n := 1
	for _, s := range data.Shape {
		n *= s
	}
	if len(data.Elements) != n {
		return fmt.Errorf("wprcube: %s: shape mismatch: %w", name, wprerr.Output)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data.Elements); err != nil {
		return fmt.Errorf("wprcube: writing %s: %w: %v", name, wprerr.Output, err)
	}
	return nil
}

// Open reads back a cube written by WriteTo, dispatching on extension
// the same way. Variable order is not preserved; only Name/Data survive
// (Attrs are not needed by downstream readers and are left zero).
func Open(path string) (*Cube, error) {
	switch filepath.Ext(path) {
	case ".nc", ".cdf":
		return openBinary(path)
	case ".json":
		return openJSON(path)
	default:
		return nil, fmt.Errorf("wprcube: unrecognized input extension %q: %w", filepath.Ext(path), wprerr.Input)
	}
}

func openBinary(path string) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wprcube: open %s: %w: %v", path, wprerr.Input, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("wprcube: parse %s: %w: %v", path, wprerr.Input, err)
	}

	timeEnd := cf.Header.Lengths("time")
	timeStart := make([]int, len(timeEnd))
	timeVals := make([]float64, 1)
	if _, err := cf.Reader("time", timeStart, timeEnd).Read(timeVals); err != nil {
		return nil, fmt.Errorf("wprcube: read %s time: %w: %v", path, wprerr.Input, err)
	}

	c := &Cube{TimeMinutes: timeVals[0]}
	skip := map[string]bool{"lon": true, "lat": true, "level": true, "time": true}
	for _, name := range cf.Header.Variables() {
		if skip[name] {
			continue
		}
		end := cf.Header.Lengths(name)
		start := make([]int, len(end))
		n := 1
		for _, s := range end {
			n *= s
		}
		elems := make([]float64, n)
		if _, err := cf.Reader(name, start, end).Read(elems); err != nil {
			return nil, fmt.Errorf("wprcube: read %s %s: %w: %v", path, name, wprerr.Input, err)
		}
		da := sparse.ZerosDense(gridgeom.NumLevels, gridgeom.NumLats, gridgeom.NumLons)
		copy(da.Elements, elems)
		c.Variables = append(c.Variables, Variable{Name: name, Data: da})
	}
	return c, nil
}

func openJSON(path string) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wprcube: open %s: %w: %v", path, wprerr.Input, err)
	}
	defer f.Close()

	var jc jsonCube
	if err := json.NewDecoder(f).Decode(&jc); err != nil {
		return nil, fmt.Errorf("wprcube: parse %s: %w: %v", path, wprerr.Input, err)
	}
	c := &Cube{TimeMinutes: jc.Time}
	names := make([]string, 0, len(jc.Variables))
	for n := range jc.Variables {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		vals := jc.Variables[name]
		da := sparse.ZerosDense(gridgeom.NumLevels, gridgeom.NumLats, gridgeom.NumLons)
		for i, v := range vals {
			if v == nil {
				da.Elements[i] = gridgeom.Missing
			} else {
				da.Elements[i] = *v
			}
		}
		c.Variables = append(c.Variables, Variable{Name: name, Data: da})
	}
	return c, nil
}

// jsonCube is the JSON fallback representation; missing becomes null
// via *float64 (nil marshals to null).
type jsonCube struct {
	Lon             []float64            `json:"lon,omitempty"`
	Lat             []float64            `json:"lat,omitempty"`
	Level           []float64            `json:"level,omitempty"`
	Time            float64              `json:"time"`
	Variables       map[string][]*float64 `json:"variables"`
}

func writeJSON(bufferDir, finalPath string, c *Cube) error {
	jc := jsonCube{
		Lon:       gridgeom.Lons,
		Lat:       gridgeom.Lats,
		Level:     gridgeom.Levels,
		Time:      c.TimeMinutes,
		Variables: map[string][]*float64{},
	}
	for _, v := range c.Variables {
		vals := make([]*float64, len(v.Data.Elements))
		for i, e := range v.Data.Elements {
			if gridgeom.IsMissing(e) {
				continue
			}
			x := e
			vals[i] = &x
		}
		jc.Variables[v.Name] = vals
	}

	if err := os.MkdirAll(bufferDir, 0755); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	tmp, err := os.CreateTemp(bufferDir, ".cube-*.json.tmp")
	if err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(jc); err != nil {
		tmp.Close()
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	if err := os.Rename(tmpName, finalPath); err != nil {
		return fmt.Errorf("wprcube: %w: %v", wprerr.Output, err)
	}
	return nil
}
