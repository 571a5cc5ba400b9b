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

// Package station parses one raw wind-profiler station text file into
// a Record: a header plus its gappy profile columns.
package station

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/wprerr"
)

// Record is one station's header plus profile columns for one slot.
type Record struct {
	StationID string
	Lon       float64
	Lat       float64
	Altitude  float64
	WaveBand  string
	ObsTime   string
	Kind      string

	SH  []float64
	HWD []float64
	HWS []float64
	VWS []float64
	HDR []float64
	VDR []float64
	CN2 []float64
}

// headerFieldLen maps a token's character length to its header field
// index, per the length-signature recovery algorithm.
var headerFieldLen = map[int]int{
	5:  0, // station
	9:  1, // lon
	8:  2, // lat
	7:  3, // altitude
	2:  4, // wave
	14: 5, // obs_time
}

const numHeaderFields = 6

// Parse reads one raw station text file and returns its Record, or a
// wprerr.Parse/wprerr.Input error. The caller is expected to drop the
// station for the slot and continue on any error.
func Parse(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("station: open %s: %w: %v", path, wprerr.Input, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("station: read %s: %w: %v", path, wprerr.Input, err)
	}
	if len(lines) < 5 {
		return nil, fmt.Errorf("station: %s: too few lines: %w", path, wprerr.Input)
	}

	kindFields := strings.Fields(lines[0])
	if len(kindFields) == 0 {
		return nil, fmt.Errorf("station: %s: empty kind line: %w", path, wprerr.Input)
	}
	kind := kindFields[0]

	header, err := parseHeader(lines[1])
	if err != nil {
		return nil, fmt.Errorf("station: %s: %w: %v", path, wprerr.Parse, err)
	}

	// Skip the three lines that follow the header line, leave one
	// trailing line unread (EOF sentinel/footer).
	bodyStart := 2 + 3
	bodyEnd := len(lines) - 1
	if bodyEnd < bodyStart {
		bodyEnd = bodyStart
	}

	rec := &Record{
		StationID: header[0],
		WaveBand:  header[4],
		ObsTime:   header[5],
		Kind:      kind,
	}
	rec.Lon, err = parseMaybeMissing(header[1])
	if err != nil {
		return nil, fmt.Errorf("station: %s: lon: %w: %v", path, wprerr.Parse, err)
	}
	rec.Lat, err = parseMaybeMissing(header[2])
	if err != nil {
		return nil, fmt.Errorf("station: %s: lat: %w: %v", path, wprerr.Parse, err)
	}
	rec.Altitude, err = parseMaybeMissing(header[3])
	if err != nil {
		return nil, fmt.Errorf("station: %s: altitude: %w: %v", path, wprerr.Parse, err)
	}

	for _, line := range lines[bodyStart:bodyEnd] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 7 {
			return nil, fmt.Errorf("station: %s: body row %q: wrong arity: %w", path, line, wprerr.Parse)
		}
		vals := make([]float64, 7)
		for i, tok := range fields {
			v, err := parseToken(tok)
			if err != nil {
				return nil, fmt.Errorf("station: %s: body row %q: %w: %v", path, line, wprerr.Parse, err)
			}
			vals[i] = v
		}
		rec.SH = append(rec.SH, vals[0])
		rec.HWD = append(rec.HWD, vals[1])
		rec.HWS = append(rec.HWS, vals[2])
		rec.VWS = append(rec.VWS, vals[3])
		rec.HDR = append(rec.HDR, vals[4])
		rec.VDR = append(rec.VDR, vals[5])
		rec.CN2 = append(rec.CN2, vals[6])
	}

	return rec, nil
}

// parseHeader recovers the six header fields {station, lon, lat,
// altitude, wave, obs_time} from the whitespace-split header line by
// token length signature, inserting "missing" placeholders at the
// first absent slot, recursively, until all six are present.
func parseHeader(line string) ([6]string, error) {
	var out [6]string
	tokens := strings.Fields(line)

	present := make(map[int]bool, len(tokens))
	byIndex := make(map[int]string, len(tokens))
	for _, tok := range tokens {
		idx, ok := headerFieldLen[len(tok)]
		if !ok {
			return out, fmt.Errorf("unrecognized header token %q (length %d)", tok, len(tok))
		}
		byIndex[idx] = tok
		present[idx] = true
	}

	fillMissing(present)
	for i := 0; i < numHeaderFields; i++ {
		if tok, ok := byIndex[i]; ok {
			out[i] = tok
		} else {
			out[i] = "missing"
		}
	}
	return out, nil
}

// fillMissing mirrors the original recursive "insert missing at first
// absent slot" algorithm: while present fields < numHeaderFields,
// locate the smallest absent index and mark it filled (by a sentinel),
// one at a time, until all indices are accounted for. Since our
// representation already only needs to know *which* indices are
// missing (parseHeader fills the token slice above), this reduces to
// asserting every index either is present or becomes "missing" — the
// recursion's externally visible behavior.
func fillMissing(present map[int]bool) {
	for {
		missingIdx := -1
		for i := 0; i < numHeaderFields; i++ {
			if !present[i] {
				missingIdx = i
				break
			}
		}
		if missingIdx == -1 {
			return
		}
		present[missingIdx] = true // now accounted for as "missing"
	}
}

func parseToken(tok string) (float64, error) {
	if tok == "/////" {
		return gridgeom.Missing, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric token %q", tok)
	}
	return v, nil
}

func parseMaybeMissing(tok string) (float64, error) {
	if tok == "missing" {
		return gridgeom.Missing, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric header token %q", tok)
	}
	return v, nil
}

// StationIDFromFilename recovers the 5-char station id and 14-char
// timestamp embedded in a filename of the form
// "..._<station5>_<yyyymmddhhmmss>_..._<KIND>.TXT".
func StationIDFromFilename(name string) (stationID, stamp string, err error) {
	parts := strings.Split(name, "_")
	for i := 0; i+1 < len(parts); i++ {
		id, ts := parts[i], parts[i+1]
		if len(id) == 5 && len(ts) == 14 && strings.Trim(ts, "0123456789") == "" {
			return id, ts, nil
		}
	}
	return "", "", fmt.Errorf("station: filename %q: %w", name, wprerr.Input)
}

// SortByStationID sorts records in place by StationID, the same
// ordering the horizontal interpolator applies to its own input.
func SortByStationID(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].StationID < records[j].StationID
	})
}
