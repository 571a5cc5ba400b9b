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

// Package wprtime implements the slot calendar arithmetic shared by
// every stage: the UTC "today" string, the 240-entry standard slot
// table, and nearest-slot matching for incoming file timestamps.
package wprtime

import (
	"fmt"
	"time"
)

// SlotLayout is the 12-character stamp layout YYYYMMDDhhmm.
const SlotLayout = "200601021504"

// SlotStepMinutes is the nominal cadence between standard slots.
const SlotStepMinutes = 6

// SlotsPerDay is 24h / 6min.
const SlotsPerDay = 24 * 60 / SlotStepMinutes

// Epoch is the cube time coordinate's reference instant.
var Epoch = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

// StandardSlots returns the 240 standard slot stamps for the UTC date
// named by day (a YYYYMMDD string).
func StandardSlots(day string) ([]string, error) {
	d, err := time.Parse("20060102", day)
	if err != nil {
		return nil, fmt.Errorf("wprtime: bad day %q: %w", day, err)
	}
	slots := make([]string, 0, SlotsPerDay)
	for m := 0; m < 24*60; m += SlotStepMinutes {
		t := d.Add(time.Duration(m) * time.Minute)
		slots = append(slots, t.Format(SlotLayout))
	}
	return slots, nil
}

// TodayUTC returns the current UTC date as YYYYMMDD.
func TodayUTC() string {
	return time.Now().UTC().Format("20060102")
}

// SlotToTime parses a standard slot stamp into its absolute UTC instant.
func SlotToTime(stamp string) (time.Time, error) {
	if len(stamp) != 12 {
		return time.Time{}, fmt.Errorf("wprtime: slot stamp %q: %w", stamp, ErrFormat)
	}
	t, err := time.ParseInLocation(SlotLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("wprtime: slot stamp %q: %w", stamp, err)
	}
	return t, nil
}

// NextSlot returns the standard slot stamp SlotStepMinutes after stamp,
// crossing a day boundary if needed.
func NextSlot(stamp string) (string, error) {
	t, err := SlotToTime(stamp)
	if err != nil {
		return "", err
	}
	return t.Add(SlotStepMinutes * time.Minute).Format(SlotLayout), nil
}

// ErrFormat is returned by MatchSlot and SlotToTime when the input
// stamp does not have the required 12-character length.
var ErrFormat = fmt.Errorf("slot stamp must have length 12")

// MatchSlot returns the nearest standard slot within the same UTC hour
// as raw, tie-breaking toward the lower minute. raw must be exactly a
// 12-character YYYYMMDDhhmm stamp; callers holding a longer raw
// timestamp (e.g. a filename's seconds) must truncate it themselves
// before calling.
func MatchSlot(raw string) (string, error) {
	if len(raw) != 12 {
		return "", fmt.Errorf("wprtime: %q: %w", raw, ErrFormat)
	}
	t, err := time.ParseInLocation(SlotLayout, raw, time.UTC)
	if err != nil {
		return "", fmt.Errorf("wprtime: %q: %w", raw, ErrFormat)
	}
	minute := t.Minute()
	best := 0
	bestDist := minute // distance to candidate 0
	for c := SlotStepMinutes; c < 60; c += SlotStepMinutes {
		d := c - minute
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = c, d
		}
		// tie-break lower minute: strictly-less above already keeps the
		// first (lower) candidate on a tie.
	}
	hourStart := t.Truncate(time.Hour)
	slotTime := hourStart.Add(time.Duration(best) * time.Minute)
	return slotTime.Format(SlotLayout), nil
}
