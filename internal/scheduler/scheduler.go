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

// Package scheduler implements the slot-aligned ingestion state
// machine: it turns the stream of file drops in today's directory into
// an ordered, at-most-once stream of (slot, chosen files) closures.
package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/noaa-wpr/wprgrid/internal/retry"
	"github.com/noaa-wpr/wprgrid/internal/station"
	"github.com/noaa-wpr/wprgrid/internal/statefile"
	"github.com/noaa-wpr/wprgrid/internal/wprtime"
)

// WakeInterval is the scheduler's poll cadence.
const WakeInterval = 20 * time.Second

// RolloverArmDelay is the grace period after today_utc() flips before
// a rollover is actually performed, so the prior day's last slot can
// still finish writing.
const RolloverArmDelay = 60 * time.Second

// DayDirPollInterval is the cadence for polling for the new day's
// drop directory during rollover.
const DayDirPollInterval = 10 * time.Second

// CloseGrace is the post-slot grace period before a slot is closed.
const CloseGrace = 6 * time.Minute

// Closure is one emitted (slot, chosen files) event.
type Closure struct {
	Slot  string
	Files []string // absolute paths, deduplicated by station
}

// Scheduler owns one stage's slot-closing state: today's date, the
// slot currently being accumulated, and the persistent sets backing
// crash recovery.
type Scheduler struct {
	Root           string // <root>/<YYYYMMDD>/ drop directory parent
	FilesSeenPath  string
	SlotsSeenPath  string
	Log            logrus.FieldLogger

	today             string
	expect            string
	filesSeen         *statefile.Set
	slotsSeen         *statefile.Set
	rolloverArmedAt   time.Time
	rolloverArmed     bool
}

// New constructs a Scheduler, loading (or initializing) its persistent
// sets and computing the initial `expect` slot per §4.4 step 2.
func New(root, filesSeenPath, slotsSeenPath string, log logrus.FieldLogger) (*Scheduler, error) {
	filesSeen, err := statefile.InitIfAbsent(filesSeenPath)
	if err != nil {
		return nil, err
	}
	slotsSeen, err := statefile.InitIfAbsent(slotsSeenPath)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		Root:          root,
		FilesSeenPath: filesSeenPath,
		SlotsSeenPath: slotsSeenPath,
		Log:           log,
		today:         wprtime.TodayUTC(),
		filesSeen:     filesSeen,
		slotsSeen:     slotsSeen,
	}
	expect, err := s.initialExpect()
	if err != nil {
		return nil, err
	}
	s.expect = expect
	return s, nil
}

// initialExpect computes expect = max(slots_seen) + 6min if slots_seen
// is nonempty, else the largest standard slot <= now.
func (s *Scheduler) initialExpect() (string, error) {
	members := s.slotsSeen.Members()
	if len(members) > 0 {
		sort.Strings(members)
		last := members[len(members)-1]
		return wprtime.NextSlot(last)
	}
	slots, err := wprtime.StandardSlots(s.today)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	best := slots[0]
	for _, slot := range slots {
		t, err := wprtime.SlotToTime(slot)
		if err != nil {
			return "", err
		}
		if !t.After(now) {
			best = slot
		}
	}
	return best, nil
}

// Tick runs one wake of the state machine: the day-rollover guard,
// candidate selection, and (if the close condition holds) closure
// emission. It returns zero or more Closures (there may be a backlog,
// so the caller should call Tick again immediately when len(out)>0).
func (s *Scheduler) Tick() ([]Closure, error) {
	if err := s.rolloverGuard(); err != nil {
		return nil, err
	}

	if received, err := s.candidatesForExpect(); err == nil {
		s.Log.WithField("expect", s.expect).WithField("station_count", len(received)).Info("stations received")
	}

	slotTime, err := wprtime.SlotToTime(s.expect)
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().Before(slotTime.Add(CloseGrace)) {
		return nil, nil
	}

	var out []Closure
	for {
		candidates, err := s.candidatesForExpect()
		if err != nil {
			return out, err
		}
		out = append(out, Closure{Slot: s.expect, Files: candidates})

		paths := make([]string, len(candidates))
		copy(paths, candidates)
		s.filesSeen.AddAll(paths)
		s.slotsSeen.Add(s.expect)
		if err := s.filesSeen.SaveAtomic(); err != nil {
			return out, err
		}
		if err := s.slotsSeen.SaveAtomic(); err != nil {
			return out, err
		}

		next, err := wprtime.NextSlot(s.expect)
		if err != nil {
			return out, err
		}
		s.expect = next

		slotTime, err = wprtime.SlotToTime(s.expect)
		if err != nil {
			return out, err
		}
		if time.Now().UTC().Before(slotTime.Add(CloseGrace)) {
			break
		}
	}
	return out, nil
}

// candidatesForExpect lists today's drop directory, keeps files whose
// match_slot equals s.expect and are not already in files_seen,
// deduplicates by station (first-seen wins), and returns their
// absolute paths.
func (s *Scheduler) candidatesForExpect() ([]string, error) {
	dir := filepath.Join(s.Root, s.today)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheduler: list %s: %w", dir, err)
	}

	type candidate struct {
		path, stationID, stamp string
	}
	var raw []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)
		if s.filesSeen.Has(path) {
			continue
		}
		stationID, stamp, err := station.StationIDFromFilename(name)
		if err != nil {
			continue // unrecognized filename: ignore, not a fatal input error
		}
		if len(stamp) < 12 {
			continue // too short to carry a slot stamp at all
		}
		slot, err := wprtime.MatchSlot(stamp[:12])
		if err != nil || slot != s.expect {
			continue
		}
		raw = append(raw, candidate{path, stationID, stamp})
	}

	// First-seen-wins dedup by station, in directory-listing order.
	seen := map[string]bool{}
	var out []string
	for _, c := range raw {
		if seen[c.stationID] {
			continue
		}
		seen[c.stationID] = true
		out = append(out, c.path)
	}
	return out, nil
}

// rolloverGuard implements §4.4 step 1: arm on a UTC day change,
// perform the rollover RolloverArmDelay later, blocking (via
// internal/retry) until the new day's drop directory exists.
func (s *Scheduler) rolloverGuard() error {
	now := wprtime.TodayUTC()
	if now == s.today {
		s.rolloverArmed = false
		return nil
	}
	if !s.rolloverArmed {
		s.rolloverArmed = true
		s.rolloverArmedAt = time.Now()
		s.Log.WithField("new_day", now).Info("day rollover armed")
		return nil
	}
	if time.Since(s.rolloverArmedAt) < RolloverArmDelay {
		return nil
	}

	s.Log.WithField("new_day", now).Info("performing day rollover")
	s.today = now
	s.filesSeen.Clear()
	s.slotsSeen.Clear()
	if err := s.filesSeen.SaveAtomic(); err != nil {
		return err
	}
	if err := s.slotsSeen.SaveAtomic(); err != nil {
		return err
	}

	dir := filepath.Join(s.Root, s.today)
	err := retry.PollUntilReady(DayDirPollInterval, 24*time.Hour, func() (bool, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false, nil
		}
		return len(entries) > 0, nil
	})
	if err != nil {
		return fmt.Errorf("scheduler: waiting for %s: %w", dir, err)
	}

	slots, err := wprtime.StandardSlots(s.today)
	if err != nil {
		return err
	}
	s.expect = slots[0]
	s.rolloverArmed = false
	return nil
}

// ReportMissing diffs the standard 240-slot table for day against
// slots_seen and writes the complement to reportPath, one stamp per
// line — the missing-slot reporter, C14.
func ReportMissing(day, slotsSeenPath, reportPath string) error {
	slots, err := wprtime.StandardSlots(day)
	if err != nil {
		return err
	}
	seen, err := statefile.Load(slotsSeenPath)
	if err != nil {
		return err
	}
	missing := seen.Difference(slots)
	// Difference keeps candidates not already in the set; "missing"
	// here means standard slots absent from slots_seen, i.e. exactly
	// seen.Difference(slots) read the other way: entries of `slots`
	// that seen does NOT contain.
	if err := os.MkdirAll(filepath.Dir(reportPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(reportPath)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, m := range missing {
		fmt.Fprintln(f, m)
	}
	return nil
}
