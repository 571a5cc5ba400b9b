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

// Package statefile implements named, on-disk sets of short ASCII
// strings ("files_seen", "slots_seen") with crash-safe atomic updates.
package statefile

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Set is a named persistent set of strings, backed by one file on disk.
type Set struct {
	path    string
	members map[string]struct{}
}

// InitIfAbsent opens the set file at path, creating an empty one if it
// does not yet exist, and returns the loaded Set.
func InitIfAbsent(path string) (*Set, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := &Set{path: path, members: map[string]struct{}{}}
		if err := s.SaveAtomic(); err != nil {
			return nil, fmt.Errorf("statefile: init %s: %w", path, err)
		}
		return s, nil
	}
	return Load(path)
}

// Load reads the set file at path. A missing file yields an empty set;
// an empty or corrupt file yields an empty set and a logged warning
// rather than an error, per the pipeline's "persistent-set corruption
// is never fatal" policy.
func Load(path string) (*Set, error) {
	s := &Set{path: path, members: map[string]struct{}{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("statefile: read %s: %w", path, err)
	}
	if len(data) == 0 {
		log.Printf("statefile: %s: empty set file, treating as empty", path)
		return s, nil
	}
	var members []string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&members); err != nil {
		log.Printf("statefile: %s: corrupt set, treating as empty: %v", path, err)
		return s, nil
	}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s, nil
}

// SaveAtomic writes the set to a temp file in the same directory and
// renames it into place, so readers never observe a partial write.
func (s *Set) SaveAtomic() error {
	members := s.Members()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(members); err != nil {
		return fmt.Errorf("statefile: encode %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".statefile-*.tmp")
	if err != nil {
		return fmt.Errorf("statefile: tempfile for %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("statefile: write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("statefile: close %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("statefile: rename %s: %w", s.path, err)
	}
	return nil
}

// Add inserts member into the set. It does not persist; call
// SaveAtomic to make the change durable.
func (s *Set) Add(member string) {
	if s.members == nil {
		s.members = map[string]struct{}{}
	}
	s.members[member] = struct{}{}
}

// AddAll inserts every member of others.
func (s *Set) AddAll(others []string) {
	for _, m := range others {
		s.Add(m)
	}
}

// Has reports whether member is already in the set.
func (s *Set) Has(member string) bool {
	_, ok := s.members[member]
	return ok
}

// Difference returns the elements of candidates not already present
// in the set, preserving candidates' order.
func (s *Set) Difference(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Members returns a snapshot slice of the members, in no particular
// order.
func (s *Set) Members() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}

// Len reports the number of members.
func (s *Set) Len() int { return len(s.members) }

// Clear empties the set in memory (used on day rollover; the caller
// then persists the empty set with SaveAtomic).
func (s *Set) Clear() { s.members = map[string]struct{}{} }
