package vertinterp

import (
	"testing"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/station"
)

func TestResampleInRangeInterpolates(t *testing.T) {
	rec := &station.Record{
		StationID: "54511",
		SH:        []float64{100, 200, 300, 400},
		HWS:       []float64{1, 2, 3, 4},
		HWD:       []float64{0, 0, 0, 0},
		VWS:       []float64{0, 0, 0, 0},
		HDR:       []float64{0, 0, 0, 0},
		VDR:       []float64{0, 0, 0, 0},
		CN2:       []float64{0, 0, 0, 0},
	}
	s := Resample(rec)
	if gridgeom.IsMissing(s.HWS[0]) {
		t.Fatal("level 100 should be in range")
	}
	if got := s.HWS[0]; got != 1 {
		t.Errorf("HWS at 100m = %v, want 1", got)
	}
}

func TestResampleOutOfRangeIsMissing(t *testing.T) {
	rec := &station.Record{
		SH:  []float64{100, 200},
		HWS: []float64{1, 2},
		HWD: []float64{0, 0}, VWS: []float64{0, 0}, HDR: []float64{0, 0}, VDR: []float64{0, 0}, CN2: []float64{0, 0},
	}
	s := Resample(rec)
	// level 9000 is far above the max reported height.
	last := len(gridgeom.Levels) - 1
	if !gridgeom.IsMissing(s.HWS[last]) {
		t.Errorf("level %v should be missing, got %v", gridgeom.Levels[last], s.HWS[last])
	}
}

func TestResampleFewerThanTwoSamplesAllMissing(t *testing.T) {
	rec := &station.Record{
		SH:  []float64{100},
		HWS: []float64{1},
		HWD: []float64{0}, VWS: []float64{0}, HDR: []float64{0}, VDR: []float64{0}, CN2: []float64{0},
	}
	s := Resample(rec)
	for i, v := range s.HWS {
		if !gridgeom.IsMissing(v) {
			t.Fatalf("level %v should be missing with <2 samples, got %v", gridgeom.Levels[i], v)
		}
	}
}

// TestResampleSentinelRowExcludesOneColumnNotAnother mirrors the literal
// sentinel-row scenario: a station's top sample (h=300) has HWD missing
// but HWS present. HWD's valid domain shrinks to [100,200], excluding
// h=300; HWS keeps all three samples, so h=300 resolves exactly.
func TestResampleSentinelRowExcludesOneColumnNotAnother(t *testing.T) {
	rec := &station.Record{
		StationID: "54511",
		SH:        []float64{100, 200, 300},
		HWD:       []float64{0, 0, gridgeom.Missing},
		HWS:       []float64{1, 2, 3},
		VWS:       []float64{0, 0, 0},
		HDR:       []float64{0, 0, 0},
		VDR:       []float64{0, 0, 0},
		CN2:       []float64{0, 0, 0},
	}
	s := Resample(rec)

	idx := -1
	for i, h := range gridgeom.Levels {
		if h == 300 {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatal("level 300 not found in the standard grid")
	}

	if !gridgeom.IsMissing(s.HWD[idx]) {
		t.Errorf("HWD at h=300 should be excluded (its own sample was the sentinel), got %v", s.HWD[idx])
	}
	if gridgeom.IsMissing(s.HWS[idx]) {
		t.Fatal("HWS at h=300 should be included, its samples are all present")
	}
	if got := s.HWS[idx]; got != 3 {
		t.Errorf("HWS at h=300 = %v, want 3", got)
	}
}

func TestResampleDropsMissingEntriesPositionally(t *testing.T) {
	rec := &station.Record{
		SH:  []float64{100, 200, 300},
		HWS: []float64{1, gridgeom.Missing, 3},
		HWD: []float64{0, 0, 0}, VWS: []float64{0, 0, 0}, HDR: []float64{0, 0, 0}, VDR: []float64{0, 0, 0}, CN2: []float64{0, 0, 0},
	}
	s := Resample(rec)
	if gridgeom.IsMissing(s.HWS[0]) {
		t.Fatal("level 100 should be resolvable from the two valid samples")
	}
}
