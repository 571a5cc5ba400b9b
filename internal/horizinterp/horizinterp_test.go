package horizinterp

import (
	"math"
	"testing"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/vertinterp"
)

func singleStation(lon, lat, hws, hwd float64) *vertinterp.Station {
	n := gridgeom.NumLevels
	col := func(v float64) vertinterp.Column {
		c := make(vertinterp.Column, n)
		for i := range c {
			c[i] = v
		}
		return c
	}
	return &vertinterp.Station{
		StationID: "54511",
		Lon:       lon,
		Lat:       lat,
		HWS:       col(hws),
		HWD:       col(hwd),
		VWS:       col(0),
		HDR:       col(0),
		VDR:       col(0),
		CN2:       col(0),
	}
}

func TestSingleStationNearestFillsGrid(t *testing.T) {
	s := singleStation(116.0, 40.0, 10, 270)
	cubes, err := Interpolate([]*vertinterp.Station{s}, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	idx := cellIndex(0, 0, 0)
	if gridgeom.IsMissing(cubes.U[idx]) {
		t.Fatal("nearest method should fill every cell from the single station")
	}
	if math.Abs(cubes.U[idx]-10) > 1e-9 {
		t.Errorf("U = %v, want ~10", cubes.U[idx])
	}
	if math.Abs(cubes.V[idx]-0) > 1e-6 {
		t.Errorf("V = %v, want ~0", cubes.V[idx])
	}
}

func TestSingleStationLinearAllMasked(t *testing.T) {
	s := singleStation(116.0, 40.0, 10, 270)
	cubes, err := Interpolate([]*vertinterp.Station{s}, Linear)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range cubes.U {
		if !gridgeom.IsMissing(v) {
			t.Fatal("single station under linear method must mask every cell (no triangle)")
		}
	}
}

func TestEmptySlotAllMasked(t *testing.T) {
	cubes, err := Interpolate(nil, Linear)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range cubes.HWS {
		if !gridgeom.IsMissing(v) {
			t.Fatal("empty station list must yield an all-masked cube")
		}
	}
}

func TestThreeStationsLinearInterior(t *testing.T) {
	s1 := singleStation(90.0, 20.0, 10, 0)
	s2 := singleStation(100.0, 20.0, 10, 0)
	s3 := singleStation(95.0, 30.0, 10, 0)
	cubes, err := Interpolate([]*vertinterp.Station{s1, s2, s3}, Linear)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, v := range cubes.HWS {
		if !gridgeom.IsMissing(v) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected at least one unmasked cell inside the three-station triangle")
	}
}
