package gridgeom

import "testing"

func TestFixedGridShape(t *testing.T) {
	if NumLevels != 40 {
		t.Errorf("NumLevels = %d, want 40", NumLevels)
	}
	if NumLons != 80 {
		t.Errorf("NumLons = %d, want 80", NumLons)
	}
	if NumLats != 62 {
		t.Errorf("NumLats = %d, want 62", NumLats)
	}
}

func TestLevelBoundaries(t *testing.T) {
	if Levels[0] != 100 {
		t.Errorf("Levels[0] = %v, want 100", Levels[0])
	}
	if Levels[len(Levels)-1] != 9000 {
		t.Errorf("last level = %v, want 9000", Levels[len(Levels)-1])
	}
}

func TestLonLatBoundaries(t *testing.T) {
	if Lons[0] != 85 || Lons[len(Lons)-1] != 124.5 {
		t.Errorf("lon bounds = [%v, %v]", Lons[0], Lons[len(Lons)-1])
	}
	if Lats[0] != 14 || Lats[len(Lats)-1] != 44.5 {
		t.Errorf("lat bounds = [%v, %v]", Lats[0], Lats[len(Lats)-1])
	}
}
