package station

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFullHeader(t *testing.T) {
	dir := t.TempDir()
	content := "ROBS\n" +
		"54511 116.46700 39.80500 32.0000 03 20260115150000\n" +
		"hdr1\nhdr2\nhdr3\n" +
		"100 270.0 10.0 0.1 80 80 1e-14\n" +
		"200 270.0 12.0 0.2 80 80 1e-14\n" +
		"EOF\n"
	path := writeFile(t, dir, "WIND_PROFILER_54511_20260115150000_X_ROBS.TXT", content)

	rec, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if rec.StationID != "54511" {
		t.Errorf("StationID = %q", rec.StationID)
	}
	if rec.Kind != "ROBS" {
		t.Errorf("Kind = %q", rec.Kind)
	}
	if len(rec.SH) != 2 {
		t.Fatalf("SH len = %d, want 2", len(rec.SH))
	}
	if rec.SH[0] != 100 || rec.HWS[0] != 10.0 {
		t.Errorf("row0 = %+v", rec)
	}
}

func TestParseMissingHeaderField(t *testing.T) {
	dir := t.TempDir()
	// altitude (7-char) field omitted entirely.
	content := "ROBS\n" +
		"54511 116.46700 39.80500 03 20260115150000\n" +
		"hdr1\nhdr2\nhdr3\n" +
		"100 270.0 10.0 0.1 80 80 1e-14\n" +
		"EOF\n"
	path := writeFile(t, dir, "X_54511_20260115150000_X_ROBS.TXT", content)

	rec, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if !gridgeom.IsMissing(rec.Altitude) {
		t.Errorf("Altitude = %v, want missing", rec.Altitude)
	}
	if rec.StationID != "54511" || rec.WaveBand != "03" {
		t.Errorf("unexpected header recovery: %+v", rec)
	}
}

func TestParseSentinelRow(t *testing.T) {
	dir := t.TempDir()
	content := "ROBS\n" +
		"54511 116.4670 39.8050 32.0000 03 20260115150000\n" +
		"hdr1\nhdr2\nhdr3\n" +
		"300 ///// 5.0 0.1 80 80 1e-14\n" +
		"EOF\n"
	path := writeFile(t, dir, "X_54511_20260115150000_X_ROBS.TXT", content)

	rec, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if !gridgeom.IsMissing(rec.HWD[0]) {
		t.Errorf("HWD[0] = %v, want missing", rec.HWD[0])
	}
	if rec.HWS[0] != 5.0 {
		t.Errorf("HWS[0] = %v, want 5.0", rec.HWS[0])
	}
}

func TestParseWrongArityFails(t *testing.T) {
	dir := t.TempDir()
	content := "ROBS\n" +
		"54511 116.4670 39.8050 32.0000 03 20260115150000\n" +
		"hdr1\nhdr2\nhdr3\n" +
		"100 270.0 10.0\n" +
		"EOF\n"
	path := writeFile(t, dir, "X_54511_20260115150000_X_ROBS.TXT", content)

	if _, err := Parse(path); err == nil {
		t.Fatal("expected parse failure for wrong arity row")
	}
}

func TestStationIDFromFilename(t *testing.T) {
	id, stamp, err := StationIDFromFilename("WIND_PROFILER_54511_20260115150000_X_ROBS.TXT")
	if err != nil {
		t.Fatal(err)
	}
	if id != "54511" || stamp != "20260115150000" {
		t.Errorf("got id=%q stamp=%q", id, stamp)
	}
}

func TestSortByStationID(t *testing.T) {
	recs := []*Record{{StationID: "b"}, {StationID: "a"}, {StationID: "c"}}
	SortByStationID(recs)
	if recs[0].StationID != "a" || recs[1].StationID != "b" || recs[2].StationID != "c" {
		t.Errorf("not sorted: %v", recs)
	}
}
