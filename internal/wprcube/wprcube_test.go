package wprcube

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/wprerr"
)

func flatCube(val float64) []float64 {
	n := gridgeom.NumLevels * gridgeom.NumLats * gridgeom.NumLons
	out := make([]float64, n)
	for i := range out {
		out[i] = val
	}
	return out
}

func TestWriteToUnrecognizedExtensionIsOutputError(t *testing.T) {
	dir := t.TempDir()
	c := NewCube(0, map[string][]float64{"HWS": flatCube(1)}, map[string]VarAttrs{
		"HWS": {LongName: "horizontal wind speed", Units: "m/s"},
	})
	err := WriteTo(filepath.Join(dir, "buf"), filepath.Join(dir, "out.bogus"), c)
	if err == nil {
		t.Fatal("expected output error for unrecognized extension")
	}
	if !errors.Is(err, wprerr.Output) {
		t.Fatalf("error = %v, want one wrapping wprerr.Output", err)
	}
}

func TestWriteJSONFallbackRoundTrips(t *testing.T) {
	dir := t.TempDir()
	c := NewCube(6, map[string][]float64{"HWS": flatCube(5)}, map[string]VarAttrs{
		"HWS": {LongName: "horizontal wind speed", Units: "m/s"},
	})
	finalPath := filepath.Join(dir, "out", "202601150000.json")
	if err := WriteTo(filepath.Join(dir, "buf"), finalPath, c); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(finalPath); err != nil {
		t.Fatalf("expected published json file: %v", err)
	}
	got, err := Open(finalPath)
	if err != nil {
		t.Fatal(err)
	}
	if got.TimeMinutes != 6 || len(got.Variables) != 1 || got.Variables[0].Name != "HWS" || got.Variables[0].Data.Elements[0] != 5 {
		t.Fatalf("read back time=%v variables=%d, want time 6 and one HWS variable of 5s", got.TimeMinutes, len(got.Variables))
	}
}
