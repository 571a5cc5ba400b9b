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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSelectorDefaultsToOper(t *testing.T) {
	if got := ParseSelector("bogus"); got != Oper {
		t.Fatalf("ParseSelector(bogus) = %q, want %q", got, Oper)
	}
	if got := ParseSelector(""); got != Oper {
		t.Fatalf("ParseSelector(\"\") = %q, want %q", got, Oper)
	}
}

func TestParseSelectorRecognizesTestVariants(t *testing.T) {
	for _, arg := range []Selector{Test, Test1, Test2, TestLocal} {
		if got := ParseSelector(string(arg)); got != arg {
			t.Fatalf("ParseSelector(%q) = %q, want %q", arg, got, arg)
		}
	}
}

func TestLoadResolvesOperAndTestSubtrees(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	toml := `
data_source = "/data/robs"

[parse.oper]
log_path = "/oper/parse/log"
save_path = "/oper/parse/save"
preset_path = "/oper/parse/preset"

[parse.test]
log_path = "/test/parse/log"
save_path = "/test/parse/save"
preset_path = "/test/parse/preset"
`
	if err := os.WriteFile(path, []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}

	operCfg, err := Load(path, Oper)
	if err != nil {
		t.Fatal(err)
	}
	if operCfg.Parse.LogPath != "/oper/parse/log" {
		t.Fatalf("oper parse.log_path = %q, want /oper/parse/log", operCfg.Parse.LogPath)
	}

	testCfg, err := Load(path, Test1)
	if err != nil {
		t.Fatal(err)
	}
	if testCfg.Parse.LogPath != "/test/parse/log" {
		t.Fatalf("test1 parse.log_path = %q, want /test/parse/log (test1/test2/test_local share the test subtree)", testCfg.Parse.LogPath)
	}
}

func TestLoadRejectsMissingDataSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[parse.oper]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, Oper); err == nil {
		t.Fatal("expected an error for a config with no data_source")
	}
}

func TestEnsureDirsCreatesConfiguredPaths(t *testing.T) {
	dir := t.TempDir()
	ps := PathSet{
		SavePath:   filepath.Join(dir, "save"),
		PresetPath: filepath.Join(dir, "preset"),
	}
	if err := ps.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{ps.SavePath, ps.PresetPath} {
		if _, err := os.Stat(d); err != nil {
			t.Fatalf("expected %s to exist: %v", d, err)
		}
	}
}
