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

// Package config loads the pipeline's process-wide, dotted-key
// configuration tree once at stage start and resolves the
// test|test1|test2|test_local subtree selector into a typed Stage.
package config

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
)

// PathSet is one stage's {log_path, save_path, preset_path,
// buffer_path} set; buffer_path is read for every stage and is empty
// when the subtree does not set it.
type PathSet struct {
	LogPath    string
	SavePath   string
	PresetPath string
	BufferPath string
}

// EmailConfig carries the alerting SMTP credentials.
type EmailConfig struct {
	SendHost       string
	Account        string
	Password       string
	ReceiveAddress string
}

// Stage is the resolved configuration for one running process: the
// raw data source plus all of the parse/mkgrd/shear/remove/email
// subtrees, the path sets already resolved to the oper/test/test1/
// test2/test_local selector.
type Stage struct {
	DataSource string
	Parse      PathSet
	Mkgrd      PathSet
	Shear      PathSet
	RemoveLog  string
	Email      EmailConfig
}

// Selector names the config sub-tree a stage's single CLI positional
// argument selects, per §6's CLI surface.
type Selector string

const (
	Oper      Selector = "oper"
	Test      Selector = "test"
	Test1     Selector = "test1"
	Test2     Selector = "test2"
	TestLocal Selector = "test_local"
)

// ParseSelector maps a CLI positional argument to a Selector, with the
// "no argument supplied" case defaulting to Oper.
func ParseSelector(arg string) Selector {
	switch Selector(arg) {
	case Test, Test1, Test2, TestLocal:
		return Selector(arg)
	default:
		return Oper
	}
}

// subtreeKey returns the config key sub-tree segment a Selector maps
// to: every non-oper selector reads the shared "test" sub-tree, since
// test1/test2/test_local are local variants of the same test
// environment distinguished only by data_source, matching
// original_source/opr/opmg.go's branch on sys.argv[1].
func (s Selector) subtreeKey() string {
	if s == Oper {
		return "oper"
	}
	return "test"
}

// Load reads the TOML config file at path and resolves it for the
// given stage selector.
func Load(path string, sel Selector) (*Stage, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	v.SetEnvPrefix("WPRGRID")
	v.AutomaticEnv()

	sub := sel.subtreeKey()
	st := &Stage{
		DataSource: v.GetString("data_source"),
		Parse:      readPathSet(v, "parse."+sub),
		Mkgrd:      readPathSet(v, "mkgrd."+sub),
		Shear:      readPathSet(v, "shear."+sub),
		RemoveLog:  v.GetString("remove.log_path"),
		Email: EmailConfig{
			SendHost:       v.GetString("email.send_host"),
			Account:        v.GetString("email.account"),
			Password:       v.GetString("email.password"),
			ReceiveAddress: v.GetString("email.receive_address"),
		},
	}
	if err := checkRequired(st); err != nil {
		return nil, err
	}
	return st, nil
}

func readPathSet(v *viper.Viper, prefix string) PathSet {
	return PathSet{
		LogPath:    v.GetString(prefix + ".log_path"),
		SavePath:   v.GetString(prefix + ".save_path"),
		PresetPath: v.GetString(prefix + ".preset_path"),
		BufferPath: v.GetString(prefix + ".buffer_path"),
	}
}

// checkRequired mirrors inmaputil/config.go's checkOutputFile/
// checkLogFile style validation: a missing data_source is a fatal
// config error (CLI exit code 1).
func checkRequired(st *Stage) error {
	if st.DataSource == "" {
		return fmt.Errorf("config: data_source is required")
	}
	return nil
}

// EnsureDirs creates any configured directories that do not yet exist,
// mirroring checkOutputFile's create-parent-dirs behavior.
func (p PathSet) EnsureDirs() error {
	for _, dir := range []string{p.SavePath, p.PresetPath, p.BufferPath} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", dir, err)
		}
	}
	return nil
}
