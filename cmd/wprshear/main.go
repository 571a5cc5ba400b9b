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

// Command wprshear is the long-running stage that reads published
// cubes, computes per-column vertical shear of each wind variable, and
// writes a companion shear cube.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/noaa-wpr/wprgrid/config"
	"github.com/noaa-wpr/wprgrid/internal/gridgeom"
	"github.com/noaa-wpr/wprgrid/internal/scheduler"
	"github.com/noaa-wpr/wprgrid/internal/shear"
	"github.com/noaa-wpr/wprgrid/internal/statefile"
	"github.com/noaa-wpr/wprgrid/internal/wpralert"
	"github.com/noaa-wpr/wprgrid/internal/wprcube"
	"github.com/noaa-wpr/wprgrid/internal/wprlog"
)

var configFile string

// shearVars names which cube variables get a shear column, and whether
// the angular (HWD wrap) correction applies.
var shearVars = map[string]bool{
	"U":   false,
	"V":   false,
	"HWS": false,
	"HWD": true,
	"VWS": false,
}

func main() {
	root := &cobra.Command{
		Use:   "wprshear [test|test1|test2|test_local]",
		Short: "Vertical wind shear stage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := config.Oper
			if len(args) == 1 {
				sel = config.ParseSelector(args[0])
			}
			return run(sel)
		},
	}
	root.Flags().StringVar(&configFile, "config", "config.toml", "path to the pipeline config file")

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(sel config.Selector) error {
	cfg, err := config.Load(configFile, sel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Shear.EnsureDirs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := wprlog.New("wprshear", cfg.Shear.LogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			trace := string(debug.Stack())
			log.WithField("panic", r).Error(trace)
			if err := wpralert.Send(cfg.Email, "wprshear crashed", fmt.Sprintf("%v\n\n%s", r, trace)); err != nil {
				log.WithField("error", err).Error("alert email failed")
			}
			os.Exit(2)
		}
	}()

	seen, err := statefile.InitIfAbsent(filepath.Join(cfg.Shear.PresetPath, "cubes.seen.set"))
	if err != nil {
		return err
	}

	for {
		entries, err := os.ReadDir(cfg.Mkgrd.SavePath)
		if err != nil {
			time.Sleep(scheduler.WakeInterval)
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".nc" {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(cfg.Mkgrd.SavePath, name)
			if seen.Has(path) {
				continue
			}
			if err := handleCube(cfg, log, path, name); err != nil {
				log.WithField("file", path).WithField("error", err).Error("shear computation failed")
				continue
			}
			seen.Add(path)
			if err := seen.SaveAtomic(); err != nil {
				log.WithField("error", err).Error("failed to persist cube-seen set")
			}
		}
		time.Sleep(scheduler.WakeInterval)
	}
}

// handleCube reads one published cube, computes the vertical shear of
// each shearVars entry at every (lat, lon) column, and writes the
// shear cube alongside.
func handleCube(cfg *config.Stage, log logrus.FieldLogger, path, name string) error {
	cube, err := wprcube.Open(path)
	if err != nil {
		return err
	}

	outVars := map[string][]float64{}
	fillSentinel := shear.Sentinel
	attrs := map[string]wprcube.VarAttrs{}

	for _, v := range cube.Variables {
		angular, want := shearVars[v.Name]
		if !want {
			continue
		}
		out := make([]float64, gridgeom.NumLevels*gridgeom.NumLats*gridgeom.NumLons)
		for la := 0; la < gridgeom.NumLats; la++ {
			for lo := 0; lo < gridgeom.NumLons; lo++ {
				column := make([]float64, gridgeom.NumLevels)
				for lv := 0; lv < gridgeom.NumLevels; lv++ {
					column[lv] = v.Data.Elements[lv*gridgeom.NumLats*gridgeom.NumLons+la*gridgeom.NumLons+lo]
				}
				shearCol := shear.Column(column, angular)
				for lv := 0; lv < gridgeom.NumLevels; lv++ {
					out[lv*gridgeom.NumLats*gridgeom.NumLons+la*gridgeom.NumLons+lo] = shearCol[lv]
				}
			}
		}
		shearName := v.Name + "_SHEAR"
		outVars[shearName] = out
		attrs[shearName] = wprcube.VarAttrs{
			LongName:  v.Name + " vertical shear",
			Units:     "per 100 m",
			FillValue: &fillSentinel,
		}
	}

	shearCube := wprcube.NewCube(cube.TimeMinutes, outVars, attrs)
	finalPath := filepath.Join(cfg.Shear.SavePath, name[:len(name)-len(filepath.Ext(name))]+".shear.nc")
	if err := wprcube.WriteTo(cfg.Shear.BufferPath, finalPath, shearCube); err != nil {
		return err
	}
	log.WithField("source", name).Info("shear cube published")
	return nil
}
