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

// Command wprgrid reads the slot bundles wprparse publishes, grids
// them onto the fixed lon×lat mesh at every level, and writes the
// published cube. It also owns the once-daily missing-slot report.
package main

import (
	"encoding/json"
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
	"github.com/noaa-wpr/wprgrid/internal/horizinterp"
	"github.com/noaa-wpr/wprgrid/internal/scheduler"
	"github.com/noaa-wpr/wprgrid/internal/statefile"
	"github.com/noaa-wpr/wprgrid/internal/vertinterp"
	"github.com/noaa-wpr/wprgrid/internal/wpralert"
	"github.com/noaa-wpr/wprgrid/internal/wprcube"
	"github.com/noaa-wpr/wprgrid/internal/wprlog"
	"github.com/noaa-wpr/wprgrid/internal/wprtime"
)

var (
	configFile string
	method     string
)

func main() {
	root := &cobra.Command{
		Use:   "wprgrid [test|test1|test2|test_local]",
		Short: "Horizontal gridding and cube publication stage",
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
	root.Flags().StringVar(&method, "method", string(horizinterp.Linear), "scatter-to-grid method: linear|cubic|nearest")

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type bundle struct {
	Slot     string                `json:"slot"`
	Stations []*vertinterp.Station `json:"stations"`
}

func run(sel config.Selector) error {
	cfg, err := config.Load(configFile, sel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Mkgrd.EnsureDirs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := wprlog.New("wprgrid", cfg.Mkgrd.LogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			trace := string(debug.Stack())
			log.WithField("panic", r).Error(trace)
			if err := wpralert.Send(cfg.Email, "wprgrid crashed", fmt.Sprintf("%v\n\n%s", r, trace)); err != nil {
				log.WithField("error", err).Error("alert email failed")
			}
			os.Exit(2)
		}
	}()

	seen, err := statefile.InitIfAbsent(filepath.Join(cfg.Mkgrd.PresetPath, "bundles.seen.set"))
	if err != nil {
		return err
	}

	m := horizinterp.Method(method)

	lastReportDay := ""
	for {
		day := wprtime.TodayUTC()
		if lastReportDay != "" && day != lastReportDay {
			reportPath := filepath.Join(cfg.Mkgrd.PresetPath, "missing_slots."+lastReportDay+".txt")
			slotsSeenPath := filepath.Join(cfg.Parse.PresetPath, "robs.slots.set")
			if err := scheduler.ReportMissing(lastReportDay, slotsSeenPath, reportPath); err != nil {
				log.WithField("error", err).Error("missing-slot report failed")
			}
		}
		lastReportDay = day

		entries, err := os.ReadDir(cfg.Parse.SavePath)
		if err != nil {
			time.Sleep(scheduler.WakeInterval)
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(cfg.Parse.SavePath, name)
			if seen.Has(path) {
				continue
			}
			if err := handleBundle(cfg, log, path, m); err != nil {
				log.WithField("file", path).WithField("error", err).Error("gridding failed")
				continue
			}
			seen.Add(path)
			if err := seen.SaveAtomic(); err != nil {
				log.WithField("error", err).Error("failed to persist bundle-seen set")
			}
		}
		time.Sleep(scheduler.WakeInterval)
	}
}

// handleBundle loads one slot's resampled stations, grids them at
// every level, and publishes the resulting cube. An empty slot (zero
// surviving stations) still produces an all-masked cube.
func handleBundle(cfg *config.Stage, log logrus.FieldLogger, path string, m horizinterp.Method) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	var b bundle
	err = json.NewDecoder(f).Decode(&b)
	f.Close()
	if err != nil {
		return err
	}

	cubes, err := horizinterp.Interpolate(b.Stations, m)
	if err != nil {
		return err
	}

	t, err := wprtime.SlotToTime(b.Slot)
	if err != nil {
		return err
	}
	timeMinutes := t.Sub(wprtime.Epoch).Minutes()

	fill := gridgeom.Missing
	vars := map[string][]float64{
		"U":   cubes.U,
		"V":   cubes.V,
		"HWS": cubes.HWS,
		"HWD": cubes.HWD,
		"VWS": cubes.VWS,
	}
	attrs := map[string]wprcube.VarAttrs{
		"U":   {LongName: "eastward wind component", Units: "m s-1", FillValue: &fill},
		"V":   {LongName: "northward wind component", Units: "m s-1", FillValue: &fill},
		"HWS": {LongName: "horizontal wind speed", Units: "m s-1", FillValue: &fill},
		"HWD": {LongName: "horizontal wind direction", Units: "degrees", FillValue: &fill},
		"VWS": {LongName: "vertical wind speed", Units: "m s-1", FillValue: &fill},
	}
	cube := wprcube.NewCube(timeMinutes, vars, attrs)

	finalPath := filepath.Join(cfg.Mkgrd.SavePath, b.Slot+".nc")
	if err := wprcube.WriteTo(cfg.Mkgrd.BufferPath, finalPath, cube); err != nil {
		return err
	}
	log.WithField("slot", b.Slot).WithField("stations", len(b.Stations)).Info("cube published")
	return nil
}
