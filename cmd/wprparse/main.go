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

// Command wprparse is the ingest stage: it runs the slot scheduler,
// parses every selected station file for a closing slot, resamples
// each onto the vertical grid, and hands the bundle to wprgrid as a
// small JSON file under parse.save_path.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/noaa-wpr/wprgrid/config"
	"github.com/noaa-wpr/wprgrid/internal/scheduler"
	"github.com/noaa-wpr/wprgrid/internal/station"
	"github.com/noaa-wpr/wprgrid/internal/vertinterp"
	"github.com/noaa-wpr/wprgrid/internal/wpralert"
	"github.com/noaa-wpr/wprgrid/internal/wprlog"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "wprparse [test|test1|test2|test_local]",
		Short: "Slot-aligned station file ingestion and vertical resampling",
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

// bundle is the on-disk handoff format wprgrid consumes: one slot's
// vertically-resampled stations.
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
	if err := cfg.Parse.EnsureDirs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := wprlog.New("wprparse", cfg.Parse.LogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			trace := string(debug.Stack())
			log.WithField("panic", r).Error(trace)
			if err := wpralert.Send(cfg.Email, "wprparse crashed", fmt.Sprintf("%v\n\n%s", r, trace)); err != nil {
				log.WithField("error", err).Error("alert email failed")
			}
			os.Exit(2)
		}
	}()

	sch, err := scheduler.New(cfg.DataSource,
		filepath.Join(cfg.Parse.PresetPath, "robs.files.set"),
		filepath.Join(cfg.Parse.PresetPath, "robs.slots.set"),
		log)
	if err != nil {
		return err
	}

	for {
		closures, err := sch.Tick()
		if err != nil {
			log.WithField("error", err).Error("scheduler tick failed")
			time.Sleep(scheduler.WakeInterval)
			continue
		}
		for _, c := range closures {
			if err := handleClosure(cfg.Parse.SavePath, log, c); err != nil {
				log.WithField("slot", c.Slot).WithField("error", err).Error("closure handling failed")
			}
		}
		if len(closures) == 0 {
			time.Sleep(scheduler.WakeInterval)
		}
	}
}

// handleClosure parses every selected file for one closed slot,
// resamples survivors onto the vertical grid, and writes the bundle.
// A file that fails to parse is dropped and logged; it never aborts
// the slot.
func handleClosure(savePath string, log logrus.FieldLogger, c scheduler.Closure) error {
	var stations []*vertinterp.Station
	for _, path := range c.Files {
		rec, err := station.Parse(path)
		if err != nil {
			log.WithField("file", path).WithField("error", err).Warn("dropping unparsable station file")
			continue
		}
		stations = append(stations, vertinterp.Resample(rec))
	}

	out := bundle{Slot: c.Slot, Stations: stations}
	if err := os.MkdirAll(savePath, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(savePath, ".bundle-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := json.NewEncoder(tmp).Encode(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	final := filepath.Join(savePath, c.Slot+".json")
	if err := os.Rename(tmpName, final); err != nil {
		return err
	}
	log.WithField("slot", c.Slot).WithField("stations", len(stations)).Info("slot bundle written")
	return nil
}
