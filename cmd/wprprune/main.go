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

// Command wprprune wakes hourly and removes published day directories
// older than the configured retention window, logging what it removes.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/noaa-wpr/wprgrid/config"
	"github.com/noaa-wpr/wprgrid/internal/wprlog"
)

var configFile string

const wakeInterval = time.Hour

func main() {
	root := &cobra.Command{
		Use:   "wprprune",
		Short: "Hourly retention pruning of published day directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.Flags().StringVar(&configFile, "config", "prune.toml", "path to the pruner's config file")

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadPruneConfig(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := wprlog.New("wprprune", cfg.RemoveLogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			trace := string(debug.Stack())
			log.WithField("panic", r).Error(trace)
			os.Exit(2)
		}
	}()

	for {
		if err := pruneOnce(cfg.PublishRoot, cfg.RetentionDays, log); err != nil {
			log.WithField("error", err).Error("prune pass failed")
		}
		time.Sleep(wakeInterval)
	}
}

// pruneOnce lists root's day-stamped subdirectories (YYYYMMDD names,
// mirroring the scheduler's own drop-directory layout) and removes
// those older than retentionDays, grounded on the original pruner's
// directory-listing loop.
func pruneOnce(root string, retentionDays int, log logrus.FieldLogger) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("wprprune: list %s: %w", root, err)
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -retentionDays)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		day, err := time.Parse("20060102", e.Name())
		if err != nil {
			continue // not a day directory, leave it alone
		}
		if !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(root, e.Name())
		if err := os.RemoveAll(path); err != nil {
			log.WithField("dir", path).Error(err)
			continue
		}
		log.WithField("dir", path).Info("pruned")
	}
	return nil
}
