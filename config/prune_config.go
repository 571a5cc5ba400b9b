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
	"fmt"

	"github.com/BurntSushi/toml"
)

// PruneConfig is the pruner's own lightweight config, read directly
// with BurntSushi/toml rather than the full Viper/Cobra stack, mirroring
// inmap/cmd/inmap.go's alternate toml-based configData path alongside
// inmaputil's Viper-based Cfg.
type PruneConfig struct {
	RemoveLogPath  string `toml:"remove_log_path"`
	PublishRoot    string `toml:"publish_root"`
	RetentionDays  int    `toml:"retention_days"`
}

// LoadPruneConfig reads a minimal TOML file for the pruner stage.
func LoadPruneConfig(path string) (*PruneConfig, error) {
	var c PruneConfig
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 3
	}
	return &c, nil
}
