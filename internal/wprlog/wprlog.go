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

// Package wprlog builds the one logrus.FieldLogger each stage uses,
// rotating its log file at UTC midnight and mirroring every line to
// stdout.
package wprlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// midnightRotatingWriter swaps its underlying *os.File at UTC
// midnight. No log-rotation library appears anywhere in the retrieval
// pack, so this is a small hand-rolled io.Writer.
type midnightRotatingWriter struct {
	mu      sync.Mutex
	dir     string
	prefix  string
	day     string
	current *os.File
}

func newMidnightRotatingWriter(dir, prefix string) (*midnightRotatingWriter, error) {
	w := &midnightRotatingWriter{dir: dir, prefix: prefix}
	if err := w.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *midnightRotatingWriter) rotateIfNeeded() error {
	day := time.Now().UTC().Format("20060102")
	if day == w.day && w.current != nil {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s.%s.log", w.prefix, day))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if w.current != nil {
		w.current.Close()
	}
	w.current, w.day = f, day
	return nil
}

func (w *midnightRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return w.current.Write(p)
}

// New builds a logrus.FieldLogger for stage, logging to logDir with
// UTC-midnight rotation and mirrored to stdout.
func New(stage, logDir string) (logrus.FieldLogger, error) {
	fileWriter, err := newMidnightRotatingWriter(logDir, stage)
	if err != nil {
		return nil, fmt.Errorf("wprlog: %w", err)
	}
	l := logrus.New()
	l.Out = io.MultiWriter(os.Stdout, fileWriter)
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	return l.WithField("stage", stage), nil
}
