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

// Package wprerr names the four error kinds of the pipeline so callers
// can match kind with errors.Is instead of string comparison.
package wprerr

import "errors"

// Kind sentinels. Wrap with fmt.Errorf("...: %w", Kind) at the point an
// error is produced.
var (
	// Input is an unreadable/short raw file or unknown product kind.
	Input = errors.New("input error")
	// Parse is a header length signature that cannot be resolved, or a
	// body row with the wrong arity.
	Parse = errors.New("parse failure")
	// Output is an unsupported cube output extension.
	Output = errors.New("output error")
	// MissingSlot marks a scheduler closure with zero stations.
	MissingSlot = errors.New("missing slot")
)

// Is reports whether err is (wraps) kind.
func Is(err, kind error) bool { return errors.Is(err, kind) }
