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

// Package retry wraps the pipeline's bounded directory-polling waits
// (e.g. "block until today's drop directory exists") in the pack's own
// backoff library instead of a hand-rolled sleep loop.
package retry

import (
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff"
)

// PollUntilReady retries fn at a constant interval, capped at maxWait,
// until fn returns true or the cap is reached. fn's error, if any, is
// logged and treated as "not ready yet".
func PollUntilReady(interval, maxWait time.Duration, fn func() (bool, error)) error {
	b := backoff.NewConstantBackOff(interval)
	bo := backoff.WithMaxRetries(b, uint64(maxWait/interval))
	op := func() error {
		ready, err := fn()
		if err != nil {
			log.Printf("%v: retrying in %v", err, interval)
			return err
		}
		if !ready {
			return fmt.Errorf("retry: condition not yet satisfied")
		}
		return nil
	}
	return backoff.Retry(op, bo)
}
