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

// Package wpralert sends a single operator email when a stage exits
// fatally. It is deliberately thin: alerting is out of this
// repository's core scope, specified only by its email.* config keys.
package wpralert

import (
	"fmt"
	"net/smtp"

	"github.com/noaa-wpr/wprgrid/config"
)

// Send delivers one plain-text message to cfg.ReceiveAddress. A send
// failure is the caller's to log; it is never treated as fatal.
func Send(cfg config.EmailConfig, subject, body string) error {
	if cfg.SendHost == "" || cfg.ReceiveAddress == "" {
		return fmt.Errorf("wpralert: email not configured")
	}
	auth := smtp.PlainAuth("", cfg.Account, cfg.Password, cfg.SendHost)
	msg := fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", cfg.ReceiveAddress, subject, body)
	addr := cfg.SendHost + ":587"
	return smtp.SendMail(addr, auth, cfg.Account, []string{cfg.ReceiveAddress}, []byte(msg))
}
