// Copyright (c) 2026 Rick Henry
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Sender delivers messages through an SMTP submission endpoint.
type Sender struct {
	addr     string // host:port, STARTTLS
	username string
	password string
}

// NewSender creates an SMTP sender for the given server and credentials.
func NewSender(addr, username, password string) *Sender {
	return &Sender{
		addr:     addr,
		username: username,
		password: password,
	}
}

// Send assembles an RFC 822 plain-text message and submits it. Both
// addresses must be well-formed user@host strings; a malformed address is
// a TransportError, same as an authentication or protocol failure.
func (s *Sender) Send(ctx context.Context, from, to Address, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !validAddress(from.Email) {
		return &TransportError{Op: "send", Err: fmt.Errorf("malformed from address %q", from.Email)}
	}
	if !validAddress(to.Email) {
		return &TransportError{Op: "send", Err: fmt.Errorf("malformed to address %q", to.Email)}
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := sasl.NewPlainClient("", s.username, s.password)
	if err := smtp.SendMail(s.addr, auth, from.Email, []string{to.Email}, strings.NewReader(msg.String())); err != nil {
		return &TransportError{Op: "send", Err: err}
	}

	slog.Info("sent message", "to", to.Email, "subject", subject)
	return nil
}
