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

// Package mail is the transport layer: IMAP retrieval of unread messages,
// MIME parsing, recipient parsing, attachment saving, and SMTP sending.
package mail

import (
	"context"
	"log/slog"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/rickh94/attaskcreator/internal/models"
)

// Fetcher retrieves unread messages from an IMAP inbox.
type Fetcher struct {
	addr     string // host:port, implicit TLS
	username string
	password string
}

// NewFetcher creates an IMAP fetcher for the given server and credentials.
func NewFetcher(addr, username, password string) *Fetcher {
	return &Fetcher{
		addr:     addr,
		username: username,
		password: password,
	}
}

// FetchUnread opens a connection, retrieves every unseen message in INBOX,
// and logs out. Fetching a message body marks it seen on the server, so a
// message is only ever returned by one run. The connection is closed on
// return regardless of per-message parse failures.
func (f *Fetcher) FetchUnread(ctx context.Context) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := client.DialTLS(f.addr, nil)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	defer c.Logout()

	if err := c.Login(f.username, f.password); err != nil {
		return nil, &TransportError{Op: "login", Err: err}
	}

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, &TransportError{Op: "select", Err: err}
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}

	if len(ids) == 0 {
		slog.Debug("no unread messages")
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, ch)
	}()

	var messages []models.Message
	for raw := range ch {
		body := raw.GetBody(section)
		if body == nil {
			slog.Warn("message has no body section", "seq", raw.SeqNum)
			continue
		}
		msg, err := ReadMessage(body)
		if err != nil {
			// A malformed message must not abort the rest of the batch.
			slog.Warn("failed to parse message", "seq", raw.SeqNum, "error", err)
			continue
		}
		messages = append(messages, msg)
	}

	if err := <-done; err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}

	slog.Info("fetched unread messages", "count", len(messages))
	return messages, nil
}
