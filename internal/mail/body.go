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
	"fmt"
	"io"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"golang.org/x/net/html"

	"github.com/rickh94/attaskcreator/internal/models"
)

// ReadMessage parses a raw RFC 822 message into the canonical Message
// model. The body is reduced to plain text: the first text/plain part
// wins, falling back to the first text/html part stripped of markup.
// Non-inline parts with a filename are collected as attachments.
func ReadMessage(r io.Reader) (models.Message, error) {
	mr, err := gomail.CreateReader(r)
	if err != nil {
		return models.Message{}, fmt.Errorf("create mail reader: %w", err)
	}

	msg := models.Message{
		MessageID: strings.Trim(mr.Header.Get("Message-Id"), "<>"),
		From:      mr.Header.Get("From"),
		To:        mr.Header.Get("To"),
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date.Format(time.RFC1123Z)
	}

	var plain, htmlBody string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Message{}, fmt.Errorf("read message part: %w", err)
		}

		switch h := p.Header.(type) {
		case *gomail.InlineHeader:
			ct, _, _ := h.ContentType()
			data, err := io.ReadAll(p.Body)
			if err != nil {
				return models.Message{}, fmt.Errorf("read message body: %w", err)
			}
			switch {
			case ct == "text/plain" && plain == "":
				plain = string(data)
			case ct == "text/html" && htmlBody == "":
				htmlBody = string(data)
			}
		case *gomail.AttachmentHeader:
			filename, err := h.Filename()
			if err != nil || filename == "" {
				continue
			}
			data, err := io.ReadAll(p.Body)
			if err != nil {
				return models.Message{}, fmt.Errorf("read attachment %s: %w", filename, err)
			}
			msg.Attachments = append(msg.Attachments, models.Attachment{
				Name: filename,
				Data: data,
			})
		}
	}

	msg.Body = plain
	if msg.Body == "" && htmlBody != "" {
		msg.Body = htmlToText(htmlBody)
	}

	return msg, nil
}

// htmlToText strips markup from an HTML body, keeping the visible text.
// Script and style contents are dropped.
func htmlToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}
