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
	"strings"
	"testing"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

// TestReadMessage_Multipart verifies header extraction, plain-text body
// selection, and attachment collection from a multipart message.
func TestReadMessage_Multipart(t *testing.T) {
	raw := crlf(
		"From: sender@example.com",
		"To: John Smith <johnsmith@example.com>, <admin@example.com>",
		"Subject: test subject",
		"Date: Tue, 02 Jan 2024 15:04:05 +0000",
		"Message-Id: <abc123@example.com>",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"This is a test email.",
		"--BOUNDARY",
		"Content-Type: application/octet-stream",
		`Content-Disposition: attachment; filename="notes.txt"`,
		"",
		"attached bytes",
		"--BOUNDARY--",
	)

	msg, err := ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.MessageID != "abc123@example.com" {
		t.Errorf("MessageID = %q, want abc123@example.com", msg.MessageID)
	}
	if msg.From != "sender@example.com" {
		t.Errorf("From = %q", msg.From)
	}
	if !strings.Contains(msg.To, "johnsmith@example.com") || !strings.Contains(msg.To, "admin@example.com") {
		t.Errorf("To = %q, missing recipients", msg.To)
	}
	if msg.Subject != "test subject" {
		t.Errorf("Subject = %q, want test subject", msg.Subject)
	}
	if !strings.Contains(msg.Body, "This is a test email.") {
		t.Errorf("Body = %q, want test sentence", msg.Body)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(msg.Attachments))
	}
	if msg.Attachments[0].Name != "notes.txt" {
		t.Errorf("attachment name = %q, want notes.txt", msg.Attachments[0].Name)
	}
	if got := string(msg.Attachments[0].Data); !strings.Contains(got, "attached bytes") {
		t.Errorf("attachment data = %q", got)
	}
}

// TestReadMessage_HTMLFallback verifies that an HTML-only message is
// reduced to its visible text.
func TestReadMessage_HTMLFallback(t *testing.T) {
	raw := crlf(
		"From: sender@example.com",
		"To: someone@example.com",
		"Subject: html only",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><head><style>p{color:red}</style></head>",
		"<body><p>Please create a task: <b>buy milk</b>. Thanks!</p></body></html>",
	)

	msg, err := ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(msg.Body, "<") {
		t.Errorf("body still contains markup: %q", msg.Body)
	}
	if strings.Contains(msg.Body, "color:red") {
		t.Errorf("body contains style content: %q", msg.Body)
	}
	for _, want := range []string{"create a task:", "buy milk"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body = %q, missing %q", msg.Body, want)
		}
	}
}

// TestReadMessage_PlainPreferredOverHTML verifies text/plain wins when a
// message carries both alternatives.
func TestReadMessage_PlainPreferredOverHTML(t *testing.T) {
	raw := crlf(
		"From: sender@example.com",
		"To: someone@example.com",
		"Subject: alternative",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="ALT"`,
		"",
		"--ALT",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain wins",
		"--ALT",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html loses</p>",
		"--ALT--",
	)

	msg, err := ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(msg.Body, "plain wins") {
		t.Errorf("body = %q, want plain part", msg.Body)
	}
	if strings.Contains(msg.Body, "html loses") {
		t.Errorf("body = %q, html part should not be used", msg.Body)
	}
}

// TestHTMLToText verifies markup stripping directly.
func TestHTMLToText(t *testing.T) {
	got := htmlToText("<div>one<script>var x = 1;</script><p>two</p></div>")
	if got != "one two" {
		t.Errorf("htmlToText = %q, want %q", got, "one two")
	}
}
