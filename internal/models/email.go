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

// Package models defines the data structures shared across the task creator.
package models

// Attachment represents a file attached to an email, held in memory until
// it is written to the scratch directory.
type Attachment struct {
	Name string
	Data []byte
}

// Message represents one retrieved email. It is created by the mail
// transport's fetch, consumed once per pipeline pass, and never persisted.
type Message struct {
	// MessageID is the RFC 5322 Message-ID header, used for processed-message
	// deduplication. May be empty for malformed senders.
	MessageID   string
	From        string
	To          string // raw To header, comma-separated
	Subject     string
	Date        string
	Body        string // plain text, extracted from multipart/HTML content
	Attachments []Attachment
}

// Recipient is one parsed entry of a To header. First and last name are
// empty strings when the entry carried no display name.
type Recipient struct {
	FirstName string
	LastName  string
	Email     string
}

// TaskRecord is the payload submitted to the tasks table. Built once per
// successfully parsed message; never mutated afterward.
type TaskRecord struct {
	Text      string
	PeopleIDs []string
	// Notes carries the verbatim message body; included only when a notes
	// field is configured.
	Notes string
	// FileRecordID links the files record created for this message's
	// attachments; empty when the message carried none.
	FileRecordID string
}
