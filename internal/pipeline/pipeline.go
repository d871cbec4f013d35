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

// Package pipeline orchestrates one batch pass: fetch unread messages,
// extract the task text, resolve recipients to person records, upload
// attachments, and create the task record. Extraction failures are
// recovered per-message with a notification to the error address; all
// other failures abort only the message they occurred on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickh94/attaskcreator/internal/config"
	"github.com/rickh94/attaskcreator/internal/extract"
	"github.com/rickh94/attaskcreator/internal/mail"
	"github.com/rickh94/attaskcreator/internal/models"
)

// failureSubject is the fixed subject of extraction-failure notifications.
const failureSubject = "Failed to create airtable task record"

// MessageSource fetches the unread messages for this run.
type MessageSource interface {
	FetchUnread(ctx context.Context) ([]models.Message, error)
}

// MessageSender delivers the extraction-failure notification.
type MessageSender interface {
	Send(ctx context.Context, from, to mail.Address, subject, body string) error
}

// Storage uploads a saved attachment and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// RecordStore is the record database: person lookup plus file and task
// record creation.
type RecordStore interface {
	SearchPerson(ctx context.Context, r models.Recipient) (string, error)
	CreateFileRecord(ctx context.Context, name string, urls []string) (string, error)
	CreateTaskRecord(ctx context.Context, task models.TaskRecord) (string, error)
}

// SeenFilter tracks processed Message-IDs across runs.
type SeenFilter interface {
	IsNew(ctx context.Context, messageID string) (bool, error)
	Forget(ctx context.Context, messageID string) error
}

// Pipeline runs the email-to-record extraction for one batch pass.
type Pipeline struct {
	cfg     *config.Config
	source  MessageSource
	sender  MessageSender
	storage Storage
	records RecordStore
	seen    SeenFilter // nil disables cross-run dedup

	now func() time.Time
}

// New wires a pipeline from its collaborators. seen may be nil when no
// Redis URL is configured.
func New(cfg *config.Config, source MessageSource, sender MessageSender, storage Storage, records RecordStore, seen SeenFilter) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		source:  source,
		sender:  sender,
		storage: storage,
		records: records,
		seen:    seen,
		now:     time.Now,
	}
}

// Run fetches all unread messages and processes each one independently.
// A failure on one message never aborts the others; Run returns an
// aggregate error when any message failed, so schedulers see a nonzero
// exit. Transport failures on the fetch itself halt the run.
func (p *Pipeline) Run(ctx context.Context) error {
	messages, err := p.source.FetchUnread(ctx)
	if err != nil {
		return fmt.Errorf("fetch unread: %w", err)
	}

	var failed int
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !p.claim(ctx, msg) {
			continue
		}

		if err := p.process(ctx, msg); err != nil {
			failed++
			slog.Error("message processing failed",
				"from", msg.From,
				"subject", msg.Subject,
				"error", err,
			)
			p.release(ctx, msg)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d messages failed", failed, len(messages))
	}
	return nil
}

// claim marks the message as in progress in the dedup filter. Returns
// false when another run already processed it. A dedup outage never
// blocks processing; the IMAP seen flag remains the primary guard.
func (p *Pipeline) claim(ctx context.Context, msg models.Message) bool {
	if p.seen == nil || msg.MessageID == "" {
		return true
	}

	fresh, err := p.seen.IsNew(ctx, msg.MessageID)
	if err != nil {
		slog.Warn("dedup check failed, processing anyway",
			"message_id", msg.MessageID,
			"error", err,
		)
		return true
	}
	if !fresh {
		slog.Info("skipping already-processed message",
			"message_id", msg.MessageID,
			"subject", msg.Subject,
		)
	}
	return fresh
}

// release clears the dedup mark after a failed message so a rerun can
// retry it.
func (p *Pipeline) release(ctx context.Context, msg models.Message) {
	if p.seen == nil || msg.MessageID == "" {
		return
	}
	if err := p.seen.Forget(ctx, msg.MessageID); err != nil {
		slog.Warn("failed to clear dedup mark",
			"message_id", msg.MessageID,
			"error", err,
		)
	}
}

// process runs one message through extraction, people resolution,
// attachment upload, and record creation.
func (p *Pipeline) process(ctx context.Context, msg models.Message) error {
	text, err := extract.Text(p.cfg.Trigger.Phrases, p.cfg.Trigger.Terminator, msg.Body)
	if errors.Is(err, extract.ErrNoPhrase) || errors.Is(err, extract.ErrNoMatch) {
		return p.notifyFailure(ctx, msg, err)
	}
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	task := models.TaskRecord{Text: text}
	if p.cfg.Airtable.Tasks.NotesField != "" {
		task.Notes = msg.Body
	}

	for _, r := range mail.ParseToField(msg.To) {
		id, err := p.records.SearchPerson(ctx, r)
		if err != nil {
			return fmt.Errorf("search person %s: %w", r.Email, err)
		}
		if id == "" {
			// Unresolved recipients degrade the linkage, not the record.
			slog.Warn("no person record for recipient", "email", r.Email)
			continue
		}
		task.PeopleIDs = append(task.PeopleIDs, id)
	}

	paths, err := mail.SaveAttachments(msg, p.cfg.ScratchDir)
	switch {
	case errors.Is(err, mail.ErrNoAttachment):
		// Nothing to upload.
	case err != nil:
		return fmt.Errorf("save attachments: %w", err)
	default:
		fileID, err := p.uploadAttachments(ctx, text, paths)
		if err != nil {
			return err
		}
		task.FileRecordID = fileID
	}

	recordID, err := p.records.CreateTaskRecord(ctx, task)
	if err != nil {
		if task.FileRecordID != "" {
			// No rollback at this layer; leave the file record for the
			// operator and make it findable from the log.
			slog.Error("task record creation failed after file record was created",
				"file_record_id", task.FileRecordID,
				"error", err,
			)
		}
		return fmt.Errorf("create task record: %w", err)
	}

	slog.Info("created task record",
		"record_id", recordID,
		"text", text,
		"people", len(task.PeopleIDs),
		"file_record_id", task.FileRecordID,
	)
	return nil
}

// uploadAttachments pushes every saved file to storage and creates the
// files record, named with the extracted text plus a timestamp tag so the
// same text arriving twice never collides in the files table.
func (p *Pipeline) uploadAttachments(ctx context.Context, text string, paths []string) (string, error) {
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		url, err := p.storage.Upload(ctx, path)
		if err != nil {
			return "", fmt.Errorf("upload attachment %s: %w", path, err)
		}
		urls = append(urls, url)
	}

	tagged := tagText(text, p.now())
	fileID, err := p.records.CreateFileRecord(ctx, tagged, urls)
	if err != nil {
		return "", fmt.Errorf("create file record: %w", err)
	}
	return fileID, nil
}

// notifyFailure sends the extraction-failure email back through the
// transport and logs the recovered failure with enough context for
// operator diagnosis.
func (p *Pipeline) notifyFailure(ctx context.Context, msg models.Message, cause error) error {
	body := fmt.Sprintf("The trigger phrase was not found in your email to %s, "+
		"so a record was not created. The body of the email is below:\n\n"+
		"Subject: %s\n%s",
		msg.To, msg.Subject, msg.Body)

	from := mail.Address{Name: p.cfg.Notify.FromName, Email: p.cfg.Mail.Username}
	to := mail.Address{Name: "User", Email: p.cfg.Notify.ErrorAddress}

	if err := p.sender.Send(ctx, from, to, failureSubject, body); err != nil {
		return fmt.Errorf("send failure notification: %w", err)
	}

	slog.Warn("no record was created",
		"reason", cause,
		"from", msg.From,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// tagText appends a timestamp to the extracted text so repeated emails
// with identical text stay distinct in the files table.
func tagText(text string, t time.Time) string {
	return text + " T:" + t.Format(time.RFC3339)
}
