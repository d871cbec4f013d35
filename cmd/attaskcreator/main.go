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

// Airtable Task Creator
//
// Entry point for one batch pass. It:
//  1. Loads configuration from config.yaml
//  2. Builds the IMAP fetcher, SMTP sender, S3 uploader, and Airtable client
//  3. Optionally connects Redis for cross-run message dedup
//  4. Runs the extraction pipeline over all unread messages
//  5. Exits nonzero when the run or any message failed
//
// Intended to be invoked periodically by a scheduler (cron, systemd timer).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/rickh94/attaskcreator/internal/airtable"
	"github.com/rickh94/attaskcreator/internal/config"
	"github.com/rickh94/attaskcreator/internal/dedup"
	"github.com/rickh94/attaskcreator/internal/mail"
	"github.com/rickh94/attaskcreator/internal/pipeline"
	"github.com/rickh94/attaskcreator/internal/storage"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting airtable task creator")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"phrases", len(cfg.Trigger.Phrases),
		"bucket", cfg.Storage.Bucket,
		"dedup", cfg.RedisURL != "",
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// --- Mail transport ---
	fetcher := mail.NewFetcher(cfg.Mail.IMAPAddr, cfg.Mail.Username, cfg.Mail.Password)
	sender := mail.NewSender(cfg.Mail.SMTPAddr, cfg.Mail.Username, cfg.Mail.Password)

	// --- Object storage ---
	uploader, err := storage.NewUploader(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		slog.Error("failed to initialise S3 uploader", "error", err)
		os.Exit(1)
	}

	// --- Record database ---
	records := airtable.NewClient(ctx, cfg.Airtable.APIKey, cfg.Airtable.BaseID,
		airtable.PeopleTable{
			Table:    cfg.Airtable.People.Table,
			KeyField: cfg.Airtable.People.KeyField,
		},
		airtable.FilesTable{
			Table:       cfg.Airtable.Files.Table,
			NameField:   cfg.Airtable.Files.NameField,
			AttachField: cfg.Airtable.Files.AttachField,
		},
		airtable.TasksTable{
			Table:       cfg.Airtable.Tasks.Table,
			TextField:   cfg.Airtable.Tasks.TextField,
			PeopleField: cfg.Airtable.Tasks.PeopleField,
			NotesField:  cfg.Airtable.Tasks.NotesField,
			AttachField: cfg.Airtable.Tasks.AttachField,
		},
	)

	// --- Dedup filter (optional) ---
	var seen pipeline.SeenFilter
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid redis URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		filter := dedup.NewFilter(rdb)
		if err := filter.Ping(ctx); err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to Redis")
		seen = filter
	}

	p := pipeline.New(cfg, fetcher, sender, uploader, records, seen)

	if err := p.Run(ctx); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("run complete")
}
