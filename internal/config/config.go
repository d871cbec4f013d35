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

// Package config loads configuration from config.yaml and environment
// variables. The loaded struct is immutable for the run; nothing in the
// pipeline reads configuration from globals.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MailConfig holds the IMAP/SMTP endpoints and shared credentials.
type MailConfig struct {
	IMAPAddr string `yaml:"imap_addr"` // host:port, implicit TLS
	SMTPAddr string `yaml:"smtp_addr"` // host:port, STARTTLS
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TriggerConfig holds the priority-ordered trigger phrases and the
// terminator character that ends the extracted text.
type TriggerConfig struct {
	Phrases    []string `yaml:"phrases"`
	Terminator string   `yaml:"terminator"`
}

// StorageConfig identifies the S3 bucket for attachment uploads.
type StorageConfig struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

// TableConfig names one Airtable table and the fields the pipeline writes.
type TableConfig struct {
	Table       string `yaml:"table"`
	KeyField    string `yaml:"key_field,omitempty"`
	NameField   string `yaml:"name_field,omitempty"`
	TextField   string `yaml:"text_field,omitempty"`
	PeopleField string `yaml:"people_field,omitempty"`
	NotesField  string `yaml:"notes_field,omitempty"`
	AttachField string `yaml:"attach_field,omitempty"`
}

// AirtableConfig holds the base credentials and per-table field names.
type AirtableConfig struct {
	APIKey string      `yaml:"api_key"`
	BaseID string      `yaml:"base_id"`
	People TableConfig `yaml:"people"`
	Files  TableConfig `yaml:"files"`
	Tasks  TableConfig `yaml:"tasks"`
}

// NotifyConfig controls the extraction-failure notification email.
type NotifyConfig struct {
	ErrorAddress string `yaml:"error_address"`
	FromName     string `yaml:"from_name"`
}

// Config holds all configuration for one batch run.
type Config struct {
	Mail     MailConfig     `yaml:"mail"`
	Trigger  TriggerConfig  `yaml:"trigger"`
	Storage  StorageConfig  `yaml:"storage"`
	Airtable AirtableConfig `yaml:"airtable"`
	Notify   NotifyConfig   `yaml:"notify"`

	// ScratchDir is where attachments are written before upload.
	ScratchDir string `yaml:"scratch_dir"`

	// RedisURL enables the processed-message dedup filter when set.
	RedisURL string `yaml:"redis_url"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// applies environment overrides and defaults.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg.RedisURL = firstNonEmpty(cfg.RedisURL, os.Getenv("REDIS_URL"))
	cfg.ScratchDir = firstNonEmpty(cfg.ScratchDir, "/tmp/attach_down")
	cfg.Notify.FromName = firstNonEmpty(cfg.Notify.FromName, "Airtable Task Creator")
	cfg.Trigger.Terminator = firstNonEmpty(cfg.Trigger.Terminator, ".")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	require(c.Mail.IMAPAddr, "mail.imap_addr")
	require(c.Mail.SMTPAddr, "mail.smtp_addr")
	require(c.Mail.Username, "mail.username")
	require(c.Mail.Password, "mail.password")
	require(c.Storage.Bucket, "storage.bucket")
	require(c.Storage.Region, "storage.region")
	require(c.Airtable.APIKey, "airtable.api_key")
	require(c.Airtable.BaseID, "airtable.base_id")
	require(c.Airtable.People.Table, "airtable.people.table")
	require(c.Airtable.People.KeyField, "airtable.people.key_field")
	require(c.Airtable.Files.Table, "airtable.files.table")
	require(c.Airtable.Files.NameField, "airtable.files.name_field")
	require(c.Airtable.Files.AttachField, "airtable.files.attach_field")
	require(c.Airtable.Tasks.Table, "airtable.tasks.table")
	require(c.Airtable.Tasks.TextField, "airtable.tasks.text_field")
	require(c.Airtable.Tasks.PeopleField, "airtable.tasks.people_field")
	require(c.Notify.ErrorAddress, "notify.error_address")

	if len(c.Trigger.Phrases) == 0 {
		missing = append(missing, "trigger.phrases")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if len([]rune(c.Trigger.Terminator)) != 1 {
		return fmt.Errorf("trigger.terminator must be a single character, got %q", c.Trigger.Terminator)
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
