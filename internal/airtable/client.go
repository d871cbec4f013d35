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

// Package airtable is a thin client for the Airtable REST API covering the
// three operations the pipeline needs: person search, file-record creation,
// and task-record creation.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/rickh94/attaskcreator/internal/models"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Field names used for the name-based person search fallback.
const (
	firstNameField = "First Name"
	lastNameField  = "Last Name"
)

// PeopleTable identifies the people table and its email key field.
type PeopleTable struct {
	Table    string
	KeyField string
}

// FilesTable identifies the files table and its name/attachment fields.
type FilesTable struct {
	Table       string
	NameField   string
	AttachField string
}

// TasksTable identifies the tasks table and its fields. NotesField and
// AttachField may be empty, in which case those columns are never written.
type TasksTable struct {
	Table       string
	TextField   string
	PeopleField string
	NotesField  string
	AttachField string
}

// Client talks to one Airtable base.
type Client struct {
	httpClient *http.Client
	baseURL    string // <api root>/<base id>

	People PeopleTable
	Files  FilesTable
	Tasks  TasksTable
}

// NewClient creates a client for the given base. Authentication uses a
// static bearer token carried by an oauth2 transport.
func NewClient(ctx context.Context, apiKey, baseID string, people PeopleTable, files FilesTable, tasks TasksTable) *Client {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
	}))
	return &Client{
		httpClient: httpClient,
		baseURL:    fmt.Sprintf("%s/%s", defaultBaseURL, baseID),
		People:     people,
		Files:      files,
		Tasks:      tasks,
	}
}

// record mirrors one element of an Airtable records response.
type record struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// recordsEnvelope wraps both list responses and create requests/responses.
type recordsEnvelope struct {
	Records []record `json:"records"`
}

// attachment is the Airtable attachment-field element shape.
type attachment struct {
	URL string `json:"url"`
}

// SearchPerson looks up a stored person record, first by the email key
// field, then by first/last name when the recipient carried a display
// name. Returns an empty ID (and no error) when nothing matches.
func (c *Client) SearchPerson(ctx context.Context, r models.Recipient) (string, error) {
	id, err := c.findFirst(ctx, c.People.Table,
		fmt.Sprintf("{%s}='%s'", c.People.KeyField, escapeFormulaValue(r.Email)))
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	if r.FirstName == "" && r.LastName == "" {
		return "", nil
	}

	return c.findFirst(ctx, c.People.Table,
		fmt.Sprintf("AND({%s}='%s',{%s}='%s')",
			firstNameField, escapeFormulaValue(r.FirstName),
			lastNameField, escapeFormulaValue(r.LastName)))
}

// CreateFileRecord creates a record in the files table carrying the tagged
// name and the uploaded attachment URLs, and returns its ID.
func (c *Client) CreateFileRecord(ctx context.Context, name string, urls []string) (string, error) {
	attachments := make([]attachment, 0, len(urls))
	for _, u := range urls {
		attachments = append(attachments, attachment{URL: u})
	}

	return c.createRecord(ctx, c.Files.Table, map[string]interface{}{
		c.Files.NameField:   name,
		c.Files.AttachField: attachments,
	})
}

// CreateTaskRecord creates the task record and returns its ID. Notes and
// file linkage are written only when the corresponding field is configured
// and the payload carries a value.
func (c *Client) CreateTaskRecord(ctx context.Context, task models.TaskRecord) (string, error) {
	fields := map[string]interface{}{
		c.Tasks.TextField:   task.Text,
		c.Tasks.PeopleField: task.PeopleIDs,
	}
	if c.Tasks.NotesField != "" && task.Notes != "" {
		fields[c.Tasks.NotesField] = task.Notes
	}
	if c.Tasks.AttachField != "" && task.FileRecordID != "" {
		fields[c.Tasks.AttachField] = []string{task.FileRecordID}
	}

	return c.createRecord(ctx, c.Tasks.Table, fields)
}

// findFirst runs a filterByFormula query and returns the first matching
// record ID, or empty when there is no match.
func (c *Client) findFirst(ctx context.Context, table, formula string) (string, error) {
	params := url.Values{}
	params.Set("filterByFormula", formula)
	params.Set("maxRecords", "1")

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(table), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("airtable search %s returned HTTP %d", table, resp.StatusCode)
	}

	var envelope recordsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	if len(envelope.Records) == 0 {
		return "", nil
	}
	return envelope.Records[0].ID, nil
}

// createRecord POSTs a single record and returns its ID.
func (c *Client) createRecord(ctx context.Context, table string, fields map[string]interface{}) (string, error) {
	body, err := json.Marshal(recordsEnvelope{
		Records: []record{{Fields: fields}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(table))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create record in %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("airtable create in %s returned HTTP %d", table, resp.StatusCode)
	}

	var envelope recordsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}

	if len(envelope.Records) == 0 {
		return "", fmt.Errorf("airtable create in %s returned no records", table)
	}

	id := envelope.Records[0].ID
	slog.Info("created airtable record", "table", table, "record_id", id)
	return id, nil
}

// escapeFormulaValue escapes single quotes for safe interpolation into a
// filterByFormula string literal.
func escapeFormulaValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}
