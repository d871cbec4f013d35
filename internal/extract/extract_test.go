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

package extract

import (
	"errors"
	"testing"
)

// TestChoosePhrase verifies first-match-wins selection and the not-found error.
func TestChoosePhrase(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
		text    string
		want    string
		wantErr error
	}{
		{
			name:    "single match",
			phrases: []string{"create a task:"},
			text:    "Please create a task: buy milk.",
			want:    "create a task:",
		},
		{
			name:    "case insensitive",
			phrases: []string{"Create A Task:"},
			text:    "please CREATE a task: buy milk.",
			want:    "Create A Task:",
		},
		{
			name:    "list order beats specificity",
			phrases: []string{"task:", "create a task:"},
			text:    "Please create a task: buy milk.",
			want:    "task:",
		},
		{
			name:    "second phrase matches",
			phrases: []string{"remind me to", "create a task:"},
			text:    "Please create a task: buy milk.",
			want:    "create a task:",
		},
		{
			name:    "no match",
			phrases: []string{"create a task:", "remind me to"},
			text:    "no relevant keyword here",
			wantErr: ErrNoPhrase,
		},
		{
			name:    "empty phrase list",
			phrases: nil,
			text:    "anything",
			wantErr: ErrNoPhrase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChoosePhrase(tt.phrases, tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("phrase = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestText verifies extraction, whitespace collapsing, and the failure modes.
func TestText(t *testing.T) {
	tests := []struct {
		name       string
		phrases    []string
		terminator string
		text       string
		want       string
		wantErr    error
	}{
		{
			name:       "simple extraction",
			phrases:    []string{"create a task:"},
			terminator: ".",
			text:       "Please create a task: buy milk. Thanks!",
			want:       "buy milk",
		},
		{
			name:       "newlines collapsed",
			phrases:    []string{"create a task:"},
			terminator: ".",
			text:       "Please create a task: buy\nsome   milk\ntoday. Thanks!",
			want:       "buy some milk today",
		},
		{
			name:       "mixed case phrase in body",
			phrases:    []string{"create a task:"},
			terminator: ".",
			text:       "CREATE A TASK: call the plumber. bye",
			want:       "call the plumber",
		},
		{
			name:       "regex metacharacter terminator",
			phrases:    []string{"todo:"},
			terminator: "$",
			text:       "todo: pay rent$ and other stuff",
			want:       "pay rent",
		},
		{
			name:       "no phrase",
			phrases:    []string{"create a task:"},
			terminator: ".",
			text:       "no relevant keyword here",
			wantErr:    ErrNoPhrase,
		},
		{
			name:       "phrase is last token",
			phrases:    []string{"create a task:"},
			terminator: ".",
			text:       "please create a task:",
			wantErr:    ErrNoMatch,
		},
		{
			name:       "terminator immediately follows",
			phrases:    []string{"create a task:"},
			terminator: ".",
			text:       "create a task: .nothing to see",
			wantErr:    ErrNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(tt.phrases, tt.terminator, tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("extracted = %q, want %q", got, tt.want)
			}
		})
	}
}
