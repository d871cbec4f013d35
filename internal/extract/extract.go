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

// Package extract finds a trigger phrase in an email body and pulls out
// the text that follows it, up to a configured terminator character.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoPhrase indicates that none of the candidate trigger phrases occur
// in the text. This is an expected outcome, not a fault; the orchestrator
// recovers it with a sender notification.
var ErrNoPhrase = errors.New("no trigger phrase found")

// ErrNoMatch indicates that a trigger phrase was found but no extractable
// text follows it — the phrase is the last token, or the terminator comes
// immediately after.
var ErrNoMatch = errors.New("no text found after trigger phrase")

// ChoosePhrase returns the first phrase whose lowercase form is a substring
// of the lowercased text. List order is the priority order: the first match
// wins, not the longest.
func ChoosePhrase(phrases []string, text string) (string, error) {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return phrase, nil
		}
	}
	return "", fmt.Errorf("%w in %q", ErrNoPhrase, text)
}

// Text extracts the text following the first matching trigger phrase, up to
// (but not including) the terminator character. Whitespace runs in the input,
// newlines included, are collapsed to single spaces before matching, so the
// result is always a single line.
func Text(phrases []string, terminator string, text string) (string, error) {
	phrase, err := ChoosePhrase(phrases, text)
	if err != nil {
		return "", err
	}

	clean := strings.Join(strings.Fields(text), " ")

	// The terminator is used inside a character class, so metacharacters
	// must be escaped; same for the phrase itself.
	re, err := regexp.Compile(fmt.Sprintf(`(?i)%s ([^%s]*)`,
		regexp.QuoteMeta(phrase), regexp.QuoteMeta(terminator)))
	if err != nil {
		return "", fmt.Errorf("compile extraction pattern: %w", err)
	}

	m := re.FindStringSubmatch(clean)
	if m == nil || m[1] == "" {
		return "", fmt.Errorf("%w: %q in %q", ErrNoMatch, phrase, clean)
	}
	return m[1], nil
}
