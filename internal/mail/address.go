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
	"regexp"
	"strings"

	"github.com/rickh94/attaskcreator/internal/models"
)

// Address is a display-name/address pair used when sending.
type Address struct {
	Name  string
	Email string
}

// String renders the address in "Name <email>" form.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

var addressRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// validAddress reports whether addr is a well-formed user@host string.
func validAddress(addr string) bool {
	return addressRe.MatchString(addr)
}

// ParseRecipient parses one To-header entry. Accepted forms are
// "Display Name <email>", "<email>", and a bare address. A single-token
// display name becomes the first name with an empty last name.
func ParseRecipient(entry string) models.Recipient {
	entry = strings.TrimSpace(entry)

	var name, email string
	if open := strings.Index(entry, "<"); open >= 0 {
		name = strings.TrimSpace(entry[:open])
		email = entry[open+1:]
		if close := strings.Index(email, ">"); close >= 0 {
			email = email[:close]
		}
	} else {
		email = entry
	}

	r := models.Recipient{Email: strings.TrimSpace(email)}
	if tokens := strings.Fields(name); len(tokens) > 0 {
		r.FirstName = tokens[0]
		r.LastName = strings.Join(tokens[1:], " ")
	}
	return r
}

// ParseToField splits a comma-separated To header into recipients,
// preserving input order.
func ParseToField(header string) []models.Recipient {
	entries := strings.Split(header, ", ")
	recipients := make([]models.Recipient, 0, len(entries))
	for _, entry := range entries {
		recipients = append(recipients, ParseRecipient(entry))
	}
	return recipients
}
