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
	"errors"
	"fmt"
)

// ErrNoAttachment indicates a message carries no attachments. The
// orchestrator treats it as the empty-attachment case, not a failure.
var ErrNoAttachment = errors.New("message has no attachments")

// TransportError wraps authentication, protocol, and addressing failures
// on the IMAP/SMTP transport. It is never recovered per-message; the
// orchestrator lets it halt the run.
type TransportError struct {
	Op  string // "dial", "login", "select", "search", "fetch", "send"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
